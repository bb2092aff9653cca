package cond

// Stack is a Tracker with one frame per open block.
type Stack struct {
	frames []frame
	// extra counts #endif lines that had no block to close.
	extra int
}

type frame struct {
	parentActive bool
	taken        bool // some branch of this block has been emitted
	active       bool
}

func (s *Stack) active() bool {
	if len(s.frames) == 0 {
		return true
	}
	return s.frames[len(s.frames)-1].active
}

// If implements Tracker.
func (s *Stack) If(skip bool) {
	parent := s.active()
	active := parent && !skip
	s.frames = append(s.frames, frame{
		parentActive: parent,
		taken:        active,
		active:       active,
	})
}

// Nested implements Tracker. The new block stays silent whatever its
// condition, and its #else cannot wake it up.
func (s *Stack) Nested() {
	s.frames = append(s.frames, frame{})
}

// Else implements Tracker. A stray #else is ignored.
func (s *Stack) Else() {
	if len(s.frames) == 0 {
		return
	}
	top := &s.frames[len(s.frames)-1]
	if !top.parentActive {
		top.active = false
		return
	}
	top.active = !top.taken
	top.taken = true
}

// Endif implements Tracker.
func (s *Stack) Endif() {
	if len(s.frames) == 0 {
		s.extra++
		return
	}
	s.frames = s.frames[:len(s.frames)-1]
}

// Skipping implements Tracker.
func (s *Stack) Skipping() bool {
	return !s.active()
}

// Open implements Tracker.
func (s *Stack) Open() int {
	return len(s.frames) - s.extra
}
