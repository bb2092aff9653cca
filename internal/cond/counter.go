package cond

// Counter is the flat two-counter tracker. Only the depth
// of false branches is recorded, so blocks nested inside a skipped branch
// are not counted and their #else/#endif act on the outer depth.
type Counter struct {
	open int
	skip int
}

// If implements Tracker.
func (c *Counter) If(skip bool) {
	c.open++
	if skip {
		c.skip++
	}
}

// Nested implements Tracker. Directives inside a skipped branch are ignored.
func (c *Counter) Nested() {}

// Else implements Tracker.
func (c *Counter) Else() {
	if c.skip > 0 {
		c.skip--
	} else {
		c.skip++
	}
}

// Endif implements Tracker.
func (c *Counter) Endif() {
	if c.skip > 0 {
		c.skip--
	}
	c.open--
}

// Skipping implements Tracker.
func (c *Counter) Skipping() bool {
	return c.skip > 0
}

// Open implements Tracker.
func (c *Counter) Open() int {
	return c.open
}

// SkipDepth returns the current depth of false branches.
func (c *Counter) SkipDepth() int {
	return c.skip
}
