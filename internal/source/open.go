package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// decompressors maps a file suffix to a reader that decodes it.
var decompressors = map[string]func(r io.Reader) (io.ReadCloser, error){
	".gz": func(r io.Reader) (io.ReadCloser, error) {
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, noEOF(err, gzip.ErrHeader)
		}
		return zr, nil
	},
	".zst": func(r io.Reader) (io.ReadCloser, error) {
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zr.IOReadCloser(), nil
	},
}

// noEOF turns the io.EOF a decoder reports for an empty file into want.
func noEOF(err, want error) error {
	if errors.Is(err, io.EOF) {
		return want
	}
	return err
}

// Open opens path as a line stream. Files ending in .gz or .zst are
// decompressed transparently.
func Open(path string) (*Stream, error) {
	rc, err := openReader(path)
	if err != nil {
		return nil, err
	}
	return NewStream(path, rc), nil
}

// ReadFile returns the decoded contents of path.
func ReadFile(path string) ([]byte, error) {
	rc, err := openReader(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func openReader(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	decode, ok := decompressors[filepath.Ext(path)]
	if !ok {
		return f, nil
	}
	zr, err := decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decompressing %s: %w", path, err)
	}
	return &stackedCloser{Reader: zr, closers: []io.Closer{zr, f}}, nil
}

// stackedCloser closes a decoder and then the file beneath it.
type stackedCloser struct {
	io.Reader
	closers []io.Closer
}

func (s *stackedCloser) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
