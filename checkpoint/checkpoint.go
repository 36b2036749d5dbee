// Package checkpoint decorates errors with the file and line they passed
// through, which results in something similar to a stacktrace.
// Every error attached to a checkpoint stays checkable by errors.Is and
// retrievable by errors.As.
package checkpoint

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
)

// From wraps err into a checkpoint carrying the caller position.
// It returns nil if err is nil.
//
// io.EOF and io.ErrUnexpectedEOF are passed through untouched because the
// standard library compares them by identity.
// https://github.com/golang/go/issues/39155
func From(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return err
	}
	if err == nil {
		return nil
	}

	return newCheckpoint(err, nil)
}

// Wrap adds a checkpoint around the underlying error prev and attaches err
// as an additional error describing this checkpoint. It returns nil if prev
// is nil, so call sites can wrap unconditionally:
//  return checkpoint.Wrap(doSomething(), ErrSomethingFailed)
// Both prev and err remain visible to errors.Is on the result.
//
// io.EOF is passed through untouched, like in From.
func Wrap(prev, err error) error {
	if prev == io.EOF {
		return io.EOF
	}
	if prev == nil {
		return nil
	}

	return newCheckpoint(err, prev)
}

func newCheckpoint(err, prev error) *checkpoint {
	// Skip newCheckpoint and From/Wrap itself.
	_, file, line, ok := runtime.Caller(2)

	c := &checkpoint{
		err:  err,
		prev: prev,
	}
	if ok {
		c.file = filepath.Base(file)
		c.line = line
	}
	return c
}

type checkpoint struct {
	err  error
	prev error

	file string
	line int
}

func (c *checkpoint) Error() string {
	where := "unknown"
	if c.file != "" {
		where = fmt.Sprintf("%s:%d", c.file, c.line)
	}

	switch {
	case c.err == nil:
		return fmt.Sprintf("at %s: %v", where, c.prev)
	case c.prev == nil:
		return fmt.Sprintf("at %s: %v", where, c.err)
	default:
		return fmt.Sprintf("at %s: %v: %v", where, c.err, c.prev)
	}
}

func (c *checkpoint) Unwrap() error {
	return c.prev
}

func (c *checkpoint) Is(target error) bool {
	return c.err != nil && errors.Is(c.err, target)
}

func (c *checkpoint) As(target interface{}) bool {
	return c.err != nil && errors.As(c.err, target)
}
