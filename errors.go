package unicodeindex

import (
	"errors"
	"fmt"

	"github.com/npillmayer/unicodeindex/utf8span"
)

// Query errors
var (
	// ErrOutOfBounds indicates that a character index is beyond the end of the text.
	ErrOutOfBounds = errors.New("character index out of bounds")

	// ErrInvalidChar indicates that the bytes leading to a character are not valid UTF-8.
	// Errors of this kind are of type *InvalidCharError.
	ErrInvalidChar = errors.New("invalid UTF-8 character")

	// ErrClosed indicates a query on an index which has been closed.
	ErrClosed = errors.New("unicode index is closed")
)

// ErrMapping indicates that a file could not be mapped into memory.
var ErrMapping = errors.New("cannot map file")

// InvalidCharError reports a malformed UTF-8 sequence encountered while
// looking up the character at Index. Offset is the absolute byte offset of
// the sequence in the buffer.
type InvalidCharError struct {
	Index  int
	Offset int
	Err    *utf8span.Error
}

func (e *InvalidCharError) Error() string {
	return fmt.Sprintf("invalid UTF-8 character looking up index %d at byte offset %d: %v",
		e.Index, e.Offset, e.Err)
}

// Is makes errors.Is(err, ErrInvalidChar) hold.
func (e *InvalidCharError) Is(target error) bool {
	return target == ErrInvalidChar
}

func (e *InvalidCharError) Unwrap() error {
	return e.Err
}

func outOfBounds(index int) error {
	return fmt.Errorf("%w: %d", ErrOutOfBounds, index)
}

// invalidChar converts a decoding error for a span starting at byte offset
// base into an *InvalidCharError.
func invalidChar(index int, base int, err error) error {
	var uerr *utf8span.Error
	if !errors.As(err, &uerr) {
		return err
	}
	return &InvalidCharError{
		Index:  index,
		Offset: base + uerr.ValidUpTo,
		Err:    uerr,
	}
}
