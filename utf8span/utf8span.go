/*
Package utf8span decodes bounded or unbounded spans of a byte buffer as UTF-8,
one character at a time, and stops at the first malformed sequence.

Unlike utf8.DecodeRune, a Decoder never substitutes utf8.RuneError for
bad input. It reports an *Error telling how many leading bytes of the span
were valid and how long the offending sequence is, or that the span ended in
the middle of a multi-byte sequence.
*/
package utf8span

import (
	"fmt"
	"io"
	"unicode/utf8"
)

// Error describes a malformed UTF-8 sequence within a span.
//
//   - ValidUpTo is the number of leading bytes of the span which are valid UTF-8.
//   - ErrorLen is the length of the maximal invalid subpart starting at ValidUpTo.
//     It is 0 if the span ends with a truncated, but otherwise well-formed, sequence.
type Error struct {
	ValidUpTo int
	ErrorLen  int
}

func (e *Error) Error() string {
	if e.ErrorLen == 0 {
		return fmt.Sprintf("incomplete utf-8 byte sequence from index %d", e.ValidUpTo)
	}
	return fmt.Sprintf("invalid utf-8 sequence of %d bytes from index %d", e.ErrorLen, e.ValidUpTo)
}

// Incomplete is true if the span ended before a multi-byte sequence was complete.
func (e *Error) Incomplete() bool {
	return e.ErrorLen == 0
}

// Decoder walks a span character by character.
type Decoder struct {
	span []byte
	pos  int
}

// NewDecoder creates a decoder positioned at the start of span.
func NewDecoder(span []byte) *Decoder {
	return &Decoder{span: span}
}

// Offset returns the byte offset of the next character within the span.
func (d *Decoder) Offset() int {
	return d.pos
}

// Next decodes the next character and returns it together with its encoded
// length. It returns io.EOF when the span is exhausted, and an *Error for
// malformed input. After an error the decoder does not advance.
func (d *Decoder) Next() (rune, int, error) {
	if d.pos >= len(d.span) {
		return 0, 0, io.EOF
	}
	if c := d.span[d.pos]; c < utf8.RuneSelf {
		d.pos++
		return rune(c), 1, nil
	}
	r, size := utf8.DecodeRune(d.span[d.pos:])
	if r == utf8.RuneError && size <= 1 {
		return 0, 0, &Error{
			ValidUpTo: d.pos,
			ErrorLen:  invalidLength(d.span[d.pos:]),
		}
	}
	d.pos += size
	return r, size, nil
}

// Validate checks a complete span for well-formedness.
func Validate(span []byte) error {
	if utf8.Valid(span) {
		return nil
	}
	d := NewDecoder(span)
	for {
		if _, _, err := d.Next(); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}

// invalidLength returns the length of the maximal invalid subpart at the
// start of p (Unicode 15, §3.9 "U+FFFD Substitution of Maximal Subparts"),
// or 0 if p ends before a well-formed prefix could be completed.
func invalidLength(p []byte) int {
	lo, hi, need := acceptRange(p[0])
	if need == 0 {
		return 1 // not a valid lead byte
	}
	for i := 1; i <= need; i++ {
		if i >= len(p) {
			return 0 // truncated
		}
		c := p[i]
		if i > 1 {
			lo, hi = 0x80, 0xBF
		}
		if c < lo || c > hi {
			return i
		}
	}
	// DecodeRune only fails if some byte above failed its range check
	return 1
}

// acceptRange returns the allowed range of the second byte of a sequence
// starting with lead, and the number of continuation bytes to follow.
func acceptRange(lead byte) (lo, hi byte, need int) {
	switch {
	case lead >= 0xC2 && lead <= 0xDF:
		return 0x80, 0xBF, 1
	case lead == 0xE0:
		return 0xA0, 0xBF, 2
	case lead == 0xED:
		return 0x80, 0x9F, 2 // exclude surrogates
	case lead >= 0xE1 && lead <= 0xEF:
		return 0x80, 0xBF, 2
	case lead == 0xF0:
		return 0x90, 0xBF, 3
	case lead >= 0xF1 && lead <= 0xF3:
		return 0x80, 0xBF, 3
	case lead == 0xF4:
		return 0x80, 0x8F, 3
	}
	return 0, 0, 0
}
