package unicodeindex

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/npillmayer/unicodeindex/mapping"
	"github.com/npillmayer/unicodeindex/utf8span"
)

// UnicodeIndex resolves character indices of a UTF-8 text to characters.
//
// It owns the (mapped) text buffer and a cache of checkpoints, which grows
// monotonically with the character indices requested.
type UnicodeIndex struct {
	Identifier  string // Identifies the index, default is the file name
	file        *os.File
	region      *mapping.Region
	buf         []byte
	checkpoints *checkpointStore
	search      checkpointSearch
	total       int // number of characters, -1 until the end of buf has been reached
	closed      bool
}

// Option configures a UnicodeIndex.
type Option func(*UnicodeIndex)

// WithSearch selects the strategy for searching the checkpoint cache.
// Default is BinarySearch.
func WithSearch(strategy SearchStrategy) Option {
	return func(ui *UnicodeIndex) {
		ui.search = strategy.backend()
	}
}

// WithIdentifier sets the name of the index, used in traces.
func WithIdentifier(name string) Option {
	return func(ui *UnicodeIndex) {
		ui.Identifier = name
	}
}

// New creates an index over the contents of file, which is mapped into memory
// read-only. On success the index takes ownership of file and closes it on
// Close. If the mapping fails, an error wrapping ErrMapping is returned and
// file is left open.
//
// The file must not be modified while the index is in use.
func New(file *os.File, opts ...Option) (*UnicodeIndex, error) {
	if file == nil {
		return nil, fmt.Errorf("%w: no file given", ErrMapping)
	}
	region, err := mapping.Map(file)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrMapping, file.Name(), err)
	}
	ui := newIndex(file.Name(), region, opts)
	ui.file = file
	return ui, nil
}

// Open opens the file at path for reading and creates an index over it.
func Open(path string, opts ...Option) (*UnicodeIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	ui, err := New(f, opts...)
	if err != nil {
		f.Close()
		return nil, err
	}
	return ui, nil
}

// FromBytes creates an index over an in-memory buffer. Clients must not
// modify buf while the index is in use. Several indexes may share one buffer,
// each one keeping its own checkpoint cache.
func FromBytes(name string, buf []byte, opts ...Option) *UnicodeIndex {
	return newIndex(name, mapping.FromBytes(buf), opts)
}

func newIndex(name string, region *mapping.Region, opts []Option) *UnicodeIndex {
	ui := &UnicodeIndex{
		Identifier:  name,
		region:      region,
		buf:         region.Bytes(),
		checkpoints: newCheckpointStore(),
		search:      binarySearch{},
		total:       -1,
	}
	for _, opt := range opts {
		opt(ui)
	}
	tracer().Debugf("index %q over %d bytes, %s search", ui.Identifier, len(ui.buf), ui.search.Name())
	return ui
}

// CharacterAt returns the character at 0-based character index index.
//
// Errors are ErrOutOfBounds if the text has less than index+1 characters,
// and an *InvalidCharError (matching ErrInvalidChar) if a malformed UTF-8
// sequence is located before the character. The index stays usable after
// an error.
//
// CharacterAt may extend the checkpoint cache and must not be called
// concurrently.
func (ui *UnicodeIndex) CharacterAt(index int) (rune, error) {
	if ui == nil || ui.closed {
		return 0, ErrClosed
	}
	if index < 0 || (ui.total >= 0 && index >= ui.total) {
		return 0, outOfBounds(index)
	}
	// Checkpoints store the index of the first character of a line. With a
	// 1-based target, the line containing the target is (last, current] with
	// last < target <= current.
	target := index + 1
	if i, ok := ui.search.Bracket(ui.checkpoints, target); ok {
		return ui.findInLine(index, target, ui.checkpoints.At(i), ui.checkpoints.At(i+1))
	}
	return ui.extend(index, target)
}

// findInLine decodes the line between two adjacent checkpoints up to the
// target character.
func (ui *UnicodeIndex) findInLine(index, target int, last, current Checkpoint) (rune, error) {
	n := target - last.CharIndex - 1
	d := utf8span.NewDecoder(ui.buf[last.ByteOffset:current.ByteOffset])
	for k := 0; ; k++ {
		r, _, err := d.Next()
		if err == io.EOF {
			return 0, outOfBounds(index) // cannot happen for well-formed checkpoints
		} else if err != nil {
			return 0, invalidChar(index, last.ByteOffset, err)
		}
		if k == n {
			return r, nil
		}
	}
}

// extend decodes forward from the last checkpoint until the target character
// is reached, recording a checkpoint behind every line feed it passes.
// Checkpoints recorded before a failure are kept.
func (ui *UnicodeIndex) extend(index, target int) (rune, error) {
	origin := ui.checkpoints.Last()
	n := target - origin.CharIndex - 1
	tracer().Debugf("extending cache from %v to character #%d", origin, index)
	d := utf8span.NewDecoder(ui.buf[origin.ByteOffset:])
	for k := 0; ; k++ {
		r, _, err := d.Next()
		if err == io.EOF {
			ui.exhausted(origin.CharIndex + k)
			return 0, outOfBounds(index)
		} else if err != nil {
			return 0, invalidChar(index, origin.ByteOffset, err)
		}
		if r == '\n' {
			ui.checkpoints.Append(Checkpoint{
				ByteOffset: origin.ByteOffset + d.Offset(),
				CharIndex:  origin.CharIndex + k + 1,
			})
		}
		if k == n {
			return r, nil
		}
	}
}

// exhausted remembers the character count once the cache has reached the end
// of the buffer.
func (ui *UnicodeIndex) exhausted(total int) {
	if ui.total >= 0 {
		return
	}
	ui.total = total
	stats := ui.Stats()
	tracer().Infof("index %q complete: %d characters in %d bytes, %d checkpoints",
		ui.Identifier, stats.TotalChars, stats.Size, stats.Checkpoints)
}

// Size returns the size of the text in bytes.
func (ui *UnicodeIndex) Size() int {
	return len(ui.buf)
}

// Checkpoints returns a copy of the checkpoints discovered so far, starting
// with the start-of-text sentinel (0, 0).
func (ui *UnicodeIndex) Checkpoints() []Checkpoint {
	return ui.checkpoints.Snapshot()
}

// Stats reports on the state of the checkpoint cache.
func (ui *UnicodeIndex) Stats() CacheStats {
	last := ui.checkpoints.Last()
	stats := CacheStats{
		Strategy:     ui.search.Name(),
		Checkpoints:  ui.checkpoints.Len(),
		CoveredBytes: last.ByteOffset,
		CoveredChars: last.CharIndex,
		Size:         len(ui.buf),
		Exhausted:    ui.total >= 0,
	}
	if stats.Exhausted {
		stats.TotalChars = ui.total
	}
	return stats
}

// Close releases the mapping and closes the underlying file, if any.
// Further queries return ErrClosed. Calling Close more than once is a no-op.
func (ui *UnicodeIndex) Close() error {
	if ui == nil || ui.closed {
		return nil
	}
	ui.closed = true
	ui.buf = nil
	err := ui.region.Close()
	if ui.file != nil {
		err = errors.Join(err, ui.file.Close())
		ui.file = nil
	}
	return err
}
