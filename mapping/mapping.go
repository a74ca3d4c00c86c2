/*
Package mapping establishes read-only views of whole files as byte slices.

On platforms supporting mmap(2) a file is mapped shared and read-only, and the
kernel is advised of sequential access. On other platforms, the file is read
into memory once. Either way clients see an immutable []byte which stays valid
until the Region is closed. The file must not change while it is mapped.
*/
package mapping

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'unicodeindex.mapping'
func tracer() tracing.Trace {
	return tracing.Select("unicodeindex.mapping")
}

// ErrTooLarge is returned for files which do not fit into the address space.
var ErrTooLarge = errors.New("file too large to map")

// Region is an immutable view of a file's contents.
type Region struct {
	data   []byte
	unmap  func([]byte) error
	closed bool
}

// FromBytes wraps an in-memory buffer as a region. Closing it is a no-op
// apart from dropping the reference.
func FromBytes(b []byte) *Region {
	return &Region{data: b}
}

// Map creates a read-only region over the full contents of f.
//
// A zero-length file results in an empty region; no mapping is established
// for it. Map does not take ownership of f: the caller closes it, which is
// legal while the region is still in use.
func Map(f *os.File) (*Region, error) {
	if f == nil {
		return nil, errors.New("cannot map nil file")
	}
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("cannot map %s: not a regular file", f.Name())
	}
	size := info.Size()
	if size == 0 {
		tracer().Debugf("%s is empty, nothing to map", f.Name())
		return &Region{}, nil
	}
	if size < 0 || uint64(size) > math.MaxInt {
		return nil, fmt.Errorf("%w: %s has %d bytes", ErrTooLarge, f.Name(), size)
	}
	data, unmap, err := mapFile(f, int(size))
	if err != nil {
		tracer().Errorf("mapping %s failed: %v", f.Name(), err)
		return nil, err
	}
	tracer().Debugf("mapped %s, %d bytes", f.Name(), len(data))
	return &Region{data: data, unmap: unmap}, nil
}

// Bytes returns the contents of the region. Clients must not modify it, and
// must not use it after Close.
func (r *Region) Bytes() []byte {
	if r == nil {
		return nil
	}
	return r.data
}

// Len returns the size of the region in bytes.
func (r *Region) Len() int {
	if r == nil {
		return 0
	}
	return len(r.data)
}

// Close releases the region. It is safe to call Close more than once.
func (r *Region) Close() error {
	if r == nil || r.closed {
		return nil
	}
	r.closed = true
	data := r.data
	r.data = nil
	if r.unmap == nil || len(data) == 0 {
		return nil
	}
	return r.unmap(data)
}
