//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package mapping

import (
	"io"
	"os"
)

// mapFile reads the file into memory on platforms without mmap support.
func mapFile(f *os.File, size int) ([]byte, func([]byte) error, error) {
	data := make([]byte, size)
	if _, err := f.ReadAt(data, 0); err != nil && err != io.EOF {
		return nil, nil, err
	}
	return data, nil, nil
}
