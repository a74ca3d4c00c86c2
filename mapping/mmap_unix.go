//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package mapping

import (
	"os"

	"golang.org/x/sys/unix"
)

func mapFile(f *os.File, size int) ([]byte, func([]byte) error, error) {
	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, &os.PathError{Op: "mmap", Path: f.Name(), Err: err}
	}
	if err := unix.Madvise(data, unix.MADV_SEQUENTIAL); err != nil {
		tracer().Debugf("madvise on %s: %v", f.Name(), err)
	}
	return data, unix.Munmap, nil
}
