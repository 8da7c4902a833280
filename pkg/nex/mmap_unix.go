//go:build unix

package nex

import (
	"bytes"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// mapFile maps f read-only. On success f is closed and the mapping backs the
// returned reader; if mmap is unavailable f itself is used through ReadAt.
func mapFile(f *os.File, size int64) (io.ReaderAt, func() error, error) {
	if size <= 0 || size > int64(int(^uint(0)>>1)) {
		return f, f.Close, nil
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return f, f.Close, nil
	}
	if err := f.Close(); err != nil {
		_ = unix.Munmap(data)
		return nil, nil, err
	}
	return bytes.NewReader(data), func() error { return unix.Munmap(data) }, nil
}
