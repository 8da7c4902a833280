//go:build !unix

package nex

import (
	"io"
	"os"
)

func mapFile(f *os.File, size int64) (io.ReaderAt, func() error, error) {
	return f, f.Close, nil
}
