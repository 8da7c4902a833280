package nex

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
)

const writerBufSize = 1 << 20 // 1 MiB

// FileSpec carries the caller supplied file header fields. NumVars, the magic
// and every offset are derived by the writer.
type FileSpec struct {
	// Version defaults to FileVersionCurrent and is raised to
	// FileVersionPhysicalOffset when a variable has a non-zero PhysicalOffset.
	Version   int32
	Comment   string
	Frequency float64
	Beg       int32
	// End defaults to the largest stored tick plus one when Beg and End are
	// both zero.
	End int32
}

func (s FileSpec) fileHeader(vars []Variable, headers []VarHeader) (FileHeader, error) {
	if s.Frequency <= 0 || math.IsNaN(s.Frequency) || math.IsInf(s.Frequency, 0) {
		return FileHeader{}, fmt.Errorf("%w: tick frequency %v", ErrInvalidFrequency, s.Frequency)
	}
	if err := checkFixedString(s.Comment, CommentSize, "comment"); err != nil {
		return FileHeader{}, err
	}
	fh := FileHeader{
		Version:   s.Version,
		Comment:   s.Comment,
		Frequency: s.Frequency,
		Beg:       s.Beg,
		End:       s.End,
		NumVars:   int32(len(headers)),
	}
	if fh.Version == 0 {
		fh.Version = FileVersionCurrent
	}
	for _, h := range headers {
		if h.PhysicalOffset != 0 {
			fh.Version = max(fh.Version, FileVersionPhysicalOffset)
		}
	}
	if fh.Beg == 0 && fh.End == 0 {
		if last, ok := maxTick(vars); ok && last < maxInt32 {
			fh.End = last + 1
		}
	}
	return fh, nil
}

// maxTick returns the largest tick stored by any of vars.
func maxTick(vars []Variable) (int32, bool) {
	var (
		best  int32
		found bool
	)
	see := func(ticks []int32) {
		for _, t := range ticks {
			if !found || t > best {
				best, found = t, true
			}
		}
	}
	for _, v := range vars {
		switch v := v.(type) {
		case *Neuron:
			see(v.Timestamps)
		case *Event:
			see(v.Timestamps)
		case *Interval:
			see(v.Starts)
			see(v.Ends)
		case *Waveform:
			see(v.Timestamps)
		case *Continuous:
			see(v.FragmentTicks)
		case *Marker:
			see(v.Timestamps)
		}
	}
	return best, found
}

// Encode writes a complete NEX file for vars to w: file header, every
// variable header, then every payload in the same order. vars are not
// modified. It returns the file header that was written.
func Encode(w io.Writer, spec FileSpec, vars []Variable) (FileHeader, error) {
	headers, sizes, err := Layout(vars)
	if err != nil {
		return FileHeader{}, err
	}
	fh, err := spec.fileHeader(vars, headers)
	if err != nil {
		return FileHeader{}, err
	}

	cw := &countingWriter{w: bufio.NewWriterSize(w, writerBufSize)}

	var hdr [FileHeaderSize]byte
	if err := encodeFileHeader(hdr[:], fh); err != nil {
		return FileHeader{}, err
	}
	if _, err := cw.Write(hdr[:]); err != nil {
		return FileHeader{}, err
	}

	var vh [VarHeaderSize]byte
	for i, h := range headers {
		if err := encodeVarHeader(vh[:], h); err != nil {
			return FileHeader{}, &VarError{Index: i, Name: h.Name, Type: h.Type, Err: err}
		}
		if _, err := cw.Write(vh[:]); err != nil {
			return FileHeader{}, err
		}
	}

	var payload []byte
	for i, v := range vars {
		if cw.n != int64(headers[i].DataOffset) {
			return FileHeader{}, &VarError{Index: i, Name: headers[i].Name, Type: headers[i].Type,
				Err: fmt.Errorf("%w: payload starts at %d, header says %d", ErrInconsistentOffset, cw.n, headers[i].DataOffset)}
		}
		if int64(cap(payload)) < sizes[i] {
			payload = make([]byte, sizes[i])
		}
		payload = payload[:sizes[i]]
		v.encode(payload)
		if _, err := cw.Write(payload); err != nil {
			return FileHeader{}, err
		}
	}

	if err := cw.w.Flush(); err != nil {
		return FileHeader{}, err
	}
	return fh, nil
}

// WriteFile writes vars to path. The file is built in a temporary file next to
// path, synced, checked and renamed into place, so path never holds a partial
// NEX file.
func WriteFile(path string, spec FileSpec, vars []Variable) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	fh, err := Encode(tmp, spec, vars)
	if err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := verifyWritten(tmp, fh); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// verifyWritten re-reads the directory of a freshly written file and checks
// that the offsets are packed and the file ends where the last payload does.
func verifyWritten(f *os.File, fh FileHeader) error {
	stat, err := f.Stat()
	if err != nil {
		return err
	}
	nf, err := NewReader(f, stat.Size())
	if err != nil {
		return fmt.Errorf("self-check: %w", err)
	}
	if nf.Header.NumVars != fh.NumVars {
		return fmt.Errorf("self-check: %w: wrote %d variables, read back %d", ErrInconsistentOffset, fh.NumVars, nf.Header.NumVars)
	}
	if err := CheckLayout(nf.Dir); err != nil {
		return fmt.Errorf("self-check: %w", err)
	}
	end := HeaderRegionSize(len(nf.Dir))
	if n := len(nf.Dir); n > 0 {
		last := nf.Dir[n-1]
		size, err := PayloadSize(last)
		if err != nil {
			return fmt.Errorf("self-check: %w", err)
		}
		end = int64(last.DataOffset) + size
	}
	if end != stat.Size() {
		return fmt.Errorf("self-check: %w: payloads end at %d, file is %d bytes", ErrInconsistentOffset, end, stat.Size())
	}
	return nil
}

type countingWriter struct {
	w *bufio.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	if err == nil && n != len(p) {
		err = io.ErrShortWrite
	}
	return n, err
}

var errNilFile = errors.New("nex: nil file")

// WriteTo encodes vars into an already open file, replacing its contents.
// Unlike WriteFile it offers no atomicity; the caller owns f exclusively.
func WriteTo(f *os.File, spec FileSpec, vars []Variable) error {
	if f == nil {
		return errNilFile
	}
	if err := f.Truncate(0); err != nil {
		return err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if _, err := Encode(f, spec, vars); err != nil {
		return err
	}
	return f.Sync()
}
