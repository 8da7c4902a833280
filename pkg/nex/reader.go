package nex

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// File is an opened NEX file with its header and directory already parsed.
//
// Every decode is an independent ReadAt at the variable's recorded offset, so
// a File may be read from several goroutines at once. Close must be called to
// release the mapping or file descriptor.
type File struct {
	Header FileHeader
	Dir    Directory

	r      io.ReaderAt
	size   int64
	closer func() error
}

// Open opens a NEX file read-only and parses its header and directory.
// The file is memory mapped where the platform allows it, otherwise it is read
// through ReadAt.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	stat, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	size := stat.Size()

	r, closer, err := mapFile(f, size)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	nf, err := NewReader(r, size)
	if err != nil {
		_ = closer()
		return nil, err
	}
	nf.closer = closer
	return nf, nil
}

// NewReader parses the header and directory from r. size is the total number
// of readable bytes and bounds every payload read.
func NewReader(r io.ReaderAt, size int64) (*File, error) {
	if size < 0 {
		return nil, fmt.Errorf("%w: negative size %d", ErrCorruptHeader, size)
	}
	var raw [FileHeaderSize]byte
	if err := readFullAt(r, raw[:], 0); err != nil {
		return nil, fmt.Errorf("read file header: %w", err)
	}
	fh, err := DecodeFileHeader(raw[:])
	if err != nil {
		return nil, err
	}
	dirEnd := int64(FileHeaderSize) + int64(fh.NumVars)*VarHeaderSize
	if dirEnd > size {
		return nil, fmt.Errorf("%w: directory of %d variables ends at %d, file is %d bytes", ErrTruncated, fh.NumVars, dirEnd, size)
	}
	dir, err := ReadDirectory(r, fh)
	if err != nil {
		return nil, err
	}
	return &File{Header: fh, Dir: dir, r: r, size: size}, nil
}

// Close releases file resources. It is safe to call more than once.
func (f *File) Close() error {
	if f == nil || f.closer == nil {
		return nil
	}
	err := f.closer()
	f.closer = nil
	f.r = nil
	return err
}

// Size returns the total file size in bytes.
func (f *File) Size() int64 { return f.size }

// ReadVar decodes the variable described by h.
func (f *File) ReadVar(h VarHeader) (Variable, error) {
	if f == nil || f.r == nil {
		return nil, errors.New("nex: file is closed")
	}
	if !h.Type.Known() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownVarType, int32(h.Type))
	}
	n, err := PayloadSize(h)
	if err != nil {
		return nil, err
	}
	if h.DataOffset < 0 {
		return nil, fmt.Errorf("%w: negative data offset %d", ErrCorruptHeader, h.DataOffset)
	}
	off := int64(h.DataOffset)
	if off+n > f.size {
		return nil, fmt.Errorf("%w: payload [%d,%d) past end of file at %d", ErrTruncated, off, off+n, f.size)
	}
	payload := make([]byte, n)
	if err := readFullAt(f.r, payload, off); err != nil {
		return nil, err
	}
	return decodePayload(h, payload)
}

// Read decodes the variable at directory index i.
func (f *File) Read(i int) (Variable, error) {
	if i < 0 || i >= len(f.Dir) {
		return nil, fmt.Errorf("%w: variable %d of %d", ErrIndexOutOfRange, i, len(f.Dir))
	}
	h := f.Dir[i]
	v, err := f.ReadVar(h)
	if err != nil {
		return nil, &VarError{Index: i, Name: h.Name, Type: h.Type, Err: err}
	}
	return v, nil
}

// Selection is the outcome of reading several variables. A failed variable
// leaves a nil slot in Vars and an entry in Errs; its siblings still decode.
type Selection struct {
	Entries []Entry
	Vars    []Variable
	Errs    []*VarError
}

// Err joins the per-variable errors, or returns nil when all succeeded.
func (s *Selection) Err() error {
	if len(s.Errs) == 0 {
		return nil
	}
	errs := make([]error, len(s.Errs))
	for i, e := range s.Errs {
		errs[i] = e
	}
	return errors.Join(errs...)
}

// Decoded returns the successfully decoded variables in order.
func (s *Selection) Decoded() []Variable {
	out := make([]Variable, 0, len(s.Vars))
	for _, v := range s.Vars {
		if v != nil {
			out = append(out, v)
		}
	}
	return out
}

// ReadType decodes variables of type t. indices address the type-filtered
// view; none means every variable of that type. An index out of range fails
// the whole call, decoding failures are reported per variable.
func (f *File) ReadType(t VarType, indices ...int) (*Selection, error) {
	entries, err := f.Dir.SelectByType(t, indices...)
	if err != nil {
		return nil, err
	}
	return f.readEntries(entries), nil
}

// ReadAll decodes every variable in directory order. Unknown types show up
// as ErrUnknownVarType in Errs.
func (f *File) ReadAll() *Selection {
	entries := make([]Entry, len(f.Dir))
	for i, h := range f.Dir {
		entries[i] = Entry{Index: i, Header: h}
	}
	return f.readEntries(entries)
}

func (f *File) readEntries(entries []Entry) *Selection {
	s := &Selection{
		Entries: entries,
		Vars:    make([]Variable, len(entries)),
	}
	for i, e := range entries {
		v, err := f.ReadVar(e.Header)
		if err != nil {
			s.Errs = append(s.Errs, &VarError{Index: e.Index, Name: e.Header.Name, Type: e.Header.Type, Err: err})
			continue
		}
		s.Vars[i] = v
	}
	return s
}

// ReadFileHeader reads only the file header of the NEX file at path.
func ReadFileHeader(path string) (FileHeader, error) {
	f, err := os.Open(path)
	if err != nil {
		return FileHeader{}, err
	}
	defer func() { _ = f.Close() }()

	var raw [FileHeaderSize]byte
	if err := readFullAt(f, raw[:], 0); err != nil {
		return FileHeader{}, fmt.Errorf("read file header: %w", err)
	}
	return DecodeFileHeader(raw[:])
}

// ReadVariableDirectory reads the header and directory of the NEX file at path.
func ReadVariableDirectory(path string) (Directory, error) {
	f, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return f.Dir, nil
}

// ReadVariable opens path and decodes the single variable described by h.
// fh supplies the file version used to gate version dependent fields.
func ReadVariable(path string, h VarHeader, fh FileHeader) (Variable, error) {
	f, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	h.gateFileVersion(fh.Version)
	return f.ReadVar(h)
}

// readFullAt fills p from r at off, mapping a short read to ErrTruncated.
func readFullAt(r io.ReaderAt, p []byte, off int64) error {
	n, err := r.ReadAt(p, off)
	if n == len(p) {
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: read %d of %d bytes at offset %d", ErrTruncated, n, len(p), off)
	}
	return err
}
