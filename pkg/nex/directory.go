package nex

import (
	"fmt"
	"io"
	"strings"
)

const dirPrealloc = 1024

// Entry is a directory slot together with its position in file order.
type Entry struct {
	Index  int
	Header VarHeader
}

// Directory is the ordered list of variable headers. File order is the
// canonical variable index.
type Directory []VarHeader

// ReadDirectory reads fh.NumVars consecutive variable headers that follow the
// file header.
func ReadDirectory(r io.ReaderAt, fh FileHeader) (Directory, error) {
	if fh.NumVars < 0 {
		return nil, fmt.Errorf("%w: negative variable count %d", ErrCorruptHeader, fh.NumVars)
	}
	n := int(fh.NumVars)
	// Nothing is sized from the count; a corrupt count fails on the first
	// missing record.
	dir := make(Directory, 0, min(n, dirPrealloc))
	var raw [VarHeaderSize]byte
	for i := range n {
		if err := readFullAt(r, raw[:], HeaderRegionSize(i)); err != nil {
			return nil, fmt.Errorf("read directory: variable header %d: %w", i, err)
		}
		h, err := DecodeVarHeader(raw[:])
		if err != nil {
			return nil, fmt.Errorf("variable header %d: %w", i, err)
		}
		h.gateFileVersion(fh.Version)
		dir = append(dir, h)
	}
	return dir, nil
}

// FilterByType returns every entry of type t, in file order.
func (d Directory) FilterByType(t VarType) []Entry {
	var out []Entry
	for i, h := range d {
		if h.Type == t {
			out = append(out, Entry{Index: i, Header: h})
		}
	}
	return out
}

// SelectByType returns entries at the given positions of the type-filtered
// view, so index 2 of TypeContinuous is the third continuous channel. With no
// indices every entry of type t is returned.
func (d Directory) SelectByType(t VarType, indices ...int) ([]Entry, error) {
	all := d.FilterByType(t)
	if len(indices) == 0 {
		return all, nil
	}
	out := make([]Entry, 0, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(all) {
			return nil, &IndexError{Type: t, Index: idx, Len: len(all)}
		}
		out = append(out, all[idx])
	}
	return out, nil
}

// Lookup returns the first entry named name. Names are not required to be
// unique, so later duplicates are ignored.
func (d Directory) Lookup(name string, caseSensitive bool) (Entry, bool) {
	for i, h := range d {
		if h.Name == name || (!caseSensitive && strings.EqualFold(h.Name, name)) {
			return Entry{Index: i, Header: h}, true
		}
	}
	return Entry{}, false
}

// Names lists the names of all variables of type t in file order.
func (d Directory) Names(t VarType) []string {
	entries := d.FilterByType(t)
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Header.Name
	}
	return out
}

// Counts tallies directory entries per type, unknown types included.
func (d Directory) Counts() map[VarType]int {
	out := make(map[VarType]int)
	for _, h := range d {
		out[h.Type]++
	}
	return out
}
