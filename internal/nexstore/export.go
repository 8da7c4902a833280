package nexstore

import (
	"context"
	"io"

	"github.com/goccy/go-json"

	"github.com/samcharles93/nex/internal/logger"
	"github.com/samcharles93/nex/pkg/nex"
)

// VariableDump is one directory entry with its converted payload, or the
// reason it could not be decoded.
type VariableDump struct {
	VariableInfo
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

type Dump struct {
	File      FileInfo       `json:"file"`
	Variables []VariableDump `json:"variables"`
}

// DumpOptions narrows a dump. A nil Type selects every variable; Indices
// address the type-filtered view and require Type.
type DumpOptions struct {
	Type    *nex.VarType
	Indices []int
}

// Dump decodes the selected variables into a Dump. A variable that fails to
// decode is recorded with its error and does not stop the others.
func (f *File) Dump(ctx context.Context, opts DumpOptions) (Dump, error) {
	info, err := f.Info()
	if err != nil {
		return Dump{}, err
	}
	var entries []nex.Entry
	if opts.Type != nil {
		entries, err = f.nf.Dir.SelectByType(*opts.Type, opts.Indices...)
		if err != nil {
			return Dump{}, err
		}
	} else {
		entries = make([]nex.Entry, len(f.nf.Dir))
		for i, h := range f.nf.Dir {
			entries[i] = nex.Entry{Index: i, Header: h}
		}
	}

	log := logger.FromContext(ctx)
	out := Dump{File: info, Variables: make([]VariableDump, 0, len(entries))}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		vd := VariableDump{VariableInfo: variableInfo(e.Index, e.Header)}
		v, err := f.nf.Read(e.Index)
		if err == nil {
			vd.Data, err = Convert(v, f.freq())
		}
		if err != nil {
			log.Warn("decode variable failed", "var", e.Header.Name, "index", e.Index, "err", err)
			vd.Error = err.Error()
		}
		out.Variables = append(out.Variables, vd)
	}
	return out, nil
}

// WriteJSON encodes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
