package nexstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samcharles93/nex/internal/logger"
	"github.com/samcharles93/nex/pkg/nex"
)

var ErrIntervalNotFound = errors.New("nexstore: interval not found")

// File is a NEX file opened for typed, unit-converted reads.
type File struct {
	nf   *nex.File
	path string
}

func Open(path string) (*File, error) {
	nf, err := nex.Open(path)
	if err != nil {
		return nil, err
	}
	return &File{nf: nf, path: path}, nil
}

func (f *File) Close() error {
	if f == nil || f.nf == nil {
		return nil
	}
	err := f.nf.Close()
	f.nf = nil
	return err
}

func (f *File) freq() float64 { return f.nf.Header.Frequency }

// Info summarises the file header, with the time span in seconds.
func (f *File) Info() (FileInfo, error) {
	h := f.nf.Header
	tbeg, err := nex.TicksToSeconds(h.Beg, h.Frequency)
	if err != nil {
		return FileInfo{}, err
	}
	tend, err := nex.TicksToSeconds(h.End, h.Frequency)
	if err != nil {
		return FileInfo{}, err
	}
	counts := make(map[string]int)
	for t, n := range f.nf.Dir.Counts() {
		counts[t.String()] = n
	}
	return FileInfo{
		Path:      f.path,
		Version:   h.Version,
		Comment:   h.Comment,
		Frequency: h.Frequency,
		TBeg:      tbeg,
		TEnd:      tend,
		NumVars:   int(h.NumVars),
		Size:      f.nf.Size(),
		Counts:    counts,
	}, nil
}

// Variables lists the directory without decoding any payload.
func (f *File) Variables() []VariableInfo {
	out := make([]VariableInfo, len(f.nf.Dir))
	for i, h := range f.nf.Dir {
		out[i] = variableInfo(i, h)
	}
	return out
}

func variableInfo(i int, h nex.VarHeader) VariableInfo {
	vi := VariableInfo{
		Index:      i,
		Name:       h.Name,
		Type:       h.Type.String(),
		Version:    h.Version,
		Count:      h.Count,
		DataOffset: h.DataOffset,
		Wire:       h.WireNumber,
		Unit:       h.UnitNumber,
	}
	switch h.Type {
	case nex.TypeWaveform:
		vi.SampleFrequency = h.SampleFrequency
		vi.Points = h.PointsPerWave
	case nex.TypeContinuous:
		vi.SampleFrequency = h.SampleFrequency
		vi.Points = h.PointsPerWave
	case nex.TypeMarker:
		vi.MarkerFields = h.MarkerFields
	}
	return vi
}

// ChannelError reports one variable that could not be decoded.
type ChannelError struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Error string `json:"error"`
}

// Result holds the decoded channels of one type, in file order, and the
// channels that failed. A failure never hides its siblings.
type Result[T any] struct {
	Data   []T            `json:"data"`
	Errors []ChannelError `json:"errors,omitempty"`
}

// Err joins the channel failures into one error, or returns nil.
func (r Result[T]) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	errs := make([]error, len(r.Errors))
	for i, ce := range r.Errors {
		errs[i] = fmt.Errorf("variable %d %q: %s", ce.Index, ce.Name, ce.Error)
	}
	return errors.Join(errs...)
}

// readAs decodes the selected channels of type t and converts each one.
// indices address the type-filtered view. ctx is checked between channels.
func readAs[T any](ctx context.Context, f *File, t nex.VarType, indices []int, conv func(nex.Variable, float64) (T, error)) (Result[T], error) {
	entries, err := f.nf.Dir.SelectByType(t, indices...)
	if err != nil {
		return Result[T]{}, err
	}
	log := logger.FromContext(ctx)
	res := Result[T]{Data: make([]T, 0, len(entries))}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		v, err := f.nf.Read(e.Index)
		if err == nil {
			var out T
			out, err = conv(v, f.freq())
			if err == nil {
				res.Data = append(res.Data, out)
				continue
			}
		}
		log.Warn("decode variable failed", "var", e.Header.Name, "index", e.Index, "err", err)
		res.Errors = append(res.Errors, ChannelError{Index: e.Index, Name: e.Header.Name, Error: err.Error()})
	}
	return res, nil
}

func (f *File) Events(ctx context.Context, indices ...int) (Result[EventData], error) {
	return readAs(ctx, f, nex.TypeEvent, indices, eventData)
}

func (f *File) Neurons(ctx context.Context, indices ...int) (Result[NeuronData], error) {
	return readAs(ctx, f, nex.TypeNeuron, indices, neuronData)
}

func (f *File) Intervals(ctx context.Context, indices ...int) (Result[IntervalData], error) {
	return readAs(ctx, f, nex.TypeInterval, indices, intervalData)
}

func (f *File) Waveforms(ctx context.Context, indices ...int) (Result[WaveformData], error) {
	return readAs(ctx, f, nex.TypeWaveform, indices, waveformData)
}

func (f *File) Continuous(ctx context.Context, indices ...int) (Result[ContinuousData], error) {
	return readAs(ctx, f, nex.TypeContinuous, indices, continuousData)
}

func (f *File) Markers(ctx context.Context, indices ...int) (Result[MarkerData], error) {
	return readAs(ctx, f, nex.TypeMarker, indices, markerData)
}

func (f *File) PopulationVectors(ctx context.Context, indices ...int) (Result[PopulationVectorData], error) {
	return readAs(ctx, f, nex.TypePopulationVector, indices, populationVectorData)
}

// ReadType decodes channels of any known type into their typed records,
// boxed as any. It backs the generic dump and HTTP views.
func (f *File) ReadType(ctx context.Context, t nex.VarType, indices ...int) (Result[any], error) {
	return readAs(ctx, f, t, indices, Convert)
}

// ListIntervalNames returns the names of every interval variable.
func (f *File) ListIntervalNames() []string {
	return f.nf.Dir.Names(nex.TypeInterval)
}

// IntervalTimes returns the interval variable called name. Only interval
// variables are searched; the first match in file order wins.
func (f *File) IntervalTimes(ctx context.Context, name string, caseSensitive bool) (IntervalData, error) {
	for _, e := range f.nf.Dir.FilterByType(nex.TypeInterval) {
		if e.Header.Name != name && (caseSensitive || !strings.EqualFold(e.Header.Name, name)) {
			continue
		}
		v, err := f.nf.Read(e.Index)
		if err != nil {
			logger.FromContext(ctx).Warn("decode interval failed", "var", e.Header.Name, "index", e.Index, "err", err)
			return IntervalData{}, err
		}
		return intervalData(v, f.freq())
	}
	return IntervalData{}, fmt.Errorf("%w: %q", ErrIntervalNotFound, name)
}
