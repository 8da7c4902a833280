package nex

import "fmt"

// Variable is a decoded NEX variable. The concrete type is one of *Neuron,
// *Event, *Interval, *Waveform, *PopulationVector, *Continuous or *Marker;
// callers use a type switch to reach the payload.
type Variable interface {
	Type() VarType
	Info() Meta

	// header derives the directory entry for this variable, DataOffset excluded.
	header() (VarHeader, error)
	// encode writes the payload into dst, which is exactly PayloadSize bytes.
	encode(dst []byte)
}

// Meta holds the fields shared by every variable kind.
type Meta struct {
	Name string
	// Version is the variable header version. The writer raises it when a
	// gated field is in use.
	Version int32
}

func (m Meta) Info() Meta { return m }

func (m Meta) baseHeader(t VarType, count int) (VarHeader, error) {
	if count > maxInt32 {
		return VarHeader{}, fmt.Errorf("%w: %d entries", ErrFileTooLarge, count)
	}
	if err := checkFixedString(m.Name, NameSize, "variable name"); err != nil {
		return VarHeader{}, err
	}
	return VarHeader{
		Type:    t,
		Version: max(m.Version, VarVersionBase),
		Name:    m.Name,
		Count:   int32(count),
	}, nil
}

// Neuron is a spike train with optional electrode metadata.
type Neuron struct {
	Meta
	WireNumber int32
	UnitNumber int32
	Gain       int32
	Filter     int32
	XPos       float64
	YPos       float64
	Timestamps []int32
}

func (*Neuron) Type() VarType { return TypeNeuron }

// Event is a list of event timestamps.
type Event struct {
	Meta
	Timestamps []int32
}

func (*Event) Type() VarType { return TypeEvent }

// Interval is a list of [start, end] tick pairs stored as two parallel arrays.
type Interval struct {
	Meta
	Starts []int32
	Ends   []int32
}

func (*Interval) Type() VarType { return TypeInterval }

// Len returns the number of intervals.
func (v *Interval) Len() int { return len(v.Starts) }

// Waveform holds Len() spike snippets of PointsPerWave samples each, stored
// wave after wave in Samples.
type Waveform struct {
	Meta
	WireNumber          int32
	UnitNumber          int32
	SampleFrequency     float64
	ADToPhysical        float64
	PhysicalOffset      float64
	PrethresholdSeconds float64
	PointsPerWave       int
	Timestamps          []int32
	Samples             []int16
}

func (*Waveform) Type() VarType { return TypeWaveform }

// Len returns the number of waves.
func (v *Waveform) Len() int { return len(v.Timestamps) }

// Wave returns the raw samples of wave i. The slice aliases Samples.
func (v *Waveform) Wave(i int) []int16 {
	start := i * v.PointsPerWave
	return v.Samples[start : start+v.PointsPerWave : start+v.PointsPerWave]
}

// PopulationVector is a list of per-unit weights.
//
// The payload layout (Count little-endian float64 values) is an extension: no
// reference reader decodes this type.
type PopulationVector struct {
	Meta
	Weights []float64
}

func (*PopulationVector) Type() VarType { return TypePopulationVector }

// Continuous is a sampled signal split into fragments. Fragment i starts at
// FragmentTicks[i] and its first sample is Samples[FragmentIndexes[i]].
type Continuous struct {
	Meta
	SampleFrequency float64
	ADToPhysical    float64
	PhysicalOffset  float64
	FragmentTicks   []int32
	FragmentIndexes []int32
	Samples         []int16
}

func (*Continuous) Type() VarType { return TypeContinuous }

// Fragment is one contiguous run of samples of a continuous variable.
type Fragment struct {
	StartTick  int32
	FirstIndex int
	Samples    []int16
}

// Fragments splits Samples at the fragment indexes. A fragment runs up to the
// next fragment's first index; the last one runs to the end of Samples.
func (v *Continuous) Fragments() ([]Fragment, error) {
	if err := v.checkFragments(); err != nil {
		return nil, err
	}
	out := make([]Fragment, len(v.FragmentTicks))
	for i := range out {
		first := int(v.FragmentIndexes[i])
		end := len(v.Samples)
		if i+1 < len(out) {
			end = int(v.FragmentIndexes[i+1])
		}
		out[i] = Fragment{
			StartTick:  v.FragmentTicks[i],
			FirstIndex: first,
			Samples:    v.Samples[first:end:end],
		}
	}
	return out, nil
}

func (v *Continuous) checkFragments() error {
	if len(v.FragmentTicks) != len(v.FragmentIndexes) {
		return fmt.Errorf("%w: continuous %q has %d fragment ticks and %d fragment indexes",
			ErrInconsistentVariable, v.Name, len(v.FragmentTicks), len(v.FragmentIndexes))
	}
	prev := int32(0)
	for i, idx := range v.FragmentIndexes {
		if idx < prev || int(idx) > len(v.Samples) {
			return fmt.Errorf("%w: continuous %q fragment %d index %d outside [%d,%d]",
				ErrInconsistentVariable, v.Name, i, idx, prev, len(v.Samples))
		}
		prev = idx
	}
	return nil
}

// Marker is a list of timestamps, each tagged with one fixed-width text value
// per field.
type Marker struct {
	Meta
	// Width is the byte width of every value. Zero lets the writer pick the
	// longest value plus one.
	Width      int
	Timestamps []int32
	Fields     []MarkerField
}

// MarkerField holds a field name and one value per marker timestamp.
type MarkerField struct {
	Name   string
	Values []string
}

func (*Marker) Type() VarType { return TypeMarker }

// Len returns the number of marker timestamps.
func (v *Marker) Len() int { return len(v.Timestamps) }

// Field returns the field called name.
func (v *Marker) Field(name string) (MarkerField, bool) {
	for _, f := range v.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return MarkerField{}, false
}

const maxInt32 = 1<<31 - 1
