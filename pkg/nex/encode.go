package nex

import (
	"fmt"
	"math"
)

// PayloadSize returns the exact payload byte count implied by a header.
func PayloadSize(h VarHeader) (int64, error) {
	c := int64(h.Count)
	p := int64(h.PointsPerWave)
	m := int64(h.MarkerFields)
	w := int64(h.MarkerWidth)
	if c < 0 || p < 0 || m < 0 || w < 0 {
		return 0, fmt.Errorf("%w: negative size field in %s %q", ErrCorruptHeader, h.Type, h.Name)
	}
	switch h.Type {
	case TypeNeuron, TypeEvent:
		return c * 4, nil
	case TypeInterval:
		return c * 4 * 2, nil
	case TypeWaveform:
		return c*4 + c*p*2, nil
	case TypeContinuous:
		return c*4 + c*4 + p*2, nil
	case TypeMarker:
		field := NameSize + c*w
		if m > 0 && field > (math.MaxInt64-c*4)/m {
			return 0, fmt.Errorf("%w: marker %q size overflows", ErrCorruptHeader, h.Name)
		}
		return c*4 + m*field, nil
	case TypePopulationVector:
		return c * 8, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownVarType, int32(h.Type))
	}
}

func putTicks(dst []byte, ticks []int32) []byte {
	for i, t := range ticks {
		le.PutUint32(dst[i*4:], uint32(t))
	}
	return dst[len(ticks)*4:]
}

func putSamples(dst []byte, samples []int16) []byte {
	for i, s := range samples {
		le.PutUint16(dst[i*2:], uint16(s))
	}
	return dst[len(samples)*2:]
}

func (v *Neuron) header() (VarHeader, error) {
	h, err := v.baseHeader(TypeNeuron, len(v.Timestamps))
	if err != nil {
		return h, err
	}
	if v.WireNumber != 0 || v.UnitNumber != 0 {
		h.Version = max(h.Version, VarVersionWireUnit)
	}
	h.WireNumber = v.WireNumber
	h.UnitNumber = v.UnitNumber
	h.Gain = v.Gain
	h.Filter = v.Filter
	h.XPos = v.XPos
	h.YPos = v.YPos
	return h, nil
}

func (v *Neuron) encode(dst []byte) { putTicks(dst, v.Timestamps) }

func (v *Event) header() (VarHeader, error) {
	return v.baseHeader(TypeEvent, len(v.Timestamps))
}

func (v *Event) encode(dst []byte) { putTicks(dst, v.Timestamps) }

func (v *Interval) header() (VarHeader, error) {
	if len(v.Starts) != len(v.Ends) {
		return VarHeader{}, fmt.Errorf("%w: interval %q has %d starts and %d ends",
			ErrInconsistentVariable, v.Name, len(v.Starts), len(v.Ends))
	}
	return v.baseHeader(TypeInterval, len(v.Starts))
}

func (v *Interval) encode(dst []byte) {
	dst = putTicks(dst, v.Starts)
	putTicks(dst, v.Ends)
}

func (v *Waveform) header() (VarHeader, error) {
	if v.PointsPerWave < 0 || v.PointsPerWave > maxInt32 {
		return VarHeader{}, fmt.Errorf("%w: waveform %q points per wave %d", ErrInconsistentVariable, v.Name, v.PointsPerWave)
	}
	if len(v.Samples) != len(v.Timestamps)*v.PointsPerWave {
		return VarHeader{}, fmt.Errorf("%w: waveform %q has %d samples, want %d waves x %d points",
			ErrInconsistentVariable, v.Name, len(v.Samples), len(v.Timestamps), v.PointsPerWave)
	}
	h, err := v.baseHeader(TypeWaveform, len(v.Timestamps))
	if err != nil {
		return h, err
	}
	if v.WireNumber != 0 || v.UnitNumber != 0 {
		h.Version = max(h.Version, VarVersionWireUnit)
	}
	if v.PrethresholdSeconds != 0 {
		h.Version = max(h.Version, VarVersionPrethreshold)
	}
	h.WireNumber = v.WireNumber
	h.UnitNumber = v.UnitNumber
	h.SampleFrequency = v.SampleFrequency
	h.ADToPhysical = v.ADToPhysical
	h.PhysicalOffset = v.PhysicalOffset
	h.PrethresholdSeconds = v.PrethresholdSeconds
	h.PointsPerWave = int32(v.PointsPerWave)
	return h, nil
}

func (v *Waveform) encode(dst []byte) {
	dst = putTicks(dst, v.Timestamps)
	putSamples(dst, v.Samples)
}

func (v *PopulationVector) header() (VarHeader, error) {
	return v.baseHeader(TypePopulationVector, len(v.Weights))
}

func (v *PopulationVector) encode(dst []byte) {
	for i, w := range v.Weights {
		le.PutUint64(dst[i*8:], math.Float64bits(w))
	}
}

func (v *Continuous) header() (VarHeader, error) {
	if err := v.checkFragments(); err != nil {
		return VarHeader{}, err
	}
	if len(v.Samples) > maxInt32 {
		return VarHeader{}, fmt.Errorf("%w: continuous %q has %d samples", ErrFileTooLarge, v.Name, len(v.Samples))
	}
	h, err := v.baseHeader(TypeContinuous, len(v.FragmentTicks))
	if err != nil {
		return h, err
	}
	h.SampleFrequency = v.SampleFrequency
	h.ADToPhysical = v.ADToPhysical
	h.PhysicalOffset = v.PhysicalOffset
	h.PointsPerWave = int32(len(v.Samples))
	return h, nil
}

func (v *Continuous) encode(dst []byte) {
	dst = putTicks(dst, v.FragmentTicks)
	dst = putTicks(dst, v.FragmentIndexes)
	putSamples(dst, v.Samples)
}

// valueWidth is the byte width used for every marker value.
func (v *Marker) valueWidth() int {
	if v.Width > 0 {
		return v.Width
	}
	w := 0
	for _, f := range v.Fields {
		for _, s := range f.Values {
			w = max(w, len(s))
		}
	}
	return w + 1
}

func (v *Marker) header() (VarHeader, error) {
	width := v.valueWidth()
	if width > maxInt32 {
		return VarHeader{}, fmt.Errorf("%w: marker %q value width %d", ErrFileTooLarge, v.Name, width)
	}
	for _, f := range v.Fields {
		if err := checkFixedString(f.Name, NameSize, "field name"); err != nil {
			return VarHeader{}, fmt.Errorf("marker %q: %w", v.Name, err)
		}
		if len(f.Values) != len(v.Timestamps) {
			return VarHeader{}, fmt.Errorf("%w: marker %q field %q has %d values for %d timestamps",
				ErrInconsistentVariable, v.Name, f.Name, len(f.Values), len(v.Timestamps))
		}
		for i, s := range f.Values {
			if err := checkFixedString(s, width, fmt.Sprintf("value %d", i)); err != nil {
				return VarHeader{}, fmt.Errorf("marker %q field %q: %w", v.Name, f.Name, err)
			}
		}
	}
	h, err := v.baseHeader(TypeMarker, len(v.Timestamps))
	if err != nil {
		return h, err
	}
	h.MarkerFields = int32(len(v.Fields))
	h.MarkerWidth = int32(width)
	return h, nil
}

// encode writes the timestamps, then field-major: name, then every value of
// that field.
func (v *Marker) encode(dst []byte) {
	width := v.valueWidth()
	dst = putTicks(dst, v.Timestamps)
	for _, f := range v.Fields {
		// Lengths were checked by header.
		_ = putFixedString(dst[:NameSize], f.Name, "marker field name")
		dst = dst[NameSize:]
		for _, s := range f.Values {
			_ = putFixedString(dst[:width], s, "marker value")
			dst = dst[width:]
		}
	}
}
