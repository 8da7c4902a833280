package nex

import (
	"fmt"
	"math"
)

// decodePayload turns a payload of exactly PayloadSize(h) bytes into a
// variable. No unit conversion happens here.
func decodePayload(h VarHeader, p []byte) (Variable, error) {
	meta := Meta{Name: h.Name, Version: h.Version}
	c := int(h.Count)
	switch h.Type {
	case TypeNeuron:
		return &Neuron{
			Meta:       meta,
			WireNumber: h.WireNumber,
			UnitNumber: h.UnitNumber,
			Gain:       h.Gain,
			Filter:     h.Filter,
			XPos:       h.XPos,
			YPos:       h.YPos,
			Timestamps: ticksAt(p, c),
		}, nil
	case TypeEvent:
		return &Event{Meta: meta, Timestamps: ticksAt(p, c)}, nil
	case TypeInterval:
		return &Interval{
			Meta:   meta,
			Starts: ticksAt(p, c),
			Ends:   ticksAt(p[c*4:], c),
		}, nil
	case TypeWaveform:
		n := int(h.PointsPerWave)
		return &Waveform{
			Meta:                meta,
			WireNumber:          h.WireNumber,
			UnitNumber:          h.UnitNumber,
			SampleFrequency:     h.SampleFrequency,
			ADToPhysical:        h.ADToPhysical,
			PhysicalOffset:      h.PhysicalOffset,
			PrethresholdSeconds: h.PrethresholdSeconds,
			PointsPerWave:       n,
			Timestamps:          ticksAt(p, c),
			Samples:             samplesAt(p[c*4:], c*n),
		}, nil
	case TypeContinuous:
		return &Continuous{
			Meta:            meta,
			SampleFrequency: h.SampleFrequency,
			ADToPhysical:    h.ADToPhysical,
			PhysicalOffset:  h.PhysicalOffset,
			FragmentTicks:   ticksAt(p, c),
			FragmentIndexes: ticksAt(p[c*4:], c),
			Samples:         samplesAt(p[c*8:], int(h.PointsPerWave)),
		}, nil
	case TypeMarker:
		return decodeMarker(meta, h, p), nil
	case TypePopulationVector:
		w := make([]float64, c)
		for i := range w {
			w[i] = math.Float64frombits(le.Uint64(p[i*8:]))
		}
		return &PopulationVector{Meta: meta, Weights: w}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownVarType, int32(h.Type))
	}
}

// decodeMarker reads the timestamps and then, for each field in turn, its
// 64 byte name followed by Count values of MarkerWidth bytes.
func decodeMarker(meta Meta, h VarHeader, p []byte) *Marker {
	c := int(h.Count)
	w := int(h.MarkerWidth)
	v := &Marker{
		Meta:       meta,
		Width:      w,
		Timestamps: ticksAt(p, c),
		Fields:     make([]MarkerField, h.MarkerFields),
	}
	p = p[c*4:]
	for i := range v.Fields {
		f := MarkerField{
			Name:   fixedString(p[:NameSize]),
			Values: make([]string, c),
		}
		p = p[NameSize:]
		for j := range f.Values {
			f.Values[j] = fixedString(p[:w])
			p = p[w:]
		}
		v.Fields[i] = f
	}
	return v
}

func ticksAt(p []byte, n int) []int32 {
	out := make([]int32, n)
	for i := range out {
		out[i] = int32(le.Uint32(p[i*4:]))
	}
	return out
}

func samplesAt(p []byte, n int) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = int16(le.Uint16(p[i*2:]))
	}
	return out
}
