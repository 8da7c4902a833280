package nexstore

import (
	"fmt"

	"github.com/samcharles93/nex/pkg/nex"
)

type FileInfo struct {
	Path      string         `json:"path,omitempty"`
	Version   int32          `json:"version"`
	Comment   string         `json:"comment"`
	Frequency float64        `json:"frequency"`
	TBeg      float64        `json:"tbeg"`
	TEnd      float64        `json:"tend"`
	NumVars   int            `json:"num_vars"`
	Size      int64          `json:"size"`
	Counts    map[string]int `json:"counts"`
}

type VariableInfo struct {
	Index           int     `json:"index"`
	Name            string  `json:"name"`
	Type            string  `json:"type"`
	Version         int32   `json:"version"`
	Count           int32   `json:"count"`
	DataOffset      int32   `json:"data_offset"`
	Wire            int32   `json:"wire,omitempty"`
	Unit            int32   `json:"unit,omitempty"`
	SampleFrequency float64 `json:"sample_frequency,omitempty"`
	Points          int32   `json:"points,omitempty"`
	MarkerFields    int32   `json:"marker_fields,omitempty"`
}

type EventData struct {
	Name       string    `json:"name"`
	Timestamps []float64 `json:"timestamps"`
}

type NeuronData struct {
	Name       string    `json:"name"`
	Wire       int32     `json:"wire"`
	Unit       int32     `json:"unit"`
	XPos       float64   `json:"x_pos"`
	YPos       float64   `json:"y_pos"`
	Timestamps []float64 `json:"timestamps"`
}

type IntervalData struct {
	Name      string    `json:"name"`
	Starts    []float64 `json:"starts"`
	Ends      []float64 `json:"ends"`
	Durations []float64 `json:"durations"`
}

// WaveformData holds each wave converted to physical units.
type WaveformData struct {
	Name            string      `json:"name"`
	Wire            int32       `json:"wire"`
	Unit            int32       `json:"unit"`
	SampleFrequency float64     `json:"sample_frequency"`
	ADToMV          float64     `json:"ad_to_mv"`
	MVOffset        float64     `json:"mv_offset"`
	Prethreshold    float64     `json:"prethreshold"`
	PointsPerWave   int         `json:"points_per_wave"`
	Timestamps      []float64   `json:"timestamps"`
	Waves           [][]float64 `json:"waves"`
}

// ContinuousData is a continuous channel in physical units. FragmentStarts
// are sample indexes into Data.
type ContinuousData struct {
	Name               string    `json:"name"`
	ADFrequency        float64   `json:"ad_frequency"`
	ADToMV             float64   `json:"ad_to_mv"`
	MVOffset           float64   `json:"mv_offset"`
	FragmentTimestamps []float64 `json:"fragment_timestamps"`
	FragmentStarts     []int     `json:"fragment_starts"`
	Data               []float64 `json:"data"`
}

type MarkerField struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

type MarkerData struct {
	Name       string        `json:"name"`
	Timestamps []float64     `json:"timestamps"`
	Fields     []MarkerField `json:"fields"`
}

type PopulationVectorData struct {
	Name    string    `json:"name"`
	Weights []float64 `json:"weights"`
}

func unexpected(v nex.Variable, want nex.VarType) error {
	return fmt.Errorf("nexstore: %q is %s, want %s", v.Info().Name, v.Type(), want)
}

func eventData(v nex.Variable, freq float64) (EventData, error) {
	ev, ok := v.(*nex.Event)
	if !ok {
		return EventData{}, unexpected(v, nex.TypeEvent)
	}
	ts, err := nex.TicksSliceToSeconds(ev.Timestamps, freq)
	if err != nil {
		return EventData{}, err
	}
	return EventData{Name: ev.Name, Timestamps: ts}, nil
}

func neuronData(v nex.Variable, freq float64) (NeuronData, error) {
	n, ok := v.(*nex.Neuron)
	if !ok {
		return NeuronData{}, unexpected(v, nex.TypeNeuron)
	}
	ts, err := nex.TicksSliceToSeconds(n.Timestamps, freq)
	if err != nil {
		return NeuronData{}, err
	}
	return NeuronData{
		Name:       n.Name,
		Wire:       n.WireNumber,
		Unit:       n.UnitNumber,
		XPos:       n.XPos,
		YPos:       n.YPos,
		Timestamps: ts,
	}, nil
}

func intervalData(v nex.Variable, freq float64) (IntervalData, error) {
	iv, ok := v.(*nex.Interval)
	if !ok {
		return IntervalData{}, unexpected(v, nex.TypeInterval)
	}
	starts, err := nex.TicksSliceToSeconds(iv.Starts, freq)
	if err != nil {
		return IntervalData{}, err
	}
	ends, err := nex.TicksSliceToSeconds(iv.Ends, freq)
	if err != nil {
		return IntervalData{}, err
	}
	durations := make([]float64, len(starts))
	for i := range starts {
		durations[i] = ends[i] - starts[i]
	}
	return IntervalData{Name: iv.Name, Starts: starts, Ends: ends, Durations: durations}, nil
}

func waveformData(v nex.Variable, freq float64) (WaveformData, error) {
	w, ok := v.(*nex.Waveform)
	if !ok {
		return WaveformData{}, unexpected(v, nex.TypeWaveform)
	}
	ts, err := nex.TicksSliceToSeconds(w.Timestamps, freq)
	if err != nil {
		return WaveformData{}, err
	}
	waves := make([][]float64, w.Len())
	for i := range waves {
		waves[i] = nex.SamplesToPhysical(w.Wave(i), w.ADToPhysical, w.PhysicalOffset)
	}
	return WaveformData{
		Name:            w.Name,
		Wire:            w.WireNumber,
		Unit:            w.UnitNumber,
		SampleFrequency: w.SampleFrequency,
		ADToMV:          w.ADToPhysical,
		MVOffset:        w.PhysicalOffset,
		Prethreshold:    w.PrethresholdSeconds,
		PointsPerWave:   w.PointsPerWave,
		Timestamps:      ts,
		Waves:           waves,
	}, nil
}

func continuousData(v nex.Variable, freq float64) (ContinuousData, error) {
	c, ok := v.(*nex.Continuous)
	if !ok {
		return ContinuousData{}, unexpected(v, nex.TypeContinuous)
	}
	frags, err := c.Fragments()
	if err != nil {
		return ContinuousData{}, err
	}
	ts, err := nex.TicksSliceToSeconds(c.FragmentTicks, freq)
	if err != nil {
		return ContinuousData{}, err
	}
	starts := make([]int, len(frags))
	for i, fr := range frags {
		starts[i] = fr.FirstIndex
	}
	return ContinuousData{
		Name:               c.Name,
		ADFrequency:        c.SampleFrequency,
		ADToMV:             c.ADToPhysical,
		MVOffset:           c.PhysicalOffset,
		FragmentTimestamps: ts,
		FragmentStarts:     starts,
		Data:               nex.SamplesToPhysical(c.Samples, c.ADToPhysical, c.PhysicalOffset),
	}, nil
}

func markerData(v nex.Variable, freq float64) (MarkerData, error) {
	m, ok := v.(*nex.Marker)
	if !ok {
		return MarkerData{}, unexpected(v, nex.TypeMarker)
	}
	ts, err := nex.TicksSliceToSeconds(m.Timestamps, freq)
	if err != nil {
		return MarkerData{}, err
	}
	fields := make([]MarkerField, len(m.Fields))
	for i, fl := range m.Fields {
		fields[i] = MarkerField{Name: fl.Name, Values: fl.Values}
	}
	return MarkerData{Name: m.Name, Timestamps: ts, Fields: fields}, nil
}

func populationVectorData(v nex.Variable, _ float64) (PopulationVectorData, error) {
	p, ok := v.(*nex.PopulationVector)
	if !ok {
		return PopulationVectorData{}, unexpected(v, nex.TypePopulationVector)
	}
	return PopulationVectorData{Name: p.Name, Weights: p.Weights}, nil
}

// Convert turns a decoded variable into its typed record, with ticks in
// seconds at freq and samples in physical units.
func Convert(v nex.Variable, freq float64) (any, error) {
	switch v.Type() {
	case nex.TypeNeuron:
		return neuronData(v, freq)
	case nex.TypeEvent:
		return eventData(v, freq)
	case nex.TypeInterval:
		return intervalData(v, freq)
	case nex.TypeWaveform:
		return waveformData(v, freq)
	case nex.TypeContinuous:
		return continuousData(v, freq)
	case nex.TypeMarker:
		return markerData(v, freq)
	case nex.TypePopulationVector:
		return populationVectorData(v, freq)
	default:
		return nil, fmt.Errorf("%w: %d", nex.ErrUnknownVarType, int32(v.Type()))
	}
}
