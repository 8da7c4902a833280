package nexstore

import "github.com/samcharles93/nex/pkg/nex"

// SampleFrequency is the tick rate of the sample file.
const SampleFrequency = 10000

// SampleSpec is the file header of the sample file.
func SampleSpec() nex.FileSpec {
	return nex.FileSpec{
		Comment:   "test nex file",
		Frequency: SampleFrequency,
		End:       100000,
	}
}

// SampleVariables returns the reference set of six variables: two neurons,
// one interval, one continuous channel in two fragments, three waveforms
// and a two-field marker.
func SampleVariables() []nex.Variable {
	return []nex.Variable{
		&nex.Neuron{Meta: nex.Meta{Name: "neuron1"}, Timestamps: []int32{10000, 20000, 30000}},
		&nex.Neuron{Meta: nex.Meta{Name: "neuron2"}, Timestamps: []int32{50000, 60000}},
		&nex.Interval{
			Meta:   nex.Meta{Name: "interval1"},
			Starts: []int32{10000, 40000},
			Ends:   []int32{20000, 60000},
		},
		&nex.Continuous{
			Meta:            nex.Meta{Name: "continuous1"},
			SampleFrequency: 10,
			ADToPhysical:    0.001,
			FragmentTicks:   []int32{10000, 70000},
			FragmentIndexes: []int32{0, 5},
			Samples:         []int16{0, 1, 2, 3, 4, 0, 4, 6},
		},
		&nex.Waveform{
			Meta:            nex.Meta{Name: "wave1"},
			SampleFrequency: 1000,
			ADToPhysical:    1,
			PointsPerWave:   8,
			Timestamps:      []int32{5000, 15000, 20000},
			Samples: []int16{
				0, 1, 2, 3, 4, 5, 6, 7,
				7, 6, 5, 4, 3, 2, 1, 0,
				0, 1, 2, 3, 4, 5, 6, 7,
			},
		},
		&nex.Marker{
			Meta:       nex.Meta{Name: "marker1"},
			Width:      16,
			Timestamps: []int32{10000, 20000, 30000},
			Fields: []nex.MarkerField{
				{Name: "field1", Values: []string{"field1value1", "field1value2", "field1value3"}},
				{Name: "field2", Values: []string{"field2value1", "field2value2", "field2value3"}},
			},
		},
	}
}

// WriteSample writes the sample file to path. comment and freq override the
// sample header when set.
func WriteSample(path, comment string, freq float64) error {
	spec := SampleSpec()
	if comment != "" {
		spec.Comment = comment
	}
	if freq > 0 {
		spec.Frequency = freq
	}
	return nex.WriteFile(path, spec, SampleVariables())
}
