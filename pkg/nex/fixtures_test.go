package nex

const sampleFrequency = 10000

func sampleMarker() *Marker {
	return &Marker{
		Meta:       Meta{Name: "marker1"},
		Width:      16,
		Timestamps: []int32{10000, 20000, 30000},
		Fields: []MarkerField{
			{Name: "field1", Values: []string{"field1value1", "field1value2", "field1value3"}},
			{Name: "field2", Values: []string{"field2value1", "field2value2", "field2value3"}},
		},
	}
}

// sampleVars returns one variable of every kind a reference reader decodes.
func sampleVars() []Variable {
	return []Variable{
		&Neuron{Meta: Meta{Name: "neuron1"}, Timestamps: []int32{10000, 20000, 30000}},
		&Neuron{Meta: Meta{Name: "neuron2"}, Timestamps: []int32{50000, 60000}},
		&Interval{Meta: Meta{Name: "interval1"}, Starts: []int32{10000, 40000}, Ends: []int32{20000, 60000}},
		&Continuous{
			Meta:            Meta{Name: "continuous1"},
			SampleFrequency: 10,
			ADToPhysical:    0.001,
			FragmentTicks:   []int32{10000, 70000},
			FragmentIndexes: []int32{0, 5},
			Samples:         []int16{0, 1, 2, 3, 4, 0, 4, 6},
		},
		&Waveform{
			Meta:            Meta{Name: "wave1"},
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
		sampleMarker(),
	}
}

func sampleSpec() FileSpec {
	return FileSpec{Comment: "test nex file", Frequency: sampleFrequency, End: 100000}
}
