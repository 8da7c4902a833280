package nex

import (
	"bytes"
	"errors"
	"testing"
)

func TestPayloadSizeFormulas(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		h    VarHeader
		want int64
	}{
		{"neuron", VarHeader{Type: TypeNeuron, Count: 3}, 12},
		{"event", VarHeader{Type: TypeEvent, Count: 5}, 20},
		{"interval", VarHeader{Type: TypeInterval, Count: 2}, 16},
		{"waveform", VarHeader{Type: TypeWaveform, Count: 3, PointsPerWave: 8}, 3*4 + 3*8*2},
		{"continuous", VarHeader{Type: TypeContinuous, Count: 2, PointsPerWave: 8}, 2*4 + 2*4 + 8*2},
		{"marker", VarHeader{Type: TypeMarker, Count: 3, MarkerFields: 2, MarkerWidth: 16}, 3*4 + 2*(64+3*16)},
		{"popvector", VarHeader{Type: TypePopulationVector, Count: 4}, 32},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := PayloadSize(tc.h)
			if err != nil {
				t.Fatalf("payload size: %v", err)
			}
			if got != tc.want {
				t.Fatalf("payload size: got %d want %d", got, tc.want)
			}
		})
	}

	if _, err := PayloadSize(VarHeader{Type: 9, Count: 1}); !errors.Is(err, ErrUnknownVarType) {
		t.Fatalf("expected ErrUnknownVarType, got %v", err)
	}
	if _, err := PayloadSize(VarHeader{Type: TypeEvent, Count: -1}); !errors.Is(err, ErrCorruptHeader) {
		t.Fatalf("expected ErrCorruptHeader, got %v", err)
	}
}

func TestLayoutOffsetsArePacked(t *testing.T) {
	t.Parallel()

	vars := sampleVars()
	headers, sizes, err := Layout(vars)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if len(headers) != len(vars) || len(sizes) != len(vars) {
		t.Fatalf("layout lengths: %d headers, %d sizes, %d vars", len(headers), len(sizes), len(vars))
	}

	want := int64(FileHeaderSize + len(vars)*VarHeaderSize)
	for i, h := range headers {
		if int64(h.DataOffset) != want {
			t.Fatalf("variable %d offset: got %d want %d", i, h.DataOffset, want)
		}
		n, err := PayloadSize(h)
		if err != nil {
			t.Fatalf("variable %d payload size: %v", i, err)
		}
		if n != sizes[i] {
			t.Fatalf("variable %d size: layout %d, formula %d", i, sizes[i], n)
		}
		want += n
	}
	if err := CheckLayout(headers); err != nil {
		t.Fatalf("check layout: %v", err)
	}

	headers[2].DataOffset += 4
	if err := CheckLayout(headers); !errors.Is(err, ErrInconsistentOffset) {
		t.Fatalf("expected ErrInconsistentOffset, got %v", err)
	}
}

func TestLayoutDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	m := &Marker{
		Meta:       Meta{Name: "m"},
		Timestamps: []int32{1, 2},
		Fields:     []MarkerField{{Name: "f", Values: []string{"a", "bcd"}}},
	}
	w := &Waveform{Meta: Meta{Name: "w"}, UnitNumber: 3, PointsPerWave: 1, Timestamps: []int32{1}, Samples: []int16{9}}
	headers, _, err := Layout([]Variable{m, w})
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if m.Width != 0 {
		t.Fatalf("marker width mutated: %d", m.Width)
	}
	if headers[0].MarkerWidth != 4 {
		t.Fatalf("derived marker width: got %d want 4", headers[0].MarkerWidth)
	}
	if w.Version != 0 || headers[1].Version != VarVersionWireUnit {
		t.Fatalf("version derivation: input %d, header %d", w.Version, headers[1].Version)
	}
}

func TestLayoutRejectsInconsistentVariables(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		v    Variable
		want error
	}{
		{"interval lengths", &Interval{Starts: []int32{1, 2}, Ends: []int32{3}}, ErrInconsistentVariable},
		{"waveform samples", &Waveform{PointsPerWave: 4, Timestamps: []int32{1}, Samples: []int16{1, 2}}, ErrInconsistentVariable},
		{"continuous lengths", &Continuous{FragmentTicks: []int32{1}, FragmentIndexes: nil}, ErrInconsistentVariable},
		{"continuous index past end", &Continuous{FragmentTicks: []int32{1}, FragmentIndexes: []int32{3}, Samples: []int16{1}}, ErrInconsistentVariable},
		{"marker values", &Marker{Timestamps: []int32{1}, Fields: []MarkerField{{Name: "f"}}}, ErrInconsistentVariable},
		{"marker width", &Marker{Width: 2, Timestamps: []int32{1}, Fields: []MarkerField{{Name: "f", Values: []string{"abc"}}}}, ErrFieldTooLong},
		{"long name", &Event{Meta: Meta{Name: string(bytes.Repeat([]byte("n"), 65))}}, ErrFieldTooLong},
		{"nul in name", &Event{Meta: Meta{Name: "a\x00b"}}, ErrInconsistentVariable},
		{"nul in marker value", &Marker{Timestamps: []int32{1}, Fields: []MarkerField{{Name: "f", Values: []string{"a\x00b"}}}}, ErrInconsistentVariable},
		{"nul in marker field name", &Marker{Timestamps: []int32{1}, Fields: []MarkerField{{Name: "f\x00g", Values: []string{"v"}}}}, ErrInconsistentVariable},
		{"nil variable", nil, ErrInconsistentVariable},
		{"typed nil event", (*Event)(nil), ErrInconsistentVariable},
		{"typed nil marker", (*Marker)(nil), ErrInconsistentVariable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Layout([]Variable{&Event{Meta: Meta{Name: "ok"}}, tc.v})
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			var ve *VarError
			if !errors.As(err, &ve) || ve.Index != 1 {
				t.Fatalf("expected VarError for index 1, got %v", err)
			}
		})
	}
}

func TestEncodeRejectsEmbeddedNUL(t *testing.T) {
	t.Parallel()

	marker := &Marker{Meta: Meta{Name: "m"}, Timestamps: []int32{1}, Fields: []MarkerField{{Name: "f", Values: []string{"a\x00b"}}}}
	var buf bytes.Buffer
	if _, err := Encode(&buf, sampleSpec(), []Variable{marker}); !errors.Is(err, ErrInconsistentVariable) {
		t.Fatalf("marker value: expected ErrInconsistentVariable, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("marker value: wrote %d bytes before failing", buf.Len())
	}

	spec := sampleSpec()
	spec.Comment = "left\x00right"
	if _, err := Encode(&buf, spec, sampleVars()); !errors.Is(err, ErrInconsistentVariable) {
		t.Fatalf("comment: expected ErrInconsistentVariable, got %v", err)
	}
}

func TestMarkerPayloadIsFieldMajor(t *testing.T) {
	t.Parallel()

	m := sampleMarker()
	headers, sizes, err := Layout([]Variable{m})
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	h := headers[0]
	if h.MarkerFields != 2 || h.Count != 3 || h.MarkerWidth != 16 {
		t.Fatalf("marker header: %+v", h)
	}
	if got := sizes[0] - int64(h.Count)*4; got != 224 {
		t.Fatalf("marker field block: got %d bytes want 224", got)
	}

	p := make([]byte, sizes[0])
	m.encode(p)
	at := func(off, n int) string { return fixedString(p[off : off+n]) }

	const base = 3 * 4
	checks := []struct {
		off  int
		n    int
		want string
	}{
		{base, 64, "field1"},
		{base + 64, 16, "field1value1"},
		{base + 64 + 16, 16, "field1value2"},
		{base + 64 + 32, 16, "field1value3"},
		{base + 64 + 48, 64, "field2"},
		{base + 64 + 48 + 64, 16, "field2value1"},
		{base + 64 + 48 + 64 + 32, 16, "field2value3"},
	}
	for _, c := range checks {
		if got := at(c.off, c.n); got != c.want {
			t.Fatalf("offset %d: got %q want %q", c.off, got, c.want)
		}
	}

	back, err := decodePayload(h, p)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	dm := back.(*Marker)
	if len(dm.Fields) != 2 || dm.Fields[1].Values[2] != "field2value3" {
		t.Fatalf("decoded marker fields: %+v", dm.Fields)
	}
}

func TestEndToEndNeuronTicks(t *testing.T) {
	t.Parallel()

	const freq = 10000.0
	ticks1, err := TicksFromSeconds([]float64{1.5, 4.1, 5.3}, freq)
	if err != nil {
		t.Fatalf("ticks: %v", err)
	}
	ticks2, err := TicksFromSeconds([]float64{0.005, 1.123}, freq)
	if err != nil {
		t.Fatalf("ticks: %v", err)
	}
	vars := []Variable{
		&Neuron{Meta: Meta{Name: "Neuron1"}, Timestamps: ticks1},
		&Neuron{Meta: Meta{Name: "Neuron2"}, Timestamps: ticks2},
	}

	var buf bytes.Buffer
	fh, err := Encode(&buf, FileSpec{Comment: "test nex file", Frequency: freq, End: 100000}, vars)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if fh.NumVars != 2 {
		t.Fatalf("numvars: got %d", fh.NumVars)
	}

	raw := buf.Bytes()
	dataOffset := func(i int) int32 {
		return int32(le.Uint32(raw[FileHeaderSize+i*VarHeaderSize+72:]))
	}
	first, second := dataOffset(0), dataOffset(1)
	if first != FileHeaderSize+2*VarHeaderSize {
		t.Fatalf("first offset: got %d want %d", first, FileHeaderSize+2*VarHeaderSize)
	}
	if second != first+3*4 {
		t.Fatalf("second offset: got %d want %d", second, first+12)
	}

	want := []int32{15000, 41000, 53000, 50, 11230}
	for i, w := range want {
		got := int32(le.Uint32(raw[int(first)+i*4:]))
		if got != w {
			t.Fatalf("tick %d: got %d want %d", i, got, w)
		}
	}
	if len(raw) != int(first)+len(want)*4 {
		t.Fatalf("file size: got %d want %d", len(raw), int(first)+len(want)*4)
	}
}
