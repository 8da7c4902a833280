package nex

import "fmt"

// HeaderRegionSize is the byte size of the file header plus a directory of n
// entries. The first payload starts right after it.
func HeaderRegionSize(n int) int64 {
	return FileHeaderSize + int64(n)*VarHeaderSize
}

// Layout derives the directory for vars and assigns every payload its offset.
// Payloads are packed in the order given, with no gaps, starting right after
// the header region. It returns the headers and the payload size of each
// variable. Layout does no I/O.
func Layout(vars []Variable) ([]VarHeader, []int64, error) {
	headers := make([]VarHeader, len(vars))
	sizes := make([]int64, len(vars))
	off := HeaderRegionSize(len(vars))
	for i, v := range vars {
		if isNilVariable(v) {
			return nil, nil, &VarError{Index: i, Err: fmt.Errorf("%w: nil variable", ErrInconsistentVariable)}
		}
		h, err := v.header()
		if err != nil {
			return nil, nil, &VarError{Index: i, Name: v.Info().Name, Type: v.Type(), Err: err}
		}
		n, err := PayloadSize(h)
		if err != nil {
			return nil, nil, &VarError{Index: i, Name: h.Name, Type: h.Type, Err: err}
		}
		if off > maxInt32 {
			return nil, nil, &VarError{Index: i, Name: h.Name, Type: h.Type,
				Err: fmt.Errorf("%w: data offset %d exceeds int32", ErrFileTooLarge, off)}
		}
		h.DataOffset = int32(off)
		headers[i] = h
		sizes[i] = n
		off += n
	}
	return headers, sizes, nil
}

// isNilVariable reports an untyped nil or a nil pointer of a concrete type.
func isNilVariable(v Variable) bool {
	switch v := v.(type) {
	case nil:
		return true
	case *Neuron:
		return v == nil
	case *Event:
		return v == nil
	case *Interval:
		return v == nil
	case *Waveform:
		return v == nil
	case *PopulationVector:
		return v == nil
	case *Continuous:
		return v == nil
	case *Marker:
		return v == nil
	}
	return false
}

// CheckLayout verifies that headers describe payloads packed back to back
// after the header region, which is what Layout produces.
func CheckLayout(headers []VarHeader) error {
	want := HeaderRegionSize(len(headers))
	for i, h := range headers {
		if int64(h.DataOffset) != want {
			return fmt.Errorf("%w: variable %d %q at %d, want %d", ErrInconsistentOffset, i, h.Name, h.DataOffset, want)
		}
		n, err := PayloadSize(h)
		if err != nil {
			return fmt.Errorf("variable %d: %w", i, err)
		}
		want += n
	}
	return nil
}
