package nex

import (
	"encoding/binary"
	"fmt"
	"math"
)

var le = binary.LittleEndian

// FileHeader is the fixed 544 byte record at the start of every NEX file.
type FileHeader struct {
	Version        int32
	Comment        string
	Frequency      float64 // ticks per second
	Beg            int32
	End            int32 // one past the last recordable tick
	NumVars        int32
	NextFileHeader int32 // carried, never interpreted
}

// File header field offsets.
const (
	fhMagic     = 0
	fhVersion   = 4
	fhComment   = 8
	fhFrequency = 264
	fhBeg       = 272
	fhEnd       = 276
	fhNumVars   = 280
	fhNext      = 284
)

// DecodeFileHeader parses the file header from the first FileHeaderSize bytes of b.
func DecodeFileHeader(b []byte) (FileHeader, error) {
	if len(b) < FileHeaderSize {
		return FileHeader{}, fmt.Errorf("%w: file header needs %d bytes, have %d", ErrTruncated, FileHeaderSize, len(b))
	}
	if string(b[fhMagic:fhMagic+4]) != Magic {
		return FileHeader{}, fmt.Errorf("%w: %q", ErrBadMagic, b[fhMagic:fhMagic+4])
	}
	h := FileHeader{
		Version:        int32(le.Uint32(b[fhVersion:])),
		Comment:        fixedString(b[fhComment : fhComment+CommentSize]),
		Frequency:      math.Float64frombits(le.Uint64(b[fhFrequency:])),
		Beg:            int32(le.Uint32(b[fhBeg:])),
		End:            int32(le.Uint32(b[fhEnd:])),
		NumVars:        int32(le.Uint32(b[fhNumVars:])),
		NextFileHeader: int32(le.Uint32(b[fhNext:])),
	}
	if h.NumVars < 0 {
		return FileHeader{}, fmt.Errorf("%w: negative variable count %d", ErrCorruptHeader, h.NumVars)
	}
	return h, nil
}

// MarshalBinary encodes the header into its 544 byte wire form.
func (h FileHeader) MarshalBinary() ([]byte, error) {
	b := make([]byte, FileHeaderSize)
	if err := encodeFileHeader(b, h); err != nil {
		return nil, err
	}
	return b, nil
}

func encodeFileHeader(b []byte, h FileHeader) error {
	if len(b) < FileHeaderSize {
		return fmt.Errorf("nex: file header buffer is %d bytes", len(b))
	}
	clear(b[:FileHeaderSize])
	copy(b[fhMagic:], Magic)
	le.PutUint32(b[fhVersion:], uint32(h.Version))
	if err := putFixedString(b[fhComment:fhComment+CommentSize], h.Comment, "comment"); err != nil {
		return err
	}
	le.PutUint64(b[fhFrequency:], math.Float64bits(h.Frequency))
	le.PutUint32(b[fhBeg:], uint32(h.Beg))
	le.PutUint32(b[fhEnd:], uint32(h.End))
	le.PutUint32(b[fhNumVars:], uint32(h.NumVars))
	le.PutUint32(b[fhNext:], uint32(h.NextFileHeader))
	return nil
}

// VarHeader is one 208 byte directory entry.
//
// WireNumber and UnitNumber are zero unless Version >= 101, PrethresholdSeconds
// is zero unless Version >= 102, whatever the stored bytes say.
type VarHeader struct {
	Type       VarType
	Version    int32
	Name       string
	DataOffset int32
	Count      int32

	// Neuron metadata, opaque to the codec.
	WireNumber int32
	UnitNumber int32
	Gain       int32
	Filter     int32
	XPos       float64
	YPos       float64

	// Waveform and continuous metadata. physical = raw*ADToPhysical + PhysicalOffset.
	SampleFrequency float64
	ADToPhysical    float64
	PointsPerWave   int32

	// Marker metadata.
	MarkerFields int32
	MarkerWidth  int32

	PhysicalOffset      float64
	PrethresholdSeconds float64
}

// Variable header field offsets.
const (
	vhType         = 0
	vhVersion      = 4
	vhName         = 8
	vhDataOffset   = 72
	vhCount        = 76
	vhWire         = 80
	vhUnit         = 84
	vhGain         = 88
	vhFilter       = 92
	vhXPos         = 96
	vhYPos         = 104
	vhWFrequency   = 112
	vhADToMV       = 120
	vhPointsWave   = 128
	vhMarkerFields = 132
	vhMarkerWidth  = 136
	vhMVOffset     = 140
	vhPrethreshold = 148
)

// DecodeVarHeader parses one directory entry and applies version gating.
// Unknown Type values are kept as is.
func DecodeVarHeader(b []byte) (VarHeader, error) {
	if len(b) < VarHeaderSize {
		return VarHeader{}, fmt.Errorf("%w: variable header needs %d bytes, have %d", ErrTruncated, VarHeaderSize, len(b))
	}
	h := VarHeader{
		Type:                VarType(int32(le.Uint32(b[vhType:]))),
		Version:             int32(le.Uint32(b[vhVersion:])),
		Name:                fixedString(b[vhName : vhName+NameSize]),
		DataOffset:          int32(le.Uint32(b[vhDataOffset:])),
		Count:               int32(le.Uint32(b[vhCount:])),
		WireNumber:          int32(le.Uint32(b[vhWire:])),
		UnitNumber:          int32(le.Uint32(b[vhUnit:])),
		Gain:                int32(le.Uint32(b[vhGain:])),
		Filter:              int32(le.Uint32(b[vhFilter:])),
		XPos:                math.Float64frombits(le.Uint64(b[vhXPos:])),
		YPos:                math.Float64frombits(le.Uint64(b[vhYPos:])),
		SampleFrequency:     math.Float64frombits(le.Uint64(b[vhWFrequency:])),
		ADToPhysical:        math.Float64frombits(le.Uint64(b[vhADToMV:])),
		PointsPerWave:       int32(le.Uint32(b[vhPointsWave:])),
		MarkerFields:        int32(le.Uint32(b[vhMarkerFields:])),
		MarkerWidth:         int32(le.Uint32(b[vhMarkerWidth:])),
		PhysicalOffset:      math.Float64frombits(le.Uint64(b[vhMVOffset:])),
		PrethresholdSeconds: math.Float64frombits(le.Uint64(b[vhPrethreshold:])),
	}
	if h.Version < VarVersionWireUnit {
		h.WireNumber = 0
		h.UnitNumber = 0
	}
	if h.Version < VarVersionPrethreshold {
		h.PrethresholdSeconds = 0
	}
	return h, nil
}

// MarshalBinary encodes the header into its 208 byte wire form.
func (h VarHeader) MarshalBinary() ([]byte, error) {
	b := make([]byte, VarHeaderSize)
	if err := encodeVarHeader(b, h); err != nil {
		return nil, err
	}
	return b, nil
}

func encodeVarHeader(b []byte, h VarHeader) error {
	if len(b) < VarHeaderSize {
		return fmt.Errorf("nex: variable header buffer is %d bytes", len(b))
	}
	clear(b[:VarHeaderSize])
	le.PutUint32(b[vhType:], uint32(h.Type))
	le.PutUint32(b[vhVersion:], uint32(h.Version))
	if err := putFixedString(b[vhName:vhName+NameSize], h.Name, "variable name"); err != nil {
		return err
	}
	le.PutUint32(b[vhDataOffset:], uint32(h.DataOffset))
	le.PutUint32(b[vhCount:], uint32(h.Count))
	le.PutUint32(b[vhWire:], uint32(h.WireNumber))
	le.PutUint32(b[vhUnit:], uint32(h.UnitNumber))
	le.PutUint32(b[vhGain:], uint32(h.Gain))
	le.PutUint32(b[vhFilter:], uint32(h.Filter))
	le.PutUint64(b[vhXPos:], math.Float64bits(h.XPos))
	le.PutUint64(b[vhYPos:], math.Float64bits(h.YPos))
	le.PutUint64(b[vhWFrequency:], math.Float64bits(h.SampleFrequency))
	le.PutUint64(b[vhADToMV:], math.Float64bits(h.ADToPhysical))
	le.PutUint32(b[vhPointsWave:], uint32(h.PointsPerWave))
	le.PutUint32(b[vhMarkerFields:], uint32(h.MarkerFields))
	le.PutUint32(b[vhMarkerWidth:], uint32(h.MarkerWidth))
	le.PutUint64(b[vhMVOffset:], math.Float64bits(h.PhysicalOffset))
	le.PutUint64(b[vhPrethreshold:], math.Float64bits(h.PrethresholdSeconds))
	return nil
}

// gateFileVersion zeroes fields the enclosing file version does not define.
func (h *VarHeader) gateFileVersion(fileVersion int32) {
	if fileVersion < FileVersionPhysicalOffset {
		h.PhysicalOffset = 0
	}
}
