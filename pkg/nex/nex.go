// Package nex implements the NEX container format for neurophysiology recordings.
//
// A NEX file is a fixed-size file header followed by a directory of fixed-size
// variable headers and then the variable payloads. Every timestamp is stored as
// an integer tick; seconds = tick / Frequency. The codec never converts units on
// its own: decoded variables carry raw ticks and raw A/D samples, and the helpers
// in convert.go map them to seconds and physical units.
package nex

import "strconv"

// NEX global constants must never change.
const (
	// Magic is the four byte tag at the start of every NEX file.
	Magic = "NEX1"

	// FileHeaderSize is the on-disk size of the file header.
	FileHeaderSize = 544

	// VarHeaderSize is the on-disk size of one directory entry.
	VarHeaderSize = 208

	// NameSize is the width of variable and marker field names.
	NameSize = 64

	// CommentSize is the width of the file comment.
	CommentSize = 256
)

// Known file versions.
//
// Versions 102 and 103 were beta releases. PhysicalOffset is meaningful from
// 105 and later; 106 is the current writer version.
const (
	FileVersionBase           int32 = 100
	FileVersionPhysicalOffset int32 = 105
	FileVersionCurrent        int32 = 106
)

// Variable header versions gate optional fields.
const (
	VarVersionBase         int32 = 100
	VarVersionWireUnit     int32 = 101
	VarVersionPrethreshold int32 = 102
)

// VarType is the variable kind discriminant stored in each directory entry.
type VarType int32

const (
	TypeNeuron           VarType = 0
	TypeEvent            VarType = 1
	TypeInterval         VarType = 2
	TypeWaveform         VarType = 3
	TypePopulationVector VarType = 4
	TypeContinuous       VarType = 5
	TypeMarker           VarType = 6
)

var varTypeNames = [...]string{
	TypeNeuron:           "neuron",
	TypeEvent:            "event",
	TypeInterval:         "interval",
	TypeWaveform:         "waveform",
	TypePopulationVector: "popvector",
	TypeContinuous:       "continuous",
	TypeMarker:           "marker",
}

// Known reports whether t is one of the seven defined variable kinds.
func (t VarType) Known() bool {
	return t >= TypeNeuron && t <= TypeMarker
}

func (t VarType) String() string {
	if t.Known() {
		return varTypeNames[t]
	}
	return "unknown(" + strconv.Itoa(int(t)) + ")"
}

// ParseVarType maps a type name as printed by String back to its VarType.
func ParseVarType(s string) (VarType, bool) {
	for i, name := range varTypeNames {
		if name == s {
			return VarType(i), true
		}
	}
	return 0, false
}
