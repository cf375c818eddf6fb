package ctrees

import (
	"fmt"
)

// NumericType selects the numeric representation a parsed token is
// converted to before being written to its destination.  Writes are always
// dispatched on this tag, never on the shape of the destination memory.
type NumericType uint8

const (
	Int32 NumericType = iota
	Int64
	Uint32
	Uint64
	Float32
	Float64

	// numericTypeInvalid is a sentinel
	numericTypeInvalid
)

var numericTypeNames = []string{
	"int32",
	"int64",
	"uint32",
	"uint64",
	"float32",
	"float64",
}

func (t NumericType) String() string {
	if int(t) < len(numericTypeNames) {
		return numericTypeNames[t]
	}
	return fmt.Sprintf("NumericType%d", t)
}

// ParseNumericType converts a string to NumericType.  For example, "int32"
// will return Int32.
func ParseNumericType(v string) (NumericType, error) {
	for t, name := range numericTypeNames {
		if name == v {
			return NumericType(t), nil
		}
	}
	return numericTypeInvalid, fmt.Errorf("%v: invalid numeric type", v)
}

// Size returns the width of the type in bytes, or zero for an invalid tag.
func (t NumericType) Size() int {
	switch t {
	case Int32, Uint32, Float32:
		return 4
	case Int64, Uint64, Float64:
		return 8
	}
	return 0
}
