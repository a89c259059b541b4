// Package value defines Glint's closed scalar type system and the tagged
// runtime values that flow through both the interpreter and the IR builder's
// constant folding of literals.
package value

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Type is the closed set of scalar types the middle end ever sees.
type Type int

const (
	Unit Type = iota
	Bool
	I32
	F64
)

// Size returns the type's fixed byte width.
func (t Type) Size() int {
	switch t {
	case Unit:
		return 0
	case Bool:
		return 1
	case I32:
		return 4
	case F64:
		return 8
	default:
		panic(fmt.Sprintf("value: unknown type %d", int(t)))
	}
}

func (t Type) String() string {
	switch t {
	case Unit:
		return "Unit"
	case Bool:
		return "Bool"
	case I32:
		return "I32"
	case F64:
		return "F64"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// Value is a tagged scalar: a Type paired with its big-endian byte
// representation. Construction is only via the typed constructors below;
// reinterpreting a Value as the wrong type panics.
type Value struct {
	typ   Type
	bytes []byte
}

// I32Value constructs an I32-tagged value.
func I32Value(v int32) Value {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(v))
	return Value{typ: I32, bytes: b}
}

// F64Value constructs an F64-tagged value.
func F64Value(v float64) Value {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, math.Float64bits(v))
	return Value{typ: F64, bytes: b}
}

// BoolValue constructs a Bool-tagged value.
func BoolValue(v bool) Value {
	if v {
		return Value{typ: Bool, bytes: []byte{1}}
	}
	return Value{typ: Bool, bytes: []byte{0}}
}

// UnitValue is the single value of type Unit.
func UnitValue() Value {
	return Value{typ: Unit, bytes: nil}
}

// FromBytes reconstructs a Value of the given type from its byte encoding,
// the inverse of Bytes.
func FromBytes(t Type, b []byte) Value {
	buf := make([]byte, len(b))
	copy(buf, b)
	return Value{typ: t, bytes: buf}
}

// Type returns the value's tag.
func (v Value) Type() Type { return v.typ }

// Size returns the byte size of the value's type.
func (v Value) Size() int { return v.typ.Size() }

// Bytes returns the value's big-endian byte encoding.
func (v Value) Bytes() []byte { return v.bytes }

// AsI32 returns the underlying int32, panicking on a type-tag mismatch —
// an accessor panic is always a core-invariant violation (spec.md §7 kind 4),
// never a user-facing error.
func (v Value) AsI32() int32 {
	if v.typ != I32 {
		panic(fmt.Sprintf("value: not an i32 (got %s)", v.typ))
	}
	return int32(binary.BigEndian.Uint32(v.bytes))
}

// AsF64 returns the underlying float64, panicking on a type-tag mismatch.
func (v Value) AsF64() float64 {
	if v.typ != F64 {
		panic(fmt.Sprintf("value: not an f64 (got %s)", v.typ))
	}
	return math.Float64frombits(binary.BigEndian.Uint64(v.bytes))
}

// AsBool returns the underlying bool, panicking on a type-tag mismatch.
func (v Value) AsBool() bool {
	if v.typ != Bool {
		panic(fmt.Sprintf("value: not a bool (got %s)", v.typ))
	}
	return v.bytes[0] == 1
}

func (v Value) String() string {
	switch v.typ {
	case I32:
		return fmt.Sprintf("%d", v.AsI32())
	case F64:
		return fmt.Sprintf("%g", v.AsF64())
	case Bool:
		return fmt.Sprintf("%t", v.AsBool())
	default:
		return "unit"
	}
}
