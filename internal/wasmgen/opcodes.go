package wasmgen

import (
	"github.com/pkg/errors"

	"github.com/glintlang/glint/internal/value"
)

// Section ids and value-type/opcode constants, ported from the teacher's
// internal/wasmbe/encoding.go and trimmed to what this language's closed
// {Unit,Bool,I32,F64} type set and instruction set actually emit.
const (
	sectionType     byte = 1
	sectionFunction byte = 3
	sectionExport   byte = 7
	sectionCode     byte = 10
)

const (
	valI32 byte = 0x7F
	valF64 byte = 0x7C
)

const exportFunc byte = 0x00

const (
	opBlock    byte = 0x02
	opLoop     byte = 0x03
	opIf       byte = 0x04
	opElse     byte = 0x05
	opEnd      byte = 0x0B
	opBr       byte = 0x0C
	opReturn   byte = 0x0F
	opCall     byte = 0x10
	opLocalGet byte = 0x20
	opLocalSet byte = 0x21

	opI32Const byte = 0x41
	opF64Const byte = 0x44

	opI32Eqz byte = 0x45
	opI32Eq  byte = 0x46
	opI32Ne  byte = 0x47
	opI32LtS byte = 0x48
	opI32GtS byte = 0x4A
	opI32LeS byte = 0x4C
	opI32GeS byte = 0x4E

	opI32Add  byte = 0x6A
	opI32Sub  byte = 0x6B
	opI32Mul  byte = 0x6C
	opI32DivS byte = 0x6D

	opF64Eq byte = 0x61
	opF64Ne byte = 0x62
	opF64Lt byte = 0x63
	opF64Gt byte = 0x64
	opF64Le byte = 0x65
	opF64Ge byte = 0x66

	opF64Add byte = 0xA0
	opF64Sub byte = 0xA1
	opF64Mul byte = 0xA2
	opF64Div byte = 0xA3
	opF64Neg byte = 0x9A

	blockVoid byte = 0x40

	opUnreachable byte = 0x00
)

// wasmValType maps this language's runtime type to the Wasm value type used
// to represent it: Bool is represented as i32 0/1, matching the source
// target's own choice.
func wasmValType(t value.Type) byte {
	switch t {
	case value.I32, value.Bool:
		return valI32
	case value.F64:
		return valF64
	default:
		panic(errors.New("wasmgen: Unit has no Wasm-representable value type"))
	}
}

// binOpcode returns the binary opcode for a (Op, operand type) pair.
func binOpcode(op value.Op, ty value.Type) byte {
	switch ty {
	case value.I32, value.Bool:
		switch op {
		case value.Add:
			return opI32Add
		case value.Sub:
			return opI32Sub
		case value.Mul:
			return opI32Mul
		case value.Div:
			return opI32DivS
		case value.Eq:
			return opI32Eq
		case value.Ne:
			return opI32Ne
		case value.Lt:
			return opI32LtS
		case value.Le:
			return opI32LeS
		case value.Gt:
			return opI32GtS
		case value.Ge:
			return opI32GeS
		}
	case value.F64:
		switch op {
		case value.Add:
			return opF64Add
		case value.Sub:
			return opF64Sub
		case value.Mul:
			return opF64Mul
		case value.Div:
			return opF64Div
		case value.Eq:
			return opF64Eq
		case value.Ne:
			return opF64Ne
		case value.Lt:
			return opF64Lt
		case value.Le:
			return opF64Le
		case value.Gt:
			return opF64Gt
		case value.Ge:
			return opF64Ge
		}
	}
	panic(errors.New("wasmgen: operator not defined for this operand type"))
}

// watOpName returns the WAT mnemonic for a (Op, operand type) pair.
func watOpName(op value.Op, ty value.Type) string {
	prefix := "i32"
	if ty == value.F64 {
		prefix = "f64"
	}
	switch op {
	case value.Add:
		return prefix + ".add"
	case value.Sub:
		return prefix + ".sub"
	case value.Mul:
		return prefix + ".mul"
	case value.Div:
		if ty == value.F64 {
			return "f64.div"
		}
		return "i32.div_s"
	case value.Eq:
		return prefix + ".eq"
	case value.Ne:
		return prefix + ".ne"
	case value.Lt:
		if ty == value.F64 {
			return "f64.lt"
		}
		return "i32.lt_s"
	case value.Le:
		if ty == value.F64 {
			return "f64.le"
		}
		return "i32.le_s"
	case value.Gt:
		if ty == value.F64 {
			return "f64.gt"
		}
		return "i32.gt_s"
	case value.Ge:
		if ty == value.F64 {
			return "f64.ge"
		}
		return "i32.ge_s"
	default:
		panic(errors.New("wasmgen: operator not defined for this operand type"))
	}
}
