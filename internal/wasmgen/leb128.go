package wasmgen

import (
	"encoding/binary"
	"math"
)

// encodeULEB128 and encodeSLEB128 are ported directly from the teacher's
// internal/wasmbe/encoding.go, which already implements the standard
// unsigned/signed LEB128 schemes the Wasm binary format requires for every
// variable-length integer (section lengths, indices, i32/i64 constants).
func encodeULEB128(v uint64) []byte {
	if v == 0 {
		return []byte{0}
	}
	var out []byte
	for v > 0 {
		b := byte(v & 0x7F)
		v >>= 7
		if v > 0 {
			b |= 0x80
		}
		out = append(out, b)
	}
	return out
}

func encodeSLEB128(v int64) []byte {
	var out []byte
	more := true
	for more {
		b := byte(v & 0x7F)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			more = false
		} else {
			b |= 0x80
		}
		out = append(out, b)
	}
	return out
}

func encodeF64LE(v float64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
	return buf[:]
}

func encodeName(s string) []byte {
	out := encodeULEB128(uint64(len(s)))
	return append(out, []byte(s)...)
}

func encodeSection(id byte, contents []byte) []byte {
	out := []byte{id}
	out = append(out, encodeULEB128(uint64(len(contents)))...)
	return append(out, contents...)
}

func encodeVector(count int, items []byte) []byte {
	out := encodeULEB128(uint64(count))
	return append(out, items...)
}
