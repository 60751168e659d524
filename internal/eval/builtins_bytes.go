package eval

import (
	"encoding/binary"
	"math"

	"slipinterp/internal/value"
)

// installBytesBuiltins wires the bytes-<elem> family the parser's
// `<elem>#[...]` literal syntax expands into (parser.go's
// parseBytesLit): each takes a list of numbers and packs them
// little-endian into a value.Bytes of the matching element tag (§4.1).
func installBytesBuiltins(ev *Evaluator, root *value.Scope) {
	bindPure(ev, root, "bytes-u8", 1, false, bytesPacker("u8", packU8))
	bindPure(ev, root, "bytes-u16", 1, false, bytesPacker("u16", packU16))
	bindPure(ev, root, "bytes-u32", 1, false, bytesPacker("u32", packU32))
	bindPure(ev, root, "bytes-u64", 1, false, bytesPacker("u64", packU64))
	bindPure(ev, root, "bytes-i8", 1, false, bytesPacker("i8", packU8))
	bindPure(ev, root, "bytes-i16", 1, false, bytesPacker("i16", packU16))
	bindPure(ev, root, "bytes-i32", 1, false, bytesPacker("i32", packU32))
	bindPure(ev, root, "bytes-i64", 1, false, bytesPacker("i64", packU64))
	bindPure(ev, root, "bytes-f32", 1, false, bytesPacker("f32", packF32))
	bindPure(ev, root, "bytes-f64", 1, false, bytesPacker("f64", packF64))
	bindPure(ev, root, "bytes-b1", 1, false, biBytesB1)
}

func elemList(op string, args []value.Value) ([]value.Value, error) {
	if len(args) != 1 {
		return nil, &TypeError{Op: op, Message: "expected a list of numbers"}
	}
	l, ok := args[0].(*value.List)
	if !ok {
		return nil, &TypeError{Op: op, Message: "expected a list of numbers"}
	}
	return l.Items, nil
}

func bytesPacker(elem string, pack func(buf *[]byte, v value.Value) error) func([]value.Value) (value.Value, error) {
	return func(args []value.Value) (value.Value, error) {
		items, err := elemList("bytes-"+elem, args)
		if err != nil {
			return nil, err
		}
		var buf []byte
		for _, it := range items {
			if err := pack(&buf, it); err != nil {
				return nil, err
			}
		}
		return value.Bytes{Elem: elem, Data: buf}, nil
	}
}

func packU8(buf *[]byte, v value.Value) error {
	n, _, ok := asNumber(v)
	if !ok {
		return &TypeError{Op: "bytes-u8", Message: "expected a number"}
	}
	*buf = append(*buf, byte(int64(n)))
	return nil
}

func packU16(buf *[]byte, v value.Value) error {
	n, _, ok := asNumber(v)
	if !ok {
		return &TypeError{Op: "bytes-u16", Message: "expected a number"}
	}
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], uint16(int64(n)))
	*buf = append(*buf, tmp[:]...)
	return nil
}

func packU32(buf *[]byte, v value.Value) error {
	n, _, ok := asNumber(v)
	if !ok {
		return &TypeError{Op: "bytes-u32", Message: "expected a number"}
	}
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], uint32(int64(n)))
	*buf = append(*buf, tmp[:]...)
	return nil
}

func packU64(buf *[]byte, v value.Value) error {
	n, _, ok := asNumber(v)
	if !ok {
		return &TypeError{Op: "bytes-u64", Message: "expected a number"}
	}
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], uint64(int64(n)))
	*buf = append(*buf, tmp[:]...)
	return nil
}

func packF32(buf *[]byte, v value.Value) error {
	n, _, ok := asNumber(v)
	if !ok {
		return &TypeError{Op: "bytes-f32", Message: "expected a number"}
	}
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], math.Float32bits(float32(n)))
	*buf = append(*buf, tmp[:]...)
	return nil
}

func packF64(buf *[]byte, v value.Value) error {
	n, _, ok := asNumber(v)
	if !ok {
		return &TypeError{Op: "bytes-f64", Message: "expected a number"}
	}
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(n))
	*buf = append(*buf, tmp[:]...)
	return nil
}

// biBytesB1 packs a list of truthy/falsy values into bits, MSB-first
// within each byte, padding the final byte's low bits with zero.
func biBytesB1(args []value.Value) (value.Value, error) {
	items, err := elemList("bytes-b1", args)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, (len(items)+7)/8)
	for i, it := range items {
		if !value.Truthy(it) {
			continue
		}
		buf[i/8] |= 1 << uint(7-i%8)
	}
	return value.Bytes{Elem: "b1", Data: buf}, nil
}
