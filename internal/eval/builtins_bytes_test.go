package eval

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"slipinterp/internal/value"
)

// TestBytesPackers_LittleEndian is a regression test: the packers used
// to write big-endian, contradicting §4.3's explicit little-endian
// requirement for the u16/u32/u64/f32/f64 byte-stream constructors.
func TestBytesPackers_LittleEndian(t *testing.T) {
	args := func(vs ...value.Value) []value.Value {
		return []value.Value{value.NewList(vs)}
	}

	u16, err := bytesPacker("u16", packU16)(args(value.Int(0x0102)))
	require.NoError(t, err)
	require.Equal(t, []byte{0x02, 0x01}, u16.(value.Bytes).Data)

	u32, err := bytesPacker("u32", packU32)(args(value.Int(0x01020304)))
	require.NoError(t, err)
	require.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, u32.(value.Bytes).Data)

	// Kept within float64's exact-integer range (asNumber round-trips
	// through value.Float) so the expected bytes aren't rounded.
	u64, err := bytesPacker("u64", packU64)(args(value.Int(0x0102030405)))
	require.NoError(t, err)
	require.Equal(t, []byte{0x05, 0x04, 0x03, 0x02, 0x01, 0x00, 0x00, 0x00}, u64.(value.Bytes).Data)

	f32, err := bytesPacker("f32", packF32)(args(value.Float(1.5)))
	require.NoError(t, err)
	bits32 := math.Float32bits(1.5)
	want32 := []byte{byte(bits32), byte(bits32 >> 8), byte(bits32 >> 16), byte(bits32 >> 24)}
	require.Equal(t, want32, f32.(value.Bytes).Data)

	f64, err := bytesPacker("f64", packF64)(args(value.Float(1.5)))
	require.NoError(t, err)
	bits64 := math.Float64bits(1.5)
	want64 := make([]byte, 8)
	for i := 0; i < 8; i++ {
		want64[i] = byte(bits64 >> (8 * uint(i)))
	}
	require.Equal(t, want64, f64.(value.Bytes).Data)
}

// TestBiBytesB1_PacksMSBFirst locks down the b1 bit-packing order,
// which is independent of the little-endian fix but shares the same
// builtin family.
func TestBiBytesB1_PacksMSBFirst(t *testing.T) {
	items := []value.Value{value.Bool(true), value.Bool(false), value.Bool(true)}
	out, err := biBytesB1([]value.Value{value.NewList(items)})
	require.NoError(t, err)
	require.Equal(t, []byte{0b10100000}, out.(value.Bytes).Data)
}
