//go:build !ios && !android && (amd64 || arm64)

// Package roundtrip generates random values of HDF5-mappable Go types and
// checks that they survive conversion through their native layout.
//
// Every generator respects the constraints of the type it produces: fixed
// strings never exceed their capacity and enumerations only yield declared
// members.
package roundtrip

import (
	"math/rand/v2"
	"unicode/utf8"

	"github.com/obinnaokechukwu/h5go"
	"github.com/obinnaokechukwu/h5go/h5types"
)

// MaxVarLen bounds the length of generated variable-length values.
const MaxVarLen = 8

// MaxExtent bounds each axis of a generated shape.
const MaxExtent = 10

// Gen produces random values of T.
type Gen[T any] interface {
	Generate(r *rand.Rand) T
}

// GenFunc adapts a function to Gen.
type GenFunc[T any] func(r *rand.Rand) T

func (f GenFunc[T]) Generate(r *rand.Rand) T { return f(r) }

var (
	Bool    = GenFunc[bool](func(r *rand.Rand) bool { return r.IntN(2) == 1 })
	Int8    = GenFunc[int8](func(r *rand.Rand) int8 { return int8(r.Uint32()) })
	Int16   = GenFunc[int16](func(r *rand.Rand) int16 { return int16(r.Uint32()) })
	Int32   = GenFunc[int32](func(r *rand.Rand) int32 { return int32(r.Uint32()) })
	Int64   = GenFunc[int64](func(r *rand.Rand) int64 { return int64(r.Uint64()) })
	Uint8   = GenFunc[uint8](func(r *rand.Rand) uint8 { return uint8(r.Uint32()) })
	Uint16  = GenFunc[uint16](func(r *rand.Rand) uint16 { return uint16(r.Uint32()) })
	Uint32  = GenFunc[uint32](func(r *rand.Rand) uint32 { return r.Uint32() })
	Uint64  = GenFunc[uint64](func(r *rand.Rand) uint64 { return r.Uint64() })
	Float32 = GenFunc[float32](func(r *rand.Rand) float32 { return r.Float32() })
	Float64 = GenFunc[float64](func(r *rand.Rand) float64 { return r.Float64() })
)

// FixedASCII yields strings of up to capacity bytes in the range 0..127.
func FixedASCII(capacity int) Gen[h5types.FixedASCII] {
	return GenFunc[h5types.FixedASCII](func(r *rand.Rand) h5types.FixedASCII {
		b := asciiBytes(r, r.IntN(capacity+1), 0)
		return h5types.MustFixedASCII(capacity, string(b))
	})
}

// FixedUnicode yields UTF-8 text whose encoding fits in capacity bytes.
func FixedUnicode(capacity int) Gen[h5types.FixedUnicode] {
	return GenFunc[h5types.FixedUnicode](func(r *rand.Rand) h5types.FixedUnicode {
		return h5types.MustFixedUnicode(capacity, unicodeText(r, r.IntN(capacity+1)))
	})
}

// VarLenASCII yields ASCII strings of up to MaxVarLen bytes. Null bytes are
// excluded since the native form is a C string.
func VarLenASCII() Gen[h5types.VarLenASCII] {
	return GenFunc[h5types.VarLenASCII](func(r *rand.Rand) h5types.VarLenASCII {
		v, err := h5types.NewVarLenASCII(asciiBytes(r, r.IntN(MaxVarLen+1), 1))
		if err != nil {
			panic(err)
		}
		return v
	})
}

// VarLenUnicode yields UTF-8 text of up to MaxVarLen bytes.
func VarLenUnicode() Gen[h5types.VarLenUnicode] {
	return GenFunc[h5types.VarLenUnicode](func(r *rand.Rand) h5types.VarLenUnicode {
		v, err := h5types.NewVarLenUnicode(unicodeText(r, r.IntN(MaxVarLen+1)))
		if err != nil {
			panic(err)
		}
		return v
	})
}

// VarLenArray yields sequences of up to MaxVarLen elements.
func VarLenArray[T any](elem Gen[T]) Gen[h5types.VarLenArray[T]] {
	return GenFunc[h5types.VarLenArray[T]](func(r *rand.Rand) h5types.VarLenArray[T] {
		return h5types.VarLenArray[T](Vec(r, elem, r.IntN(MaxVarLen+1)))
	})
}

// Enum picks uniformly among the given members.
func Enum[T any](members ...T) Gen[T] {
	if len(members) == 0 {
		panic("roundtrip: enum generator needs at least one member")
	}
	return GenFunc[T](func(r *rand.Rand) T {
		return members[r.IntN(len(members))]
	})
}

// Array yields n independently generated elements.
func Array[T any](elem Gen[T], n int) Gen[[]T] {
	return GenFunc[[]T](func(r *rand.Rand) []T {
		return Vec(r, elem, n)
	})
}

// Vec generates n values.
func Vec[T any](r *rand.Rand, gen Gen[T], n int) []T {
	out := make([]T, n)
	Fill(r, gen, out)
	return out
}

// Fill generates every slot of dst, typically a fixed array as arr[:].
func Fill[T any](r *rand.Rand, gen Gen[T], dst []T) {
	for i := range dst {
		dst[i] = gen.Generate(r)
	}
}

// Shape returns ndim extents, each uniform in [0, MaxExtent].
func Shape(r *rand.Rand, ndim int) h5go.Shape {
	s := make(h5go.Shape, ndim)
	for i := range s {
		s[i] = r.IntN(MaxExtent + 1)
	}
	return s
}

// NDArray generates a random shape of rank ndim and enough values to fill it
// in row-major order.
func NDArray[T any](r *rand.Rand, gen Gen[T], ndim int) (h5go.Shape, []T) {
	shape := Shape(r, ndim)
	return shape, Vec(r, gen, h5go.Size(shape))
}

// Alphanumeric returns n characters from [0-9A-Za-z].
func Alphanumeric(r *rand.Rand, n int) string {
	const chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	b := make([]byte, n)
	for i := range b {
		b[i] = chars[r.IntN(len(chars))]
	}
	return string(b)
}

func asciiBytes(r *rand.Rand, n int, lo int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(lo + r.IntN(128-lo))
	}
	return b
}

// unicodeText appends random non-null scalar values until the next one
// would exceed budget bytes.
func unicodeText(r *rand.Rand, budget int) string {
	var b []byte
	for {
		c := randomRune(r)
		if c == 0 {
			continue
		}
		if len(b)+utf8.RuneLen(c) > budget {
			return string(b)
		}
		b = utf8.AppendRune(b, c)
	}
}

// randomRune is uniform over Unicode scalar values.
func randomRune(r *rand.Rand) rune {
	const surrogates = 0xE000 - 0xD800
	n := r.Int32N(utf8.MaxRune + 1 - surrogates)
	if n >= 0xD800 {
		n += surrogates
	}
	return n
}
