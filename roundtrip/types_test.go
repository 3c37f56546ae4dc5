//go:build !ios && !android && (amd64 || arm64)

package roundtrip_test

import (
	"math/rand/v2"

	"github.com/obinnaokechukwu/h5go/h5types"
	"github.com/obinnaokechukwu/h5go/roundtrip"
)

type Enum int16

const (
	X Enum = -2
	Y Enum = 3
)

var enumGen = roundtrip.Enum(X, Y)

func (Enum) EnumMembers() []h5types.EnumMember {
	return []h5types.EnumMember{{Name: "X", Value: int64(X)}, {Name: "Y", Value: int64(Y)}}
}

func (Enum) Generate(r *rand.Rand) Enum { return enumGen.Generate(r) }

type TupleStruct struct {
	A bool
	B Enum
}

func (TupleStruct) Generate(r *rand.Rand) TupleStruct {
	return TupleStruct{A: roundtrip.Bool.Generate(r), B: enumGen.Generate(r)}
}

type Tuple struct {
	A int8
	B uint64
	C float32
}

type FixedStruct struct {
	FA    h5types.FixedASCII   `h5:"fa,cap=3"`
	FU    h5types.FixedUnicode `h5:"fu,cap=11"`
	Tuple Tuple                `h5:"tuple"`
	Array [2]TupleStruct       `h5:"array"`
}

func (FixedStruct) Generate(r *rand.Rand) FixedStruct {
	v := FixedStruct{
		FA: roundtrip.FixedASCII(3).Generate(r),
		FU: roundtrip.FixedUnicode(11).Generate(r),
		Tuple: Tuple{
			A: roundtrip.Int8.Generate(r),
			B: roundtrip.Uint64.Generate(r),
			C: roundtrip.Float32.Generate(r),
		},
	}
	roundtrip.Fill[TupleStruct](r, TupleStruct{}, v.Array[:])
	return v
}

type VarLenStruct struct {
	VA  h5types.VarLenASCII       `h5:"va"`
	VU  h5types.VarLenUnicode     `h5:"vu"`
	VLA h5types.VarLenArray[Enum] `h5:"vla"`
}

func (VarLenStruct) Generate(r *rand.Rand) VarLenStruct {
	return VarLenStruct{
		VA:  roundtrip.VarLenASCII().Generate(r),
		VU:  roundtrip.VarLenUnicode().Generate(r),
		VLA: roundtrip.VarLenArray[Enum](Enum(0)).Generate(r),
	}
}
