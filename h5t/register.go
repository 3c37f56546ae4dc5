//go:build !ios && !android && (amd64 || arm64)

package h5t

import (
	"fmt"

	"github.com/obinnaokechukwu/h5go/h5types"
)

type intKey struct {
	size   int
	signed bool
}

var integers = map[intKey]Predefined{
	{1, true}:  NativeInt8,
	{1, false}: NativeUint8,
	{2, true}:  NativeInt16,
	{2, false}: NativeUint16,
	{4, true}:  NativeInt32,
	{4, false}: NativeUint32,
	{8, true}:  NativeInt64,
	{8, false}: NativeUint64,
}

// Register builds the native datatype a descriptor describes. The caller
// owns the returned identifier. Booleans map to an int8 enumeration with
// FALSE and TRUE members.
func Register(desc *h5types.TypeDescriptor) (ID, error) {
	switch desc.Class {
	case h5types.ClassInteger:
		p, ok := integers[intKey{desc.Size(), desc.Signed}]
		if !ok {
			return -1, fmt.Errorf("h5t: no native integer of %d bytes", desc.Size())
		}
		return copyPredefined(p)
	case h5types.ClassFloat:
		if desc.Size() == 4 {
			return copyPredefined(NativeFloat)
		}
		return copyPredefined(NativeDouble)
	case h5types.ClassBoolean:
		return registerEnum(h5types.Integer(1, true), []h5types.EnumMember{
			{Name: "FALSE", Value: 0},
			{Name: "TRUE", Value: 1},
		})
	case h5types.ClassEnum:
		return registerEnum(desc.Base, desc.Members)
	case h5types.ClassCompound:
		return registerCompound(desc)
	case h5types.ClassFixedArray:
		return withBase(desc.Base, func(base ID) (ID, error) {
			return ArrayCreate(base, []uint64{uint64(desc.Len)})
		})
	case h5types.ClassVarLenArray:
		return withBase(desc.Base, VlenCreate)
	case h5types.ClassFixedASCII:
		return StringCreate(uint64(desc.Size()), CharSetASCII, StrPadNullPad)
	case h5types.ClassFixedUnicode:
		return StringCreate(uint64(desc.Size()), CharSetUTF8, StrPadNullPad)
	case h5types.ClassVarLenASCII:
		return StringCreate(Variable, CharSetASCII, StrPadNullTerm)
	case h5types.ClassVarLenUnicode:
		return StringCreate(Variable, CharSetUTF8, StrPadNullTerm)
	}
	return -1, fmt.Errorf("h5t: cannot register %s", desc.Class)
}

func copyPredefined(p Predefined) (ID, error) {
	id, err := p.ID()
	if err != nil {
		return -1, err
	}
	return Copy(id)
}

// withBase registers base, derives a new type from it and closes base.
func withBase(base *h5types.TypeDescriptor, derive func(ID) (ID, error)) (ID, error) {
	b, err := Register(base)
	if err != nil {
		return -1, err
	}
	defer Close(b)
	return derive(b)
}

func registerEnum(base *h5types.TypeDescriptor, members []h5types.EnumMember) (ID, error) {
	return withBase(base, func(b ID) (ID, error) {
		id, err := EnumCreate(b)
		if err != nil {
			return -1, err
		}
		value := make([]byte, base.Size())
		for _, m := range members {
			for i := range value {
				value[i] = byte(uint64(m.Value) >> (8 * i))
			}
			if err := EnumInsert(id, m.Name, value); err != nil {
				_ = Close(id)
				return -1, fmt.Errorf("enum member %s: %w", m.Name, err)
			}
		}
		return id, nil
	})
}

func registerCompound(desc *h5types.TypeDescriptor) (ID, error) {
	id, err := Create(ClassCompound, desc.Size())
	if err != nil {
		return -1, err
	}
	for _, f := range desc.Fields {
		member, err := Register(f.Type)
		if err != nil {
			_ = Close(id)
			return -1, fmt.Errorf("member %s: %w", f.Name, err)
		}
		err = Insert(id, f.Name, f.Offset, member)
		_ = Close(member)
		if err != nil {
			_ = Close(id)
			return -1, fmt.Errorf("member %s: %w", f.Name, err)
		}
	}
	return id, nil
}
