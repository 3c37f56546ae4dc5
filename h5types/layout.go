package h5types

import (
	"fmt"
	"reflect"
)

// AlignTo rounds offset up to a multiple of align.
func AlignTo(offset, align int) int {
	if align <= 1 {
		return offset
	}
	return (offset + align - 1) / align * align
}

// Compound lays out fields in order following C struct rules: each field at
// the next offset aligned for its type, total size padded to the largest
// field alignment. Offsets already present on fields are ignored.
func Compound(fields ...Field) *TypeDescriptor {
	laid := make([]Field, len(fields))
	offset, maxAlign := 0, 1
	for i, f := range fields {
		align := f.Type.Align()
		offset = AlignTo(offset, align)
		laid[i] = Field{Name: f.Name, Type: f.Type, Offset: offset}
		if align > maxAlign {
			maxAlign = align
		}
		offset += f.Type.Size()
	}
	return &TypeDescriptor{Class: ClassCompound, size: AlignTo(offset, maxAlign), Fields: laid}
}

// PackedCompound lays out fields back to back without padding, as HDF5 does
// with H5Tpack.
func PackedCompound(fields ...Field) *TypeDescriptor {
	laid := make([]Field, len(fields))
	offset := 0
	for i, f := range fields {
		laid[i] = Field{Name: f.Name, Type: f.Type, Offset: offset}
		offset += f.Type.Size()
	}
	return &TypeDescriptor{Class: ClassCompound, size: offset, Fields: laid}
}

// Packed returns d with every nested compound packed, matching what
// H5Tpack does to the registered type.
func Packed(d *TypeDescriptor) *TypeDescriptor {
	switch d.Class {
	case ClassCompound:
		fields := make([]Field, len(d.Fields))
		for i, f := range d.Fields {
			fields[i] = Field{Name: f.Name, Type: Packed(f.Type)}
		}
		return PackedCompound(fields...)
	case ClassFixedArray:
		return FixedArray(Packed(d.Base), d.Len)
	case ClassVarLenArray:
		return VarLenArrayType(Packed(d.Base))
	}
	return d
}

// LayoutError reports a descriptor whose layout disagrees with a reference
// layout, either the Go compiler's or the HDF5 library's.
type LayoutError struct {
	Type   string // Path of the type within the checked descriptor
	Member string // Compound member, or "" for the type itself
	What   string // "size", "offset" or "class"
	Source string // Reference the descriptor was compared with
	Want   int    // Descriptor value
	Got    int    // Reference value
}

func (e *LayoutError) Error() string {
	if e.Member == "" {
		return fmt.Sprintf("h5types: %s: %s %d, %s reports %d", e.Type, e.What, e.Want, e.Source, e.Got)
	}
	return fmt.Sprintf("h5types: %s: member %s %s %d, %s reports %d", e.Type, e.Member, e.What, e.Want, e.Source, e.Got)
}

// CheckGoLayout compares d with the memory layout of the Go type t.
// Only parts whose Go representation is the C one are compared: booleans,
// numbers, enums, arrays of those and structs made only of those. Strings
// and sequences are Go headers, so the check descends through them into
// their element types instead.
func CheckGoLayout(t reflect.Type, d *TypeDescriptor) error {
	return checkGo(t, d, t.String())
}

func checkGo(t reflect.Type, d *TypeDescriptor, path string) error {
	compatible := goCompatible(t, d)
	if compatible && int(t.Size()) != d.size {
		return &LayoutError{Type: path, What: "size", Source: "go", Want: d.size, Got: int(t.Size())}
	}
	switch d.Class {
	case ClassCompound:
		if t.Kind() != reflect.Struct {
			return nil
		}
		fields, err := fieldsOf(t)
		if err != nil {
			return err
		}
		for _, f := range d.Fields {
			sf, ok := lookupField(fields, f.Name)
			if !ok {
				continue
			}
			gf := t.Field(sf.index)
			if compatible && int(gf.Offset) != f.Offset {
				return &LayoutError{Type: path, Member: f.Name, What: "offset", Source: "go", Want: f.Offset, Got: int(gf.Offset)}
			}
			if err := checkGo(gf.Type, f.Type, path+"."+f.Name); err != nil {
				return err
			}
		}
	case ClassFixedArray:
		if t.Kind() == reflect.Array {
			return checkGo(t.Elem(), d.Base, path+"[]")
		}
	case ClassVarLenArray:
		if t.Kind() == reflect.Slice {
			return checkGo(t.Elem(), d.Base, path+"[]")
		}
	}
	return nil
}

// goCompatible reports whether values of t are stored the way d lays them
// out, apart from sizes and offsets which checkGo compares.
func goCompatible(t reflect.Type, d *TypeDescriptor) bool {
	switch d.Class {
	case ClassBoolean:
		return t.Kind() == reflect.Bool
	case ClassInteger, ClassEnum:
		_, err := integerOf(t)
		return err == nil
	case ClassFloat:
		return t.Kind() == reflect.Float32 || t.Kind() == reflect.Float64
	case ClassFixedArray:
		return t.Kind() == reflect.Array && goCompatible(t.Elem(), d.Base)
	case ClassCompound:
		if t.Kind() != reflect.Struct || t.NumField() != len(d.Fields) {
			return false
		}
		fields, err := fieldsOf(t)
		if err != nil || len(fields) != t.NumField() {
			return false
		}
		for _, f := range d.Fields {
			sf, ok := lookupField(fields, f.Name)
			if !ok || !goCompatible(t.Field(sf.index).Type, f.Type) {
				return false
			}
		}
		return true
	}
	return false
}
