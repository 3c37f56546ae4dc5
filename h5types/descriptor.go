// Package h5types describes Go composite types the way the HDF5 type
// system sees them.
//
// A TypeDescriptor records the class, size and C memory layout of a type.
// Descriptors are built with the constructors in this package, derived from
// Go types by DescriptorOf, or supplied by types implementing Typed. The
// value types FixedASCII, FixedUnicode, VarLenASCII, VarLenUnicode and
// VarLenArray model HDF5 strings and variable-length sequences.
//
// Encode and Decode convert between Go values and the native memory layout
// a descriptor advertises, so the layout can be checked without a file.
package h5types

import (
	"fmt"
	"strings"
)

// Class is the HDF5 type class of a descriptor.
type Class uint8

const (
	ClassInteger Class = iota
	ClassFloat
	ClassBoolean
	ClassEnum
	ClassCompound
	ClassFixedArray
	ClassFixedASCII
	ClassFixedUnicode
	ClassVarLenArray
	ClassVarLenASCII
	ClassVarLenUnicode
)

var classNames = [...]string{
	ClassInteger:       "integer",
	ClassFloat:         "float",
	ClassBoolean:       "boolean",
	ClassEnum:          "enum",
	ClassCompound:      "compound",
	ClassFixedArray:    "array",
	ClassFixedASCII:    "fixed-ascii",
	ClassFixedUnicode:  "fixed-unicode",
	ClassVarLenArray:   "varlen-array",
	ClassVarLenASCII:   "varlen-ascii",
	ClassVarLenUnicode: "varlen-unicode",
}

func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return "unknown"
}

// Sizes of the variable-length slots in native memory: a char* for strings,
// an hvl_t {size_t len; void *p} for sequences.
const (
	pointerSize = 8
	hvlSize     = 16
)

// TypeDescriptor describes one type.
type TypeDescriptor struct {
	Class   Class
	size    int
	Signed  bool            // Integer signedness
	Base    *TypeDescriptor // Enum base integer, array and sequence element
	Len     int             // Fixed array length
	Members []EnumMember    // Enum members
	Fields  []Field         // Compound fields with offsets
}

// EnumMember is one named enumeration discriminant.
type EnumMember struct {
	Name  string
	Value int64
}

// Field is one compound member.
type Field struct {
	Name   string
	Type   *TypeDescriptor
	Offset int
}

// Integer returns a descriptor for a size-byte integer.
func Integer(size int, signed bool) *TypeDescriptor {
	switch size {
	case 1, 2, 4, 8:
	default:
		panic(fmt.Sprintf("h5types: invalid integer size %d", size))
	}
	return &TypeDescriptor{Class: ClassInteger, size: size, Signed: signed}
}

// Float returns a descriptor for a 4- or 8-byte IEEE float.
func Float(size int) *TypeDescriptor {
	if size != 4 && size != 8 {
		panic(fmt.Sprintf("h5types: invalid float size %d", size))
	}
	return &TypeDescriptor{Class: ClassFloat, size: size}
}

// Boolean returns a descriptor for a one-byte boolean.
func Boolean() *TypeDescriptor {
	return &TypeDescriptor{Class: ClassBoolean, size: 1}
}

// Enum returns an enumeration over an integer base.
func Enum(base *TypeDescriptor, members ...EnumMember) *TypeDescriptor {
	if base.Class != ClassInteger {
		panic("h5types: enum base must be an integer, got " + base.Class.String())
	}
	return &TypeDescriptor{Class: ClassEnum, size: base.size, Signed: base.Signed, Base: base, Members: members}
}

// FixedArray returns an array of n elements stored inline.
func FixedArray(elem *TypeDescriptor, n int) *TypeDescriptor {
	return &TypeDescriptor{Class: ClassFixedArray, size: elem.size * n, Base: elem, Len: n}
}

// FixedASCIIType returns a null-padded ASCII string of capacity bytes.
func FixedASCIIType(capacity int) *TypeDescriptor {
	return &TypeDescriptor{Class: ClassFixedASCII, size: capacity}
}

// FixedUnicodeType returns a null-padded UTF-8 string of capacity bytes.
func FixedUnicodeType(capacity int) *TypeDescriptor {
	return &TypeDescriptor{Class: ClassFixedUnicode, size: capacity}
}

// VarLenArrayType returns a variable-length sequence of elem.
func VarLenArrayType(elem *TypeDescriptor) *TypeDescriptor {
	return &TypeDescriptor{Class: ClassVarLenArray, size: hvlSize, Base: elem}
}

// VarLenASCIIType returns a variable-length ASCII string.
func VarLenASCIIType() *TypeDescriptor {
	return &TypeDescriptor{Class: ClassVarLenASCII, size: pointerSize}
}

// VarLenUnicodeType returns a variable-length UTF-8 string.
func VarLenUnicodeType() *TypeDescriptor {
	return &TypeDescriptor{Class: ClassVarLenUnicode, size: pointerSize}
}

// Size returns the byte size of one value in native memory. For fixed
// strings it is the capacity.
func (d *TypeDescriptor) Size() int { return d.size }

// Align returns the C alignment of the type.
func (d *TypeDescriptor) Align() int {
	switch d.Class {
	case ClassInteger, ClassFloat, ClassEnum:
		return d.size
	case ClassFixedArray:
		return d.Base.Align()
	case ClassVarLenArray, ClassVarLenASCII, ClassVarLenUnicode:
		return pointerSize
	case ClassCompound:
		align := 1
		for _, f := range d.Fields {
			if a := f.Type.Align(); a > align {
				align = a
			}
		}
		return align
	default:
		return 1
	}
}

// IsVariableLength reports whether values of the type own out-of-line data.
func (d *TypeDescriptor) IsVariableLength() bool {
	switch d.Class {
	case ClassVarLenArray, ClassVarLenASCII, ClassVarLenUnicode:
		return true
	case ClassFixedArray:
		return d.Base.IsVariableLength()
	case ClassCompound:
		for _, f := range d.Fields {
			if f.Type.IsVariableLength() {
				return true
			}
		}
	}
	return false
}

// Member returns the enum member with the given value.
func (d *TypeDescriptor) Member(value int64) (EnumMember, bool) {
	for _, m := range d.Members {
		if m.Value == value {
			return m, true
		}
	}
	return EnumMember{}, false
}

// Field returns the compound field with the given name.
func (d *TypeDescriptor) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// String renders the descriptor in a compact, HDF5-like notation.
func (d *TypeDescriptor) String() string {
	var b strings.Builder
	d.format(&b)
	return b.String()
}

func (d *TypeDescriptor) format(b *strings.Builder) {
	switch d.Class {
	case ClassInteger:
		if d.Signed {
			fmt.Fprintf(b, "int%d", d.size*8)
		} else {
			fmt.Fprintf(b, "uint%d", d.size*8)
		}
	case ClassFloat:
		fmt.Fprintf(b, "float%d", d.size*8)
	case ClassEnum:
		b.WriteString("enum(")
		d.Base.format(b)
		b.WriteString("){")
		for i, m := range d.Members {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(b, "%s=%d", m.Name, m.Value)
		}
		b.WriteByte('}')
	case ClassCompound:
		b.WriteString("compound{")
		for i, f := range d.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(b, "%s@%d: ", f.Name, f.Offset)
			f.Type.format(b)
		}
		b.WriteByte('}')
	case ClassFixedArray:
		d.Base.format(b)
		fmt.Fprintf(b, "[%d]", d.Len)
	case ClassFixedASCII, ClassFixedUnicode:
		fmt.Fprintf(b, "%s[%d]", d.Class, d.size)
	case ClassVarLenArray:
		b.WriteString("varlen<")
		d.Base.format(b)
		b.WriteByte('>')
	default:
		b.WriteString(d.Class.String())
	}
}
