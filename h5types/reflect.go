package h5types

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// ErrUnsupported reports a Go type with no HDF5 mapping.
var ErrUnsupported = errors.New("h5types: unsupported type")

// Typed is implemented by types that describe themselves.
type Typed interface {
	H5Type() *TypeDescriptor
}

// EnumType is implemented by integer types used as enumerations. The
// underlying integer kind selects the base type.
type EnumType interface {
	EnumMembers() []EnumMember
}

var (
	rtTyped         = reflect.TypeOf((*Typed)(nil)).Elem()
	rtEnum          = reflect.TypeOf((*EnumType)(nil)).Elem()
	rtVarLenSeq     = reflect.TypeOf((*varLenSequence)(nil)).Elem()
	rtFixedASCII    = reflect.TypeOf(FixedASCII{})
	rtFixedUnicode  = reflect.TypeOf(FixedUnicode{})
	rtVarLenASCII   = reflect.TypeOf(VarLenASCII{})
	rtVarLenUnicode = reflect.TypeOf(VarLenUnicode{})
)

var descriptorCache sync.Map // reflect.Type -> *TypeDescriptor

// TypeOf returns the descriptor of T.
func TypeOf[T any]() (*TypeDescriptor, error) {
	return DescriptorOf(reflect.TypeOf((*T)(nil)).Elem())
}

// MustTypeOf is TypeOf that panics on error.
func MustTypeOf[T any]() *TypeDescriptor {
	d, err := TypeOf[T]()
	if err != nil {
		panic(err)
	}
	return d
}

// DescriptorOf derives a descriptor from a Go type.
//
// Booleans, sized integers and floats map to their native types; int and
// uint are 8 bytes. Arrays become fixed arrays and structs become compounds
// laid out with C rules over their exported fields. A struct field tag
// `h5:"name,cap=N"` renames the member and gives fixed strings their
// capacity; `h5:"-"` skips the field. Plain strings, slices, maps and
// pointers have no fixed layout and are rejected.
func DescriptorOf(t reflect.Type) (*TypeDescriptor, error) {
	if d, ok := descriptorCache.Load(t); ok {
		return d.(*TypeDescriptor), nil
	}
	d, err := describe(t, -1)
	if err != nil {
		return nil, err
	}
	descriptorCache.Store(t, d)
	return d, nil
}

func describe(t reflect.Type, capacity int) (*TypeDescriptor, error) {
	if t.Implements(rtTyped) {
		d := reflect.Zero(t).Interface().(Typed).H5Type()
		if d == nil {
			return nil, fmt.Errorf("%w: %s returned a nil descriptor", ErrUnsupported, t)
		}
		return d, nil
	}
	if t.Implements(rtEnum) {
		base, err := integerOf(t)
		if err != nil {
			return nil, fmt.Errorf("%w: enum %s needs an integer kind", ErrUnsupported, t)
		}
		members := reflect.Zero(t).Interface().(EnumType).EnumMembers()
		if len(members) == 0 {
			return nil, fmt.Errorf("%w: enum %s declares no members", ErrUnsupported, t)
		}
		return Enum(base, members...), nil
	}
	if t.Implements(rtVarLenSeq) {
		elem, err := describe(t.Elem(), -1)
		if err != nil {
			return nil, err
		}
		return VarLenArrayType(elem), nil
	}

	switch t {
	case rtFixedASCII, rtFixedUnicode:
		if capacity < 0 {
			return nil, fmt.Errorf("%w: %s needs a cap= tag", ErrUnsupported, t)
		}
		if t == rtFixedASCII {
			return FixedASCIIType(capacity), nil
		}
		return FixedUnicodeType(capacity), nil
	case rtVarLenASCII:
		return VarLenASCIIType(), nil
	case rtVarLenUnicode:
		return VarLenUnicodeType(), nil
	}

	switch t.Kind() {
	case reflect.Bool:
		return Boolean(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return integerOf(t)
	case reflect.Float32:
		return Float(4), nil
	case reflect.Float64:
		return Float(8), nil
	case reflect.Array:
		elem, err := describe(t.Elem(), capacity)
		if err != nil {
			return nil, err
		}
		return FixedArray(elem, t.Len()), nil
	case reflect.Struct:
		return describeStruct(t)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, t)
}

func integerOf(t reflect.Type) (*TypeDescriptor, error) {
	switch t.Kind() {
	case reflect.Int8:
		return Integer(1, true), nil
	case reflect.Int16:
		return Integer(2, true), nil
	case reflect.Int32:
		return Integer(4, true), nil
	case reflect.Int, reflect.Int64:
		return Integer(8, true), nil
	case reflect.Uint8:
		return Integer(1, false), nil
	case reflect.Uint16:
		return Integer(2, false), nil
	case reflect.Uint32:
		return Integer(4, false), nil
	case reflect.Uint, reflect.Uint64:
		return Integer(8, false), nil
	}
	return nil, fmt.Errorf("%w: %s is not an integer", ErrUnsupported, t)
}

func describeStruct(t reflect.Type) (*TypeDescriptor, error) {
	sfs, err := fieldsOf(t)
	if err != nil {
		return nil, err
	}
	fields := make([]Field, 0, len(sfs))
	for _, sf := range sfs {
		ft, err := describe(t.Field(sf.index).Type, sf.capacity)
		if err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", t.Name(), t.Field(sf.index).Name, err)
		}
		fields = append(fields, Field{Name: sf.name, Type: ft})
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: struct %s has no exported fields", ErrUnsupported, t)
	}
	return Compound(fields...), nil
}

type structField struct {
	index    int
	name     string
	capacity int
}

var fieldCache sync.Map // reflect.Type -> []structField

// fieldsOf lists the exported, non-skipped fields of a struct in order.
func fieldsOf(t reflect.Type) ([]structField, error) {
	if v, ok := fieldCache.Load(t); ok {
		return v.([]structField), nil
	}
	var out []structField
	seen := map[string]bool{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		sf := structField{index: i, name: f.Name, capacity: -1}
		if tag, ok := f.Tag.Lookup("h5"); ok {
			if tag == "-" {
				continue
			}
			if err := parseTag(tag, &sf); err != nil {
				return nil, fmt.Errorf("field %s.%s: %w", t.Name(), f.Name, err)
			}
		}
		if seen[sf.name] {
			return nil, fmt.Errorf("%w: duplicate member name %q in %s", ErrUnsupported, sf.name, t)
		}
		seen[sf.name] = true
		out = append(out, sf)
	}
	fieldCache.Store(t, out)
	return out, nil
}

func parseTag(tag string, sf *structField) error {
	parts := strings.Split(tag, ",")
	if parts[0] != "" {
		sf.name = parts[0]
	}
	for _, opt := range parts[1:] {
		key, value, _ := strings.Cut(opt, "=")
		switch key {
		case "cap":
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return fmt.Errorf("h5types: bad capacity %q", value)
			}
			sf.capacity = n
		default:
			return fmt.Errorf("h5types: unknown tag option %q", key)
		}
	}
	return nil
}
