package h5types

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"reflect"
	"unicode/utf8"
)

var (
	// ErrMismatch reports a Go value whose shape does not fit the descriptor.
	ErrMismatch = errors.New("h5types: value does not match descriptor")

	// ErrUndeclared reports an enum value outside the declared members.
	ErrUndeclared = errors.New("h5types: undeclared enum value")

	// ErrCorrupt reports a buffer that cannot be decoded.
	ErrCorrupt = errors.New("h5types: corrupt buffer")
)

// Both supported architectures are little-endian.
var native = binary.LittleEndian

// Buffer holds one encoded value: the fixed-size part laid out as the
// descriptor says, and a heap for variable-length payloads. Pointers in
// Data are heap offsets plus one; zero is the null pointer.
type Buffer struct {
	Data []byte
	Heap []byte
}

// Encode writes value in the native layout of desc.
func Encode(desc *TypeDescriptor, value any) (*Buffer, error) {
	v := reflect.ValueOf(value)
	if !v.IsValid() {
		return nil, fmt.Errorf("%w: nil value", ErrMismatch)
	}
	e := &encoder{}
	data := make([]byte, desc.Size())
	if err := e.put(desc, data, v); err != nil {
		return nil, err
	}
	return &Buffer{Data: data, Heap: e.heap}, nil
}

// Decode reads buf into the value ptr points to.
func Decode(desc *TypeDescriptor, buf *Buffer, ptr any) error {
	v := reflect.ValueOf(ptr)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return fmt.Errorf("%w: decode target must be a non-nil pointer", ErrMismatch)
	}
	if len(buf.Data) < desc.Size() {
		return fmt.Errorf("%w: %d bytes for a %d-byte type", ErrCorrupt, len(buf.Data), desc.Size())
	}
	d := &decoder{heap: buf.Heap}
	return d.get(desc, buf.Data[:desc.Size()], v.Elem())
}

type encoder struct {
	heap []byte
}

// alloc reserves n zeroed heap bytes at the given alignment.
func (e *encoder) alloc(n, align int) int {
	off := AlignTo(len(e.heap), align)
	need := off + n - len(e.heap)
	e.heap = append(e.heap, make([]byte, need)...)
	return off
}

func (e *encoder) put(d *TypeDescriptor, dst []byte, v reflect.Value) error {
	switch d.Class {
	case ClassInteger:
		n, err := integerValue(v)
		if err != nil {
			return err
		}
		if !fits(n, d.size, d.Signed) {
			return fmt.Errorf("%w: %d overflows %s", ErrMismatch, n, d)
		}
		putUint(dst, d.size, uint64(n))
	case ClassFloat:
		if v.Kind() != reflect.Float32 && v.Kind() != reflect.Float64 {
			return mismatch(d, v)
		}
		if d.size == 4 {
			native.PutUint32(dst, math.Float32bits(float32(v.Float())))
		} else {
			native.PutUint64(dst, math.Float64bits(v.Float()))
		}
	case ClassBoolean:
		if v.Kind() != reflect.Bool {
			return mismatch(d, v)
		}
		if v.Bool() {
			dst[0] = 1
		}
	case ClassEnum:
		n, err := integerValue(v)
		if err != nil {
			return err
		}
		if _, ok := d.Member(n); !ok {
			return fmt.Errorf("%w: %d in %s", ErrUndeclared, n, d)
		}
		putUint(dst, d.size, uint64(n))
	case ClassCompound:
		if v.Kind() != reflect.Struct {
			return mismatch(d, v)
		}
		fields, err := fieldsOf(v.Type())
		if err != nil {
			return err
		}
		for _, f := range d.Fields {
			sf, ok := lookupField(fields, f.Name)
			if !ok {
				return fmt.Errorf("%w: %s has no member %q", ErrMismatch, v.Type(), f.Name)
			}
			if err := e.put(f.Type, dst[f.Offset:f.Offset+f.Type.size], v.Field(sf.index)); err != nil {
				return fmt.Errorf("member %s: %w", f.Name, err)
			}
		}
	case ClassFixedArray:
		if (v.Kind() != reflect.Array && v.Kind() != reflect.Slice) || v.Len() != d.Len {
			return mismatch(d, v)
		}
		es := d.Base.size
		for i := 0; i < d.Len; i++ {
			if err := e.put(d.Base, dst[i*es:(i+1)*es], v.Index(i)); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
	case ClassFixedASCII, ClassFixedUnicode:
		s, ok := textOf(v)
		if !ok {
			return mismatch(d, v)
		}
		if len(s) > d.size {
			return fmt.Errorf("%w: %d > %d", ErrCapacity, len(s), d.size)
		}
		copy(dst, s)
	case ClassVarLenASCII, ClassVarLenUnicode:
		s, ok := textOf(v)
		if !ok {
			return mismatch(d, v)
		}
		off := e.alloc(len(s)+1, 1)
		copy(e.heap[off:], s)
		native.PutUint64(dst, uint64(off)+1)
	case ClassVarLenArray:
		if v.Kind() != reflect.Slice {
			return mismatch(d, v)
		}
		n := v.Len()
		native.PutUint64(dst[0:8], uint64(n))
		if n == 0 {
			native.PutUint64(dst[8:16], 0)
			return nil
		}
		es := d.Base.size
		off := e.alloc(n*es, d.Base.Align())
		elems := make([]byte, n*es)
		for i := 0; i < n; i++ {
			if err := e.put(d.Base, elems[i*es:(i+1)*es], v.Index(i)); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
		copy(e.heap[off:], elems)
		native.PutUint64(dst[8:16], uint64(off)+1)
	default:
		return fmt.Errorf("%w: class %s", ErrUnsupported, d.Class)
	}
	return nil
}

type decoder struct {
	heap []byte
}

func (dec *decoder) get(d *TypeDescriptor, src []byte, v reflect.Value) error {
	switch d.Class {
	case ClassInteger, ClassEnum:
		n := getInt(src, d.size, d.Signed)
		if d.Class == ClassEnum {
			if _, ok := d.Member(n); !ok {
				return fmt.Errorf("%w: %d in %s", ErrUndeclared, n, d)
			}
		}
		switch v.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			v.SetInt(n)
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			v.SetUint(uint64(n))
		default:
			return mismatch(d, v)
		}
	case ClassFloat:
		if v.Kind() != reflect.Float32 && v.Kind() != reflect.Float64 {
			return mismatch(d, v)
		}
		if d.size == 4 {
			v.SetFloat(float64(math.Float32frombits(native.Uint32(src))))
		} else {
			v.SetFloat(math.Float64frombits(native.Uint64(src)))
		}
	case ClassBoolean:
		if v.Kind() != reflect.Bool {
			return mismatch(d, v)
		}
		switch src[0] {
		case 0, 1:
			v.SetBool(src[0] == 1)
		default:
			return fmt.Errorf("%w: boolean byte %#x", ErrCorrupt, src[0])
		}
	case ClassCompound:
		if v.Kind() != reflect.Struct {
			return mismatch(d, v)
		}
		fields, err := fieldsOf(v.Type())
		if err != nil {
			return err
		}
		for _, f := range d.Fields {
			sf, ok := lookupField(fields, f.Name)
			if !ok {
				return fmt.Errorf("%w: %s has no member %q", ErrMismatch, v.Type(), f.Name)
			}
			if err := dec.get(f.Type, src[f.Offset:f.Offset+f.Type.size], v.Field(sf.index)); err != nil {
				return fmt.Errorf("member %s: %w", f.Name, err)
			}
		}
	case ClassFixedArray:
		es := d.Base.size
		switch v.Kind() {
		case reflect.Array:
			if v.Len() != d.Len {
				return mismatch(d, v)
			}
		case reflect.Slice:
			v.Set(reflect.MakeSlice(v.Type(), d.Len, d.Len))
		default:
			return mismatch(d, v)
		}
		for i := 0; i < d.Len; i++ {
			if err := dec.get(d.Base, src[i*es:(i+1)*es], v.Index(i)); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
	case ClassFixedASCII, ClassFixedUnicode:
		end := len(src)
		for end > 0 && src[end-1] == 0 {
			end--
		}
		return setText(d, v, string(src[:end]))
	case ClassVarLenASCII, ClassVarLenUnicode:
		p := native.Uint64(src)
		if p == 0 {
			return setText(d, v, "")
		}
		start := int(p - 1)
		if p > uint64(len(dec.heap)) {
			return fmt.Errorf("%w: string pointer %d outside heap", ErrCorrupt, p)
		}
		end := start
		for end < len(dec.heap) && dec.heap[end] != 0 {
			end++
		}
		if end == len(dec.heap) {
			return fmt.Errorf("%w: unterminated string", ErrCorrupt)
		}
		return setText(d, v, string(dec.heap[start:end]))
	case ClassVarLenArray:
		if v.Kind() != reflect.Slice {
			return mismatch(d, v)
		}
		n := native.Uint64(src[0:8])
		p := native.Uint64(src[8:16])
		if n == 0 {
			v.Set(reflect.MakeSlice(v.Type(), 0, 0))
			return nil
		}
		es := uint64(d.Base.size)
		if p == 0 || n > uint64(len(dec.heap)) || p-1+n*es > uint64(len(dec.heap)) {
			return fmt.Errorf("%w: sequence of %d at %d outside heap", ErrCorrupt, n, p)
		}
		out := reflect.MakeSlice(v.Type(), int(n), int(n))
		base := p - 1
		for i := uint64(0); i < n; i++ {
			if err := dec.get(d.Base, dec.heap[base+i*es:base+(i+1)*es], out.Index(int(i))); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
		v.Set(out)
	default:
		return fmt.Errorf("%w: class %s", ErrUnsupported, d.Class)
	}
	return nil
}

func mismatch(d *TypeDescriptor, v reflect.Value) error {
	return fmt.Errorf("%w: %s for %s", ErrMismatch, v.Type(), d)
}

func lookupField(fields []structField, name string) (structField, bool) {
	for _, f := range fields {
		if f.name == name {
			return f, true
		}
	}
	return structField{}, false
}

func integerValue(v reflect.Value) (int64, error) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(v.Uint()), nil
	}
	return 0, fmt.Errorf("%w: %s is not an integer", ErrMismatch, v.Type())
}

func fits(n int64, size int, signed bool) bool {
	if size == 8 {
		return true
	}
	bits := uint(size * 8)
	if signed {
		return n >= -(1<<(bits-1)) && n < 1<<(bits-1)
	}
	return uint64(n) < 1<<bits
}

func putUint(dst []byte, size int, u uint64) {
	for i := 0; i < size; i++ {
		dst[i] = byte(u >> (8 * i))
	}
}

func getInt(src []byte, size int, signed bool) int64 {
	var u uint64
	for i := 0; i < size; i++ {
		u |= uint64(src[i]) << (8 * i)
	}
	if signed && size < 8 {
		shift := uint(64 - size*8)
		return int64(u<<shift) >> shift
	}
	return int64(u)
}

// textOf extracts the text of a string value or one of the string types.
func textOf(v reflect.Value) (string, bool) {
	switch v.Type() {
	case rtFixedASCII, rtFixedUnicode, rtVarLenASCII, rtVarLenUnicode:
		return v.Field(0).String(), true
	}
	if v.Kind() == reflect.String {
		return v.String(), true
	}
	return "", false
}

func setText(d *TypeDescriptor, v reflect.Value, s string) error {
	var (
		out any
		err error
	)
	switch v.Type() {
	case rtFixedASCII:
		out, err = NewFixedASCII(d.size, []byte(s))
	case rtFixedUnicode:
		out, err = NewFixedUnicode(d.size, s)
	case rtVarLenASCII:
		out, err = NewVarLenASCII([]byte(s))
	case rtVarLenUnicode:
		out, err = NewVarLenUnicode(s)
	default:
		if v.Kind() != reflect.String {
			return mismatch(d, v)
		}
		if (d.Class == ClassFixedUnicode || d.Class == ClassVarLenUnicode) && !utf8.ValidString(s) {
			return ErrNotUTF8
		}
		v.SetString(s)
		return nil
	}
	if err != nil {
		return err
	}
	v.Set(reflect.ValueOf(out))
	return nil
}
