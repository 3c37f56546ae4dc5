//go:build !ios && !android && (amd64 || arm64)

// Package h5t provides bindings to HDF5's H5T datatype interface.
package h5t

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/obinnaokechukwu/h5go/h5e"
	"github.com/obinnaokechukwu/h5go/internal/bindings"
)

// ID is an HDF5 datatype identifier.
type ID = int64

// Class is a datatype class (H5T_class_t).
type Class int32

const (
	ClassNoClass   Class = -1
	ClassInteger   Class = 0
	ClassFloat     Class = 1
	ClassTime      Class = 2
	ClassString    Class = 3
	ClassBitfield  Class = 4
	ClassOpaque    Class = 5
	ClassCompound  Class = 6
	ClassReference Class = 7
	ClassEnum      Class = 8
	ClassVLen      Class = 9
	ClassArray     Class = 10
)

// CharSet is a string character set (H5T_cset_t).
type CharSet int32

const (
	CharSetASCII CharSet = 0
	CharSetUTF8  CharSet = 1
)

// StrPad is a string padding mode (H5T_str_t).
type StrPad int32

const (
	StrPadNullTerm StrPad = 0
	StrPadNullPad  StrPad = 1
	StrPadSpacePad StrPad = 2
)

// Variable is the size of a variable-length string (H5T_VARIABLE).
const Variable = ^uint64(0)

// Function bindings - registered on first use
var (
	h5tCreate          func(class int32, size uint64) int64
	h5tCopy            func(id int64) int64
	h5tClose           func(id int64) int32
	h5tInsert          func(parent int64, name string, offset uint64, member int64) int32
	h5tPack            func(id int64) int32
	h5tEnumCreate      func(base int64) int64
	h5tEnumInsert      func(id int64, name string, value unsafe.Pointer) int32
	h5tArrayCreate2    func(base int64, ndims uint32, dims *uint64) int64
	h5tVlenCreate      func(base int64) int64
	h5tSetSize         func(id int64, size uint64) int32
	h5tSetCset         func(id int64, cset int32) int32
	h5tSetStrpad       func(id int64, pad int32) int32
	h5tGetSize         func(id int64) uint64
	h5tGetClass        func(id int64) int32
	h5tGetNMembers     func(id int64) int32
	h5tGetMemberIndex  func(id int64, name string) int32
	h5tGetMemberOffset func(id int64, index uint32) uint64
	h5tGetMemberType   func(id int64, index uint32) int64
	h5tGetNativeType   func(id int64, direction int32) int64
	h5tGetSuper        func(id int64) int64
	h5tEqual           func(a, b int64) int32
	h5tIsVariableStr   func(id int64) int32

	registerOnce       sync.Once
	bindingsRegistered bool
)

func registerBindings() bool {
	registerOnce.Do(func() {
		if err := bindings.Load(); err != nil {
			return
		}
		lib := bindings.LibHDF5()

		purego.RegisterLibFunc(&h5tCreate, lib, "H5Tcreate")
		purego.RegisterLibFunc(&h5tCopy, lib, "H5Tcopy")
		purego.RegisterLibFunc(&h5tClose, lib, "H5Tclose")
		purego.RegisterLibFunc(&h5tInsert, lib, "H5Tinsert")
		purego.RegisterLibFunc(&h5tPack, lib, "H5Tpack")
		purego.RegisterLibFunc(&h5tEnumCreate, lib, "H5Tenum_create")
		purego.RegisterLibFunc(&h5tEnumInsert, lib, "H5Tenum_insert")
		purego.RegisterLibFunc(&h5tArrayCreate2, lib, "H5Tarray_create2")
		purego.RegisterLibFunc(&h5tVlenCreate, lib, "H5Tvlen_create")
		purego.RegisterLibFunc(&h5tSetSize, lib, "H5Tset_size")
		purego.RegisterLibFunc(&h5tSetCset, lib, "H5Tset_cset")
		purego.RegisterLibFunc(&h5tSetStrpad, lib, "H5Tset_strpad")
		purego.RegisterLibFunc(&h5tGetSize, lib, "H5Tget_size")
		purego.RegisterLibFunc(&h5tGetClass, lib, "H5Tget_class")
		purego.RegisterLibFunc(&h5tGetNMembers, lib, "H5Tget_nmembers")
		purego.RegisterLibFunc(&h5tGetMemberIndex, lib, "H5Tget_member_index")
		purego.RegisterLibFunc(&h5tGetMemberOffset, lib, "H5Tget_member_offset")
		purego.RegisterLibFunc(&h5tGetMemberType, lib, "H5Tget_member_type")
		purego.RegisterLibFunc(&h5tGetNativeType, lib, "H5Tget_native_type")
		purego.RegisterLibFunc(&h5tGetSuper, lib, "H5Tget_super")
		purego.RegisterLibFunc(&h5tEqual, lib, "H5Tequal")
		purego.RegisterLibFunc(&h5tIsVariableStr, lib, "H5Tis_variable_str")

		bindingsRegistered = true
	})
	return bindingsRegistered
}

// Predefined names a library-owned datatype. Its identifier lives in a
// global variable that H5open initializes.
type Predefined string

const (
	NativeInt8   Predefined = "H5T_NATIVE_INT8_g"
	NativeUint8  Predefined = "H5T_NATIVE_UINT8_g"
	NativeInt16  Predefined = "H5T_NATIVE_INT16_g"
	NativeUint16 Predefined = "H5T_NATIVE_UINT16_g"
	NativeInt32  Predefined = "H5T_NATIVE_INT32_g"
	NativeUint32 Predefined = "H5T_NATIVE_UINT32_g"
	NativeInt64  Predefined = "H5T_NATIVE_INT64_g"
	NativeUint64 Predefined = "H5T_NATIVE_UINT64_g"
	NativeFloat  Predefined = "H5T_NATIVE_FLOAT_g"
	NativeDouble Predefined = "H5T_NATIVE_DOUBLE_g"
	CS1          Predefined = "H5T_C_S1_g"
)

// ID resolves the predefined type. The identifier belongs to the library
// and must not be closed.
func (p Predefined) ID() (ID, error) {
	if !registerBindings() {
		return -1, bindings.ErrNotLoaded
	}
	addr, err := bindings.Symbol(string(p))
	if err != nil {
		return -1, err
	}
	id := *(*int64)(unsafe.Pointer(addr))
	if id < 0 {
		return -1, fmt.Errorf("h5t: %s is not initialized", p)
	}
	return id, nil
}

// Create creates an empty compound, enum or opaque datatype of size bytes.
func Create(class Class, size int) (ID, error) {
	if !registerBindings() {
		return -1, bindings.ErrNotLoaded
	}
	id := h5tCreate(int32(class), uint64(size))
	if err := h5e.CheckID(id, "H5Tcreate"); err != nil {
		return -1, err
	}
	return id, nil
}

// Copy creates a new, modifiable datatype identical to id.
func Copy(id ID) (ID, error) {
	if !registerBindings() {
		return -1, bindings.ErrNotLoaded
	}
	dup := h5tCopy(id)
	if err := h5e.CheckID(dup, "H5Tcopy"); err != nil {
		return -1, err
	}
	return dup, nil
}

// Close releases a datatype identifier.
func Close(id ID) error {
	if !registerBindings() {
		return bindings.ErrNotLoaded
	}
	return h5e.Check(h5tClose(id), "H5Tclose")
}

// Insert adds a member to a compound datatype at offset.
func Insert(parent ID, name string, offset int, member ID) error {
	if !registerBindings() {
		return bindings.ErrNotLoaded
	}
	return h5e.Check(h5tInsert(parent, name, uint64(offset), member), "H5Tinsert")
}

// Pack removes padding from a compound datatype.
func Pack(id ID) error {
	if !registerBindings() {
		return bindings.ErrNotLoaded
	}
	return h5e.Check(h5tPack(id), "H5Tpack")
}

// EnumCreate creates an enumeration over an integer base type.
func EnumCreate(base ID) (ID, error) {
	if !registerBindings() {
		return -1, bindings.ErrNotLoaded
	}
	id := h5tEnumCreate(base)
	if err := h5e.CheckID(id, "H5Tenum_create"); err != nil {
		return -1, err
	}
	return id, nil
}

// EnumInsert adds a member whose value is stored in native byte order in
// value. len(value) must equal the base type size.
func EnumInsert(id ID, name string, value []byte) error {
	if !registerBindings() {
		return bindings.ErrNotLoaded
	}
	if len(value) == 0 {
		return fmt.Errorf("h5t: empty value for enum member %q", name)
	}
	return h5e.Check(h5tEnumInsert(id, name, unsafe.Pointer(&value[0])), "H5Tenum_insert")
}

// ArrayCreate creates an array datatype of base with the given extents.
func ArrayCreate(base ID, dims []uint64) (ID, error) {
	if !registerBindings() {
		return -1, bindings.ErrNotLoaded
	}
	if len(dims) == 0 {
		return -1, fmt.Errorf("h5t: array needs at least one dimension")
	}
	id := h5tArrayCreate2(base, uint32(len(dims)), &dims[0])
	if err := h5e.CheckID(id, "H5Tarray_create2"); err != nil {
		return -1, err
	}
	return id, nil
}

// VlenCreate creates a variable-length sequence datatype of base.
func VlenCreate(base ID) (ID, error) {
	if !registerBindings() {
		return -1, bindings.ErrNotLoaded
	}
	id := h5tVlenCreate(base)
	if err := h5e.CheckID(id, "H5Tvlen_create"); err != nil {
		return -1, err
	}
	return id, nil
}

// StringCreate creates a C string datatype. size is the fixed capacity in
// bytes, or Variable.
func StringCreate(size uint64, cset CharSet, pad StrPad) (ID, error) {
	base, err := CS1.ID()
	if err != nil {
		return -1, err
	}
	id, err := Copy(base)
	if err != nil {
		return -1, err
	}
	if err := setString(id, size, cset, pad); err != nil {
		_ = Close(id)
		return -1, err
	}
	return id, nil
}

func setString(id ID, size uint64, cset CharSet, pad StrPad) error {
	if err := h5e.Check(h5tSetSize(id, size), "H5Tset_size"); err != nil {
		return err
	}
	if err := h5e.Check(h5tSetCset(id, int32(cset)), "H5Tset_cset"); err != nil {
		return err
	}
	return h5e.Check(h5tSetStrpad(id, int32(pad)), "H5Tset_strpad")
}

// GetSize returns the size of a datatype in bytes.
func GetSize(id ID) (int, error) {
	if !registerBindings() {
		return 0, bindings.ErrNotLoaded
	}
	n := h5tGetSize(id)
	if n == 0 {
		return 0, h5e.Check(-1, "H5Tget_size")
	}
	return int(n), nil
}

// GetClass returns the class of a datatype.
func GetClass(id ID) (Class, error) {
	if !registerBindings() {
		return ClassNoClass, bindings.ErrNotLoaded
	}
	c := Class(h5tGetClass(id))
	if c == ClassNoClass {
		return c, h5e.Check(-1, "H5Tget_class")
	}
	return c, nil
}

// GetNMembers returns the number of members of a compound or enum type.
func GetNMembers(id ID) (int, error) {
	if !registerBindings() {
		return 0, bindings.ErrNotLoaded
	}
	n := h5tGetNMembers(id)
	if n < 0 {
		return 0, h5e.Check(n, "H5Tget_nmembers")
	}
	return int(n), nil
}

// MemberIndex returns the index of the named compound or enum member.
func MemberIndex(id ID, name string) (int, error) {
	if !registerBindings() {
		return -1, bindings.ErrNotLoaded
	}
	idx := h5tGetMemberIndex(id, name)
	if idx < 0 {
		return -1, h5e.Check(idx, "H5Tget_member_index")
	}
	return int(idx), nil
}

// MemberOffset returns the byte offset of the named compound member.
func MemberOffset(id ID, name string) (int, error) {
	idx, err := MemberIndex(id, name)
	if err != nil {
		return 0, err
	}
	// Zero is a valid offset, so failure is only visible on the error stack.
	return int(h5tGetMemberOffset(id, uint32(idx))), nil
}

// MemberType returns a copy of the datatype of the named compound member.
// The caller owns the returned identifier.
func MemberType(id ID, name string) (ID, error) {
	idx, err := MemberIndex(id, name)
	if err != nil {
		return -1, err
	}
	mt := h5tGetMemberType(id, uint32(idx))
	if err := h5e.CheckID(mt, "H5Tget_member_type"); err != nil {
		return -1, err
	}
	return mt, nil
}

// Direction selects how NativeType resolves ambiguous native types
// (H5T_direction_t).
type Direction int32

const (
	DirDefault Direction = 0
	DirAscend  Direction = 1
	DirDescend Direction = 2
)

// NativeType returns the in-memory equivalent of a datatype, with compound
// members laid out by the platform's C alignment rules. The caller owns
// the returned identifier.
func NativeType(id ID, dir Direction) (ID, error) {
	if !registerBindings() {
		return -1, bindings.ErrNotLoaded
	}
	nt := h5tGetNativeType(id, int32(dir))
	if err := h5e.CheckID(nt, "H5Tget_native_type"); err != nil {
		return -1, err
	}
	return nt, nil
}

// Super returns the base type of an enum, array or sequence type. The
// caller owns the returned identifier.
func Super(id ID) (ID, error) {
	if !registerBindings() {
		return -1, bindings.ErrNotLoaded
	}
	sup := h5tGetSuper(id)
	if err := h5e.CheckID(sup, "H5Tget_super"); err != nil {
		return -1, err
	}
	return sup, nil
}

// Equal reports whether two datatypes are identical.
func Equal(a, b ID) (bool, error) {
	if !registerBindings() {
		return false, bindings.ErrNotLoaded
	}
	r := h5tEqual(a, b)
	if r < 0 {
		return false, h5e.Check(r, "H5Tequal")
	}
	return r > 0, nil
}

// IsVariableString reports whether a string type is variable-length.
func IsVariableString(id ID) (bool, error) {
	if !registerBindings() {
		return false, bindings.ErrNotLoaded
	}
	r := h5tIsVariableStr(id)
	if r < 0 {
		return false, h5e.Check(r, "H5Tis_variable_str")
	}
	return r > 0, nil
}
