//go:build !ios && !android && (amd64 || arm64)

package h5t

import (
	"os"
	"testing"

	"github.com/obinnaokechukwu/h5go/h5types"
	"github.com/obinnaokechukwu/h5go/internal/bindings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hdf5Available bool

func TestMain(m *testing.M) {
	if err := bindings.Load(); err == nil {
		hdf5Available = true
	}
	os.Exit(m.Run())
}

func skipIfNoHDF5(t *testing.T) {
	t.Helper()
	if !hdf5Available {
		t.Skip("HDF5 not available")
	}
}

func TestPredefinedSizes(t *testing.T) {
	skipIfNoHDF5(t)

	for p, size := range map[Predefined]int{
		NativeInt8:   1,
		NativeUint16: 2,
		NativeInt32:  4,
		NativeUint64: 8,
		NativeFloat:  4,
		NativeDouble: 8,
	} {
		id, err := p.ID()
		require.NoError(t, err, string(p))
		n, err := GetSize(id)
		require.NoError(t, err)
		assert.Equal(t, size, n, string(p))
	}
}

func TestCopyAndClose(t *testing.T) {
	skipIfNoHDF5(t)

	base, err := NativeInt32.ID()
	require.NoError(t, err)
	id, err := Copy(base)
	require.NoError(t, err)

	eq, err := Equal(base, id)
	require.NoError(t, err)
	assert.True(t, eq)

	require.NoError(t, Close(id))
	assert.Error(t, Close(id), "closing twice fails")
}

func TestStrings(t *testing.T) {
	skipIfNoHDF5(t)

	fixed, err := StringCreate(11, CharSetUTF8, StrPadNullPad)
	require.NoError(t, err)
	defer Close(fixed)
	n, err := GetSize(fixed)
	require.NoError(t, err)
	assert.Equal(t, 11, n)
	variable, err := IsVariableString(fixed)
	require.NoError(t, err)
	assert.False(t, variable)

	vlen, err := StringCreate(Variable, CharSetASCII, StrPadNullTerm)
	require.NoError(t, err)
	defer Close(vlen)
	variable, err = IsVariableString(vlen)
	require.NoError(t, err)
	assert.True(t, variable)
}

func TestRegisterCompound(t *testing.T) {
	skipIfNoHDF5(t)

	desc := h5types.Compound(
		h5types.Field{Name: "flag", Type: h5types.Boolean()},
		h5types.Field{Name: "kind", Type: h5types.Enum(h5types.Integer(2, true),
			h5types.EnumMember{Name: "X", Value: -2},
			h5types.EnumMember{Name: "Y", Value: 3})},
		h5types.Field{Name: "name", Type: h5types.FixedASCIIType(3)},
		h5types.Field{Name: "values", Type: h5types.VarLenArrayType(h5types.Float(8))},
		h5types.Field{Name: "pair", Type: h5types.FixedArray(h5types.Integer(4, false), 2)},
		h5types.Field{Name: "label", Type: h5types.VarLenUnicodeType()},
	)

	id, err := Register(desc)
	require.NoError(t, err)
	defer Close(id)

	class, err := GetClass(id)
	require.NoError(t, err)
	assert.Equal(t, ClassCompound, class)

	size, err := GetSize(id)
	require.NoError(t, err)
	assert.Equal(t, desc.Size(), size)

	members, err := GetNMembers(id)
	require.NoError(t, err)
	assert.Equal(t, len(desc.Fields), members)

	for _, f := range desc.Fields {
		off, err := MemberOffset(id, f.Name)
		require.NoError(t, err, f.Name)
		assert.Equal(t, f.Offset, off, f.Name)
	}

	_, err = MemberOffset(id, "missing")
	assert.Error(t, err)
}

func TestRegisterEnum(t *testing.T) {
	skipIfNoHDF5(t)

	id, err := Register(h5types.Enum(h5types.Integer(2, true),
		h5types.EnumMember{Name: "X", Value: -2},
		h5types.EnumMember{Name: "Y", Value: 3}))
	require.NoError(t, err)
	defer Close(id)

	class, err := GetClass(id)
	require.NoError(t, err)
	assert.Equal(t, ClassEnum, class)

	n, err := GetNMembers(id)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	base, err := Super(id)
	require.NoError(t, err)
	defer Close(base)
	size, err := GetSize(base)
	require.NoError(t, err)
	assert.Equal(t, 2, size)
}

func TestEnumInsertEmptyValue(t *testing.T) {
	skipIfNoHDF5(t)
	assert.Error(t, EnumInsert(0, "x", nil))
}

func TestPackAndNativeType(t *testing.T) {
	skipIfNoHDF5(t)

	desc := h5types.Compound(
		h5types.Field{Name: "a", Type: h5types.Integer(1, true)},
		h5types.Field{Name: "b", Type: h5types.Integer(8, true)},
	)
	id, err := Register(desc)
	require.NoError(t, err)
	defer Close(id)

	mt, err := MemberType(id, "b")
	require.NoError(t, err)
	defer Close(mt)
	size, err := GetSize(mt)
	require.NoError(t, err)
	assert.Equal(t, 8, size)

	_, err = MemberType(id, "missing")
	assert.Error(t, err)

	packed, err := Copy(id)
	require.NoError(t, err)
	defer Close(packed)
	require.NoError(t, Pack(packed))

	size, err = GetSize(packed)
	require.NoError(t, err)
	assert.Equal(t, 9, size)
	off, err := MemberOffset(packed, "b")
	require.NoError(t, err)
	assert.Equal(t, 1, off)

	native, err := NativeType(packed, DirAscend)
	require.NoError(t, err)
	defer Close(native)
	off, err = MemberOffset(native, "b")
	require.NoError(t, err)
	assert.Equal(t, 8, off, "the native type realigns members")

	plain, err := NativeInt32.ID()
	require.NoError(t, err)
	scalar, err := Copy(plain)
	require.NoError(t, err)
	defer Close(scalar)
	assert.Error(t, Pack(scalar), "only compounds can be packed")
}
