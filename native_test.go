//go:build !ios && !android && (amd64 || arm64)

package h5go_test

import (
	"os"
	"testing"

	"github.com/obinnaokechukwu/h5go"
	"github.com/obinnaokechukwu/h5go/h5t"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hdf5Available bool

func TestMain(m *testing.M) {
	if err := h5go.Init(); err == nil {
		hdf5Available = true
	}
	os.Exit(m.Run())
}

func requireHDF5(t *testing.T) {
	t.Helper()
	if !hdf5Available {
		t.Skip("HDF5 not available")
	}
}

func TestNativeDataspaceRoundTrip(t *testing.T) {
	requireHDF5(t)

	space, err := h5go.NewDataspaceIn(h5go.Native(), h5go.Tuple2{3, 4})
	require.NoError(t, err)
	defer space.Close()

	assert.Equal(t, h5go.KindDataspace, space.Handle().Kind())
	assert.Equal(t, 2, space.NDim())
	assert.Equal(t, []int{3, 4}, space.Dims())
	assert.Equal(t, 12, h5go.Size(space))

	maxDims, err := space.MaxDims()
	require.NoError(t, err)
	assert.Equal(t, []uint64{h5go.Unlimited, h5go.Unlimited}, maxDims)
}

func TestNativeWrapReleased(t *testing.T) {
	requireHDF5(t)

	space, err := h5go.NewDataspaceIn(h5go.Native(), h5go.Shape{2, 3})
	require.NoError(t, err)
	id := space.ID()
	require.NoError(t, space.Close())

	_, err = h5go.WrapIn(h5go.Native(), id)
	assert.ErrorIs(t, err, h5go.ErrInvalidResource)
}

func TestNativeResizeAndCopy(t *testing.T) {
	requireHDF5(t)

	space, err := h5go.NewDataspaceIn(h5go.Native(), h5go.Ix(1))
	require.NoError(t, err)
	defer space.Close()

	require.NoError(t, space.Resize(h5go.Shape{5, 6}))
	assert.Equal(t, []int{5, 6}, space.Dims())

	dup, err := space.Copy()
	require.NoError(t, err)
	defer dup.Close()
	assert.NotEqual(t, space.ID(), dup.ID())
	assert.Equal(t, []int{5, 6}, dup.Dims())
}

func TestNativeDatatypeHandle(t *testing.T) {
	requireHDF5(t)

	base, err := h5t.NativeInt32.ID()
	require.NoError(t, err)
	id, err := h5t.Copy(base)
	require.NoError(t, err)

	h, err := h5go.WrapKind(h5go.Native(), id, h5go.KindDatatype)
	require.NoError(t, err)

	clone, err := h.Clone()
	require.NoError(t, err)
	assert.Equal(t, h5go.KindDatatype, clone.Kind())
	eq, err := h5t.Equal(h.ID(), clone.ID())
	require.NoError(t, err)
	assert.True(t, eq)

	require.NoError(t, h.Close())
	assert.True(t, clone.IsValid(), "the clone is owned separately")
	require.NoError(t, clone.Close())
	assert.Equal(t, h5go.KindBadID, h5go.Native().ObjectKind(id))
}

func TestNativeWrapInvalid(t *testing.T) {
	requireHDF5(t)

	_, err := h5go.WrapIn(h5go.Native(), -1)
	assert.ErrorIs(t, err, h5go.ErrInvalidResource)
}

func TestVersion(t *testing.T) {
	requireHDF5(t)
	major, minor, _ := h5go.Version()
	assert.Equal(t, uint32(1), major)
	assert.GreaterOrEqual(t, minor, uint32(10))
}
