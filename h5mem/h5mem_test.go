//go:build !ios && !android && (amd64 || arm64)

package h5mem

import (
	"errors"
	"testing"

	"github.com/obinnaokechukwu/h5go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInsertAndRelease(t *testing.T) {
	r := New()
	id := r.Insert(h5go.KindGroup)

	assert.Equal(t, h5go.KindGroup, r.ObjectKind(id))
	assert.Equal(t, 1, r.Live())

	require.NoError(t, r.Release(id, h5go.KindGroup))
	assert.Equal(t, h5go.KindBadID, r.ObjectKind(id))
	assert.Zero(t, r.Live())

	err := r.Release(id, h5go.KindGroup)
	assert.ErrorIs(t, err, ErrBadID, "released identifiers are not recognized")
	assert.Equal(t, 2, r.Releases(id))
}

func TestIdentifiersAreNotReused(t *testing.T) {
	r := New()
	a := r.Insert(h5go.KindFile)
	require.NoError(t, r.Release(a, h5go.KindFile))
	b := r.Insert(h5go.KindFile)
	assert.NotEqual(t, a, b)
}

func TestReleaseWrongKind(t *testing.T) {
	r := New()
	id := r.Insert(h5go.KindDataset)
	assert.ErrorIs(t, r.Release(id, h5go.KindDataspace), ErrWrongKind)
	assert.Equal(t, h5go.KindDataset, r.ObjectKind(id))
}

func TestRefCounting(t *testing.T) {
	r := New()
	id := r.Insert(h5go.KindAttribute)

	n, err := r.IncRef(id)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, r.Release(id, h5go.KindAttribute))
	assert.Equal(t, 1, r.RefCount(id), "object survives while references remain")
	require.NoError(t, r.Release(id, h5go.KindAttribute))
	assert.Zero(t, r.RefCount(id))

	_, err = r.IncRef(id)
	assert.ErrorIs(t, err, ErrBadID)
}

func TestDataspaceExtents(t *testing.T) {
	r := New()
	id, err := r.CreateSimpleDataspace([]uint64{3, 4}, []uint64{h5go.Unlimited, 10})
	require.NoError(t, err)

	rank, err := r.DataspaceRank(id)
	require.NoError(t, err)
	assert.Equal(t, 2, rank)

	dims, maxDims, err := r.DataspaceDims(id)
	require.NoError(t, err)
	assert.Equal(t, []uint64{3, 4}, dims)
	assert.Equal(t, []uint64{h5go.Unlimited, 10}, maxDims)

	// Callers get copies
	dims[0] = 99
	again, _, err := r.DataspaceDims(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), again[0])
}

func TestDataspaceRankZero(t *testing.T) {
	r := New()
	id, err := r.CreateSimpleDataspace(nil, nil)
	require.NoError(t, err)

	rank, err := r.DataspaceRank(id)
	require.NoError(t, err)
	assert.Zero(t, rank)

	dims, maxDims, err := r.DataspaceDims(id)
	require.NoError(t, err)
	assert.Empty(t, dims)
	assert.Empty(t, maxDims)
}

func TestCreateRejectsBadExtents(t *testing.T) {
	r := New()

	_, err := r.CreateSimpleDataspace([]uint64{5}, []uint64{4})
	assert.ErrorIs(t, err, ErrBadExtent)

	_, err = r.CreateSimpleDataspace([]uint64{5, 5}, []uint64{h5go.Unlimited})
	assert.ErrorIs(t, err, ErrBadExtent)

	_, err = r.CreateSimpleDataspace(make([]uint64, 33), nil)
	assert.ErrorIs(t, err, ErrBadExtent)

	id, err := r.CreateSimpleDataspace([]uint64{5}, nil)
	require.NoError(t, err)
	_, maxDims, err := r.DataspaceDims(id)
	require.NoError(t, err)
	assert.Equal(t, []uint64{5}, maxDims, "nil maximum defaults to the current extent")
}

func TestSetExtent(t *testing.T) {
	r := New()
	id, err := r.CreateSimpleDataspace([]uint64{1}, []uint64{h5go.Unlimited})
	require.NoError(t, err)

	require.NoError(t, r.SetDataspaceExtent(id, []uint64{2, 7}, []uint64{h5go.Unlimited, h5go.Unlimited}))
	dims, _, err := r.DataspaceDims(id)
	require.NoError(t, err)
	assert.Equal(t, []uint64{2, 7}, dims)
}

func TestCopy(t *testing.T) {
	r := New()
	id, err := r.CreateSimpleDataspace([]uint64{6}, nil)
	require.NoError(t, err)

	dup, err := r.Copy(id, h5go.KindDataspace)
	require.NoError(t, err)
	assert.NotEqual(t, id, dup)

	require.NoError(t, r.SetDataspaceExtent(id, []uint64{2}, nil))
	dims, _, err := r.DataspaceDims(dup)
	require.NoError(t, err)
	assert.Equal(t, []uint64{6}, dims, "copies are independent")

	group := r.Insert(h5go.KindGroup)
	_, err = r.Copy(group, h5go.KindGroup)
	assert.ErrorIs(t, err, ErrWrongKind)
}

func TestOperationsOnWrongKind(t *testing.T) {
	r := New()
	id := r.Insert(h5go.KindDataset)

	_, err := r.DataspaceRank(id)
	assert.ErrorIs(t, err, ErrWrongKind)
	_, _, err = r.DataspaceDims(-1)
	assert.ErrorIs(t, err, ErrBadID)
}

func TestFailureInjection(t *testing.T) {
	r := New()
	id, err := r.CreateSimpleDataspace([]uint64{2}, nil)
	require.NoError(t, err)

	custom := errors.New("disk on fire")
	r.FailNext(OpRank, custom)
	_, err = r.DataspaceRank(id)
	assert.ErrorIs(t, err, custom)
	_, err = r.DataspaceRank(id)
	assert.NoError(t, err, "FailNext applies once")

	r.FailAlways(OpCreate, nil)
	for i := 0; i < 3; i++ {
		_, err = r.CreateSimpleDataspace([]uint64{1}, nil)
		assert.ErrorIs(t, err, ErrInjected)
	}
	r.ClearFailures()
	_, err = r.CreateSimpleDataspace([]uint64{1}, nil)
	assert.NoError(t, err)
}

func TestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := New(WithLogger(zap.New(core)))

	id := r.Insert(h5go.KindFile)
	require.NoError(t, r.Release(id, h5go.KindFile))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "h5mem: object created", entries[0].Message)
	assert.Equal(t, "h5mem: object released", entries[1].Message)
}
