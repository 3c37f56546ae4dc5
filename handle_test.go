//go:build !ios && !android && (amd64 || arm64)

package h5go_test

import (
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/obinnaokechukwu/h5go"
	"github.com/obinnaokechukwu/h5go/h5mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWrapReportsKind(t *testing.T) {
	rt := h5mem.New()
	id := rt.Insert(h5go.KindGroup)

	h, err := h5go.WrapIn(rt, id)
	require.NoError(t, err)
	defer h.Close()

	assert.Equal(t, h5go.KindGroup, h.Kind())
	assert.Equal(t, id, h.ID())
	assert.True(t, h.Owned())
	assert.True(t, h.IsValid())
	assert.Same(t, rt, h.Runtime())
}

func TestWrapInvalidIdentifiers(t *testing.T) {
	rt := h5mem.New()

	for _, id := range []h5go.ID{-1, 0, 12345} {
		_, err := h5go.WrapIn(rt, id)
		assert.ErrorIs(t, err, h5go.ErrInvalidResource, "id %d", id)
		assert.True(t, h5go.IsInvalidResource(err))
	}
}

func TestWrapReleasedIdentifierFails(t *testing.T) {
	rt := h5mem.New()
	id, err := rt.CreateSimpleDataspace([]uint64{3}, nil)
	require.NoError(t, err)

	h, err := h5go.WrapIn(rt, id)
	require.NoError(t, err, "freshly created identifiers always wrap")
	require.NoError(t, h.Close())

	_, err = h5go.WrapIn(rt, id)
	var invalid *h5go.InvalidResourceError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, id, invalid.ID)
	assert.Equal(t, h5go.KindBadID, invalid.Kind)
}

func TestWrapKindMismatch(t *testing.T) {
	rt := h5mem.New()
	id := rt.Insert(h5go.KindDataset)

	_, err := h5go.WrapKind(rt, id, h5go.KindDataspace)
	var invalid *h5go.InvalidResourceError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, h5go.KindDataset, invalid.Kind)
	assert.Equal(t, h5go.KindDataspace, invalid.Want)
	assert.Contains(t, err.Error(), "want dataspace, runtime reports dataset")

	// The failed wrap must not have claimed the identifier
	h, err := h5go.WrapKind(rt, id, h5go.KindDataset)
	require.NoError(t, err)
	h.Close()
}

func TestWrapKindPanicsOnBadKind(t *testing.T) {
	rt := h5mem.New()
	assert.Panics(t, func() {
		h5go.WrapKind(rt, rt.Insert(h5go.KindFile), h5go.KindBadID)
	})
}

func TestSecondOwnerRejected(t *testing.T) {
	rt := h5mem.New()
	id := rt.Insert(h5go.KindFile)

	h, err := h5go.WrapIn(rt, id)
	require.NoError(t, err)

	_, err = h5go.WrapIn(rt, id)
	require.ErrorIs(t, err, h5go.ErrInvalidResource)
	assert.Contains(t, err.Error(), "already owned")

	require.NoError(t, h.Close())
	assert.Equal(t, 1, rt.Releases(id))
}

func TestCloseReleasesExactlyOnce(t *testing.T) {
	rt := h5mem.New()
	id := rt.Insert(h5go.KindAttribute)

	h, err := h5go.WrapIn(rt, id)
	require.NoError(t, err)

	require.NoError(t, h.Close())
	require.NoError(t, h.Close())
	require.NoError(t, h.Close())

	assert.Equal(t, 1, rt.Releases(id))
	assert.Equal(t, h5go.KindBadID, rt.ObjectKind(id))
	assert.Equal(t, h5go.ID(-1), h.ID(), "closed handles expose no identifier")
	assert.False(t, h.IsValid())
	assert.True(t, h.IsClosed())
}

func TestCloseAbsorbsReleaseFailure(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	h5go.SetLogger(zap.New(core))
	defer h5go.SetLogger(nil)

	rt := h5mem.New()
	id := rt.Insert(h5go.KindDataset)
	h, err := h5go.WrapIn(rt, id)
	require.NoError(t, err)

	rt.FailNext(h5mem.OpRelease, errors.New("busy"))
	assert.NoError(t, h.Close(), "release failures are not returned")
	assert.NoError(t, h.Close())
	assert.Equal(t, 1, rt.Releases(id), "no second release is attempted")

	entries := logs.FilterMessage("h5go: release failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, id, entries[0].ContextMap()["id"])
	assert.Equal(t, "dataset", entries[0].ContextMap()["kind"])

	// The identifier is gone from the handle layer, so it can be wrapped again
	h2, err := h5go.WrapIn(rt, id)
	require.NoError(t, err)
	require.NoError(t, h2.Close())
}

func TestBorrowNeverReleases(t *testing.T) {
	rt := h5mem.New()
	id := rt.Insert(h5go.KindGroup)

	owner, err := h5go.WrapIn(rt, id)
	require.NoError(t, err)

	view, err := h5go.Borrow(rt, id)
	require.NoError(t, err)
	assert.False(t, view.Owned())
	require.NoError(t, view.Close())
	assert.Zero(t, rt.Releases(id))
	assert.True(t, owner.IsValid())

	_, err = view.Detach()
	assert.ErrorIs(t, err, h5go.ErrClosed)

	view2, err := h5go.Borrow(rt, id)
	require.NoError(t, err)
	_, err = view2.Detach()
	assert.ErrorIs(t, err, h5go.ErrInvalidResource)

	require.NoError(t, owner.Close())
	assert.Equal(t, 1, rt.Releases(id))
	assert.False(t, view2.IsValid(), "views observe the owner's release")
}

func TestBorrowInvalid(t *testing.T) {
	rt := h5mem.New()
	_, err := h5go.Borrow(rt, -1)
	assert.ErrorIs(t, err, h5go.ErrInvalidResource)
}

func TestDetachTransfersOwnership(t *testing.T) {
	rt := h5mem.New()
	id := rt.Insert(h5go.KindDatatype)

	h, err := h5go.WrapIn(rt, id)
	require.NoError(t, err)

	got, err := h.Detach()
	require.NoError(t, err)
	assert.Equal(t, id, got)
	require.NoError(t, h.Close())
	assert.Zero(t, rt.Releases(id), "detached identifiers are not released")

	h2, err := h5go.WrapIn(rt, got)
	require.NoError(t, err, "the new owner can claim the identifier")
	require.NoError(t, h2.Close())
	assert.Equal(t, 1, rt.Releases(id))
}

func TestCloneDataspace(t *testing.T) {
	rt := h5mem.New()
	id, err := rt.CreateSimpleDataspace([]uint64{2, 2}, nil)
	require.NoError(t, err)

	h, err := h5go.WrapIn(rt, id)
	require.NoError(t, err)
	defer h.Close()

	c, err := h.Clone()
	require.NoError(t, err)
	defer c.Close()

	assert.NotEqual(t, h.ID(), c.ID())
	assert.Equal(t, h5go.KindDataspace, c.Kind())
	assert.True(t, c.Owned())
}

func TestCloneUnsupportedKind(t *testing.T) {
	rt := h5mem.New()
	h, err := h5go.WrapIn(rt, rt.Insert(h5go.KindGroup))
	require.NoError(t, err)
	defer h.Close()

	_, err = h.Clone()
	assert.ErrorIs(t, err, h5go.ErrRuntimeCall)
	assert.ErrorIs(t, err, h5mem.ErrWrongKind)

	require.NoError(t, h.Close())
	_, err = h.Clone()
	assert.ErrorIs(t, err, h5go.ErrClosed)
}

func TestFinalizerReleasesForgottenHandle(t *testing.T) {
	rt := h5mem.New()
	id := rt.Insert(h5go.KindFile)

	func() {
		_, err := h5go.WrapIn(rt, id)
		require.NoError(t, err)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for rt.Releases(id) == 0 && time.Now().Before(deadline) {
		runtime.GC()
		time.Sleep(10 * time.Millisecond)
	}
	assert.Equal(t, 1, rt.Releases(id))
}

func TestNilHandle(t *testing.T) {
	var h *h5go.Handle
	assert.NoError(t, h.Close())
	assert.Equal(t, h5go.ID(-1), h.ID())
	assert.False(t, h.IsValid())
}
