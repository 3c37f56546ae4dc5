//go:build !ios && !android && (amd64 || arm64)

package h5go

import (
	"runtime"
	"sync/atomic"

	"github.com/obinnaokechukwu/h5go/h5i"
	"github.com/obinnaokechukwu/h5go/internal/handles"
	"go.uber.org/zap"
)

// Handle wraps one runtime identifier together with its kind.
//
// An OWNED handle releases its identifier exactly once: on Close, or from a
// finalizer if Close was never called. A BORROWED handle never releases.
// Handles must not be copied by value; pass *Handle.
type Handle struct {
	rt     Runtime
	id     ID
	kind   Kind
	owned  bool
	closed atomic.Bool
}

// Wrap takes ownership of id on the default runtime.
// The runtime is asked for the identifier's kind; an identifier it does not
// recognize (negative, released, foreign) or one already owned by another
// Handle yields an *InvalidResourceError.
func Wrap(id ID) (*Handle, error) {
	return wrap(DefaultRuntime(), id, KindBadID)
}

// WrapIn takes ownership of id on rt.
func WrapIn(rt Runtime, id ID) (*Handle, error) {
	return wrap(rt, id, KindBadID)
}

// WrapKind takes ownership of id on rt, requiring the runtime to report
// the given kind.
func WrapKind(rt Runtime, id ID, want Kind) (*Handle, error) {
	if !want.Valid() {
		panic("h5go: WrapKind requires a valid kind, got " + want.String())
	}
	return wrap(rt, id, want)
}

func wrap(rt Runtime, id ID, want Kind) (*Handle, error) {
	kind, err := classify(rt, id, want)
	if err != nil {
		return nil, err
	}
	if !handles.Claim(rt, id) {
		return nil, &InvalidResourceError{ID: id, Kind: kind, Want: want, Reason: "identifier already owned"}
	}

	h := &Handle{rt: rt, id: id, kind: kind, owned: true}
	runtime.SetFinalizer(h, (*Handle).finalize)
	return h, nil
}

// Borrow returns a non-owning view of id on rt. Closing it does not
// release the identifier; the owner must outlive the view.
func Borrow(rt Runtime, id ID) (*Handle, error) {
	kind, err := classify(rt, id, KindBadID)
	if err != nil {
		return nil, err
	}
	return &Handle{rt: rt, id: id, kind: kind}, nil
}

func classify(rt Runtime, id ID, want Kind) (Kind, error) {
	if rt == nil {
		panic("h5go: nil Runtime")
	}
	kind := rt.ObjectKind(id)
	if !kind.Valid() {
		return kind, &InvalidResourceError{ID: id, Kind: kind, Want: want, Reason: "runtime reports no live object"}
	}
	if want != KindBadID && kind != want {
		return kind, &InvalidResourceError{ID: id, Kind: kind, Want: want}
	}
	return kind, nil
}

// ID returns the raw identifier for passing to runtime calls.
// Do not retain it past the handle's lifetime. Returns -1 once closed.
func (h *Handle) ID() ID {
	if h == nil || h.closed.Load() {
		return h5i.Invalid
	}
	return h.id
}

// Kind returns the kind reported by the runtime when the handle was created.
func (h *Handle) Kind() Kind {
	return h.kind
}

// Owned returns true if the handle is responsible for releasing its identifier.
func (h *Handle) Owned() bool {
	return h.owned
}

// Runtime returns the runtime that issued the identifier.
func (h *Handle) Runtime() Runtime {
	return h.rt
}

// IsClosed returns true once Close or Detach has been called.
func (h *Handle) IsClosed() bool {
	return h.closed.Load()
}

// IsValid asks the runtime whether the identifier is still live and of
// the same kind. Operations on related identifiers may invalidate it.
func (h *Handle) IsValid() bool {
	if h == nil || h.closed.Load() {
		return false
	}
	return h.rt.ObjectKind(h.id) == h.kind
}

// Clone returns a new owned handle to a runtime-level copy of the object.
// Only dataspaces and datatypes can be copied.
func (h *Handle) Clone() (*Handle, error) {
	if h == nil || h.closed.Load() {
		return nil, ErrClosed
	}
	dup, err := h.rt.Copy(h.id, h.kind)
	if err != nil {
		return nil, callError("copy "+h.kind.String(), err)
	}
	c, err := wrap(h.rt, dup, h.kind)
	if err != nil {
		// Still ours to release
		if rerr := h.rt.Release(dup, h.kind); rerr != nil {
			logReleaseFailure(dup, h.kind, rerr)
		}
		return nil, err
	}
	return c, nil
}

// Detach gives up ownership without releasing the identifier. The caller
// becomes responsible for it. Detaching a borrowed handle fails.
func (h *Handle) Detach() (ID, error) {
	if h == nil || h.closed.Load() {
		return h5i.Invalid, ErrClosed
	}
	if !h.owned {
		return h5i.Invalid, &InvalidResourceError{ID: h.id, Kind: h.kind, Reason: "borrowed handle cannot be detached"}
	}
	if !h.closed.CompareAndSwap(false, true) {
		return h5i.Invalid, ErrClosed
	}
	runtime.SetFinalizer(h, nil)
	handles.Unclaim(h.rt, h.id)
	return h.id, nil
}

// Close releases the identifier if the handle owns it.
// It is safe to call multiple times; only the first call releases.
// A failing release is logged and otherwise ignored: the identifier is gone
// from this handle either way, and retrying could release a reused id.
func (h *Handle) Close() error {
	if h == nil || !h.closed.CompareAndSwap(false, true) {
		return nil
	}
	runtime.SetFinalizer(h, nil)
	if h.owned {
		h.release()
	}
	return nil
}

func (h *Handle) finalize() {
	if !h.closed.CompareAndSwap(false, true) {
		return
	}
	Logger().Debug("h5go: handle released by finalizer",
		zap.Int64("id", h.id), zap.Stringer("kind", h.kind))
	h.release()
}

func (h *Handle) release() {
	if err := h.rt.Release(h.id, h.kind); err != nil {
		logReleaseFailure(h.id, h.kind, err)
	}
	handles.Unclaim(h.rt, h.id)
}

func logReleaseFailure(id ID, kind Kind, err error) {
	Logger().Warn("h5go: release failed",
		zap.Int64("id", id), zap.Stringer("kind", kind), zap.Error(err))
}
