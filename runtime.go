//go:build !ios && !android && (amd64 || arm64)

package h5go

import (
	"fmt"
	"sync"

	"github.com/obinnaokechukwu/h5go/h5i"
	"github.com/obinnaokechukwu/h5go/h5s"
	"github.com/obinnaokechukwu/h5go/h5t"
)

// Runtime is the boundary to the library that owns identifiers.
//
// Implementations report failures as errors; ObjectKind reports unknown or
// released identifiers as KindBadID. Runtimes are compared by identity, so
// implementations should be pointer types.
type Runtime interface {
	// ObjectKind classifies id, or returns KindBadID.
	ObjectKind(id ID) Kind
	// Release closes id using the close operation for kind.
	Release(id ID, kind Kind) error
	// Copy returns a new, separately owned identifier for a copy of id.
	Copy(id ID, kind Kind) (ID, error)

	// CreateSimpleDataspace creates a dataspace; len(dims) is its rank.
	CreateSimpleDataspace(dims, maxDims []uint64) (ID, error)
	// DataspaceRank returns the current rank of a dataspace.
	DataspaceRank(id ID) (int, error)
	// DataspaceDims returns the current and maximum extents of a dataspace.
	DataspaceDims(id ID) (dims, maxDims []uint64, err error)
	// SetDataspaceExtent replaces the extents of a dataspace in place.
	SetDataspaceExtent(id ID, dims, maxDims []uint64) error
}

// Unlimited marks an axis whose maximum extent is unbounded.
const Unlimited = h5s.Unlimited

// nativeRuntime calls libhdf5 through purego.
type nativeRuntime struct{}

var native = &nativeRuntime{}

// Native returns the runtime backed by libhdf5.
func Native() Runtime {
	return native
}

var (
	defaultMu      sync.RWMutex
	defaultRuntime Runtime = native
)

// DefaultRuntime returns the runtime used by Wrap and NewDataspace.
func DefaultRuntime() Runtime {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultRuntime
}

// SetDefaultRuntime replaces the runtime used by Wrap and NewDataspace.
// Passing nil restores the native runtime. Existing handles keep the
// runtime they were created with.
func SetDefaultRuntime(rt Runtime) {
	if rt == nil {
		rt = native
	}
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultRuntime = rt
}

func (*nativeRuntime) ObjectKind(id ID) Kind {
	return h5i.GetType(id)
}

func (*nativeRuntime) Release(id ID, kind Kind) error {
	switch kind {
	case KindDataspace:
		return h5s.Close(id)
	case KindDatatype:
		return h5t.Close(id)
	default:
		// H5Idec_ref closes the object once the library count reaches zero,
		// which for a single owner is now.
		_, err := h5i.DecRef(id)
		return err
	}
}

func (*nativeRuntime) Copy(id ID, kind Kind) (ID, error) {
	switch kind {
	case KindDataspace:
		return h5s.Copy(id)
	case KindDatatype:
		return h5t.Copy(id)
	default:
		return h5i.Invalid, fmt.Errorf("h5go: %s identifiers cannot be copied", kind)
	}
}

func (*nativeRuntime) CreateSimpleDataspace(dims, maxDims []uint64) (ID, error) {
	return h5s.CreateSimple(dims, maxDims)
}

func (*nativeRuntime) DataspaceRank(id ID) (int, error) {
	return h5s.NDims(id)
}

func (*nativeRuntime) DataspaceDims(id ID) (dims, maxDims []uint64, err error) {
	return h5s.Dims(id)
}

func (*nativeRuntime) SetDataspaceExtent(id ID, dims, maxDims []uint64) error {
	return h5s.SetExtent(id, dims, maxDims)
}
