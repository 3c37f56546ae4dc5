//go:build !ios && !android && (amd64 || arm64)

// Package h5s provides bindings to HDF5's H5S dataspace interface.
package h5s

import (
	"sync"

	"github.com/ebitengine/purego"
	"github.com/obinnaokechukwu/h5go/h5e"
	"github.com/obinnaokechukwu/h5go/internal/bindings"
)

// ID is an HDF5 dataspace identifier.
type ID = int64

// Unlimited marks an axis whose maximum extent is unbounded (H5S_UNLIMITED).
const Unlimited = ^uint64(0)

// MaxRank is the largest rank HDF5 accepts (H5S_MAX_RANK).
const MaxRank = 32

// Class is a dataspace extent class (H5S_class_t).
type Class int32

const (
	ClassNoClass Class = -1
	ClassScalar  Class = 0
	ClassSimple  Class = 1
	ClassNull    Class = 2
)

// Function bindings - registered on first use
var (
	h5sCreate       func(class int32) int64
	h5sCreateSimple func(rank int32, dims, maxDims *uint64) int64
	h5sCopy         func(id int64) int64
	h5sClose        func(id int64) int32
	h5sGetNDims     func(id int64) int32
	h5sGetDims      func(id int64, dims, maxDims *uint64) int32
	h5sGetNPoints   func(id int64) int64
	h5sGetType      func(id int64) int32
	h5sSetExtent    func(id int64, rank int32, dims, maxDims *uint64) int32

	registerOnce       sync.Once
	bindingsRegistered bool
)

func registerBindings() bool {
	registerOnce.Do(func() {
		if err := bindings.Load(); err != nil {
			return
		}
		lib := bindings.LibHDF5()

		purego.RegisterLibFunc(&h5sCreate, lib, "H5Screate")
		purego.RegisterLibFunc(&h5sCreateSimple, lib, "H5Screate_simple")
		purego.RegisterLibFunc(&h5sCopy, lib, "H5Scopy")
		purego.RegisterLibFunc(&h5sClose, lib, "H5Sclose")
		purego.RegisterLibFunc(&h5sGetNDims, lib, "H5Sget_simple_extent_ndims")
		purego.RegisterLibFunc(&h5sGetDims, lib, "H5Sget_simple_extent_dims")
		purego.RegisterLibFunc(&h5sGetNPoints, lib, "H5Sget_simple_extent_npoints")
		purego.RegisterLibFunc(&h5sGetType, lib, "H5Sget_simple_extent_type")
		purego.RegisterLibFunc(&h5sSetExtent, lib, "H5Sset_extent_simple")

		bindingsRegistered = true
	})
	return bindingsRegistered
}

// first returns a pointer to the first element, or nil for an empty slice.
func first(s []uint64) *uint64 {
	if len(s) == 0 {
		return nil
	}
	return &s[0]
}

// CreateSimple creates a simple dataspace with the given current and
// maximum extents. maxDims may be nil, meaning maximum equals current.
// A zero-length dims creates a rank-0 dataspace.
func CreateSimple(dims, maxDims []uint64) (ID, error) {
	if !registerBindings() {
		return -1, bindings.ErrNotLoaded
	}
	id := h5sCreateSimple(int32(len(dims)), first(dims), first(maxDims))
	if err := h5e.CheckID(id, "H5Screate_simple"); err != nil {
		return -1, err
	}
	return id, nil
}

// Create creates a dataspace of the given class.
func Create(class Class) (ID, error) {
	if !registerBindings() {
		return -1, bindings.ErrNotLoaded
	}
	id := h5sCreate(int32(class))
	if err := h5e.CheckID(id, "H5Screate"); err != nil {
		return -1, err
	}
	return id, nil
}

// Copy creates a new, separately owned dataspace identical to id.
func Copy(id ID) (ID, error) {
	if !registerBindings() {
		return -1, bindings.ErrNotLoaded
	}
	dup := h5sCopy(id)
	if err := h5e.CheckID(dup, "H5Scopy"); err != nil {
		return -1, err
	}
	return dup, nil
}

// Close releases a dataspace identifier.
func Close(id ID) error {
	if !registerBindings() {
		return bindings.ErrNotLoaded
	}
	return h5e.Check(h5sClose(id), "H5Sclose")
}

// NDims returns the rank of a dataspace.
func NDims(id ID) (int, error) {
	if !registerBindings() {
		return 0, bindings.ErrNotLoaded
	}
	n := h5sGetNDims(id)
	if n < 0 {
		return 0, h5e.Check(n, "H5Sget_simple_extent_ndims")
	}
	return int(n), nil
}

// Dims returns the current and maximum extents of a dataspace.
func Dims(id ID) (dims, maxDims []uint64, err error) {
	rank, err := NDims(id)
	if err != nil {
		return nil, nil, err
	}
	if rank == 0 {
		return []uint64{}, []uint64{}, nil
	}
	dims = make([]uint64, rank)
	maxDims = make([]uint64, rank)
	if ret := h5sGetDims(id, &dims[0], &maxDims[0]); ret < 0 {
		return nil, nil, h5e.Check(ret, "H5Sget_simple_extent_dims")
	}
	return dims, maxDims, nil
}

// NPoints returns the number of elements in the dataspace extent.
func NPoints(id ID) (int64, error) {
	if !registerBindings() {
		return 0, bindings.ErrNotLoaded
	}
	n := h5sGetNPoints(id)
	if n < 0 {
		return 0, h5e.NewError(n, "H5Sget_simple_extent_npoints")
	}
	return n, nil
}

// GetClass returns the extent class of a dataspace.
func GetClass(id ID) (Class, error) {
	if !registerBindings() {
		return ClassNoClass, bindings.ErrNotLoaded
	}
	c := Class(h5sGetType(id))
	if c == ClassNoClass {
		return c, h5e.Check(-1, "H5Sget_simple_extent_type")
	}
	return c, nil
}

// SetExtent replaces the extents of an existing dataspace in place.
func SetExtent(id ID, dims, maxDims []uint64) error {
	if !registerBindings() {
		return bindings.ErrNotLoaded
	}
	return h5e.Check(h5sSetExtent(id, int32(len(dims)), first(dims), first(maxDims)), "H5Sset_extent_simple")
}
