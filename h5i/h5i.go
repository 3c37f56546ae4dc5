//go:build !ios && !android && (amd64 || arm64)

// Package h5i provides bindings to HDF5's H5I identifier interface.
// It classifies identifiers and manipulates their library reference counts.
package h5i

import (
	"sync"

	"github.com/ebitengine/purego"
	"github.com/obinnaokechukwu/h5go/h5e"
	"github.com/obinnaokechukwu/h5go/internal/bindings"
)

// ID is an HDF5 object identifier (hid_t).
type ID = int64

// Invalid is the identifier value HDF5 returns on failure (H5I_INVALID_HID).
const Invalid ID = -1

// Function bindings - registered on first use
var (
	h5iGetType  func(id int64) int32
	h5iIsValid  func(id int64) int32
	h5iIncRef   func(id int64) int32
	h5iDecRef   func(id int64) int32
	h5iGetRef   func(id int64) int32
	h5iNMembers func(typ int32, num *uint64) int32

	registerOnce       sync.Once
	bindingsRegistered bool
)

func registerBindings() bool {
	registerOnce.Do(func() {
		if err := bindings.Load(); err != nil {
			return // Will fail later when functions are called
		}
		lib := bindings.LibHDF5()

		purego.RegisterLibFunc(&h5iGetType, lib, "H5Iget_type")
		purego.RegisterLibFunc(&h5iIsValid, lib, "H5Iis_valid")
		purego.RegisterLibFunc(&h5iIncRef, lib, "H5Iinc_ref")
		purego.RegisterLibFunc(&h5iDecRef, lib, "H5Idec_ref")
		purego.RegisterLibFunc(&h5iGetRef, lib, "H5Iget_ref")
		purego.RegisterLibFunc(&h5iNMembers, lib, "H5Inmembers")

		bindingsRegistered = true
	})
	return bindingsRegistered
}

// GetType returns the kind of object an identifier refers to.
// Returns KindBadID for negative, released or foreign identifiers, and
// when the library is not loaded.
func GetType(id ID) Kind {
	if id < 0 || !registerBindings() {
		return KindBadID
	}
	kind := FromNative(h5iGetType(id), bindings.LibraryVersion())
	if kind == KindBadID {
		h5e.Clear()
	}
	return kind
}

// IsValid reports whether id refers to a live object.
func IsValid(id ID) (bool, error) {
	if !registerBindings() {
		return false, bindings.ErrNotLoaded
	}
	ret := h5iIsValid(id)
	if ret < 0 {
		return false, h5e.Check(ret, "H5Iis_valid")
	}
	return ret > 0, nil
}

// IncRef increments the library reference count of id and returns the new count.
func IncRef(id ID) (int, error) {
	if !registerBindings() {
		return 0, bindings.ErrNotLoaded
	}
	ret := h5iIncRef(id)
	if ret < 0 {
		return 0, h5e.Check(ret, "H5Iinc_ref")
	}
	return int(ret), nil
}

// DecRef decrements the library reference count of id and returns the new
// count. The object is closed when the count reaches zero.
func DecRef(id ID) (int, error) {
	if !registerBindings() {
		return 0, bindings.ErrNotLoaded
	}
	ret := h5iDecRef(id)
	if ret < 0 {
		return 0, h5e.Check(ret, "H5Idec_ref")
	}
	return int(ret), nil
}

// GetRef returns the library reference count of id.
func GetRef(id ID) (int, error) {
	if !registerBindings() {
		return 0, bindings.ErrNotLoaded
	}
	ret := h5iGetRef(id)
	if ret < 0 {
		return 0, h5e.Check(ret, "H5Iget_ref")
	}
	return int(ret), nil
}

// NMembers returns the number of live identifiers of the given kind.
func NMembers(kind Kind) (uint64, error) {
	if !registerBindings() {
		return 0, bindings.ErrNotLoaded
	}
	native, ok := ToNative(kind, bindings.LibraryVersion())
	if !ok {
		return 0, nil
	}
	var n uint64
	if err := h5e.Check(h5iNMembers(native, &n), "H5Inmembers"); err != nil {
		return 0, err
	}
	return n, nil
}
