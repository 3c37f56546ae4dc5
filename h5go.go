//go:build !ios && !android && (amd64 || arm64)

// Package h5go provides safe handles to objects owned by the HDF5 library,
// and the shape abstraction used to describe multi-dimensional extents.
// It calls libhdf5 without CGO using purego.
//
// Every HDF5 object is reachable only through an integer identifier. A
// Handle owns one identifier and releases it exactly once; a Dataspace owns
// a dataspace Handle and exposes its extents through the Dimension
// interface:
//
//	space, err := h5go.NewDataspace(h5go.Tuple2{3, 4})
//	if err != nil {
//		return err
//	}
//	defer space.Close()
//	fmt.Println(space.NDim(), space.Dims()) // 2 [3 4]
//
// The identifier-level bindings live in the h5i, h5s, h5t and h5e packages.
// The h5mem package implements the same Runtime in process.
package h5go

import (
	"github.com/obinnaokechukwu/h5go/h5i"
	"github.com/obinnaokechukwu/h5go/internal/bindings"
)

// Init loads the HDF5 library. This is called automatically when using
// the native runtime, but can be called explicitly to check for errors.
// It is safe to call multiple times.
func Init() error {
	return bindings.Load()
}

// IsLoaded returns true if the HDF5 library has been successfully loaded.
func IsLoaded() bool {
	return bindings.IsLoaded()
}

// Version returns the loaded HDF5 library version.
func Version() (major, minor, release uint32) {
	v := bindings.LibraryVersion()
	return v.Major, v.Minor, v.Release
}

// Re-export identifier types for convenience
type (
	// ID is an HDF5 object identifier (hid_t).
	ID = h5i.ID

	// Kind classifies the object behind an identifier.
	Kind = h5i.Kind
)

// Re-export identifier kinds
const (
	KindBadID        = h5i.KindBadID
	KindFile         = h5i.KindFile
	KindGroup        = h5i.KindGroup
	KindDatatype     = h5i.KindDatatype
	KindDataspace    = h5i.KindDataspace
	KindDataset      = h5i.KindDataset
	KindMap          = h5i.KindMap
	KindAttribute    = h5i.KindAttribute
	KindVFL          = h5i.KindVFL
	KindVOL          = h5i.KindVOL
	KindGenPropClass = h5i.KindGenPropClass
	KindGenPropList  = h5i.KindGenPropList
	KindErrorClass   = h5i.KindErrorClass
	KindErrorMessage = h5i.KindErrorMessage
	KindErrorStack   = h5i.KindErrorStack
	KindSpaceSelIter = h5i.KindSpaceSelIter
	KindEventSet     = h5i.KindEventSet
)
