//go:build !ios && !android && (amd64 || arm64)

package roundtrip

import (
	"fmt"

	"github.com/obinnaokechukwu/h5go"
	"github.com/obinnaokechukwu/h5go/h5t"
	"github.com/obinnaokechukwu/h5go/h5types"
)

// CheckNative registers desc with libhdf5 and compares it with layouts the
// library computes on its own:
//
//   - the registered type: member classes and the sizes of leaf types;
//   - the native type (H5Tget_native_type): compound member offsets under
//     the platform's C alignment rules;
//   - the packed type (H5Tpack): sizes and offsets of h5types.Packed(desc),
//     for descriptors that contain a compound.
//
// A disagreement is reported as *h5types.LayoutError.
func CheckNative(desc *h5types.TypeDescriptor) error {
	id, err := h5t.Register(desc)
	if err != nil {
		return fmt.Errorf("roundtrip: register %s: %w", desc, err)
	}
	h, err := h5go.WrapKind(h5go.Native(), id, h5go.KindDatatype)
	if err != nil {
		_ = h5t.Close(id)
		return err
	}
	defer h.Close()

	if err := compareLayout(desc, h.ID(), desc.String(), layoutCheck{source: "hdf5", sizes: true}); err != nil {
		return err
	}

	nativeID, err := h5t.NativeType(h.ID(), h5t.DirAscend)
	if err != nil {
		return err
	}
	native, err := h5go.WrapKind(h5go.Native(), nativeID, h5go.KindDatatype)
	if err != nil {
		_ = h5t.Close(nativeID)
		return err
	}
	defer native.Close()
	// The native compound may carry tail padding of its own, so only
	// offsets are compared there.
	if err := compareLayout(desc, native.ID(), desc.String(), layoutCheck{source: "hdf5 native", offsets: true}); err != nil {
		return err
	}

	if !hasCompound(desc) {
		return nil
	}
	packed, err := h.Clone()
	if err != nil {
		return err
	}
	defer packed.Close()
	if err := h5t.Pack(packed.ID()); err != nil {
		return err
	}
	return compareLayout(h5types.Packed(desc), packed.ID(), desc.String(), layoutCheck{source: "hdf5 packed", sizes: true, offsets: true})
}

type layoutCheck struct {
	source  string
	sizes   bool // compare compound sizes; leaf sizes are always compared
	offsets bool
}

func compareLayout(d *h5types.TypeDescriptor, id h5go.ID, path string, c layoutCheck) error {
	class, err := h5t.GetClass(id)
	if err != nil {
		return err
	}
	if want := nativeClass(d); class != want {
		return &h5types.LayoutError{Type: path, What: "class", Source: c.source, Want: int(want), Got: int(class)}
	}

	if d.Class != h5types.ClassCompound || c.sizes {
		size, err := h5t.GetSize(id)
		if err != nil {
			return err
		}
		if size != d.Size() {
			return &h5types.LayoutError{Type: path, What: "size", Source: c.source, Want: d.Size(), Got: size}
		}
	}

	switch d.Class {
	case h5types.ClassCompound:
		for _, f := range d.Fields {
			if c.offsets {
				off, err := h5t.MemberOffset(id, f.Name)
				if err != nil {
					return err
				}
				if off != f.Offset {
					return &h5types.LayoutError{Type: path, Member: f.Name, What: "offset", Source: c.source, Want: f.Offset, Got: off}
				}
			}
			mt, err := h5t.MemberType(id, f.Name)
			if err != nil {
				return err
			}
			err = compareLayout(f.Type, mt, path+"."+f.Name, c)
			_ = h5t.Close(mt)
			if err != nil {
				return err
			}
		}
	case h5types.ClassFixedArray, h5types.ClassVarLenArray, h5types.ClassEnum:
		base, err := h5t.Super(id)
		if err != nil {
			return err
		}
		defer h5t.Close(base)
		return compareLayout(d.Base, base, path+"[]", c)
	}
	return nil
}

// nativeClass is the library class a descriptor registers as.
func nativeClass(d *h5types.TypeDescriptor) h5t.Class {
	switch d.Class {
	case h5types.ClassInteger:
		return h5t.ClassInteger
	case h5types.ClassFloat:
		return h5t.ClassFloat
	case h5types.ClassBoolean, h5types.ClassEnum:
		return h5t.ClassEnum
	case h5types.ClassCompound:
		return h5t.ClassCompound
	case h5types.ClassFixedArray:
		return h5t.ClassArray
	case h5types.ClassVarLenArray:
		return h5t.ClassVLen
	default:
		return h5t.ClassString
	}
}

// hasCompound reports whether H5Tpack accepts the type.
func hasCompound(d *h5types.TypeDescriptor) bool {
	switch d.Class {
	case h5types.ClassCompound:
		return true
	case h5types.ClassFixedArray, h5types.ClassVarLenArray:
		return hasCompound(d.Base)
	}
	return false
}
