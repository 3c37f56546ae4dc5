//go:build !ios && !android && (amd64 || arm64)

package h5i

import "github.com/obinnaokechukwu/h5go/internal/bindings"

// Kind classifies the object behind an identifier. Unlike H5I_type_t its
// values do not depend on the library release.
type Kind uint8

const (
	KindBadID Kind = iota
	KindFile
	KindGroup
	KindDatatype
	KindDataspace
	KindDataset
	KindMap
	KindAttribute
	KindVFL
	KindVOL
	KindGenPropClass
	KindGenPropList
	KindErrorClass
	KindErrorMessage
	KindErrorStack
	KindSpaceSelIter
	KindEventSet
)

var kindNames = [...]string{
	KindBadID:        "bad-id",
	KindFile:         "file",
	KindGroup:        "group",
	KindDatatype:     "datatype",
	KindDataspace:    "dataspace",
	KindDataset:      "dataset",
	KindMap:          "map",
	KindAttribute:    "attribute",
	KindVFL:          "vfl",
	KindVOL:          "vol",
	KindGenPropClass: "property-class",
	KindGenPropList:  "property-list",
	KindErrorClass:   "error-class",
	KindErrorMessage: "error-message",
	KindErrorStack:   "error-stack",
	KindSpaceSelIter: "selection-iterator",
	KindEventSet:     "event-set",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Valid reports whether k names a real object kind.
func (k Kind) Valid() bool {
	return k > KindBadID && int(k) < len(kindNames)
}

// H5I_type_t in the 1.10 series. H5I_REFERENCE (7) has no Kind.
var native110 = map[int32]Kind{
	1:  KindFile,
	2:  KindGroup,
	3:  KindDatatype,
	4:  KindDataspace,
	5:  KindDataset,
	6:  KindAttribute,
	8:  KindVFL,
	9:  KindGenPropClass,
	10: KindGenPropList,
	11: KindErrorClass,
	12: KindErrorMessage,
	13: KindErrorStack,
}

// H5I_type_t from 1.12 on, which inserted H5I_MAP and H5I_VOL.
var native112 = map[int32]Kind{
	1:  KindFile,
	2:  KindGroup,
	3:  KindDatatype,
	4:  KindDataspace,
	5:  KindDataset,
	6:  KindMap,
	7:  KindAttribute,
	8:  KindVFL,
	9:  KindVOL,
	10: KindGenPropClass,
	11: KindGenPropList,
	12: KindErrorClass,
	13: KindErrorMessage,
	14: KindErrorStack,
	15: KindSpaceSelIter,
	16: KindEventSet,
}

func nativeTable(v bindings.Version) map[int32]Kind {
	if v.AtLeast(1, 12) {
		return native112
	}
	return native110
}

// FromNative maps an H5I_type_t value reported by library release v.
func FromNative(t int32, v bindings.Version) Kind {
	if k, ok := nativeTable(v)[t]; ok {
		return k
	}
	return KindBadID
}

// ToNative maps k to the H5I_type_t value used by library release v.
// It returns false when that release has no such kind.
func ToNative(k Kind, v bindings.Version) (int32, bool) {
	for t, kind := range nativeTable(v) {
		if kind == k {
			return t, true
		}
	}
	return 0, false
}
