//go:build !ios && !android && (amd64 || arm64)

package h5e

import (
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/obinnaokechukwu/h5go/internal/bindings"
)

// H5E_DEFAULT selects the calling thread's default error stack.
const defaultStack int64 = 0

// walkUpward starts at the function that detected the error.
const walkUpward = 0

// errorDesc mirrors H5E_error2_t.
type errorDesc struct {
	clsID    int64
	majNum   int64
	minNum   int64
	line     uint32
	funcName *byte
	fileName *byte
	desc     *byte
}

var (
	h5eWalk2  func(estack int64, direction int32, fn uintptr, data uintptr) int32
	h5eClear2 func(estack int64) int32

	registerOnce sync.Once
	walkCB       uintptr

	// walkMu serializes stack walks; the callback writes walkFirst.
	walkMu    sync.Mutex
	walkFirst string
)

func registerBindings() bool {
	registerOnce.Do(func() {
		if err := bindings.Load(); err != nil {
			return
		}
		lib := bindings.LibHDF5()
		purego.RegisterLibFunc(&h5eWalk2, lib, "H5Ewalk2")
		purego.RegisterLibFunc(&h5eClear2, lib, "H5Eclear2")
		walkCB = purego.NewCallback(walkTrampoline)
	})
	return walkCB != 0
}

// walkTrampoline records the first (innermost) description on the stack.
// Signature: herr_t (*)(unsigned n, const H5E_error2_t *err, void *data)
func walkTrampoline(n uint32, err *errorDesc, _ uintptr) int32 {
	if n == 0 && err != nil {
		walkFirst = goString(err.desc)
	}
	return 0
}

// takeMessage returns the innermost description on the default error stack
// and clears the stack.
func takeMessage() string {
	if !registerBindings() {
		return ""
	}
	walkMu.Lock()
	defer walkMu.Unlock()
	walkFirst = ""
	h5eWalk2(defaultStack, walkUpward, walkCB, 0)
	h5eClear2(defaultStack)
	return walkFirst
}

// Clear discards the calling thread's default error stack.
func Clear() {
	if registerBindings() {
		h5eClear2(defaultStack)
	}
}

// goString copies a NUL-terminated C string.
func goString(p *byte) string {
	if p == nil {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
		n++
		if n > 4096 { // Safety limit
			break
		}
	}
	return string(unsafe.Slice(p, n))
}
