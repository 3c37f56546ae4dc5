//go:build !ios && !android && (amd64 || arm64)

package h5go

import (
	"errors"
	"fmt"
	"strings"

	"github.com/obinnaokechukwu/h5go/internal/bindings"
)

// Common errors
var (
	// ErrInvalidResource indicates an identifier that is not a live,
	// recognizable object, is of the wrong kind, or is already owned.
	ErrInvalidResource = errors.New("h5go: invalid resource")

	// ErrRuntimeCall indicates a call into the HDF5 runtime failed.
	ErrRuntimeCall = errors.New("h5go: runtime call failed")

	// ErrClosed indicates the handle has been closed or released.
	ErrClosed = errors.New("h5go: handle is closed")

	// ErrNotLoaded indicates the HDF5 library is not loaded.
	ErrNotLoaded = bindings.ErrNotLoaded
)

// InvalidResourceError is returned when an identifier cannot be wrapped.
type InvalidResourceError struct {
	ID     ID
	Kind   Kind // Kind the runtime reported
	Want   Kind // Kind the caller required, KindBadID for any
	Reason string
}

func (e *InvalidResourceError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "h5go: invalid resource id %d", e.ID)
	if e.Want != KindBadID {
		fmt.Fprintf(&b, ": want %s, runtime reports %s", e.Want, e.Kind)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	return b.String()
}

// Is makes errors.Is(err, ErrInvalidResource) hold.
func (e *InvalidResourceError) Is(target error) bool {
	return target == ErrInvalidResource
}

// RuntimeCallError is returned when a boundary call reports failure.
type RuntimeCallError struct {
	Op    string
	Cause error
}

func (e *RuntimeCallError) Error() string {
	if e.Cause == nil {
		return "h5go: " + e.Op + " failed"
	}
	return "h5go: " + e.Op + ": " + e.Cause.Error()
}

func (e *RuntimeCallError) Unwrap() error {
	return e.Cause
}

// Is makes errors.Is(err, ErrRuntimeCall) hold.
func (e *RuntimeCallError) Is(target error) bool {
	return target == ErrRuntimeCall
}

func callError(op string, cause error) error {
	return &RuntimeCallError{Op: op, Cause: cause}
}

// IsInvalidResource returns true if err reports an unusable identifier.
func IsInvalidResource(err error) bool {
	return errors.Is(err, ErrInvalidResource)
}
