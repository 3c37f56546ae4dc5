//go:build !ios && !android && (amd64 || arm64)

// Package h5e provides the HDF5 error type and bindings to the library's
// error stack.
package h5e

import (
	"errors"
	"fmt"
)

// Error represents a failed HDF5 call.
type Error struct {
	Code    int64  // Raw return value (negative herr_t or hid_t)
	Message string // Innermost error stack description, if any
	Op      string // Function that failed
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("hdf5 %s: call failed (code %d)", e.Op, e.Code)
	}
	return fmt.Sprintf("hdf5 %s: %s (code %d)", e.Op, e.Message, e.Code)
}

// NewError creates an HDF5 error from a return value.
// Returns nil if code >= 0. The library error stack is consumed.
func NewError(code int64, op string) error {
	if code >= 0 {
		return nil
	}
	return &Error{
		Code:    code,
		Message: takeMessage(),
		Op:      op,
	}
}

// Check converts an herr_t status into an error.
func Check(status int32, op string) error {
	return NewError(int64(status), op)
}

// CheckID converts a returned hid_t into an error when it is negative.
func CheckID(id int64, op string) error {
	return NewError(id, op)
}

// Op returns the failing function of an HDF5 error, or "" if err is not one.
func Op(err error) string {
	var h5Err *Error
	if errors.As(err, &h5Err) {
		return h5Err.Op
	}
	return ""
}
