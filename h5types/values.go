package h5types

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var (
	// ErrCapacity reports a string longer than its fixed capacity.
	ErrCapacity = errors.New("h5types: string exceeds capacity")

	// ErrNotASCII reports a byte outside the 7-bit range.
	ErrNotASCII = errors.New("h5types: non-ascii byte")

	// ErrNotUTF8 reports text that is not valid UTF-8.
	ErrNotUTF8 = errors.New("h5types: invalid utf-8")
)

// FixedASCII is an ASCII string stored null-padded in a fixed number of
// bytes. Trailing null bytes are not part of the value.
type FixedASCII struct {
	s string
}

// NewFixedASCII validates b against capacity.
func NewFixedASCII(capacity int, b []byte) (FixedASCII, error) {
	s := strings.TrimRight(string(b), "\x00")
	if len(s) > capacity {
		return FixedASCII{}, fmt.Errorf("%w: %d > %d", ErrCapacity, len(s), capacity)
	}
	if i := nonASCII(s); i >= 0 {
		return FixedASCII{}, fmt.Errorf("%w at offset %d", ErrNotASCII, i)
	}
	return FixedASCII{s: s}, nil
}

// MustFixedASCII is NewFixedASCII that panics on error.
func MustFixedASCII(capacity int, s string) FixedASCII {
	v, err := NewFixedASCII(capacity, []byte(s))
	if err != nil {
		panic(err)
	}
	return v
}

func (v FixedASCII) String() string { return v.s }
func (v FixedASCII) Len() int       { return len(v.s) }
func (v FixedASCII) Bytes() []byte  { return []byte(v.s) }

// FixedUnicode is UTF-8 text stored null-padded in a fixed number of bytes.
// The capacity counts bytes, not characters.
type FixedUnicode struct {
	s string
}

// NewFixedUnicode validates s against capacity.
func NewFixedUnicode(capacity int, s string) (FixedUnicode, error) {
	s = strings.TrimRight(s, "\x00")
	if len(s) > capacity {
		return FixedUnicode{}, fmt.Errorf("%w: %d > %d", ErrCapacity, len(s), capacity)
	}
	if !utf8.ValidString(s) {
		return FixedUnicode{}, ErrNotUTF8
	}
	return FixedUnicode{s: s}, nil
}

// MustFixedUnicode is NewFixedUnicode that panics on error.
func MustFixedUnicode(capacity int, s string) FixedUnicode {
	v, err := NewFixedUnicode(capacity, s)
	if err != nil {
		panic(err)
	}
	return v
}

func (v FixedUnicode) String() string { return v.s }
func (v FixedUnicode) Len() int       { return len(v.s) }

// VarLenASCII is a variable-length ASCII string. It is stored as a C string,
// so it cannot contain null bytes.
type VarLenASCII struct {
	s string
}

// NewVarLenASCII validates b.
func NewVarLenASCII(b []byte) (VarLenASCII, error) {
	s := string(b)
	if i := nonASCII(s); i >= 0 {
		return VarLenASCII{}, fmt.Errorf("%w at offset %d", ErrNotASCII, i)
	}
	if i := strings.IndexByte(s, 0); i >= 0 {
		return VarLenASCII{}, fmt.Errorf("h5types: null byte at offset %d", i)
	}
	return VarLenASCII{s: s}, nil
}

func (v VarLenASCII) String() string { return v.s }
func (v VarLenASCII) Len() int       { return len(v.s) }

// VarLenUnicode is a variable-length UTF-8 string stored as a C string.
type VarLenUnicode struct {
	s string
}

// NewVarLenUnicode validates s.
func NewVarLenUnicode(s string) (VarLenUnicode, error) {
	if !utf8.ValidString(s) {
		return VarLenUnicode{}, ErrNotUTF8
	}
	if i := strings.IndexByte(s, 0); i >= 0 {
		return VarLenUnicode{}, fmt.Errorf("h5types: null byte at offset %d", i)
	}
	return VarLenUnicode{s: s}, nil
}

func (v VarLenUnicode) String() string { return v.s }
func (v VarLenUnicode) Len() int       { return len(v.s) }

// VarLenArray is a variable-length sequence, stored natively as hvl_t.
type VarLenArray[T any] []T

func (VarLenArray[T]) varLenArray() {}

// varLenSequence is implemented by every VarLenArray instantiation.
type varLenSequence interface {
	varLenArray()
}

func nonASCII(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7f {
			return i
		}
	}
	return -1
}
