//go:build !ios && !android && (amd64 || arm64)

package h5go

import (
	"errors"
	"fmt"

	"github.com/obinnaokechukwu/h5go/h5s"
	"go.uber.org/zap"
)

// ErrInvalidShape indicates a shape that cannot describe a dataspace.
var ErrInvalidShape = errors.New("h5go: invalid shape")

// Dataspace owns a dataspace identifier and describes the extents of an
// array-shaped object.
//
// Extents are never cached: every query goes to the runtime, so changes
// made through other identifiers or by Resize are always visible.
type Dataspace struct {
	handle *Handle
}

// NewDataspace creates a dataspace with the extents of d on the default
// runtime. Every axis gets an unlimited maximum extent.
func NewDataspace(d Dimension) (*Dataspace, error) {
	return NewDataspaceIn(DefaultRuntime(), d)
}

// NewDataspaceIn creates a dataspace with the extents of d on rt.
func NewDataspaceIn(rt Runtime, d Dimension) (*Dataspace, error) {
	dims, err := nativeExtents(d)
	if err != nil {
		return nil, err
	}
	maxDims := make([]uint64, len(dims))
	for i := range maxDims {
		maxDims[i] = Unlimited
	}

	id, err := rt.CreateSimpleDataspace(dims, maxDims)
	if err != nil {
		return nil, callError("create dataspace", err)
	}
	s, err := DataspaceFromID(rt, id)
	if err != nil {
		if rerr := rt.Release(id, KindDataspace); rerr != nil {
			logReleaseFailure(id, KindDataspace, rerr)
		}
		return nil, err
	}
	return s, nil
}

// DataspaceFromID takes ownership of an existing dataspace identifier.
func DataspaceFromID(rt Runtime, id ID) (*Dataspace, error) {
	h, err := WrapKind(rt, id, KindDataspace)
	if err != nil {
		return nil, err
	}
	return &Dataspace{handle: h}, nil
}

// nativeExtents validates d and converts its extents to hsize_t values.
func nativeExtents(d Dimension) ([]uint64, error) {
	extents := d.Dims()
	rank := d.NDim()
	if rank != len(extents) {
		return nil, fmt.Errorf("%w: rank %d with %d extents", ErrInvalidShape, rank, len(extents))
	}
	if rank > h5s.MaxRank {
		return nil, fmt.Errorf("%w: rank %d exceeds %d", ErrInvalidShape, rank, h5s.MaxRank)
	}
	dims := make([]uint64, rank)
	for i, x := range extents {
		if x < 0 {
			return nil, fmt.Errorf("%w: negative extent %d on axis %d", ErrInvalidShape, x, i)
		}
		dims[i] = uint64(x)
	}
	return dims, nil
}

// Handle returns the underlying handle.
func (s *Dataspace) Handle() *Handle {
	return s.handle
}

// ID returns the raw dataspace identifier.
func (s *Dataspace) ID() ID {
	return s.handle.ID()
}

// NDim returns the current rank, or 0 if the runtime cannot report it.
func (s *Dataspace) NDim() int {
	if s == nil {
		return 0
	}
	rank, err := s.handle.rt.DataspaceRank(s.handle.ID())
	if err != nil {
		s.logFallback("rank", err)
		return 0
	}
	return rank
}

// Dims returns the current extents, or an empty slice if the runtime
// cannot report them.
//
// Shape-reporting code must not fail just because a dataspace went bad,
// so errors are logged at debug level and swallowed here. Use Shape for
// strict error reporting.
func (s *Dataspace) Dims() []int {
	if s.NDim() == 0 {
		return []int{}
	}
	dims, _, err := s.handle.rt.DataspaceDims(s.handle.ID())
	if err != nil {
		s.logFallback("extents", err)
		return []int{}
	}
	return toInts(dims)
}

// Shape returns the current extents, reporting runtime failures.
func (s *Dataspace) Shape() (Shape, error) {
	if s == nil || s.handle.IsClosed() {
		return nil, ErrClosed
	}
	dims, _, err := s.handle.rt.DataspaceDims(s.handle.id)
	if err != nil {
		return nil, callError("query dataspace extents", err)
	}
	return Shape(toInts(dims)), nil
}

// MaxDims returns the maximum extents; unbounded axes report Unlimited.
func (s *Dataspace) MaxDims() ([]uint64, error) {
	if s == nil || s.handle.IsClosed() {
		return nil, ErrClosed
	}
	_, maxDims, err := s.handle.rt.DataspaceDims(s.handle.id)
	if err != nil {
		return nil, callError("query dataspace extents", err)
	}
	return maxDims, nil
}

// Resize replaces the extents with those of d. Maximum extents stay unlimited.
func (s *Dataspace) Resize(d Dimension) error {
	if s == nil || s.handle.IsClosed() {
		return ErrClosed
	}
	dims, err := nativeExtents(d)
	if err != nil {
		return err
	}
	maxDims := make([]uint64, len(dims))
	for i := range maxDims {
		maxDims[i] = Unlimited
	}
	if err := s.handle.rt.SetDataspaceExtent(s.handle.id, dims, maxDims); err != nil {
		return callError("set dataspace extent", err)
	}
	return nil
}

// Copy returns a separately owned copy of the dataspace.
func (s *Dataspace) Copy() (*Dataspace, error) {
	if s == nil {
		return nil, ErrClosed
	}
	h, err := s.handle.Clone()
	if err != nil {
		return nil, err
	}
	return &Dataspace{handle: h}, nil
}

// Close releases the dataspace. It is safe to call multiple times.
func (s *Dataspace) Close() error {
	if s == nil {
		return nil
	}
	return s.handle.Close()
}

// String formats the dataspace as its current shape.
func (s *Dataspace) String() string {
	return fmt.Sprintf("Dataspace%v", s.Dims())
}

func (s *Dataspace) logFallback(what string, err error) {
	Logger().Debug("h5go: dataspace query failed, reporting empty shape",
		zap.String("query", what), zap.Int64("id", s.handle.id), zap.Error(err))
}

func toInts(dims []uint64) []int {
	out := make([]int, len(dims))
	for i, x := range dims {
		out[i] = int(x)
	}
	return out
}
