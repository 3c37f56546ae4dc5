//go:build !ios && !android && (amd64 || arm64)

// Package h5mem implements h5go.Runtime in process.
//
// The object table mimics the parts of libhdf5 the handle layer relies on:
// identifiers are never reused, each object has a kind and a library
// reference count, released identifiers stop being recognized, and
// dataspaces keep their extents in the table rather than in the caller.
// Failures can be injected per operation to exercise error paths.
package h5mem

import (
	"errors"
	"fmt"
	"sync"

	"github.com/obinnaokechukwu/h5go"
	"go.uber.org/zap"
)

// Op names a runtime operation for failure injection.
type Op string

const (
	OpCreate    Op = "create"
	OpRelease   Op = "release"
	OpCopy      Op = "copy"
	OpRank      Op = "rank"
	OpDims      Op = "dims"
	OpSetExtent Op = "set-extent"
)

// maxRank matches H5S_MAX_RANK.
const maxRank = 32

var (
	// ErrBadID is returned for identifiers the table does not know.
	ErrBadID = errors.New("h5mem: not a valid identifier")
	// ErrWrongKind is returned when an operation targets the wrong kind of object.
	ErrWrongKind = errors.New("h5mem: wrong object kind")
	// ErrInjected is the default error for injected failures.
	ErrInjected = errors.New("h5mem: injected failure")
	// ErrBadExtent is returned for inconsistent dataspace extents.
	ErrBadExtent = errors.New("h5mem: invalid extent")
)

type object struct {
	kind    h5go.Kind
	refs    int
	dims    []uint64
	maxDims []uint64
}

type failure struct {
	err    error
	sticky bool
}

// Runtime is an in-process object table.
type Runtime struct {
	mu       sync.Mutex
	objects  map[h5go.ID]*object
	nextID   h5go.ID
	failures map[Op]failure
	releases map[h5go.ID]int
	logger   *zap.Logger
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger logs object creation and release at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runtime) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates an empty runtime.
func New(opts ...Option) *Runtime {
	r := &Runtime{
		objects:  make(map[h5go.ID]*object),
		nextID:   1 << 56, // libhdf5 encodes the type in the high bits
		failures: make(map[Op]failure),
		releases: make(map[h5go.ID]int),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FailNext makes the next call of op fail with err (ErrInjected if nil).
func (r *Runtime) FailNext(op Op, err error) {
	r.inject(op, err, false)
}

// FailAlways makes every call of op fail until ClearFailures.
func (r *Runtime) FailAlways(op Op, err error) {
	r.inject(op, err, true)
}

func (r *Runtime) inject(op Op, err error, sticky bool) {
	if err == nil {
		err = ErrInjected
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[op] = failure{err: err, sticky: sticky}
}

// ClearFailures removes every injected failure.
func (r *Runtime) ClearFailures() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = make(map[Op]failure)
}

// injected must be called with r.mu held.
func (r *Runtime) injected(op Op) error {
	f, ok := r.failures[op]
	if !ok {
		return nil
	}
	if !f.sticky {
		delete(r.failures, op)
	}
	return fmt.Errorf("h5mem %s: %w", op, f.err)
}

// Insert adds an object of the given kind with one reference and returns
// its identifier. Dataspaces should be made with CreateSimpleDataspace.
func (r *Runtime) Insert(kind h5go.Kind) h5go.ID {
	if !kind.Valid() {
		panic("h5mem: Insert requires a valid kind")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insertLocked(&object{kind: kind})
}

func (r *Runtime) insertLocked(o *object) h5go.ID {
	o.refs = 1
	id := r.nextID
	r.nextID++
	r.objects[id] = o
	r.logger.Debug("h5mem: object created", zap.Int64("id", id), zap.Stringer("kind", o.kind))
	return id
}

// IncRef adds a library reference, as H5Iinc_ref does. The object then
// survives one more Release.
func (r *Runtime) IncRef(id h5go.ID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.objects[id]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrBadID, id)
	}
	o.refs++
	return o.refs, nil
}

// RefCount returns the library reference count of id, 0 if it is not live.
func (r *Runtime) RefCount(id h5go.ID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.objects[id]; ok {
		return o.refs
	}
	return 0
}

// Releases returns how many Release calls reached the runtime for id,
// failed ones included.
func (r *Runtime) Releases(id h5go.ID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.releases[id]
}

// Live returns the number of live objects.
func (r *Runtime) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.objects)
}

// ObjectKind implements h5go.Runtime.
func (r *Runtime) ObjectKind(id h5go.ID) h5go.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.objects[id]; ok {
		return o.kind
	}
	return h5go.KindBadID
}

// Release implements h5go.Runtime. It drops one reference and removes the
// object when none remain.
func (r *Runtime) Release(id h5go.ID, kind h5go.Kind) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.releases[id]++

	if err := r.injected(OpRelease); err != nil {
		return err
	}
	o, ok := r.objects[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrBadID, id)
	}
	if o.kind != kind {
		return fmt.Errorf("%w: %d is a %s, not a %s", ErrWrongKind, id, o.kind, kind)
	}
	o.refs--
	if o.refs == 0 {
		delete(r.objects, id)
		r.logger.Debug("h5mem: object released", zap.Int64("id", id), zap.Stringer("kind", kind))
	}
	return nil
}

// Copy implements h5go.Runtime for dataspaces and datatypes.
func (r *Runtime) Copy(id h5go.ID, kind h5go.Kind) (h5go.ID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.injected(OpCopy); err != nil {
		return -1, err
	}
	o, err := r.lookup(id, kind)
	if err != nil {
		return -1, err
	}
	if kind != h5go.KindDataspace && kind != h5go.KindDatatype {
		return -1, fmt.Errorf("%w: %s objects cannot be copied", ErrWrongKind, kind)
	}
	return r.insertLocked(&object{
		kind:    o.kind,
		dims:    append([]uint64(nil), o.dims...),
		maxDims: append([]uint64(nil), o.maxDims...),
	}), nil
}

// CreateSimpleDataspace implements h5go.Runtime.
func (r *Runtime) CreateSimpleDataspace(dims, maxDims []uint64) (h5go.ID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.injected(OpCreate); err != nil {
		return -1, err
	}
	cur, limit, err := checkExtents(dims, maxDims)
	if err != nil {
		return -1, err
	}
	return r.insertLocked(&object{kind: h5go.KindDataspace, dims: cur, maxDims: limit}), nil
}

// DataspaceRank implements h5go.Runtime.
func (r *Runtime) DataspaceRank(id h5go.ID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.injected(OpRank); err != nil {
		return 0, err
	}
	o, err := r.lookup(id, h5go.KindDataspace)
	if err != nil {
		return 0, err
	}
	return len(o.dims), nil
}

// DataspaceDims implements h5go.Runtime.
func (r *Runtime) DataspaceDims(id h5go.ID) (dims, maxDims []uint64, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.injected(OpDims); err != nil {
		return nil, nil, err
	}
	o, err := r.lookup(id, h5go.KindDataspace)
	if err != nil {
		return nil, nil, err
	}
	return append([]uint64{}, o.dims...), append([]uint64{}, o.maxDims...), nil
}

// SetDataspaceExtent implements h5go.Runtime.
func (r *Runtime) SetDataspaceExtent(id h5go.ID, dims, maxDims []uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.injected(OpSetExtent); err != nil {
		return err
	}
	o, err := r.lookup(id, h5go.KindDataspace)
	if err != nil {
		return err
	}
	cur, limit, err := checkExtents(dims, maxDims)
	if err != nil {
		return err
	}
	o.dims, o.maxDims = cur, limit
	return nil
}

// lookup must be called with r.mu held.
func (r *Runtime) lookup(id h5go.ID, kind h5go.Kind) (*object, error) {
	o, ok := r.objects[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrBadID, id)
	}
	if o.kind != kind {
		return nil, fmt.Errorf("%w: %d is a %s, not a %s", ErrWrongKind, id, o.kind, kind)
	}
	return o, nil
}

// checkExtents applies H5Screate_simple's rules: a nil maxDims means the
// maximum equals the current extent, and no axis may exceed its maximum.
func checkExtents(dims, maxDims []uint64) (cur, limit []uint64, err error) {
	if len(dims) > maxRank {
		return nil, nil, fmt.Errorf("%w: rank %d", ErrBadExtent, len(dims))
	}
	if maxDims == nil {
		maxDims = dims
	}
	if len(maxDims) != len(dims) {
		return nil, nil, fmt.Errorf("%w: %d extents, %d maximum extents", ErrBadExtent, len(dims), len(maxDims))
	}
	for i := range dims {
		if dims[i] > maxDims[i] {
			return nil, nil, fmt.Errorf("%w: axis %d extent %d exceeds maximum %d", ErrBadExtent, i, dims[i], maxDims[i])
		}
	}
	return append([]uint64{}, dims...), append([]uint64{}, maxDims...), nil
}

var _ h5go.Runtime = (*Runtime)(nil)
