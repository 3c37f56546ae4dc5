//go:build !ios && !android && (amd64 || arm64)

package h5go

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDimension(t *testing.T) {
	tests := []struct {
		name string
		d    Dimension
		ndim int
		dims []int
		size int
	}{
		{"scalar", Scalar{}, 0, []int{}, 0},
		{"scalar_ptr", &Scalar{}, 0, []int{}, 0},
		{"ix", Ix(2), 1, []int{2}, 2},
		{"ix_5", Ix(5), 1, []int{5}, 5},
		{"tuple1", Tuple1{4}, 1, []int{4}, 4},
		{"tuple1_ptr", &Tuple1{5}, 1, []int{5}, 5},
		{"tuple2", Tuple2{1, 2}, 2, []int{1, 2}, 2},
		{"tuple2_3x4", Tuple2{3, 4}, 2, []int{3, 4}, 12},
		{"shape", Shape{2, 3}, 2, []int{2, 3}, 6},
		{"shape_ptr", &Shape{4, 5}, 2, []int{4, 5}, 20},
		{"shape_empty", Shape{}, 0, []int{}, 0},
		{"shape_nil", Shape(nil), 0, []int{}, 0},
		{"shape_zero_axis", Shape{3, 0, 2}, 3, []int{3, 0, 2}, 0},
		{"ix_zero", Ix(0), 1, []int{0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.ndim, tt.d.NDim())
			assert.Equal(t, tt.dims, tt.d.Dims())
			assert.Equal(t, tt.size, Size(tt.d))
			assert.Len(t, tt.d.Dims(), tt.d.NDim(), "rank must match number of extents")
		})
	}
}

func TestSizeIsProductForPositiveRank(t *testing.T) {
	shapes := []Shape{{1}, {7}, {2, 2, 2}, {10, 1, 3, 4}}
	for _, s := range shapes {
		want := 1
		for _, x := range s {
			want *= x
		}
		assert.Equal(t, want, Size(s), "shape %v", s)
	}
}

func TestShapeDimsReturnsCopy(t *testing.T) {
	s := Shape{2, 3}
	dims := s.Dims()
	dims[0] = 100
	assert.Equal(t, Shape{2, 3}, s)
}

func TestShapeEqualAndShapeOf(t *testing.T) {
	assert.True(t, Shape{3, 4}.Equal(Tuple2{3, 4}))
	assert.False(t, Shape{3, 4}.Equal(Tuple2{4, 3}))
	assert.False(t, Shape{3}.Equal(Tuple2{3, 4}))
	assert.True(t, Shape{}.Equal(Scalar{}))
	assert.Equal(t, Shape{5}, ShapeOf(Ix(5)))
}

func TestNativeExtents(t *testing.T) {
	dims, err := nativeExtents(Tuple2{3, 4})
	assert.NoError(t, err)
	assert.Equal(t, []uint64{3, 4}, dims)

	_, err = nativeExtents(Shape{3, -1})
	assert.ErrorIs(t, err, ErrInvalidShape)

	_, err = nativeExtents(make(Shape, 33))
	assert.ErrorIs(t, err, ErrInvalidShape)

	_, err = nativeExtents(badRank{})
	assert.ErrorIs(t, err, ErrInvalidShape)
}

// badRank reports a rank that disagrees with its extents.
type badRank struct{}

func (badRank) NDim() int   { return 2 }
func (badRank) Dims() []int { return []int{1} }

func TestSizeSaturates(t *testing.T) {
	assert.Equal(t, math.MaxInt, Size(Shape{1 << 40, 1 << 40}))
	assert.Equal(t, math.MaxInt, Size(Shape{math.MaxInt, 2}))
	assert.Equal(t, 0, Size(Shape{1 << 40, 1 << 40, 0}), "an empty axis wins over overflow")
	assert.Equal(t, 1<<40, Size(Shape{1 << 20, 1 << 20}))
}
