//go:build !ios && !android && (amd64 || arm64)

package h5go

import "math"

// Dimension is implemented by anything with a rank and per-axis extents.
//
// Shapes are independent types rather than one closed union so that new
// representations can be added without touching existing ones.
type Dimension interface {
	// NDim returns the rank.
	NDim() int
	// Dims returns the extents, one per axis. len(Dims()) == NDim().
	Dims() []int
}

// Size returns the number of elements described by d: the product of its
// extents. A rank-0 shape has size 0, not 1. A product that does not fit
// in an int saturates at math.MaxInt.
func Size(d Dimension) int {
	dims := d.Dims()
	if len(dims) == 0 {
		return 0
	}
	for _, x := range dims {
		if x == 0 {
			return 0
		}
	}
	n := 1
	for _, x := range dims {
		if x > 0 && n > math.MaxInt/x {
			return math.MaxInt
		}
		n *= x
	}
	return n
}

// Scalar is the empty shape: rank 0, no extents.
type Scalar struct{}

func (Scalar) NDim() int   { return 0 }
func (Scalar) Dims() []int { return []int{} }

// Ix is a one-dimensional shape given by a single extent.
type Ix int

func (Ix) NDim() int     { return 1 }
func (i Ix) Dims() []int { return []int{int(i)} }

// Tuple1 is a fixed one-axis shape.
type Tuple1 [1]int

func (Tuple1) NDim() int     { return 1 }
func (t Tuple1) Dims() []int { return []int{t[0]} }

// Tuple2 is a fixed two-axis shape.
type Tuple2 [2]int

func (Tuple2) NDim() int     { return 2 }
func (t Tuple2) Dims() []int { return []int{t[0], t[1]} }

// Shape is a shape of any rank.
type Shape []int

func (s Shape) NDim() int { return len(s) }

// Dims returns a copy of the extents.
func (s Shape) Dims() []int {
	out := make([]int, len(s))
	copy(out, s)
	return out
}

// Equal reports whether two shapes have the same extents.
func (s Shape) Equal(other Dimension) bool {
	dims := other.Dims()
	if len(dims) != len(s) {
		return false
	}
	for i, x := range s {
		if dims[i] != x {
			return false
		}
	}
	return true
}

// ShapeOf snapshots any Dimension into a Shape.
func ShapeOf(d Dimension) Shape {
	return Shape(d.Dims())
}

var (
	_ Dimension = Scalar{}
	_ Dimension = Ix(0)
	_ Dimension = Tuple1{}
	_ Dimension = Tuple2{}
	_ Dimension = Shape(nil)
	_ Dimension = (*Dataspace)(nil)
)
