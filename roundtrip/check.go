//go:build !ios && !android && (amd64 || arm64)

package roundtrip

import (
	"fmt"
	"math/rand/v2"
	"reflect"

	"github.com/obinnaokechukwu/h5go"
	"github.com/obinnaokechukwu/h5go/h5types"
	"go.uber.org/zap"
)

// CheckOptions configures Check.
type CheckOptions struct {
	// Descriptor overrides the descriptor derived from T.
	Descriptor *h5types.TypeDescriptor
	// Native additionally registers the descriptor with libhdf5 and
	// compares layouts.
	Native bool
	Logger *zap.Logger
}

// CheckOption configures Check.
type CheckOption func(*CheckOptions)

// WithDescriptor checks against desc instead of the descriptor of T.
func WithDescriptor(desc *h5types.TypeDescriptor) CheckOption {
	return func(o *CheckOptions) { o.Descriptor = desc }
}

// WithNative also verifies the layout reported by libhdf5.
func WithNative() CheckOption {
	return func(o *CheckOptions) { o.Native = true }
}

// WithLogger logs progress to l instead of the package logger.
func WithLogger(l *zap.Logger) CheckOption {
	return func(o *CheckOptions) { o.Logger = l }
}

// MismatchError reports a value that did not survive a round trip.
type MismatchError struct {
	Index int
	Want  any
	Got   any
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("roundtrip: value %d: wrote %+v, read %+v", e.Index, e.Want, e.Got)
}

// Check generates n values of T, encodes each in the native layout and
// decodes it into a fresh value, returning the first failure. Before any
// value is generated the descriptor is compared with the Go memory layout
// of T (see h5types.CheckGoLayout); a disagreement is returned as
// *h5types.LayoutError.
func Check[T any](r *rand.Rand, gen Gen[T], n int, opts ...CheckOption) error {
	o := CheckOptions{Logger: h5go.Logger()}
	for _, opt := range opts {
		opt(&o)
	}

	desc := o.Descriptor
	if desc == nil {
		var err error
		if desc, err = h5types.TypeOf[T](); err != nil {
			return err
		}
	}
	if err := h5types.CheckGoLayout(reflect.TypeOf((*T)(nil)).Elem(), desc); err != nil {
		o.Logger.Debug("layout mismatch", zap.Stringer("type", desc), zap.Error(err))
		return err
	}
	if o.Native {
		if err := CheckNative(desc); err != nil {
			return err
		}
	}

	for i := 0; i < n; i++ {
		want := gen.Generate(r)
		buf, err := h5types.Encode(desc, want)
		if err != nil {
			return fmt.Errorf("roundtrip: encode value %d: %w", i, err)
		}
		var got T
		if err := h5types.Decode(desc, buf, &got); err != nil {
			return fmt.Errorf("roundtrip: decode value %d: %w", i, err)
		}
		if !h5types.Equal(want, got) {
			o.Logger.Debug("round trip mismatch",
				zap.Int("index", i),
				zap.Stringer("type", desc),
				zap.Any("want", want),
				zap.Any("got", got))
			return &MismatchError{Index: i, Want: want, Got: got}
		}
	}
	o.Logger.Debug("round trip passed", zap.Stringer("type", desc), zap.Int("values", n))
	return nil
}
