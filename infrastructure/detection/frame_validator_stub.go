//go:build !opencv

package detection

import (
	"context"
	"errors"

	"video-translator/domain/media"
)

// ErrUnavailable is returned when the binary was built without OpenCV
var ErrUnavailable = errors.New("frame validation not available: build with '-tags=opencv' and install OpenCV/GoCV")

// FrameValidator is a stub when GoCV/OpenCV is not available
type FrameValidator struct{}

// FrameValidatorOption is a functional option for configuring FrameValidator
type FrameValidatorOption func(*FrameValidator)

// WithMaxFrames is a no-op in stub mode
func WithMaxFrames(n int) FrameValidatorOption {
	return func(v *FrameValidator) {}
}

// NewFrameValidator creates a stub validator (requires building with -tags=opencv)
func NewFrameValidator(opts ...FrameValidatorOption) *FrameValidator {
	return &FrameValidator{}
}

// Available reports whether the validator was built with OpenCV support
func Available() bool {
	return false
}

// Validate returns ErrUnavailable
func (v *FrameValidator) Validate(ctx context.Context, file *media.VideoFile) error {
	return ErrUnavailable
}

var _ media.VideoValidator = (*FrameValidator)(nil)
