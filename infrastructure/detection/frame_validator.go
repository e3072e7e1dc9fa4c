//go:build opencv

package detection

import (
	"context"
	"fmt"

	"gocv.io/x/gocv"

	"video-translator/domain/media"
)

// FrameValidator implements media.VideoValidator by decoding frames with GoCV
type FrameValidator struct {
	maxFrames int
}

// FrameValidatorOption is a functional option for configuring FrameValidator
type FrameValidatorOption func(*FrameValidator)

// WithMaxFrames sets how many frames are read looking for a decodable one
func WithMaxFrames(n int) FrameValidatorOption {
	return func(v *FrameValidator) {
		if n > 0 {
			v.maxFrames = n
		}
	}
}

// NewFrameValidator creates a new GoCV-backed validator
func NewFrameValidator(opts ...FrameValidatorOption) *FrameValidator {
	v := &FrameValidator{maxFrames: 30}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

// Available reports whether the validator was built with OpenCV support
func Available() bool {
	return true
}

// Validate opens the file and requires at least one non-empty frame
func (v *FrameValidator) Validate(ctx context.Context, file *media.VideoFile) error {
	capture, err := gocv.VideoCaptureFile(file.Path)
	if err != nil {
		return fmt.Errorf("cannot open %s: %w", file.Path, err)
	}
	defer capture.Close()

	frame := gocv.NewMat()
	defer frame.Close()

	for i := 0; i < v.maxFrames; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !capture.Read(&frame) {
			break
		}
		if !frame.Empty() && frame.Cols() > 0 && frame.Rows() > 0 {
			return nil
		}
	}

	return fmt.Errorf("%w: no decodable frames in %s", media.ErrNoVideoStream, file.Path)
}

var _ media.VideoValidator = (*FrameValidator)(nil)
