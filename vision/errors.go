package vision

import "errors"

// Sentinel errors returned by pipeline operations. Callers should match with
// errors.Is; returned errors wrap these with context about the failing value.
var (
	// ErrInvalidColorFormat indicates a hex color string that is not six hex
	// digits with an optional leading '#'.
	ErrInvalidColorFormat = errors.New("invalid color format")

	// ErrDimensionMismatch indicates a frame and mask with different
	// dimensions.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrInvalidParameter indicates a numeric parameter outside its legal
	// range, such as alpha outside [0, 1]. Values are never clamped.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInvalidDimensions indicates a width or height that is not positive.
	ErrInvalidDimensions = errors.New("invalid dimensions")

	// ErrBufferSize indicates a pixel buffer whose length does not match
	// width * height * bytes per pixel.
	ErrBufferSize = errors.New("buffer size mismatch")

	// ErrFormatMismatch indicates a frame whose pixel format differs from the
	// format the pipeline or state was built for.
	ErrFormatMismatch = errors.New("pixel format mismatch")
)
