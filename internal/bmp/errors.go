package bmp

import "errors"

// Error kinds. Callers match them with errors.Is; the wrapping error carries
// the details.
var (
	ErrTruncatedHeader    = errors.New("bmp: truncated header")
	ErrUnsupportedFormat  = errors.New("bmp: unsupported format")
	ErrTruncatedPixelData = errors.New("bmp: truncated pixel data")
	ErrInvalidGeometry    = errors.New("bmp: invalid geometry")
	ErrIO                 = errors.New("bmp: i/o failure")
)

// KindOf names the error kind of err, or "" when err is nil.
// Errors outside the known kinds are reported as "other".
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTruncatedHeader):
		return "truncated_header"
	case errors.Is(err, ErrUnsupportedFormat):
		return "unsupported_format"
	case errors.Is(err, ErrTruncatedPixelData):
		return "truncated_pixel_data"
	case errors.Is(err, ErrInvalidGeometry):
		return "invalid_geometry"
	case errors.Is(err, ErrIO):
		return "io_failure"
	default:
		return "other"
	}
}
