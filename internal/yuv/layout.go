package yuv

import (
	"fmt"
	"strings"
)

// Layout selects how pixels are located inside a stored row.
type Layout int

const (
	// LayoutStandard reads BGR triples at a 3-byte pitch, with padding
	// only at the end of each row.
	LayoutStandard Layout = iota

	// LayoutLegacy reads BGR triples at a 4-byte pitch, one skipped byte
	// per pixel. It reproduces the output of earlier bmp2yuv releases
	// and misreads every image wider than one pixel.
	LayoutLegacy
)

// String returns the string representation of the layout.
func (l Layout) String() string {
	switch l {
	case LayoutStandard:
		return "standard"
	case LayoutLegacy:
		return "legacy"
	default:
		return "unknown"
	}
}

// PixelStride returns the byte distance between neighbouring pixels of a row.
func (l Layout) PixelStride() int {
	if l == LayoutLegacy {
		return 4
	}
	return 3
}

// RowFootprint returns how many bytes from the start of a row a conversion
// of width pixels touches.
func (l Layout) RowFootprint(width int) int {
	if width <= 0 {
		return 0
	}
	return (width-1)*l.PixelStride() + 3
}

// ParseLayout parses a layout name (case-insensitive).
func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard":
		return LayoutStandard, nil
	case "legacy":
		return LayoutLegacy, nil
	default:
		return LayoutStandard, fmt.Errorf("unknown layout: %q (supported: standard, legacy)", s)
	}
}

// Layouts returns all layouts in display order.
func Layouts() []Layout {
	return []Layout{LayoutStandard, LayoutLegacy}
}
