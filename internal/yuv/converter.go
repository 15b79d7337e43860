package yuv

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/roboco-io/bmp2yuv/internal/bmp"
)

// TraceFunc receives every pixel of the first display row: its column, its
// byte offset in the pixel buffer and its colour.
type TraceFunc func(x, offset int, r, g, b uint8)

// Options contains converter configuration options.
type Options struct {
	Layout Layout    // Pixel pitch inside a stored row
	Trace  TraceFunc // Optional first-row observer
}

// DefaultOptions returns default converter options.
func DefaultOptions() Options {
	return Options{
		Layout: LayoutStandard,
	}
}

// Converter turns 24-bit bitmaps into packed YUV 4:4:4 streams.
// A Converter holds no per-file state and may be shared between goroutines
// as long as its Trace function is safe for concurrent use.
type Converter struct {
	options Options
}

// NewConverter creates a converter with the given options.
func NewConverter(opts Options) *Converter {
	return &Converter{options: opts}
}

// Convert decodes the bitmap in src and writes its YUV samples to w in
// display order, top row first. It returns the decoded header.
func (c *Converter) Convert(w io.Writer, src io.ReadSeeker) (*bmp.Header, error) {
	h, err := bmp.ReadHeader(src)
	if err != nil {
		return nil, err
	}
	if err := h.Validate(); err != nil {
		return h, err
	}

	pixels, err := readPixels(src, h)
	if err != nil {
		return h, err
	}

	if err := c.convertPixels(w, h, pixels); err != nil {
		return h, err
	}
	return h, nil
}

// readPixels seeks to the pixel array and reads all of it. The buffer is
// only allocated once the source is known to hold every byte the header
// promises, so a forged header cannot force a large allocation.
func readPixels(src io.ReadSeeker, h *bmp.Header) ([]byte, error) {
	offset := int64(h.File.PixelDataOffset)
	size := h.PixelDataSize()

	end, err := src.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("%w: seek to end of input: %w", bmp.ErrIO, err)
	}
	if avail := end - offset; avail < int64(size) {
		return nil, fmt.Errorf("%w: have %d of %d bytes at offset %d",
			bmp.ErrTruncatedPixelData, max(avail, 0), size, offset)
	}

	if _, err := src.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: seek to pixel data: %w", bmp.ErrIO, err)
	}
	pixels := make([]byte, size)
	n, err := io.ReadFull(src, pixels)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: have %d of %d bytes at offset %d",
				bmp.ErrTruncatedPixelData, n, size, h.File.PixelDataOffset)
		}
		return nil, fmt.Errorf("%w: reading pixel data: %w", bmp.ErrIO, err)
	}
	return pixels, nil
}

func (c *Converter) convertPixels(w io.Writer, h *bmp.Header, pixels []byte) error {
	width, height := h.Width(), h.Height()
	stride := h.RowStride()
	pitch := c.options.Layout.PixelStride()

	// 마지막으로 저장된 행(화면상 첫 행)이 버퍼 안에 있어야 함
	if need := (height-1)*stride + c.options.Layout.RowFootprint(width); need > len(pixels) {
		return fmt.Errorf("%w: %s layout needs %d bytes, pixel array has %d",
			bmp.ErrTruncatedPixelData, c.options.Layout, need, len(pixels))
	}

	bw := bufio.NewWriterSize(w, width*3)
	row := make([]byte, width*3)

	// BMP 행은 아래에서 위로 저장됨
	for y := 0; y < height; y++ {
		start := (height - 1 - y) * stride
		for x := 0; x < width; x++ {
			idx := start + x*pitch
			b, g, r := pixels[idx], pixels[idx+1], pixels[idx+2]
			if y == 0 && c.options.Trace != nil {
				c.options.Trace(x, idx, r, g, b)
			}

			s := FromRGB(r, g, b)
			row[x*3] = s.Y
			row[x*3+1] = s.U
			row[x*3+2] = s.V
		}
		if _, err := bw.Write(row); err != nil {
			return fmt.Errorf("%w: writing row %d: %w", bmp.ErrIO, y, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: flushing output: %w", bmp.ErrIO, err)
	}
	return nil
}

// ConvertBytes converts a complete bitmap file held in memory and returns
// the packed YUV bytes.
func ConvertBytes(data []byte, opts Options) ([]byte, error) {
	var out bytes.Buffer
	if _, err := NewConverter(opts).Convert(&out, bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
