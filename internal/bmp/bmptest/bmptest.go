// Package bmptest builds synthetic bitmap files for tests.
package bmptest

import (
	"encoding/binary"
	"image"

	"github.com/roboco-io/bmp2yuv/internal/bmp"
)

// HeaderSpec describes the header fields a test wants to control.
type HeaderSpec struct {
	Width        int32
	Height       int32
	BitsPerPixel uint16
	Compression  uint32
	Offset       uint32 // defaults to bmp.HeaderSize
	Signature    string // defaults to "BM"
	InfoSize     uint32 // defaults to bmp.InfoHeaderSize
}

// Header encodes spec as the 54-byte file + info header.
func Header(spec HeaderSpec, fileSize uint32) []byte {
	if spec.Offset == 0 {
		spec.Offset = bmp.HeaderSize
	}
	if spec.Signature == "" {
		spec.Signature = bmp.Signature
	}
	if spec.InfoSize == 0 {
		spec.InfoSize = bmp.InfoHeaderSize
	}

	b := make([]byte, bmp.HeaderSize)
	le := binary.LittleEndian
	copy(b[0:2], spec.Signature)
	le.PutUint32(b[2:], fileSize)
	le.PutUint32(b[10:], spec.Offset)
	le.PutUint32(b[14:], spec.InfoSize)
	le.PutUint32(b[18:], uint32(spec.Width))
	le.PutUint32(b[22:], uint32(spec.Height))
	le.PutUint16(b[26:], 1)
	le.PutUint16(b[28:], spec.BitsPerPixel)
	le.PutUint32(b[30:], spec.Compression)
	le.PutUint32(b[38:], 2835)
	le.PutUint32(b[42:], 2835)
	return b
}

// Encode returns a bottom-up 24-bit bitmap of img with pixels packed at
// pixelStride bytes (3 for a standard file, 4 for the legacy layout).
// With pixelStride 4 a row only fits its stride for widths up to 3.
func Encode(img *image.RGBA, pixelStride int) []byte {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	stride := bmp.RowStride(w, bmp.SupportedBitsPerPixel)
	pix := make([]byte, stride*h)

	for y := 0; y < h; y++ {
		row := (h - 1 - y) * stride
		for x := 0; x < w; x++ {
			c := img.RGBAAt(img.Bounds().Min.X+x, img.Bounds().Min.Y+y)
			off := row + x*pixelStride
			if off+3 > len(pix) {
				continue
			}
			pix[off] = c.B
			pix[off+1] = c.G
			pix[off+2] = c.R
		}
	}

	hdr := Header(HeaderSpec{
		Width:        int32(w),
		Height:       int32(h),
		BitsPerPixel: bmp.SupportedBitsPerPixel,
	}, uint32(bmp.HeaderSize+len(pix)))
	return append(hdr, pix...)
}
