package bmp

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// FileHeader는 BITMAPFILEHEADER 구조체 (14 bytes)
type FileHeader struct {
	Signature       [2]byte // "BM"
	FileSize        uint32  // 전체 파일 크기
	Reserved1       uint16
	Reserved2       uint16
	PixelDataOffset uint32 // 픽셀 데이터 시작 위치
}

// InfoHeader는 BITMAPINFOHEADER 구조체 (40 bytes)
type InfoHeader struct {
	HeaderSize           uint32
	Width                int32
	Height               int32 // 양수: bottom-up, 음수: top-down
	ColorPlanes          uint16
	BitsPerPixel         uint16
	Compression          uint32
	ImageDataSize        uint32
	HorizontalResolution int32 // pixels per meter
	VerticalResolution   int32
	PaletteColors        uint32
	ImportantColors      uint32
}

// Header holds both headers of a bitmap file.
type Header struct {
	File FileHeader
	Info InfoHeader
}

// ParseHeader decodes the file and info headers from the first HeaderSize
// bytes of data. It does not validate the result; see Validate.
func ParseHeader(data []byte) (*Header, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes, need %d", ErrTruncatedHeader, len(data), HeaderSize)
	}

	le := binary.LittleEndian
	h := &Header{}

	copy(h.File.Signature[:], data[offSignature:offSignature+2])
	h.File.FileSize = le.Uint32(data[offFileSize:])
	h.File.Reserved1 = le.Uint16(data[offReserved1:])
	h.File.Reserved2 = le.Uint16(data[offReserved2:])
	h.File.PixelDataOffset = le.Uint32(data[offPixelDataOffset:])

	h.Info.HeaderSize = le.Uint32(data[offInfoHeaderSize:])
	h.Info.Width = int32(le.Uint32(data[offWidth:]))
	h.Info.Height = int32(le.Uint32(data[offHeight:]))
	h.Info.ColorPlanes = le.Uint16(data[offColorPlanes:])
	h.Info.BitsPerPixel = le.Uint16(data[offBitsPerPixel:])
	h.Info.Compression = le.Uint32(data[offCompression:])
	h.Info.ImageDataSize = le.Uint32(data[offImageDataSize:])
	h.Info.HorizontalResolution = int32(le.Uint32(data[offHResolution:]))
	h.Info.VerticalResolution = int32(le.Uint32(data[offVResolution:]))
	h.Info.PaletteColors = le.Uint32(data[offPaletteColors:])
	h.Info.ImportantColors = le.Uint32(data[offImportantColors:])

	return h, nil
}

// ReadHeader reads exactly HeaderSize bytes from r and decodes them.
func ReadHeader(r io.Reader) (*Header, error) {
	var buf [HeaderSize]byte
	n, err := io.ReadFull(r, buf[:])
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: %d bytes, need %d", ErrTruncatedHeader, n, HeaderSize)
		}
		return nil, fmt.Errorf("%w: reading header: %w", ErrIO, err)
	}
	return ParseHeader(buf[:])
}

// Validate rejects headers outside the supported subset: "BM" signature,
// BITMAPINFOHEADER or later, 24 bits per pixel, no compression, bottom-up
// rows, and bounded positive dimensions.
func (h *Header) Validate() error {
	if string(h.File.Signature[:]) != Signature {
		return fmt.Errorf("%w: signature %q", ErrUnsupportedFormat, h.File.Signature[:])
	}
	if h.Info.HeaderSize < InfoHeaderSize {
		return fmt.Errorf("%w: info header size %d", ErrUnsupportedFormat, h.Info.HeaderSize)
	}
	if h.Info.BitsPerPixel != SupportedBitsPerPixel {
		return fmt.Errorf("%w: %d bits per pixel", ErrUnsupportedFormat, h.Info.BitsPerPixel)
	}
	if h.Info.Compression != CompressionRGB {
		return fmt.Errorf("%w: compression %s", ErrUnsupportedFormat, CompressionName(h.Info.Compression))
	}
	if h.Info.Width <= 0 || h.Info.Height == 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidGeometry, h.Info.Width, h.Info.Height)
	}
	if h.IsTopDown() {
		return fmt.Errorf("%w: top-down row order (height %d)", ErrUnsupportedFormat, h.Info.Height)
	}
	if h.Info.Width > MaxDimension || h.Info.Height > MaxDimension {
		return fmt.Errorf("%w: %dx%d exceeds %d", ErrInvalidGeometry, h.Info.Width, h.Info.Height, MaxDimension)
	}
	if h.File.PixelDataOffset < HeaderSize {
		return fmt.Errorf("%w: pixel data offset %d inside header", ErrInvalidGeometry, h.File.PixelDataOffset)
	}
	return nil
}

// IsTopDown returns true if rows are stored top to bottom.
func (h *Header) IsTopDown() bool {
	return h.Info.Height < 0
}

// Width returns the image width in pixels.
func (h *Header) Width() int {
	return int(h.Info.Width)
}

// Height returns the absolute image height in pixels.
func (h *Header) Height() int {
	if h.Info.Height < 0 {
		return -int(h.Info.Height)
	}
	return int(h.Info.Height)
}

// RowStride returns the stored size of one row in bytes.
func (h *Header) RowStride() int {
	return RowStride(h.Width(), int(h.Info.BitsPerPixel))
}

// PixelDataSize returns the number of bytes the pixel array occupies.
func (h *Header) PixelDataSize() int {
	return h.RowStride() * h.Height()
}

// OutputSize returns the size of the packed YUV 4:4:4 output.
func (h *Header) OutputSize() int {
	return h.Width() * h.Height() * 3
}

// RowStride returns the size of a row of width pixels at bitsPerPixel,
// padded to a 4-byte boundary.
func RowStride(width, bitsPerPixel int) int {
	return ((width*bitsPerPixel + 31) / 32) * 4
}
