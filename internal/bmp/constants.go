// Package bmp decodes the headers of uncompressed 24-bit Windows bitmap files.
package bmp

// BMP 파일 포맷 상수 정의
// 참조: BITMAPFILEHEADER / BITMAPINFOHEADER (wingdi.h)

const (
	// Signature is the two-byte tag at the start of every bitmap file.
	Signature = "BM"

	// FileHeaderSize is the size of BITMAPFILEHEADER.
	FileHeaderSize = 14

	// InfoHeaderSize is the size of BITMAPINFOHEADER, the smallest info
	// header this package accepts. V4 (108) and V5 (124) headers share
	// its leading fields.
	InfoHeaderSize = 40

	// HeaderSize is the combined size of the file and info headers.
	HeaderSize = FileHeaderSize + InfoHeaderSize

	// MaxDimension bounds width and height before any buffer arithmetic.
	MaxDimension = 32768

	// SupportedBitsPerPixel is the only bit depth the converter reads.
	SupportedBitsPerPixel = 24
)

// 압축 방식 (biCompression)
const (
	CompressionRGB       uint32 = 0 // 비압축
	CompressionRLE8      uint32 = 1
	CompressionRLE4      uint32 = 2
	CompressionBitFields uint32 = 3
	CompressionJPEG      uint32 = 4
	CompressionPNG       uint32 = 5
)

// 필드 오프셋 (바이트)
const (
	offSignature       = 0
	offFileSize        = 2
	offReserved1       = 6
	offReserved2       = 8
	offPixelDataOffset = 10
	offInfoHeaderSize  = 14
	offWidth           = 18
	offHeight          = 22
	offColorPlanes     = 26
	offBitsPerPixel    = 28
	offCompression     = 30
	offImageDataSize   = 34
	offHResolution     = 38
	offVResolution     = 42
	offPaletteColors   = 46
	offImportantColors = 50
)

// CompressionName returns the human-readable name for a compression method.
func CompressionName(c uint32) string {
	names := map[uint32]string{
		CompressionRGB:       "BI_RGB",
		CompressionRLE8:      "BI_RLE8",
		CompressionRLE4:      "BI_RLE4",
		CompressionBitFields: "BI_BITFIELDS",
		CompressionJPEG:      "BI_JPEG",
		CompressionPNG:       "BI_PNG",
	}

	if name, ok := names[c]; ok {
		return name
	}
	return "UNKNOWN"
}
