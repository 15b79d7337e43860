// Package yuv converts 24-bit bitmaps to packed YUV 4:4:4 samples.
package yuv

// Sample is one packed YUV 4:4:4 pixel.
type Sample struct {
	Y, U, V uint8
}

// BT.601 full-range coefficients.
const (
	kYR, kYG, kYB = float32(0.299), float32(0.587), float32(0.114)
	kUR, kUG, kUB = float32(-0.14713), float32(-0.28886), float32(0.436)
	kVR, kVG, kVB = float32(0.615), float32(-0.51499), float32(-0.10001)

	chromaBias = float32(0.5)
)

// FromRGB converts one pixel. Channels are normalised to [0,1] in float32,
// chroma is biased by 0.5, and each result is clamped to [0,255] and
// truncated.
//
// Products are converted to float32 explicitly so they are never fused
// into a multiply-add.
func FromRGB(r, g, b uint8) Sample {
	rf := float32(r) / 255
	gf := float32(g) / 255
	bf := float32(b) / 255

	y := float32(kYR*rf) + float32(kYG*gf) + float32(kYB*bf)
	u := float32(kUR*rf) + float32(kUG*gf) + float32(kUB*bf)
	v := float32(kVR*rf) + float32(kVG*gf) + float32(kVB*bf)

	return Sample{
		Y: toByte(float32(y * 255)),
		U: toByte(float32((u + chromaBias) * 255)),
		V: toByte(float32((v + chromaBias) * 255)),
	}
}

// toByte clamps x to [0,255] and truncates toward zero.
func toByte(x float32) uint8 {
	if x <= 0 || x != x {
		return 0
	}
	if x >= 255 {
		return 255
	}
	return uint8(x)
}
