package guide

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"golang.org/x/image/draw"
)

const (
	// maxFrameDim bounds camera frames before they go on the wire; phone
	// cameras produce frames far larger than the model needs.
	maxFrameDim = 1024

	frameJPEGQuality = 85
)

// encodeFrameJPEG downscales a camera frame so its longest side is at most
// maxFrameDim and encodes it as JPEG.
func encodeFrameJPEG(img image.Image) ([]byte, error) {
	if img == nil {
		return nil, fmt.Errorf("nil frame")
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("empty frame %dx%d", w, h)
	}

	if w > maxFrameDim || h > maxFrameDim {
		scale := float64(maxFrameDim) / float64(max(w, h))
		dst := image.NewRGBA(image.Rect(0, 0, int(float64(w)*scale), int(float64(h)*scale)))
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: frameJPEGQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
