package compression

import (
	"image"

	compressionDomain "docfit/internal/domain/compression"
)

// ClampDimensions clamps width and height into the envelope's pixel bounds.
// Absent bounds leave the dimension as it is. The result does not depend on
// aspect ratio and clamping twice gives the same result as clamping once.
func ClampDimensions(width, height int, envelope compressionDomain.Envelope) (int, int) {
	return clampInt(width, envelope.MinWidth, envelope.MaxWidth),
		clampInt(height, envelope.MinHeight, envelope.MaxHeight)
}

func clampInt(v, lo, hi int) int {
	if hi > 0 && v > hi {
		v = hi
	}
	if lo > 0 && v < lo {
		v = lo
	}
	return v
}

// Clamp resizes img to the clamped dimensions, returning it unchanged when no resize is needed
func (c *Compressor) Clamp(img image.Image, envelope compressionDomain.Envelope) image.Image {
	bounds := img.Bounds()
	width, height := ClampDimensions(bounds.Dx(), bounds.Dy(), envelope)
	if width == bounds.Dx() && height == bounds.Dy() {
		return img
	}

	c.logger.Debug("Clamping image dimensions",
		"from_width", bounds.Dx(),
		"from_height", bounds.Dy(),
		"to_width", width,
		"to_height", height)
	return c.codec.Resize(img, width, height)
}

// CenterCropToAspect returns the largest centered rectangle of bounds with the envelope's max aspect ratio.
// ok is false when the envelope has no max dimensions or the image already fits inside them.
func CenterCropToAspect(bounds image.Rectangle, envelope compressionDomain.Envelope) (rect image.Rectangle, ok bool) {
	if envelope.MaxWidth <= 0 || envelope.MaxHeight <= 0 {
		return bounds, false
	}
	width, height := bounds.Dx(), bounds.Dy()
	if width <= envelope.MaxWidth && height <= envelope.MaxHeight {
		return bounds, false
	}

	// Compare width/height against maxW/maxH without floating point
	cropW, cropH := width, height
	if width*envelope.MaxHeight > height*envelope.MaxWidth {
		cropW = height * envelope.MaxWidth / envelope.MaxHeight
	} else {
		cropH = width * envelope.MaxHeight / envelope.MaxWidth
	}
	if cropW < 1 {
		cropW = 1
	}
	if cropH < 1 {
		cropH = 1
	}

	x := bounds.Min.X + (width-cropW)/2
	y := bounds.Min.Y + (height-cropH)/2
	return image.Rect(x, y, x+cropW, y+cropH), true
}
