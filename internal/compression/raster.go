package compression

import (
	"fmt"
	"image"

	"docfit/internal/common"
	compressionDomain "docfit/internal/domain/compression"
)

// Quality is searched in hundredths so the step never accumulates float error
const (
	initialQuality      = 92
	qualityStep         = 6
	minQuality          = 10
	maxRasterIterations = 15
)

// Reencode searches for an encoding of img in format whose size lies inside the envelope.
// Dimensions are clamped once before the search; quality then steps down from 0.92.
// The first candidate inside the size window wins. Otherwise the largest candidate
// under the max is returned as a best-effort outcome.
func (c *Compressor) Reencode(img image.Image, format compressionDomain.Format, envelope compressionDomain.Envelope) (*compressionDomain.Outcome, error) {
	if !format.IsRaster() {
		return nil, common.NewConversionError(common.ErrUnsupportedFormat, "reencode image", "",
			fmt.Errorf("cannot encode images as %q", format))
	}
	if err := envelope.Validate(); err != nil {
		return nil, err
	}
	if img == nil || img.Bounds().Empty() {
		return nil, common.Rejectf("reencode image", "image has no pixels")
	}

	img = c.Clamp(img, envelope)
	width, height := img.Bounds().Dx(), img.Bounds().Dy()
	lossless := c.codec.Lossless(format)

	s := newSearch(envelope)
	for i, q := 1, initialQuality; i <= maxRasterIterations && q >= minQuality; i, q = i+1, q-qualityStep {
		quality := float64(q) / 100

		data, err := c.codec.Encode(img, format, quality)
		if err != nil {
			return nil, common.NewConversionError(common.ErrDecodeFailed, "encode image", "", err)
		}

		candidate := &compressionDomain.Candidate{
			Data:    data,
			Size:    len(data),
			Width:   width,
			Height:  height,
			Quality: quality,
		}
		accepted := s.offer(i, candidate)

		c.logger.Debug("Raster attempt",
			"iteration", i,
			"quality", quality,
			"size_kb", candidate.SizeKB(),
			"accepted", accepted)

		if accepted {
			break
		}
		// Every further iteration would produce the same bytes
		if lossless {
			break
		}
	}

	return s.outcome(format, "reencode image")
}

func errNothingUnderMax(envelope compressionDomain.Envelope, attempts int) error {
	return fmt.Errorf("no candidate under %.2f KB after %d attempts", envelope.MaxSizeKB, attempts)
}
