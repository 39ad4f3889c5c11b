package services

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"math"

	"docfit/internal/common"
	compressionDomain "docfit/internal/domain/compression"

	"github.com/disintegration/imaging"
)

// ImageService decodes, reshapes and encodes raster images
type ImageService struct {
	logger *slog.Logger
}

// NewImageService creates a new image service
func NewImageService(logger *slog.Logger) *ImageService {
	return &ImageService{logger: logger}
}

// Decode validates the declared media type against the content and decodes the pixels.
// EXIF orientation is applied so the pixel grid matches what the user sees.
func (s *ImageService) Decode(data []byte, declared string) (image.Image, string, error) {
	mediaType, err := ValidateMedia(data, declared, RasterMediaTypes)
	if err != nil {
		return nil, "", err
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", common.NewConversionError(common.ErrDecodeFailed, "decode image", "", err)
	}

	s.logger.Debug("Decoded image",
		"media_type", mediaType,
		"width", img.Bounds().Dx(),
		"height", img.Bounds().Dy())
	return img, mediaType, nil
}

// EmbeddableJPEG reports whether data can be placed in a document as it is
// instead of the decoded img. The JPEG must be non-CMYK, carry no EXIF block
// that could have rotated it, and match img's dimensions.
func (s *ImageService) EmbeddableJPEG(data []byte, img image.Image) bool {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || format != "jpeg" || cfg.ColorModel == color.CMYKModel {
		return false
	}
	if cfg.Width != img.Bounds().Dx() || cfg.Height != img.Bounds().Dy() {
		return false
	}
	return !hasEXIF(data)
}

// hasEXIF walks the JPEG marker segments up to the first scan looking for an EXIF APP1 block
func hasEXIF(data []byte) bool {
	i := 2
	for i+4 <= len(data) && data[i] == 0xFF {
		marker := data[i+1]
		if marker == 0xDA || marker == 0xD9 {
			return false
		}
		length := int(data[i+2])<<8 | int(data[i+3])
		if marker == 0xE1 && bytes.HasPrefix(data[i+4:], []byte("Exif\x00")) {
			return true
		}
		i += 2 + length
	}
	return false
}

// Encode encodes img in format. Quality is in [0, 1] and is ignored for PNG.
func (s *ImageService) Encode(img image.Image, format compressionDomain.Format, quality float64) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case compressionDomain.FormatJPEG:
		q := int(math.Round(quality * 100))
		if q < 1 {
			q = 1
		}
		if q > 100 {
			q = 100
		}
		if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(q)); err != nil {
			return nil, err
		}
	case compressionDomain.FormatPNG:
		// 8 bits per channel keeps the output embeddable in PDFs
		if err := imaging.Encode(&buf, imaging.Clone(img), imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
			return nil, err
		}
	default:
		return nil, common.NewConversionError(common.ErrUnsupportedFormat, "encode image", "", fmt.Errorf("%q", format))
	}

	return buf.Bytes(), nil
}

// Resize stretches img to exactly width x height
func (s *ImageService) Resize(img image.Image, width, height int) image.Image {
	return imaging.Resize(img, width, height, imaging.Lanczos)
}

// Lossless reports whether format ignores the quality parameter
func (s *ImageService) Lossless(format compressionDomain.Format) bool {
	return format == compressionDomain.FormatPNG
}

// Crop cuts rect out of img. The rectangle must lie inside the image.
func (s *ImageService) Crop(img image.Image, rect image.Rectangle) (image.Image, error) {
	bounds := img.Bounds()
	rect = rect.Add(bounds.Min)
	if rect.Empty() || !rect.In(bounds) {
		return nil, common.Rejectf("crop image", "crop %v is outside the %dx%d image", rect, bounds.Dx(), bounds.Dy())
	}
	return imaging.Crop(img, rect), nil
}
