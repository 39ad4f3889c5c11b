package services

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"testing"

	"docfit/internal/common"
	compressionDomain "docfit/internal/domain/compression"

	"github.com/disintegration/imaging"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// noisyImage returns an image whose JPEG size depends noticeably on quality
func noisyImage(width, height int) image.Image {
	img := imaging.New(width, height, color.White)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := uint8((x*31 + y*17 + (x*y)%97) % 256)
			img.Set(x, y, color.NRGBA{R: v, G: 255 - v, B: uint8((x + y) % 256), A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode fixture: %v", err)
	}
	return buf.Bytes()
}

func TestImageService_EncodeQualityAffectsSize(t *testing.T) {
	service := NewImageService(testLogger())
	img := noisyImage(200, 150)

	high, err := service.Encode(img, compressionDomain.FormatJPEG, 0.92)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	low, err := service.Encode(img, compressionDomain.FormatJPEG, 0.14)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(low) >= len(high) {
		t.Errorf("Expected lower quality to be smaller, got %d >= %d", len(low), len(high))
	}

	decoded, _, err := service.Decode(high, "image/jpeg")
	if err != nil {
		t.Fatalf("Expected encoded JPEG to decode, got %v", err)
	}
	if decoded.Bounds().Dx() != 200 || decoded.Bounds().Dy() != 150 {
		t.Errorf("Expected 200x150, got %v", decoded.Bounds())
	}
}

func TestImageService_PNGIgnoresQuality(t *testing.T) {
	service := NewImageService(testLogger())
	img := noisyImage(64, 64)

	a, err := service.Encode(img, compressionDomain.FormatPNG, 0.92)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	b, err := service.Encode(img, compressionDomain.FormatPNG, 0.14)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !bytes.Equal(a, b) {
		t.Error("Expected PNG output to be independent of quality")
	}
	if !service.Lossless(compressionDomain.FormatPNG) || service.Lossless(compressionDomain.FormatJPEG) {
		t.Error("Expected only PNG to be lossless")
	}
}

func TestImageService_EncodeUnsupported(t *testing.T) {
	service := NewImageService(testLogger())

	_, err := service.Encode(noisyImage(4, 4), compressionDomain.FormatPDF, 0.9)
	if !errors.Is(err, common.ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestImageService_Decode(t *testing.T) {
	service := NewImageService(testLogger())
	pngData := encodePNG(t, noisyImage(40, 30))

	tests := []struct {
		name      string
		data      []byte
		declared  string
		kind      error
		mediaType string
	}{
		{"declared png", pngData, "image/png", nil, "image/png"},
		{"sniffed when undeclared", pngData, "", nil, "image/png"},
		{"declared type with parameters", pngData, "IMAGE/PNG; charset=binary", nil, "image/png"},
		{"content mismatch", pngData, "image/jpeg", common.ErrDecodeFailed, ""},
		{"not allowed", pngData, "application/pdf", common.ErrInputRejected, ""},
		{"empty", nil, "image/png", common.ErrInputRejected, ""},
		{"garbage", []byte("definitely not an image"), "image/png", common.ErrDecodeFailed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, mediaType, err := service.Decode(tt.data, tt.declared)
			if tt.kind != nil {
				if !errors.Is(err, tt.kind) {
					t.Errorf("Expected %v, got %v", tt.kind, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if mediaType != tt.mediaType {
				t.Errorf("Expected media type %s, got %s", tt.mediaType, mediaType)
			}
			if img.Bounds().Dx() != 40 || img.Bounds().Dy() != 30 {
				t.Errorf("Expected 40x30, got %v", img.Bounds())
			}
		})
	}
}

func TestImageService_ResizeStretches(t *testing.T) {
	service := NewImageService(testLogger())

	out := service.Resize(noisyImage(400, 100), 140, 60)
	if out.Bounds().Dx() != 140 || out.Bounds().Dy() != 60 {
		t.Errorf("Expected 140x60, got %v", out.Bounds())
	}
}

func TestImageService_Crop(t *testing.T) {
	service := NewImageService(testLogger())
	img := noisyImage(100, 80)

	out, err := service.Crop(img, image.Rect(10, 10, 60, 40))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if out.Bounds().Dx() != 50 || out.Bounds().Dy() != 30 {
		t.Errorf("Expected 50x30, got %v", out.Bounds())
	}

	if _, err := service.Crop(img, image.Rect(50, 50, 150, 90)); !errors.Is(err, common.ErrInputRejected) {
		t.Errorf("Expected ErrInputRejected for out of bounds crop, got %v", err)
	}
	if _, err := service.Crop(img, image.Rect(10, 10, 10, 10)); !errors.Is(err, common.ErrInputRejected) {
		t.Errorf("Expected ErrInputRejected for empty crop, got %v", err)
	}
}

// withEXIF inserts a minimal EXIF APP1 segment right after the SOI marker
func withEXIF(data []byte) []byte {
	payload := append([]byte("Exif\x00\x00"), "MM\x00\x2a\x00\x00\x00\x08\x00\x00"...)
	length := len(payload) + 2
	segment := append([]byte{0xFF, 0xE1, byte(length >> 8), byte(length)}, payload...)

	out := append([]byte{}, data[:2]...)
	out = append(out, segment...)
	return append(out, data[2:]...)
}

func TestImageService_EmbeddableJPEG(t *testing.T) {
	service := NewImageService(testLogger())
	img := noisyImage(40, 30)

	jpegData, err := service.Encode(img, compressionDomain.FormatJPEG, 0.8)
	if err != nil {
		t.Fatalf("Failed to encode fixture: %v", err)
	}
	pngData := encodePNG(t, img)

	tests := []struct {
		name     string
		data     []byte
		img      image.Image
		expected bool
	}{
		{"plain jpeg", jpegData, img, true},
		{"exif jpeg", withEXIF(jpegData), img, false},
		{"resized", jpegData, noisyImage(20, 15), false},
		{"png", pngData, img, false},
		{"garbage", []byte("not an image"), img, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := service.EmbeddableJPEG(tt.data, tt.img); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestNormalizeMediaType(t *testing.T) {
	tests := map[string]string{
		"image/jpg":               "image/jpeg",
		"Image/JPEG":              "image/jpeg",
		"image/x-png":             "image/png",
		"application/pdf; qs=0.9": "application/pdf",
		"  image/gif ":            "image/gif",
	}

	for in, expected := range tests {
		if got := NormalizeMediaType(in); got != expected {
			t.Errorf("NormalizeMediaType(%q): expected %q, got %q", in, expected, got)
		}
	}
}
