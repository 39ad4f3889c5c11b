package services

import (
	"fmt"
	"slices"
	"strings"

	"docfit/internal/common"

	"github.com/gabriel-vasile/mimetype"
)

// RasterMediaTypes lists the image types accepted as input
var RasterMediaTypes = []string{"image/jpeg", "image/png", "image/gif", "image/bmp", "image/tiff"}

// DocumentMediaTypes lists the document types accepted as input
var DocumentMediaTypes = []string{"application/pdf"}

// NormalizeMediaType lowercases a media type, drops parameters and folds common aliases
func NormalizeMediaType(mediaType string) string {
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = strings.TrimSpace(mediaType[:i])
	}

	switch mediaType {
	case "image/jpg", "image/pjpeg":
		return "image/jpeg"
	case "image/x-png":
		return "image/png"
	case "image/x-ms-bmp":
		return "image/bmp"
	}
	return mediaType
}

// ValidateMedia checks that the declared type is allowed and that the content
// actually is of that type. An empty declared type is taken from the content.
// It returns the normalized media type.
func ValidateMedia(data []byte, declared string, allowed []string) (string, error) {
	if len(data) == 0 {
		return "", common.Rejectf("validate input", "file is empty")
	}

	detected := mimetype.Detect(data)
	declared = NormalizeMediaType(declared)
	if declared == "" {
		declared = NormalizeMediaType(detected.String())
	}

	if !slices.Contains(allowed, declared) {
		return "", common.Rejectf("validate input", "media type %q is not accepted here", declared)
	}

	if !detected.Is(declared) {
		return "", common.NewConversionError(common.ErrDecodeFailed, "validate input", "",
			fmt.Errorf("content is %s, declared %s", detected.String(), declared))
	}
	return declared, nil
}
