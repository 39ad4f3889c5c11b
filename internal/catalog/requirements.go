package catalog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"docfit/internal/common"
	catalogDomain "docfit/internal/domain/catalog"
	compressionDomain "docfit/internal/domain/compression"
)

var dimensionPattern = regexp.MustCompile(`(\d+)\s*[xX×*]\s*(\d+)`)

// AcceptsImage reports whether the document lists any raster format
func AcceptsImage(doc catalogDomain.Document) bool {
	for _, f := range doc.Formats {
		if format, err := compressionDomain.ParseFormat(f); err == nil && format.IsRaster() {
			return true
		}
	}
	return false
}

// AcceptsPDF reports whether the document lists PDF
func AcceptsPDF(doc catalogDomain.Document) bool {
	for _, f := range doc.Formats {
		if format, err := compressionDomain.ParseFormat(f); err == nil && format == compressionDomain.FormatPDF {
			return true
		}
	}
	return false
}

// Workflows returns the workflows that can produce the document, preferred first.
// A document accepting both images and PDF is built by merging images into a PDF.
func Workflows(doc catalogDomain.Document) []string {
	image, pdf := AcceptsImage(doc), AcceptsPDF(doc)
	switch {
	case image && pdf:
		return []string{common.WorkflowImageToPDF, common.WorkflowPDF}
	case image:
		return []string{common.WorkflowImage}
	case pdf:
		return []string{common.WorkflowPDF}
	}
	return nil
}

// TargetFormat returns the first raster format the document lists, JPEG if none
func TargetFormat(doc catalogDomain.Document) compressionDomain.Format {
	for _, f := range doc.Formats {
		if format, err := compressionDomain.ParseFormat(f); err == nil && format.IsRaster() {
			return format
		}
	}
	return compressionDomain.FormatJPEG
}

// PixelBounds holds the bounds read from a dimensions text; zero means absent
type PixelBounds struct {
	MinWidth, MinHeight, MaxWidth, MaxHeight int
}

// ParseDimensions reads pixel bounds from free text such as
// "350x350 to 1000x1000 px" or "480x640 px minimum". Text without a pixel
// unit yields no bounds.
func ParseDimensions(text string) (PixelBounds, bool) {
	lower := strings.ToLower(text)
	if !strings.Contains(lower, "px") && !strings.Contains(lower, "pixel") {
		return PixelBounds{}, false
	}

	matches := dimensionPattern.FindAllStringSubmatch(text, 2)
	pairs := make([][2]int, 0, len(matches))
	for _, m := range matches {
		w, errW := strconv.Atoi(m[1])
		h, errH := strconv.Atoi(m[2])
		if errW != nil || errH != nil || w == 0 || h == 0 {
			continue
		}
		pairs = append(pairs, [2]int{w, h})
	}

	var bounds PixelBounds
	switch {
	case len(pairs) >= 2:
		bounds = PixelBounds{MinWidth: pairs[0][0], MinHeight: pairs[0][1], MaxWidth: pairs[1][0], MaxHeight: pairs[1][1]}
	case len(pairs) == 1 && strings.Contains(lower, "min"):
		bounds = PixelBounds{MinWidth: pairs[0][0], MinHeight: pairs[0][1]}
	case len(pairs) == 1:
		bounds = PixelBounds{MaxWidth: pairs[0][0], MaxHeight: pairs[0][1]}
	default:
		return PixelBounds{}, false
	}
	return bounds, true
}

// EnvelopeFor derives the envelope a document imposes on the output of workflow.
// Bounds the document leaves out come from defaults.
func EnvelopeFor(doc catalogDomain.Document, workflow string, defaults catalogDomain.Defaults) (compressionDomain.Envelope, error) {
	var base compressionDomain.Envelope
	switch workflow {
	case common.WorkflowImage:
		if !AcceptsImage(doc) {
			return base, common.Rejectf("resolve envelope", "document %q does not accept images", doc.ID)
		}
		base = defaults.Image
	case common.WorkflowPDF, common.WorkflowImageToPDF:
		if !AcceptsPDF(doc) {
			return base, common.Rejectf("resolve envelope", "document %q does not accept PDF", doc.ID)
		}
		base = compressionDomain.Envelope{MinSizeKB: defaults.Document.MinSizeKB, MaxSizeKB: defaults.Document.MaxSizeKB}
	default:
		return base, common.Rejectf("resolve envelope", "unknown workflow %q", workflow)
	}

	envelope := base
	if doc.SizeMinKB != nil {
		envelope.MinSizeKB = *doc.SizeMinKB
	}
	switch {
	case doc.SizeMaxKB != nil:
		envelope.MaxSizeKB = *doc.SizeMaxKB
	case doc.SizeLimitMB != nil:
		envelope.MaxSizeKB = *doc.SizeLimitMB * 1024
	}
	// A default minimum must not push past a tighter document maximum
	if doc.SizeMinKB == nil && envelope.MinSizeKB > envelope.MaxSizeKB {
		envelope.MinSizeKB = 0
	}

	if workflow == common.WorkflowImage {
		if bounds, ok := ParseDimensions(doc.Dimensions); ok {
			envelope.MinWidth = pick(bounds.MinWidth, base.MinWidth, bounds.MaxWidth, true)
			envelope.MinHeight = pick(bounds.MinHeight, base.MinHeight, bounds.MaxHeight, true)
			envelope.MaxWidth = pick(bounds.MaxWidth, base.MaxWidth, envelope.MinWidth, false)
			envelope.MaxHeight = pick(bounds.MaxHeight, base.MaxHeight, envelope.MinHeight, false)
		}
	}

	if err := envelope.Validate(); err != nil {
		return envelope, fmt.Errorf("document %q: %w", doc.ID, err)
	}
	return envelope, nil
}

// pick returns the parsed bound, or the default when it does not conflict with other
func pick(parsed, def, other int, isMin bool) int {
	if parsed > 0 {
		return parsed
	}
	if other > 0 && def > 0 {
		if isMin && def > other {
			return 0
		}
		if !isMin && def < other {
			return 0
		}
	}
	return def
}
