package compression

import (
	"fmt"
	"image"
	"strings"

	"docfit/internal/common"
)

// Format is an output encoding the re-encoder can target
type Format string

const (
	FormatJPEG Format = "JPEG"
	FormatPNG  Format = "PNG"
	FormatPDF  Format = "PDF"
)

// ParseFormat normalizes a format name, extension or media type
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "jpg", "jpeg", "image/jpg", "image/jpeg":
		return FormatJPEG, nil
	case "png", "image/png":
		return FormatPNG, nil
	case "pdf", "application/pdf":
		return FormatPDF, nil
	}
	return "", common.NewConversionError(common.ErrUnsupportedFormat, "parse format", "", fmt.Errorf("%q", s))
}

// MIME returns the media type of the format
func (f Format) MIME() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case FormatPNG:
		return "image/png"
	case FormatPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

// Extension returns the file extension including the dot
func (f Format) Extension() string {
	switch f {
	case FormatJPEG:
		return ".jpg"
	case FormatPNG:
		return ".png"
	case FormatPDF:
		return ".pdf"
	}
	return ""
}

// IsRaster reports whether the format is an image encoding
func (f Format) IsRaster() bool {
	return f == FormatJPEG || f == FormatPNG
}

// Envelope is the set of constraints an output must satisfy.
// Zero pixel bounds are absent; MinSizeKB defaults to 0.
type Envelope struct {
	MinSizeKB float64 `json:"min_size_kb"`
	MaxSizeKB float64 `json:"max_size_kb"`
	MinWidth  int     `json:"min_width,omitempty"`
	MaxWidth  int     `json:"max_width,omitempty"`
	MinHeight int     `json:"min_height,omitempty"`
	MaxHeight int     `json:"max_height,omitempty"`
}

// Validate checks that the envelope can be satisfied at all
func (e Envelope) Validate() error {
	var problem string
	switch {
	case e.MaxSizeKB <= 0:
		problem = "max size must be greater than zero"
	case e.MinSizeKB < 0:
		problem = "min size must not be negative"
	case e.MinSizeKB > e.MaxSizeKB:
		problem = fmt.Sprintf("min size %.2f KB exceeds max size %.2f KB", e.MinSizeKB, e.MaxSizeKB)
	case e.MinWidth < 0 || e.MaxWidth < 0 || e.MinHeight < 0 || e.MaxHeight < 0:
		problem = "pixel bounds must not be negative"
	case e.MaxWidth > 0 && e.MinWidth > e.MaxWidth:
		problem = fmt.Sprintf("min width %d exceeds max width %d", e.MinWidth, e.MaxWidth)
	case e.MaxHeight > 0 && e.MinHeight > e.MaxHeight:
		problem = fmt.Sprintf("min height %d exceeds max height %d", e.MinHeight, e.MaxHeight)
	default:
		return nil
	}
	return common.NewConversionError(common.ErrEnvelopeUnsatisfiable, "validate envelope", "", fmt.Errorf("%s", problem))
}

// Accepts reports whether sizeKB lies inside the inclusive size window
func (e Envelope) Accepts(sizeKB float64) bool {
	return sizeKB >= e.MinSizeKB && sizeKB <= e.MaxSizeKB
}

// HasDimensions reports whether any pixel bound is present
func (e Envelope) HasDimensions() bool {
	return e.MinWidth > 0 || e.MaxWidth > 0 || e.MinHeight > 0 || e.MaxHeight > 0
}

// Status classifies an Outcome
type Status string

const (
	StatusAccepted   Status = "accepted"
	StatusBestEffort Status = "best_effort"
	StatusFailed     Status = "failed"
)

// Candidate is one encoding produced during a search
type Candidate struct {
	Data    []byte  `json:"-"`
	Size    int     `json:"size"`
	Width   int     `json:"width,omitempty"`
	Height  int     `json:"height,omitempty"`
	Quality float64 `json:"quality,omitempty"`
	Pass    int     `json:"pass,omitempty"`
}

// SizeKB returns the candidate size in kilobytes
func (c *Candidate) SizeKB() float64 {
	return common.SizeKB(c.Size)
}

// Attempt records one evaluated iteration of a search
type Attempt struct {
	Iteration int     `json:"iteration"`
	Quality   float64 `json:"quality,omitempty"`
	Size      int     `json:"size"`
	Accepted  bool    `json:"accepted"`
	Best      bool    `json:"best"`
}

// Outcome is the result of a re-encode call
type Outcome struct {
	Status    Status     `json:"status"`
	Format    Format     `json:"format"`
	Envelope  Envelope   `json:"envelope"`
	Candidate *Candidate `json:"candidate,omitempty"`
	Attempts  []Attempt  `json:"attempts"`
}

// EnvelopeMet reports whether the output satisfies the envelope
func (o *Outcome) EnvelopeMet() bool {
	return o.Status == StatusAccepted
}

// Summary renders the status line shown next to a result
func (o *Outcome) Summary() string {
	if o.Candidate == nil {
		return fmt.Sprintf("No output under %.0f KB after %d attempts", o.Envelope.MaxSizeKB, len(o.Attempts))
	}

	var line string
	if o.Format.IsRaster() {
		line = fmt.Sprintf("Output size: %.2f KB, Dimensions: %dx%d, Format: %s",
			o.Candidate.SizeKB(), o.Candidate.Width, o.Candidate.Height, o.Format.MIME())
	} else {
		line = fmt.Sprintf("Compressed size: %.2f KB", o.Candidate.SizeKB())
	}
	if o.Status == StatusBestEffort {
		line += fmt.Sprintf(" (below the %.0f KB minimum)", o.Envelope.MinSizeKB)
	}
	return line
}

// RasterAsset is a decoded image ready for re-encoding or assembly
type RasterAsset struct {
	Name   string
	Format Format
	Image  image.Image
	// Source holds the original encoded bytes when they can be embedded unchanged
	Source []byte
}

// Width returns the pixel width of the asset
func (a RasterAsset) Width() int {
	return a.Image.Bounds().Dx()
}

// Height returns the pixel height of the asset
func (a RasterAsset) Height() int {
	return a.Image.Bounds().Dy()
}

// Page is an encoded raster placed on its own page of an assembled document
type Page struct {
	Data   []byte
	Format Format
	Width  int
	Height int
}

// ImageRequest asks for one image to be re-encoded into an envelope
type ImageRequest struct {
	File         FileUpload `json:"file"`
	TargetFormat string     `json:"target_format"`
	ExamID       string     `json:"exam_id,omitempty"`
	DocumentID   string     `json:"document_id,omitempty"`
	Envelope     *Envelope  `json:"envelope,omitempty"`
	Crop         *CropRect  `json:"crop,omitempty"`
}

// DocumentRequest asks for one PDF to be compressed into an envelope
type DocumentRequest struct {
	File       FileUpload `json:"file"`
	ExamID     string     `json:"exam_id,omitempty"`
	DocumentID string     `json:"document_id,omitempty"`
	Envelope   *Envelope  `json:"envelope,omitempty"`
}

// AssembleRequest asks for images to be merged into one PDF
type AssembleRequest struct {
	Files      []FileUpload `json:"files"`
	ExamID     string       `json:"exam_id,omitempty"`
	DocumentID string       `json:"document_id,omitempty"`
	Envelope   *Envelope    `json:"envelope,omitempty"`
	// PageLimits clamps each image before it becomes a page
	PageLimits *Envelope `json:"page_limits,omitempty"`
}

// CropRect selects a region of the source image in pixels
type CropRect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rect converts the crop to an image rectangle
func (c CropRect) Rect() image.Rectangle {
	return image.Rect(c.X, c.Y, c.X+c.Width, c.Y+c.Height)
}

// FileUpload is an input file, given either as bytes or as a path
type FileUpload struct {
	Name     string `json:"name"`
	Path     string `json:"path,omitempty"`
	Data     []byte `json:"data,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
}

// ConversionResponse is returned by every conversion operation
type ConversionResponse struct {
	Success bool        `json:"success"`
	Result  *FileResult `json:"result,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// FileResult describes one produced output
type FileResult struct {
	FileID           string    `json:"file_id"`
	OriginalFilename string    `json:"original_filename"`
	OutputFilename   string    `json:"output_filename"`
	OriginalSize     int64     `json:"original_size"`
	OutputSize       int64     `json:"output_size"`
	CompressionRatio float64   `json:"compression_ratio"`
	Format           Format    `json:"format"`
	MimeType         string    `json:"mime_type"`
	Width            int       `json:"width,omitempty"`
	Height           int       `json:"height,omitempty"`
	Quality          float64   `json:"quality,omitempty"`
	PageCount        int       `json:"page_count,omitempty"`
	Status           Status    `json:"status"`
	EnvelopeMet      bool      `json:"envelope_met"`
	Envelope         Envelope  `json:"envelope"`
	Summary          string    `json:"summary"`
	Checksum         string    `json:"checksum"`
	TempPath         string    `json:"temp_path"`
	Data             []byte    `json:"data,omitempty"`
	Attempts         []Attempt `json:"attempts"`
}

// FileProgressUpdate is emitted while a conversion runs
type FileProgressUpdate struct {
	FileID   string  `json:"file_id"`
	Filename string  `json:"filename"`
	Status   string  `json:"status"`
	Progress float64 `json:"progress"`
	Error    string  `json:"error,omitempty"`
}
