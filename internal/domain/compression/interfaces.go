package compression

import (
	"context"
	"image"
)

// RasterCodec encodes and reshapes decoded images
type RasterCodec interface {
	Encode(img image.Image, format Format, quality float64) ([]byte, error)
	Resize(img image.Image, width, height int) image.Image
	// Lossless reports whether the encoder ignores the quality parameter for format
	Lossless(format Format) bool
}

// DocumentPacker performs one reparse and reserialize pass over a PDF
type DocumentPacker interface {
	Repack(data []byte) ([]byte, error)
	// StripMetadata removes the document information entries and XMP metadata
	StripMetadata(data []byte) ([]byte, error)
}

// DocumentAssembler lays out encoded pages into a new PDF
type DocumentAssembler interface {
	Assemble(pages []Page) ([]byte, error)
}

// EventSink receives progress notifications
type EventSink interface {
	Emit(name string, payload any)
}

// Service is the conversion use case exposed to the shells
type Service interface {
	ConvertImage(ctx context.Context, request ImageRequest) ConversionResponse
	CompressPDF(ctx context.Context, request DocumentRequest) ConversionResponse
	ImagesToPDF(ctx context.Context, request AssembleRequest) ConversionResponse
	SaveResult(fileID, destination string) error
}
