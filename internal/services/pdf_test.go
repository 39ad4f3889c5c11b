package services

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"docfit/internal/common"
	compressionDomain "docfit/internal/domain/compression"

	"github.com/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

func buildPages(t *testing.T, sizes [][2]int) []compressionDomain.Page {
	t.Helper()
	images := NewImageService(testLogger())

	var pages []compressionDomain.Page
	for i, size := range sizes {
		format := compressionDomain.FormatJPEG
		if i%2 == 1 {
			format = compressionDomain.FormatPNG
		}
		data, err := images.Encode(noisyImage(size[0], size[1]), format, 0.92)
		if err != nil {
			t.Fatalf("Failed to encode page %d: %v", i, err)
		}
		pages = append(pages, compressionDomain.Page{Data: data, Format: format, Width: size[0], Height: size[1]})
	}
	return pages
}

func TestNewPDFService(t *testing.T) {
	service := NewPDFService(testLogger())

	if service == nil {
		t.Fatal("Expected PDFService instance, got nil")
	}
}

func TestPDFService_AssemblePageCountAndSizes(t *testing.T) {
	service := NewPDFService(testLogger())
	sizes := [][2]int{{120, 80}, {60, 90}, {200, 200}}

	data, err := service.Assemble(buildPages(t, sizes))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	count, err := service.Inspect(data, "application/pdf")
	if err != nil {
		t.Fatalf("Expected assembled PDF to be readable, got %v", err)
	}
	if count != len(sizes) {
		t.Errorf("Expected %d pages, got %d", len(sizes), count)
	}

	dims, err := api.PageDims(bytes.NewReader(data), service.newConfiguration())
	if err != nil {
		t.Fatalf("Failed to read page sizes: %v", err)
	}
	for i, dim := range dims {
		if math.Abs(dim.Width-float64(sizes[i][0])) > 0.5 || math.Abs(dim.Height-float64(sizes[i][1])) > 0.5 {
			t.Errorf("Page %d: expected %dx%d pt, got %.1fx%.1f", i+1, sizes[i][0], sizes[i][1], dim.Width, dim.Height)
		}
	}
}

func TestPDFService_AssembleEmpty(t *testing.T) {
	service := NewPDFService(testLogger())

	if _, err := service.Assemble(nil); !errors.Is(err, common.ErrInputRejected) {
		t.Errorf("Expected ErrInputRejected, got %v", err)
	}
}

func TestPDFService_RepackProducesValidPDF(t *testing.T) {
	service := NewPDFService(testLogger())

	data, err := service.Assemble(buildPages(t, [][2]int{{100, 100}, {100, 50}}))
	if err != nil {
		t.Fatalf("Failed to assemble fixture: %v", err)
	}

	packed, err := service.Repack(data)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(packed) == 0 {
		t.Fatal("Expected re-packed output")
	}
	if err := api.Validate(bytes.NewReader(packed), service.newConfiguration()); err != nil {
		t.Errorf("Expected re-packed output to validate, got %v", err)
	}

	// Passes chain: the output of one pass is valid input for the next
	again, err := service.Repack(packed)
	if err != nil {
		t.Fatalf("Expected second pass to succeed, got %v", err)
	}
	count, err := service.PageCount(again)
	if err != nil || count != 2 {
		t.Errorf("Expected 2 pages after two passes, got %d, %v", count, err)
	}
}

func TestPDFService_RejectsGarbage(t *testing.T) {
	service := NewPDFService(testLogger())

	if _, err := service.Repack([]byte("%PDF-1.4 truncated")); err == nil {
		t.Error("Expected error re-packing a broken document")
	}
	if _, err := service.Inspect([]byte("plain text"), "application/pdf"); !errors.Is(err, common.ErrDecodeFailed) {
		t.Errorf("Expected ErrDecodeFailed, got %v", err)
	}
	if _, err := service.Inspect([]byte("%PDF-1.4"), "image/png"); !errors.Is(err, common.ErrInputRejected) {
		t.Errorf("Expected ErrInputRejected, got %v", err)
	}
}

func documentWithMetadata(t *testing.T) []byte {
	t.Helper()

	doc := fpdf.New("P", "pt", "A4", "")
	doc.SetTitle("Secret Title", false)
	doc.SetAuthor("Jane Applicant", false)
	doc.SetSubject("Admission form", false)
	doc.SetKeywords("passport scan", false)
	doc.AddPage()

	var out bytes.Buffer
	if err := doc.Output(&out); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}
	return out.Bytes()
}

func documentInfo(t *testing.T, service *PDFService, data []byte) types.Dict {
	t.Helper()

	ctx, err := api.ReadContext(bytes.NewReader(data), service.newConfiguration())
	if err != nil {
		t.Fatalf("Failed to read document: %v", err)
	}
	if ctx.Info == nil {
		return types.Dict{}
	}
	info, err := ctx.DereferenceDict(*ctx.Info)
	if err != nil {
		t.Fatalf("Failed to read document info: %v", err)
	}
	return info
}

func TestPDFService_StripMetadata(t *testing.T) {
	service := NewPDFService(testLogger())
	data := documentWithMetadata(t)

	if _, found := documentInfo(t, service, data).Find("Title"); !found {
		t.Fatal("Expected the fixture to carry a title")
	}

	stripped, err := service.StripMetadata(data)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Later re-pack passes must not bring anything back
	packed, err := service.Repack(stripped)
	if err != nil {
		t.Fatalf("Expected stripped output to re-pack, got %v", err)
	}

	for name, output := range map[string][]byte{"stripped": stripped, "re-packed": packed} {
		info := documentInfo(t, service, output)
		for _, key := range []string{"Title", "Author", "Subject", "Keywords", "Creator"} {
			if value, found := info.Find(key); found {
				t.Errorf("%s: expected %s to be removed, got %v", name, key, value)
			}
		}
	}

	count, err := service.PageCount(packed)
	if err != nil || count != 1 {
		t.Errorf("Expected 1 page after stripping, got %d, %v", count, err)
	}
}

func TestPDFService_StripMetadataRejectsGarbage(t *testing.T) {
	service := NewPDFService(testLogger())

	if _, err := service.StripMetadata([]byte("%PDF-1.4 truncated")); err == nil {
		t.Error("Expected error stripping a broken document")
	}
}
