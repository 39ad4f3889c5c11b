package services

import (
	"bytes"
	"fmt"
	"log/slog"
	"sync"

	"docfit/internal/common"
	compressionDomain "docfit/internal/domain/compression"

	"github.com/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var disableConfigDir sync.Once

// PDFService assembles, re-packs and inspects PDF documents
type PDFService struct {
	logger *slog.Logger
}

// NewPDFService creates a new PDF service
func NewPDFService(logger *slog.Logger) *PDFService {
	// pdfcpu would otherwise create a config directory in the user's home
	disableConfigDir.Do(api.DisableConfigDir)
	return &PDFService{logger: logger}
}

// newConfiguration returns a fresh pdfcpu configuration; pdfcpu mutates it during a call
func (s *PDFService) newConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	conf.WriteObjectStream = true
	conf.WriteXRefStream = true
	return conf
}

// Repack reparses data and writes it back out with duplicate objects removed
// and object streams enabled
func (s *PDFService) Repack(data []byte) ([]byte, error) {
	var out bytes.Buffer
	if err := api.Optimize(bytes.NewReader(data), &out, s.newConfiguration()); err != nil {
		return nil, fmt.Errorf("failed to re-pack document: %w", err)
	}
	return out.Bytes(), nil
}

// documentInfoKeys are the information dictionary entries that can identify the author
var documentInfoKeys = []string{"Title", "Author", "Subject", "Keywords", "Creator", "Producer", "CreationDate", "ModDate"}

// StripMetadata removes the document information entries and the catalog's XMP
// stream. The writer stamps a fresh Producer and fresh dates on the way out.
func (s *PDFService) StripMetadata(data []byte) ([]byte, error) {
	ctx, err := api.ReadAndValidate(bytes.NewReader(data), s.newConfiguration())
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	if ctx.Info != nil {
		info, err := ctx.DereferenceDict(*ctx.Info)
		if err != nil {
			return nil, fmt.Errorf("failed to read document info: %w", err)
		}
		for _, key := range documentInfoKeys {
			info.Delete(key)
		}
	}
	ctx.Title, ctx.Author, ctx.Subject, ctx.Keywords = "", "", "", ""
	ctx.Creator, ctx.Producer = "", ""

	catalog, err := ctx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to read document catalog: %w", err)
	}
	catalog.Delete("Metadata")

	var out bytes.Buffer
	if err := api.WriteContext(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to write document: %w", err)
	}
	return out.Bytes(), nil
}

// PageCount returns the number of pages in data
func (s *PDFService) PageCount(data []byte) (int, error) {
	count, err := api.PageCount(bytes.NewReader(data), s.newConfiguration())
	if err != nil {
		return 0, common.NewConversionError(common.ErrDecodeFailed, "count pages", "", err)
	}
	return count, nil
}

// Inspect checks that data is a readable PDF of an allowed media type and returns its page count
func (s *PDFService) Inspect(data []byte, declared string) (int, error) {
	if _, err := ValidateMedia(data, declared, DocumentMediaTypes); err != nil {
		return 0, err
	}
	return s.PageCount(data)
}

// Assemble places every page on its own PDF page whose size in points equals the page's pixel size
func (s *PDFService) Assemble(pages []compressionDomain.Page) ([]byte, error) {
	if len(pages) == 0 {
		return nil, common.NewConversionError(common.ErrInputRejected, "assemble document", "", common.ErrNoFilesProvided)
	}

	first := fpdf.SizeType{Wd: float64(pages[0].Width), Ht: float64(pages[0].Height)}
	doc := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           first,
	})
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	doc.SetCreator("DocFit", true)

	for i, page := range pages {
		imageType := "JPG"
		if page.Format == compressionDomain.FormatPNG {
			imageType = "PNG"
		}

		width, height := float64(page.Width), float64(page.Height)
		name := fmt.Sprintf("page-%d", i)
		options := fpdf.ImageOptions{ImageType: imageType}

		doc.AddPageFormat("P", fpdf.SizeType{Wd: width, Ht: height})
		doc.RegisterImageOptionsReader(name, options, bytes.NewReader(page.Data))
		doc.ImageOptions(name, 0, 0, width, height, false, options, 0, "")

		if err := doc.Error(); err != nil {
			return nil, fmt.Errorf("failed to place page %d: %w", i+1, err)
		}
	}

	var out bytes.Buffer
	if err := doc.Output(&out); err != nil {
		return nil, fmt.Errorf("failed to write document: %w", err)
	}

	s.logger.Debug("Assembled PDF", "pages", len(pages), "size", out.Len())
	return out.Bytes(), nil
}
