package container

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"docfit/internal/common"
	"docfit/internal/compression"
	"docfit/internal/config"
	catalogDomain "docfit/internal/domain/catalog"
	compressionDomain "docfit/internal/domain/compression"
	preferencesDomain "docfit/internal/domain/preferences"
	statisticsDomain "docfit/internal/domain/statistics"
	"docfit/internal/services"
)

// ConversionServiceImpl implements the conversion domain service.
// Outputs are written to the workspace and remembered by file id until saved.
type ConversionServiceImpl struct {
	images     *services.ImageService
	pdfs       *services.PDFService
	compressor *compression.Compressor
	catalog    catalogDomain.Service
	prefsRepo  preferencesDomain.Repository
	stats      statisticsDomain.Service
	events     compressionDomain.EventSink
	config     *config.Config
	logger     *slog.Logger

	mu      sync.RWMutex
	results map[string]string
}

func (s *ConversionServiceImpl) ConvertImage(ctx context.Context, request compressionDomain.ImageRequest) compressionDomain.ConversionResponse {
	fileID := common.GenerateUUID()
	name := displayName(request.File)
	s.progress(fileID, name, "processing", common.DefaultProgressPercent, nil)

	result, err := s.convertImage(ctx, fileID, name, request)
	return s.respond(fileID, name, result, err)
}

func (s *ConversionServiceImpl) convertImage(ctx context.Context, fileID, name string, request compressionDomain.ImageRequest) (*compressionDomain.FileResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := readInput(request.File)
	if err != nil {
		return nil, err
	}

	prefs := s.preferences()
	format, envelope, err := s.imageTarget(request, prefs)
	if err != nil {
		return nil, err
	}

	img, _, err := s.images.Decode(data, request.File.MimeType)
	if err != nil {
		return nil, err
	}

	img, err = s.crop(img, request.Crop, envelope, prefs.AutoCrop)
	if err != nil {
		return nil, err
	}

	outcome, err := s.compressor.Reencode(img, format, envelope)
	return s.finish(fileID, name, "converted", int64(len(data)), 0, outcome, err)
}

func (s *ConversionServiceImpl) CompressPDF(ctx context.Context, request compressionDomain.DocumentRequest) compressionDomain.ConversionResponse {
	fileID := common.GenerateUUID()
	name := displayName(request.File)
	s.progress(fileID, name, "processing", common.DefaultProgressPercent, nil)

	result, err := s.compressPDF(ctx, fileID, name, request)
	return s.respond(fileID, name, result, err)
}

func (s *ConversionServiceImpl) compressPDF(ctx context.Context, fileID, name string, request compressionDomain.DocumentRequest) (*compressionDomain.FileResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := readInput(request.File)
	if err != nil {
		return nil, err
	}

	pages, err := s.pdfs.Inspect(data, request.File.MimeType)
	if err != nil {
		return nil, err
	}

	envelope, err := s.documentEnvelope(request.ExamID, request.DocumentID, common.WorkflowPDF, request.Envelope)
	if err != nil {
		return nil, err
	}

	outcome, err := s.compressor.ReencodeDocument(data, envelope)
	return s.finish(fileID, name, "compressed", int64(len(data)), pages, outcome, err)
}

func (s *ConversionServiceImpl) ImagesToPDF(ctx context.Context, request compressionDomain.AssembleRequest) compressionDomain.ConversionResponse {
	fileID := common.GenerateUUID()
	name := "merged"
	if len(request.Files) > 0 {
		name = displayName(request.Files[0])
	}
	s.progress(fileID, name, "processing", common.DefaultProgressPercent, nil)

	result, err := s.imagesToPDF(ctx, fileID, name, request)
	return s.respond(fileID, name, result, err)
}

func (s *ConversionServiceImpl) imagesToPDF(ctx context.Context, fileID, name string, request compressionDomain.AssembleRequest) (*compressionDomain.FileResult, error) {
	if len(request.Files) == 0 {
		return nil, common.NewConversionError(common.ErrInputRejected, "merge images", "", common.ErrNoFilesProvided)
	}

	envelope, err := s.documentEnvelope(request.ExamID, request.DocumentID, common.WorkflowImageToPDF, request.Envelope)
	if err != nil {
		return nil, err
	}

	assets := make([]compressionDomain.RasterAsset, 0, len(request.Files))
	var originalSize int64
	for i, file := range request.Files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := readInput(file)
		if err != nil {
			return nil, err
		}
		img, mediaType, err := s.images.Decode(data, file.MimeType)
		if err != nil {
			return nil, fmt.Errorf("page %d (%s): %w", i+1, displayName(file), err)
		}
		if request.PageLimits != nil {
			img = s.compressor.Clamp(img, *request.PageLimits)
		}

		// GIF, BMP and TIFF pages are embedded as JPEG
		format, err := compressionDomain.ParseFormat(mediaType)
		if err != nil {
			format = compressionDomain.FormatJPEG
		}

		asset := compressionDomain.RasterAsset{
			Name:   displayName(file),
			Format: format,
			Image:  img,
		}
		if format == compressionDomain.FormatJPEG && s.images.EmbeddableJPEG(data, img) {
			asset.Source = data
		}
		assets = append(assets, asset)
		originalSize += int64(len(data))

		percent := common.DefaultProgressPercent + float64(i+1)/float64(len(request.Files))*(common.CompletedProgressPercent-common.DefaultProgressPercent)/2
		s.progress(fileID, name, "decoding", percent, nil)
	}

	outcome, err := s.compressor.AssembleAndReencode(ctx, assets, envelope)
	return s.finish(fileID, name, "merged", originalSize, len(assets), outcome, err)
}

// SaveResult copies a produced output to destination. An empty destination
// means the preferred download folder; a directory keeps the output's name.
func (s *ConversionServiceImpl) SaveResult(fileID, destination string) error {
	s.mu.RLock()
	path, ok := s.results[fileID]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", common.ErrResultNotFound, fileID)
	}

	if destination == "" {
		folder, err := s.prefsRepo.GetDownloadFolder()
		if err != nil {
			return fmt.Errorf("failed to read download folder: %w", err)
		}
		if folder == "" {
			return fmt.Errorf("no destination given and no download folder set")
		}
		destination = folder
	}

	if info, err := os.Stat(destination); err == nil && info.IsDir() {
		destination = filepath.Join(destination, filepath.Base(path))
	}

	if err := common.CopyFile(path, destination); err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}

	s.logger.Info("Saved result", "file_id", fileID, "destination", destination)
	return nil
}

// Cleanup removes the outputs this service produced and forgets them.
// Other files in the workspace are left alone.
func (s *ConversionServiceImpl) Cleanup() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	var errs []error
	for fileID, path := range s.results {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			errs = append(errs, fmt.Errorf("failed to remove %s: %w", filepath.Base(path), err))
			continue
		}
		removed++
		delete(s.results, fileID)
	}
	return removed, errors.Join(errs...)
}

// finish writes the outcome's candidate to the workspace and describes it
func (s *ConversionServiceImpl) finish(
	fileID, name, suffix string,
	originalSize int64,
	pages int,
	outcome *compressionDomain.Outcome,
	searchErr error,
) (*compressionDomain.FileResult, error) {
	if outcome != nil {
		s.emitAttempts(fileID, outcome)
	}
	if searchErr != nil {
		return nil, searchErr
	}

	candidate := outcome.Candidate
	outputName := common.OutputFilename(name, suffix, outcome.Format.Extension(), time.Now())
	if err := os.MkdirAll(s.config.Workspace.Dir, common.DefaultFilePermissions); err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}
	path := filepath.Join(s.config.Workspace.Dir, outputName)
	if err := os.WriteFile(path, candidate.Data, common.OutputFilePermissions); err != nil {
		return nil, fmt.Errorf("failed to write output: %w", err)
	}

	outputSize := int64(candidate.Size)
	var ratio float64
	if originalSize > 0 {
		ratio = float64(originalSize-outputSize) / float64(originalSize) * 100
	}

	result := &compressionDomain.FileResult{
		FileID:           fileID,
		OriginalFilename: name,
		OutputFilename:   outputName,
		OriginalSize:     originalSize,
		OutputSize:       outputSize,
		CompressionRatio: ratio,
		Format:           outcome.Format,
		MimeType:         outcome.Format.MIME(),
		Width:            candidate.Width,
		Height:           candidate.Height,
		Quality:          candidate.Quality,
		PageCount:        pages,
		Status:           outcome.Status,
		EnvelopeMet:      outcome.EnvelopeMet(),
		Envelope:         outcome.Envelope,
		Summary:          outcome.Summary(),
		Checksum:         common.Checksum(candidate.Data),
		TempPath:         path,
		Data:             candidate.Data,
		Attempts:         outcome.Attempts,
	}

	s.mu.Lock()
	s.results[fileID] = path
	s.mu.Unlock()

	s.stats.Record(outcome.Status, originalSize, outputSize)
	return result, nil
}

func (s *ConversionServiceImpl) respond(fileID, name string, result *compressionDomain.FileResult, err error) compressionDomain.ConversionResponse {
	if err != nil {
		s.logger.Error("Conversion failed", "file", name, "file_id", fileID, "error", err)
		s.stats.Record(compressionDomain.StatusFailed, 0, 0)
		s.progress(fileID, name, "error", 0, err)
		return compressionDomain.ConversionResponse{
			Success: false,
			Error:   err.Error(),
			Message: common.UserMessage(err),
		}
	}

	s.logger.Info("Conversion finished",
		"file", name,
		"status", result.Status,
		"original_size", result.OriginalSize,
		"output_size", result.OutputSize)

	s.progress(fileID, name, string(result.Status), common.CompletedProgressPercent, nil)
	s.events.Emit(common.EventConversionCompleted, result)
	return compressionDomain.ConversionResponse{
		Success: true,
		Result:  result,
		Message: result.Summary,
	}
}

// imageTarget picks the output format and envelope: explicit request values
// first, then the catalog document, then preferences and configured defaults
func (s *ConversionServiceImpl) imageTarget(request compressionDomain.ImageRequest, prefs *preferencesDomain.UserPreferencesData) (compressionDomain.Format, compressionDomain.Envelope, error) {
	format := compressionDomain.FormatJPEG
	if preferred, err := compressionDomain.ParseFormat(prefs.DefaultImageFormat); err == nil && preferred.IsRaster() {
		format = preferred
	}
	envelope := s.config.Defaults.Image.Envelope()

	if request.ExamID != "" || request.DocumentID != "" {
		requirement, err := s.catalog.Requirement(request.ExamID, request.DocumentID, common.WorkflowImage)
		if err != nil {
			return "", envelope, err
		}
		format = requirement.TargetFormat
		envelope = requirement.Envelope
	}

	if request.Envelope != nil {
		envelope = *request.Envelope
	}
	if request.TargetFormat != "" {
		requested, err := compressionDomain.ParseFormat(request.TargetFormat)
		if err != nil {
			return "", envelope, err
		}
		format = requested
	}
	return format, envelope, nil
}

func (s *ConversionServiceImpl) documentEnvelope(examID, documentID, workflow string, override *compressionDomain.Envelope) (compressionDomain.Envelope, error) {
	if override != nil {
		return *override, nil
	}
	if examID != "" || documentID != "" {
		requirement, err := s.catalog.Requirement(examID, documentID, workflow)
		if err != nil {
			return compressionDomain.Envelope{}, err
		}
		return requirement.Envelope, nil
	}

	defaults := s.config.Defaults.Document
	return compressionDomain.Envelope{MinSizeKB: defaults.MinSizeKB, MaxSizeKB: defaults.MaxSizeKB}, nil
}

// crop applies an explicit crop, or with autoCrop a centered crop to the
// envelope's aspect ratio when the image is larger than the max dimensions
func (s *ConversionServiceImpl) crop(img image.Image, rect *compressionDomain.CropRect, envelope compressionDomain.Envelope, autoCrop bool) (image.Image, error) {
	if rect != nil {
		return s.images.Crop(img, rect.Rect())
	}
	if autoCrop {
		bounds := img.Bounds()
		if region, ok := compression.CenterCropToAspect(bounds, envelope); ok {
			return s.images.Crop(img, region.Sub(bounds.Min))
		}
	}
	return img, nil
}

func (s *ConversionServiceImpl) preferences() *preferencesDomain.UserPreferencesData {
	prefs, err := s.prefsRepo.GetPreferences()
	if err != nil || prefs == nil {
		s.logger.Warn("Failed to load preferences, using defaults", "error", err)
		return &preferencesDomain.UserPreferencesData{
			DefaultImageFormat: string(compressionDomain.FormatJPEG),
			AutoCrop:           true,
		}
	}
	return prefs
}

func (s *ConversionServiceImpl) progress(fileID, name, status string, percent float64, err error) {
	update := compressionDomain.FileProgressUpdate{
		FileID:   fileID,
		Filename: name,
		Status:   status,
		Progress: percent,
	}
	if err != nil {
		update.Error = common.UserMessage(err)
	}
	s.events.Emit(common.EventConversionProgress, update)
}

func (s *ConversionServiceImpl) emitAttempts(fileID string, outcome *compressionDomain.Outcome) {
	for _, attempt := range outcome.Attempts {
		s.events.Emit(common.EventConversionAttempt, map[string]any{
			"file_id":   fileID,
			"iteration": attempt.Iteration,
			"quality":   attempt.Quality,
			"size_kb":   common.SizeKB(attempt.Size),
			"accepted":  attempt.Accepted,
			"best":      attempt.Best,
		})
	}
}

// readInput returns the upload's bytes, reading them from disk when only a path is given
func readInput(file compressionDomain.FileUpload) ([]byte, error) {
	if len(file.Data) > 0 {
		return file.Data, nil
	}
	if file.Path == "" {
		return nil, common.NewConversionError(common.ErrInputRejected, "read input", file.Name, common.ErrNoFilesProvided)
	}

	data, err := os.ReadFile(file.Path)
	if err != nil {
		return nil, common.NewConversionError(common.ErrInputRejected, "read input", file.Path, err)
	}
	return data, nil
}

func displayName(file compressionDomain.FileUpload) string {
	switch {
	case file.Name != "":
		return file.Name
	case file.Path != "":
		return filepath.Base(file.Path)
	}
	return "document"
}
