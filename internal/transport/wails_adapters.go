package transport

import (
	"context"
	"fmt"
	"strings"

	"docfit/internal/common"
	catalogDomain "docfit/internal/domain/catalog"
	compressionDomain "docfit/internal/domain/compression"
	preferencesDomain "docfit/internal/domain/preferences"
	statisticsDomain "docfit/internal/domain/statistics"
)

type WailsApp struct {
	ctx               context.Context
	conversionService compressionDomain.Service
	catalogService    catalogDomain.Service
	preferencesRepo   preferencesDomain.Repository
	statisticsService statisticsDomain.Service
	dialogsHandler    DialogHandler
	workingDir        string
}

func NewWailsApp(
	ctx context.Context,
	conversionService compressionDomain.Service,
	catalogService catalogDomain.Service,
	preferencesRepo preferencesDomain.Repository,
	statisticsService statisticsDomain.Service,
	workingDir string,
) *WailsApp {
	return &WailsApp{
		ctx:               ctx,
		conversionService: conversionService,
		catalogService:    catalogService,
		preferencesRepo:   preferencesRepo,
		statisticsService: statisticsService,
		dialogsHandler:    NewDialogsHandler(ctx),
		workingDir:        workingDir,
	}
}

func (a *WailsApp) ListExams() ([]catalogDomain.Exam, error) {
	return a.catalogService.ListExams()
}

// SelectExam returns the exam and remembers it for the next session start
func (a *WailsApp) SelectExam(examID string) (*catalogDomain.Exam, error) {
	exam, err := a.catalogService.GetExam(examID)
	if err != nil {
		return nil, err
	}
	if err := a.preferencesRepo.UpdatePreferences(map[string]any{"last_exam_id": examID}); err != nil {
		return nil, err
	}
	return exam, nil
}

func (a *WailsApp) GetRequirement(examID, documentID, workflow string) (*Requirement, error) {
	req, err := a.catalogService.Requirement(examID, documentID, workflow)
	if err != nil {
		return nil, err
	}

	return &Requirement{
		Document:     req.Document,
		Workflow:     req.Workflow,
		Workflows:    req.Workflows,
		TargetFormat: string(req.TargetFormat),
		Envelope:     req.Envelope,
		Description:  DescribeEnvelope(req.TargetFormat, req.Workflow, req.Envelope),
	}, nil
}

func (a *WailsApp) ConvertImage(request ImageRequest) ConversionResponse {
	domainRequest := compressionDomain.ImageRequest{
		File:         toDomainUpload(request.File),
		TargetFormat: request.TargetFormat,
		ExamID:       request.ExamID,
		DocumentID:   request.DocumentID,
		Envelope:     request.Envelope,
	}
	if request.Crop != nil {
		domainRequest.Crop = &compressionDomain.CropRect{
			X:      request.Crop.X,
			Y:      request.Crop.Y,
			Width:  request.Crop.Width,
			Height: request.Crop.Height,
		}
	}

	return toResponse(a.conversionService.ConvertImage(a.ctx, domainRequest))
}

func (a *WailsApp) CompressPDF(request DocumentRequest) ConversionResponse {
	domainRequest := compressionDomain.DocumentRequest{
		File:       toDomainUpload(request.File),
		ExamID:     request.ExamID,
		DocumentID: request.DocumentID,
		Envelope:   request.Envelope,
	}

	return toResponse(a.conversionService.CompressPDF(a.ctx, domainRequest))
}

func (a *WailsApp) ImagesToPDF(request MergeRequest) ConversionResponse {
	files := make([]compressionDomain.FileUpload, len(request.Files))
	for i, file := range request.Files {
		files[i] = toDomainUpload(file)
	}

	domainRequest := compressionDomain.AssembleRequest{
		Files:      files,
		ExamID:     request.ExamID,
		DocumentID: request.DocumentID,
		Envelope:   request.Envelope,
		PageLimits: request.PageLimits,
	}

	return toResponse(a.conversionService.ImagesToPDF(a.ctx, domainRequest))
}

func (a *WailsApp) SaveResult(fileID, destination string) error {
	return a.conversionService.SaveResult(fileID, destination)
}

// SaveResultAs asks for a destination and saves the result there.
// It returns the chosen path, empty when the dialog was cancelled.
func (a *WailsApp) SaveResultAs(fileID, filename string) (string, error) {
	destination, err := a.dialogsHandler.ShowSaveDialog(filename)
	if err != nil || destination == "" {
		return "", err
	}
	if err := a.conversionService.SaveResult(fileID, destination); err != nil {
		return "", err
	}
	return destination, nil
}

func (a *WailsApp) GetPreferences() (*preferencesDomain.UserPreferencesData, error) {
	return a.preferencesRepo.GetPreferences()
}

func (a *WailsApp) UpdatePreferences(data map[string]any) error {
	return a.preferencesRepo.UpdatePreferences(data)
}

func (a *WailsApp) OpenFileDialog(kind string) ([]string, error) {
	return a.dialogsHandler.OpenFileDialog(kind)
}

func (a *WailsApp) OpenDirectoryDialog() (string, error) {
	return a.dialogsHandler.OpenDirectoryDialog()
}

func (a *WailsApp) ShowSaveDialog(filename string) (string, error) {
	return a.dialogsHandler.ShowSaveDialog(filename)
}

func (a *WailsApp) OpenFile(filePath string) error {
	return a.dialogsHandler.OpenFile(filePath)
}

func (a *WailsApp) GetAppStatus() map[string]any {
	return a.statisticsService.GetAppStatus(a.workingDir)
}

func (a *WailsApp) GetStats() *AppStats {
	stats := a.statisticsService.GetStats()
	return &AppStats{
		FilesProcessed: stats.FilesProcessed,
		Accepted:       stats.Accepted,
		BestEffort:     stats.BestEffort,
		Failed:         stats.Failed,
		BytesIn:        stats.BytesIn,
		BytesOut:       stats.BytesOut,
		BytesSaved:     stats.BytesSaved,
	}
}

// DescribeEnvelope renders an envelope the way the document list shows it,
// for example "JPEG, 20-300 KB, 350x350 to 1000x1000 px"
func DescribeEnvelope(format compressionDomain.Format, workflow string, envelope compressionDomain.Envelope) string {
	parts := []string{string(format)}
	if workflow != common.WorkflowImage {
		parts[0] = string(compressionDomain.FormatPDF)
	}

	if envelope.MinSizeKB > 0 {
		parts = append(parts, fmt.Sprintf("%g-%g KB", envelope.MinSizeKB, envelope.MaxSizeKB))
	} else {
		parts = append(parts, fmt.Sprintf("up to %g KB", envelope.MaxSizeKB))
	}

	hasMin := envelope.MinWidth > 0 || envelope.MinHeight > 0
	hasMax := envelope.MaxWidth > 0 || envelope.MaxHeight > 0
	switch {
	case hasMin && hasMax:
		parts = append(parts, fmt.Sprintf("%dx%d to %dx%d px", envelope.MinWidth, envelope.MinHeight, envelope.MaxWidth, envelope.MaxHeight))
	case hasMin:
		parts = append(parts, fmt.Sprintf("at least %dx%d px", envelope.MinWidth, envelope.MinHeight))
	case hasMax:
		parts = append(parts, fmt.Sprintf("at most %dx%d px", envelope.MaxWidth, envelope.MaxHeight))
	}

	return strings.Join(parts, ", ")
}

func toDomainUpload(file FileUpload) compressionDomain.FileUpload {
	return compressionDomain.FileUpload{
		Name:     file.Name,
		Path:     file.Path,
		Data:     file.Data,
		MimeType: file.MimeType,
	}
}

func toResponse(response compressionDomain.ConversionResponse) ConversionResponse {
	transportResponse := ConversionResponse{
		Success: response.Success,
		Error:   response.Error,
		Message: response.Message,
	}
	if response.Result == nil {
		return transportResponse
	}

	result := response.Result
	transportResponse.Result = &FileResult{
		FileID:           result.FileID,
		OriginalFilename: result.OriginalFilename,
		OutputFilename:   result.OutputFilename,
		OriginalSize:     result.OriginalSize,
		OutputSize:       result.OutputSize,
		CompressionRatio: result.CompressionRatio,
		MimeType:         result.MimeType,
		Width:            result.Width,
		Height:           result.Height,
		Quality:          result.Quality,
		PageCount:        result.PageCount,
		Status:           string(result.Status),
		EnvelopeMet:      result.EnvelopeMet,
		Summary:          result.Summary,
		Checksum:         result.Checksum,
		TempPath:         result.TempPath,
		Data:             result.Data,
		Attempts:         result.Attempts,
	}
	return transportResponse
}
