package transport

import (
	catalogDomain "docfit/internal/domain/catalog"
	compressionDomain "docfit/internal/domain/compression"
)

// Transport layer types for Wails API

type FileUpload struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Data     []byte `json:"data"`
	MimeType string `json:"mimeType"`
}

type CropRect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

type ImageRequest struct {
	File         FileUpload                  `json:"file"`
	TargetFormat string                      `json:"targetFormat"`
	ExamID       string                      `json:"examId"`
	DocumentID   string                      `json:"documentId"`
	Envelope     *compressionDomain.Envelope `json:"envelope"`
	Crop         *CropRect                   `json:"crop"`
}

type DocumentRequest struct {
	File       FileUpload                  `json:"file"`
	ExamID     string                      `json:"examId"`
	DocumentID string                      `json:"documentId"`
	Envelope   *compressionDomain.Envelope `json:"envelope"`
}

type MergeRequest struct {
	Files      []FileUpload                `json:"files"`
	ExamID     string                      `json:"examId"`
	DocumentID string                      `json:"documentId"`
	Envelope   *compressionDomain.Envelope `json:"envelope"`
	PageLimits *compressionDomain.Envelope `json:"pageLimits"`
}

type ConversionResponse struct {
	Success bool        `json:"success"`
	Result  *FileResult `json:"result,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

type FileResult struct {
	FileID           string                      `json:"file_id"`
	OriginalFilename string                      `json:"original_filename"`
	OutputFilename   string                      `json:"output_filename"`
	OriginalSize     int64                       `json:"original_size"`
	OutputSize       int64                       `json:"output_size"`
	CompressionRatio float64                     `json:"compression_ratio"`
	MimeType         string                      `json:"mime_type"`
	Width            int                         `json:"width,omitempty"`
	Height           int                         `json:"height,omitempty"`
	Quality          float64                     `json:"quality,omitempty"`
	PageCount        int                         `json:"page_count,omitempty"`
	Status           string                      `json:"status"`
	EnvelopeMet      bool                        `json:"envelope_met"`
	Summary          string                      `json:"summary"`
	Checksum         string                      `json:"checksum"`
	TempPath         string                      `json:"temp_path"`
	SavedPath        *string                     `json:"saved_path,omitempty"`
	Data             []byte                      `json:"data,omitempty"`
	Attempts         []compressionDomain.Attempt `json:"attempts"`
}

type Requirement struct {
	Document     catalogDomain.Document     `json:"document"`
	Workflow     string                     `json:"workflow"`
	Workflows    []string                   `json:"workflows"`
	TargetFormat string                     `json:"target_format"`
	Envelope     compressionDomain.Envelope `json:"envelope"`
	Description  string                     `json:"description"`
}

type AppStats struct {
	FilesProcessed int   `json:"files_processed"`
	Accepted       int   `json:"accepted"`
	BestEffort     int   `json:"best_effort"`
	Failed         int   `json:"failed"`
	BytesIn        int64 `json:"bytes_in"`
	BytesOut       int64 `json:"bytes_out"`
	BytesSaved     int64 `json:"bytes_saved"`
}

// Dialog interface for system dialogs
type DialogHandler interface {
	OpenFileDialog(kind string) ([]string, error)
	OpenDirectoryDialog() (string, error)
	ShowSaveDialog(filename string) (string, error)
	OpenFile(filePath string) error
}
