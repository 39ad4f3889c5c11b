package statistics

import compressionDomain "docfit/internal/domain/compression"

// AppStats represents counters for the current session
type AppStats struct {
	FilesProcessed int   `json:"files_processed"`
	Accepted       int   `json:"accepted"`
	BestEffort     int   `json:"best_effort"`
	Failed         int   `json:"failed"`
	BytesIn        int64 `json:"bytes_in"`
	BytesOut       int64 `json:"bytes_out"`
	BytesSaved     int64 `json:"bytes_saved"`
}

// Service defines the interface for statistics operations
type Service interface {
	Record(status compressionDomain.Status, bytesIn, bytesOut int64)
	GetStats() AppStats
	GetAppStatus(workingDir string) map[string]any
}
