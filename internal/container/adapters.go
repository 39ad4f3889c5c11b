package container

import (
	"fmt"
	"log/slog"
	"sync"

	"docfit/internal/catalog"
	"docfit/internal/common"
	catalogDomain "docfit/internal/domain/catalog"
	compressionDomain "docfit/internal/domain/compression"
	preferencesDomain "docfit/internal/domain/preferences"
	statisticsDomain "docfit/internal/domain/statistics"
	"docfit/internal/services"
)

// PreferencesRepositoryAdapter adapts services.PreferencesService to preferencesDomain.Repository
type PreferencesRepositoryAdapter struct {
	service *services.PreferencesService
}

func (a *PreferencesRepositoryAdapter) GetPreferences() (*preferencesDomain.UserPreferencesData, error) {
	prefs, err := a.service.GetPreferences()
	if err != nil {
		return nil, err
	}

	return &preferencesDomain.UserPreferencesData{
		DefaultDownloadFolder: prefs.DefaultDownloadFolder,
		DefaultImageFormat:    prefs.DefaultImageFormat,
		AutoCrop:              prefs.AutoCrop,
		LastExamID:            prefs.LastExamID,
	}, nil
}

func (a *PreferencesRepositoryAdapter) UpdatePreferences(data map[string]any) error {
	return a.service.UpdatePreferences(data)
}

func (a *PreferencesRepositoryAdapter) GetDownloadFolder() (string, error) {
	return a.service.GetDownloadFolder()
}

// CatalogServiceImpl implements the catalog domain service on top of the session database
type CatalogServiceImpl struct {
	repo     catalogDomain.Repository
	defaults catalogDomain.Defaults
}

func (s *CatalogServiceImpl) ListExams() ([]catalogDomain.Exam, error) {
	return s.repo.ListExams()
}

func (s *CatalogServiceImpl) GetExam(id string) (*catalogDomain.Exam, error) {
	return s.repo.GetExam(id)
}

func (s *CatalogServiceImpl) GetDocument(examID, documentID string) (*catalogDomain.Document, error) {
	exam, err := s.repo.GetExam(examID)
	if err != nil {
		return nil, err
	}

	for i := range exam.Documents {
		if exam.Documents[i].ID == documentID {
			return &exam.Documents[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s/%s", common.ErrDocumentNotFound, examID, documentID)
}

// Requirement resolves a document into the envelope and target format for workflow.
// An empty workflow selects the document's preferred one.
func (s *CatalogServiceImpl) Requirement(examID, documentID, workflow string) (*catalogDomain.Requirement, error) {
	doc, err := s.GetDocument(examID, documentID)
	if err != nil {
		return nil, err
	}

	workflows := catalog.Workflows(*doc)
	if workflow == "" {
		if len(workflows) == 0 {
			return nil, common.Rejectf("resolve requirement", "document %q lists no usable format", doc.ID)
		}
		workflow = workflows[0]
	}

	envelope, err := catalog.EnvelopeFor(*doc, workflow, s.defaults)
	if err != nil {
		return nil, err
	}

	return &catalogDomain.Requirement{
		ExamID:       examID,
		Document:     *doc,
		Workflow:     workflow,
		Workflows:    workflows,
		TargetFormat: catalog.TargetFormat(*doc),
		Envelope:     envelope,
	}, nil
}

// StatisticsServiceImpl implements the statistics domain service
type StatisticsServiceImpl struct {
	mu     sync.Mutex
	stats  statisticsDomain.AppStats
	events compressionDomain.EventSink
}

func (s *StatisticsServiceImpl) Record(status compressionDomain.Status, bytesIn, bytesOut int64) {
	s.mu.Lock()
	s.stats.FilesProcessed++
	switch status {
	case compressionDomain.StatusAccepted:
		s.stats.Accepted++
	case compressionDomain.StatusBestEffort:
		s.stats.BestEffort++
	default:
		s.stats.Failed++
	}
	if status != compressionDomain.StatusFailed {
		s.stats.BytesIn += bytesIn
		s.stats.BytesOut += bytesOut
		if bytesIn > bytesOut {
			s.stats.BytesSaved += bytesIn - bytesOut
		}
	}
	snapshot := s.stats
	s.mu.Unlock()

	if s.events != nil {
		s.events.Emit(common.EventStatsUpdate, snapshot)
	}
}

func (s *StatisticsServiceImpl) GetStats() statisticsDomain.AppStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *StatisticsServiceImpl) GetAppStatus(workingDir string) map[string]any {
	return map[string]any{
		"status":            "running",
		"framework":         "Wails",
		"app_name":          "DocFit",
		"pdf_engine":        "pdfcpu",
		"working_directory": workingDir,
	}
}

// LogSink writes events to the logger; used when no UI is attached
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Emit(name string, payload any) {
	s.logger.Debug("Event", "name", name, "payload", payload)
}
