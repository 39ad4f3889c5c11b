package application

import (
	"context"
	"errors"
	"log/slog"

	"docfit/internal/common"
	"docfit/internal/config"
	"docfit/internal/container"
	"docfit/internal/database"
	catalogDomain "docfit/internal/domain/catalog"
	preferencesDomain "docfit/internal/domain/preferences"
	"docfit/internal/transport"

	"gorm.io/gorm"
)

var errNotReady = errors.New("application is still starting or failed to start")

type App struct {
	ctx        context.Context
	configFile string
	container  *container.Container
	wailsApp   *transport.WailsApp
	config     *config.Config
	db         *gorm.DB
}

// NewApp creates the bound application; configFile may be empty
func NewApp(configFile string) *App {
	return &App{configFile: configFile}
}

func (a *App) OnStartup(ctx context.Context) {
	a.ctx = ctx

	// Initialize configuration
	cfg, err := config.Load(a.configFile)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return
	}
	a.config = cfg

	if err := cfg.EnsureWorkspace(); err != nil {
		cfg.Logger.Error("Failed to prepare workspace", "error", err)
		return
	}

	// Initialize database
	db, err := database.Initialize(cfg.Database.DSN)
	if err != nil {
		cfg.Logger.Error("Failed to initialize database", "error", err)
		return
	}
	a.db = db

	// Initialize dependency container
	c, err := container.New(cfg, db, transport.NewEventEmitter(ctx))
	if err != nil {
		cfg.Logger.Error("Failed to initialize services", "error", err)
		return
	}
	a.container = c

	// Initialize transport layer
	a.wailsApp = transport.NewWailsApp(
		ctx,
		c.GetConversionService(),
		c.GetCatalogService(),
		c.GetPreferencesRepository(),
		c.GetStatisticsService(),
		cfg.Workspace.Dir,
	)

	cfg.Logger.Info("Wails app initialized successfully")
	cfg.Logger.Info("Application configuration",
		"workspace", cfg.Workspace.Dir,
		"database", cfg.Database.DSN,
		"catalog", cfg.Catalog.Path,
		"workers", cfg.Assembly.Workers)
}

// OnShutdown removes the outputs produced in this session and closes the database
func (a *App) OnShutdown(ctx context.Context) {
	if a.config == nil {
		return
	}

	if a.container != nil {
		removed, err := a.container.Cleanup()
		if err != nil {
			a.config.Logger.Warn("Failed to remove session outputs", "error", err)
		}
		a.config.Logger.Info("Session outputs removed", "removed", removed)
	}

	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

func (a *App) ListExams() ([]catalogDomain.Exam, error) {
	if a.wailsApp == nil {
		return nil, errNotReady
	}
	return a.wailsApp.ListExams()
}

func (a *App) SelectExam(examID string) (*catalogDomain.Exam, error) {
	if a.wailsApp == nil {
		return nil, errNotReady
	}
	return a.wailsApp.SelectExam(examID)
}

func (a *App) GetRequirement(examID, documentID, workflow string) (*transport.Requirement, error) {
	if a.wailsApp == nil {
		return nil, errNotReady
	}
	return a.wailsApp.GetRequirement(examID, documentID, workflow)
}

func (a *App) ConvertImage(request transport.ImageRequest) transport.ConversionResponse {
	if a.wailsApp == nil {
		return notReadyResponse()
	}
	return a.wailsApp.ConvertImage(request)
}

func (a *App) CompressPDF(request transport.DocumentRequest) transport.ConversionResponse {
	if a.wailsApp == nil {
		return notReadyResponse()
	}
	return a.wailsApp.CompressPDF(request)
}

func (a *App) ImagesToPDF(request transport.MergeRequest) transport.ConversionResponse {
	if a.wailsApp == nil {
		return notReadyResponse()
	}
	return a.wailsApp.ImagesToPDF(request)
}

func (a *App) SaveResult(fileID, destination string) error {
	if a.wailsApp == nil {
		return errNotReady
	}
	return a.wailsApp.SaveResult(fileID, destination)
}

func (a *App) SaveResultAs(fileID, filename string) (string, error) {
	if a.wailsApp == nil {
		return "", errNotReady
	}
	return a.wailsApp.SaveResultAs(fileID, filename)
}

func (a *App) GetPreferences() (*preferencesDomain.UserPreferencesData, error) {
	if a.wailsApp == nil {
		return nil, errNotReady
	}
	return a.wailsApp.GetPreferences()
}

func (a *App) UpdatePreferences(data map[string]interface{}) error {
	if a.wailsApp == nil {
		return errNotReady
	}
	return a.wailsApp.UpdatePreferences(data)
}

func (a *App) OpenFileDialog(kind string) ([]string, error) {
	if a.wailsApp == nil {
		return nil, errNotReady
	}
	return a.wailsApp.OpenFileDialog(kind)
}

func (a *App) OpenDirectoryDialog() (string, error) {
	if a.wailsApp == nil {
		return "", errNotReady
	}
	return a.wailsApp.OpenDirectoryDialog()
}

func (a *App) ShowSaveDialog(filename string) (string, error) {
	if a.wailsApp == nil {
		return "", errNotReady
	}
	return a.wailsApp.ShowSaveDialog(filename)
}

func (a *App) OpenFile(filePath string) error {
	if a.wailsApp == nil {
		return errNotReady
	}
	return a.wailsApp.OpenFile(filePath)
}

func (a *App) GetAppStatus() map[string]interface{} {
	if a.wailsApp == nil {
		return map[string]interface{}{"status": "starting"}
	}
	return a.wailsApp.GetAppStatus()
}

func (a *App) GetStats() *transport.AppStats {
	if a.wailsApp == nil {
		return &transport.AppStats{}
	}
	return a.wailsApp.GetStats()
}

func notReadyResponse() transport.ConversionResponse {
	return transport.ConversionResponse{
		Success: false,
		Error:   errNotReady.Error(),
		Message: common.UserMessage(errNotReady),
	}
}
