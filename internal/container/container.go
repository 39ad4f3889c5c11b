package container

import (
	"fmt"
	"log/slog"

	"docfit/internal/catalog"
	"docfit/internal/compression"
	"docfit/internal/config"
	catalogDomain "docfit/internal/domain/catalog"
	compressionDomain "docfit/internal/domain/compression"
	preferencesDomain "docfit/internal/domain/preferences"
	statisticsDomain "docfit/internal/domain/statistics"
	"docfit/internal/services"

	"gorm.io/gorm"
)

// Container holds all dependencies for the application
type Container struct {
	config *config.Config
	db     *gorm.DB
	logger *slog.Logger
	events compressionDomain.EventSink

	// Infrastructure
	imageService *services.ImageService
	pdfService   *services.PDFService
	compressor   *compression.Compressor

	// Services
	catalogService    catalogDomain.Service
	preferencesRepo   preferencesDomain.Repository
	statisticsService statisticsDomain.Service
	conversionService *ConversionServiceImpl
}

// New creates a new dependency injection container and seeds the session catalog.
// A nil events sink logs events instead of emitting them.
func New(cfg *config.Config, db *gorm.DB, events compressionDomain.EventSink) (*Container, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if events == nil {
		events = NewLogSink(logger)
	}

	c := &Container{
		config: cfg,
		db:     db,
		logger: logger,
		events: events,
	}

	if err := c.initServices(); err != nil {
		return nil, err
	}
	return c, nil
}

// initServices initializes all services with their dependencies
func (c *Container) initServices() error {
	c.imageService = services.NewImageService(c.logger)
	c.pdfService = services.NewPDFService(c.logger)
	c.compressor = compression.NewCompressor(c.imageService, c.pdfService, c.pdfService, c.config.Assembly.Workers, c.logger)

	catalogStore := services.NewCatalogService(c.db)
	if err := c.seedCatalog(catalogStore); err != nil {
		return err
	}

	c.catalogService = &CatalogServiceImpl{
		repo:     catalogStore,
		defaults: c.config.CatalogDefaults(),
	}
	c.preferencesRepo = &PreferencesRepositoryAdapter{service: services.NewPreferencesService(c.db)}
	c.statisticsService = &StatisticsServiceImpl{events: c.events}

	c.conversionService = &ConversionServiceImpl{
		images:     c.imageService,
		pdfs:       c.pdfService,
		compressor: c.compressor,
		catalog:    c.catalogService,
		prefsRepo:  c.preferencesRepo,
		stats:      c.statisticsService,
		events:     c.events,
		config:     c.config,
		logger:     c.logger,
		results:    make(map[string]string),
	}
	return nil
}

func (c *Container) seedCatalog(repo catalogDomain.Repository) error {
	var (
		exams []catalogDomain.Exam
		err   error
	)
	if c.config.Catalog.Path != "" {
		exams, err = catalog.Load(c.config.Catalog.Path)
	} else {
		exams, err = catalog.Embedded()
	}
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	if err := repo.ReplaceAll(exams); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}

	c.logger.Info("Catalog loaded", "exams", len(exams), "path", c.config.Catalog.Path)
	return nil
}

// GetConversionService returns the conversion service
func (c *Container) GetConversionService() compressionDomain.Service {
	return c.conversionService
}

// GetCatalogService returns the catalog service
func (c *Container) GetCatalogService() catalogDomain.Service {
	return c.catalogService
}

// GetStatisticsService returns the statistics service
func (c *Container) GetStatisticsService() statisticsDomain.Service {
	return c.statisticsService
}

// GetPreferencesRepository returns the preferences repository
func (c *Container) GetPreferencesRepository() preferencesDomain.Repository {
	return c.preferencesRepo
}

// GetConfig returns the application configuration
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// Cleanup removes the outputs produced through this container
func (c *Container) Cleanup() (int, error) {
	return c.conversionService.Cleanup()
}
