package container

import (
	"context"
	"fmt"
	"time"

	"bookquote-backend/internal/config"
	catalogHandler "bookquote-backend/internal/domains/catalog/handler"
	catalogRepo "bookquote-backend/internal/domains/catalog/repository"
	catalogService "bookquote-backend/internal/domains/catalog/service"
	importerHandler "bookquote-backend/internal/domains/importer/handler"
	importerRepo "bookquote-backend/internal/domains/importer/repository"
	importerService "bookquote-backend/internal/domains/importer/service"
	infraCache "bookquote-backend/internal/infrastructure/cache"
	"bookquote-backend/internal/infrastructure/database"
	"bookquote-backend/internal/infrastructure/storage"
	"bookquote-backend/pkg/cache"
	"bookquote-backend/pkg/logger"

	"github.com/rs/zerolog/log"
)

// Container is the root of the dependency graph. Initialization order:
// config → infrastructure (DB, cache, storage) → repositories → services →
// handlers. Everything is a singleton for the process lifetime.
type Container struct {
	Config  *config.Config
	DB      *database.PostgresDB
	Cache   cache.Cache
	Storage *storage.MinIOStorage

	BookRepo      catalogRepo.BookRepository
	PublisherRepo catalogRepo.PublisherRepository
	PricingRepo   catalogRepo.PricingRepository
	TemplateRepo  importerRepo.TemplateRepository

	CatalogService  *catalogService.CatalogService
	TemplateService *importerService.TemplateService
	ImportService   *importerService.ImportService

	BookHandler     *catalogHandler.BookHandler
	ImportHandler   *importerHandler.ImportHandler
	TemplateHandler *importerHandler.TemplateHandler
}

func NewContainer() (*Container, error) {
	c := &Container{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	logger.Init(cfg.App.Environment)
	log.Info().Str("environment", cfg.App.Environment).Msg("Config loaded")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.NewPostgresDB(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db
	log.Info().Msg("Database connected")

	redisCache := infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisCache.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	c.Cache = redisCache
	log.Info().Msg("Redis connected")

	store, err := storage.NewMinIOStorage(cfg.MinIO)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize object storage: %w", err)
	}
	c.Storage = store
	log.Info().Str("bucket", cfg.MinIO.Bucket).Msg("Object storage ready")

	// Repositories
	c.BookRepo = catalogRepo.NewBookRepository(db.Pool)
	c.PublisherRepo = catalogRepo.NewPublisherRepository(db.Pool)
	c.PricingRepo = catalogRepo.NewPricingRepository(db.Pool)
	c.TemplateRepo = importerRepo.NewTemplateRepository(db.Pool)

	// Services
	c.CatalogService = catalogService.NewCatalogService(c.BookRepo, c.PublisherRepo, c.PricingRepo)
	c.TemplateService = importerService.NewTemplateService(c.TemplateRepo, c.Cache, cfg.Import)
	c.ImportService = importerService.NewImportService(
		c.BookRepo,
		c.PublisherRepo,
		c.PricingRepo,
		c.TemplateRepo,
		c.TemplateService,
		c.Storage,
		cfg.Import,
	)

	// Handlers
	c.BookHandler = catalogHandler.NewBookHandler(c.CatalogService)
	c.ImportHandler = importerHandler.NewImportHandler(c.ImportService, c.Storage, cfg.Import.ArtifactPrefix)
	c.TemplateHandler = importerHandler.NewTemplateHandler(c.TemplateService)

	log.Info().Msg("Container initialized")
	return c, nil
}

// Cleanup closes infrastructure connections in reverse order.
func (c *Container) Cleanup() {
	if closer, ok := c.Cache.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close redis connection")
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
	log.Info().Msg("Container cleaned up")
}
