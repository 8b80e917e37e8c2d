package container

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"returns-desk/config"
	app "returns-desk/internal/application"
	"returns-desk/internal/domain/port"
	"returns-desk/internal/infrastructure/backend"
	"returns-desk/internal/infrastructure/cache"
	"returns-desk/internal/infrastructure/export"
	"returns-desk/internal/infrastructure/imaging"
	"returns-desk/internal/infrastructure/storage"
	"returns-desk/internal/infrastructure/vision"
)

type Container struct {
	Backend           port.Backend
	Normalizer        port.ImageNormalizer
	OperatorService   *app.OperatorService
	ItemService       *app.ItemService
	InspectionService *app.InspectionService
	ExportService     *app.ExportService
	Workspaces        *app.Workspaces

	closers []func() error
}

// New собирает зависимости по конфигурации.
// Redis подключается, только если задан REDIS_ADDR.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Container, error) {
	c := &Container{}

	c.Backend = backend.NewClient(cfg.API.BaseURL, &http.Client{Timeout: cfg.API.Timeout}, log.Named("backend"))
	c.Normalizer = imaging.NewNormalizer(cfg.App.NormalizeConcurrency, log.Named("imaging"))

	var inspector port.PhotoInspector
	if cfg.App.QualityGate {
		inspector = vision.NewQualityGate()
	}

	var itemCache port.ItemCache
	if cfg.Redis.Addr != "" {
		rc := cache.NewRedisCache(&cfg.Redis, log.Named("cache"))
		if err := rc.Ping(ctx); err != nil {
			log.Warn("redis unavailable, running without cache", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
			_ = rc.Close()
		} else {
			itemCache = rc
			c.closers = append(c.closers, rc.Close)
		}
	}

	sink, err := newSink(ctx, cfg, log.Named("export"))
	if err != nil {
		return nil, err
	}

	c.OperatorService = app.NewOperatorService(storage.NewMemoryOperatorRepository())
	c.ItemService = app.NewItemService(c.Backend, itemCache, log.Named("items"))
	c.InspectionService = app.NewInspectionService(c.Backend, log.Named("inspection"))
	c.ExportService = app.NewExportService(export.NewExporter(log.Named("export")), sink, log.Named("export"))
	c.Workspaces = app.NewWorkspaces(c.Normalizer, inspector, c.ItemService, c.Backend, log.Named("query"))

	return c, nil
}

func newSink(ctx context.Context, cfg *config.Config, log *zap.Logger) (port.ExportSink, error) {
	switch cfg.Export.Sink {
	case "", "dir":
		return export.NewDirSink(cfg.Export.Dir, log), nil
	case "s3":
		sink, err := export.NewS3Sink(ctx, &cfg.S3, log)
		if err != nil {
			return nil, fmt.Errorf("init s3 export sink: %w", err)
		}
		return sink, nil
	default:
		return nil, fmt.Errorf("unknown EXPORT_SINK %q", cfg.Export.Sink)
	}
}

// Close освобождает внешние подключения.
func (c *Container) Close() error {
	var firstErr error
	for _, closeFn := range c.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
