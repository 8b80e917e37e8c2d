package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"returns-desk/internal/domain/entity"
	"returns-desk/internal/domain/port"
)

// ExportResult итог выгрузки.
type ExportResult struct {
	BatchID   string
	Bundle    *entity.ExportBundle
	Locations []string
}

// ExportService выгружает результаты поиска в хранилище.
type ExportService struct {
	exporter port.ResultExporter
	sink     port.ExportSink
	log      *zap.Logger
}

func NewExportService(exporter port.ResultExporter, sink port.ExportSink, log *zap.Logger) *ExportService {
	return &ExportService{
		exporter: exporter,
		sink:     sink,
		log:      log,
	}
}

// Export собирает таблицу и изображения и складывает их в каталог <batch>/.
// Для пустого списка ничего не делает и возвращает nil.
func (s *ExportService) Export(ctx context.Context, results []entity.QueryResult) (*ExportResult, error) {
	bundle, err := s.exporter.Build(results)
	if err != nil {
		return nil, fmt.Errorf("building export: %w", err)
	}
	if bundle == nil {
		return nil, nil
	}

	batchID := uuid.NewString()
	files := bundle.Files()
	for i := range files {
		files[i].Name = batchID + "/" + files[i].Name
	}

	locations, err := s.sink.Write(ctx, files)
	if err != nil {
		return nil, fmt.Errorf("writing export %s: %w", batchID, err)
	}

	s.log.Info("results exported",
		zap.String("batch", batchID),
		zap.Int("rows", len(results)),
		zap.Int("files", len(locations)))

	return &ExportResult{
		BatchID:   batchID,
		Bundle:    bundle,
		Locations: locations,
	}, nil
}
