package port

import (
	"context"

	"returns-desk/internal/domain/entity"
)

// ExportSink место, куда складываются файлы выгрузки
type ExportSink interface {
	// Write сохраняет файлы и возвращает их адреса (пути или ключи)
	Write(ctx context.Context, files []entity.ExportFile) ([]string, error)
}

// ResultExporter собирает таблицу и изображения из результатов поиска
type ResultExporter interface {
	// Build возвращает nil для пустого списка
	Build(results []entity.QueryResult) (*entity.ExportBundle, error)
}
