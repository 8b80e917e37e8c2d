package port

import (
	"context"

	"returns-desk/internal/domain/entity"
)

// ImageNormalizer перекодирует изображения в PNG
type ImageNormalizer interface {
	// Normalize перекодирует один файл
	Normalize(ctx context.Context, file entity.AcquiredFile) (entity.NormalizedImage, error)

	// NormalizeBatch перекодирует пачку файлов. Либо все, либо ошибка.
	NormalizeBatch(ctx context.Context, files []entity.AcquiredFile) ([]entity.NormalizedImage, error)
}
