package imaging

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"returns-desk/internal/domain/entity"
	"returns-desk/internal/domain/port"
)

// ErrDecode файл не удалось декодировать как растровое изображение.
var ErrDecode = errors.New("failed to decode image")

// Normalizer перекодирует присланные файлы в PNG без изменения размеров.
type Normalizer struct {
	maxConcurrent int
	log           *zap.Logger
}

// NewNormalizer создаёт нормализатор. maxConcurrent <= 0 снимает ограничение.
func NewNormalizer(maxConcurrent int, log *zap.Logger) *Normalizer {
	return &Normalizer{
		maxConcurrent: maxConcurrent,
		log:           log,
	}
}

// Normalize декодирует файл, перерисовывает его на холст того же размера и кодирует в PNG.
func (n *Normalizer) Normalize(ctx context.Context, file entity.AcquiredFile) (entity.NormalizedImage, error) {
	if err := ctx.Err(); err != nil {
		return entity.NormalizedImage{}, err
	}

	data, err := toPNG(file.Data)
	if err != nil {
		n.log.Warn("image normalization failed",
			zap.String("file", file.Name),
			zap.String("content_type", file.ContentType),
			zap.Error(err))
		return entity.NormalizedImage{}, fmt.Errorf("normalize %s: %w", file.Name, err)
	}

	return entity.NormalizedImage{
		Name: PNGName(file.Name),
		Data: data,
	}, nil
}

// NormalizeBatch конвертирует файлы параллельно. Порядок результата совпадает с порядком входа.
// При первой же ошибке возвращается nil: частичных пачек не бывает.
func (n *Normalizer) NormalizeBatch(ctx context.Context, files []entity.AcquiredFile) ([]entity.NormalizedImage, error) {
	out := make([]entity.NormalizedImage, len(files))

	g, gctx := errgroup.WithContext(ctx)
	if n.maxConcurrent > 0 {
		g.SetLimit(n.maxConcurrent)
	}

	for i, file := range files {
		g.Go(func() error {
			img, err := n.Normalize(gctx, file)
			if err != nil {
				return err
			}
			out[i] = img
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	n.log.Debug("batch normalized", zap.Int("files", len(files)))
	return out, nil
}

// PNGName отбрасывает последнее расширение и добавляет .png.
func PNGName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + ".png"
}

// Проверка реализации интерфейса
var _ port.ImageNormalizer = (*Normalizer)(nil)
