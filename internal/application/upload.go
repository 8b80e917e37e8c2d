package app

import (
	"context"
	"fmt"
	"sync"

	"returns-desk/internal/domain/entity"
	"returns-desk/internal/domain/port"
)

// UploadList упорядоченный список нормализованных фото.
// Растёт только целыми пачками, очищается только явно.
type UploadList struct {
	normalizer port.ImageNormalizer
	inspector  port.PhotoInspector

	mu     sync.Mutex
	images []entity.NormalizedImage
}

// NewUploadList создаёт список. inspector может быть nil.
func NewUploadList(normalizer port.ImageNormalizer, inspector port.PhotoInspector) *UploadList {
	return &UploadList{
		normalizer: normalizer,
		inspector:  inspector,
	}
}

// Add проверяет и конвертирует пачку файлов и добавляет её целиком.
// При любой ошибке список не меняется. Возвращает новую длину списка.
func (l *UploadList) Add(ctx context.Context, files ...entity.AcquiredFile) (int, error) {
	if len(files) == 0 {
		return l.Len(), nil
	}

	if l.inspector != nil {
		for _, f := range files {
			if err := l.inspector.Check(ctx, f.Data); err != nil {
				return 0, fmt.Errorf("%s: %w", f.Name, err)
			}
		}
	}

	converted, err := l.normalizer.NormalizeBatch(ctx, files)
	if err != nil {
		return 0, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.images = append(l.images, converted...)
	return len(l.images), nil
}

// Images возвращает копию списка в порядке добавления.
func (l *UploadList) Images() []entity.NormalizedImage {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]entity.NormalizedImage, len(l.images))
	copy(out, l.images)
	return out
}

func (l *UploadList) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.images)
}

// Clear очищает список.
func (l *UploadList) Clear() {
	l.mu.Lock()
	l.images = nil
	l.mu.Unlock()
}
