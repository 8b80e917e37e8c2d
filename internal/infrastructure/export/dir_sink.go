package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"returns-desk/internal/domain/entity"
	"returns-desk/internal/domain/port"
)

// DirSink складывает файлы выгрузки в локальный каталог.
type DirSink struct {
	dir string
	log *zap.Logger
}

func NewDirSink(dir string, log *zap.Logger) *DirSink {
	return &DirSink{dir: dir, log: log}
}

// Write записывает файлы. Имена могут содержать подкаталоги через /, но не выходить за пределы dir.
// При ошибке уже записанные в этом вызове файлы и ставшие пустыми подкаталоги удаляются.
func (s *DirSink) Write(ctx context.Context, files []entity.ExportFile) ([]string, error) {
	paths := make([]string, 0, len(files))
	for _, f := range files {
		path, err := s.writeFile(ctx, f)
		if err != nil {
			s.rollback(paths)
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (s *DirSink) writeFile(ctx context.Context, f entity.ExportFile) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	rel := filepath.FromSlash(f.Name)
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("export file name %q escapes the export directory", f.Name)
	}

	path := filepath.Join(s.dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	if err := os.WriteFile(path, f.Data, 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}

	s.log.Debug("export file written", zap.String("path", path), zap.Int("size", len(f.Data)))
	return path, nil
}

// rollback удаляет файлы и пустые подкаталоги внутри dir. Сам dir не трогает.
func (s *DirSink) rollback(paths []string) {
	root := filepath.Clean(s.dir)
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.log.Warn("failed to remove partial export file", zap.String("path", path), zap.Error(err))
		}
		// os.Remove не удаляет непустые каталоги, поэтому остановимся на первом занятом.
		for dir := filepath.Dir(path); dir != root && dir != "." && dir != string(filepath.Separator); dir = filepath.Dir(dir) {
			if os.Remove(dir) != nil {
				break
			}
		}
	}
}

// Проверка реализации интерфейса
var _ port.ExportSink = (*DirSink)(nil)
