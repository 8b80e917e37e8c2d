package export

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"returns-desk/internal/domain/entity"
)

func TestDirSink_Write(t *testing.T) {
	dir := t.TempDir()
	sink := NewDirSink(dir, zap.NewNop())

	paths, err := sink.Write(context.Background(), []entity.ExportFile{
		{Name: "batch/results.xlsx", Data: []byte("xlsx")},
		{Name: "batch/image_0.png", Data: []byte("png")},
	})
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "batch", "results.xlsx"),
		filepath.Join(dir, "batch", "image_0.png"),
	}, paths)

	data, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	require.Equal(t, []byte("png"), data)
}

func TestDirSink_RejectsEscapingNames(t *testing.T) {
	sink := NewDirSink(t.TempDir(), zap.NewNop())

	_, err := sink.Write(context.Background(), []entity.ExportFile{{Name: "../evil.png"}})
	require.Error(t, err)
}

func TestDirSink_NothingToWrite(t *testing.T) {
	dir := t.TempDir()
	sink := NewDirSink(dir, zap.NewNop())

	paths, err := sink.Write(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, paths)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestDirSink_FailedBatchLeavesNothingBehind(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "keep.txt"), []byte("x"), 0o644))
	sink := NewDirSink(dir, zap.NewNop())

	paths, err := sink.Write(context.Background(), []entity.ExportFile{
		{Name: "batch/results.xlsx", Data: []byte("xlsx")},
		{Name: "batch/image_0.png", Data: []byte("png")},
		{Name: "../image_1.png", Data: []byte("png")},
	})
	require.Error(t, err)
	require.Nil(t, paths)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "keep.txt", entries[0].Name())
}
