package container

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"returns-desk/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		App:    config.AppConfig{Mode: "debug", NormalizeConcurrency: 2},
		API:    config.APIConfig{BaseURL: "http://127.0.0.1:1"},
		Export: config.ExportConfig{Sink: "dir", Dir: t.TempDir()},
	}
}

func TestNew_WiresServices(t *testing.T) {
	c, err := New(context.Background(), testConfig(t), zap.NewNop())
	require.NoError(t, err)
	defer c.Close()

	require.NotNil(t, c.Backend)
	require.NotNil(t, c.OperatorService)
	require.NotNil(t, c.ItemService)
	require.NotNil(t, c.InspectionService)
	require.NotNil(t, c.ExportService)
	require.NotNil(t, c.Workspaces.For(1).Uploads)
}

func TestNew_UnknownSink(t *testing.T) {
	cfg := testConfig(t)
	cfg.Export.Sink = "ftp"

	_, err := New(context.Background(), cfg, zap.NewNop())
	require.ErrorContains(t, err, "ftp")
}

func TestNew_UnreachableRedisIsOptional(t *testing.T) {
	cfg := testConfig(t)
	cfg.Redis.Addr = "127.0.0.1:1"

	c, err := New(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, c.Close())
}
