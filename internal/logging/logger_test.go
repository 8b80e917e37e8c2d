package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	prod, err := New("release", false)
	require.NoError(t, err)
	require.False(t, prod.Core().Enabled(zapcore.DebugLevel))
	require.True(t, prod.Core().Enabled(zapcore.InfoLevel))

	verbose, err := New("release", true)
	require.NoError(t, err)
	require.True(t, verbose.Core().Enabled(zapcore.DebugLevel))

	dev, err := New("debug", false)
	require.NoError(t, err)
	require.True(t, dev.Core().Enabled(zapcore.DebugLevel))
}
