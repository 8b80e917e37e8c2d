//go:build !gocv
// +build !gocv

package vision

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestQualityGate_RejectsSmallImage(t *testing.T) {
	g := NewQualityGate()

	err := g.Check(context.Background(), pngBytes(t, 120, 500))
	require.ErrorIs(t, err, ErrRejected)
	require.Contains(t, err.Error(), "too small")
}

func TestQualityGate_AcceptsLargeImage(t *testing.T) {
	g := NewQualityGate()
	require.NoError(t, g.Check(context.Background(), pngBytes(t, 400, 640)))
}

func TestQualityGate_RejectsGarbage(t *testing.T) {
	g := NewQualityGate()
	require.ErrorIs(t, g.Check(context.Background(), []byte("garbage")), ErrRejected)
}
