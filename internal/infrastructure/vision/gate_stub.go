//go:build !gocv
// +build !gocv

package vision

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Check без OpenCV проверяет только размер изображения.
func (g *QualityGate) Check(ctx context.Context, imageData []byte) error {
	_ = ctx
	cfg, _, err := image.DecodeConfig(bytes.NewReader(imageData))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRejected, err)
	}

	if cfg.Width < g.MinImageSide || cfg.Height < g.MinImageSide {
		return fmt.Errorf("%w: image is too small (%dx%d)", ErrRejected, cfg.Width, cfg.Height)
	}
	return nil
}
