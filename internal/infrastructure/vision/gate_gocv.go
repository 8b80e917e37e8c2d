//go:build gocv
// +build gocv

package vision

import (
	"context"
	"fmt"

	"gocv.io/x/gocv"
)

// Check проверяет размер, резкость, экспозицию и блики.
func (g *QualityGate) Check(ctx context.Context, imageData []byte) error {
	_ = ctx
	mat, err := gocv.IMDecode(imageData, gocv.IMReadColor)
	if err != nil || mat.Empty() {
		mat.Close()
		return fmt.Errorf("%w: failed to decode image", ErrRejected)
	}
	defer mat.Close()

	if mat.Cols() < g.MinImageSide || mat.Rows() < g.MinImageSide {
		return fmt.Errorf("%w: image is too small (%dx%d)", ErrRejected, mat.Cols(), mat.Rows())
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, 80, 160)
	if r := ratioOfMask(edges); r < g.MinSharpnessEdgeRatio {
		return fmt.Errorf("%w: image is blurry (edge_ratio=%.4f)", ErrRejected, r)
	}

	bright := gocv.NewMat()
	defer bright.Close()
	gocv.Threshold(gray, &bright, 250, 255, gocv.ThresholdBinary)
	if r := ratioOfMask(bright); r > g.MaxOverexposedRatio {
		return fmt.Errorf("%w: overexposed image (ratio=%.4f)", ErrRejected, r)
	}

	dark := gocv.NewMat()
	defer dark.Close()
	gocv.Threshold(gray, &dark, 20, 255, gocv.ThresholdBinaryInv)
	if r := ratioOfMask(dark); r > g.MaxUnderexposedRatio {
		return fmt.Errorf("%w: underexposed image (ratio=%.4f)", ErrRejected, r)
	}

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(mat, &hsv, gocv.ColorBGRToHSV)
	channels := gocv.Split(hsv)
	for i := range channels {
		defer channels[i].Close()
	}
	if len(channels) < 3 {
		return fmt.Errorf("%w: invalid hsv channels", ErrRejected)
	}

	// Блик: низкая насыщенность при почти максимальной яркости.
	lowSat := gocv.NewMat()
	defer lowSat.Close()
	gocv.Threshold(channels[1], &lowSat, 40, 255, gocv.ThresholdBinaryInv)

	highVal := gocv.NewMat()
	defer highVal.Close()
	gocv.Threshold(channels[2], &highVal, 245, 255, gocv.ThresholdBinary)

	glare := gocv.NewMat()
	defer glare.Close()
	gocv.BitwiseAnd(lowSat, highVal, &glare)
	if r := ratioOfMask(glare); r > g.MaxGlareRatio {
		return fmt.Errorf("%w: too much glare (ratio=%.4f)", ErrRejected, r)
	}

	return nil
}

func ratioOfMask(mask gocv.Mat) float64 {
	total := mask.Cols() * mask.Rows()
	if total <= 0 {
		return 0
	}
	return float64(gocv.CountNonZero(mask)) / float64(total)
}
