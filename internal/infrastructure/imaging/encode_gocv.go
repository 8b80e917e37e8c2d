//go:build gocv
// +build gocv

package imaging

import (
	"fmt"

	"gocv.io/x/gocv"
)

// toPNG декодирует изображение через OpenCV и кодирует его в PNG.
func toPNG(data []byte) ([]byte, error) {
	mat, err := gocv.IMDecode(data, gocv.IMReadUnchanged)
	if err != nil || mat.Empty() {
		mat.Close()
		if err == nil {
			err = fmt.Errorf("empty image")
		}
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	defer mat.Close()

	buf, err := gocv.IMEncode(gocv.PNGFileExt, mat)
	if err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	defer buf.Close()

	// Буфер принадлежит OpenCV, копируем до Close.
	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}
