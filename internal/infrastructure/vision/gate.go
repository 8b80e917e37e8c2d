package vision

import (
	"errors"

	"returns-desk/internal/domain/port"
)

// ErrRejected фото не прошло локальную проверку качества.
var ErrRejected = errors.New("quality gate failed")

// QualityGate отсекает фото, по которым бэкенд не сможет оценить товар.
type QualityGate struct {
	MinImageSide          int
	MinSharpnessEdgeRatio float64
	MaxOverexposedRatio   float64
	MaxUnderexposedRatio  float64
	MaxGlareRatio         float64
}

// NewQualityGate создаёт проверку с порогами по умолчанию.
func NewQualityGate() *QualityGate {
	return &QualityGate{
		MinImageSide:          400,
		MinSharpnessEdgeRatio: 0.008,
		MaxOverexposedRatio:   0.35,
		MaxUnderexposedRatio:  0.45,
		MaxGlareRatio:         0.08,
	}
}

// Проверка реализации интерфейса
var _ port.PhotoInspector = (*QualityGate)(nil)
