package app

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"returns-desk/internal/domain/entity"
	"returns-desk/internal/domain/port"
)

// InspectionService отправляет фото на проверку качества и по претензиям.
type InspectionService struct {
	backend port.Backend
	log     *zap.Logger
}

// NewInspectionService создаёт сервис, который передаёт фото на оценку бэкенду.
func NewInspectionService(backend port.Backend, log *zap.Logger) *InspectionService {
	return &InspectionService{
		backend: backend,
		log:     log,
	}
}

// SubmitQualityCheck отправляет накопленные фото. Список фото не меняется:
// после ошибки оператор может отправить их повторно.
func (s *InspectionService) SubmitQualityCheck(ctx context.Context, itemNumber string, uploads *UploadList) (*entity.QualityReport, error) {
	images, err := submission(itemNumber, uploads)
	if err != nil {
		return nil, err
	}

	report, err := s.backend.SubmitQualityCheck(ctx, itemNumber, images)
	if err != nil {
		s.log.Warn("quality check failed", zap.String("item", itemNumber), zap.Error(err))
		return nil, err
	}

	s.log.Info("quality check graded",
		zap.String("item", itemNumber),
		zap.Int("images", len(images)),
		zap.Int("reasons", len(report.Reasons)))
	return report, nil
}

// SubmitClaim отправляет претензию с накопленными фото.
func (s *InspectionService) SubmitClaim(ctx context.Context, itemNumber, claimDetails string, uploads *UploadList) (*entity.ClaimDecision, error) {
	images, err := submission(itemNumber, uploads)
	if err != nil {
		return nil, err
	}

	decision, err := s.backend.SubmitClaim(ctx, itemNumber, claimDetails, images)
	if err != nil {
		s.log.Warn("claim submission failed", zap.String("item", itemNumber), zap.Error(err))
		return nil, err
	}

	s.log.Info("claim adjudicated",
		zap.String("item", itemNumber),
		zap.Bool("approved", decision.Approved()))
	return decision, nil
}

func submission(itemNumber string, uploads *UploadList) ([]entity.NormalizedImage, error) {
	if strings.TrimSpace(itemNumber) == "" {
		return nil, ErrMissingItemNumber
	}
	images := uploads.Images()
	if len(images) == 0 {
		return nil, ErrEmptyUpload
	}
	return images, nil
}
