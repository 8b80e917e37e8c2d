package app

import (
	"context"

	"returns-desk/internal/domain/entity"
	"returns-desk/internal/domain/port"
)

type OperatorService struct {
	repo port.OperatorRepository
}

func NewOperatorService(repo port.OperatorRepository) *OperatorService {
	return &OperatorService{repo: repo}
}

func (s *OperatorService) Get(ctx context.Context, operatorID, chatID int64) (*entity.Operator, error) {
	return s.repo.Get(ctx, operatorID, chatID)
}

func (s *OperatorService) Save(ctx context.Context, operator *entity.Operator) error {
	return s.repo.Save(ctx, operator)
}

func (s *OperatorService) SetState(ctx context.Context, operatorID, chatID int64, state entity.OperatorState) (*entity.Operator, error) {
	operator, err := s.repo.Get(ctx, operatorID, chatID)
	if err != nil {
		return nil, err
	}

	operator.SetState(state)
	if err := s.repo.Save(ctx, operator); err != nil {
		return nil, err
	}

	return operator, nil
}

// BeginQualityCheck переводит оператора в сбор фото для проверки качества товара.
func (s *OperatorService) BeginQualityCheck(ctx context.Context, operatorID, chatID int64, itemNumber string) (*entity.Operator, error) {
	return s.begin(ctx, operatorID, chatID, entity.StateAwaitingQualityPhoto, func(o *entity.Operator) {
		o.ItemNumber = itemNumber
	})
}

// BeginClaim переводит оператора в сбор фото по претензии.
func (s *OperatorService) BeginClaim(ctx context.Context, operatorID, chatID int64, itemNumber, claimDetails string) (*entity.Operator, error) {
	return s.begin(ctx, operatorID, chatID, entity.StateAwaitingClaimPhoto, func(o *entity.Operator) {
		o.ItemNumber = itemNumber
		o.ClaimDetails = claimDetails
	})
}

// BeginOnboard переводит оператора в сбор фото нового товара.
func (s *OperatorService) BeginOnboard(ctx context.Context, operatorID, chatID int64, itemNumber, description string) (*entity.Operator, error) {
	return s.begin(ctx, operatorID, chatID, entity.StateAwaitingOnboardPhoto, func(o *entity.Operator) {
		o.ItemNumber = itemNumber
		o.Description = description
	})
}

// Cancel возвращает в главное меню и забывает форму.
func (s *OperatorService) Cancel(ctx context.Context, operatorID, chatID int64) (*entity.Operator, error) {
	return s.begin(ctx, operatorID, chatID, entity.StateMainMenu, func(*entity.Operator) {})
}

// BeginProcessing переводит оператора из сбора фото в ожидание бэкенда.
// Из двух одновременных вызовов успешен только один, второй получает ErrBusy.
// Возвращает оператора в том виде, каким он был до перехода.
func (s *OperatorService) BeginProcessing(ctx context.Context, operatorID, chatID int64) (*entity.Operator, error) {
	operator, err := s.repo.Get(ctx, operatorID, chatID)
	if err != nil {
		return nil, err
	}
	if operator.State == entity.StateProcessing {
		return nil, ErrBusy
	}
	if !operator.Collecting() {
		return nil, ErrNotCollecting
	}

	swapped, err := s.repo.SwapState(ctx, operatorID, operator.State, entity.StateProcessing)
	if err != nil {
		return nil, err
	}
	if !swapped {
		return nil, ErrBusy
	}
	return operator, nil
}

// EndProcessing возвращает оператора в сценарий flow, если он всё ещё ждёт бэкенд.
func (s *OperatorService) EndProcessing(ctx context.Context, operatorID int64, flow entity.OperatorState) error {
	_, err := s.repo.SwapState(ctx, operatorID, entity.StateProcessing, flow)
	return err
}

func (s *OperatorService) begin(ctx context.Context, operatorID, chatID int64, state entity.OperatorState, fill func(*entity.Operator)) (*entity.Operator, error) {
	operator, err := s.repo.Get(ctx, operatorID, chatID)
	if err != nil {
		return nil, err
	}

	operator.Reset()
	operator.SetState(state)
	fill(operator)

	if err := s.repo.Save(ctx, operator); err != nil {
		return nil, err
	}
	return operator, nil
}
