package storage

import (
	"context"
	"sync"

	"returns-desk/internal/domain/entity"
	"returns-desk/internal/domain/port"
)

// MemoryOperatorRepository in-memory хранилище операторов
type MemoryOperatorRepository struct {
	mu        sync.RWMutex
	operators map[int64]*entity.Operator
}

// NewMemoryOperatorRepository создаёт новое in-memory хранилище
func NewMemoryOperatorRepository() *MemoryOperatorRepository {
	return &MemoryOperatorRepository{
		operators: make(map[int64]*entity.Operator),
	}
}

// Get возвращает копию оператора по ID, создаёт нового если не найден
func (r *MemoryOperatorRepository) Get(ctx context.Context, operatorID, chatID int64) (*entity.Operator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	op, exists := r.operators[operatorID]
	if !exists {
		op = entity.NewOperator(operatorID, chatID)
		r.operators[operatorID] = op
	}

	cp := *op
	return &cp, nil
}

// Save сохраняет состояние оператора
func (r *MemoryOperatorRepository) Save(ctx context.Context, operator *entity.Operator) error {
	cp := *operator

	r.mu.Lock()
	r.operators[operator.ID] = &cp
	r.mu.Unlock()

	return nil
}

// SwapState меняет состояние, только если оно равно from
func (r *MemoryOperatorRepository) SwapState(ctx context.Context, operatorID int64, from, to entity.OperatorState) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	op, exists := r.operators[operatorID]
	if !exists || op.State != from {
		return false, nil
	}

	cp := *op
	cp.SetState(to)
	r.operators[operatorID] = &cp
	return true, nil
}

// Проверка реализации интерфейса
var _ port.OperatorRepository = (*MemoryOperatorRepository)(nil)
