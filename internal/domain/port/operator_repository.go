package port

import (
	"context"

	"returns-desk/internal/domain/entity"
)

// OperatorRepository интерфейс хранилища операторов
type OperatorRepository interface {
	// Get возвращает оператора по ID, создаёт нового если не найден
	Get(ctx context.Context, operatorID, chatID int64) (*entity.Operator, error)

	// Save сохраняет состояние оператора
	Save(ctx context.Context, operator *entity.Operator) error

	// SwapState атомарно меняет состояние from на to.
	// Возвращает false, если текущее состояние не from или оператора нет.
	SwapState(ctx context.Context, operatorID int64, from, to entity.OperatorState) (bool, error)
}
