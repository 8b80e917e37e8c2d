package port

import (
	"context"

	"returns-desk/internal/domain/entity"
)

// ItemCache кэш справочных данных. Промах — (nil, nil).
type ItemCache interface {
	GetItem(ctx context.Context, itemNumber string) (*entity.ItemDetails, error)
	SetItem(ctx context.Context, item *entity.ItemDetails) error
	InvalidateItem(ctx context.Context, itemNumber string) error
	GetCategories(ctx context.Context) ([]string, error)
	SetCategories(ctx context.Context, categories []string) error
}
