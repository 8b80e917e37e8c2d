package port

import (
	"context"

	"returns-desk/internal/domain/entity"
)

// Backend интерфейс удалённого API обработки возвратов
type Backend interface {
	// GetItemDetails возвращает карточку товара по SKU
	GetItemDetails(ctx context.Context, itemNumber string) (*entity.ItemDetails, error)

	// GetCategories возвращает список категорий
	GetCategories(ctx context.Context) ([]string, error)

	// GetItemTags возвращает распределение тегов, category может быть пустой
	GetItemTags(ctx context.Context, itemNumber, category string) ([]entity.TagCount, error)

	// SearchSimilar ищет похожие товары по свободному тексту
	SearchSimilar(ctx context.Context, query string) ([]entity.SimilarItem, error)

	// SearchByTags ищет похожие товары по набору тегов
	SearchByTags(ctx context.Context, tags []string) ([]entity.SimilarItem, error)

	// SubmitQualityCheck отправляет фото на оценку качества
	SubmitQualityCheck(ctx context.Context, itemNumber string, images []entity.NormalizedImage) (*entity.QualityReport, error)

	// SubmitClaim отправляет претензию с фото
	SubmitClaim(ctx context.Context, itemNumber, claimDetails string, images []entity.NormalizedImage) (*entity.ClaimDecision, error)

	// OnboardItem заводит новый товар
	OnboardItem(ctx context.Context, itemNumber, description string, images []entity.NormalizedImage) error

	// UpdateDecisionModel сохраняет чек-лист, модель сортировки, особые случаи и теги
	UpdateDecisionModel(ctx context.Context, update *entity.DecisionModelUpdate) error
}
