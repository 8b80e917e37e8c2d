package app

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"returns-desk/internal/domain/entity"
	"returns-desk/internal/domain/port"
)

// ItemService справочные операции с товарами.
type ItemService struct {
	backend port.Backend
	cache   port.ItemCache
	log     *zap.Logger
}

// NewItemService создаёт сервис. cache может быть nil.
func NewItemService(backend port.Backend, cache port.ItemCache, log *zap.Logger) *ItemService {
	return &ItemService{
		backend: backend,
		cache:   cache,
		log:     log,
	}
}

// Lookup возвращает карточку товара, сначала заглядывая в кэш.
func (s *ItemService) Lookup(ctx context.Context, itemNumber string) (*entity.ItemDetails, error) {
	itemNumber = strings.TrimSpace(itemNumber)
	if itemNumber == "" {
		return nil, ErrMissingItemNumber
	}

	if s.cache != nil {
		item, err := s.cache.GetItem(ctx, itemNumber)
		if err != nil {
			s.log.Warn("item cache read failed", zap.String("item", itemNumber), zap.Error(err))
		} else if item != nil {
			return item, nil
		}
	}

	item, err := s.backend.GetItemDetails(ctx, itemNumber)
	if err != nil {
		return nil, err
	}
	// Бэкенд не обязан возвращать SKU в data, карточка всегда относится к запрошенному.
	if item.ItemNumber == "" {
		item.ItemNumber = itemNumber
	}

	if s.cache != nil {
		if err := s.cache.SetItem(ctx, item); err != nil {
			s.log.Warn("item cache write failed", zap.String("item", itemNumber), zap.Error(err))
		}
	}
	return item, nil
}

// Categories возвращает список категорий.
func (s *ItemService) Categories(ctx context.Context) ([]string, error) {
	if s.cache != nil {
		categories, err := s.cache.GetCategories(ctx)
		if err != nil {
			s.log.Warn("categories cache read failed", zap.Error(err))
		} else if categories != nil {
			return categories, nil
		}
	}

	categories, err := s.backend.GetCategories(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetCategories(ctx, categories); err != nil {
			s.log.Warn("categories cache write failed", zap.Error(err))
		}
	}
	return categories, nil
}

// Tags возвращает распределение тегов без кэширования: частоты меняются с каждой проверкой.
func (s *ItemService) Tags(ctx context.Context, itemNumber, category string) ([]entity.TagCount, error) {
	return s.backend.GetItemTags(ctx, strings.TrimSpace(itemNumber), category)
}

// UpdateDecisionModel сохраняет модель решений и сбрасывает кэш карточки.
func (s *ItemService) UpdateDecisionModel(ctx context.Context, update *entity.DecisionModelUpdate) error {
	if strings.TrimSpace(update.ItemNumber) == "" {
		return ErrMissingItemNumber
	}
	if err := s.backend.UpdateDecisionModel(ctx, update); err != nil {
		return err
	}
	s.invalidate(ctx, update.ItemNumber)
	return nil
}

// Onboard заводит новый товар.
func (s *ItemService) Onboard(ctx context.Context, itemNumber, description string, images []entity.NormalizedImage) error {
	if strings.TrimSpace(itemNumber) == "" {
		return ErrMissingItemNumber
	}
	if err := s.backend.OnboardItem(ctx, itemNumber, description, images); err != nil {
		return err
	}
	s.invalidate(ctx, itemNumber)

	s.log.Info("item onboarded",
		zap.String("item", itemNumber),
		zap.Int("images", len(images)))
	return nil
}

func (s *ItemService) invalidate(ctx context.Context, itemNumber string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateItem(ctx, itemNumber); err != nil {
		s.log.Warn("item cache invalidation failed", zap.String("item", itemNumber), zap.Error(err))
	}
}

// ItemPanel панель «Item Details»: при новом поиске очищается,
// при ошибке остаётся пустой и показывает общее сообщение.
type ItemPanel struct {
	items *ItemService
	gate  RequestGate

	mu      sync.Mutex
	details *entity.ItemDetails
	errMsg  string
}

func NewItemPanel(items *ItemService) *ItemPanel {
	return &ItemPanel{items: items}
}

// Lookup ищет товар. Если за время запроса начался новый поиск, возвращает ErrStale.
func (p *ItemPanel) Lookup(ctx context.Context, itemNumber string) (*entity.ItemDetails, error) {
	ctx, gen := p.gate.Begin(ctx)

	p.gate.Apply(gen, func() {
		p.mu.Lock()
		p.details, p.errMsg = nil, ""
		p.mu.Unlock()
	})

	item, err := p.items.Lookup(ctx, itemNumber)

	applied := p.gate.Commit(gen, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if err != nil {
			p.errMsg = MsgFetchItemError
			return
		}
		p.details = item
	})
	if !applied {
		return nil, ErrStale
	}
	return item, err
}

// State возвращает текущую карточку и сообщение об ошибке.
func (p *ItemPanel) State() (*entity.ItemDetails, string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.details, p.errMsg
}

// ItemEditor форма «Update Item»: модель решений, особые случаи и теги.
type ItemEditor struct {
	items  *ItemService
	update *entity.DecisionModelUpdate
	tags   *entity.TagSet
}

// LoadItemEditor загружает карточку и заполняет форму.
func LoadItemEditor(ctx context.Context, items *ItemService, itemNumber string) (*ItemEditor, error) {
	item, err := items.Lookup(ctx, itemNumber)
	if err != nil {
		return nil, err
	}
	update := entity.NewDecisionModelUpdate(item)
	return &ItemEditor{
		items:  items,
		update: update,
		tags:   entity.NewTagSet(update.Tags...),
	}, nil
}

func (e *ItemEditor) SetDecisionModel(text string)      { e.update.DecisionModel = text }
func (e *ItemEditor) SetClaimApprovalModel(text string) { e.update.ClaimApprovalModel = text }
func (e *ItemEditor) SetSpecialCases(text string)       { e.update.SpecialCases = text }

// AddTag добавляет тег, пустые и повторы игнорируются.
func (e *ItemEditor) AddTag(tag string) bool { return e.tags.Add(tag) }

func (e *ItemEditor) RemoveTag(tag string) bool { return e.tags.Remove(tag) }

// Draft возвращает текущее содержимое формы.
func (e *ItemEditor) Draft() entity.DecisionModelUpdate {
	d := *e.update
	d.Tags = e.tags.Tags()
	return d
}

// Submit отправляет форму.
func (e *ItemEditor) Submit(ctx context.Context) error {
	d := e.Draft()
	return e.items.UpdateDecisionModel(ctx, &d)
}
