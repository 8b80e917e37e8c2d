package app

import (
	"context"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"returns-desk/internal/domain/entity"
	"returns-desk/internal/domain/port"
)

// QueryPanel экран поиска похожих товаров: по тексту или по выбранным тегам.
type QueryPanel struct {
	backend port.Backend
	log     *zap.Logger

	searchGate RequestGate
	tagsGate   RequestGate

	mu       sync.Mutex
	results  []entity.QueryResult
	tags     []entity.TagCount
	selected *entity.TagSet

	searchErr string
	tagsErr   string
}

func NewQueryPanel(backend port.Backend, log *zap.Logger) *QueryPanel {
	return &QueryPanel{
		backend:  backend,
		log:      log,
		selected: entity.NewTagSet(),
	}
}

// SearchText ищет по свободному тексту.
func (p *QueryPanel) SearchText(ctx context.Context, query string) ([]entity.QueryResult, error) {
	return p.search(ctx, func(ctx context.Context) ([]entity.SimilarItem, error) {
		return p.backend.SearchSimilar(ctx, query)
	})
}

// SearchSelectedTags ищет по текущему набору выбранных тегов.
func (p *QueryPanel) SearchSelectedTags(ctx context.Context) ([]entity.QueryResult, error) {
	tags := p.SelectedTags()
	return p.search(ctx, func(ctx context.Context) ([]entity.SimilarItem, error) {
		return p.backend.SearchByTags(ctx, tags)
	})
}

func (p *QueryPanel) search(ctx context.Context, fetch func(context.Context) ([]entity.SimilarItem, error)) ([]entity.QueryResult, error) {
	ctx, gen := p.searchGate.Begin(ctx)
	p.searchGate.Apply(gen, func() {
		p.mu.Lock()
		p.results, p.searchErr = nil, ""
		p.mu.Unlock()
	})

	items, err := fetch(ctx)
	results := toQueryResults(items)

	applied := p.searchGate.Commit(gen, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if err != nil {
			p.searchErr = MsgFetchResultsError
			return
		}
		p.results = results
	})
	if !applied {
		return nil, ErrStale
	}
	if err != nil {
		p.log.Warn("similarity search failed", zap.Error(err))
		return nil, err
	}
	return results, nil
}

// LoadTags загружает теги товара. Выбор тегов сохраняется.
func (p *QueryPanel) LoadTags(ctx context.Context, itemNumber, category string) ([]entity.TagCount, error) {
	ctx, gen := p.tagsGate.Begin(ctx)
	p.tagsGate.Apply(gen, func() {
		p.mu.Lock()
		p.tags, p.tagsErr = nil, ""
		p.mu.Unlock()
	})

	tags, err := p.backend.GetItemTags(ctx, itemNumber, category)

	applied := p.tagsGate.Commit(gen, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if err != nil {
			p.tagsErr = MsgFetchTagsError
			return
		}
		p.tags = tags
	})
	if !applied {
		return nil, ErrStale
	}
	return tags, err
}

// ToggleTag выбирает или снимает тег. Возвращает, выбран ли он теперь.
func (p *QueryPanel) ToggleTag(tag string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selected.Toggle(tag)
}

func (p *QueryPanel) SelectedTags() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selected.Tags()
}

// Results последние применённые результаты.
func (p *QueryPanel) Results() []entity.QueryResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]entity.QueryResult, len(p.results))
	copy(out, p.results)
	return out
}

func (p *QueryPanel) Tags() []entity.TagCount {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]entity.TagCount, len(p.tags))
	copy(out, p.tags)
	return out
}

// SearchError сообщение о неудачном последнем поиске.
func (p *QueryPanel) SearchError() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.searchErr
}

// TagsError сообщение о неудачной последней загрузке тегов.
func (p *QueryPanel) TagsError() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tagsErr
}

// toQueryResults нумерует выдачу по порядку, начиная с нуля.
func toQueryResults(items []entity.SimilarItem) []entity.QueryResult {
	if len(items) == 0 {
		return nil
	}
	out := make([]entity.QueryResult, len(items))
	for i, item := range items {
		out[i] = entity.QueryResult{
			ID:         strconv.Itoa(i),
			Image:      item.Image,
			Annotation: item.Annotation(),
		}
	}
	return out
}
