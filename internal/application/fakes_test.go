package app

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"returns-desk/internal/domain/entity"
)

var errBackend = errors.New("backend unavailable")

// fakeBackend реализует port.Backend через подменяемые функции.
type fakeBackend struct {
	getItem       func(ctx context.Context, itemNumber string) (*entity.ItemDetails, error)
	getCategories func(ctx context.Context) ([]string, error)
	getTags       func(ctx context.Context, itemNumber, category string) ([]entity.TagCount, error)
	search        func(ctx context.Context, query string) ([]entity.SimilarItem, error)
	searchTags    func(ctx context.Context, tags []string) ([]entity.SimilarItem, error)
	quality       func(ctx context.Context, itemNumber string, images []entity.NormalizedImage) (*entity.QualityReport, error)
	claim         func(ctx context.Context, itemNumber, claimDetails string, images []entity.NormalizedImage) (*entity.ClaimDecision, error)
	onboard       func(ctx context.Context, itemNumber, description string, images []entity.NormalizedImage) error
	update        func(ctx context.Context, update *entity.DecisionModelUpdate) error
}

func (b *fakeBackend) GetItemDetails(ctx context.Context, itemNumber string) (*entity.ItemDetails, error) {
	return b.getItem(ctx, itemNumber)
}

func (b *fakeBackend) GetCategories(ctx context.Context) ([]string, error) {
	return b.getCategories(ctx)
}

func (b *fakeBackend) GetItemTags(ctx context.Context, itemNumber, category string) ([]entity.TagCount, error) {
	return b.getTags(ctx, itemNumber, category)
}

func (b *fakeBackend) SearchSimilar(ctx context.Context, query string) ([]entity.SimilarItem, error) {
	return b.search(ctx, query)
}

func (b *fakeBackend) SearchByTags(ctx context.Context, tags []string) ([]entity.SimilarItem, error) {
	return b.searchTags(ctx, tags)
}

func (b *fakeBackend) SubmitQualityCheck(ctx context.Context, itemNumber string, images []entity.NormalizedImage) (*entity.QualityReport, error) {
	return b.quality(ctx, itemNumber, images)
}

func (b *fakeBackend) SubmitClaim(ctx context.Context, itemNumber, claimDetails string, images []entity.NormalizedImage) (*entity.ClaimDecision, error) {
	return b.claim(ctx, itemNumber, claimDetails, images)
}

func (b *fakeBackend) OnboardItem(ctx context.Context, itemNumber, description string, images []entity.NormalizedImage) error {
	return b.onboard(ctx, itemNumber, description, images)
}

func (b *fakeBackend) UpdateDecisionModel(ctx context.Context, update *entity.DecisionModelUpdate) error {
	return b.update(ctx, update)
}

// memoryCache реализует port.ItemCache на map.
type memoryCache struct {
	mu         sync.Mutex
	items      map[string]*entity.ItemDetails
	categories []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[string]*entity.ItemDetails)}
}

func (c *memoryCache) GetItem(_ context.Context, itemNumber string) (*entity.ItemDetails, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items[itemNumber], nil
}

func (c *memoryCache) SetItem(_ context.Context, item *entity.ItemDetails) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[item.ItemNumber] = item
	return nil
}

func (c *memoryCache) InvalidateItem(_ context.Context, itemNumber string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, itemNumber)
	return nil
}

func (c *memoryCache) GetCategories(context.Context) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.categories, nil
}

func (c *memoryCache) SetCategories(_ context.Context, categories []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.categories = categories
	return nil
}

// recordingSink запоминает всё, что в него записали.
type recordingSink struct {
	calls int
	files []entity.ExportFile
}

func (s *recordingSink) Write(_ context.Context, files []entity.ExportFile) ([]string, error) {
	s.calls++
	s.files = append(s.files, files...)
	locations := make([]string, len(files))
	for i, f := range files {
		locations[i] = "mem://" + f.Name
	}
	return locations, nil
}

func jpegFile(t *testing.T, name string, w, h int) entity.AcquiredFile {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return entity.AcquiredFile{Name: name, ContentType: "image/jpeg", Data: buf.Bytes()}
}

func brokenFile(name string) entity.AcquiredFile {
	return entity.AcquiredFile{Name: name, ContentType: "image/jpeg", Data: []byte("not an image")}
}
