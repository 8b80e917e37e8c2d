package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"returns-desk/internal/domain/entity"
	"returns-desk/internal/infrastructure/imaging"
)

// slowNormalizer задерживает файлы из slow и не декодирует данные.
type slowNormalizer struct {
	slow map[string]time.Duration
}

func (n slowNormalizer) Normalize(ctx context.Context, file entity.AcquiredFile) (entity.NormalizedImage, error) {
	if d, ok := n.slow[file.Name]; ok {
		time.Sleep(d)
	}
	return entity.NormalizedImage{Name: imaging.PNGName(file.Name), Data: file.Data}, nil
}

func (n slowNormalizer) NormalizeBatch(ctx context.Context, files []entity.AcquiredFile) ([]entity.NormalizedImage, error) {
	out := make([]entity.NormalizedImage, 0, len(files))
	for _, f := range files {
		img, err := n.Normalize(ctx, f)
		if err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	return out, nil
}

func TestWorkspace_EnqueueKeepsArrivalOrder(t *testing.T) {
	normalizer := slowNormalizer{slow: map[string]time.Duration{"first.jpg": 50 * time.Millisecond}}
	ws := NewWorkspaces(normalizer, nil, nil, &fakeBackend{}, zap.NewNop()).For(1)

	var wg sync.WaitGroup
	for _, name := range []string{"first.jpg", "second.jpg", "third.jpg"} {
		wg.Add(1)
		ws.Enqueue(func() {
			defer wg.Done()
			if _, err := ws.Uploads.Add(context.Background(), entity.AcquiredFile{Name: name}); err != nil {
				t.Error(err)
			}
		})
	}
	wg.Wait()

	var names []string
	for _, img := range ws.Uploads.Images() {
		names = append(names, img.Name)
	}
	require.Equal(t, []string{"first.png", "second.png", "third.png"}, names)
}

func TestWorkspace_OperatorsDoNotWaitForEachOther(t *testing.T) {
	spaces := NewWorkspaces(slowNormalizer{}, nil, nil, &fakeBackend{}, zap.NewNop())

	release := make(chan struct{})
	blocked := make(chan struct{})
	spaces.For(1).Enqueue(func() {
		close(blocked)
		<-release
	})
	<-blocked

	done := make(chan struct{})
	spaces.For(2).Enqueue(func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Error("second operator was blocked by the first")
	}
	close(release)
}

func TestWorkspace_EnqueueAfterQueueDrained(t *testing.T) {
	ws := NewWorkspaces(slowNormalizer{}, nil, nil, &fakeBackend{}, zap.NewNop()).For(3)

	for i := range 3 {
		done := make(chan int, 1)
		ws.Enqueue(func() { done <- i })
		require.Equal(t, i, <-done)
	}
}
