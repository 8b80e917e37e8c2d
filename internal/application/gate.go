package app

import (
	"context"
	"sync"
)

// RequestGate следит, чтобы ответ устаревшего запроса не перетёр результат нового.
// Begin отменяет предыдущий запрос и выдаёт номер поколения,
// Commit применяет результат только для последнего поколения.
type RequestGate struct {
	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

// Begin начинает новое поколение и возвращает контекст запроса.
func (g *RequestGate) Begin(ctx context.Context) (context.Context, uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cancel != nil {
		g.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	g.gen++
	g.cancel = cancel
	return ctx, g.gen
}

// Apply вызывает fn, если gen всё ещё последнее поколение.
func (g *RequestGate) Apply(gen uint64, fn func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if gen != g.gen {
		return false
	}
	fn()
	return true
}

// Commit как Apply, но завершает запрос и освобождает его контекст.
func (g *RequestGate) Commit(gen uint64, fn func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if gen != g.gen {
		return false
	}
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
	fn()
	return true
}
