package app

import (
	"sync"

	"go.uber.org/zap"

	"returns-desk/internal/domain/port"
)

// Workspace состояние экранов одного оператора.
type Workspace struct {
	Uploads *UploadList
	Item    *ItemPanel
	Query   *QueryPanel

	qmu     sync.Mutex
	queue   []func()
	running bool
}

// Enqueue выполняет fn после всех ранее поставленных задач этого оператора.
// Задачи разных операторов выполняются параллельно.
func (w *Workspace) Enqueue(fn func()) {
	w.qmu.Lock()
	w.queue = append(w.queue, fn)
	if w.running {
		w.qmu.Unlock()
		return
	}
	w.running = true
	w.qmu.Unlock()

	go w.drain()
}

func (w *Workspace) drain() {
	for {
		w.qmu.Lock()
		if len(w.queue) == 0 {
			w.running = false
			w.qmu.Unlock()
			return
		}
		fn := w.queue[0]
		w.queue[0] = nil
		w.queue = w.queue[1:]
		w.qmu.Unlock()

		fn()
	}
}

// Workspaces реестр рабочих мест по ID оператора.
type Workspaces struct {
	normalizer port.ImageNormalizer
	inspector  port.PhotoInspector
	items      *ItemService
	backend    port.Backend
	log        *zap.Logger

	mu     sync.Mutex
	spaces map[int64]*Workspace
}

// NewWorkspaces создаёт реестр. inspector может быть nil.
func NewWorkspaces(normalizer port.ImageNormalizer, inspector port.PhotoInspector, items *ItemService, backend port.Backend, log *zap.Logger) *Workspaces {
	return &Workspaces{
		normalizer: normalizer,
		inspector:  inspector,
		items:      items,
		backend:    backend,
		log:        log,
		spaces:     make(map[int64]*Workspace),
	}
}

// For возвращает рабочее место оператора, создавая его при первом обращении.
func (w *Workspaces) For(operatorID int64) *Workspace {
	w.mu.Lock()
	defer w.mu.Unlock()

	ws, ok := w.spaces[operatorID]
	if !ok {
		ws = &Workspace{
			Uploads: NewUploadList(w.normalizer, w.inspector),
			Item:    NewItemPanel(w.items),
			Query:   NewQueryPanel(w.backend, w.log),
		}
		w.spaces[operatorID] = ws
	}
	return ws
}

// NewUploads создаёт отдельный список загрузок, не привязанный к оператору.
func (w *Workspaces) NewUploads() *UploadList {
	return NewUploadList(w.normalizer, w.inspector)
}
