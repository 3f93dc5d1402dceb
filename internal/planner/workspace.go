package planner

import (
	"context"
	"sync"

	"github.com/chepyr/go-board-planner/internal/models"
	"github.com/chepyr/go-board-planner/internal/notify"
	"github.com/google/uuid"
)

// Workspace bundles the services of one user around a single bus.
type Workspace struct {
	User    models.User
	Bus     *notify.Bus
	Boards  *BoardService
	Tasks   *TaskService
	Sharing *SharingService
}

func OpenWorkspace(ctx context.Context, store Store, user models.User) (*Workspace, error) {
	bus := notify.NewBus(nil)
	boards, err := NewBoardService(ctx, store, bus, user)
	if err != nil {
		return nil, err
	}
	return &Workspace{
		User:    user,
		Bus:     bus,
		Boards:  boards,
		Tasks:   NewTaskService(boards),
		Sharing: NewSharingService(boards),
	}, nil
}

// ObserverFactory builds the observer attached to a newly opened workspace.
type ObserverFactory func(userID uuid.UUID) notify.Observer

// Workspaces opens each user's workspace once and keeps it for later requests.
type Workspaces struct {
	store     Store
	factories []ObserverFactory
	mutex     sync.Mutex
	open      map[uuid.UUID]*Workspace
}

func NewWorkspaces(store Store, factories ...ObserverFactory) *Workspaces {
	return &Workspaces{
		store:     store,
		factories: factories,
		open:      make(map[uuid.UUID]*Workspace),
	}
}

func (w *Workspaces) Open(ctx context.Context, user models.User) (*Workspace, error) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if ws, ok := w.open[user.ID]; ok {
		return ws, nil
	}
	ws, err := OpenWorkspace(ctx, w.store, user)
	if err != nil {
		return nil, err
	}
	for _, factory := range w.factories {
		ws.Bus.Subscribe(factory(user.ID))
	}
	w.open[user.ID] = ws
	return ws, nil
}

// Close forgets the user's workspace; the next Open reloads it from the store.
// It returns once the old workspace has finished its running change, and
// requests still holding it get ErrWorkspaceClosed on their next change.
func (w *Workspaces) Close(userID uuid.UUID) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	ws, ok := w.open[userID]
	if !ok {
		return
	}
	delete(w.open, userID)
	ws.Boards.close()
}
