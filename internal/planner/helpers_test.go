package planner

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/chepyr/go-board-planner/internal/db"
	"github.com/chepyr/go-board-planner/internal/models"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	log "github.com/sirupsen/logrus"
)

var _ Store = (*db.Store)(nil)

func init() {
	log.SetOutput(io.Discard)
}

var errInjected = errors.New("injected failure")

// flakyStore wraps a real store and fails the next write when armed.
type flakyStore struct {
	*db.Store
	mutex sync.Mutex
	fail  bool
}

func (f *flakyStore) armed() bool {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.fail
}

func (f *flakyStore) setFail(fail bool) {
	f.mutex.Lock()
	f.fail = fail
	f.mutex.Unlock()
}

func (f *flakyStore) SaveBoard(ctx context.Context, board *models.Board) (uuid.UUID, error) {
	if f.armed() {
		return uuid.Nil, errInjected
	}
	return f.Store.SaveBoard(ctx, board)
}

func (f *flakyStore) DeleteBoard(ctx context.Context, id uuid.UUID) error {
	if f.armed() {
		return errInjected
	}
	return f.Store.DeleteBoard(ctx, id)
}

func (f *flakyStore) SaveTask(ctx context.Context, task *models.Task) (uuid.UUID, error) {
	if f.armed() {
		return uuid.Nil, errInjected
	}
	return f.Store.SaveTask(ctx, task)
}

func (f *flakyStore) UpdateTask(ctx context.Context, task *models.Task) error {
	if f.armed() {
		return errInjected
	}
	return f.Store.UpdateTask(ctx, task)
}

func (f *flakyStore) DeleteTask(ctx context.Context, id uuid.UUID) error {
	if f.armed() {
		return errInjected
	}
	return f.Store.DeleteTask(ctx, id)
}

func (f *flakyStore) SaveOrdering(ctx context.Context, boards ...*models.Board) error {
	if f.armed() {
		return errInjected
	}
	return f.Store.SaveOrdering(ctx, boards...)
}

func (f *flakyStore) SaveShare(ctx context.Context, taskID, userID uuid.UUID, permission models.Permission) error {
	if f.armed() {
		return errInjected
	}
	return f.Store.SaveShare(ctx, taskID, userID, permission)
}

func setupStore(t *testing.T) *flakyStore {
	t.Helper()
	conn, err := db.Connect("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := db.Migrate(context.Background(), conn, "sqlite3"); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return &flakyStore{Store: db.NewStore(conn)}
}

func newUser(t *testing.T, store Store, username string) models.User {
	t.Helper()
	user := models.User{ID: uuid.New(), Username: username, PasswordHash: "hash", CreatedAt: time.Now().UTC()}
	if err := store.SaveUser(context.Background(), &user); err != nil {
		t.Fatalf("Failed to save user %s: %v", username, err)
	}
	return user
}

func openWorkspace(t *testing.T, store Store, user models.User) *Workspace {
	t.Helper()
	ws, err := OpenWorkspace(context.Background(), store, user)
	if err != nil {
		t.Fatalf("OpenWorkspace: %v", err)
	}
	return ws
}

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func mustCreate(t *testing.T, ws *Workspace, category models.Category, title string) models.Task {
	t.Helper()
	task, err := ws.Tasks.CreateTask(context.Background(), category, TaskInput{Title: title, DueDate: day(2024, 5, 1)})
	if err != nil {
		t.Fatalf("CreateTask %s: %v", title, err)
	}
	return task
}

func titles(t *testing.T, ws *Workspace, category models.Category) []string {
	t.Helper()
	board, err := ws.Boards.Board(category)
	if err != nil {
		t.Fatalf("Board %s: %v", category, err)
	}
	var out []string
	for i, task := range board.Tasks {
		if task.Position != i {
			t.Errorf("Task %s at index %d has position %d", task.Title, i, task.Position)
		}
		if task.BoardID != board.ID {
			t.Errorf("Task %s has board id %v, want %v", task.Title, task.BoardID, board.ID)
		}
		out = append(out, task.Title)
	}
	return out
}

// storedTitles reloads the board from the store to check what was persisted.
func storedTitles(t *testing.T, store Store, userID uuid.UUID, category models.Category) []string {
	t.Helper()
	boards, err := store.LoadBoards(context.Background(), userID)
	if err != nil {
		t.Fatalf("LoadBoards: %v", err)
	}
	for _, b := range boards {
		if b.Category == category {
			var out []string
			for _, task := range b.Tasks {
				out = append(out, task.Title)
			}
			return out
		}
	}
	return nil
}

func sameTitles(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// counter counts bus notifications.
type counter struct {
	mutex sync.Mutex
	n     int
}

func (c *counter) observe() {
	c.mutex.Lock()
	c.n++
	c.mutex.Unlock()
}

func (c *counter) count() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.n
}
