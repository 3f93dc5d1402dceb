package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/chepyr/go-board-planner/internal/models"
	"github.com/google/uuid"
)

func TestTargetIndex(t *testing.T) {
	tests := []struct {
		name          string
		index, from   int
		size          int
		sameBoardSlot bool
		want          int
	}{
		{name: "Plain index", index: 1, from: 0, size: 2, want: 1},
		{name: "Negative clamps to start", index: -4, from: 1, size: 2, want: 0},
		{name: "Past the end clamps", index: 9, from: 0, size: 2, want: 2},
		{name: "Slot after origin shifts left", index: 3, from: 0, size: 2, sameBoardSlot: true, want: 2},
		{name: "Slot before origin kept", index: 0, from: 2, size: 2, sameBoardSlot: true, want: 0},
		{name: "Slot on origin kept", index: 1, from: 1, size: 2, sameBoardSlot: true, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := targetIndex(tt.index, tt.from, tt.size, tt.sameBoardSlot); got != tt.want {
				t.Errorf("targetIndex(%d, %d, %d, %v) = %d, want %d",
					tt.index, tt.from, tt.size, tt.sameBoardSlot, got, tt.want)
			}
		})
	}
}

func TestTaskService_MoveTaskSameBoard(t *testing.T) {
	tests := []struct {
		name  string
		move  string
		index int
		want  []string
	}{
		{name: "First to last", move: "A", index: 2, want: []string{"B", "C", "A"}},
		{name: "Last to first", move: "C", index: 0, want: []string{"C", "A", "B"}},
		{name: "Middle down one", move: "B", index: 2, want: []string{"A", "C", "B"}},
		{name: "Same place", move: "B", index: 1, want: []string{"A", "B", "C"}},
		{name: "Beyond the end", move: "A", index: 10, want: []string{"B", "C", "A"}},
		{name: "Negative index", move: "C", index: -1, want: []string{"C", "A", "B"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := setupStore(t)
			user := newUser(t, store, "ada")
			ws := openWorkspace(t, store, user)

			ids := map[string]uuid.UUID{}
			for _, title := range []string{"A", "B", "C"} {
				ids[title] = mustCreate(t, ws, models.CategoryUniversita, title).ID
			}

			moved, err := ws.Tasks.MoveTask(context.Background(), ids[tt.move], models.CategoryUniversita, tt.index)
			if err != nil {
				t.Fatalf("MoveTask: %v", err)
			}
			if moved.Title != tt.move {
				t.Errorf("Expected moved task %s, got %s", tt.move, moved.Title)
			}
			if got := titles(t, ws, models.CategoryUniversita); !sameTitles(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
			if got := storedTitles(t, store, user.ID, models.CategoryUniversita); !sameTitles(got, tt.want) {
				t.Errorf("Expected stored %v, got %v", tt.want, got)
			}
		})
	}
}

func TestTaskService_DropTaskSameBoard(t *testing.T) {
	tests := []struct {
		name string
		move string
		slot int
		want []string
	}{
		{name: "Drop after the last card", move: "A", slot: 3, want: []string{"B", "C", "A"}},
		{name: "Drop between B and C", move: "A", slot: 2, want: []string{"B", "A", "C"}},
		{name: "Drop on own slot", move: "A", slot: 0, want: []string{"A", "B", "C"}},
		{name: "Drop right after itself", move: "A", slot: 1, want: []string{"A", "B", "C"}},
		{name: "Drop before the first card", move: "C", slot: 0, want: []string{"C", "A", "B"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := setupStore(t)
			user := newUser(t, store, "ada")
			ws := openWorkspace(t, store, user)

			ids := map[string]uuid.UUID{}
			for _, title := range []string{"A", "B", "C"} {
				ids[title] = mustCreate(t, ws, models.CategoryUniversita, title).ID
			}

			if _, err := ws.Tasks.DropTask(context.Background(), ids[tt.move], models.CategoryUniversita, tt.slot); err != nil {
				t.Fatalf("DropTask: %v", err)
			}
			if got := titles(t, ws, models.CategoryUniversita); !sameTitles(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestTaskService_MoveTaskAcrossBoards(t *testing.T) {
	tests := []struct {
		name  string
		index int
		want  []string
	}{
		{name: "To the top", index: 0, want: []string{"B", "X", "Y"}},
		{name: "In the middle", index: 1, want: []string{"X", "B", "Y"}},
		{name: "To the end", index: 2, want: []string{"X", "Y", "B"}},
		{name: "Beyond the end", index: 7, want: []string{"X", "Y", "B"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := setupStore(t)
			user := newUser(t, store, "ada")
			ws := openWorkspace(t, store, user)

			mustCreate(t, ws, models.CategoryUniversita, "A")
			b := mustCreate(t, ws, models.CategoryUniversita, "B")
			mustCreate(t, ws, models.CategoryUniversita, "C")
			mustCreate(t, ws, models.CategoryLavoro, "X")
			mustCreate(t, ws, models.CategoryLavoro, "Y")

			var changes counter
			ws.Boards.Subscribe(changes.observe)

			moved, err := ws.Tasks.DropTask(context.Background(), b.ID, models.CategoryLavoro, tt.index)
			if err != nil {
				t.Fatalf("DropTask: %v", err)
			}
			lavoro, _ := ws.Boards.Board(models.CategoryLavoro)
			if moved.BoardID != lavoro.ID {
				t.Errorf("Expected moved task on LAVORO, got board %v", moved.BoardID)
			}

			if got := titles(t, ws, models.CategoryUniversita); !sameTitles(got, []string{"A", "C"}) {
				t.Errorf("Expected source [A C], got %v", got)
			}
			if got := titles(t, ws, models.CategoryLavoro); !sameTitles(got, tt.want) {
				t.Errorf("Expected destination %v, got %v", tt.want, got)
			}
			if got := storedTitles(t, store, user.ID, models.CategoryUniversita); !sameTitles(got, []string{"A", "C"}) {
				t.Errorf("Expected stored source [A C], got %v", got)
			}
			if got := storedTitles(t, store, user.ID, models.CategoryLavoro); !sameTitles(got, tt.want) {
				t.Errorf("Expected stored destination %v, got %v", tt.want, got)
			}
			if changes.count() != 1 {
				t.Errorf("Expected 1 notification, got %d", changes.count())
			}
		})
	}
}

func TestTaskService_MoveTaskErrors(t *testing.T) {
	store := setupStore(t)
	user := newUser(t, store, "ada")
	ws := openWorkspace(t, store, user)
	ctx := context.Background()

	a := mustCreate(t, ws, models.CategoryUniversita, "A")
	if err := ws.Boards.DeleteBoard(ctx, models.CategoryLavoro); err != nil {
		t.Fatalf("DeleteBoard: %v", err)
	}

	if _, err := ws.Tasks.MoveTask(ctx, a.ID, models.CategoryLavoro, 0); !errors.Is(err, ErrBoardNotFound) {
		t.Errorf("Expected ErrBoardNotFound, got %v", err)
	}
	if _, err := ws.Tasks.MoveTask(ctx, uuid.New(), models.CategoryUniversita, 0); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Expected ErrTaskNotFound, got %v", err)
	}
	if got := titles(t, ws, models.CategoryUniversita); !sameTitles(got, []string{"A"}) {
		t.Errorf("Expected [A] unchanged, got %v", got)
	}
}
