package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/chepyr/go-board-planner/internal/models"
	"github.com/google/uuid"
)

func TestSharingService_AddChangeRemove(t *testing.T) {
	store := setupStore(t)
	ada := newUser(t, store, "ada")
	bob := newUser(t, store, "bob")
	ws := openWorkspace(t, store, ada)
	ctx := context.Background()

	task := mustCreate(t, ws, models.CategoryLavoro, "Report")

	var changes counter
	ws.Boards.Subscribe(changes.observe)

	if err := ws.Sharing.AddShare(ctx, task.ID, bob.ID, models.PermissionReadOnly); err != nil {
		t.Fatalf("AddShare: %v", err)
	}
	if err := ws.Sharing.AddShare(ctx, task.ID, bob.ID, models.PermissionReadWrite); !errors.Is(err, ErrAlreadyShared) {
		t.Fatalf("Expected ErrAlreadyShared, got %v", err)
	}
	got, _ := ws.Tasks.Task(task.ID)
	if got.Shares[bob.ID] != models.PermissionReadOnly {
		t.Errorf("Expected the rejected add to keep READ_ONLY, got %q", got.Shares[bob.ID])
	}

	if err := ws.Sharing.ChangePermission(ctx, task.ID, bob.ID, models.PermissionReadWrite); err != nil {
		t.Fatalf("ChangePermission: %v", err)
	}
	got, _ = ws.Tasks.Task(task.ID)
	if !got.Shares[bob.ID].CanWrite() {
		t.Errorf("Expected READ_WRITE, got %q", got.Shares[bob.ID])
	}

	bobs := openWorkspace(t, store, bob)
	shared, err := bobs.Sharing.SharedWithMe(ctx)
	if err != nil {
		t.Fatalf("SharedWithMe: %v", err)
	}
	if len(shared) != 1 || shared[0].Permission != models.PermissionReadWrite {
		t.Errorf("Expected one READ_WRITE task for bob, got %+v", shared)
	}

	if err := ws.Sharing.RemoveShare(ctx, task.ID, bob.ID); err != nil {
		t.Fatalf("RemoveShare: %v", err)
	}
	if err := ws.Sharing.RemoveShare(ctx, task.ID, bob.ID); err != nil {
		t.Errorf("Expected removing a missing grant to succeed, got %v", err)
	}
	if err := ws.Sharing.ChangePermission(ctx, task.ID, bob.ID, models.PermissionReadOnly); !errors.Is(err, ErrNotShared) {
		t.Errorf("Expected ErrNotShared, got %v", err)
	}

	shared, err = bobs.Sharing.SharedWithMe(ctx)
	if err != nil {
		t.Fatalf("SharedWithMe: %v", err)
	}
	if shared == nil || len(shared) != 0 {
		t.Errorf("Expected an empty slice after removal, got %+v", shared)
	}

	// add, change, remove
	if changes.count() != 3 {
		t.Errorf("Expected 3 notifications, got %d", changes.count())
	}
}

func TestSharingService_AddShareErrors(t *testing.T) {
	store := setupStore(t)
	ada := newUser(t, store, "ada")
	bob := newUser(t, store, "bob")
	ws := openWorkspace(t, store, ada)
	ctx := context.Background()

	task := mustCreate(t, ws, models.CategoryLavoro, "Report")

	tests := []struct {
		name       string
		taskID     uuid.UUID
		userID     uuid.UUID
		permission models.Permission
		want       error
	}{
		{name: "Creator", taskID: task.ID, userID: ada.ID, permission: models.PermissionReadOnly, want: ErrShareWithCreator},
		{name: "Unknown permission", taskID: task.ID, userID: bob.ID, permission: "ADMIN", want: ErrInvalidPermission},
		{name: "Unknown task", taskID: uuid.New(), userID: bob.ID, permission: models.PermissionReadOnly, want: ErrTaskNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ws.Sharing.AddShare(ctx, tt.taskID, tt.userID, tt.permission)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}

	store.setFail(true)
	if err := ws.Sharing.AddShare(ctx, task.ID, bob.ID, models.PermissionReadOnly); !errors.Is(err, ErrStorage) {
		t.Errorf("Expected ErrStorage, got %v", err)
	}
	got, _ := ws.Tasks.Task(task.ID)
	if len(got.Shares) != 0 {
		t.Errorf("Expected no grant after a storage failure, got %v", got.Shares)
	}
}

func TestSharingService_ShareCandidates(t *testing.T) {
	store := setupStore(t)
	ada := newUser(t, store, "ada")
	adam := newUser(t, store, "adam")
	newUser(t, store, "adele")
	newUser(t, store, "bob")
	ws := openWorkspace(t, store, ada)
	ctx := context.Background()

	task := mustCreate(t, ws, models.CategoryLavoro, "Report")
	if err := ws.Sharing.AddShare(ctx, task.ID, adam.ID, models.PermissionReadOnly); err != nil {
		t.Fatalf("AddShare: %v", err)
	}

	users, err := ws.Sharing.SearchUsers(ctx, "ad")
	if err != nil {
		t.Fatalf("SearchUsers: %v", err)
	}
	if len(users) != 3 {
		t.Errorf("Expected 3 users matching ad, got %+v", users)
	}

	candidates, err := ws.Sharing.ShareCandidates(ctx, task.ID, "ad")
	if err != nil {
		t.Fatalf("ShareCandidates: %v", err)
	}
	if len(candidates) != 1 || candidates[0].Username != "adele" {
		t.Errorf("Expected only adele, got %+v", candidates)
	}

	if _, err := ws.Sharing.ShareCandidates(ctx, uuid.New(), "ad"); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Expected ErrTaskNotFound, got %v", err)
	}
}
