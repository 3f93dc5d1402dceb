package planner

import (
	"context"

	"github.com/chepyr/go-board-planner/internal/models"
	"github.com/google/uuid"
)

// SharingService manages who else can see or change the user's tasks.
type SharingService struct {
	boards *BoardService
}

func NewSharingService(boards *BoardService) *SharingService {
	return &SharingService{boards: boards}
}

// SearchUsers passes the query to the store as is.
func (s *SharingService) SearchUsers(ctx context.Context, query string) ([]models.User, error) {
	users, err := s.boards.store.SearchUsers(ctx, query)
	if err != nil {
		return nil, s.boards.fail("search users", err)
	}
	return users, nil
}

// ShareCandidates returns the users matching query the task can still be
// shared with: neither its creator nor already holding a grant.
func (s *SharingService) ShareCandidates(ctx context.Context, taskID uuid.UUID, query string) ([]models.User, error) {
	b := s.boards
	b.mutex.RLock()
	board, index := b.locateTask(taskID)
	var task *models.Task
	if board != nil {
		task = board.Tasks[index].Clone()
	}
	b.mutex.RUnlock()
	if task == nil {
		return nil, ErrTaskNotFound
	}

	users, err := s.SearchUsers(ctx, query)
	if err != nil {
		return nil, err
	}

	candidates := []models.User{}
	for _, u := range users {
		if u.ID == task.CreatorID {
			continue
		}
		if _, shared := task.Shares[u.ID]; shared {
			continue
		}
		candidates = append(candidates, u)
	}
	return candidates, nil
}

// AddShare grants a new permission. Changing an existing grant goes through
// ChangePermission.
func (s *SharingService) AddShare(ctx context.Context, taskID, userID uuid.UUID, permission models.Permission) error {
	if !permission.Valid() {
		return ErrInvalidPermission
	}
	b := s.boards
	return b.mutate(func() error {
		board, index := b.locateTask(taskID)
		if board == nil {
			return ErrTaskNotFound
		}
		task := board.Tasks[index]
		if userID == task.CreatorID {
			return ErrShareWithCreator
		}
		if _, exists := task.Shares[userID]; exists {
			return ErrAlreadyShared
		}
		if err := b.store.SaveShare(ctx, taskID, userID, permission); err != nil {
			return b.fail("save share", err)
		}
		updated := task.Clone()
		updated.Shares[userID] = permission
		board.Tasks[index] = updated
		return nil
	})
}

// RemoveShare revokes the user's grant if there is one.
func (s *SharingService) RemoveShare(ctx context.Context, taskID, userID uuid.UUID) error {
	b := s.boards
	return b.mutate(func() error {
		board, index := b.locateTask(taskID)
		if board == nil {
			return ErrTaskNotFound
		}
		task := board.Tasks[index]
		if _, exists := task.Shares[userID]; !exists {
			return errNoChange
		}
		if err := b.store.DeleteShare(ctx, taskID, userID); err != nil {
			return b.fail("delete share", err)
		}
		updated := task.Clone()
		delete(updated.Shares, userID)
		board.Tasks[index] = updated
		return nil
	})
}

func (s *SharingService) ChangePermission(ctx context.Context, taskID, userID uuid.UUID, permission models.Permission) error {
	if !permission.Valid() {
		return ErrInvalidPermission
	}
	b := s.boards
	return b.mutate(func() error {
		board, index := b.locateTask(taskID)
		if board == nil {
			return ErrTaskNotFound
		}
		task := board.Tasks[index]
		if _, exists := task.Shares[userID]; !exists {
			return ErrNotShared
		}
		if err := b.store.UpdateShare(ctx, taskID, userID, permission); err != nil {
			return b.fail("update share", err)
		}
		updated := task.Clone()
		updated.Shares[userID] = permission
		board.Tasks[index] = updated
		return nil
	})
}

// SharedWithMe lists the tasks other users shared with this user.
func (s *SharingService) SharedWithMe(ctx context.Context) ([]models.SharedTask, error) {
	shared, err := s.boards.store.ListSharedTasks(ctx, s.boards.user.ID)
	if err != nil {
		return nil, s.boards.fail("list shared tasks", err)
	}
	if shared == nil {
		shared = []models.SharedTask{}
	}
	return shared, nil
}
