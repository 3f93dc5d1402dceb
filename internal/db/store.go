package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/chepyr/go-board-planner/internal/models"
	"github.com/google/uuid"
)

// Store backs the planner services with the SQL repositories.
type Store struct {
	Users  UserRepositoryInterface
	Boards BoardRepositoryInterface
	Tasks  TaskRepositoryInterface
	Shares ShareRepositoryInterface
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		Users:  NewUserRepository(db),
		Boards: NewBoardRepository(db),
		Tasks:  NewTaskRepository(db),
		Shares: NewShareRepository(db),
	}
}

func (s *Store) LoadBoards(ctx context.Context, userID uuid.UUID) ([]*models.Board, error) {
	boards, err := s.Boards.ListByOwnerID(ctx, userID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.Tasks.ListByOwnerID(ctx, userID)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*models.Board, len(boards))
	for _, b := range boards {
		byID[b.ID] = b
	}
	for _, t := range tasks {
		if b, ok := byID[t.BoardID]; ok {
			b.Tasks = append(b.Tasks, t)
		}
	}
	return boards, nil
}

func (s *Store) SaveBoard(ctx context.Context, board *models.Board) (uuid.UUID, error) {
	stored := *board
	stored.ID = uuid.Nil
	if err := s.Boards.Create(ctx, &stored); err != nil {
		return uuid.Nil, err
	}
	return stored.ID, nil
}

func (s *Store) UpdateBoard(ctx context.Context, board *models.Board) error {
	return s.Boards.Update(ctx, board)
}

func (s *Store) DeleteBoard(ctx context.Context, id uuid.UUID) error {
	return s.Boards.Delete(ctx, id)
}

func (s *Store) SaveTask(ctx context.Context, task *models.Task) (uuid.UUID, error) {
	stored := *task
	stored.ID = uuid.Nil
	if err := s.Tasks.Create(ctx, &stored); err != nil {
		return uuid.Nil, err
	}
	return stored.ID, nil
}

func (s *Store) UpdateTask(ctx context.Context, task *models.Task) error {
	return s.Tasks.Update(ctx, task)
}

func (s *Store) DeleteTask(ctx context.Context, id uuid.UUID) error {
	return s.Tasks.Delete(ctx, id)
}

func (s *Store) SaveOrdering(ctx context.Context, boards ...*models.Board) error {
	return s.Tasks.SaveOrdering(ctx, boards...)
}

func (s *Store) FindTasksByDate(ctx context.Context, userID uuid.UUID, date time.Time) ([]*models.Task, error) {
	return s.Tasks.ListByDueDate(ctx, userID, date)
}

func (s *Store) SearchTasks(ctx context.Context, userID uuid.UUID, query string) ([]*models.Task, error) {
	return s.Tasks.Search(ctx, userID, query)
}

func (s *Store) SaveUser(ctx context.Context, user *models.User) error {
	return s.Users.Create(ctx, user)
}

// FindUserByUsername returns nil and no error when nobody has that name.
func (s *Store) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.Users.GetByUsername(ctx, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// FindUserByID returns nil and no error when there is no such user.
func (s *Store) FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.Users.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Store) SearchUsers(ctx context.Context, query string) ([]models.User, error) {
	return s.Users.Search(ctx, query)
}

func (s *Store) SaveShare(ctx context.Context, taskID, userID uuid.UUID, permission models.Permission) error {
	return s.Shares.Create(ctx, taskID, userID, permission)
}

func (s *Store) UpdateShare(ctx context.Context, taskID, userID uuid.UUID, permission models.Permission) error {
	return s.Shares.Update(ctx, taskID, userID, permission)
}

func (s *Store) DeleteShare(ctx context.Context, taskID, userID uuid.UUID) error {
	return s.Shares.Delete(ctx, taskID, userID)
}

func (s *Store) ListSharedTasks(ctx context.Context, userID uuid.UUID) ([]models.SharedTask, error) {
	return s.Shares.ListSharedWith(ctx, userID)
}
