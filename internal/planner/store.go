package planner

import (
	"context"
	"time"

	"github.com/chepyr/go-board-planner/internal/models"
	"github.com/google/uuid"
)

// Store is everything the services need from persistence.
// Implementations bound their own timeouts; the services never retry.
type Store interface {
	// LoadBoards returns the user's boards with their tasks, links and shares.
	LoadBoards(ctx context.Context, userID uuid.UUID) ([]*models.Board, error)
	SaveBoard(ctx context.Context, board *models.Board) (uuid.UUID, error)
	UpdateBoard(ctx context.Context, board *models.Board) error
	// DeleteBoard removes the board together with its tasks.
	DeleteBoard(ctx context.Context, id uuid.UUID) error

	SaveTask(ctx context.Context, task *models.Task) (uuid.UUID, error)
	// UpdateTask writes every field including board and position, replaces
	// the links, and closes the gap left in the old board if the board changed.
	UpdateTask(ctx context.Context, task *models.Task) error
	// DeleteTask removes the task with its links and shares and closes the
	// gap in its board.
	DeleteTask(ctx context.Context, id uuid.UUID) error
	// SaveOrdering writes board id and position of every task of the given boards atomically.
	SaveOrdering(ctx context.Context, boards ...*models.Board) error
	FindTasksByDate(ctx context.Context, userID uuid.UUID, date time.Time) ([]*models.Task, error)
	SearchTasks(ctx context.Context, userID uuid.UUID, query string) ([]*models.Task, error)

	SaveUser(ctx context.Context, user *models.User) error
	// FindUserByUsername returns nil, nil when nobody has the name.
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	SearchUsers(ctx context.Context, query string) ([]models.User, error)

	SaveShare(ctx context.Context, taskID, userID uuid.UUID, permission models.Permission) error
	UpdateShare(ctx context.Context, taskID, userID uuid.UUID, permission models.Permission) error
	DeleteShare(ctx context.Context, taskID, userID uuid.UUID) error
	ListSharedTasks(ctx context.Context, userID uuid.UUID) ([]models.SharedTask, error)
}
