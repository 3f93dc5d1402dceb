package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/chepyr/go-board-planner/internal/models"
	"github.com/google/uuid"
)

// defines methods for task share db operations
type ShareRepositoryInterface interface {
	Create(ctx context.Context, taskID, userID uuid.UUID, permission models.Permission) error
	Update(ctx context.Context, taskID, userID uuid.UUID, permission models.Permission) error
	Delete(ctx context.Context, taskID, userID uuid.UUID) error
	ListSharedWith(ctx context.Context, userID uuid.UUID) ([]models.SharedTask, error)
}

type ShareRepository struct {
	db *sql.DB
}

func NewShareRepository(db *sql.DB) *ShareRepository {
	return &ShareRepository{db: db}
}

func (r *ShareRepository) Create(ctx context.Context, taskID, userID uuid.UUID, permission models.Permission) error {
	query := `INSERT INTO task_shares (task_id, user_id, permission) VALUES ($1, $2, $3)`
	_, err := r.db.ExecContext(ctx, query, taskID, userID, permission)
	return err
}

func (r *ShareRepository) Update(ctx context.Context, taskID, userID uuid.UUID, permission models.Permission) error {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM task_shares WHERE task_id = $1 AND user_id = $2)`
	err := r.db.QueryRowContext(ctx, query, taskID, userID).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("task %s is not shared with user %s", taskID, userID)
	}

	query = `UPDATE task_shares SET permission = $1 WHERE task_id = $2 AND user_id = $3`
	_, err = r.db.ExecContext(ctx, query, permission, taskID, userID)
	return err
}

func (r *ShareRepository) Delete(ctx context.Context, taskID, userID uuid.UUID) error {
	query := `DELETE FROM task_shares WHERE task_id = $1 AND user_id = $2`
	_, err := r.db.ExecContext(ctx, query, taskID, userID)
	return err
}

// ListSharedWith returns the tasks shared with the user, with the name of
// the user owning each one, ordered by owner then due date.
func (r *ShareRepository) ListSharedWith(ctx context.Context, userID uuid.UUID) ([]models.SharedTask, error) {
	query := `SELECT ` + taskColumns + `, u.username, s.permission
	 FROM task_shares s
	 JOIN tasks t ON t.id = s.task_id
	 JOIN boards b ON b.id = t.board_id
	 JOIN users u ON u.id = b.owner_id
	 WHERE s.user_id = $1
	 ORDER BY u.username, t.due_date, t.title`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shared := []models.SharedTask{}
	for rows.Next() {
		var owner string
		var permission models.Permission
		task, err := scanTask(withTrailing(rows, &owner, &permission))
		if err != nil {
			return nil, err
		}
		shared = append(shared, models.SharedTask{Task: *task, OwnerName: owner, Permission: permission})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range shared {
		links, err := linksFor(ctx, r.db, shared[i].Task.ID)
		if err != nil {
			return nil, err
		}
		shared[i].Task.Links = links
	}
	return shared, nil
}

// trailingScanner appends extra destinations after the task columns.
type trailingScanner struct {
	row   scanner
	extra []any
}

func withTrailing(row scanner, extra ...any) scanner {
	return trailingScanner{row: row, extra: extra}
}

func (s trailingScanner) Scan(dest ...any) error {
	return s.row.Scan(append(dest, s.extra...)...)
}
