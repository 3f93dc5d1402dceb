package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/chepyr/go-board-planner/internal/models"
	"github.com/google/uuid"
)

const taskColumns = `t.id, t.board_id, t.creator_id, t.title, t.description,
 t.due_date, t.color, t.image, t.completed, t.position`

// defines methods for task db operations
type TaskRepositoryInterface interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
	SaveOrdering(ctx context.Context, boards ...*models.Board) error
	ListByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*models.Task, error)
	ListByDueDate(ctx context.Context, ownerID uuid.UUID, date time.Time) ([]*models.Task, error)
	Search(ctx context.Context, ownerID uuid.UUID, query string) ([]*models.Task, error)
}

type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts the task and its links, assigning an id when it has none.
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `INSERT INTO tasks (id, board_id, creator_id, title, description,
		 due_date, color, image, completed, position)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
		_, err := tx.ExecContext(ctx, query,
			task.ID, task.BoardID, task.CreatorID, task.Title, task.Description,
			dueDateValue(task.DueDate), task.Color.Hex(), task.Image, task.Completed, task.Position)
		if err != nil {
			return err
		}
		return replaceLinks(ctx, tx, task.ID, task.Links)
	})
}

func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks t WHERE t.id = $1`
	task, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}
	links, err := linksFor(ctx, r.db, task.ID)
	if err != nil {
		return nil, err
	}
	task.Links = links
	return task, nil
}

// Update writes every field of the task, its board and position included, and
// replaces its links. When the task left its board the positions after it
// there shift up by one.
func (r *TaskRepository) Update(ctx context.Context, task *models.Task) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		oldBoard, oldPosition, err := placement(ctx, tx, task.ID)
		if err != nil {
			return err
		}

		query := `UPDATE tasks SET board_id = $1, title = $2, description = $3, due_date = $4,
		 color = $5, image = $6, completed = $7, position = $8 WHERE id = $9`
		_, err = tx.ExecContext(ctx, query,
			task.BoardID, task.Title, task.Description, dueDateValue(task.DueDate),
			task.Color.Hex(), task.Image, task.Completed, task.Position, task.ID)
		if err != nil {
			return err
		}
		if oldBoard != task.BoardID {
			if err := closeGap(ctx, tx, oldBoard, oldPosition); err != nil {
				return err
			}
		}
		return replaceLinks(ctx, tx, task.ID, task.Links)
	})
}

// Delete removes the task with its links and shares and closes the gap it
// leaves in its board.
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		boardID, position, err := placement(ctx, tx, id)
		if err != nil {
			return err
		}
		for _, stmt := range []string{
			`DELETE FROM task_shares WHERE task_id = $1`,
			`DELETE FROM task_links WHERE task_id = $1`,
			`DELETE FROM tasks WHERE id = $1`,
		} {
			if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
				return err
			}
		}
		return closeGap(ctx, tx, boardID, position)
	})
}

// SaveOrdering stores board and position of every task on the given boards in one transaction.
func (r *TaskRepository) SaveOrdering(ctx context.Context, boards ...*models.Board) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, board := range boards {
			for position, task := range board.Tasks {
				_, err := tx.ExecContext(ctx,
					`UPDATE tasks SET board_id = $1, position = $2 WHERE id = $3`,
					board.ID, position, task.ID)
				if err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// ListByOwnerID returns every task on the owner's boards with links and shares,
// ordered by board position then task position.
func (r *TaskRepository) ListByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks t JOIN boards b ON b.id = t.board_id
	 WHERE b.owner_id = $1 ORDER BY b.position, t.position`
	tasks, err := r.list(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*models.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	linkRows, err := r.db.QueryContext(ctx, `SELECT l.task_id, l.url FROM task_links l
	 JOIN tasks t ON t.id = l.task_id JOIN boards b ON b.id = t.board_id
	 WHERE b.owner_id = $1 ORDER BY l.task_id, l.position`, ownerID)
	if err != nil {
		return nil, err
	}
	defer linkRows.Close()
	for linkRows.Next() {
		var taskID uuid.UUID
		var url string
		if err := linkRows.Scan(&taskID, &url); err != nil {
			return nil, err
		}
		if t, ok := byID[taskID]; ok {
			t.Links = append(t.Links, url)
		}
	}
	if err := linkRows.Err(); err != nil {
		return nil, err
	}

	shareRows, err := r.db.QueryContext(ctx, `SELECT s.task_id, s.user_id, s.permission FROM task_shares s
	 JOIN tasks t ON t.id = s.task_id JOIN boards b ON b.id = t.board_id
	 WHERE b.owner_id = $1`, ownerID)
	if err != nil {
		return nil, err
	}
	defer shareRows.Close()
	for shareRows.Next() {
		var taskID, userID uuid.UUID
		var permission models.Permission
		if err := shareRows.Scan(&taskID, &userID, &permission); err != nil {
			return nil, err
		}
		if t, ok := byID[taskID]; ok {
			t.Shares[userID] = permission
		}
	}
	return tasks, shareRows.Err()
}

func (r *TaskRepository) ListByDueDate(ctx context.Context, ownerID uuid.UUID, date time.Time) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks t JOIN boards b ON b.id = t.board_id
	 WHERE b.owner_id = $1 AND t.due_date = $2 ORDER BY b.position, t.position`
	return r.list(ctx, query, ownerID, models.FormatDate(date))
}

// Search matches title, description and links case-insensitively.
func (r *TaskRepository) Search(ctx context.Context, ownerID uuid.UUID, query string) ([]*models.Task, error) {
	stmt := `SELECT ` + taskColumns + ` FROM tasks t JOIN boards b ON b.id = t.board_id
	 WHERE b.owner_id = $1 AND (
	   LOWER(t.title) LIKE $2 ESCAPE '\'
	   OR LOWER(t.description) LIKE $2 ESCAPE '\'
	   OR EXISTS (SELECT 1 FROM task_links l WHERE l.task_id = t.id AND LOWER(l.url) LIKE $2 ESCAPE '\'))
	 ORDER BY b.position, t.position`
	return r.list(ctx, stmt, ownerID, likePattern(query))
}

func (r *TaskRepository) list(ctx context.Context, query string, args ...any) ([]*models.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []*models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (*models.Task, error) {
	task := &models.Task{Shares: map[uuid.UUID]models.Permission{}}
	var dueDate sql.NullString
	var color string
	if err := row.Scan(
		&task.ID, &task.BoardID, &task.CreatorID, &task.Title, &task.Description,
		&dueDate, &color, &task.Image, &task.Completed, &task.Position,
	); err != nil {
		return nil, err
	}
	if dueDate.Valid && dueDate.String != "" {
		due, err := models.ParseDate(dueDate.String)
		if err != nil {
			return nil, fmt.Errorf("task %s: %w", task.ID, err)
		}
		task.DueDate = &due
	}
	parsed, err := models.ParseColor(color)
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", task.ID, err)
	}
	task.Color = parsed
	return task, nil
}

func linksFor(ctx context.Context, q querier, taskID uuid.UUID) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT url FROM task_links WHERE task_id = $1 ORDER BY position`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := []string{}
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, err
		}
		links = append(links, url)
	}
	return links, rows.Err()
}

func replaceLinks(ctx context.Context, q querier, taskID uuid.UUID, links []string) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM task_links WHERE task_id = $1`, taskID); err != nil {
		return err
	}
	for i, url := range links {
		if _, err := q.ExecContext(ctx,
			`INSERT INTO task_links (task_id, position, url) VALUES ($1, $2, $3)`,
			taskID, i, url); err != nil {
			return err
		}
	}
	return nil
}

func placement(ctx context.Context, q querier, taskID uuid.UUID) (uuid.UUID, int, error) {
	var boardID uuid.UUID
	var position int
	err := q.QueryRowContext(ctx,
		`SELECT board_id, position FROM tasks WHERE id = $1`, taskID).Scan(&boardID, &position)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, 0, fmt.Errorf("task with id %s does not exist", taskID)
	}
	return boardID, position, err
}

func closeGap(ctx context.Context, q querier, boardID uuid.UUID, position int) error {
	_, err := q.ExecContext(ctx,
		`UPDATE tasks SET position = position - 1 WHERE board_id = $1 AND position > $2`,
		boardID, position)
	return err
}

func dueDateValue(due *time.Time) any {
	if due == nil {
		return nil
	}
	return models.FormatDate(*due)
}
