package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/chepyr/go-board-planner/internal/models"
	"github.com/google/uuid"
)

// defines methods for board db operations
type BoardRepositoryInterface interface {
	Create(ctx context.Context, board *models.Board) error
	Update(ctx context.Context, board *models.Board) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*models.Board, error)
}

type BoardRepository struct {
	db *sql.DB
}

func NewBoardRepository(db *sql.DB) *BoardRepository {
	return &BoardRepository{db: db}
}

// Create inserts the board, assigning an id when it has none.
func (r *BoardRepository) Create(ctx context.Context, board *models.Board) error {
	if board.ID == uuid.Nil {
		board.ID = uuid.New()
	}
	query := `INSERT INTO boards (id, owner_id, category, description, position)
	 VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(
		ctx, query, board.ID, board.OwnerID, board.Category, board.Description, board.Position)
	return err
}

func (r *BoardRepository) Update(ctx context.Context, board *models.Board) error {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM boards WHERE id = $1)`
	err := r.db.QueryRowContext(ctx, query, board.ID).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("board with id %s does not exist", board.ID)
	}

	query = `UPDATE boards SET category = $1, description = $2, position = $3 WHERE id = $4`
	_, err = r.db.ExecContext(ctx, query, board.Category, board.Description, board.Position, board.ID)
	return err
}

// Delete removes the board and everything hanging off its tasks.
func (r *BoardRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		var exists bool
		query := `SELECT EXISTS(SELECT 1 FROM boards WHERE id = $1)`
		if err := tx.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("board with id %s does not exist", id)
		}

		cascade := []string{
			`DELETE FROM task_shares WHERE task_id IN (SELECT id FROM tasks WHERE board_id = $1)`,
			`DELETE FROM task_links WHERE task_id IN (SELECT id FROM tasks WHERE board_id = $1)`,
			`DELETE FROM tasks WHERE board_id = $1`,
			`DELETE FROM boards WHERE id = $1`,
		}
		for _, stmt := range cascade {
			if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListByOwnerID returns the owner's boards in position order, without tasks.
func (r *BoardRepository) ListByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*models.Board, error) {
	query := `SELECT id, owner_id, category, description, position
	 FROM boards WHERE owner_id = $1 ORDER BY position`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var boards []*models.Board
	for rows.Next() {
		board := &models.Board{Tasks: []*models.Task{}}
		if err := rows.Scan(
			&board.ID, &board.OwnerID, &board.Category, &board.Description, &board.Position,
		); err != nil {
			return nil, err
		}
		boards = append(boards, board)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return boards, nil
}
