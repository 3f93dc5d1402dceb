package db

import (
	"context"
	"database/sql"
	"strings"

	"github.com/chepyr/go-board-planner/internal/models"
	"github.com/google/uuid"
)

const userSearchLimit = 20

// defines methods for user db operations
type UserRepositoryInterface interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Search(ctx context.Context, query string) ([]models.User, error)
}

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (id, username, password_hash, created_at)
	 VALUES ($1, $2, $3, $4)`

	_, err := r.db.ExecContext(
		ctx, query, user.ID, user.Username, user.PasswordHash, user.CreatedAt)
	return err
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT id, username, password_hash, created_at FROM users WHERE username = $1`
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt,
	)
	return user, err
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT id, username, password_hash, created_at FROM users WHERE id = $1`
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt,
	)
	return user, err
}

// Search returns users whose username contains the query, ignoring case.
// A blank query matches nobody.
func (r *UserRepository) Search(ctx context.Context, query string) ([]models.User, error) {
	users := []models.User{}
	query = strings.TrimSpace(query)
	if query == "" {
		return users, nil
	}

	rows, err := r.db.QueryContext(ctx, `SELECT id, username, created_at FROM users
	 WHERE LOWER(username) LIKE $1 ESCAPE '\' ORDER BY username LIMIT $2`,
		likePattern(query), userSearchLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Username, &user.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// likePattern builds a case-insensitive "contains" pattern for LIKE ... ESCAPE '\'.
func likePattern(s string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(strings.ToLower(s))
	return "%" + escaped + "%"
}
