package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/chepyr/go-board-planner/internal/models"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	UsernameMinLen = 3
	UsernameMaxLen = 32
	PasswordMinLen = 4
)

var (
	ErrInvalidUsername    = errors.New("username must be 3 to 32 characters without spaces")
	ErrInvalidPassword    = fmt.Errorf("password must be at least %d characters", PasswordMinLen)
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnknownUser        = errors.New("unknown user")
)

// defines the user operations accounts need from the store
type UserStore interface {
	SaveUser(ctx context.Context, user *models.User) error
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Accounts registers users and checks their credentials.
type Accounts struct {
	store UserStore
	now   func() time.Time
}

func NewAccounts(store UserStore) *Accounts {
	return &Accounts{store: store, now: time.Now}
}

func (a *Accounts) Register(ctx context.Context, username, password string) (models.User, error) {
	username = strings.TrimSpace(username)
	if n := utf8.RuneCountInString(username); n < UsernameMinLen || n > UsernameMaxLen ||
		strings.ContainsAny(username, " \t\n") {
		return models.User{}, ErrInvalidUsername
	}
	if len(password) < PasswordMinLen {
		return models.User{}, ErrInvalidPassword
	}

	existing, err := a.store.FindUserByUsername(ctx, username)
	if err != nil {
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	if existing != nil {
		return models.User{}, ErrUsernameTaken
	}

	hash, err := Hash(password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	user := models.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    a.now().UTC(),
	}
	if err := a.store.SaveUser(ctx, &user); err != nil {
		return models.User{}, fmt.Errorf("save user: %w", err)
	}
	log.WithFields(log.Fields{"user": user.Username, "user_id": user.ID}).Info("user registered")
	return user, nil
}

// Login returns the user when the password matches. Unknown users and wrong
// passwords give the same error.
func (a *Accounts) Login(ctx context.Context, username, password string) (models.User, error) {
	user, err := a.store.FindUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	if user == nil || !Verify(password, user.PasswordHash) {
		return models.User{}, ErrInvalidCredentials
	}
	return *user, nil
}

// User resolves the owner of a session token.
func (a *Accounts) User(ctx context.Context, id uuid.UUID) (models.User, error) {
	user, err := a.store.FindUserByID(ctx, id)
	if err != nil {
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return models.User{}, ErrUnknownUser
	}
	return *user, nil
}
