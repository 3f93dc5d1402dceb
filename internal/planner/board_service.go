package planner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"unicode/utf8"

	"github.com/chepyr/go-board-planner/internal/models"
	"github.com/chepyr/go-board-planner/internal/notify"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// errNoChange ends a mutation successfully without publishing a change.
var errNoChange = errors.New("no change")

// BoardService owns the boards of one user. The task and sharing services of
// the same user work on the state it holds and share its lock and bus.
type BoardService struct {
	mutex  sync.RWMutex
	store  Store
	bus    *notify.Bus
	user   models.User
	boards []*models.Board
	closed bool
	logger log.FieldLogger
}

// NewBoardService loads the user's boards, creating the default category
// boards the first time the user is seen.
func NewBoardService(ctx context.Context, store Store, bus *notify.Bus, user models.User) (*BoardService, error) {
	if bus == nil {
		bus = notify.NewBus(nil)
	}
	s := &BoardService{
		store:  store,
		bus:    bus,
		user:   user,
		logger: log.WithFields(log.Fields{"user": user.Username, "user_id": user.ID}),
	}

	boards, err := store.LoadBoards(ctx, user.ID)
	if err != nil {
		return nil, s.fail("load boards", err)
	}
	if len(boards) == 0 {
		for i, category := range models.Categories {
			board := &models.Board{OwnerID: user.ID, Category: category, Position: i}
			id, err := store.SaveBoard(ctx, board)
			if err != nil {
				return nil, s.fail("create default board", err)
			}
			board.ID = id
			boards = append(boards, board)
		}
		s.logger.Info("created default boards")
	}

	sort.SliceStable(boards, func(i, j int) bool { return boards[i].Position < boards[j].Position })
	for _, b := range boards {
		if b.Tasks == nil {
			b.Tasks = []*models.Task{}
		}
		b.Reindex()
	}
	s.boards = boards
	return s, nil
}

func (s *BoardService) User() models.User {
	return s.user
}

// Subscribe registers an observer called after every successful mutation
// made through any service of this user.
func (s *BoardService) Subscribe(observer notify.Observer) {
	s.bus.Subscribe(observer)
}

// ListBoards returns copies of the boards in position order.
func (s *BoardService) ListBoards() []models.Board {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	result := make([]models.Board, 0, len(s.boards))
	for _, b := range s.boards {
		result = append(result, *b.Clone())
	}
	return result
}

func (s *BoardService) Board(category models.Category) (models.Board, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	board := s.boardFor(category)
	if board == nil {
		return models.Board{}, ErrBoardNotFound
	}
	return *board.Clone(), nil
}

func (s *BoardService) CreateBoard(ctx context.Context, category models.Category, description string) (models.Board, error) {
	if !category.Valid() {
		return models.Board{}, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}
	if err := validateBoardDescription(description); err != nil {
		return models.Board{}, err
	}

	var created models.Board
	err := s.mutate(func() error {
		if s.boardFor(category) != nil {
			return fmt.Errorf("%w: %s", ErrDuplicateBoard, category)
		}
		if len(s.boards) >= models.MaxBoards {
			return fmt.Errorf("%w: limit of %d boards reached", ErrDuplicateBoard, models.MaxBoards)
		}

		position := 0
		for _, b := range s.boards {
			if b.Position >= position {
				position = b.Position + 1
			}
		}
		board := &models.Board{
			OwnerID:     s.user.ID,
			Category:    category,
			Description: description,
			Position:    position,
			Tasks:       []*models.Task{},
		}
		id, err := s.store.SaveBoard(ctx, board)
		if err != nil {
			return s.fail("save board", err)
		}
		board.ID = id
		s.boards = append(s.boards, board)
		created = *board.Clone()
		return nil
	})
	return created, err
}

// DeleteBoard removes the board and every task on it. The last board of a
// user cannot be deleted.
func (s *BoardService) DeleteBoard(ctx context.Context, category models.Category) error {
	return s.mutate(func() error {
		index := -1
		for i, b := range s.boards {
			if b.Category == category {
				index = i
				break
			}
		}
		if index < 0 {
			return fmt.Errorf("%w: %s", ErrBoardNotFound, category)
		}
		if len(s.boards) == 1 {
			return ErrLastBoard
		}
		if err := s.store.DeleteBoard(ctx, s.boards[index].ID); err != nil {
			return s.fail("delete board", err)
		}
		s.boards = append(s.boards[:index:index], s.boards[index+1:]...)
		return nil
	})
}

func (s *BoardService) UpdateDescription(ctx context.Context, category models.Category, description string) error {
	if err := validateBoardDescription(description); err != nil {
		return err
	}
	return s.mutate(func() error {
		board := s.boardFor(category)
		if board == nil {
			return fmt.Errorf("%w: %s", ErrBoardNotFound, category)
		}
		updated := *board
		updated.Description = description
		if err := s.store.UpdateBoard(ctx, &updated); err != nil {
			return s.fail("update board", err)
		}
		board.Description = description
		return nil
	})
}

// mutate runs fn under the write lock and publishes a change when it succeeds.
func (s *BoardService) mutate(fn func() error) error {
	err := func() error {
		s.mutex.Lock()
		defer s.mutex.Unlock()
		if s.closed {
			return ErrWorkspaceClosed
		}
		return fn()
	}()
	if errors.Is(err, errNoChange) {
		return nil
	}
	if err != nil {
		return err
	}
	s.bus.Publish()
	return nil
}

// close waits for the running change, if any, and refuses later ones.
func (s *BoardService) close() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.closed = true
}

func (s *BoardService) fail(op string, err error) error {
	s.logger.WithError(err).WithField("op", op).Error("storage failure")
	return storageError(op, err)
}

func (s *BoardService) boardFor(category models.Category) *models.Board {
	for _, b := range s.boards {
		if b.Category == category {
			return b
		}
	}
	return nil
}

// locateTask scans the boards for the task. Boards are few and short.
func (s *BoardService) locateTask(taskID uuid.UUID) (*models.Board, int) {
	for _, b := range s.boards {
		if i := b.IndexOf(taskID); i >= 0 {
			return b, i
		}
	}
	return nil, -1
}

// replaceBoard swaps in an updated copy of a board.
func (s *BoardService) replaceBoard(board *models.Board) {
	for i, b := range s.boards {
		if b.ID == board.ID {
			s.boards[i] = board
			return
		}
	}
}

func validateBoardDescription(description string) error {
	if utf8.RuneCountInString(description) > models.BoardDescriptionMaxLen {
		return ErrDescriptionTooLong
	}
	return nil
}
