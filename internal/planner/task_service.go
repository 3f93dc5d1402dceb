package planner

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/chepyr/go-board-planner/internal/models"
	"github.com/google/uuid"
)

// TaskInput carries the fields of a new task.
type TaskInput struct {
	Title       string
	Description string
	DueDate     *time.Time
	Links       []string
	Color       *models.Color
	Image       []byte
}

// TaskEdit replaces the editable fields of a task. A nil Color keeps the
// current one, a nil Image keeps the current image unless ClearImage is set,
// and an empty Category keeps the task on its board.
type TaskEdit struct {
	Title       string
	Description string
	DueDate     *time.Time
	Links       []string
	Color       *models.Color
	Image       []byte
	ClearImage  bool
	Category    models.Category
}

// TaskService creates, edits, moves and queries the tasks on a user's boards.
type TaskService struct {
	boards *BoardService
}

func NewTaskService(boards *BoardService) *TaskService {
	return &TaskService{boards: boards}
}

func (s *TaskService) CreateTask(ctx context.Context, category models.Category, input TaskInput) (models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if err := validateTask(title, input.Description, input.DueDate, input.Links); err != nil {
		return models.Task{}, err
	}

	var created models.Task
	b := s.boards
	err := b.mutate(func() error {
		board := b.boardFor(category)
		if board == nil {
			return fmt.Errorf("%w: %s", ErrBoardNotFound, category)
		}

		due := models.Date(*input.DueDate)
		task := &models.Task{
			BoardID:     board.ID,
			CreatorID:   b.user.ID,
			Title:       title,
			Description: input.Description,
			DueDate:     &due,
			Color:       models.DefaultColor,
			Links:       append([]string{}, input.Links...),
			Position:    len(board.Tasks),
			Shares:      map[uuid.UUID]models.Permission{},
		}
		if input.Color != nil {
			task.Color = *input.Color
		}
		if input.Image != nil {
			task.Image = append([]byte(nil), input.Image...)
		}

		id, err := b.store.SaveTask(ctx, task)
		if err != nil {
			return b.fail("save task", err)
		}
		task.ID = id
		board.Tasks = append(board.Tasks, task)
		created = *task.Clone()
		return nil
	})
	return created, err
}

// DeleteTask removes the task from whichever board holds it. Deleting an
// unknown task is a no-op.
func (s *TaskService) DeleteTask(ctx context.Context, taskID uuid.UUID) error {
	b := s.boards
	return b.mutate(func() error {
		board, index := b.locateTask(taskID)
		if board == nil {
			return errNoChange
		}
		if err := b.store.DeleteTask(ctx, taskID); err != nil {
			return b.fail("delete task", err)
		}
		board.Tasks = append(board.Tasks[:index:index], board.Tasks[index+1:]...)
		board.Reindex()
		return nil
	})
}

func (s *TaskService) SetCompleted(ctx context.Context, taskID uuid.UUID, completed bool) (models.Task, error) {
	return s.updateTask(ctx, taskID, func(task *models.Task) {
		task.Completed = completed
	})
}

// EditTask validates and applies the edit. When the category names another
// board the task is moved to the end of that board.
func (s *TaskService) EditTask(ctx context.Context, taskID uuid.UUID, edit TaskEdit) (models.Task, error) {
	title := strings.TrimSpace(edit.Title)
	if err := validateTask(title, edit.Description, edit.DueDate, edit.Links); err != nil {
		return models.Task{}, err
	}
	if edit.Category != "" && !edit.Category.Valid() {
		return models.Task{}, fmt.Errorf("%w: %q", ErrInvalidCategory, edit.Category)
	}

	var edited models.Task
	b := s.boards
	err := b.mutate(func() error {
		source, index := b.locateTask(taskID)
		if source == nil {
			return ErrTaskNotFound
		}
		dest := source
		if edit.Category != "" && edit.Category != source.Category {
			dest = b.boardFor(edit.Category)
			if dest == nil {
				return fmt.Errorf("%w: %s", ErrBoardNotFound, edit.Category)
			}
		}

		task := source.Tasks[index].Clone()
		due := models.Date(*edit.DueDate)
		task.Title = title
		task.Description = edit.Description
		task.DueDate = &due
		task.Links = append([]string{}, edit.Links...)
		if edit.Color != nil {
			task.Color = *edit.Color
		}
		switch {
		case edit.ClearImage:
			task.Image = nil
		case edit.Image != nil:
			task.Image = append([]byte(nil), edit.Image...)
		}
		if dest != source {
			task.BoardID = dest.ID
			task.Position = len(dest.Tasks)
		}

		if err := b.store.UpdateTask(ctx, task); err != nil {
			return b.fail("update task", err)
		}

		if dest == source {
			source.Tasks[index] = task
		} else {
			source.Tasks = append(source.Tasks[:index:index], source.Tasks[index+1:]...)
			source.Reindex()
			dest.Tasks = append(dest.Tasks, task)
			dest.Reindex()
		}
		edited = *task.Clone()
		return nil
	})
	return edited, err
}

// Task returns a copy of the task.
func (s *TaskService) Task(taskID uuid.UUID) (models.Task, error) {
	b := s.boards
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	board, index := b.locateTask(taskID)
	if board == nil {
		return models.Task{}, ErrTaskNotFound
	}
	return *board.Tasks[index].Clone(), nil
}

// QueryByDate returns the tasks due on the given day across all boards,
// completed or not.
func (s *TaskService) QueryByDate(ctx context.Context, date time.Time) ([]models.Task, error) {
	b := s.boards
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	found, err := b.store.FindTasksByDate(ctx, b.user.ID, models.Date(date))
	if err != nil {
		return nil, b.fail("find tasks by date", err)
	}
	return s.collect(found), nil
}

// Search matches the query, case-insensitively, against title, description
// and links. A blank query matches nothing.
func (s *TaskService) Search(ctx context.Context, query string) ([]models.Task, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Task{}, nil
	}

	b := s.boards
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	found, err := b.store.SearchTasks(ctx, b.user.ID, query)
	if err != nil {
		return nil, b.fail("search tasks", err)
	}
	return s.collect(found), nil
}

// collect maps store results onto the in-memory tasks, in board order.
func (s *TaskService) collect(found []*models.Task) []models.Task {
	ids := make(map[uuid.UUID]struct{}, len(found))
	for _, t := range found {
		ids[t.ID] = struct{}{}
	}
	result := []models.Task{}
	for _, board := range s.boards.boards {
		for _, t := range board.Tasks {
			if _, ok := ids[t.ID]; ok {
				result = append(result, *t.Clone())
			}
		}
	}
	return result
}

// updateTask applies change to a copy of the task, persists it and swaps it in.
func (s *TaskService) updateTask(ctx context.Context, taskID uuid.UUID, change func(*models.Task)) (models.Task, error) {
	var updated models.Task
	b := s.boards
	err := b.mutate(func() error {
		board, index := b.locateTask(taskID)
		if board == nil {
			return ErrTaskNotFound
		}
		task := board.Tasks[index].Clone()
		change(task)
		if err := b.store.UpdateTask(ctx, task); err != nil {
			return b.fail("update task", err)
		}
		board.Tasks[index] = task
		updated = *task.Clone()
		return nil
	})
	return updated, err
}

func validateTask(title, description string, dueDate *time.Time, links []string) error {
	if title == "" {
		return ErrMissingTitle
	}
	if utf8.RuneCountInString(title) > models.TaskTitleMaxLen {
		return ErrTitleTooLong
	}
	if utf8.RuneCountInString(description) > models.TaskDescriptionMaxLen {
		return ErrDescriptionTooLong
	}
	if dueDate == nil {
		return ErrMissingDueDate
	}
	for _, link := range links {
		if strings.TrimSpace(link) == "" {
			return ErrEmptyLink
		}
	}
	return nil
}
