package planner

import (
	"context"
	"fmt"

	"github.com/chepyr/go-board-planner/internal/models"
	"github.com/google/uuid"
)

// MoveTask places the task at index in the destination board's list, which
// may be the board it is already on. The index is where the task ends up and
// is clamped to the list bounds.
func (s *TaskService) MoveTask(ctx context.Context, taskID uuid.UUID, category models.Category, index int) (models.Task, error) {
	return s.relocate(ctx, taskID, category, index, false)
}

// DropTask is the drag-and-drop variant of MoveTask: slot is the gap between
// the rendered cards of the destination board the task was dropped into,
// counted with the dragged card still in place.
func (s *TaskService) DropTask(ctx context.Context, taskID uuid.UUID, category models.Category, slot int) (models.Task, error) {
	return s.relocate(ctx, taskID, category, slot, true)
}

func (s *TaskService) relocate(ctx context.Context, taskID uuid.UUID, category models.Category, index int, slot bool) (models.Task, error) {
	var moved models.Task
	b := s.boards
	err := b.mutate(func() error {
		dest := b.boardFor(category)
		if dest == nil {
			return fmt.Errorf("%w: %s", ErrBoardNotFound, category)
		}
		source, from := b.locateTask(taskID)
		if source == nil {
			return ErrTaskNotFound
		}

		sourceCopy := source.Clone()
		task := sourceCopy.Tasks[from]
		sourceCopy.Tasks = append(sourceCopy.Tasks[:from:from], sourceCopy.Tasks[from+1:]...)

		destCopy := sourceCopy
		if dest != source {
			destCopy = dest.Clone()
		}
		index = targetIndex(index, from, len(destCopy.Tasks), slot && dest == source)
		destCopy.Tasks = insertTask(destCopy.Tasks, index, task)

		sourceCopy.Reindex()
		destCopy.Reindex()
		changed := []*models.Board{destCopy}
		if dest != source {
			changed = append(changed, sourceCopy)
		}
		if err := b.store.SaveOrdering(ctx, changed...); err != nil {
			return b.fail("save ordering", err)
		}
		for _, board := range changed {
			b.replaceBoard(board)
		}
		moved = *task.Clone()
		return nil
	})
	return moved, err
}

// targetIndex turns the requested index into an insertion index for a list of
// size elements that no longer contains the moved task. A drop slot on the
// task's own board past its original index shifts left by one, since
// removing the task moved every later card up a slot.
func targetIndex(index, from, size int, sameBoardSlot bool) int {
	if sameBoardSlot && index > from {
		index--
	}
	if index < 0 {
		return 0
	}
	if index > size {
		return size
	}
	return index
}

func insertTask(tasks []*models.Task, index int, task *models.Task) []*models.Task {
	tasks = append(tasks, nil)
	copy(tasks[index+1:], tasks[index:])
	tasks[index] = task
	return tasks
}
