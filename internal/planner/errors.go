package planner

import (
	"errors"
	"fmt"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrInvalidCategory = errors.New("invalid category")
	ErrDuplicateBoard  = errors.New("board already exists for this category")
	ErrLastBoard       = errors.New("cannot delete the last board")
	ErrNotFound        = errors.New("not found")
	ErrAlreadyShared   = errors.New("task already shared with this user")
	ErrNotShared       = errors.New("task is not shared with this user")
	ErrStorage         = errors.New("storage error")
	// ErrWorkspaceClosed is returned by changes to a workspace that was
	// dropped because the data was changed elsewhere. Reopen and retry.
	ErrWorkspaceClosed = errors.New("workspace closed")
)

var (
	ErrMissingTitle       = fmt.Errorf("%w: title is required", ErrValidation)
	ErrTitleTooLong       = fmt.Errorf("%w: title is too long", ErrValidation)
	ErrMissingDueDate     = fmt.Errorf("%w: due date is required", ErrValidation)
	ErrDescriptionTooLong = fmt.Errorf("%w: description is too long", ErrValidation)
	ErrEmptyLink          = fmt.Errorf("%w: links cannot be empty", ErrValidation)
	ErrShareWithCreator   = fmt.Errorf("%w: a task cannot be shared with its creator", ErrValidation)
	ErrInvalidPermission  = fmt.Errorf("%w: unknown permission", ErrValidation)

	ErrBoardNotFound = fmt.Errorf("board %w", ErrNotFound)
	ErrTaskNotFound  = fmt.Errorf("task %w", ErrNotFound)
)

// storageError wraps a failure of the store so callers can match both
// ErrStorage and the original error.
func storageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}
