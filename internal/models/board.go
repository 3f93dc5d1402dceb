package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Category is the title of a board. Only the values below exist.
type Category string

const (
	CategoryUniversita  Category = "UNIVERSITA"
	CategoryLavoro      Category = "LAVORO"
	CategoryTempoLibero Category = "TEMPO_LIBERO"
)

// Categories lists every category in default board order.
var Categories = []Category{CategoryUniversita, CategoryLavoro, CategoryTempoLibero}

const (
	MaxBoards              = 3
	BoardDescriptionMaxLen = 100
)

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory accepts the category name in any case.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

type Board struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Category    Category  `json:"category"`
	Description string    `json:"description"`
	Position    int       `json:"position"`
	Tasks       []*Task   `json:"tasks"`
}

// Clone returns a deep copy, tasks included.
func (b *Board) Clone() *Board {
	c := *b
	c.Tasks = make([]*Task, len(b.Tasks))
	for i, t := range b.Tasks {
		c.Tasks[i] = t.Clone()
	}
	return &c
}

// IndexOf returns the position of the task in the board, or -1.
func (b *Board) IndexOf(taskID uuid.UUID) int {
	for i, t := range b.Tasks {
		if t.ID == taskID {
			return i
		}
	}
	return -1
}

// Reindex rewrites Position and BoardID of every task to match the slice order.
func (b *Board) Reindex() {
	for i, t := range b.Tasks {
		t.Position = i
		t.BoardID = b.ID
	}
}
