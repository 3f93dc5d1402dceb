package models

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	TaskTitleMaxLen       = 35
	TaskDescriptionMaxLen = 350
	// MaxImageBytes is checked where images enter the system, not by the services.
	MaxImageBytes = 2 << 20
)

const dateLayout = "2006-01-02"

// Permission is the access level granted to a user a task is shared with.
type Permission string

const (
	PermissionReadOnly  Permission = "READ_ONLY"
	PermissionReadWrite Permission = "READ_WRITE"
)

func (p Permission) Valid() bool {
	return p == PermissionReadOnly || p == PermissionReadWrite
}

func (p Permission) CanWrite() bool {
	return p == PermissionReadWrite
}

// Color is the background color of a task card.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// DefaultColor is used when a task is created without one.
var DefaultColor = Color{R: 255, G: 255, B: 255}

func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func ParseColor(s string) (Color, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "#"))
	if err != nil || len(raw) != 3 {
		return Color{}, fmt.Errorf("invalid color %q", s)
	}
	return Color{R: raw[0], G: raw[1], B: raw[2]}, nil
}

type Task struct {
	ID          uuid.UUID                `json:"id"`
	BoardID     uuid.UUID                `json:"board_id"`
	CreatorID   uuid.UUID                `json:"creator_id"`
	Title       string                   `json:"title"`
	Description string                   `json:"description"`
	DueDate     *time.Time               `json:"due_date"`
	Color       Color                    `json:"color"`
	Links       []string                 `json:"links"`
	Image       []byte                   `json:"image,omitempty"`
	Completed   bool                     `json:"completed"`
	Position    int                      `json:"position"`
	Shares      map[uuid.UUID]Permission `json:"shares"`
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	if t.Links != nil {
		c.Links = append([]string(nil), t.Links...)
	}
	if t.Image != nil {
		c.Image = append([]byte(nil), t.Image...)
	}
	c.Shares = make(map[uuid.UUID]Permission, len(t.Shares))
	for id, p := range t.Shares {
		c.Shares[id] = p
	}
	return &c
}

// SharedTask is a task seen from a user it was shared with.
type SharedTask struct {
	Task       Task       `json:"task"`
	OwnerName  string     `json:"owner"`
	Permission Permission `json:"permission"`
}

// Date truncates t to midnight UTC of its calendar day.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ParseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, strings.TrimSpace(s))
}

func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}
