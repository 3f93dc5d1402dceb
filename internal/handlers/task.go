package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/chepyr/go-board-planner/internal/models"
	"github.com/chepyr/go-board-planner/internal/planner"
	"github.com/google/uuid"
)

// taskRequest is the body of task create and edit requests. Dates are
// YYYY-MM-DD, colors "#rrggbb", images base64.
type taskRequest struct {
	Category    string   `json:"category"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	DueDate     string   `json:"due_date"`
	Links       []string `json:"links"`
	Color       string   `json:"color"`
	Image       []byte   `json:"image"`
	ClearImage  bool     `json:"clear_image"`
}

type moveRequest struct {
	Category string `json:"category"`
	Index    int    `json:"index"`
	Drop     bool   `json:"drop"`
}

type completeRequest struct {
	Completed *bool `json:"completed"`
}

// fields checks the image size and parses the date and color of the request.
func (req taskRequest) fields(w http.ResponseWriter) (*time.Time, *models.Color, bool) {
	if len(req.Image) > models.MaxImageBytes {
		sendError(w, fmt.Sprintf("image must be at most %d bytes", models.MaxImageBytes), http.StatusBadRequest)
		return nil, nil, false
	}
	var due *time.Time
	if strings.TrimSpace(req.DueDate) != "" {
		parsed, err := models.ParseDate(req.DueDate)
		if err != nil {
			sendError(w, "due_date must be YYYY-MM-DD", http.StatusBadRequest)
			return nil, nil, false
		}
		due = &parsed
	}
	var color *models.Color
	if req.Color != "" {
		parsed, err := models.ParseColor(req.Color)
		if err != nil {
			sendError(w, err.Error(), http.StatusBadRequest)
			return nil, nil, false
		}
		color = &parsed
	}
	return due, color, true
}

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var input taskRequest
	if !decode(w, r, &input) {
		return
	}
	category, ok := parseCategory(w, input.Category)
	if !ok {
		return
	}
	due, color, ok := input.fields(w)
	if !ok {
		return
	}

	ws := workspaceFrom(r.Context())
	task, err := ws.Tasks.CreateTask(r.Context(), category, planner.TaskInput{
		Title:       input.Title,
		Description: input.Description,
		DueDate:     due,
		Links:       input.Links,
		Color:       color,
		Image:       input.Image,
	})
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// QueryTasks lists the tasks due on ?date= or matching ?q=.
func (h *Handler) QueryTasks(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	query := r.URL.Query()

	if date := query.Get("date"); date != "" {
		day, err := models.ParseDate(date)
		if err != nil {
			sendError(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		tasks, err := ws.Tasks.QueryByDate(r.Context(), day)
		if err != nil {
			sendServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, tasks)
		return
	}
	if query.Has("q") {
		tasks, err := ws.Tasks.Search(r.Context(), query.Get("q"))
		if err != nil {
			sendServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, tasks)
		return
	}
	sendError(w, "Either date or q is required", http.StatusBadRequest)
}

func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	task, err := workspaceFrom(r.Context()).Tasks.Task(id)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *Handler) EditTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var input taskRequest
	if !decode(w, r, &input) {
		return
	}
	var category models.Category
	if input.Category != "" {
		if category, ok = parseCategory(w, input.Category); !ok {
			return
		}
	}
	due, color, ok := input.fields(w)
	if !ok {
		return
	}

	ws := workspaceFrom(r.Context())
	task, err := ws.Tasks.EditTask(r.Context(), id, planner.TaskEdit{
		Title:       input.Title,
		Description: input.Description,
		DueDate:     due,
		Links:       input.Links,
		Color:       color,
		Image:       input.Image,
		ClearImage:  input.ClearImage,
		Category:    category,
	})
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := workspaceFrom(r.Context()).Tasks.DeleteTask(r.Context(), id); err != nil {
		sendServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CompleteTask marks the task done, or open again with {"completed": false}.
func (h *Handler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	completed := true
	if r.ContentLength != 0 {
		var input completeRequest
		if !decode(w, r, &input) {
			return
		}
		if input.Completed != nil {
			completed = *input.Completed
		}
	}

	task, err := workspaceFrom(r.Context()).Tasks.SetCompleted(r.Context(), id, completed)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *Handler) MoveTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var input moveRequest
	if !decode(w, r, &input) {
		return
	}
	category, ok := parseCategory(w, input.Category)
	if !ok {
		return
	}

	tasks := workspaceFrom(r.Context()).Tasks
	move := tasks.MoveTask
	if input.Drop {
		move = tasks.DropTask
	}
	task, err := move(r.Context(), id, category, input.Index)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		sendError(w, "Invalid "+name, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}
