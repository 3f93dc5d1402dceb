package handlers

import (
	"net/http"

	"github.com/chepyr/go-board-planner/internal/models"
	"github.com/chepyr/go-board-planner/internal/planner"
)

type boardRequest struct {
	Category    string `json:"category"`
	Description string `json:"description"`
}

func (h *Handler) ListBoards(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	writeJSON(w, http.StatusOK, ws.Boards.ListBoards())
}

func (h *Handler) CreateBoard(w http.ResponseWriter, r *http.Request) {
	var input boardRequest
	if !decode(w, r, &input) {
		return
	}
	category, ok := parseCategory(w, input.Category)
	if !ok {
		return
	}

	ws := workspaceFrom(r.Context())
	board, err := ws.Boards.CreateBoard(r.Context(), category, input.Description)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, board)
}

func (h *Handler) UpdateBoard(w http.ResponseWriter, r *http.Request) {
	category, ok := parseCategory(w, r.PathValue("category"))
	if !ok {
		return
	}
	var input boardRequest
	if !decode(w, r, &input) {
		return
	}

	ws := workspaceFrom(r.Context())
	if err := ws.Boards.UpdateDescription(r.Context(), category, input.Description); err != nil {
		sendServiceError(w, r, err)
		return
	}
	board, err := ws.Boards.Board(category)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (h *Handler) DeleteBoard(w http.ResponseWriter, r *http.Request) {
	category, ok := parseCategory(w, r.PathValue("category"))
	if !ok {
		return
	}
	ws := workspaceFrom(r.Context())
	if err := ws.Boards.DeleteBoard(r.Context(), category); err != nil {
		sendServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseCategory(w http.ResponseWriter, value string) (models.Category, bool) {
	category, err := models.ParseCategory(value)
	if err != nil {
		sendError(w, planner.ErrInvalidCategory.Error()+": "+value, http.StatusBadRequest)
		return "", false
	}
	return category, true
}
