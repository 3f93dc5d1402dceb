package handlers

import (
	"net/http"
	"sort"

	"github.com/chepyr/go-board-planner/internal/models"
	"github.com/google/uuid"
)

type shareRequest struct {
	UserID     uuid.UUID         `json:"user_id"`
	Permission models.Permission `json:"permission"`
}

type shareResponse struct {
	UserID     uuid.UUID         `json:"user_id"`
	Permission models.Permission `json:"permission"`
}

func (h *Handler) ListShares(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	task, err := workspaceFrom(r.Context()).Tasks.Task(id)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}

	shares := make([]shareResponse, 0, len(task.Shares))
	for userID, permission := range task.Shares {
		shares = append(shares, shareResponse{UserID: userID, Permission: permission})
	}
	sort.Slice(shares, func(i, j int) bool { return shares[i].UserID.String() < shares[j].UserID.String() })
	writeJSON(w, http.StatusOK, shares)
}

func (h *Handler) AddShare(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var input shareRequest
	if !decode(w, r, &input) {
		return
	}
	if input.UserID == uuid.Nil {
		sendError(w, "user_id is required", http.StatusBadRequest)
		return
	}

	ws := workspaceFrom(r.Context())
	if err := ws.Sharing.AddShare(r.Context(), id, input.UserID, input.Permission); err != nil {
		sendServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, shareResponse(input))
}

func (h *Handler) ChangePermission(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	var input shareRequest
	if !decode(w, r, &input) {
		return
	}

	ws := workspaceFrom(r.Context())
	if err := ws.Sharing.ChangePermission(r.Context(), id, userID, input.Permission); err != nil {
		sendServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, shareResponse{UserID: userID, Permission: input.Permission})
}

func (h *Handler) RemoveShare(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	if err := workspaceFrom(r.Context()).Sharing.RemoveShare(r.Context(), id, userID); err != nil {
		sendServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ShareCandidates(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	users, err := workspaceFrom(r.Context()).Sharing.ShareCandidates(r.Context(), id, r.URL.Query().Get("q"))
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Handler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	users, err := workspaceFrom(r.Context()).Sharing.SearchUsers(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Handler) SharedWithMe(w http.ResponseWriter, r *http.Request) {
	shared, err := workspaceFrom(r.Context()).Sharing.SharedWithMe(r.Context())
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, shared)
}
