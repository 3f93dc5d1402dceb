package handlers

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/chepyr/go-board-planner/internal/auth"
	"github.com/chepyr/go-board-planner/internal/notify"
	"github.com/chepyr/go-board-planner/internal/planner"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	Accounts    *auth.Accounts
	Tokens      *auth.Tokens
	Workspaces  *planner.Workspaces
	Hub         *notify.Hub
	RateLimiter *RateLimiter
}

// Routes registers every endpoint on a new mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/register", h.Register)
	mux.HandleFunc("/login", h.Login)

	mux.HandleFunc("GET /boards", h.AuthMiddleware(h.ListBoards))
	mux.HandleFunc("POST /boards", h.AuthMiddleware(h.CreateBoard))
	mux.HandleFunc("PUT /boards/{category}", h.AuthMiddleware(h.UpdateBoard))
	mux.HandleFunc("DELETE /boards/{category}", h.AuthMiddleware(h.DeleteBoard))

	mux.HandleFunc("GET /tasks", h.AuthMiddleware(h.QueryTasks))
	mux.HandleFunc("POST /tasks", h.AuthMiddleware(h.CreateTask))
	mux.HandleFunc("GET /tasks/{id}", h.AuthMiddleware(h.GetTask))
	mux.HandleFunc("PUT /tasks/{id}", h.AuthMiddleware(h.EditTask))
	mux.HandleFunc("DELETE /tasks/{id}", h.AuthMiddleware(h.DeleteTask))
	mux.HandleFunc("POST /tasks/{id}/complete", h.AuthMiddleware(h.CompleteTask))
	mux.HandleFunc("POST /tasks/{id}/move", h.AuthMiddleware(h.MoveTask))

	mux.HandleFunc("GET /tasks/{id}/shares", h.AuthMiddleware(h.ListShares))
	mux.HandleFunc("POST /tasks/{id}/shares", h.AuthMiddleware(h.AddShare))
	mux.HandleFunc("PUT /tasks/{id}/shares/{userID}", h.AuthMiddleware(h.ChangePermission))
	mux.HandleFunc("DELETE /tasks/{id}/shares/{userID}", h.AuthMiddleware(h.RemoveShare))
	mux.HandleFunc("GET /tasks/{id}/candidates", h.AuthMiddleware(h.ShareCandidates))

	mux.HandleFunc("GET /users", h.AuthMiddleware(h.SearchUsers))
	mux.HandleFunc("GET /shared", h.AuthMiddleware(h.SharedWithMe))
	mux.HandleFunc("GET /ws", h.AuthMiddleware(h.HandleWebSocket))
	return mux
}

type errorResponse struct {
	Error string `json:"error"`
}

func sendError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Warn("encode response")
	}
}

// sendServiceError maps a service error to its HTTP status.
func sendServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, planner.ErrValidation), errors.Is(err, planner.ErrInvalidCategory):
		status = http.StatusBadRequest
	case errors.Is(err, planner.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, planner.ErrDuplicateBoard), errors.Is(err, planner.ErrLastBoard),
		errors.Is(err, planner.ErrAlreadyShared), errors.Is(err, planner.ErrNotShared),
		errors.Is(err, planner.ErrWorkspaceClosed):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		log.WithError(err).WithFields(log.Fields{"method": r.Method, "path": r.URL.Path}).Error("request failed")
		sendError(w, "Internal error", status)
		return
	}
	sendError(w, err.Error(), status)
}

// maxBodyBytes leaves room for a base64 image of models.MaxImageBytes.
const maxBodyBytes = 3 << 20

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			sendError(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return false
		}
		sendError(w, "Bad JSON", http.StatusBadRequest)
		return false
	}
	return true
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
