package handlers

import (
	"errors"
	"net/http"

	"github.com/chepyr/go-board-planner/internal/auth"
	log "github.com/sirupsen/logrus"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		sendError(w, "Use POST method", http.StatusMethodNotAllowed)
		return
	}
	if !h.allow(w, r) {
		return
	}

	var input credentials
	if !decode(w, r, &input) {
		return
	}

	user, err := h.Accounts.Register(r.Context(), input.Username, input.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidUsername), errors.Is(err, auth.ErrInvalidPassword):
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, auth.ErrUsernameTaken):
		sendError(w, err.Error(), http.StatusConflict)
		return
	case err != nil:
		log.WithError(err).WithField("user", input.Username).Error("register failed")
		sendError(w, "Cannot save user", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"user_id":  user.ID,
		"username": user.Username,
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		sendError(w, "Use POST method for login", http.StatusMethodNotAllowed)
		return
	}
	if !h.allow(w, r) {
		return
	}

	var input credentials
	if !decode(w, r, &input) {
		return
	}

	user, err := h.Accounts.Login(r.Context(), input.Username, input.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		log.WithField("user", input.Username).Info("rejected login")
		sendError(w, "Invalid username or password", http.StatusUnauthorized)
		return
	}
	if err != nil {
		log.WithError(err).WithField("user", input.Username).Error("login failed")
		sendError(w, "Internal error", http.StatusInternalServerError)
		return
	}

	token, err := h.Tokens.Issue(user.ID)
	if err != nil {
		log.WithError(err).Error("issue token")
		sendError(w, "Cannot create token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user_id":  user.ID,
		"username": user.Username,
		"token":    token,
	})
}

func (h *Handler) allow(w http.ResponseWriter, r *http.Request) bool {
	if h.RateLimiter == nil || h.RateLimiter.Allow(clientIP(r)) {
		return true
	}
	log.WithField("ip", clientIP(r)).Warn("rate limit exceeded")
	sendError(w, "Too many attempts. Please try again later.", http.StatusTooManyRequests)
	return false
}
