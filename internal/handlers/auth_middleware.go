package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/chepyr/go-board-planner/internal/auth"
	"github.com/chepyr/go-board-planner/internal/planner"
	log "github.com/sirupsen/logrus"
)

type contextKey int

const workspaceKey contextKey = iota

/*
Verify the session token, resolve its user and open the user's workspace.
Browsers cannot set headers on websocket requests, so the token may also
come in the "token" query parameter.
*/
func (h *Handler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenString := r.URL.Query().Get("token")
		if authHeader := r.Header.Get("Authorization"); authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}
		if tokenString == "" {
			sendError(w, "Missing Authorization header", http.StatusUnauthorized)
			return
		}

		userID, err := h.Tokens.Parse(tokenString)
		if err != nil {
			sendError(w, "Invalid token", http.StatusUnauthorized)
			return
		}
		user, err := h.Accounts.User(r.Context(), userID)
		if errors.Is(err, auth.ErrUnknownUser) {
			sendError(w, "Invalid token claims", http.StatusUnauthorized)
			return
		}
		if err != nil {
			log.WithError(err).WithField("user_id", userID).Error("resolve session user")
			sendError(w, "Internal error", http.StatusInternalServerError)
			return
		}

		ws, err := h.Workspaces.Open(r.Context(), user)
		if err != nil {
			sendServiceError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), workspaceKey, ws)
		next(w, r.WithContext(ctx))
	}
}

func workspaceFrom(ctx context.Context) *planner.Workspace {
	ws, _ := ctx.Value(workspaceKey).(*planner.Workspace)
	return ws
}
