package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/tripmates/backend/internal/logging"
	"github.com/tripmates/backend/internal/models"
	"github.com/tripmates/backend/internal/repositories"
)

// UserHandler exposes the read-only user directory.
type UserHandler struct {
	Directory Directory
	Sessions  SessionManager
}

// Search handles GET /api/v1/users?q=<prefix>&limit=<n>.
func (h UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	userID, ok := requireUser(w, r, h.Sessions)
	if !ok {
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "query parameter q is required"})
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	profiles, err := h.Directory.Search(ctx, query, userID, limit)
	if err != nil {
		logger.Error("directory search failed", "error", err, "query", query)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "search failed"})
		return
	}

	if profiles == nil {
		profiles = []models.PublicProfile{}
	}
	respondJSON(ctx, w, http.StatusOK, userListResponse{Users: profiles})
}

// Get handles GET /api/v1/users/{id}.
func (h UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if _, ok := requireUser(w, r, h.Sessions); !ok {
		return
	}

	profile, err := h.Directory.Profile(ctx, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "user not found"})
			return
		}
		logger.Error("profile lookup failed", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "lookup failed"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, userResponse{User: profile})
}

type userListResponse struct {
	Users []models.PublicProfile `json:"users"`
}

type userResponse struct {
	User models.PublicProfile `json:"user"`
}
