package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/tripmates/backend/internal/directory"
	"github.com/tripmates/backend/internal/logging"
	"github.com/tripmates/backend/internal/models"
	"github.com/tripmates/backend/internal/relationship"
	"github.com/tripmates/backend/internal/repositories"
)

// FriendHandler exposes the friend-request lifecycle and the friend list.
type FriendHandler struct {
	Relationships RelationshipManager
	Directory     Directory
	Sessions      SessionManager
}

// Send handles POST /api/v1/friends/requests.
func (h FriendHandler) Send(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	userID, ok := requireUser(w, r, h.Sessions)
	if !ok {
		return
	}

	var req sendFriendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid friend request payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.To = strings.TrimSpace(req.To)
	if req.To == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "recipient id is required"})
		return
	}

	request, err := h.Relationships.SendRequest(ctx, userID, req.To)
	if err != nil {
		h.writeRelationshipError(w, r, err, "send friend request")
		return
	}

	respondJSON(ctx, w, http.StatusCreated, requestResponse{Request: request})
}

// Cancel handles DELETE /api/v1/friends/requests/{id}. Canceling an already
// deleted request still returns 204.
func (h FriendHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := requireUser(w, r, h.Sessions)
	if !ok {
		return
	}

	if err := h.Relationships.CancelRequest(ctx, userID, r.PathValue("id")); err != nil {
		h.writeRelationshipError(w, r, err, "cancel friend request")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Respond handles POST /api/v1/friends/requests/{id}/respond.
func (h FriendHandler) Respond(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	userID, ok := requireUser(w, r, h.Sessions)
	if !ok {
		return
	}

	var req respondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid respond payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	decision := relationship.Decision(strings.ToLower(strings.TrimSpace(string(req.Decision))))
	if decision != relationship.DecisionAccept && decision != relationship.DecisionReject {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "decision must be accept or reject"})
		return
	}

	if err := h.Relationships.RespondToRequest(ctx, userID, r.PathValue("id"), decision); err != nil {
		h.writeRelationshipError(w, r, err, "respond to friend request")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListRequests handles GET /api/v1/friends/requests?direction=incoming|outgoing.
func (h FriendHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := requireUser(w, r, h.Sessions)
	if !ok {
		return
	}

	var (
		requests []models.FriendRequest
		err      error
	)
	switch direction := r.URL.Query().Get("direction"); direction {
	case "outgoing":
		requests, err = h.Relationships.ListOutgoing(ctx, userID)
	case "incoming", "":
		requests, err = h.Relationships.ListIncoming(ctx, userID)
	default:
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "direction must be incoming or outgoing"})
		return
	}
	if err != nil {
		h.writeRelationshipError(w, r, err, "list friend requests")
		return
	}

	if requests == nil {
		requests = []models.FriendRequest{}
	}
	respondJSON(ctx, w, http.StatusOK, requestListResponse{Requests: requests})
}

// List handles GET /api/v1/friends, resolving friend ids against the directory.
func (h FriendHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := requireUser(w, r, h.Sessions)
	if !ok {
		return
	}

	friends, err := h.Relationships.ListFriends(ctx, userID)
	if err != nil {
		h.writeRelationshipError(w, r, err, "list friends")
		return
	}

	resolved, err := directory.Resolve(ctx, h.Directory, friends)
	if err != nil {
		h.writeRelationshipError(w, r, err, "resolve friend profiles")
		return
	}

	respondJSON(ctx, w, http.StatusOK, friendListResponse{Friends: resolved})
}

// Add handles POST /api/v1/friends/{id}, the direct add-friend shortcut.
func (h FriendHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := requireUser(w, r, h.Sessions)
	if !ok {
		return
	}

	if err := h.Relationships.AddFriend(ctx, userID, r.PathValue("id")); err != nil {
		h.writeRelationshipError(w, r, err, "add friend")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Remove handles DELETE /api/v1/friends/{id}.
func (h FriendHandler) Remove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := requireUser(w, r, h.Sessions)
	if !ok {
		return
	}

	if err := h.Relationships.RemoveFriend(ctx, userID, r.PathValue("id")); err != nil {
		h.writeRelationshipError(w, r, err, "remove friend")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Status handles GET /api/v1/friends/status/{id}.
func (h FriendHandler) Status(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := requireUser(w, r, h.Sessions)
	if !ok {
		return
	}

	snapshot, err := h.Relationships.SnapshotFor(ctx, userID)
	if err != nil {
		h.writeRelationshipError(w, r, err, "load relationship snapshot")
		return
	}

	respondJSON(ctx, w, http.StatusOK, statusResponse{Status: snapshot.StatusOf(r.PathValue("id"))})
}

func (h FriendHandler) writeRelationshipError(w http.ResponseWriter, r *http.Request, err error, op string) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	switch {
	case errors.Is(err, relationship.ErrSelfReference):
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "cannot befriend yourself"})
	case errors.Is(err, relationship.ErrDuplicateRequest):
		respondJSON(ctx, w, http.StatusConflict, map[string]string{"error": "a pending request already exists"})
	case errors.Is(err, relationship.ErrAlreadyFriends):
		respondJSON(ctx, w, http.StatusConflict, map[string]string{"error": "already friends"})
	case errors.Is(err, relationship.ErrUnauthorized):
		respondJSON(ctx, w, http.StatusForbidden, map[string]string{"error": "not allowed"})
	case errors.Is(err, repositories.ErrNotFound):
		respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "request not found"})
	default:
		logger.Error(op+" failed", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "operation failed"})
	}
}

type sendFriendRequest struct {
	To string `json:"to"`
}

type respondRequest struct {
	Decision relationship.Decision `json:"decision"`
}

type requestResponse struct {
	Request models.FriendRequest `json:"request"`
}

type requestListResponse struct {
	Requests []models.FriendRequest `json:"requests"`
}

type friendListResponse struct {
	Friends []directory.FriendProfile `json:"friends"`
}

type statusResponse struct {
	Status models.RelationshipStatus `json:"status"`
}
