package handlers

import (
	"context"

	"github.com/tripmates/backend/internal/models"
	"github.com/tripmates/backend/internal/relationship"
)

// UserStore captures the persistence operations required by the auth handlers.
type UserStore interface {
	Create(ctx context.Context, user models.UserProfile) error
	FindByEmail(ctx context.Context, email string) (models.UserProfile, error)
	SetActive(ctx context.Context, id string, active bool) error
}

// SessionManager issues, refreshes, and resolves authentication tokens.
type SessionManager interface {
	Issue(ctx context.Context, userID string) (models.SessionTokens, error)
	Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error)
	Authenticate(ctx context.Context, accessToken string) (string, error)
	Revoke(ctx context.Context, refreshToken string)
}

// RelationshipManager captures the friend-graph operations used by the friend handlers.
type RelationshipManager interface {
	SendRequest(ctx context.Context, fromID, toID string) (models.FriendRequest, error)
	CancelRequest(ctx context.Context, actorID, requestID string) error
	RespondToRequest(ctx context.Context, actorID, requestID string, decision relationship.Decision) error
	AddFriend(ctx context.Context, actorID, otherID string) error
	RemoveFriend(ctx context.Context, actorID, otherID string) error
	ListFriends(ctx context.Context, userID string) ([]models.Friend, error)
	ListIncoming(ctx context.Context, userID string) ([]models.FriendRequest, error)
	ListOutgoing(ctx context.Context, userID string) ([]models.FriendRequest, error)
	SnapshotFor(ctx context.Context, selfID string) (relationship.Snapshot, error)
}

// Subscriber registers live pending-request queries.
type Subscriber interface {
	SubscribeIncoming(ctx context.Context, userID string) (*relationship.Subscription, error)
	SubscribeOutgoing(ctx context.Context, userID string) (*relationship.Subscription, error)
}

// Directory resolves public profile metadata for already-known user ids.
type Directory interface {
	Profile(ctx context.Context, id string) (models.PublicProfile, error)
	Search(ctx context.Context, query, excludeID string, limit int) ([]models.PublicProfile, error)
}
