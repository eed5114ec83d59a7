package repositories

import (
	"context"

	"github.com/tripmates/backend/internal/models"
)

// RequestStore defines data access for friend request records. Insert assigns
// the id and the sent-at timestamp; there is deliberately no uniqueness
// constraint over the user pair, so duplicate pendings are representable.
type RequestStore interface {
	Insert(ctx context.Context, from, to string) (models.FriendRequest, error)
	FindByID(ctx context.Context, requestID string) (models.FriendRequest, error)
	Delete(ctx context.Context, requestID string) error
	ListPendingBetween(ctx context.Context, userA, userB string) ([]models.FriendRequest, error)
	ListIncoming(ctx context.Context, userID string) ([]models.FriendRequest, error)
	ListOutgoing(ctx context.Context, userID string) ([]models.FriendRequest, error)
}

// FriendSetStore persists one friend-set record per user. Mutations are
// whole-record writes: callers fetch the current set, modify it, and put it
// back. Two overlapping cycles on the same record are last-write-wins.
type FriendSetStore interface {
	Get(ctx context.Context, userID string) (models.FriendSet, error)
	Put(ctx context.Context, set models.FriendSet) error
}
