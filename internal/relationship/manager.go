package relationship

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tripmates/backend/internal/logging"
	"github.com/tripmates/backend/internal/models"
	"github.com/tripmates/backend/internal/repositories"
)

var (
	// ErrSelfReference indicates an operation that would relate a user to themselves.
	ErrSelfReference = errors.New("cannot befriend yourself")
	// ErrDuplicateRequest indicates a pending request already exists between the pair.
	ErrDuplicateRequest = errors.New("pending request already exists")
	// ErrAlreadyFriends indicates the pair already share a friendship.
	ErrAlreadyFriends = errors.New("users are already friends")
	// ErrUnauthorized indicates the acting user may not perform this operation
	// on the referenced request.
	ErrUnauthorized = errors.New("not allowed to modify this request")
)

// Decision is the recipient's answer to a pending friend request.
type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

// Notifier receives the ids of users whose pending request queues may have
// changed after a mutation. Implementations re-query and fan out snapshots.
type Notifier interface {
	Notify(ctx context.Context, userIDs ...string)
}

// Manager mediates every transition of the friend-request and friendship data
// and answers relationship-status queries. All operations take the acting
// user's id explicitly; resolving it from the session is the caller's job.
type Manager struct {
	requests repositories.RequestStore
	friends  repositories.FriendSetStore
	notifier Notifier

	// NowFunc overrides the clock for friendship added-at stamps in tests.
	NowFunc func() time.Time
}

// NewManager constructs a Manager over the provided stores. The notifier may
// be nil when live delivery is not wired, e.g. in tests.
func NewManager(requests repositories.RequestStore, friends repositories.FriendSetStore, notifier Notifier) *Manager {
	return &Manager{requests: requests, friends: friends, notifier: notifier}
}

// SendRequest creates a pending friend request from one user to another.
//
// The duplicate and already-friends checks and the insert are separate store
// round trips, not one transaction: two racing sends for the same pair can
// both pass the checks and both insert. Duplicate pendings are tolerated;
// responding to either one resolves to a single friendship.
func (m *Manager) SendRequest(ctx context.Context, fromID, toID string) (models.FriendRequest, error) {
	if fromID == "" || toID == "" {
		return models.FriendRequest{}, errors.New("both user ids must be provided")
	}
	if fromID == toID {
		return models.FriendRequest{}, ErrSelfReference
	}

	set, err := m.friends.Get(ctx, fromID)
	if err != nil {
		return models.FriendRequest{}, fmt.Errorf("load friend set: %w", err)
	}
	if set.Contains(toID) {
		return models.FriendRequest{}, ErrAlreadyFriends
	}

	pending, err := m.requests.ListPendingBetween(ctx, fromID, toID)
	if err != nil {
		return models.FriendRequest{}, fmt.Errorf("check pending requests: %w", err)
	}
	if len(pending) > 0 {
		return models.FriendRequest{}, ErrDuplicateRequest
	}

	request, err := m.requests.Insert(ctx, fromID, toID)
	if err != nil {
		return models.FriendRequest{}, fmt.Errorf("insert request: %w", err)
	}

	m.notify(ctx, fromID, toID)
	return request, nil
}

// CancelRequest deletes an outgoing request. Only the sender may cancel, and
// canceling a request that no longer exists succeeds.
func (m *Manager) CancelRequest(ctx context.Context, actorID, requestID string) error {
	request, err := m.requests.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("load request: %w", err)
	}

	if request.From != actorID {
		return ErrUnauthorized
	}

	if err := m.requests.Delete(ctx, requestID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("delete request: %w", err)
	}

	m.notify(ctx, request.From, request.To)
	return nil
}

// RespondToRequest accepts or rejects a pending request. Only the recipient
// may respond. Acceptance inserts the friendship into the sender's set, then
// the recipient's, then deletes the request; a failure between those steps
// leaves a one-sided friendship that is surfaced as an error but not repaired.
func (m *Manager) RespondToRequest(ctx context.Context, actorID, requestID string, decision Decision) error {
	ctx, span := logging.StartSpan(ctx, "relationship.respond")
	defer span.End()

	request, err := m.requests.FindByID(ctx, requestID)
	if err != nil {
		return fmt.Errorf("load request: %w", err)
	}

	if request.To != actorID {
		return ErrUnauthorized
	}

	switch decision {
	case DecisionReject:
		if err := m.requests.Delete(ctx, requestID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("delete rejected request: %w", err)
		}
	case DecisionAccept:
		if err := m.addEdge(ctx, request.From, request.To); err != nil {
			return err
		}
		if err := m.requests.Delete(ctx, requestID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("delete accepted request: %w", err)
		}
	default:
		return fmt.Errorf("unknown decision %q", decision)
	}

	m.notify(ctx, request.From, request.To)
	return nil
}

// AddFriend establishes a friendship directly, without a request.
func (m *Manager) AddFriend(ctx context.Context, actorID, otherID string) error {
	if actorID == otherID {
		return ErrSelfReference
	}
	return m.addEdge(ctx, actorID, otherID)
}

// RemoveFriend deletes the friendship in both users' sets. The two writes are
// independent; the second can fail after the first landed.
func (m *Manager) RemoveFriend(ctx context.Context, actorID, otherID string) error {
	if actorID == otherID {
		return ErrSelfReference
	}

	if err := m.removeFromSet(ctx, actorID, otherID); err != nil {
		return err
	}
	return m.removeFromSet(ctx, otherID, actorID)
}

// ListFriends returns the user's friends with their added-at stamps.
func (m *Manager) ListFriends(ctx context.Context, userID string) ([]models.Friend, error) {
	set, err := m.friends.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load friend set: %w", err)
	}

	friends := make([]models.Friend, 0, len(set.FriendIDs))
	for _, id := range set.FriendIDs {
		friends = append(friends, models.Friend{ID: id, AddedAt: set.AddedAt[id]})
	}
	return friends, nil
}

// ListIncoming returns the user's pending incoming requests.
func (m *Manager) ListIncoming(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	return m.requests.ListIncoming(ctx, userID)
}

// ListOutgoing returns the user's pending outgoing requests.
func (m *Manager) ListOutgoing(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	return m.requests.ListOutgoing(ctx, userID)
}

// SnapshotFor assembles the local state needed to derive relationship
// statuses for the given user.
func (m *Manager) SnapshotFor(ctx context.Context, selfID string) (Snapshot, error) {
	set, err := m.friends.Get(ctx, selfID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load friend set: %w", err)
	}

	incoming, err := m.requests.ListIncoming(ctx, selfID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load incoming requests: %w", err)
	}

	outgoing, err := m.requests.ListOutgoing(ctx, selfID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load outgoing requests: %w", err)
	}

	return Snapshot{
		SelfID:    selfID,
		FriendIDs: set.FriendIDs,
		Incoming:  incoming,
		Outgoing:  outgoing,
	}, nil
}

// addEdge inserts the friendship into a's set and then b's set, each as a
// read-modify-write of that user's whole record.
func (m *Manager) addEdge(ctx context.Context, a, b string) error {
	now := m.now()

	if err := m.addToSet(ctx, a, b, now); err != nil {
		return err
	}
	if err := m.addToSet(ctx, b, a, now); err != nil {
		return fmt.Errorf("friendship is one-sided, %s lists %s but not vice versa: %w", a, b, err)
	}
	return nil
}

func (m *Manager) addToSet(ctx context.Context, owner, friend string, now time.Time) error {
	set, err := m.friends.Get(ctx, owner)
	if err != nil {
		return fmt.Errorf("load friend set for %s: %w", owner, err)
	}
	if set.Contains(friend) {
		return nil
	}

	set.FriendIDs = append(set.FriendIDs, friend)
	if set.AddedAt == nil {
		set.AddedAt = make(map[string]time.Time)
	}
	set.AddedAt[friend] = now

	if err := m.friends.Put(ctx, set); err != nil {
		return fmt.Errorf("store friend set for %s: %w", owner, err)
	}
	return nil
}

func (m *Manager) removeFromSet(ctx context.Context, owner, friend string) error {
	set, err := m.friends.Get(ctx, owner)
	if err != nil {
		return fmt.Errorf("load friend set for %s: %w", owner, err)
	}
	if !set.Contains(friend) {
		return nil
	}

	remaining := set.FriendIDs[:0]
	for _, id := range set.FriendIDs {
		if id != friend {
			remaining = append(remaining, id)
		}
	}
	set.FriendIDs = remaining
	delete(set.AddedAt, friend)

	if err := m.friends.Put(ctx, set); err != nil {
		return fmt.Errorf("store friend set for %s: %w", owner, err)
	}
	return nil
}

func (m *Manager) notify(ctx context.Context, userIDs ...string) {
	if m.notifier != nil {
		m.notifier.Notify(ctx, userIDs...)
	}
}

func (m *Manager) now() time.Time {
	if m.NowFunc != nil {
		return m.NowFunc()
	}
	return time.Now().UTC()
}
