package relationship

import (
	"context"
	"fmt"
	"sync"

	"github.com/tripmates/backend/internal/logging"
	"github.com/tripmates/backend/internal/models"
	"github.com/tripmates/backend/internal/repositories"
)

// Direction selects which pending queue a subscription watches.
type Direction string

const (
	DirectionIncoming Direction = "incoming"
	DirectionOutgoing Direction = "outgoing"
)

// Subscription is a live view over one user's pending requests in one
// direction. Every delivery is the full current matching set, never a diff.
// Subscriptions must be canceled by their owner or the listener leaks.
type Subscription struct {
	userID    string
	direction Direction

	hub  *Hub
	ch   chan []models.FriendRequest
	done chan struct{}
	once sync.Once
}

// Updates returns the snapshot channel. A slow reader only ever misses
// intermediate snapshots; the latest one is always retained.
func (s *Subscription) Updates() <-chan []models.FriendRequest {
	return s.ch
}

// Done is closed when the subscription is canceled.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Cancel unregisters the subscription. Safe to call more than once.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.hub.remove(s)
		close(s.done)
	})
}

// deliver places the snapshot on the channel, displacing an unread older
// snapshot rather than blocking the publisher.
func (s *Subscription) deliver(snapshot []models.FriendRequest) {
	for {
		select {
		case <-s.done:
			return
		case s.ch <- snapshot:
			return
		default:
			select {
			case <-s.ch:
			default:
			}
		}
	}
}

// Hub fans pending-request snapshots out to per-user subscriptions. Mutations
// report the affected user ids; the hub re-reads each affected queue from the
// store and redelivers. Delivery is asynchronous and eventually consistent.
type Hub struct {
	store repositories.RequestStore

	mu   sync.RWMutex
	subs map[*Subscription]struct{}
}

// NewHub constructs a hub over the given request store.
func NewHub(store repositories.RequestStore) *Hub {
	return &Hub{
		store: store,
		subs:  make(map[*Subscription]struct{}),
	}
}

// SubscribeIncoming registers a live query over the user's pending incoming
// requests and delivers the current set immediately.
func (h *Hub) SubscribeIncoming(ctx context.Context, userID string) (*Subscription, error) {
	return h.subscribe(ctx, userID, DirectionIncoming)
}

// SubscribeOutgoing registers a live query over the user's pending outgoing
// requests and delivers the current set immediately.
func (h *Hub) SubscribeOutgoing(ctx context.Context, userID string) (*Subscription, error) {
	return h.subscribe(ctx, userID, DirectionOutgoing)
}

func (h *Hub) subscribe(ctx context.Context, userID string, direction Direction) (*Subscription, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id must be provided")
	}

	snapshot, err := h.query(ctx, userID, direction)
	if err != nil {
		return nil, fmt.Errorf("initial snapshot: %w", err)
	}

	sub := &Subscription{
		userID:    userID,
		direction: direction,
		hub:       h,
		ch:        make(chan []models.FriendRequest, 1),
		done:      make(chan struct{}),
	}
	sub.ch <- snapshot

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	return sub, nil
}

// Notify schedules snapshot redelivery for every subscription watching one of
// the given users. It returns without waiting for the store reads.
func (h *Hub) Notify(ctx context.Context, userIDs ...string) {
	affected := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		affected[id] = struct{}{}
	}

	h.mu.RLock()
	var targets []*Subscription
	for sub := range h.subs {
		if _, ok := affected[sub.userID]; ok {
			targets = append(targets, sub)
		}
	}
	h.mu.RUnlock()

	if len(targets) == 0 {
		return
	}

	logger := logging.FromContext(ctx)

	// Detach from the request-scoped context so delivery survives the
	// triggering request completing.
	go func() {
		ctx := context.Background()
		for _, sub := range targets {
			snapshot, err := h.query(ctx, sub.userID, sub.direction)
			if err != nil {
				logger.Error("refresh subscription snapshot", "userId", sub.userID, "direction", sub.direction, "error", err)
				continue
			}
			sub.deliver(snapshot)
		}
	}()
}

func (h *Hub) query(ctx context.Context, userID string, direction Direction) ([]models.FriendRequest, error) {
	if direction == DirectionOutgoing {
		return h.store.ListOutgoing(ctx, userID)
	}
	return h.store.ListIncoming(ctx, userID)
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	delete(h.subs, sub)
	h.mu.Unlock()
}

// SubscriberCount reports the number of active subscriptions. Useful for tests.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

var _ Notifier = (*Hub)(nil)
