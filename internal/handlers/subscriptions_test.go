package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tripmates/backend/internal/models"
	"github.com/tripmates/backend/internal/relationship"
	"github.com/tripmates/backend/internal/repositories"
)

// wsRequestStore is a minimal RequestStore for driving the hub in tests.
type wsRequestStore struct {
	mu       sync.Mutex
	requests []models.FriendRequest
}

func (s *wsRequestStore) Insert(_ context.Context, from, to string) (models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	request := models.FriendRequest{
		ID:     "ws-req",
		From:   from,
		To:     to,
		Status: models.RequestStatusPending,
		SentAt: time.Now().UTC(),
	}
	s.requests = append(s.requests, request)
	return request, nil
}

func (s *wsRequestStore) FindByID(context.Context, string) (models.FriendRequest, error) {
	return models.FriendRequest{}, repositories.ErrNotFound
}

func (s *wsRequestStore) Delete(context.Context, string) error { return nil }

func (s *wsRequestStore) ListPendingBetween(context.Context, string, string) ([]models.FriendRequest, error) {
	return nil, nil
}

func (s *wsRequestStore) ListIncoming(_ context.Context, userID string) ([]models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.FriendRequest
	for _, request := range s.requests {
		if request.To == userID {
			out = append(out, request)
		}
	}
	return out, nil
}

func (s *wsRequestStore) ListOutgoing(_ context.Context, userID string) ([]models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.FriendRequest
	for _, request := range s.requests {
		if request.From == userID {
			out = append(out, request)
		}
	}
	return out, nil
}

func readEvent(t *testing.T, conn *websocket.Conn) subscriptionEvent {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event subscriptionEvent
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("read event: %v", err)
	}
	return event
}

func TestSubscriptionStreamsSnapshots(t *testing.T) {
	store := &wsRequestStore{}
	hub := relationship.NewHub(store)
	deps := Dependencies{
		Sessions:      &stubSessions{token: "valid-token", userID: "u1"},
		Subscriptions: hub,
	}
	server := httptest.NewServer(newTestMux(deps))
	defer server.Close()

	// Websocket clients cannot set headers, so the token rides the query string.
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/friends/ws?access_token=valid-token"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Both directions deliver an initial snapshot, in either order.
	seen := map[string]int{}
	for i := 0; i < 2; i++ {
		event := readEvent(t, conn)
		seen[event.Event] = len(event.Requests)
	}
	if count, ok := seen["incoming_requests"]; !ok || count != 0 {
		t.Fatalf("expected empty initial incoming snapshot, saw %v", seen)
	}
	if count, ok := seen["outgoing_requests"]; !ok || count != 0 {
		t.Fatalf("expected empty initial outgoing snapshot, saw %v", seen)
	}

	// A mutation notifies the hub, which redelivers the full incoming set.
	ctx := context.Background()
	if _, err := store.Insert(ctx, "u2", "u1"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	hub.Notify(ctx, "u1")

	deadline := time.Now().Add(2 * time.Second)
	for {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for incoming snapshot")
		}
		event := readEvent(t, conn)
		if event.Event == "incoming_requests" && len(event.Requests) == 1 {
			if event.Requests[0].From != "u2" {
				t.Fatalf("unexpected request in snapshot: %+v", event.Requests[0])
			}
			return
		}
	}
}

func TestSubscriptionRejectsMissingToken(t *testing.T) {
	deps := Dependencies{
		Sessions:      &stubSessions{token: "valid-token", userID: "u1"},
		Subscriptions: relationship.NewHub(&wsRequestStore{}),
	}
	server := httptest.NewServer(newTestMux(deps))
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/v1/friends/ws")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.StatusCode)
	}
}
