package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tripmates/backend/internal/logging"
	"github.com/tripmates/backend/internal/models"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// SubscriptionHandler streams live pending-request snapshots over a websocket.
// Each connection carries both the incoming and outgoing queues; every event
// holds the full current set for its direction.
type SubscriptionHandler struct {
	Subscriptions Subscriber
	Sessions      SessionManager
}

type subscriptionEvent struct {
	Event    string                 `json:"event"`
	Requests []models.FriendRequest `json:"requests"`
}

// Serve handles GET /api/v1/friends/ws.
func (h SubscriptionHandler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	userID, ok := requireUser(w, r, h.Sessions)
	if !ok {
		return
	}

	if h.Subscriptions == nil {
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "subscriptions unavailable"})
		return
	}

	incoming, err := h.Subscriptions.SubscribeIncoming(ctx, userID)
	if err != nil {
		logger.Error("subscribe incoming failed", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "subscription failed"})
		return
	}
	defer incoming.Cancel()

	outgoing, err := h.Subscriptions.SubscribeOutgoing(ctx, userID)
	if err != nil {
		logger.Error("subscribe outgoing failed", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "subscription failed"})
		return
	}
	defer outgoing.Cancel()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	// Reader goroutine: the client sends nothing meaningful, but reading is
	// required to process control frames and detect disconnects.
	disconnected := make(chan struct{})
	go func() {
		defer close(disconnected)
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(wsPongWait))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case requests := <-incoming.Updates():
			if !writeEvent(conn, "incoming_requests", requests) {
				return
			}
		case requests := <-outgoing.Updates():
			if !writeEvent(conn, "outgoing_requests", requests) {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-disconnected:
			return
		case <-ctx.Done():
			return
		}
	}
}

func writeEvent(conn *websocket.Conn, event string, requests []models.FriendRequest) bool {
	if requests == nil {
		requests = []models.FriendRequest{}
	}
	conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteJSON(subscriptionEvent{Event: event, Requests: requests}) == nil
}
