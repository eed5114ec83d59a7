package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tripmates/backend/internal/models"
	"github.com/tripmates/backend/internal/relationship"
	"github.com/tripmates/backend/internal/repositories"
)

func friendDeps(relationships *fakeRelationships, dir *stubDirectory) (Dependencies, *stubSessions) {
	sessions := &stubSessions{token: "valid-token", userID: "u1"}
	if dir == nil {
		dir = &stubDirectory{profiles: map[string]models.PublicProfile{}}
	}
	return Dependencies{
		Sessions:      sessions,
		Relationships: relationships,
		Directory:     dir,
	}, sessions
}

func authed(req *http.Request) *http.Request {
	req.Header.Set("Authorization", "Bearer valid-token")
	return req
}

func TestSendFriendRequest(t *testing.T) {
	var gotFrom, gotTo string
	relationships := &fakeRelationships{
		sendFn: func(_ context.Context, fromID, toID string) (models.FriendRequest, error) {
			gotFrom, gotTo = fromID, toID
			return models.FriendRequest{
				ID:     "req-1",
				From:   fromID,
				To:     toID,
				Status: models.RequestStatusPending,
				SentAt: time.Now().UTC(),
			}, nil
		},
	}
	deps, _ := friendDeps(relationships, nil)
	mux := newTestMux(deps)

	req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/friends/requests", strings.NewReader(`{"to":"u2"}`)))
	recorder := doRequest(t, mux, req)

	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", recorder.Code, recorder.Body.String())
	}
	if gotFrom != "u1" || gotTo != "u2" {
		t.Fatalf("expected send from u1 to u2, got %s to %s", gotFrom, gotTo)
	}

	var payload requestResponse
	if err := json.NewDecoder(recorder.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Request.ID != "req-1" || payload.Request.Status != models.RequestStatusPending {
		t.Fatalf("unexpected response: %+v", payload.Request)
	}
}

func TestSendFriendRequestRequiresAuth(t *testing.T) {
	deps, _ := friendDeps(&fakeRelationships{}, nil)
	mux := newTestMux(deps)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/friends/requests", strings.NewReader(`{"to":"u2"}`))
	if recorder := doRequest(t, mux, req); recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", recorder.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/friends/requests", strings.NewReader(`{"to":"u2"}`))
	req.Header.Set("Authorization", "Bearer wrong-token")
	if recorder := doRequest(t, mux, req); recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token got %d", recorder.Code)
	}
}

func TestSendFriendRequestValidation(t *testing.T) {
	deps, _ := friendDeps(&fakeRelationships{}, nil)
	mux := newTestMux(deps)

	for _, body := range []string{`not json`, `{"to":"  "}`} {
		req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/friends/requests", strings.NewReader(body)))
		if recorder := doRequest(t, mux, req); recorder.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400 got %d", body, recorder.Code)
		}
	}
}

func TestSendFriendRequestErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"self reference", relationship.ErrSelfReference, http.StatusBadRequest},
		{"duplicate", relationship.ErrDuplicateRequest, http.StatusConflict},
		{"already friends", relationship.ErrAlreadyFriends, http.StatusConflict},
		{"store failure", context.DeadlineExceeded, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			relationships := &fakeRelationships{
				sendFn: func(context.Context, string, string) (models.FriendRequest, error) {
					return models.FriendRequest{}, tc.err
				},
			}
			deps, _ := friendDeps(relationships, nil)
			mux := newTestMux(deps)

			req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/friends/requests", strings.NewReader(`{"to":"u2"}`)))
			if recorder := doRequest(t, mux, req); recorder.Code != tc.want {
				t.Fatalf("expected %d got %d", tc.want, recorder.Code)
			}
		})
	}
}

func TestCancelFriendRequest(t *testing.T) {
	var gotActor, gotRequest string
	relationships := &fakeRelationships{
		cancelFn: func(_ context.Context, actorID, requestID string) error {
			gotActor, gotRequest = actorID, requestID
			return nil
		},
	}
	deps, _ := friendDeps(relationships, nil)
	mux := newTestMux(deps)

	req := authed(httptest.NewRequest(http.MethodDelete, "/api/v1/friends/requests/req-9", nil))
	recorder := doRequest(t, mux, req)

	if recorder.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", recorder.Code)
	}
	if gotActor != "u1" || gotRequest != "req-9" {
		t.Fatalf("unexpected cancel call: actor=%s request=%s", gotActor, gotRequest)
	}
}

func TestCancelForeignRequestForbidden(t *testing.T) {
	relationships := &fakeRelationships{
		cancelFn: func(context.Context, string, string) error {
			return relationship.ErrUnauthorized
		},
	}
	deps, _ := friendDeps(relationships, nil)
	mux := newTestMux(deps)

	req := authed(httptest.NewRequest(http.MethodDelete, "/api/v1/friends/requests/req-9", nil))
	if recorder := doRequest(t, mux, req); recorder.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", recorder.Code)
	}
}

func TestRespondToFriendRequest(t *testing.T) {
	var gotDecision relationship.Decision
	relationships := &fakeRelationships{
		respondFn: func(_ context.Context, actorID, requestID string, decision relationship.Decision) error {
			if actorID != "u1" || requestID != "req-2" {
				t.Fatalf("unexpected respond call: actor=%s request=%s", actorID, requestID)
			}
			gotDecision = decision
			return nil
		},
	}
	deps, _ := friendDeps(relationships, nil)
	mux := newTestMux(deps)

	req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/friends/requests/req-2/respond", strings.NewReader(`{"decision":"Accept"}`)))
	recorder := doRequest(t, mux, req)

	if recorder.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d: %s", recorder.Code, recorder.Body.String())
	}
	if gotDecision != relationship.DecisionAccept {
		t.Fatalf("expected normalized accept decision got %q", gotDecision)
	}
}

func TestRespondRejectsUnknownDecision(t *testing.T) {
	deps, _ := friendDeps(&fakeRelationships{}, nil)
	mux := newTestMux(deps)

	req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/friends/requests/req-2/respond", strings.NewReader(`{"decision":"maybe"}`)))
	if recorder := doRequest(t, mux, req); recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", recorder.Code)
	}
}

func TestRespondMissingRequestNotFound(t *testing.T) {
	relationships := &fakeRelationships{
		respondFn: func(context.Context, string, string, relationship.Decision) error {
			return repositories.ErrNotFound
		},
	}
	deps, _ := friendDeps(relationships, nil)
	mux := newTestMux(deps)

	req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/friends/requests/gone/respond", strings.NewReader(`{"decision":"reject"}`)))
	if recorder := doRequest(t, mux, req); recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", recorder.Code)
	}
}

func TestListRequestsByDirection(t *testing.T) {
	relationships := &fakeRelationships{
		incoming: []models.FriendRequest{{ID: "in-1", From: "u2", To: "u1", Status: models.RequestStatusPending}},
		outgoing: []models.FriendRequest{{ID: "out-1", From: "u1", To: "u3", Status: models.RequestStatusPending}},
	}
	deps, _ := friendDeps(relationships, nil)
	mux := newTestMux(deps)

	cases := []struct {
		query  string
		wantID string
	}{
		{"", "in-1"},
		{"?direction=incoming", "in-1"},
		{"?direction=outgoing", "out-1"},
	}

	for _, tc := range cases {
		req := authed(httptest.NewRequest(http.MethodGet, "/api/v1/friends/requests"+tc.query, nil))
		recorder := doRequest(t, mux, req)
		if recorder.Code != http.StatusOK {
			t.Fatalf("query %q: expected 200 got %d", tc.query, recorder.Code)
		}

		var payload requestListResponse
		if err := json.NewDecoder(recorder.Body).Decode(&payload); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(payload.Requests) != 1 || payload.Requests[0].ID != tc.wantID {
			t.Fatalf("query %q: unexpected requests %+v", tc.query, payload.Requests)
		}
	}

	req := authed(httptest.NewRequest(http.MethodGet, "/api/v1/friends/requests?direction=sideways", nil))
	if recorder := doRequest(t, mux, req); recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad direction got %d", recorder.Code)
	}
}

func TestListRequestsEmptyIsArray(t *testing.T) {
	deps, _ := friendDeps(&fakeRelationships{}, nil)
	mux := newTestMux(deps)

	req := authed(httptest.NewRequest(http.MethodGet, "/api/v1/friends/requests", nil))
	recorder := doRequest(t, mux, req)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), `"requests":[]`) {
		t.Fatalf("expected empty array, got %s", recorder.Body.String())
	}
}

func TestListFriendsResolvesProfiles(t *testing.T) {
	added := time.Date(2024, time.May, 4, 0, 0, 0, 0, time.UTC)
	relationships := &fakeRelationships{
		friends: []models.Friend{
			{ID: "u2", AddedAt: added},
			{ID: "deleted", AddedAt: added},
		},
	}
	dir := &stubDirectory{profiles: map[string]models.PublicProfile{
		"u2": {ID: "u2", DisplayName: "Bob"},
	}}
	deps, _ := friendDeps(relationships, dir)
	mux := newTestMux(deps)

	req := authed(httptest.NewRequest(http.MethodGet, "/api/v1/friends", nil))
	recorder := doRequest(t, mux, req)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", recorder.Code)
	}

	var payload friendListResponse
	if err := json.NewDecoder(recorder.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Friends) != 2 {
		t.Fatalf("expected 2 friends got %d", len(payload.Friends))
	}
	if payload.Friends[0].DisplayName != "Bob" {
		t.Fatalf("unexpected first friend: %+v", payload.Friends[0])
	}
	if payload.Friends[1].DisplayName != "Unknown User" {
		t.Fatalf("expected placeholder for missing profile, got %+v", payload.Friends[1])
	}
}

func TestAddAndRemoveFriend(t *testing.T) {
	var added, removed string
	relationships := &fakeRelationships{
		addFn: func(_ context.Context, actorID, otherID string) error {
			if actorID != "u1" {
				t.Fatalf("unexpected actor %s", actorID)
			}
			added = otherID
			return nil
		},
		removeFn: func(_ context.Context, actorID, otherID string) error {
			if actorID != "u1" {
				t.Fatalf("unexpected actor %s", actorID)
			}
			removed = otherID
			return nil
		},
	}
	deps, _ := friendDeps(relationships, nil)
	mux := newTestMux(deps)

	req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/friends/u5", nil))
	if recorder := doRequest(t, mux, req); recorder.Code != http.StatusNoContent {
		t.Fatalf("add: expected 204 got %d", recorder.Code)
	}
	if added != "u5" {
		t.Fatalf("expected add of u5 got %q", added)
	}

	req = authed(httptest.NewRequest(http.MethodDelete, "/api/v1/friends/u5", nil))
	if recorder := doRequest(t, mux, req); recorder.Code != http.StatusNoContent {
		t.Fatalf("remove: expected 204 got %d", recorder.Code)
	}
	if removed != "u5" {
		t.Fatalf("expected removal of u5 got %q", removed)
	}
}

func TestRelationshipStatusEndpoint(t *testing.T) {
	relationships := &fakeRelationships{
		friends:  []models.Friend{{ID: "u2"}},
		incoming: []models.FriendRequest{{ID: "r1", From: "u3", To: "u1", Status: models.RequestStatusPending}},
		outgoing: []models.FriendRequest{{ID: "r2", From: "u1", To: "u4", Status: models.RequestStatusPending}},
	}
	deps, _ := friendDeps(relationships, nil)
	mux := newTestMux(deps)

	cases := []struct {
		other string
		want  models.RelationshipStatus
	}{
		{"u1", models.RelationshipSelf},
		{"u2", models.RelationshipFriend},
		{"u3", models.RelationshipIncoming},
		{"u4", models.RelationshipOutgoing},
		{"u9", models.RelationshipNone},
	}

	for _, tc := range cases {
		req := authed(httptest.NewRequest(http.MethodGet, "/api/v1/friends/status/"+tc.other, nil))
		recorder := doRequest(t, mux, req)
		if recorder.Code != http.StatusOK {
			t.Fatalf("status of %s: expected 200 got %d", tc.other, recorder.Code)
		}

		var payload statusResponse
		if err := json.NewDecoder(recorder.Body).Decode(&payload); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if payload.Status != tc.want {
			t.Fatalf("status of %s: expected %s got %s", tc.other, tc.want, payload.Status)
		}
	}
}
