package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tripmates/backend/internal/models"
	"github.com/tripmates/backend/internal/relationship"
	"github.com/tripmates/backend/internal/repositories"
)

// stubSessions resolves its configured token to its configured user and
// rejects everything else.
type stubSessions struct {
	token  string
	userID string
}

func (s *stubSessions) Issue(_ context.Context, userID string) (models.SessionTokens, error) {
	return models.SessionTokens{AccessToken: s.token, RefreshToken: "refresh-" + userID}, nil
}

func (s *stubSessions) Refresh(_ context.Context, refreshToken string) (models.SessionTokens, error) {
	if refreshToken != "refresh-"+s.userID {
		return models.SessionTokens{}, errors.New("session not found")
	}
	return models.SessionTokens{AccessToken: s.token, RefreshToken: "refresh-" + s.userID}, nil
}

func (s *stubSessions) Authenticate(_ context.Context, accessToken string) (string, error) {
	if accessToken != s.token {
		return "", errors.New("access token invalid")
	}
	return s.userID, nil
}

func (s *stubSessions) Revoke(context.Context, string) {}

// fakeRelationships implements RelationshipManager with overridable behavior
// per method. Unset methods return zero values.
type fakeRelationships struct {
	sendFn    func(ctx context.Context, fromID, toID string) (models.FriendRequest, error)
	cancelFn  func(ctx context.Context, actorID, requestID string) error
	respondFn func(ctx context.Context, actorID, requestID string, decision relationship.Decision) error
	addFn     func(ctx context.Context, actorID, otherID string) error
	removeFn  func(ctx context.Context, actorID, otherID string) error

	friends  []models.Friend
	incoming []models.FriendRequest
	outgoing []models.FriendRequest
	listErr  error
}

func (f *fakeRelationships) SendRequest(ctx context.Context, fromID, toID string) (models.FriendRequest, error) {
	if f.sendFn == nil {
		return models.FriendRequest{}, nil
	}
	return f.sendFn(ctx, fromID, toID)
}

func (f *fakeRelationships) CancelRequest(ctx context.Context, actorID, requestID string) error {
	if f.cancelFn == nil {
		return nil
	}
	return f.cancelFn(ctx, actorID, requestID)
}

func (f *fakeRelationships) RespondToRequest(ctx context.Context, actorID, requestID string, decision relationship.Decision) error {
	if f.respondFn == nil {
		return nil
	}
	return f.respondFn(ctx, actorID, requestID, decision)
}

func (f *fakeRelationships) AddFriend(ctx context.Context, actorID, otherID string) error {
	if f.addFn == nil {
		return nil
	}
	return f.addFn(ctx, actorID, otherID)
}

func (f *fakeRelationships) RemoveFriend(ctx context.Context, actorID, otherID string) error {
	if f.removeFn == nil {
		return nil
	}
	return f.removeFn(ctx, actorID, otherID)
}

func (f *fakeRelationships) ListFriends(context.Context, string) ([]models.Friend, error) {
	return f.friends, f.listErr
}

func (f *fakeRelationships) ListIncoming(context.Context, string) ([]models.FriendRequest, error) {
	return f.incoming, f.listErr
}

func (f *fakeRelationships) ListOutgoing(context.Context, string) ([]models.FriendRequest, error) {
	return f.outgoing, f.listErr
}

func (f *fakeRelationships) SnapshotFor(_ context.Context, selfID string) (relationship.Snapshot, error) {
	if f.listErr != nil {
		return relationship.Snapshot{}, f.listErr
	}
	ids := make([]string, 0, len(f.friends))
	for _, friend := range f.friends {
		ids = append(ids, friend.ID)
	}
	return relationship.Snapshot{
		SelfID:    selfID,
		FriendIDs: ids,
		Incoming:  f.incoming,
		Outgoing:  f.outgoing,
	}, nil
}

// stubDirectory serves a fixed profile map.
type stubDirectory struct {
	profiles map[string]models.PublicProfile
}

func (d *stubDirectory) Profile(_ context.Context, id string) (models.PublicProfile, error) {
	profile, ok := d.profiles[id]
	if !ok {
		return models.PublicProfile{}, repositories.ErrNotFound
	}
	return profile, nil
}

func (d *stubDirectory) Search(_ context.Context, query, excludeID string, _ int) ([]models.PublicProfile, error) {
	var out []models.PublicProfile
	for _, profile := range d.profiles {
		if profile.ID != excludeID {
			out = append(out, profile)
		}
	}
	return out, nil
}

// newTestMux registers the full route table over the provided dependencies so
// tests exercise method matching and path values the way production does.
func newTestMux(deps Dependencies) *http.ServeMux {
	mux := http.NewServeMux()
	RegisterRoutes(mux, deps)
	return mux
}

func doRequest(t *testing.T, mux *http.ServeMux, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, req)
	return recorder
}
