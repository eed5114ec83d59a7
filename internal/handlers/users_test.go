package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tripmates/backend/internal/models"
)

func userDeps(dir *stubDirectory) Dependencies {
	return Dependencies{
		Sessions:  &stubSessions{token: "valid-token", userID: "u1"},
		Directory: dir,
	}
}

func TestUserSearch(t *testing.T) {
	dir := &stubDirectory{profiles: map[string]models.PublicProfile{
		"u1": {ID: "u1", DisplayName: "Me"},
		"u2": {ID: "u2", DisplayName: "Bob"},
	}}
	mux := newTestMux(userDeps(dir))

	req := authed(httptest.NewRequest(http.MethodGet, "/api/v1/users?q=bo", nil))
	recorder := doRequest(t, mux, req)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", recorder.Code)
	}

	var payload userListResponse
	if err := json.NewDecoder(recorder.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// The caller is excluded from their own search results.
	if len(payload.Users) != 1 || payload.Users[0].ID != "u2" {
		t.Fatalf("unexpected results: %+v", payload.Users)
	}
}

func TestUserSearchValidation(t *testing.T) {
	mux := newTestMux(userDeps(&stubDirectory{}))

	for _, path := range []string{
		"/api/v1/users?q=",
		"/api/v1/users?q=bo&limit=0",
		"/api/v1/users?q=bo&limit=abc",
	} {
		req := authed(httptest.NewRequest(http.MethodGet, path, nil))
		if recorder := doRequest(t, mux, req); recorder.Code != http.StatusBadRequest {
			t.Fatalf("path %s: expected 400 got %d", path, recorder.Code)
		}
	}
}

func TestUserGet(t *testing.T) {
	dir := &stubDirectory{profiles: map[string]models.PublicProfile{
		"u2": {ID: "u2", DisplayName: "Bob"},
	}}
	mux := newTestMux(userDeps(dir))

	req := authed(httptest.NewRequest(http.MethodGet, "/api/v1/users/u2", nil))
	recorder := doRequest(t, mux, req)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", recorder.Code)
	}

	var payload userResponse
	if err := json.NewDecoder(recorder.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.User.DisplayName != "Bob" {
		t.Fatalf("unexpected profile: %+v", payload.User)
	}

	req = authed(httptest.NewRequest(http.MethodGet, "/api/v1/users/missing", nil))
	if recorder := doRequest(t, mux, req); recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", recorder.Code)
	}
}
