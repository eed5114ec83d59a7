package handlers

import "net/http"

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	auth := AuthHandler{Users: deps.Users, Sessions: deps.Sessions, Limiter: deps.AuthLimiter}
	users := UserHandler{Directory: deps.Directory, Sessions: deps.Sessions}
	friends := FriendHandler{
		Relationships: deps.Relationships,
		Directory:     deps.Directory,
		Sessions:      deps.Sessions,
	}
	live := SubscriptionHandler{Subscriptions: deps.Subscriptions, Sessions: deps.Sessions}

	mux.HandleFunc("GET /healthz", health.Handle)

	mux.HandleFunc("POST /api/v1/auth/signup", auth.SignUp)
	mux.HandleFunc("POST /api/v1/auth/login", auth.Login)
	mux.HandleFunc("POST /api/v1/auth/refresh", auth.Refresh)
	mux.HandleFunc("POST /api/v1/auth/logout", auth.Logout)
	mux.HandleFunc("POST /api/v1/auth/password-reset", auth.RequestPasswordReset)

	mux.HandleFunc("GET /api/v1/users", users.Search)
	mux.HandleFunc("GET /api/v1/users/{id}", users.Get)

	mux.HandleFunc("GET /api/v1/friends", friends.List)
	mux.HandleFunc("POST /api/v1/friends/{id}", friends.Add)
	mux.HandleFunc("DELETE /api/v1/friends/{id}", friends.Remove)
	mux.HandleFunc("GET /api/v1/friends/status/{id}", friends.Status)
	mux.HandleFunc("POST /api/v1/friends/requests", friends.Send)
	mux.HandleFunc("GET /api/v1/friends/requests", friends.ListRequests)
	mux.HandleFunc("DELETE /api/v1/friends/requests/{id}", friends.Cancel)
	mux.HandleFunc("POST /api/v1/friends/requests/{id}/respond", friends.Respond)
	mux.HandleFunc("GET /api/v1/friends/ws", live.Serve)
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users         UserStore
	Sessions      SessionManager
	Relationships RelationshipManager
	Subscriptions Subscriber
	Directory     Directory
	AuthLimiter   RateLimiter
}
