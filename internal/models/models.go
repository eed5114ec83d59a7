package models

import "time"

// UserProfile represents an account within the Tripmates platform. Profile
// fields beyond the credentials are what the directory exposes to other users.
type UserProfile struct {
	ID          string
	Email       string
	Password    string
	DisplayName string
	PhotoURL    string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PublicProfile is the directory view of a user, stripped of credentials.
type PublicProfile struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"displayName"`
	Email       string    `json:"email"`
	PhotoURL    string    `json:"photoURL,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Public converts a full profile into its directory representation.
func (u UserProfile) Public() PublicProfile {
	return PublicProfile{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		PhotoURL:    u.PhotoURL,
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt,
	}
}

// RequestStatus enumerates the lifecycle states of a friend request.
// Pending is the only state that persists; accepted and rejected requests
// are deleted rather than archived.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusAccepted RequestStatus = "accepted"
	RequestStatusRejected RequestStatus = "rejected"
)

// FriendRequest represents a directional proposal to establish a friendship.
type FriendRequest struct {
	ID     string        `json:"id"`
	From   string        `json:"from"`
	To     string        `json:"to"`
	Status RequestStatus `json:"status"`
	SentAt time.Time     `json:"sentAt"`
}

// FriendSet is one user's side of the symmetric friendship relation: the set
// of friend ids plus the parallel map of when each friend was added. Both
// sides of a friendship hold their own record, so every mutation touches two.
type FriendSet struct {
	UserID    string
	FriendIDs []string
	AddedAt   map[string]time.Time
}

// Contains reports whether the given user id is in the set.
func (s FriendSet) Contains(id string) bool {
	for _, fid := range s.FriendIDs {
		if fid == id {
			return true
		}
	}
	return false
}

// Friend is a single entry of a user's friend list.
type Friend struct {
	ID      string    `json:"id"`
	AddedAt time.Time `json:"addedAt"`
}

// RelationshipStatus classifies how one user relates to another.
type RelationshipStatus string

const (
	RelationshipSelf     RelationshipStatus = "self"
	RelationshipFriend   RelationshipStatus = "friend"
	RelationshipIncoming RelationshipStatus = "incoming_request"
	RelationshipOutgoing RelationshipStatus = "outgoing_request"
	RelationshipNone     RelationshipStatus = "none"
)

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}
