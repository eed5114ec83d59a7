package directory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tripmates/backend/internal/models"
	"github.com/tripmates/backend/internal/repositories"
)

// ErrProviderUnavailable indicates the directory was constructed without a backing source.
var ErrProviderUnavailable = errors.New("directory provider unavailable")

// Provider resolves public profile records. The relationship layer only uses
// it for display metadata, never for authorization.
type Provider interface {
	Profile(ctx context.Context, id string) (models.PublicProfile, error)
	Search(ctx context.Context, query, excludeID string, limit int) ([]models.PublicProfile, error)
}

// FriendProfile pairs a directory profile with the friendship added-at stamp.
type FriendProfile struct {
	models.PublicProfile
	AddedAt time.Time `json:"addedAt"`
}

// Service exposes the user repository as a read-only directory.
type Service struct {
	users repositories.UserRepository
}

// NewService constructs a directory over the user repository.
func NewService(users repositories.UserRepository) *Service {
	return &Service{users: users}
}

// Profile returns the public view of a user.
func (s *Service) Profile(ctx context.Context, id string) (models.PublicProfile, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.PublicProfile{}, repositories.ErrNotFound
		}
		return models.PublicProfile{}, fmt.Errorf("load profile: %w", err)
	}
	return user.Public(), nil
}

// Search returns public profiles matching the query, excluding the caller.
func (s *Service) Search(ctx context.Context, query, excludeID string, limit int) ([]models.PublicProfile, error) {
	users, err := s.users.Search(ctx, query, excludeID, limit)
	if err != nil {
		return nil, fmt.Errorf("search profiles: %w", err)
	}

	profiles := make([]models.PublicProfile, 0, len(users))
	for _, user := range users {
		profiles = append(profiles, user.Public())
	}
	return profiles, nil
}

// Resolve maps friend entries to directory profiles. A friend whose profile
// record is missing still appears in the result with placeholder metadata, so
// a deleted account never hides a live friendship edge.
func Resolve(ctx context.Context, provider Provider, friends []models.Friend) ([]FriendProfile, error) {
	if provider == nil {
		return nil, ErrProviderUnavailable
	}

	resolved := make([]FriendProfile, 0, len(friends))
	for _, friend := range friends {
		profile, err := provider.Profile(ctx, friend.ID)
		if err != nil {
			if !errors.Is(err, repositories.ErrNotFound) {
				return nil, err
			}
			profile = models.PublicProfile{ID: friend.ID, DisplayName: "Unknown User"}
		}
		resolved = append(resolved, FriendProfile{PublicProfile: profile, AddedAt: friend.AddedAt})
	}
	return resolved, nil
}

var _ Provider = (*Service)(nil)
