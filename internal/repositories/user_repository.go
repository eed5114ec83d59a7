package repositories

import (
	"context"

	"github.com/tripmates/backend/internal/models"
)

// UserRepository defines the data access contract for the user directory.
// The relationship manager only ever reads from it; writes happen during
// signup and profile updates.
type UserRepository interface {
	Create(ctx context.Context, user models.UserProfile) error
	FindByEmail(ctx context.Context, email string) (models.UserProfile, error)
	FindByID(ctx context.Context, id string) (models.UserProfile, error)
	Search(ctx context.Context, query, excludeID string, limit int) ([]models.UserProfile, error)
	Update(ctx context.Context, user models.UserProfile) error
	SetActive(ctx context.Context, id string, active bool) error
}
