package relationship

import "github.com/tripmates/backend/internal/models"

// Snapshot is the already-fetched local state a status derivation runs over:
// the viewer's friend ids and their pending request queues. Deriving a status
// performs no store access.
type Snapshot struct {
	SelfID    string
	FriendIDs []string
	Incoming  []models.FriendRequest
	Outgoing  []models.FriendRequest
}

// StatusOf classifies how the snapshot's owner relates to the other user.
// When several classifications could apply the strongest wins:
// self > friend > incoming request > outgoing request > none.
func (s Snapshot) StatusOf(otherID string) models.RelationshipStatus {
	if otherID == s.SelfID {
		return models.RelationshipSelf
	}

	for _, id := range s.FriendIDs {
		if id == otherID {
			return models.RelationshipFriend
		}
	}

	for _, request := range s.Incoming {
		if request.From == otherID && request.Status == models.RequestStatusPending {
			return models.RelationshipIncoming
		}
	}

	for _, request := range s.Outgoing {
		if request.To == otherID && request.Status == models.RequestStatusPending {
			return models.RelationshipOutgoing
		}
	}

	return models.RelationshipNone
}
