package domain

import (
	"time"

	"github.com/google/uuid"
)

// TeamMemberRecord is one (team, user) membership row.
type TeamMemberRecord struct {
	UserID  uuid.UUID `json:"user_id"`
	Captain bool      `json:"captain"`
}

// Team is a named, password-protected group of students competing
// together within one session. Teams are immutable values: mutation is
// expressed as deriving a new value and submitting a versioned
// compare-and-replace through the repository.
type Team struct {
	ID           int64              `json:"id"`
	SessionID    int64              `json:"session_id"`
	Name         string             `json:"name"`
	Password     string             `json:"-"`
	NumberInGame int                `json:"number_in_game"`
	Version      int64              `json:"version"`
	Members      []TeamMemberRecord `json:"members"`
	Strategy     string             `json:"strategy,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
}

// WithMember returns a copy of t with the given member appended.
func (t Team) WithMember(userID uuid.UUID, captain bool) Team {
	members := make([]TeamMemberRecord, 0, len(t.Members)+1)
	members = append(members, t.Members...)
	members = append(members, TeamMemberRecord{UserID: userID, Captain: captain})
	t.Members = members
	return t
}

// WithoutMember returns a copy of t with the given member removed.
func (t Team) WithoutMember(userID uuid.UUID) Team {
	members := make([]TeamMemberRecord, 0, len(t.Members))
	for _, m := range t.Members {
		if m.UserID != userID {
			members = append(members, m)
		}
	}
	t.Members = members
	return t
}

// WithStrategy returns a copy of t with the submitted strategy set.
func (t Team) WithStrategy(strategy string) Team {
	t.Strategy = strategy
	return t
}

// HasMember reports whether userID is on the team.
func (t Team) HasMember(userID uuid.UUID) bool {
	for _, m := range t.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// MemberIDs returns the user ids of all members in roster order.
func (t Team) MemberIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(t.Members))
	for i, m := range t.Members {
		ids[i] = m.UserID
	}
	return ids
}

// TeamMembership is the membership record resolved for one
// (session, user) pair.
type TeamMembership struct {
	TeamID  int64
	Captain bool
}
