package engine

import (
	"context"
	"fmt"

	"github.com/compclass/platform/internal/domain"
	"github.com/compclass/platform/internal/repository"
)

// PlayerResolver determines the role a user currently holds within a
// session. Resolution is derived from membership records and session
// ownership, never stored, and has no side effects.
type PlayerResolver struct {
	sessions repository.SessionRepository
	teams    repository.TeamRepository
}

// NewPlayerResolver creates a resolver over the given repositories.
func NewPlayerResolver(sessions repository.SessionRepository, teams repository.TeamRepository) *PlayerResolver {
	return &PlayerResolver{sessions: sessions, teams: teams}
}

// Resolve returns the single player variant for (sessionID, user):
// a team membership wins, then session ownership, then Unknown.
func (r *PlayerResolver) Resolve(ctx context.Context, db repository.DBTX, sessionID int64, user domain.User) (domain.Player, error) {
	membership, err := r.teams.FindMembership(ctx, db, sessionID, user.ID)
	if err != nil {
		return nil, fmt.Errorf("resolve player: %w", err)
	}
	if membership != nil {
		if membership.Captain {
			return domain.TeamCaptain{SessionID: sessionID, User: user, TeamID: membership.TeamID}, nil
		}
		return domain.TeamMember{SessionID: sessionID, User: user, TeamID: membership.TeamID}, nil
	}

	isCreator, err := r.sessions.IsCreator(ctx, db, sessionID, user.ID)
	if err != nil {
		return nil, fmt.Errorf("resolve player: %w", err)
	}
	if isCreator {
		return domain.Teacher{SessionID: sessionID, User: user}, nil
	}

	return domain.Unknown{SessionID: sessionID, User: user}, nil
}
