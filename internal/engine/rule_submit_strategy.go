package engine

import (
	"context"
	"fmt"

	"github.com/compclass/platform/internal/domain"
	"github.com/compclass/platform/internal/repository"
)

// SubmitStrategyRule records the captain's strategy text on the team
// during registration.
type SubmitStrategyRule struct {
	sessions repository.SessionRepository
	teams    repository.TeamRepository
}

// NewSubmitStrategyRule creates the (TeamCaptain, SubmitStrategy) rule.
func NewSubmitStrategyRule(sessions repository.SessionRepository, teams repository.TeamRepository) *SubmitStrategyRule {
	return &SubmitStrategyRule{sessions: sessions, teams: teams}
}

func (r *SubmitStrategyRule) Accepts() (domain.RoleTag, domain.CommandTag) {
	return domain.PlayerTeamCaptain, domain.CmdSubmitStrategy
}

func (r *SubmitStrategyRule) Process(ctx context.Context, db repository.DBTX, player domain.Player, cmd domain.Command) ([]domain.Envelope, error) {
	caller, ok := player.(domain.TeamCaptain)
	submit, ok2 := cmd.(domain.SubmitStrategy)
	if !ok || !ok2 {
		return nil, domain.ErrNoRule(player.Role(), cmd.Tag())
	}

	session, err := r.sessions.Load(ctx, db, caller.SessionID,
		repository.WithTeams|repository.WithStage)
	if err != nil {
		return nil, err
	}

	oldTeam := session.TeamByID(caller.TeamID)
	if oldTeam == nil {
		return nil, domain.ErrNotFound("team", fmt.Sprint(caller.TeamID))
	}
	if session.Stage != domain.StageRegistration {
		return nil, domain.ErrValidation("illegal competition stage")
	}

	newTeam := oldTeam.WithStrategy(submit.Strategy)
	if err := r.teams.Update(ctx, db, oldTeam, &newTeam); err != nil {
		return nil, err
	}

	return []domain.Envelope{{
		Recipient: domain.TeamRecipient(newTeam.ID),
		Message: domain.StrategySubmitted{
			TeamName: newTeam.Name,
			Strategy: newTeam.Strategy,
		},
	}}, nil
}
