package engine

import (
	"context"
	"fmt"

	"github.com/compclass/platform/internal/domain"
	"github.com/compclass/platform/internal/repository"
)

// CreateTeamRule registers a new team during registration; the caller
// becomes its captain.
type CreateTeamRule struct {
	sessions repository.SessionRepository
	teams    repository.TeamRepository
}

// NewCreateTeamRule creates the (Unknown, CreateTeam) rule.
func NewCreateTeamRule(sessions repository.SessionRepository, teams repository.TeamRepository) *CreateTeamRule {
	return &CreateTeamRule{sessions: sessions, teams: teams}
}

func (r *CreateTeamRule) Accepts() (domain.RoleTag, domain.CommandTag) {
	return domain.PlayerUnknown, domain.CmdCreateTeam
}

func (r *CreateTeamRule) Process(ctx context.Context, db repository.DBTX, player domain.Player, cmd domain.Command) ([]domain.Envelope, error) {
	caller, ok := player.(domain.Unknown)
	create, ok2 := cmd.(domain.CreateTeam)
	if !ok || !ok2 {
		return nil, domain.ErrNoRule(player.Role(), cmd.Tag())
	}

	if create.TeamName == "" {
		return nil, domain.ErrValidation("team name is required")
	}
	if create.Password == "" {
		return nil, domain.ErrValidation("team password is required")
	}

	session, err := r.sessions.Load(ctx, db, caller.SessionID,
		repository.WithTeams|repository.WithStage)
	if err != nil {
		return nil, err
	}

	for _, t := range session.Teams {
		if t.Name == create.TeamName {
			return nil, domain.ErrValidation(fmt.Sprintf("team name already taken: %s", create.TeamName))
		}
	}
	if session.Stage != domain.StageRegistration {
		return nil, domain.ErrValidation("illegal competition stage")
	}

	team := domain.Team{
		SessionID:    caller.SessionID,
		Name:         create.TeamName,
		Password:     create.Password,
		NumberInGame: len(session.Teams) + 1,
		Members: []domain.TeamMemberRecord{
			{UserID: caller.User.ID, Captain: true},
		},
	}
	if err := r.teams.Create(ctx, db, &team); err != nil {
		return nil, err
	}

	// Session-wide announcement: one envelope per current team,
	// including the one just created.
	notice := domain.TeamCreated{TeamName: team.Name, IDInGame: team.NumberInGame}
	envelopes := make([]domain.Envelope, 0, len(session.Teams)+1)
	for _, t := range session.Teams {
		envelopes = append(envelopes, domain.Envelope{
			Recipient: domain.TeamRecipient(t.ID),
			Message:   notice,
		})
	}
	envelopes = append(envelopes, domain.Envelope{
		Recipient: domain.TeamRecipient(team.ID),
		Message:   notice,
	})
	return envelopes, nil
}
