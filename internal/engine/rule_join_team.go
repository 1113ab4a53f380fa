package engine

import (
	"context"
	"fmt"

	"github.com/compclass/platform/internal/domain"
	"github.com/compclass/platform/internal/repository"
)

// JoinTeamRule adds an unaffiliated user to an existing team during
// registration.
type JoinTeamRule struct {
	sessions repository.SessionRepository
	teams    repository.TeamRepository
	users    repository.UserRepository
}

// NewJoinTeamRule creates the (Unknown, JoinTeam) rule.
func NewJoinTeamRule(
	sessions repository.SessionRepository,
	teams repository.TeamRepository,
	users repository.UserRepository,
) *JoinTeamRule {
	return &JoinTeamRule{sessions: sessions, teams: teams, users: users}
}

func (r *JoinTeamRule) Accepts() (domain.RoleTag, domain.CommandTag) {
	return domain.PlayerUnknown, domain.CmdJoinTeam
}

func (r *JoinTeamRule) Process(ctx context.Context, db repository.DBTX, player domain.Player, cmd domain.Command) ([]domain.Envelope, error) {
	caller, ok := player.(domain.Unknown)
	join, ok2 := cmd.(domain.JoinTeam)
	if !ok || !ok2 {
		return nil, domain.ErrNoRule(player.Role(), cmd.Tag())
	}

	session, err := r.sessions.Load(ctx, db, caller.SessionID,
		repository.WithSettings|repository.WithTeams|repository.WithStage)
	if err != nil {
		return nil, err
	}

	oldTeam := session.TeamByName(join.TeamName)
	if oldTeam == nil {
		return nil, domain.ErrValidation(fmt.Sprintf("no team in competition with name: %s", join.TeamName))
	}
	if join.Password != oldTeam.Password {
		return nil, domain.ErrValidation("wrong team password")
	}
	// Capacity is checked against the pre-join roster inside the
	// transaction; the versioned update below closes the window two
	// concurrent joins could otherwise slip through.
	if len(oldTeam.Members) >= session.Settings.MaxTeamSize {
		return nil, domain.ErrValidation(fmt.Sprintf(
			"there are too many team members already, max amount: %d", session.Settings.MaxTeamSize))
	}
	if session.Stage != domain.StageRegistration {
		return nil, domain.ErrValidation("illegal competition stage")
	}

	newTeam := oldTeam.WithMember(caller.User.ID, false)
	if err := r.teams.Update(ctx, db, oldTeam, &newTeam); err != nil {
		return nil, err
	}

	members, err := r.users.FindByIDs(ctx, db, newTeam.MemberIDs())
	if err != nil {
		return nil, err
	}
	emails := make([]string, len(members))
	for i, u := range members {
		emails[i] = u.Email
	}

	return []domain.Envelope{{
		Recipient: domain.TeamRecipient(newTeam.ID),
		Message: domain.TeamJoined{
			TeamName:     newTeam.Name,
			IDInGame:     newTeam.NumberInGame,
			MemberEmails: emails,
		},
	}}, nil
}
