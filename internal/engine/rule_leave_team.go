package engine

import (
	"context"
	"fmt"

	"github.com/compclass/platform/internal/domain"
	"github.com/compclass/platform/internal/repository"
)

// LeaveTeamRule removes a member from their team during registration.
// Captains cannot leave; they disband by not starting.
type LeaveTeamRule struct {
	sessions repository.SessionRepository
	teams    repository.TeamRepository
	users    repository.UserRepository
}

// NewLeaveTeamRule creates the (TeamMember, LeaveTeam) rule.
func NewLeaveTeamRule(
	sessions repository.SessionRepository,
	teams repository.TeamRepository,
	users repository.UserRepository,
) *LeaveTeamRule {
	return &LeaveTeamRule{sessions: sessions, teams: teams, users: users}
}

func (r *LeaveTeamRule) Accepts() (domain.RoleTag, domain.CommandTag) {
	return domain.PlayerTeamMember, domain.CmdLeaveTeam
}

func (r *LeaveTeamRule) Process(ctx context.Context, db repository.DBTX, player domain.Player, cmd domain.Command) ([]domain.Envelope, error) {
	caller, ok := player.(domain.TeamMember)
	if !ok || cmd.Tag() != domain.CmdLeaveTeam {
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

	newTeam := oldTeam.WithoutMember(caller.User.ID)
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

	return []domain.Envelope{
		{
			Recipient: domain.TeamRecipient(newTeam.ID),
			Message: domain.RosterChanged{
				TeamName:     newTeam.Name,
				IDInGame:     newTeam.NumberInGame,
				MemberEmails: emails,
			},
		},
		{
			Recipient: domain.UserRecipient(caller.User.ID),
			Message:   domain.TeamLeft{TeamName: newTeam.Name},
		},
	}, nil
}
