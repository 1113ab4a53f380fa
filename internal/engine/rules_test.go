package engine

import (
	"context"
	"testing"

	"github.com/compclass/platform/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTeamRule(t *testing.T) {
	ctx := context.Background()

	setup := func(stage domain.Stage) (*memStore, *CreateTeamRule, *domain.Session, domain.User) {
		store := newMemStore()
		teacher := store.addUser("teacher@school.edu", domain.RoleTeacher)
		settings := domain.Settings{Name: "Econ", MaxTeamSize: 3, RoundsCount: 5, RoundLengthSec: 60}
		session := store.addSession(teacher, settings, stage)
		alice := store.addUser("alice@x", domain.RoleStudent)
		return store, NewCreateTeamRule(store, memTeams{store}), session, alice
	}

	t.Run("creator becomes captain", func(t *testing.T) {
		store, rule, session, alice := setup(domain.StageRegistration)

		envelopes, err := rule.Process(ctx, nil,
			domain.Unknown{SessionID: session.ID, User: alice},
			domain.CreateTeam{TeamName: "Alpha", Password: "x1"})
		require.NoError(t, err)
		require.Len(t, envelopes, 1, "no other teams yet, one envelope for the new team")

		msg := envelopes[0].Message.(domain.TeamCreated)
		assert.Equal(t, "Alpha", msg.TeamName)
		assert.Equal(t, 1, msg.IDInGame)

		m, err := memTeams{store}.FindMembership(ctx, nil, session.ID, alice.ID)
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.True(t, m.Captain)
	})

	t.Run("announces to every existing team", func(t *testing.T) {
		store, rule, session, alice := setup(domain.StageRegistration)
		existing := store.addTeam(session.ID, "Beta", "pw")

		envelopes, err := rule.Process(ctx, nil,
			domain.Unknown{SessionID: session.ID, User: alice},
			domain.CreateTeam{TeamName: "Alpha", Password: "x1"})
		require.NoError(t, err)
		require.Len(t, envelopes, 2)
		assert.Equal(t, domain.TeamRecipient(existing.ID), envelopes[0].Recipient)
		// Second envelope addresses the newly created team.
		assert.NotEqual(t, envelopes[0].Recipient, envelopes[1].Recipient)
	})

	t.Run("duplicate name rejected", func(t *testing.T) {
		store, rule, session, alice := setup(domain.StageRegistration)
		store.addTeam(session.ID, "Alpha", "pw")

		_, err := rule.Process(ctx, nil,
			domain.Unknown{SessionID: session.ID, User: alice},
			domain.CreateTeam{TeamName: "Alpha", Password: "x1"})
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("stage gate", func(t *testing.T) {
		_, rule, session, alice := setup(domain.StageInProgress)

		_, err := rule.Process(ctx, nil,
			domain.Unknown{SessionID: session.ID, User: alice},
			domain.CreateTeam{TeamName: "Alpha", Password: "x1"})
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
		assert.Contains(t, err.Error(), "illegal competition stage")
	})
}

func TestLeaveTeamRule(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	teacher := store.addUser("teacher@school.edu", domain.RoleTeacher)
	alice := store.addUser("alice@x", domain.RoleStudent)
	bob := store.addUser("bob@x", domain.RoleStudent)
	settings := domain.Settings{Name: "Econ", MaxTeamSize: 3, RoundsCount: 5, RoundLengthSec: 60}
	session := store.addSession(teacher, settings, domain.StageRegistration)
	team := store.addTeam(session.ID, "Alpha", "x1",
		domain.TeamMemberRecord{UserID: alice.ID, Captain: true},
		domain.TeamMemberRecord{UserID: bob.ID},
	)
	rule := NewLeaveTeamRule(store, memTeams{store}, memUsers{store})

	envelopes, err := rule.Process(ctx, nil,
		domain.TeamMember{SessionID: session.ID, User: bob, TeamID: team.ID},
		domain.LeaveTeam{})
	require.NoError(t, err)
	require.Len(t, envelopes, 2)

	msg := envelopes[0].Message.(domain.RosterChanged)
	assert.Equal(t, domain.TeamRecipient(team.ID), envelopes[0].Recipient)
	assert.Equal(t, []string{"alice@x"}, msg.MemberEmails)
	assert.False(t, store.team(team.ID).HasMember(bob.ID))

	// The departing member gets a user-addressed confirmation: team
	// envelopes no longer reach them.
	left := envelopes[1].Message.(domain.TeamLeft)
	assert.Equal(t, domain.UserRecipient(bob.ID), envelopes[1].Recipient)
	assert.Equal(t, "Alpha", left.TeamName)

	t.Run("stage gate after start", func(t *testing.T) {
		require.NoError(t, store.UpdateStage(ctx, nil, session.ID, domain.StageRegistration, domain.StageInProgress))
		current := store.team(team.ID)

		_, err := rule.Process(ctx, nil,
			domain.TeamMember{SessionID: session.ID, User: alice, TeamID: team.ID},
			domain.LeaveTeam{})
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
		assert.Equal(t, current.Version, store.team(team.ID).Version)
	})
}

func TestSubmitStrategyRule(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	teacher := store.addUser("teacher@school.edu", domain.RoleTeacher)
	alice := store.addUser("alice@x", domain.RoleStudent)
	settings := domain.Settings{Name: "Econ", MaxTeamSize: 3, RoundsCount: 5, RoundLengthSec: 60}
	session := store.addSession(teacher, settings, domain.StageRegistration)
	team := store.addTeam(session.ID, "Alpha", "x1",
		domain.TeamMemberRecord{UserID: alice.ID, Captain: true})
	rule := NewSubmitStrategyRule(store, memTeams{store})

	envelopes, err := rule.Process(ctx, nil,
		domain.TeamCaptain{SessionID: session.ID, User: alice, TeamID: team.ID},
		domain.SubmitStrategy{Strategy: "hold price at 10"})
	require.NoError(t, err)
	require.Len(t, envelopes, 1)

	msg := envelopes[0].Message.(domain.StrategySubmitted)
	assert.Equal(t, "hold price at 10", msg.Strategy)
	assert.Equal(t, "hold price at 10", store.team(team.ID).Strategy)

	t.Run("resubmission overwrites", func(t *testing.T) {
		_, err := rule.Process(ctx, nil,
			domain.TeamCaptain{SessionID: session.ID, User: alice, TeamID: team.ID},
			domain.SubmitStrategy{Strategy: "undercut instead"})
		require.NoError(t, err)
		assert.Equal(t, "undercut instead", store.team(team.ID).Strategy)
	})
}

func TestChangeStageRuleBroadcastsPerTeam(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	teacher := store.addUser("teacher@school.edu", domain.RoleTeacher)
	settings := domain.Settings{Name: "Econ", MaxTeamSize: 3, RoundsCount: 5, RoundLengthSec: 45}
	session := store.addSession(teacher, settings, domain.StageRegistration)
	alpha := store.addTeam(session.ID, "Alpha", "a")
	beta := store.addTeam(session.ID, "Beta", "b")
	rule := NewChangeStageRule(store)

	envelopes, err := rule.Process(ctx, nil,
		domain.Teacher{SessionID: session.ID, User: teacher},
		domain.ChangeStage{})
	require.NoError(t, err)
	require.Len(t, envelopes, 2, "session-wide broadcast is one envelope per team")

	recipients := []domain.Recipient{envelopes[0].Recipient, envelopes[1].Recipient}
	assert.Contains(t, recipients, domain.TeamRecipient(alpha.ID))
	assert.Contains(t, recipients, domain.TeamRecipient(beta.ID))

	for _, env := range envelopes {
		sc := env.Message.(domain.StageChanged)
		assert.Equal(t, domain.StageRegistration, sc.From)
		assert.Equal(t, domain.StageInProgress, sc.To)
		assert.Equal(t, 45, sc.RoundLengthSec)
		assert.False(t, sc.IsEndOfGame)
	}
}
