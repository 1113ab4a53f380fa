package service

import (
	"context"
	"errors"
	"testing"

	"github.com/compclass/platform/internal/domain"
	"github.com/compclass/platform/internal/pin"
	"github.com/compclass/platform/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTeams struct {
	membership *domain.TeamMembership
	err        error
}

func (f *fakeTeams) Create(_ context.Context, _ repository.DBTX, _ *domain.Team) error {
	return nil
}

func (f *fakeTeams) Update(_ context.Context, _ repository.DBTX, _, _ *domain.Team) error {
	return nil
}

func (f *fakeTeams) FindMembership(_ context.Context, _ repository.DBTX, _ int64, _ uuid.UUID) (*domain.TeamMembership, error) {
	return f.membership, f.err
}

func newProcessService(sessions repository.SessionRepository, teams repository.TeamRepository) *ProcessService {
	return NewProcessService(nil, nil, nil, pin.NewCodec(362759817), sessions, teams)
}

func TestStudentInfoPropagatesRepositoryErrors(t *testing.T) {
	ctx := context.Background()
	sessions := newFakeSessions()
	session := &domain.Session{CreatorID: uuid.New(), Settings: validSettings()}
	require.NoError(t, sessions.Create(ctx, nil, session))

	dbErr := errors.New("connection reset by peer")
	svc := newProcessService(sessions, &fakeTeams{err: dbErr})
	goodPin := pin.NewCodec(362759817).Encode(session.ID)

	info, err := svc.StudentInfo(ctx, uuid.New(), goodPin)
	require.ErrorIs(t, err, dbErr)
	assert.Nil(t, info)
}

func TestStudentInfo(t *testing.T) {
	ctx := context.Background()
	codec := pin.NewCodec(362759817)
	alice := uuid.New()

	sessions := newFakeSessions()
	settings := validSettings()
	settings.Instruction = "maximize profit"
	settings.ShowPreviousRoundResults = true
	session := &domain.Session{
		CreatorID: uuid.New(),
		Settings:  settings,
		Teams: []domain.Team{{
			ID:           7,
			Name:         "alpha",
			NumberInGame: 1,
			Strategy:     "undercut",
			Members:      []domain.TeamMemberRecord{{UserID: alice, Captain: true}},
		}},
	}
	require.NoError(t, sessions.Create(ctx, nil, session))
	goodPin := codec.Encode(session.ID)

	t.Run("team member sees the competition view", func(t *testing.T) {
		svc := newProcessService(sessions, &fakeTeams{
			membership: &domain.TeamMembership{TeamID: 7, Captain: true},
		})

		info, err := svc.StudentInfo(ctx, alice, goodPin)
		require.NoError(t, err)
		require.NotNil(t, info)
		assert.Equal(t, settings.Name, info.Name)
		assert.Equal(t, "maximize profit", info.Description)
		assert.Equal(t, "alpha", info.TeamName)
		assert.Equal(t, 1, info.TeamIDInGame)
		assert.Equal(t, "undercut", info.Strategy)
		assert.True(t, info.IsCaptain)
		assert.True(t, info.ShouldShowResultTable)
		assert.Equal(t, settings.RoundsCount, info.RoundsCount)
	})

	t.Run("unknown pin answers absent without error", func(t *testing.T) {
		svc := newProcessService(sessions, &fakeTeams{})

		info, err := svc.StudentInfo(ctx, alice, "!!!!")
		require.NoError(t, err)
		assert.Nil(t, info)
	})

	t.Run("user on no team answers absent without error", func(t *testing.T) {
		svc := newProcessService(sessions, &fakeTeams{membership: nil})

		info, err := svc.StudentInfo(ctx, uuid.New(), goodPin)
		require.NoError(t, err)
		assert.Nil(t, info)
	})
}
