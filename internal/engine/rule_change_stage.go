package engine

import (
	"context"

	"github.com/compclass/platform/internal/domain"
	"github.com/compclass/platform/internal/repository"
)

// ChangeStageRule advances the session one stage forward. Only the
// session creator may trigger it; the stage machine never cycles.
type ChangeStageRule struct {
	sessions repository.SessionRepository
}

// NewChangeStageRule creates the (Teacher, ChangeStage) rule.
func NewChangeStageRule(sessions repository.SessionRepository) *ChangeStageRule {
	return &ChangeStageRule{sessions: sessions}
}

func (r *ChangeStageRule) Accepts() (domain.RoleTag, domain.CommandTag) {
	return domain.PlayerTeacher, domain.CmdChangeStage
}

func (r *ChangeStageRule) Process(ctx context.Context, db repository.DBTX, player domain.Player, cmd domain.Command) ([]domain.Envelope, error) {
	caller, ok := player.(domain.Teacher)
	if !ok || cmd.Tag() != domain.CmdChangeStage {
		return nil, domain.ErrNoRule(player.Role(), cmd.Tag())
	}

	session, err := r.sessions.Load(ctx, db, caller.SessionID,
		repository.WithSettings|repository.WithTeams|repository.WithStage)
	if err != nil {
		return nil, err
	}

	next := session.Stage.Next()
	if !session.Stage.CanAdvanceTo(next) {
		return nil, domain.ErrValidation("competition is already finished")
	}

	// Compare-and-replace on the stage column: a concurrent transition
	// surfaces as a conflict instead of a double advance.
	if err := r.sessions.UpdateStage(ctx, db, session.ID, session.Stage, next); err != nil {
		return nil, err
	}

	notice := domain.StageChanged{
		From:           session.Stage,
		To:             next,
		RoundLengthSec: session.Settings.RoundLengthSec,
		IsEndOfGame:    next == domain.StageFinished,
	}
	envelopes := make([]domain.Envelope, 0, len(session.Teams))
	for _, t := range session.Teams {
		envelopes = append(envelopes, domain.Envelope{
			Recipient: domain.TeamRecipient(t.ID),
			Message:   notice,
		})
	}
	return envelopes, nil
}
