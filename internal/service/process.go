package service

import (
	"context"

	"github.com/compclass/platform/internal/domain"
	"github.com/compclass/platform/internal/engine"
	"github.com/compclass/platform/internal/pin"
	"github.com/compclass/platform/internal/repository"
	"github.com/compclass/platform/internal/stream"
	"github.com/google/uuid"
)

// ProcessService is the boundary between pin-addressed clients and the
// rule engine: it decodes pins, submits commands and exposes the
// session's live streams.
type ProcessService struct {
	db       repository.DB
	engine   *engine.Engine
	hub      *stream.Hub
	pins     *pin.Codec
	sessions repository.SessionRepository
	teams    repository.TeamRepository
}

// NewProcessService creates a new ProcessService.
func NewProcessService(
	db repository.DB,
	eng *engine.Engine,
	hub *stream.Hub,
	pins *pin.Codec,
	sessions repository.SessionRepository,
	teams repository.TeamRepository,
) *ProcessService {
	return &ProcessService{
		db:       db,
		engine:   eng,
		hub:      hub,
		pins:     pins,
		sessions: sessions,
		teams:    teams,
	}
}

// SubmitCommand decodes the pin and runs the command through the engine.
func (s *ProcessService) SubmitCommand(ctx context.Context, sessionPin string, user domain.User, cmd domain.Command) ([]domain.Envelope, error) {
	sessionID, err := s.pins.Decode(sessionPin)
	if err != nil {
		return nil, domain.ErrValidation("incorrect pin")
	}
	return s.engine.Execute(ctx, sessionID, user, cmd)
}

// Events returns the session's raw live stream starting at the tail.
func (s *ProcessService) Events(sessionPin string) (<-chan stream.Event, func(), error) {
	sessionID, err := s.pins.Decode(sessionPin)
	if err != nil {
		return nil, nil, domain.ErrValidation("incorrect pin")
	}
	ch, cancel := s.hub.Subscribe(sessionID)
	return ch, cancel, nil
}

// RoundEvents returns the round-event projection of the live stream.
func (s *ProcessService) RoundEvents(sessionPin string) (<-chan stream.Event, func(), error) {
	ch, cancel, err := s.Events(sessionPin)
	if err != nil {
		return nil, nil, err
	}
	return stream.ProjectRounds(ch), cancel, nil
}

// History returns the session's full raw log for results-table views.
func (s *ProcessService) History(sessionPin string) ([]stream.Event, error) {
	sessionID, err := s.pins.Decode(sessionPin)
	if err != nil {
		return nil, domain.ErrValidation("incorrect pin")
	}
	return s.hub.History(sessionID), nil
}

// StudentCompetitionInfo is the per-student results-table view.
type StudentCompetitionInfo struct {
	Name                   string `json:"name"`
	Description            string `json:"description"`
	TeamName               string `json:"team_name"`
	TeamIDInGame           int    `json:"team_id_in_game"`
	ShouldShowResultTable  bool   `json:"should_show_result_table"`
	ShouldShowResultsInEnd bool   `json:"should_show_results_in_end"`
	IsCaptain              bool   `json:"is_captain"`
	RoundsCount            int    `json:"rounds_count"`
	Strategy               string `json:"strategy"`
}

// StudentInfo resolves the competition view for one student, or nil
// when the pin is unknown or the student is on no team. Repository
// failures propagate unchanged.
func (s *ProcessService) StudentInfo(ctx context.Context, userID uuid.UUID, sessionPin string) (*StudentCompetitionInfo, error) {
	sessionID, err := s.pins.Decode(sessionPin)
	if err != nil {
		return nil, nil
	}

	membership, err := s.teams.FindMembership(ctx, s.db, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, nil
	}

	session, err := s.sessions.Load(ctx, s.db, sessionID,
		repository.WithSettings|repository.WithTeams)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	team := session.TeamByID(membership.TeamID)
	if team == nil {
		return nil, nil
	}

	settings := session.Settings
	return &StudentCompetitionInfo{
		Name:                   settings.Name,
		Description:            settings.Instruction,
		TeamName:               team.Name,
		TeamIDInGame:           team.NumberInGame,
		ShouldShowResultTable:  settings.ShowPreviousRoundResults,
		ShouldShowResultsInEnd: settings.ShowStudentsResultsTable,
		IsCaptain:              membership.Captain,
		RoundsCount:            settings.RoundsCount,
		Strategy:               team.Strategy,
	}, nil
}
