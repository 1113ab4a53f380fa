package service

import (
	"context"
	"log/slog"

	"github.com/compclass/platform/internal/domain"
	"github.com/compclass/platform/internal/pin"
	"github.com/compclass/platform/internal/repository"
)

// CompetitionService creates sessions and answers pin lookups.
type CompetitionService struct {
	db       repository.DB
	sessions repository.SessionRepository
	pins     *pin.Codec
	logger   *slog.Logger
}

// NewCompetitionService creates a new CompetitionService.
func NewCompetitionService(db repository.DB, sessions repository.SessionRepository, pins *pin.Codec, logger *slog.Logger) *CompetitionService {
	return &CompetitionService{db: db, sessions: sessions, pins: pins, logger: logger}
}

// CreatedSession is returned to the teacher after session creation.
type CreatedSession struct {
	Pin     string          `json:"pin"`
	Session *domain.Session `json:"session"`
}

// Create starts a new session in Registration stage owned by the
// caller. Settings are immutable afterwards.
func (s *CompetitionService) Create(ctx context.Context, creator domain.User, settings domain.Settings) (*CreatedSession, error) {
	if !creator.Role.Covers(domain.RoleTeacher) {
		return nil, domain.ErrForbidden("only teachers can create competitions")
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	session := &domain.Session{CreatorID: creator.ID, Settings: settings}
	if err := s.sessions.Create(ctx, s.db, session); err != nil {
		return nil, domain.ErrInternal("create session", err)
	}

	sessionPin := s.pins.Encode(session.ID)
	s.logger.Info("competition created", "session_id", session.ID, "pin", sessionPin)
	return &CreatedSession{Pin: sessionPin, Session: session}, nil
}

// CheckPin reports whether the pin names a session students can still
// join. Unknown pins answer false rather than erroring, matching the
// boundary's contract of not leaking which pins exist.
func (s *CompetitionService) CheckPin(ctx context.Context, sessionPin string) (bool, error) {
	id, err := s.pins.Decode(sessionPin)
	if err != nil {
		return false, nil
	}

	session, err := s.sessions.Load(ctx, s.db, id, repository.WithStage)
	if err != nil {
		if domain.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return session.Stage == domain.StageRegistration, nil
}
