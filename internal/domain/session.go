package domain

import (
	"time"

	"github.com/google/uuid"
)

// Stage is the session's current phase. It only ever moves forward:
// Registration -> InProgress -> Finished.
type Stage string

const (
	StageRegistration Stage = "registration"
	StageInProgress   Stage = "in_progress"
	StageFinished     Stage = "finished"
)

var stageOrder = map[Stage]int{
	StageRegistration: 1,
	StageInProgress:   2,
	StageFinished:     3,
}

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool {
	_, ok := stageOrder[s]
	return ok
}

// Next returns the stage that follows s, or "" when s is terminal.
func (s Stage) Next() Stage {
	switch s {
	case StageRegistration:
		return StageInProgress
	case StageInProgress:
		return StageFinished
	default:
		return ""
	}
}

// CanAdvanceTo reports whether the transition s -> next is the single
// legal forward step.
func (s Stage) CanAdvanceTo(next Stage) bool {
	return s.Next() == next && next != ""
}

// Settings holds the session configuration chosen by the teacher at
// creation. Immutable afterwards.
type Settings struct {
	Name                     string `json:"name"`
	Instruction              string `json:"instruction"`
	MaxTeamSize              int    `json:"max_team_size"`
	RoundsCount              int    `json:"rounds_count"`
	RoundLengthSec           int    `json:"round_length_sec"`
	ShowPreviousRoundResults bool   `json:"show_previous_round_results"`
	ShowStudentsResultsTable bool   `json:"show_students_results_table"`
}

// Validate checks settings on session creation.
func (s Settings) Validate() error {
	if s.Name == "" {
		return ErrValidation("session name is required")
	}
	if s.MaxTeamSize < 1 {
		return ErrValidation("max team size must be at least 1")
	}
	if s.RoundsCount < 1 {
		return ErrValidation("rounds count must be at least 1")
	}
	if s.RoundLengthSec < 1 {
		return ErrValidation("round length must be at least 1 second")
	}
	return nil
}

// Session is one running competition game, owned by a teacher.
// Aspects (settings, teams, stage) are hydrated independently; a field
// is only meaningful when its aspect was requested from the repository.
type Session struct {
	ID        int64     `json:"id"`
	CreatorID uuid.UUID `json:"creator_id"`
	Stage     Stage     `json:"stage"`
	Settings  Settings  `json:"settings"`
	Teams     []Team    `json:"teams"`
	CreatedAt time.Time `json:"created_at"`
}

// TeamByName returns the single team with the given name, or nil when
// no team or more than one team matches.
func (s *Session) TeamByName(name string) *Team {
	var found *Team
	for i := range s.Teams {
		if s.Teams[i].Name == name {
			if found != nil {
				return nil
			}
			found = &s.Teams[i]
		}
	}
	return found
}

// TeamByID returns the team with the given id, or nil.
func (s *Session) TeamByID(id int64) *Team {
	for i := range s.Teams {
		if s.Teams[i].ID == id {
			return &s.Teams[i]
		}
	}
	return nil
}
