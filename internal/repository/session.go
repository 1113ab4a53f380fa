package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/compclass/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type sessionRepo struct{}

// NewSessionRepository returns a pgx-backed SessionRepository.
func NewSessionRepository() SessionRepository {
	return &sessionRepo{}
}

func (r *sessionRepo) Create(ctx context.Context, db DBTX, s *domain.Session) error {
	row := db.QueryRow(ctx, `
		INSERT INTO game_sessions
			(creator_id, stage, name, instruction, max_team_size, rounds_count,
			 round_length_sec, show_previous_round_results, show_students_results_table)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`,
		s.CreatorID,
		domain.StageRegistration,
		s.Settings.Name,
		s.Settings.Instruction,
		s.Settings.MaxTeamSize,
		s.Settings.RoundsCount,
		s.Settings.RoundLengthSec,
		s.Settings.ShowPreviousRoundResults,
		s.Settings.ShowStudentsResultsTable,
	)
	if err := row.Scan(&s.ID, &s.CreatedAt); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	s.Stage = domain.StageRegistration
	return nil
}

func (r *sessionRepo) Load(ctx context.Context, db DBTX, id int64, aspects SessionAspect) (*domain.Session, error) {
	s := &domain.Session{ID: id}

	row := db.QueryRow(ctx, `
		SELECT creator_id, stage, name, instruction, max_team_size, rounds_count,
		       round_length_sec, show_previous_round_results, show_students_results_table,
		       created_at
		FROM game_sessions WHERE id = $1`, id)

	var stage string
	var settings domain.Settings
	err := row.Scan(
		&s.CreatorID,
		&stage,
		&settings.Name,
		&settings.Instruction,
		&settings.MaxTeamSize,
		&settings.RoundsCount,
		&settings.RoundLengthSec,
		&settings.ShowPreviousRoundResults,
		&settings.ShowStudentsResultsTable,
		&s.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound("session", fmt.Sprint(id))
	}
	if err != nil {
		return nil, fmt.Errorf("load session %d: %w", id, err)
	}

	if aspects.Has(WithStage) {
		s.Stage = domain.Stage(stage)
	}
	if aspects.Has(WithSettings) {
		s.Settings = settings
	}
	if aspects.Has(WithTeams) {
		teams, err := loadTeams(ctx, db, id)
		if err != nil {
			return nil, err
		}
		s.Teams = teams
	}
	return s, nil
}

func (r *sessionRepo) IsCreator(ctx context.Context, db DBTX, sessionID int64, userID uuid.UUID) (bool, error) {
	var exists bool
	err := db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM game_sessions WHERE id = $1 AND creator_id = $2)`,
		sessionID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check session creator: %w", err)
	}
	return exists, nil
}

func (r *sessionRepo) UpdateStage(ctx context.Context, db DBTX, sessionID int64, from, to domain.Stage) error {
	tag, err := db.Exec(ctx, `
		UPDATE game_sessions SET stage = $1 WHERE id = $2 AND stage = $3`,
		to, sessionID, from)
	if err != nil {
		return fmt.Errorf("update session stage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict(fmt.Sprintf("session %d is no longer in stage %s", sessionID, from))
	}
	return nil
}

func loadTeams(ctx context.Context, db DBTX, sessionID int64) ([]domain.Team, error) {
	rows, err := db.Query(ctx, `
		SELECT id, session_id, name, password, number_in_game, version,
		       COALESCE(strategy, ''), created_at
		FROM teams WHERE session_id = $1
		ORDER BY number_in_game`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load teams: %w", err)
	}
	defer rows.Close()

	var teams []domain.Team
	index := map[int64]int{}
	for rows.Next() {
		var t domain.Team
		if err := rows.Scan(&t.ID, &t.SessionID, &t.Name, &t.Password,
			&t.NumberInGame, &t.Version, &t.Strategy, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		index[t.ID] = len(teams)
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load teams: %w", err)
	}

	memberRows, err := db.Query(ctx, `
		SELECT tm.team_id, tm.user_id, tm.captain
		FROM team_members tm
		JOIN teams t ON t.id = tm.team_id
		WHERE t.session_id = $1
		ORDER BY tm.joined_at`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load team members: %w", err)
	}
	defer memberRows.Close()

	for memberRows.Next() {
		var teamID int64
		var m domain.TeamMemberRecord
		if err := memberRows.Scan(&teamID, &m.UserID, &m.Captain); err != nil {
			return nil, fmt.Errorf("scan team member: %w", err)
		}
		if i, ok := index[teamID]; ok {
			teams[i].Members = append(teams[i].Members, m)
		}
	}
	if err := memberRows.Err(); err != nil {
		return nil, fmt.Errorf("load team members: %w", err)
	}
	return teams, nil
}
