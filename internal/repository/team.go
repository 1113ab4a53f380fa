package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/compclass/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type teamRepo struct{}

// NewTeamRepository returns a pgx-backed TeamRepository.
func NewTeamRepository() TeamRepository {
	return &teamRepo{}
}

func (r *teamRepo) Create(ctx context.Context, db DBTX, t *domain.Team) error {
	row := db.QueryRow(ctx, `
		INSERT INTO teams (session_id, name, password, number_in_game, version, strategy)
		VALUES ($1, $2, $3, $4, 1, NULLIF($5, ''))
		RETURNING id, created_at`,
		t.SessionID, t.Name, t.Password, t.NumberInGame, t.Strategy)
	if err := row.Scan(&t.ID, &t.CreatedAt); err != nil {
		return fmt.Errorf("insert team: %w", err)
	}
	t.Version = 1

	for _, m := range t.Members {
		if err := insertMember(ctx, db, t, m); err != nil {
			return err
		}
	}
	return nil
}

// Update gates every team mutation behind a version compare-and-replace.
// The version bump serializes concurrent writers: the loser's UPDATE
// matches zero rows and surfaces as a conflict.
func (r *teamRepo) Update(ctx context.Context, db DBTX, old, new *domain.Team) error {
	tag, err := db.Exec(ctx, `
		UPDATE teams
		SET version = version + 1, strategy = NULLIF($1, '')
		WHERE id = $2 AND version = $3`,
		new.Strategy, old.ID, old.Version)
	if err != nil {
		return fmt.Errorf("update team %d: %w", old.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict(fmt.Sprintf("team %q changed concurrently", old.Name))
	}
	new.Version = old.Version + 1

	for _, m := range new.Members {
		if !old.HasMember(m.UserID) {
			if err := insertMember(ctx, db, new, m); err != nil {
				return err
			}
		}
	}
	for _, m := range old.Members {
		if !new.HasMember(m.UserID) {
			if _, err := db.Exec(ctx, `
				DELETE FROM team_members WHERE team_id = $1 AND user_id = $2`,
				old.ID, m.UserID); err != nil {
				return fmt.Errorf("remove team member: %w", err)
			}
		}
	}
	return nil
}

func (r *teamRepo) FindMembership(ctx context.Context, db DBTX, sessionID int64, userID uuid.UUID) (*domain.TeamMembership, error) {
	row := db.QueryRow(ctx, `
		SELECT tm.team_id, tm.captain
		FROM team_members tm
		JOIN teams t ON t.id = tm.team_id
		WHERE t.session_id = $1 AND tm.user_id = $2`,
		sessionID, userID)

	var m domain.TeamMembership
	err := row.Scan(&m.TeamID, &m.Captain)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find team membership: %w", err)
	}
	return &m, nil
}

func insertMember(ctx context.Context, db DBTX, t *domain.Team, m domain.TeamMemberRecord) error {
	if _, err := db.Exec(ctx, `
		INSERT INTO team_members (team_id, session_id, user_id, captain)
		VALUES ($1, $2, $3, $4)`,
		t.ID, t.SessionID, m.UserID, m.Captain); err != nil {
		return fmt.Errorf("insert team member: %w", err)
	}
	return nil
}
