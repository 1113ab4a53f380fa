package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/compclass/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type userRepo struct{}

// NewUserRepository returns a pgx-backed UserRepository.
func NewUserRepository() UserRepository {
	return &userRepo{}
}

func (r *userRepo) Create(ctx context.Context, db DBTX, u *domain.User) error {
	_, err := db.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, role, first_name, last_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Email, u.PasswordHash, u.Role, u.FirstName, u.LastName, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *userRepo) FindByEmail(ctx context.Context, db DBTX, email string) (*domain.User, error) {
	row := db.QueryRow(ctx, `
		SELECT id, email, password_hash, role, first_name, last_name, created_at
		FROM users WHERE email = $1`, email)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

func (r *userRepo) FindByIDs(ctx context.Context, db DBTX, ids []uuid.UUID) ([]domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := db.Query(ctx, `
		SELECT id, email, password_hash, role, first_name, last_name, created_at
		FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer rows.Close()

	byID := make(map[uuid.UUID]domain.User, len(ids))
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		byID[u.ID] = *u
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}

	// Preserve the caller's ordering; the roster order is part of the
	// join-team response contract.
	users := make([]domain.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.FirstName, &u.LastName, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
