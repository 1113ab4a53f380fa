package repository

import (
	"context"

	"github.com/compclass/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Tx is one consistency boundary: a rule's reads and writes run inside
// exactly one Tx, and the boundary is never held open across a stream
// subscription or other long-lived wait.
type Tx interface {
	DBTX
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// DB starts transactions and serves transaction-free reads.
type DB interface {
	DBTX
	Begin(ctx context.Context) (Tx, error)
}

// SessionAspect selects which parts of a session to hydrate.
// Settings, teams and stage are independently fetchable.
type SessionAspect uint8

const (
	WithSettings SessionAspect = 1 << iota
	WithTeams
	WithStage
)

// Has reports whether a includes the given aspect.
func (a SessionAspect) Has(aspect SessionAspect) bool { return a&aspect != 0 }

// SessionRepository provides access to game_sessions.
type SessionRepository interface {
	// Create inserts a new session in Registration stage and assigns its id.
	Create(ctx context.Context, db DBTX, session *domain.Session) error

	// Load hydrates the requested aspects of a session.
	Load(ctx context.Context, db DBTX, id int64, aspects SessionAspect) (*domain.Session, error)

	// IsCreator reports whether userID created the session.
	IsCreator(ctx context.Context, db DBTX, sessionID int64, userID uuid.UUID) (bool, error)

	// UpdateStage performs a compare-and-replace on the stage column.
	// Returns domain.ErrConflict when the stored stage is not `from`.
	UpdateStage(ctx context.Context, db DBTX, sessionID int64, from, to domain.Stage) error
}

// TeamRepository provides access to teams and team_members.
type TeamRepository interface {
	// Create inserts a new team and assigns its id.
	Create(ctx context.Context, db DBTX, team *domain.Team) error

	// Update performs an optimistic compare-and-replace: the write only
	// succeeds when the stored version still equals old.Version, and it
	// reconciles the member rows to new.Members. Returns
	// domain.ErrConflict when the team changed concurrently.
	Update(ctx context.Context, db DBTX, old, new *domain.Team) error

	// FindMembership returns the membership record for (session, user),
	// or nil when the user is not on any team in the session.
	FindMembership(ctx context.Context, db DBTX, sessionID int64, userID uuid.UUID) (*domain.TeamMembership, error)
}

// UserRepository provides access to users.
type UserRepository interface {
	// Create inserts a new user.
	Create(ctx context.Context, db DBTX, user *domain.User) error

	// FindByEmail returns a user by email, or nil when absent.
	FindByEmail(ctx context.Context, db DBTX, email string) (*domain.User, error)

	// FindByIDs returns the users with the given ids, preserving the
	// order of ids. Missing ids are skipped.
	FindByIDs(ctx context.Context, db DBTX, ids []uuid.UUID) ([]domain.User, error)
}
