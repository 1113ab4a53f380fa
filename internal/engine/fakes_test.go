package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/compclass/platform/internal/domain"
	"github.com/compclass/platform/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// memStore is an in-memory stand-in for the pgx repositories. It
// implements the repository interfaces directly; the DBTX argument is
// ignored.
type memStore struct {
	mu       sync.Mutex
	nextID   int64
	sessions map[int64]*domain.Session
	teams    map[int64]domain.Team
	users    map[uuid.UUID]domain.User
	creators map[int64]uuid.UUID
}

func newMemStore() *memStore {
	return &memStore{
		nextID:   1,
		sessions: make(map[int64]*domain.Session),
		teams:    make(map[int64]domain.Team),
		users:    make(map[uuid.UUID]domain.User),
		creators: make(map[int64]uuid.UUID),
	}
}

func (s *memStore) addUser(email string, role domain.Role) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := domain.User{ID: uuid.New(), Email: email, Role: role}
	s.users[u.ID] = u
	return u
}

func (s *memStore) addSession(creator domain.User, settings domain.Settings, stage domain.Stage) *domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	sess := &domain.Session{ID: id, CreatorID: creator.ID, Stage: stage, Settings: settings}
	s.sessions[id] = sess
	s.creators[id] = creator.ID
	return sess
}

func (s *memStore) addTeam(sessionID int64, name, password string, members ...domain.TeamMemberRecord) domain.Team {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	number := 1
	for _, t := range s.teams {
		if t.SessionID == sessionID {
			number++
		}
	}
	t := domain.Team{
		ID: id, SessionID: sessionID, Name: name, Password: password,
		NumberInGame: number, Version: 1,
		Members: append([]domain.TeamMemberRecord(nil), members...),
	}
	s.teams[id] = t
	return t
}

func (s *memStore) team(id int64) domain.Team {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.teams[id]
}

func (s *memStore) bumpVersion(teamID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.teams[teamID]
	t.Version++
	s.teams[teamID] = t
}

// --- repository.SessionRepository ---

func (s *memStore) Create(ctx context.Context, db repository.DBTX, sess *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess.ID = s.nextID
	s.nextID++
	sess.Stage = domain.StageRegistration
	copied := *sess
	s.sessions[sess.ID] = &copied
	s.creators[sess.ID] = sess.CreatorID
	return nil
}

func (s *memStore) Load(ctx context.Context, db repository.DBTX, id int64, aspects repository.SessionAspect) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound("session", fmt.Sprint(id))
	}
	sess := &domain.Session{ID: id, CreatorID: stored.CreatorID}
	if aspects.Has(repository.WithStage) {
		sess.Stage = stored.Stage
	}
	if aspects.Has(repository.WithSettings) {
		sess.Settings = stored.Settings
	}
	if aspects.Has(repository.WithTeams) {
		for _, t := range s.teams {
			if t.SessionID == id {
				copied := t
				copied.Members = append([]domain.TeamMemberRecord(nil), t.Members...)
				sess.Teams = append(sess.Teams, copied)
			}
		}
		sort.Slice(sess.Teams, func(i, j int) bool {
			return sess.Teams[i].NumberInGame < sess.Teams[j].NumberInGame
		})
	}
	return sess, nil
}

func (s *memStore) IsCreator(ctx context.Context, db repository.DBTX, sessionID int64, userID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creators[sessionID] == userID, nil
}

func (s *memStore) UpdateStage(ctx context.Context, db repository.DBTX, sessionID int64, from, to domain.Stage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok || sess.Stage != from {
		return domain.ErrConflict(fmt.Sprintf("session %d is no longer in stage %s", sessionID, from))
	}
	sess.Stage = to
	return nil
}

var _ repository.SessionRepository = (*memStore)(nil)

// --- repository.TeamRepository ---

type memTeams struct{ store *memStore }

var _ repository.TeamRepository = memTeams{}

func (r memTeams) Create(ctx context.Context, db repository.DBTX, t *domain.Team) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.nextID
	s.nextID++
	t.Version = 1
	copied := *t
	copied.Members = append([]domain.TeamMemberRecord(nil), t.Members...)
	s.teams[t.ID] = copied
	return nil
}

func (r memTeams) Update(ctx context.Context, db repository.DBTX, old, new *domain.Team) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.teams[old.ID]
	if !ok || stored.Version != old.Version {
		return domain.ErrConflict(fmt.Sprintf("team %q changed concurrently", old.Name))
	}
	new.Version = old.Version + 1
	copied := *new
	copied.Members = append([]domain.TeamMemberRecord(nil), new.Members...)
	s.teams[old.ID] = copied
	return nil
}

func (r memTeams) FindMembership(ctx context.Context, db repository.DBTX, sessionID int64, userID uuid.UUID) (*domain.TeamMembership, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.teams {
		if t.SessionID != sessionID {
			continue
		}
		for _, m := range t.Members {
			if m.UserID == userID {
				return &domain.TeamMembership{TeamID: t.ID, Captain: m.Captain}, nil
			}
		}
	}
	return nil, nil
}

// --- repository.UserRepository ---

type memUsers struct{ store *memStore }

var _ repository.UserRepository = memUsers{}

func (r memUsers) Create(ctx context.Context, db repository.DBTX, u *domain.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = *u
	return nil
}

func (r memUsers) FindByEmail(ctx context.Context, db repository.DBTX, email string) (*domain.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			copied := u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r memUsers) FindByIDs(ctx context.Context, db repository.DBTX, ids []uuid.UUID) ([]domain.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var users []domain.User
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

// --- repository.DB / Tx ---

type memTx struct {
	committed  bool
	rolledBack bool
}

func (t *memTx) Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (t *memTx) Query(context.Context, string, ...interface{}) (pgx.Rows, error) { return nil, nil }
func (t *memTx) QueryRow(context.Context, string, ...interface{}) pgx.Row        { return nil }
func (t *memTx) Commit(context.Context) error                                    { t.committed = true; return nil }
func (t *memTx) Rollback(context.Context) error                                  { t.rolledBack = true; return nil }

type memDB struct {
	lastTx *memTx
}

var _ repository.DB = (*memDB)(nil)

func (d *memDB) Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (d *memDB) Query(context.Context, string, ...interface{}) (pgx.Rows, error) { return nil, nil }
func (d *memDB) QueryRow(context.Context, string, ...interface{}) pgx.Row        { return nil }
func (d *memDB) Begin(context.Context) (repository.Tx, error) {
	d.lastTx = &memTx{}
	return d.lastTx, nil
}

// --- Router ---

type memRouter struct {
	mu       sync.Mutex
	appended map[int64][]domain.Envelope
}

func newMemRouter() *memRouter {
	return &memRouter{appended: make(map[int64][]domain.Envelope)}
}

func (r *memRouter) Append(sessionID int64, envelopes ...domain.Envelope) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appended[sessionID] = append(r.appended[sessionID], envelopes...)
}

func (r *memRouter) all(sessionID int64) []domain.Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Envelope(nil), r.appended[sessionID]...)
}
