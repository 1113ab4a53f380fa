package service

import (
	"context"
	"net/mail"
	"time"

	"github.com/compclass/platform/internal/auth"
	"github.com/compclass/platform/internal/domain"
	"github.com/compclass/platform/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles account registration and login.
type AuthService struct {
	db     repository.DB
	users  repository.UserRepository
	jwtMgr *auth.JWTManager
}

// NewAuthService creates a new AuthService.
func NewAuthService(db repository.DB, users repository.UserRepository, jwtMgr *auth.JWTManager) *AuthService {
	return &AuthService{db: db, users: users, jwtMgr: jwtMgr}
}

// RegisterInput holds the registration request fields.
type RegisterInput struct {
	Email     string      `json:"email"`
	Password  string      `json:"password"`
	Role      domain.Role `json:"role"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
}

// AuthResult is returned on successful registration or login.
type AuthResult struct {
	Token string      `json:"token"`
	ID    uuid.UUID   `json:"id"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// Register creates a new account. Admin accounts are seeded, never
// self-registered.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return nil, domain.ErrValidation("invalid email address")
	}
	if len(input.Password) < 8 {
		return nil, domain.ErrValidation("password must be at least 8 characters")
	}
	if input.Role == "" {
		input.Role = domain.RoleStudent
	}
	if input.Role != domain.RoleStudent && input.Role != domain.RoleTeacher {
		return nil, domain.ErrValidation("role must be student or teacher")
	}

	existing, err := s.users.FindByEmail(ctx, s.db, input.Email)
	if err != nil {
		return nil, domain.ErrInternal("find user", err)
	}
	if existing != nil {
		return nil, domain.ErrConflict("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.ErrInternal("hash password", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         input.Role,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, s.db, user); err != nil {
		return nil, domain.ErrInternal("create user", err)
	}

	token, err := s.jwtMgr.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, domain.ErrInternal("generate token", err)
	}

	return &AuthResult{Token: token, ID: user.ID, Email: user.Email, Role: user.Role}, nil
}

// Login verifies credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, s.db, email)
	if err != nil {
		return nil, domain.ErrInternal("find user", err)
	}
	if user == nil {
		return nil, domain.ErrUnauthorized("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrUnauthorized("invalid credentials")
	}

	token, err := s.jwtMgr.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, domain.ErrInternal("generate token", err)
	}

	return &AuthResult{Token: token, ID: user.ID, Email: user.Email, Role: user.Role}, nil
}

// UserByID loads the authenticated account for a request.
func (s *AuthService) UserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	users, err := s.users.FindByIDs(ctx, s.db, []uuid.UUID{id})
	if err != nil {
		return nil, domain.ErrInternal("find user", err)
	}
	if len(users) == 0 {
		return nil, domain.ErrUnauthorized("account no longer exists")
	}
	return &users[0], nil
}
