package auth

import (
	"fmt"
	"time"

	"github.com/compclass/platform/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims holds the custom JWT claims for all account roles.
type Claims struct {
	jwt.RegisteredClaims
	Email string      `json:"email,omitempty"`
	Role  domain.Role `json:"role"`
}

// JWTManager handles token generation and validation.
type JWTManager struct {
	secret        []byte
	studentExpiry time.Duration
	teacherExpiry time.Duration
}

// NewJWTManager creates a JWT manager with role-specific expiry
// durations. Teachers and admins share the shorter teacher expiry.
func NewJWTManager(secret string, studentExpiry, teacherExpiry time.Duration) *JWTManager {
	return &JWTManager{
		secret:        []byte(secret),
		studentExpiry: studentExpiry,
		teacherExpiry: teacherExpiry,
	}
}

// GenerateToken creates a signed JWT for the given user.
func (m *JWTManager) GenerateToken(userID uuid.UUID, email string, role domain.Role) (string, error) {
	if !role.Valid() {
		return "", fmt.Errorf("unknown role: %s", role)
	}

	expiry := m.studentExpiry
	if role.Covers(domain.RoleTeacher) {
		expiry = m.teacherExpiry
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			ID:        uuid.New().String(),
		},
		Email: email,
		Role:  role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateToken parses and validates a JWT, returning claims if valid.
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if !claims.Role.Valid() {
		return nil, fmt.Errorf("unknown role in token: %s", claims.Role)
	}

	return claims, nil
}
