package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// RoleAdmin is the only role allowed on /admin routes
const RoleAdmin = "admin"

// Claims is the bearer token payload issued to dashboard operators
type Claims struct {
	jwt.RegisteredClaims
	Name string `json:"name,omitempty"`
	Role string `json:"role"`
}

// IsAdmin reports whether the token grants admin access
func (c *Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// Manager signs and verifies HS256 tokens with a shared secret
type Manager struct {
	secretKey []byte
	issuer    string
	expiresIn time.Duration
	now       func() time.Time
}

// NewManager creates a token manager; expiresIn <= 0 falls back to 24h
func NewManager(secret, issuer string, expiresIn time.Duration) *Manager {
	if expiresIn <= 0 {
		expiresIn = 24 * time.Hour
	}
	return &Manager{
		secretKey: []byte(secret),
		issuer:    issuer,
		expiresIn: expiresIn,
		now:       time.Now,
	}
}

// GenerateAccessToken issues a token for subject with the given role
func (m *Manager) GenerateAccessToken(subject, name, role string) (string, error) {
	now := m.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiresIn)),
		},
		Name: name,
		Role: role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secretKey)
}

// VerifyToken parses and validates a token string
func (m *Manager) VerifyToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithTimeFunc(m.now)}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secretKey, nil
	}, opts...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// ExpiresIn returns the configured token lifetime
func (m *Manager) ExpiresIn() time.Duration {
	return m.expiresIn
}
