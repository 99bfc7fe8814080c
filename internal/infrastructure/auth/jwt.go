package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iho/coopledger/internal/domain"
)

// Issuer is stamped on every token and required when verifying one.
const Issuer = "coopledger"

// clockSkew tolerated on exp and nbf between the issuing host and this one.
const clockSkew = 30 * time.Second

// Claims carries the actor a request acts as.
type Claims struct {
	ActorID string      `json:"actor_id"`
	Email   string      `json:"email,omitempty"`
	Role    domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Actor converts the claims into the identity usecases authorize against.
func (c *Claims) Actor() domain.Actor {
	return domain.Actor{ID: c.ActorID, Email: c.Email, Role: c.Role}
}

// JWTManager issues and verifies HS256 tokens.
type JWTManager struct {
	secretKey     []byte
	tokenDuration time.Duration
	parser        *jwt.Parser
	now           func() time.Time
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(secretKey string, tokenDuration time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:     []byte(secretKey),
		tokenDuration: tokenDuration,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(Issuer),
			jwt.WithExpirationRequired(),
			jwt.WithLeeway(clockSkew),
		),
		now: time.Now,
	}
}

// Generate issues a token for actor.
func (m *JWTManager) Generate(actor domain.Actor) (string, error) {
	if actor.ID == "" {
		return "", fmt.Errorf("%w: actor id is required", domain.ErrValidation)
	}
	if !actor.Role.IsValid() {
		return "", fmt.Errorf("%w: unknown role %q", domain.ErrValidation, actor.Role)
	}

	now := m.now()
	claims := Claims{
		ActorID: actor.ID,
		Email:   actor.Email,
		Role:    actor.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   actor.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secretKey)
}

// Verify checks the signature and registered claims and returns the actor
// claims. Expired tokens map to domain.ErrExpiredToken, every other failure
// to domain.ErrInvalidToken.
func (m *JWTManager) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := m.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return m.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrExpiredToken
		}
		return nil, domain.ErrInvalidToken
	}

	if claims.ActorID == "" || !claims.Role.IsValid() {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}
