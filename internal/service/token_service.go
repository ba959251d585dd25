package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Nostradam4ik/fraud-detection-ml/internal/models"
)

// Claims carried inside an access token. The subject is the username.
type Claims struct {
	UserID int `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed, time-bounded access tokens.
// Tokens are self-contained: validity is computed from the signature and
// expiry, never looked up.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

// Issue creates a signed token for the user with the configured TTL.
func (s *TokenService) Issue(user *models.User) (string, error) {
	return s.IssueWithTTL(user, s.ttl)
}

// IssueWithTTL creates a signed token with an explicit lifetime.
func (s *TokenService) IssueWithTTL(user *models.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks the token's signature and expiry and returns its claims.
// Every structural, cryptographic or expiry failure collapses to
// ErrInvalidToken so callers cannot learn which check failed.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// ExpiresIn reports the configured token lifetime in whole seconds, as
// exposed in the token response envelope.
func (s *TokenService) ExpiresIn() int {
	return int(s.ttl.Seconds())
}
