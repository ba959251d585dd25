package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Nostradam4ik/fraud-detection-ml/internal/models"
	"github.com/Nostradam4ik/fraud-detection-ml/internal/repository"
	"github.com/Nostradam4ik/fraud-detection-ml/internal/service"
)

const userKey contextKey = "user"

// AuthMiddleware resolves a bearer token to an active user.
type AuthMiddleware struct {
	tokens   *service.TokenService
	userRepo *repository.UserRepository
}

func NewAuthMiddleware(tokens *service.TokenService, userRepo *repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, userRepo: userRepo}
}

// RequireAuth rejects requests without a valid token for an active user
// and puts the user snapshot into the request context.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, status, message := m.resolve(r)
		if user == nil {
			WriteError(w, status, message)
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
	})
}

// OptionalAuth resolves the user when valid credentials are present but
// lets the request through anonymously otherwise.
func (m *AuthMiddleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, _, _ := m.resolve(r); user != nil {
			r = r.WithContext(withUser(r.Context(), user))
		}
		next.ServeHTTP(w, r)
	})
}

func (m *AuthMiddleware) resolve(r *http.Request) (*models.User, int, string) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, http.StatusUnauthorized, "missing credentials"
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, http.StatusUnauthorized, "missing credentials"
	}

	claims, err := m.tokens.Verify(parts[1])
	if err != nil {
		return nil, http.StatusUnauthorized, "invalid or expired token"
	}

	user, err := m.userRepo.GetUserByUsername(r.Context(), claims.Subject)
	if err != nil || user == nil {
		return nil, http.StatusUnauthorized, "user not found"
	}
	if !user.IsActive {
		return nil, http.StatusForbidden, "account disabled"
	}

	return user, 0, ""
}

func withUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the authenticated user, or nil for anonymous
// requests.
func UserFromContext(ctx context.Context) *models.User {
	if user, ok := ctx.Value(userKey).(*models.User); ok {
		return user
	}
	return nil
}
