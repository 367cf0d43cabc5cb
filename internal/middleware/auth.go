package middleware

import (
	"context"
	"net/http"
	"strings"

	"community-backend/internal/auth"
	"community-backend/internal/models"
	"community-backend/internal/repositories"
)

type contextKey string

const accountKey contextKey = "account"

// AuthMiddleware verifies bearer tokens and resolves the acting account
type AuthMiddleware struct {
	jwtManager  *auth.JWTManager
	accountRepo *repositories.AccountRepository
}

func NewAuthMiddleware(jwtManager *auth.JWTManager, accountRepo *repositories.AccountRepository) *AuthMiddleware {
	return &AuthMiddleware{jwtManager: jwtManager, accountRepo: accountRepo}
}

// RequireAuth rejects requests without a valid token and stores the
// resolved account on the request context
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			http.Error(w, "Missing authorization token", http.StatusUnauthorized)
			return
		}

		claims, err := m.jwtManager.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		account, err := m.accountRepo.GetByID(r.Context(), claims.AccountID)
		if err != nil {
			http.Error(w, "Account not found", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), accountKey, account)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects authenticated requests from non-admin accounts.
// Must run after RequireAuth.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account := AccountFromContext(r.Context())
		if account == nil || !account.IsAdmin() {
			http.Error(w, "Admin access required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AccountFromContext returns the acting account stored by RequireAuth,
// or nil
func AccountFromContext(ctx context.Context) *models.Account {
	account, _ := ctx.Value(accountKey).(*models.Account)
	return account
}
