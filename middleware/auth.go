package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"

	"task-service/auth"
	"task-service/models"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

const callerKey contextKey = "caller"

// RequireAuth verifies the bearer token on every request and resolves the
// full caller record before the handler runs. The three failure modes map
// to distinct responses:
//
//	missing or malformed header -> 401 "Missing or invalid token"
//	expired token               -> 401 "Token expired"
//	bad signature or format     -> 422 "Invalid token: <reason>"
//
// A token whose subject no longer exists in the store is treated the same
// as a missing token.
func RequireAuth(db *sqlx.DB, issuer *auth.Issuer) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || tokenString == "" {
				writeTokenError(w, http.StatusUnauthorized, "Missing or invalid token")
				return
			}

			userID, err := issuer.Verify(tokenString)
			if err == auth.ErrTokenExpired {
				writeTokenError(w, http.StatusUnauthorized, "Token expired")
				return
			}
			if err != nil {
				reason := strings.TrimPrefix(err.Error(), auth.ErrTokenInvalid.Error()+": ")
				writeTokenError(w, http.StatusUnprocessableEntity, "Invalid token: "+reason)
				return
			}

			var caller models.User
			err = db.Get(&caller, "SELECT id, email, password_hash, role, created_at, updated_at FROM users WHERE id = ?", userID)
			if err == sql.ErrNoRows {
				logger.Info("Token subject no longer exists", zap.Int("user_id", userID))
				writeTokenError(w, http.StatusUnauthorized, "Missing or invalid token")
				return
			}
			if err != nil {
				logger.Error("Failed to resolve caller", zap.Error(err), zap.Int("user_id", userID))
				writeTokenError(w, http.StatusInternalServerError, "Server error")
				return
			}

			ctx := context.WithValue(r.Context(), callerKey, caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CallerFromContext returns the authenticated user resolved by RequireAuth.
func CallerFromContext(ctx context.Context) (models.User, bool) {
	caller, ok := ctx.Value(callerKey).(models.User)
	return caller, ok
}

// ContextWithCaller injects a caller directly, bypassing token
// verification. Handler tests use this to exercise role logic without
// minting tokens.
func ContextWithCaller(ctx context.Context, caller models.User) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}

func writeTokenError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"msg": msg})
}
