package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/mail"
	"time"

	"task-service/auth"
	"task-service/models"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/umakantv/go-utils/cache"
	"github.com/umakantv/go-utils/errs"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler handles registration and login.
type AuthHandler struct {
	db     *sqlx.DB
	cache  cache.Cache
	issuer *auth.Issuer
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(db *sqlx.DB, cache cache.Cache, issuer *auth.Issuer) *AuthHandler {
	return &AuthHandler{
		db:     db,
		cache:  cache,
		issuer: issuer,
	}
}

// validateCredentials checks the shared email/password rules of register
// and login. Returns "" when the input is acceptable.
func validateCredentials(email, password string) string {
	if email == "" {
		return "Email is required"
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "Not a valid email address"
	}
	if password == "" {
		return "Password is required"
	}
	return ""
}

// Register handles POST /auth/register - creates a user with role "user"
// and a bcrypt hash of the password. The plaintext never reaches the store.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logRequest(r, "error", "Invalid register body", zap.Error(err))
		respondJSON(w, http.StatusBadRequest, map[string]string{"msg": "Invalid JSON"})
		return
	}

	if msg := validateCredentials(req.Email, req.Password); msg != "" {
		logRequest(r, "error", "Register validation failed", zap.String("email", req.Email))
		respondJSON(w, http.StatusBadRequest, map[string]string{"msg": msg})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		logRequest(r, "error", "Password hashing failed", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Failed to process password"))
		return
	}

	now := time.Now()
	_, err = h.db.Exec("INSERT INTO users (email, password_hash, role, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		req.Email, string(hashedPassword), models.RoleUser, now, now)
	if err != nil {
		// Email uniqueness is enforced by the store, so a duplicate
		// surfaces as a constraint violation rather than a prior SELECT.
		if sqliteErr, ok := err.(sqlite3.Error); ok && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			logRequest(r, "info", "Duplicate email on register", zap.String("email", req.Email))
			respondJSON(w, http.StatusBadRequest, map[string]string{"message": "Email already exists"})
			return
		}
		logRequest(r, "error", "Failed to create user", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Failed to create user"))
		return
	}

	h.cache.Delete("users:list")

	logRequest(r, "info", "User registered", zap.String("email", req.Email))
	respondJSON(w, http.StatusCreated, map[string]string{"msg": "User created"})
}

// Login handles POST /auth/login - verifies credentials and issues a
// bearer token. Unknown email and wrong password return the identical
// response so the two cases can't be told apart.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logRequest(r, "error", "Invalid login body", zap.Error(err))
		respondJSON(w, http.StatusBadRequest, map[string]string{"msg": "Invalid JSON"})
		return
	}

	if msg := validateCredentials(req.Email, req.Password); msg != "" {
		logRequest(r, "error", "Login validation failed", zap.String("email", req.Email))
		respondJSON(w, http.StatusBadRequest, map[string]string{"msg": msg})
		return
	}

	var user models.User
	err := h.db.Get(&user, "SELECT id, email, password_hash, role, created_at, updated_at FROM users WHERE email = ?", req.Email)
	if err == sql.ErrNoRows {
		logRequest(r, "info", "Login for unknown email", zap.String("email", req.Email))
		respondJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
		return
	}
	if err != nil {
		logRequest(r, "error", "Failed to query user", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Database error"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		logRequest(r, "info", "Password mismatch", zap.String("email", req.Email))
		respondJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
		return
	}

	token, err := h.issuer.Issue(user.ID)
	if err != nil {
		logRequest(r, "error", "Token signing failed", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Failed to issue token"))
		return
	}

	logRequest(r, "info", "Login successful", zap.Int("user_id", user.ID))
	respondJSON(w, http.StatusOK, map[string]string{"access_token": token})
}
