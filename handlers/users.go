package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"task-service/middleware"
	"task-service/models"

	"github.com/jmoiron/sqlx"
	"github.com/umakantv/go-utils/cache"
	"github.com/umakantv/go-utils/errs"
	"go.uber.org/zap"
)

// UserHandler handles the admin user listing and the current-user lookup.
type UserHandler struct {
	db    *sqlx.DB
	cache cache.Cache
}

// NewUserHandler creates a new user handler.
func NewUserHandler(db *sqlx.DB, cache cache.Cache) *UserHandler {
	return &UserHandler{
		db:    db,
		cache: cache,
	}
}

// List handles GET /api/users/ - admin only. Non-admin callers are
// rejected before any listing query runs; they get their own role back in
// the denial so the UI can explain itself.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"msg": "Missing or invalid token"})
		return
	}

	if caller.Role != models.RoleAdmin {
		logRequest(r, "info", "User list denied", zap.Int("user_id", caller.ID), zap.String("role", string(caller.Role)))
		respondJSON(w, http.StatusForbidden, map[string]interface{}{
			"msg":  "You are not an admin",
			"role": caller.Role,
		})
		return
	}

	// Try cache first; registration invalidates this key.
	cacheKey := "users:list"
	if cached, err := h.cache.Get(cacheKey); err == nil {
		if body, ok := cached.([]byte); ok {
			logRequest(r, "debug", "Serving user list from cache")
			w.Header().Set("Content-Type", "application/json")
			w.Write(body)
			return
		}
	}

	var users []models.UserResponse
	err := h.db.Select(&users, "SELECT id, email, role FROM users")
	if err != nil {
		logRequest(r, "error", "Failed to query users", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Database error"))
		return
	}
	if users == nil {
		users = []models.UserResponse{}
	}

	body, _ := json.Marshal(users)
	h.cache.Set(cacheKey, body, 5*time.Minute)

	logRequest(r, "info", "Users listed", zap.Int("count", len(users)))
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

// CurrentUser handles GET /api/users/current-user. The middleware already
// resolved the caller, but the row is read again so a user deleted between
// verification and now surfaces as a 404 instead of stale data.
func (h *UserHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"msg": "Missing or invalid token"})
		return
	}

	var user models.UserResponse
	err := h.db.Get(&user, "SELECT id, email, role FROM users WHERE id = ?", caller.ID)
	if err == sql.ErrNoRows {
		logRequest(r, "info", "Current user vanished", zap.Int("user_id", caller.ID))
		respondJSON(w, http.StatusNotFound, map[string]string{"msg": "User not found"})
		return
	}
	if err != nil {
		logRequest(r, "error", "Failed to query current user", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Database error"))
		return
	}

	respondJSON(w, http.StatusOK, user)
}
