package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"task-service/middleware"
	"task-service/models"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/umakantv/go-utils/errs"
	"go.uber.org/zap"
)

// TaskHandler handles task CRUD with role-based visibility.
type TaskHandler struct {
	db *sqlx.DB

	// enforceOwnership gates the owner check on update and delete. The
	// system this replaces applied none, so any authenticated caller could
	// mutate any task by id; the default keeps that behavior and the flag
	// tightens it to owner-or-admin.
	enforceOwnership bool
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(db *sqlx.DB, enforceOwnership bool) *TaskHandler {
	return &TaskHandler{
		db:               db,
		enforceOwnership: enforceOwnership,
	}
}

// adminTaskRow is the LEFT JOIN shape of the admin listing. OwnerEmail is
// nullable: a task whose owner row is missing still lists, with created_by
// null. Cascade delete makes that state unreachable in practice.
type adminTaskRow struct {
	models.Task
	OwnerEmail sql.NullString `db:"owner_email"`
}

// List handles GET /api/tasks/.
// Regular users get only their own tasks, with no owner field. Admins get
// every task joined with the owner's email as created_by.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"msg": "Missing or invalid token"})
		return
	}

	if caller.Role == models.RoleUser {
		var tasks []models.Task
		err := h.db.Select(&tasks, "SELECT id, title, description, status, user_id, created_at, updated_at FROM tasks WHERE user_id = ?", caller.ID)
		if err != nil {
			logRequest(r, "error", "Failed to query tasks", zap.Error(err), zap.Int("user_id", caller.ID))
			respondJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Database error"))
			return
		}
		response := []models.TaskResponse{}
		for _, t := range tasks {
			response = append(response, models.TaskResponse{
				ID:          t.ID,
				Title:       t.Title,
				Description: t.Description,
				Status:      t.Status,
				CreatedAt:   t.CreatedAt,
				UpdatedAt:   t.UpdatedAt,
			})
		}
		logRequest(r, "info", "Tasks listed", zap.Int("count", len(response)), zap.Int("user_id", caller.ID))
		respondJSON(w, http.StatusOK, response)
		return
	}

	var rows []adminTaskRow
	err := h.db.Select(&rows, `SELECT t.id, t.title, t.description, t.status, t.user_id, t.created_at, t.updated_at, u.email AS owner_email
		FROM tasks t LEFT JOIN users u ON u.id = t.user_id`)
	if err != nil {
		logRequest(r, "error", "Failed to query tasks", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Database error"))
		return
	}
	response := []models.AdminTaskResponse{}
	for _, row := range rows {
		resp := models.AdminTaskResponse{
			ID:          row.ID,
			Title:       row.Title,
			Description: row.Description,
			Status:      row.Status,
			CreatedAt:   row.CreatedAt,
			UpdatedAt:   row.UpdatedAt,
		}
		if row.OwnerEmail.Valid {
			email := row.OwnerEmail.String
			resp.CreatedBy = &email
		}
		response = append(response, resp)
	}

	logRequest(r, "info", "Tasks listed", zap.Int("count", len(response)), zap.String("role", string(caller.Role)))
	respondJSON(w, http.StatusOK, response)
}

// Create handles POST /api/tasks/. The owner is always the authenticated
// caller; any owner field in the input is ignored.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"msg": "Missing or invalid token"})
		return
	}

	var req models.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logRequest(r, "error", "Invalid task body", zap.Error(err))
		respondJSON(w, http.StatusBadRequest, map[string]string{"msg": "Invalid JSON"})
		return
	}

	if req.Title == "" || req.Description == "" {
		logRequest(r, "error", "Missing task fields")
		respondJSON(w, http.StatusBadRequest, map[string]string{"msg": "Title and description are required"})
		return
	}
	if req.Status == "" {
		req.Status = models.StatusCreated
	}
	if !req.Status.Valid() {
		logRequest(r, "error", "Invalid task status", zap.String("status", string(req.Status)))
		respondJSON(w, http.StatusBadRequest, map[string]string{"msg": "Invalid status"})
		return
	}

	tx, err := h.db.Beginx()
	if err != nil {
		logRequest(r, "error", "Failed to begin transaction", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Database error"))
		return
	}
	defer tx.Rollback()

	now := time.Now()
	result, err := tx.Exec("INSERT INTO tasks (title, description, status, user_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		req.Title, req.Description, req.Status, caller.ID, now, now)
	if err != nil {
		logRequest(r, "error", "Failed to create task", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Failed to create task"))
		return
	}
	if err := tx.Commit(); err != nil {
		logRequest(r, "error", "Failed to commit task", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Database error"))
		return
	}

	id, _ := result.LastInsertId()

	logRequest(r, "info", "Task created", zap.Int64("task_id", id), zap.Int("user_id", caller.ID))
	respondJSON(w, http.StatusCreated, map[string]interface{}{"msg": "Task created", "id": int(id)})
}

// Update handles PUT /api/tasks/{id}. Partial update: absent fields keep
// their stored values, present fields are validated as at creation.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"msg": "Missing or invalid token"})
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"msg": "Invalid task ID"})
		return
	}

	var req models.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logRequest(r, "error", "Invalid task body", zap.Error(err))
		respondJSON(w, http.StatusBadRequest, map[string]string{"msg": "Invalid JSON"})
		return
	}

	if req.Title != nil && *req.Title == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"msg": "Title must not be empty"})
		return
	}
	if req.Description != nil && *req.Description == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"msg": "Description must not be empty"})
		return
	}
	if req.Status != nil && !req.Status.Valid() {
		respondJSON(w, http.StatusBadRequest, map[string]string{"msg": "Invalid status"})
		return
	}

	tx, err := h.db.Beginx()
	if err != nil {
		logRequest(r, "error", "Failed to begin transaction", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Database error"))
		return
	}
	defer tx.Rollback()

	var task models.Task
	err = tx.Get(&task, "SELECT id, title, description, status, user_id, created_at, updated_at FROM tasks WHERE id = ?", id)
	if err == sql.ErrNoRows {
		respondJSON(w, http.StatusNotFound, map[string]string{"msg": "Task not found"})
		return
	}
	if err != nil {
		logRequest(r, "error", "Failed to query task", zap.Error(err), zap.Int("task_id", id))
		respondJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Database error"))
		return
	}

	if h.enforceOwnership && caller.Role != models.RoleAdmin && task.UserID != caller.ID {
		logRequest(r, "info", "Ownership check rejected update", zap.Int("task_id", id), zap.Int("user_id", caller.ID))
		respondJSON(w, http.StatusForbidden, map[string]string{"msg": "Access forbidden"})
		return
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Status != nil {
		task.Status = *req.Status
	}

	_, err = tx.Exec("UPDATE tasks SET title = ?, description = ?, status = ?, updated_at = ? WHERE id = ?",
		task.Title, task.Description, task.Status, time.Now(), id)
	if err != nil {
		logRequest(r, "error", "Failed to update task", zap.Error(err), zap.Int("task_id", id))
		respondJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Failed to update task"))
		return
	}
	if err := tx.Commit(); err != nil {
		logRequest(r, "error", "Failed to commit task update", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Database error"))
		return
	}

	logRequest(r, "info", "Task updated", zap.Int("task_id", id))
	respondJSON(w, http.StatusOK, map[string]string{"msg": "Task updated"})
}

// Delete handles DELETE /api/tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"msg": "Missing or invalid token"})
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"msg": "Invalid task ID"})
		return
	}

	tx, err := h.db.Beginx()
	if err != nil {
		logRequest(r, "error", "Failed to begin transaction", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Database error"))
		return
	}
	defer tx.Rollback()

	var ownerID int
	err = tx.Get(&ownerID, "SELECT user_id FROM tasks WHERE id = ?", id)
	if err == sql.ErrNoRows {
		respondJSON(w, http.StatusNotFound, map[string]string{"msg": "Task not found"})
		return
	}
	if err != nil {
		logRequest(r, "error", "Failed to query task", zap.Error(err), zap.Int("task_id", id))
		respondJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Database error"))
		return
	}

	if h.enforceOwnership && caller.Role != models.RoleAdmin && ownerID != caller.ID {
		logRequest(r, "info", "Ownership check rejected delete", zap.Int("task_id", id), zap.Int("user_id", caller.ID))
		respondJSON(w, http.StatusForbidden, map[string]string{"msg": "Access forbidden"})
		return
	}

	if _, err := tx.Exec("DELETE FROM tasks WHERE id = ?", id); err != nil {
		logRequest(r, "error", "Failed to delete task", zap.Error(err), zap.Int("task_id", id))
		respondJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Failed to delete task"))
		return
	}
	if err := tx.Commit(); err != nil {
		logRequest(r, "error", "Failed to commit task delete", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Database error"))
		return
	}

	logRequest(r, "info", "Task deleted", zap.Int("task_id", id))
	respondJSON(w, http.StatusOK, map[string]string{"msg": "Task deleted"})
}
