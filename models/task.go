package models

import "time"

// Status is the lifecycle state of a task. The three values form a natural
// created -> pending -> completed progression, but transitions are not
// enforced as ordered: an update may set any valid status directly.
type Status string

const (
	StatusCreated   Status = "created"
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusCreated, StatusPending, StatusCompleted:
		return true
	}
	return false
}

// Task represents a task owned by exactly one user.
// The owning row is deleted with its user (ON DELETE CASCADE).
type Task struct {
	ID          int       `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Status      Status    `json:"status" db:"status"`
	UserID      int       `json:"-" db:"user_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// CreateTaskRequest is the body of POST /api/tasks/.
// Status is optional and defaults to "created".
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      Status `json:"status,omitempty"`
}

// UpdateTaskRequest is the body of PUT /api/tasks/{id}. All fields are
// optional; a nil field leaves the stored value untouched, which is why
// these are pointers rather than zero-value sentinels.
type UpdateTaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *Status `json:"status,omitempty"`
}

// TaskResponse is the per-task element of GET /api/tasks/ for regular
// users: their own tasks, with no owner field at all.
type TaskResponse struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AdminTaskResponse is the admin listing shape. CreatedBy carries the
// owner's email and serializes as null when the owner row is missing.
type AdminTaskResponse struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	CreatedBy   *string   `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
