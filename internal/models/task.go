package models

import (
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusNew        Status = "new"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// ParseStatus normalizes a raw status value case-insensitively.
// An empty value defaults to StatusNew; anything else must match
// one of the known states.
func ParseStatus(raw string) (Status, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return StatusNew, nil
	}

	switch Status(normalized) {
	case StatusNew, StatusInProgress, StatusCompleted:
		return Status(normalized), nil
	default:
		return "", fmt.Errorf("unknown task status %q", raw)
	}
}

// Task represents a to-do item owned by exactly one user
type Task struct {
	ID          int       `json:"id" db:"id"`
	Title       string    `json:"title" db:"title" validate:"required,max=200"`
	Description *string   `json:"description" db:"description"`
	Status      Status    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created" db:"created_at"`
	OwnerID     int       `json:"-" db:"owner_id"`
	// OwnerUsername is filled by queries joining the users table, never stored.
	OwnerUsername string `json:"owner" db:"-"`
}
