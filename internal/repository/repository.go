// Package repository is the storage port: CRUD over users and tasks
// backed by Postgres, with uniqueness enforced by the database itself.
package repository

import (
	"context"
	"errors"

	"todolist/internal/models"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a unique constraint rejects a write.
	ErrConflict = errors.New("record already exists")
)

// UserRepository persists user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id int, passwordHash string) error
	Delete(ctx context.Context, id int) error
	TaskIDsByOwner(ctx context.Context, ownerID int) ([]int, error)
}

// TaskRepository persists tasks. Reads by id are deliberately not
// owner-scoped; ownership is enforced by the authorization layer.
type TaskRepository interface {
	ListByOwner(ctx context.Context, ownerID int, statusFilter string) ([]models.Task, error)
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id int) (*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id int) error
	MarkCompleted(ctx context.Context, id int) (*models.Task, error)
}
