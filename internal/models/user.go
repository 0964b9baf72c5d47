package models

import (
	"time"
)

// User represents a registered account in the system
type User struct {
	ID        int       `json:"id" db:"id"`
	Username  string    `json:"username" db:"username" validate:"required,max=50"`
	Password  string    `json:"password,omitempty" db:"password" validate:"required,min=6"`
	FirstName string    `json:"first_name" db:"first_name" validate:"required"`
	LastName  *string   `json:"last_name" db:"last_name"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
