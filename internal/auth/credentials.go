// Package auth holds the credential store and the authorization policy.
package auth

import (
	"context"
	"errors"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"todolist/internal/models"
	"todolist/internal/repository"
)

// ErrInvalidCredentials is returned by Verify for unknown usernames and
// wrong passwords alike, so callers cannot tell the two apart.
var ErrInvalidCredentials = errors.New("invalid credentials")

const minPasswordLength = 6

// ValidationError reports bad registration or profile input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// dummyHash is compared against when the username does not exist, so a
// failed lookup costs the same as a failed password check.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("credentials-timing-pad"), bcrypt.DefaultCost)

// Credentials verifies and manages user passwords. Hashes never leave
// this package unhashed, and plaintext is never stored.
type Credentials struct {
	users repository.UserRepository
}

// NewCredentials returns a credential store over the user repository.
func NewCredentials(users repository.UserRepository) *Credentials {
	return &Credentials{users: users}
}

// Register validates the input, hashes the password and stores the new
// user. A duplicate username surfaces as repository.ErrConflict straight
// from the database constraint.
func (c *Credentials) Register(ctx context.Context, username, password, firstName string, lastName *string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, &ValidationError{Message: "Username and password are required"}
	}
	if utf8.RuneCountInString(username) > 50 {
		return nil, &ValidationError{Message: "Username must be at most 50 characters long"}
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return nil, &ValidationError{Message: "Password must be at least 6 characters long"}
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:  username,
		Password:  hash,
		FirstName: firstName,
		LastName:  lastName,
		IsActive:  true,
	}
	if err := c.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Verify checks a username/password pair and returns the matching user.
func (c *Credentials) Verify(ctx context.Context, username, password string) (*models.User, error) {
	user, err := c.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Burn a comparison anyway to keep the effort constant.
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// PreparePassword validates a new password and returns its hash without
// storing anything, so callers can validate before other writes happen.
func (c *Credentials) PreparePassword(newPassword string) (string, error) {
	if utf8.RuneCountInString(newPassword) < minPasswordLength {
		return "", &ValidationError{Message: "Password must be at least 6 characters long"}
	}
	return HashPassword(newPassword)
}

// UpdatePassword re-hashes and stores a new password. Outstanding
// sessions for the user are left untouched.
func (c *Credentials) UpdatePassword(ctx context.Context, userID int, newPassword string) error {
	hash, err := c.PreparePassword(newPassword)
	if err != nil {
		return err
	}
	return c.users.UpdatePassword(ctx, userID, hash)
}

// HashPassword wraps the bcrypt hashing used across the service.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
