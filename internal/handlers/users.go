package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"todolist/internal/auth"
	"todolist/internal/repository"
)

// ListUsers returns every registered user. Open like registration is;
// passwords never appear in the representation.
func (a *API) ListUsers(c *gin.Context) {
	users, err := a.users.List(c.Request.Context())
	if err != nil {
		internalError(c, err, "Error retrieving users")
		return
	}

	responses := make([]userResponse, 0, len(users))
	for i := range users {
		resp, err := a.userResponseFor(c.Request.Context(), &users[i])
		if err != nil {
			internalError(c, err, "Error serializing user")
			return
		}
		responses = append(responses, resp)
	}

	c.JSON(http.StatusOK, gin.H{
		"users": responses,
		"count": len(responses),
	})
}

// requireSelf scopes the /users/:id routes to the principal's own
// record: any other id behaves as if the record did not exist.
func requireSelf(c *gin.Context) (int, bool) {
	userID, ok := principalID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"errors": "User is not authenticated"})
		return 0, false
	}

	requestedID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "Invalid user ID"})
		return 0, false
	}

	if requestedID != userID {
		c.JSON(http.StatusNotFound, gin.H{"errors": "User not found"})
		return 0, false
	}

	return userID, true
}

// GetUser returns the authenticated user's own profile.
func (a *API) GetUser(c *gin.Context) {
	userID, ok := requireSelf(c)
	if !ok {
		return
	}

	user, err := a.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"errors": "User not found"})
			return
		}
		internalError(c, err, "Error retrieving user")
		return
	}

	resp, err := a.userResponseFor(c.Request.Context(), user)
	if err != nil {
		internalError(c, err, "Error serializing user")
		return
	}
	c.JSON(http.StatusOK, resp)
}

type updateUserRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Username  *string `json:"username"`
	Password  *string `json:"password"`
}

// UpdateUser edits the authenticated user's own profile. A password in
// the payload is re-hashed; other fields are stored as given.
func (a *API) UpdateUser(c *gin.Context) {
	userID, ok := requireSelf(c)
	if !ok {
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "Invalid request body"})
		return
	}

	user, err := a.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"errors": "User not found"})
			return
		}
		internalError(c, err, "Error retrieving user")
		return
	}

	if req.Username != nil {
		if *req.Username == "" {
			c.JSON(http.StatusBadRequest, gin.H{"errors": "Username and password are required"})
			return
		}
		if utf8.RuneCountInString(*req.Username) > 50 {
			c.JSON(http.StatusBadRequest, gin.H{"errors": "Username must be at most 50 characters long"})
			return
		}
		user.Username = *req.Username
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = req.LastName
	}

	// The password is validated and hashed before anything is written, so
	// a rejected payload leaves the profile untouched.
	var passwordHash string
	if req.Password != nil {
		hash, err := a.creds.PreparePassword(*req.Password)
		if err != nil {
			var validationErr *auth.ValidationError
			if errors.As(err, &validationErr) {
				c.JSON(http.StatusBadRequest, gin.H{"errors": validationErr.Message})
				return
			}
			internalError(c, err, "Error updating password")
			return
		}
		passwordHash = hash
	}

	if err := a.users.Update(c.Request.Context(), user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			c.JSON(http.StatusBadRequest, gin.H{"errors": "The username already exists"})
			return
		}
		internalError(c, err, "Error updating user")
		return
	}

	if passwordHash != "" {
		if err := a.users.UpdatePassword(c.Request.Context(), userID, passwordHash); err != nil {
			internalError(c, err, "Error updating password")
			return
		}
	}

	resp, err := a.userResponseFor(c.Request.Context(), user)
	if err != nil {
		internalError(c, err, "Error serializing user")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteUser removes the authenticated user's own account. Owned tasks
// are deleted with it through the storage cascade.
func (a *API) DeleteUser(c *gin.Context) {
	userID, ok := requireSelf(c)
	if !ok {
		return
	}

	if err := a.users.Delete(c.Request.Context(), userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"errors": "User not found"})
			return
		}
		internalError(c, err, "Error deleting user")
		return
	}

	c.Status(http.StatusNoContent)
}
