// Package handlers wires HTTP requests through the fixed pipeline:
// session resolution, authorization, repository call, response shaping.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"todolist/internal/auth"
	"todolist/internal/middleware"
	"todolist/internal/models"
	"todolist/internal/repository"
	"todolist/internal/session"
)

// API bundles the ports the handlers operate on.
type API struct {
	users    repository.UserRepository
	tasks    repository.TaskRepository
	sessions session.Registry
	creds    *auth.Credentials

	cookieMaxAge int
}

// NewAPI builds the handler set over the given ports. sessionTTL only
// feeds the cookie MaxAge; actual expiry lives in the session registry.
func NewAPI(users repository.UserRepository, tasks repository.TaskRepository, sessions session.Registry, sessionTTL time.Duration) *API {
	return &API{
		users:        users,
		tasks:        tasks,
		sessions:     sessions,
		creds:        auth.NewCredentials(users),
		cookieMaxAge: int(sessionTTL.Seconds()),
	}
}

// principalID returns the authenticated user id placed in the context
// by the auth middleware.
func principalID(c *gin.Context) (int, bool) {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return 0, false
	}
	userID, ok := value.(int)
	return userID, ok
}

// resolvedPrincipal reports whether the request already carries a valid
// session. Used by register/login to reject authenticated callers.
func (a *API) resolvedPrincipal(c *gin.Context) bool {
	token := middleware.TokenFromRequest(c)
	if token == "" {
		return false
	}
	_, err := a.sessions.Resolve(c.Request.Context(), token)
	return err == nil
}

func internalError(c *gin.Context, err error, msg string) {
	logrus.WithError(err).WithField("request_id", middleware.RequestIDFromContext(c)).Error(msg)
	c.JSON(http.StatusInternalServerError, gin.H{"errors": "Internal server error"})
}

// userResponse is the external user representation; the password is
// write-only and never appears here.
type userResponse struct {
	ID        int     `json:"id"`
	FirstName string  `json:"first_name"`
	LastName  *string `json:"last_name"`
	Username  string  `json:"username"`
	Tasks     []int   `json:"tasks"`
}

func (a *API) userResponseFor(ctx context.Context, user *models.User) (userResponse, error) {
	taskIDs, err := a.users.TaskIDsByOwner(ctx, user.ID)
	if err != nil {
		return userResponse{}, err
	}
	return userResponse{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Username:  user.Username,
		Tasks:     taskIDs,
	}, nil
}
