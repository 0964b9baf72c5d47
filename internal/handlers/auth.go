package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"todolist/internal/auth"
	"todolist/internal/middleware"
	"todolist/internal/repository"
	"todolist/internal/session"
)

type registerRequest struct {
	Username  string  `json:"username"`
	Password  string  `json:"password"`
	FirstName string  `json:"first_name"`
	LastName  *string `json:"last_name"`
}

// Register handles user registration. An authenticated caller is
// rejected rather than allowed to create a second account in-session.
func (a *API) Register(c *gin.Context) {
	if a.resolvedPrincipal(c) {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "User is already authenticated"})
		return
	}

	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "Invalid request body"})
		return
	}

	_, err := a.creds.Register(c.Request.Context(), req.Username, req.Password, req.FirstName, req.LastName)
	if err != nil {
		var validationErr *auth.ValidationError
		switch {
		case errors.As(err, &validationErr):
			c.JSON(http.StatusBadRequest, gin.H{"errors": validationErr.Message})
		case errors.Is(err, repository.ErrConflict):
			c.JSON(http.StatusBadRequest, gin.H{"errors": "The username already exists"})
		default:
			internalError(c, err, "Error registering user")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully"})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login verifies credentials and issues a fresh session token. The
// failure message is identical for unknown users and wrong passwords.
func (a *API) Login(c *gin.Context) {
	if a.resolvedPrincipal(c) {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "User is already authenticated"})
		return
	}

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "Invalid request body"})
		return
	}

	user, err := a.creds.Verify(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusBadRequest, gin.H{"errors": "The requested user does not exist"})
			return
		}
		internalError(c, err, "Error verifying credentials")
		return
	}

	token, err := a.sessions.Create(c.Request.Context(), user.ID)
	if err != nil {
		internalError(c, err, "Error creating session")
		return
	}

	resp, err := a.userResponseFor(c.Request.Context(), user)
	if err != nil {
		internalError(c, err, "Error serializing user")
		return
	}

	c.SetCookie(middleware.SessionCookieName, token, a.cookieMaxAge, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  resp,
	})
}

// Logout destroys the caller's session. Without a resolvable session
// there is nothing to log out of, which the source treats as 400.
func (a *API) Logout(c *gin.Context) {
	token := middleware.TokenFromRequest(c)
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "User is not authenticated"})
		return
	}

	if _, err := a.sessions.Resolve(c.Request.Context(), token); err != nil {
		if errors.Is(err, session.ErrNoSession) {
			c.JSON(http.StatusBadRequest, gin.H{"errors": "User is not authenticated"})
			return
		}
		internalError(c, err, "Error resolving session")
		return
	}

	if err := a.sessions.Destroy(c.Request.Context(), token); err != nil {
		internalError(c, err, "Error destroying session")
		return
	}

	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
