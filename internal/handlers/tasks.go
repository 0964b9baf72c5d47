package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"todolist/internal/auth"
	"todolist/internal/models"
	"todolist/internal/repository"
)

// ListTasks returns the authenticated user's tasks in creation order,
// optionally restricted by ?status= (case-insensitive).
func (a *API) ListTasks(c *gin.Context) {
	userID, ok := principalID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"errors": "User is not authenticated"})
		return
	}

	tasks, err := a.tasks.ListByOwner(c.Request.Context(), userID, c.Query("status"))
	if err != nil {
		internalError(c, err, "Error retrieving tasks")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": tasks,
		"count": len(tasks),
	})
}

type createTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
}

// CreateTask creates a task owned by the authenticated user. Any
// client-supplied owner is ignored; the principal is the owner.
func (a *API) CreateTask(c *gin.Context) {
	userID, ok := principalID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"errors": "User is not authenticated"})
		return
	}

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "Invalid request body"})
		return
	}

	if req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "Title is required"})
		return
	}
	if utf8.RuneCountInString(req.Title) > 200 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "Title must be at most 200 characters long"})
		return
	}

	status, err := models.ParseStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "Invalid task status"})
		return
	}

	task := &models.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		OwnerID:     userID,
	}
	if err := a.tasks.Create(c.Request.Context(), task); err != nil {
		internalError(c, err, "Error creating task")
		return
	}

	c.JSON(http.StatusCreated, task)
}

// fetchTaskForAction loads the task and runs the authorization gate.
// Existence is checked first: an unknown id is 404, an existing task
// the principal may not touch is 403. The ordering is deliberate.
func (a *API) fetchTaskForAction(c *gin.Context, action auth.Action) (*models.Task, bool) {
	userID, ok := principalID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"errors": "User is not authenticated"})
		return nil, false
	}

	taskID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "Invalid task ID"})
		return nil, false
	}

	task, err := a.tasks.GetByID(c.Request.Context(), taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"errors": "Task not found"})
			return nil, false
		}
		internalError(c, err, "Error retrieving task")
		return nil, false
	}

	if !auth.CanAccess(userID, task, action) {
		c.JSON(http.StatusForbidden, gin.H{"errors": "You do not have permission to modify this task."})
		return nil, false
	}

	return task, true
}

// GetTask returns a single task by id. Reads are not owner-scoped; any
// authenticated user may fetch any task directly.
func (a *API) GetTask(c *gin.Context) {
	task, ok := a.fetchTaskForAction(c, auth.ActionRead)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, task)
}

type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

// UpdateTask applies a full or partial update. created and owner are
// immutable and simply not part of the accepted payload.
func (a *API) UpdateTask(c *gin.Context) {
	task, ok := a.fetchTaskForAction(c, auth.ActionWrite)
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "Invalid request body"})
		return
	}

	if req.Title != nil {
		if *req.Title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"errors": "Title is required"})
			return
		}
		if utf8.RuneCountInString(*req.Title) > 200 {
			c.JSON(http.StatusBadRequest, gin.H{"errors": "Title must be at most 200 characters long"})
			return
		}
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = req.Description
	}
	if req.Status != nil {
		status, err := models.ParseStatus(*req.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": "Invalid task status"})
			return
		}
		task.Status = status
	}

	if err := a.tasks.Update(c.Request.Context(), task); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"errors": "Task not found"})
			return
		}
		internalError(c, err, "Error updating task")
		return
	}

	c.JSON(http.StatusOK, task)
}

// DeleteTask removes a task. Owner only.
func (a *API) DeleteTask(c *gin.Context) {
	task, ok := a.fetchTaskForAction(c, auth.ActionDelete)
	if !ok {
		return
	}

	if err := a.tasks.Delete(c.Request.Context(), task.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"errors": "Task not found"})
			return
		}
		internalError(c, err, "Error deleting task")
		return
	}

	c.Status(http.StatusNoContent)
}

// MarkCompleted sets the task's status to completed. Calling it on an
// already-completed task succeeds and leaves the status unchanged.
func (a *API) MarkCompleted(c *gin.Context) {
	task, ok := a.fetchTaskForAction(c, auth.ActionWrite)
	if !ok {
		return
	}

	updated, err := a.tasks.MarkCompleted(c.Request.Context(), task.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"errors": "Task not found"})
			return
		}
		internalError(c, err, "Error marking task completed")
		return
	}

	c.JSON(http.StatusOK, updated)
}
