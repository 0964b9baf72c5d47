package auth

import (
	"todolist/internal/models"
)

// Action is what a principal wants to do with a task.
type Action int

const (
	ActionRead Action = iota
	ActionWrite
	ActionDelete
)

// CanAccess decides whether the principal may perform action on task.
// Any authenticated principal may read a task by id; writing and
// deleting require ownership. Handlers check existence before calling
// this, so an existing-but-foreign task yields 403, never 404.
func CanAccess(principalID int, task *models.Task, action Action) bool {
	if task == nil {
		return false
	}

	switch action {
	case ActionRead:
		return true
	case ActionWrite, ActionDelete:
		return principalID == task.OwnerID
	default:
		return false
	}
}
