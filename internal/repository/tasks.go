package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"todolist/internal/models"
)

// PostgresTaskRepository implements TaskRepository over *sql.DB.
type PostgresTaskRepository struct {
	db *sql.DB
}

// NewPostgresTaskRepository returns a task repository bound to db.
func NewPostgresTaskRepository(db *sql.DB) *PostgresTaskRepository {
	return &PostgresTaskRepository{db: db}
}

// ListByOwner returns the owner's tasks in creation order. The scoping
// happens in the query itself, not per item. A non-empty statusFilter
// restricts case-insensitively.
func (r *PostgresTaskRepository) ListByOwner(ctx context.Context, ownerID int, statusFilter string) ([]models.Task, error) {
	query := `
		SELECT t.id, t.title, t.description, t.status, t.created_at, t.owner_id, u.username
		FROM tasks t
		JOIN users u ON u.id = t.owner_id
		WHERE t.owner_id = $1
		  AND ($2 = '' OR lower(t.status) = $2)
		ORDER BY t.created_at ASC, t.id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID, strings.ToLower(strings.TrimSpace(statusFilter)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]models.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}

	return tasks, rows.Err()
}

// Create inserts the task and resolves the owner's username in the same
// statement, so there is no window for a half-created row.
func (r *PostgresTaskRepository) Create(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (title, description, status, owner_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, (SELECT username FROM users WHERE id = owner_id)
	`

	return r.db.QueryRowContext(ctx, query,
		task.Title,
		task.Description,
		task.Status,
		task.OwnerID,
	).Scan(&task.ID, &task.CreatedAt, &task.OwnerUsername)
}

// GetByID fetches a task regardless of owner; the caller decides what
// the requesting principal may do with it.
func (r *PostgresTaskRepository) GetByID(ctx context.Context, id int) (*models.Task, error) {
	query := `
		SELECT t.id, t.title, t.description, t.status, t.created_at, t.owner_id, u.username
		FROM tasks t
		JOIN users u ON u.id = t.owner_id
		WHERE t.id = $1
	`

	task, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return task, nil
}

// Update rewrites the mutable fields only. owner_id and created_at are
// not part of the statement, so they cannot be changed through it.
func (r *PostgresTaskRepository) Update(ctx context.Context, task *models.Task) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET title = $1, description = $2, status = $3 WHERE id = $4`,
		task.Title,
		task.Description,
		task.Status,
		task.ID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresTaskRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkCompleted sets the status unconditionally, so a second call on an
// already-completed task succeeds with the same final state.
func (r *PostgresTaskRepository) MarkCompleted(ctx context.Context, id int) (*models.Task, error) {
	query := `
		UPDATE tasks t
		SET status = $1
		FROM users u
		WHERE t.id = $2 AND u.id = t.owner_id
		RETURNING t.id, t.title, t.description, t.status, t.created_at, t.owner_id, u.username
	`

	task, err := scanTask(r.db.QueryRowContext(ctx, query, models.StatusCompleted, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return task, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (*models.Task, error) {
	var task models.Task
	var description sql.NullString

	err := row.Scan(
		&task.ID,
		&task.Title,
		&description,
		&task.Status,
		&task.CreatedAt,
		&task.OwnerID,
		&task.OwnerUsername,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		task.Description = &description.String
	}
	return &task, nil
}
