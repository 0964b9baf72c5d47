package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"todolist/internal/models"
)

// PostgresUserRepository implements UserRepository over *sql.DB.
type PostgresUserRepository struct {
	db *sql.DB
}

// NewPostgresUserRepository returns a user repository bound to db.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// failure. Relying on the constraint keeps username uniqueness atomic
// under concurrent registrations.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation"
}

func (r *PostgresUserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, password, first_name, last_name, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		user.Username,
		user.Password,
		user.FirstName,
		user.LastName,
		user.IsActive,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return err
	}

	return nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `
		SELECT id, username, password, first_name, last_name, is_active, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, username, password, first_name, last_name, is_active, created_at, updated_at
		FROM users
		WHERE username = $1
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, username))
}

func (r *PostgresUserRepository) scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	var lastName sql.NullString

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Password,
		&user.FirstName,
		&lastName,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if lastName.Valid {
		user.LastName = &lastName.String
	}
	return &user, nil
}

func (r *PostgresUserRepository) List(ctx context.Context) ([]models.User, error) {
	query := `
		SELECT id, username, first_name, last_name, is_active, created_at, updated_at
		FROM users
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		var user models.User
		var lastName sql.NullString

		err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.FirstName,
			&lastName,
			&user.IsActive,
			&user.CreatedAt,
			&user.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		if lastName.Valid {
			user.LastName = &lastName.String
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

func (r *PostgresUserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET username = $1, first_name = $2, last_name = $3, is_active = $4, updated_at = CURRENT_TIMESTAMP
		WHERE id = $5
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		user.Username,
		user.FirstName,
		user.LastName,
		user.IsActive,
		user.ID,
	).Scan(&user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return err
	}

	return nil
}

func (r *PostgresUserRepository) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET password = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		passwordHash, id,
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

// Delete removes the user; owned tasks go with it via the FK cascade.
func (r *PostgresUserRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
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

func (r *PostgresUserRepository) TaskIDsByOwner(ctx context.Context, ownerID int) ([]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM tasks WHERE owner_id = $1 ORDER BY created_at ASC, id ASC`,
		ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
