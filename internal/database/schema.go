package database

import (
	"database/sql"
	"fmt"
)

// CreateTables creates all required tables in the database
func CreateTables(db *sql.DB) error {
	if err := createUsersTable(db); err != nil {
		return err
	}
	return createTasksTable(db)
}

// createUsersTable creates the users table. Username uniqueness is
// enforced here so concurrent registrations cannot race past an
// application-level check.
func createUsersTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		username VARCHAR(50) UNIQUE NOT NULL,
		password VARCHAR(255) NOT NULL,
		first_name VARCHAR(50) NOT NULL,
		last_name TEXT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`

	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}

	return nil
}

// createTasksTable creates the tasks table. Tasks are removed together
// with their owner via the foreign key cascade.
func createTasksTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS tasks (
		id SERIAL PRIMARY KEY,
		title VARCHAR(200) NOT NULL,
		description TEXT,
		status VARCHAR(20) NOT NULL DEFAULT 'new',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		owner_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE
	);
	`

	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("create tasks table: %w", err)
	}

	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS tasks_owner_created_idx ON tasks(owner_id, created_at ASC, id ASC)`); err != nil {
		return fmt.Errorf("create tasks owner/created index: %w", err)
	}

	return nil
}
