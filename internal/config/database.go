package config

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
)

// SetupDatabase initializes the database connection
func SetupDatabase(cfg *Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	// Create tables if they don't exist
	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return db, nil
}

// createTables creates the necessary tables in the database
func createTables(db *sqlx.DB) error {
	// Create users table
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id VARCHAR(36) PRIMARY KEY,
			email VARCHAR(255) UNIQUE NOT NULL,
			name VARCHAR(255) NOT NULL,
			password VARCHAR(255) NOT NULL,
			role VARCHAR(10) NOT NULL DEFAULT 'USER',
			approval_status VARCHAR(10) NOT NULL DEFAULT 'PENDING',
			total_bucks_earned BIGINT NOT NULL DEFAULT 0,
			current_bucks BIGINT NOT NULL DEFAULT 0,
			total_hours NUMERIC(8,2) NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	// Create events table
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS events (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			description TEXT,
			location VARCHAR(255),
			start_time TIMESTAMP NOT NULL,
			end_time TIMESTAMP NOT NULL,
			volunteers_needed INT NOT NULL,
			bucks_per_hour BIGINT NOT NULL,
			total_bucks_cap BIGINT NOT NULL DEFAULT 0,
			check_in_token VARCHAR(36) NOT NULL,
			check_out_token VARCHAR(36) NOT NULL,
			created_by VARCHAR(36) NOT NULL REFERENCES users(id),
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	// Create registrations table
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS registrations (
			id VARCHAR(36) PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			event_id VARCHAR(36) NOT NULL REFERENCES events(id) ON DELETE CASCADE,
			status VARCHAR(12) NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	// Create attendance table. The UNIQUE constraint backs the one-attendance
	// per (user, event) invariant even if two check-ins race.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS attendance (
			id VARCHAR(36) PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			event_id VARCHAR(36) NOT NULL REFERENCES events(id) ON DELETE CASCADE,
			registration_id VARCHAR(36) NOT NULL REFERENCES registrations(id),
			check_in_time TIMESTAMP NOT NULL,
			check_out_time TIMESTAMP,
			hours_worked NUMERIC(6,2),
			awarded BOOLEAN NOT NULL DEFAULT FALSE,
			status VARCHAR(12) NOT NULL,
			admin_notes TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			UNIQUE (user_id, event_id)
		)
	`)
	if err != nil {
		return err
	}

	// Create bucks_transactions table (append-only ledger)
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS bucks_transactions (
			id VARCHAR(36) PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			event_id VARCHAR(36) REFERENCES events(id),
			type VARCHAR(10) NOT NULL,
			amount BIGINT NOT NULL,
			hours_worked NUMERIC(6,2),
			description TEXT NOT NULL,
			approved_by VARCHAR(36) REFERENCES users(id),
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	// Create rewards table
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS rewards (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			description TEXT,
			bucks_cost BIGINT NOT NULL,
			quantity_available INT NOT NULL DEFAULT -1,
			quantity_redeemed INT NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	// Create reward_redemptions table
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS reward_redemptions (
			id VARCHAR(36) PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			reward_id VARCHAR(36) NOT NULL REFERENCES rewards(id),
			quantity INT NOT NULL,
			bucks_spent BIGINT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	// Create indexes for better performance
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_registrations_event ON registrations(event_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_registrations_user_event ON registrations(user_id, event_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_attendance_event ON attendance(event_id)",
		"CREATE INDEX IF NOT EXISTS idx_bucks_transactions_user ON bucks_transactions(user_id, created_at)",
	}

	for _, idx := range indexes {
		_, err = db.Exec(idx)
		if err != nil {
			log.Printf("Warning: Failed to create index: %v", err)
			// Don't return error here, indexes are not critical
		}
	}

	return nil
}
