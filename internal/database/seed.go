package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Seed populates the database with initial development data: a default
// admin user and a published welcome page. No-op if any users exist.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	var adminID string
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, display_name, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, "admin@pawtal.local", string(hash), "Admin", "admin").Scan(&adminID)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	var pageID string
	err = db.QueryRow(`
		INSERT INTO content (kind, title, slug, body, status, author_id)
		VALUES ('page', 'Welcome', 'welcome', '<p>Welcome to Pawtal.</p>', 'published', $1)
		RETURNING id
	`, adminID).Scan(&pageID)
	if err != nil {
		return fmt.Errorf("seed insert welcome page: %w", err)
	}
	_, err = db.Exec(`
		INSERT INTO content_revisions (content_id, title, body, author_id)
		VALUES ($1, 'Welcome', '<p>Welcome to Pawtal.</p>', $2)
	`, pageID, adminID)
	if err != nil {
		return fmt.Errorf("seed insert welcome revision: %w", err)
	}

	slog.Info("database seeded with default admin user",
		"email", "admin@pawtal.local",
		"password", "admin",
	)

	return nil
}
