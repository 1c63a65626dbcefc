// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/janvanerven/pawtal/internal/database"
	"github.com/janvanerven/pawtal/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "pawtal")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "pawtal")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := testDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testAuthor creates a throwaway user for content authorship and registers
// its cleanup. Content rows referencing the user must be removed first, so
// tests clean their content slugs too.
func testAuthor(t *testing.T, db *sql.DB) uuid.UUID {
	t.Helper()

	email := "author-" + uuid.NewString()[:8] + "@test.local"
	u, err := NewUserStore(db).Create(context.Background(), email, "password", "Test Author", models.RoleEditor)
	if err != nil {
		t.Fatalf("create test author: %v", err)
	}
	t.Cleanup(func() {
		db.Exec("DELETE FROM content WHERE author_id = $1", u.ID)
		db.Exec("DELETE FROM users WHERE id = $1", u.ID)
	})
	return u.ID
}

// cleanContent removes test content by slug. Call in t.Cleanup().
func cleanContent(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, slug := range slugs {
		db.Exec("DELETE FROM content WHERE slug = $1", slug)
	}
}

// testContent inserts a draft page with a unique slug and returns it.
func testContent(t *testing.T, db *sql.DB, authorID uuid.UUID) *models.Content {
	t.Helper()

	slug := "test-" + uuid.NewString()[:8]
	c, err := NewContentStore(db).Create(context.Background(), &models.Content{
		Kind:     models.ContentKindPage,
		Title:    "Test Page",
		Slug:     slug,
		Body:     "<p>body</p>",
		Status:   models.StatusDraft,
		AuthorID: authorID,
	})
	if err != nil {
		t.Fatalf("create test content: %v", err)
	}
	t.Cleanup(func() { cleanContent(t, db, slug) })
	return c
}
