// service_test.go exercises the lifecycle façade against a real PostgreSQL
// instance; tests are skipped when the database is unreachable.
package lifecycle

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/janvanerven/pawtal/internal/database"
	"github.com/janvanerven/pawtal/internal/models"
	"github.com/janvanerven/pawtal/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "pawtal")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "pawtal")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

// testService builds a Service on a live database, plus the author id used
// for every call. Skips when PostgreSQL is unavailable.
func testService(t *testing.T) (*Service, *sql.DB, uuid.UUID) {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
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
	goose.SetBaseFS(nil)
	t.Cleanup(func() { db.Close() })

	email := "lifecycle-" + uuid.NewString()[:8] + "@test.local"
	author, err := store.NewUserStore(db).Create(context.Background(), email, "password", "Lifecycle Tester", models.RoleEditor)
	if err != nil {
		t.Fatalf("create test author: %v", err)
	}
	t.Cleanup(func() {
		db.Exec("DELETE FROM content WHERE author_id = $1", author.ID)
		db.Exec("DELETE FROM users WHERE id = $1", author.ID)
	})

	svc := NewService(db,
		store.NewContentStore(db),
		store.NewRevisionStore(db),
		store.NewAuditStore(db),
	)
	return svc, db, author.ID
}

func revisionCount(t *testing.T, db *sql.DB, contentID uuid.UUID) int {
	t.Helper()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM content_revisions WHERE content_id = $1", contentID).Scan(&n); err != nil {
		t.Fatalf("count revisions: %v", err)
	}
	return n
}

func TestServiceCreateWritesInitialRevision(t *testing.T) {
	svc, db, author := testService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, models.ContentKindPage, CreateInput{
		Title: "Create Flow " + uuid.NewString()[:8],
		Body:  "<p>hello</p>",
	}, author)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if created.Status != models.StatusDraft {
		t.Errorf("status = %q, want draft by default", created.Status)
	}
	if created.Slug == "" {
		t.Error("expected a slug derived from the title")
	}
	if n := revisionCount(t, db, created.ID); n != 1 {
		t.Errorf("revision count = %d, want 1", n)
	}
}

func TestServiceCreateSlugConflict(t *testing.T) {
	svc, db, author := testService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, models.ContentKindPage, CreateInput{
		Title: "Conflict " + uuid.NewString()[:8],
	}, author)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = svc.Create(ctx, models.ContentKindPage, CreateInput{
		Title: "Another Title",
		Slug:  created.Slug,
	}, author)
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("error = %v, want *ConflictError", err)
	}
	if conflict.Slug != created.Slug {
		t.Errorf("conflict slug = %q, want %q", conflict.Slug, created.Slug)
	}

	// The failed create must not have left a row behind.
	var n int
	db.QueryRow("SELECT COUNT(*) FROM content WHERE slug = $1 AND kind = 'page'", created.Slug).Scan(&n)
	if n != 1 {
		t.Errorf("rows with slug = %d, want 1", n)
	}
}

func TestServiceCreateValidation(t *testing.T) {
	svc, _, author := testService(t)
	ctx := context.Background()
	past := time.Now().Add(-time.Hour)

	tests := []struct {
		name  string
		input CreateInput
	}{
		{name: "missing title", input: CreateInput{Body: "b"}},
		{name: "scheduled without publish_at", input: CreateInput{Title: "T", Status: models.StatusScheduled}},
		{name: "scheduled in the past", input: CreateInput{Title: "T", Status: models.StatusScheduled, PublishAt: &past}},
		{name: "born trashed", input: CreateInput{Title: "T", Status: models.StatusTrashed}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, models.ContentKindPage, tt.input, author)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("error = %v, want *ValidationError", err)
			}
		})
	}
}

func TestServiceUpdateAppendsRevision(t *testing.T) {
	svc, db, author := testService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, models.ContentKindArticle, CreateInput{
		Title: "Update Flow " + uuid.NewString()[:8],
		Body:  "v1",
	}, author)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	before := revisionCount(t, db, created.ID)
	newBody := "v2"
	updated, err := svc.Update(ctx, models.ContentKindArticle, created.ID, UpdateInput{Body: &newBody}, author)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Body != "v2" {
		t.Errorf("body = %q, want %q", updated.Body, "v2")
	}
	if n := revisionCount(t, db, created.ID); n != before+1 {
		t.Errorf("revision count = %d, want %d", n, before+1)
	}
}

func TestServiceUpdateStatusTransition(t *testing.T) {
	svc, _, author := testService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, models.ContentKindPage, CreateInput{
		Title: "Via Update " + uuid.NewString()[:8],
	}, author)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// draft -> scheduled through a patch with a future publish_at.
	future := time.Now().Add(time.Hour)
	scheduled := models.StatusScheduled
	updated, err := svc.Update(ctx, models.ContentKindPage, created.ID, UpdateInput{
		Status:    &scheduled,
		PublishAt: &future,
	}, author)
	if err != nil {
		t.Fatalf("Update to scheduled: %v", err)
	}
	if updated.Status != models.StatusScheduled {
		t.Errorf("status = %q, want scheduled", updated.Status)
	}
	if updated.PublishAt == nil {
		t.Error("expected publish_at set")
	}

	// published -> draft is not an edge.
	if _, err := svc.SetStatus(ctx, models.ContentKindPage, created.ID, Action{Name: ActionPublish}, author); err != nil {
		t.Fatalf("SetStatus publish: %v", err)
	}
	draft := models.StatusDraft
	_, err = svc.Update(ctx, models.ContentKindPage, created.ID, UpdateInput{Status: &draft}, author)
	var ite *InvalidTransitionError
	if !errors.As(err, &ite) {
		t.Errorf("error = %v, want *InvalidTransitionError", err)
	}
}

func TestServicePublishIdempotent(t *testing.T) {
	svc, db, author := testService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, models.ContentKindPage, CreateInput{
		Title: "Idempotent " + uuid.NewString()[:8],
	}, author)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	first, err := svc.SetStatus(ctx, models.ContentKindPage, created.ID, Action{Name: ActionPublish}, author)
	if err != nil {
		t.Fatalf("first publish: %v", err)
	}
	second, err := svc.SetStatus(ctx, models.ContentKindPage, created.ID, Action{Name: ActionPublish}, author)
	if err != nil {
		t.Fatalf("second publish: %v", err)
	}
	if first.Status != models.StatusPublished || second.Status != models.StatusPublished {
		t.Error("expected published status from both calls")
	}
	// Status changes never append revisions.
	if n := revisionCount(t, db, created.ID); n != 1 {
		t.Errorf("revision count = %d, want 1", n)
	}
}

func TestServiceTrashRestoreCycle(t *testing.T) {
	svc, _, author := testService(t)
	ctx := context.Background()

	future := time.Now().Add(time.Hour)
	created, err := svc.Create(ctx, models.ContentKindPage, CreateInput{
		Title:     "Trash Cycle " + uuid.NewString()[:8],
		Status:    models.StatusScheduled,
		PublishAt: &future,
	}, author)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	trashed, err := svc.SetStatus(ctx, models.ContentKindPage, created.ID, Action{Name: ActionTrash}, author)
	if err != nil {
		t.Fatalf("trash: %v", err)
	}
	if trashed.Status != models.StatusTrashed {
		t.Errorf("status = %q, want trashed", trashed.Status)
	}
	if trashed.TrashedAt == nil {
		t.Error("expected trashed_at set")
	}
	if trashed.PublishAt != nil {
		t.Error("trashing a scheduled item must clear publish_at")
	}

	// Publishing from the trash is rejected.
	_, err = svc.SetStatus(ctx, models.ContentKindPage, created.ID, Action{Name: ActionPublish}, author)
	var ite *InvalidTransitionError
	if !errors.As(err, &ite) {
		t.Errorf("error = %v, want *InvalidTransitionError", err)
	}

	restored, err := svc.SetStatus(ctx, models.ContentKindPage, created.ID, Action{Name: ActionRestore}, author)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.Status != models.StatusDraft {
		t.Errorf("status = %q, want draft after restore", restored.Status)
	}
	if restored.TrashedAt != nil {
		t.Error("expected trashed_at cleared after restore")
	}
}

func TestServiceRestoreRevision(t *testing.T) {
	svc, db, author := testService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, models.ContentKindArticle, CreateInput{
		Title: "History " + uuid.NewString()[:8],
		Body:  "v1",
	}, author)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	v2 := "v2"
	if _, err := svc.Update(ctx, models.ContentKindArticle, created.ID, UpdateInput{Body: &v2}, author); err != nil {
		t.Fatalf("Update: %v", err)
	}

	revisions, err := svc.ListRevisions(ctx, models.ContentKindArticle, created.ID)
	if err != nil {
		t.Fatalf("ListRevisions: %v", err)
	}
	if len(revisions) != 2 {
		t.Fatalf("revision count = %d, want 2", len(revisions))
	}
	oldest := revisions[len(revisions)-1]

	restored, err := svc.RestoreRevision(ctx, models.ContentKindArticle, created.ID, oldest.ID, author)
	if err != nil {
		t.Fatalf("RestoreRevision: %v", err)
	}
	if restored.Body != "v1" {
		t.Errorf("body = %q, want %q", restored.Body, "v1")
	}
	// Restoring grows history instead of rewinding it.
	if n := revisionCount(t, db, created.ID); n != 3 {
		t.Errorf("revision count = %d, want 3", n)
	}
}

func TestServiceNotFound(t *testing.T) {
	svc, _, author := testService(t)
	ctx := context.Background()

	_, err := svc.Get(ctx, models.ContentKindPage, uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get error = %v, want ErrNotFound", err)
	}
	_, err = svc.Update(ctx, models.ContentKindPage, uuid.New(), UpdateInput{}, author)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Update error = %v, want ErrNotFound", err)
	}
	_, err = svc.SetStatus(ctx, models.ContentKindPage, uuid.New(), Action{Name: ActionPublish}, author)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("SetStatus error = %v, want ErrNotFound", err)
	}
}

// TestServicePublishRace pits an interactive publish against the
// scheduler's promotion statement on the same due item. Exactly one
// published row must come out, neither caller may fail, and the revision
// log must not grow.
func TestServicePublishRace(t *testing.T) {
	svc, db, author := testService(t)
	ctx := context.Background()

	future := time.Now().Add(50 * time.Millisecond)
	created, err := svc.Create(ctx, models.ContentKindPage, CreateInput{
		Title:     "Race " + uuid.NewString()[:8],
		Status:    models.StatusScheduled,
		PublishAt: &future,
	}, author)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	time.Sleep(60 * time.Millisecond) // item is now due

	contents := store.NewContentStore(db)
	var wg sync.WaitGroup
	errs := make(chan error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := svc.SetStatus(ctx, models.ContentKindPage, created.ID, Action{Name: ActionPublish}, author)
		errs <- err
	}()
	go func() {
		defer wg.Done()
		_, err := contents.PublishDue(ctx, models.ContentKindPage, time.Now())
		errs <- err
	}()
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Errorf("racing caller failed: %v", err)
		}
	}

	final, err := svc.Get(ctx, models.ContentKindPage, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if final.Status != models.StatusPublished {
		t.Errorf("status = %q, want published", final.Status)
	}
	if final.PublishAt != nil {
		t.Error("expected publish_at cleared")
	}
	if n := revisionCount(t, db, created.ID); n != 1 {
		t.Errorf("revision count = %d, want 1 — status changes must not append revisions", n)
	}
}
