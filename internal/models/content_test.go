package models

import "testing"

// TestContentStatusValid verifies that Valid accepts exactly the four
// lifecycle statuses and nothing else.
func TestContentStatusValid(t *testing.T) {
	tests := []struct {
		name   string
		status ContentStatus
		want   bool
	}{
		{name: "draft", status: StatusDraft, want: true},
		{name: "published", status: StatusPublished, want: true},
		{name: "scheduled", status: StatusScheduled, want: true},
		{name: "trashed", status: StatusTrashed, want: true},
		{name: "empty", status: ContentStatus(""), want: false},
		{name: "deleted is not a status", status: ContentStatus("deleted"), want: false},
		{name: "uppercase DRAFT", status: ContentStatus("DRAFT"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.Valid(); got != tt.want {
				t.Errorf("ContentStatus(%q).Valid() = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

// TestContentKindValid verifies kind validation.
func TestContentKindValid(t *testing.T) {
	tests := []struct {
		name string
		kind ContentKind
		want bool
	}{
		{name: "page", kind: ContentKindPage, want: true},
		{name: "article", kind: ContentKindArticle, want: true},
		{name: "empty", kind: ContentKind(""), want: false},
		{name: "post", kind: ContentKind("post"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.kind.Valid(); got != tt.want {
				t.Errorf("ContentKind(%q).Valid() = %v, want %v", tt.kind, got, tt.want)
			}
		})
	}
}

// TestContentIsPublished verifies that IsPublished returns true only for
// the "published" status.
func TestContentIsPublished(t *testing.T) {
	tests := []struct {
		name   string
		status ContentStatus
		want   bool
	}{
		{name: "published", status: StatusPublished, want: true},
		{name: "draft", status: StatusDraft, want: false},
		{name: "scheduled", status: StatusScheduled, want: false},
		{name: "trashed", status: StatusTrashed, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Content{Status: tt.status}
			if got := c.IsPublished(); got != tt.want {
				t.Errorf("Content{Status: %q}.IsPublished() = %v, want %v",
					tt.status, got, tt.want)
			}
		})
	}
}

// TestStatusConstants pins the wire values stored in the database.
func TestStatusConstants(t *testing.T) {
	tests := []struct {
		name     string
		status   ContentStatus
		expected string
	}{
		{name: "draft", status: StatusDraft, expected: "draft"},
		{name: "published", status: StatusPublished, expected: "published"},
		{name: "scheduled", status: StatusScheduled, expected: "scheduled"},
		{name: "trashed", status: StatusTrashed, expected: "trashed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if string(tt.status) != tt.expected {
				t.Errorf("status %s = %q, want %q", tt.name, string(tt.status), tt.expected)
			}
		})
	}
}
