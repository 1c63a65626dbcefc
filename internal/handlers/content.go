package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/janvanerven/pawtal/internal/cache"
	"github.com/janvanerven/pawtal/internal/lifecycle"
	"github.com/janvanerven/pawtal/internal/middleware"
	"github.com/janvanerven/pawtal/internal/models"
)

// Content groups the content lifecycle endpoints for both kinds.
type Content struct {
	svc   *lifecycle.Service
	cache *cache.ContentCache
}

// NewContent creates a new Content handler group. cache may be nil, in
// which case public reads always hit the database.
func NewContent(svc *lifecycle.Service, contentCache *cache.ContentCache) *Content {
	return &Content{svc: svc, cache: contentCache}
}

// kindFromURL maps the plural path segment to a content kind.
func kindFromURL(r *http.Request) (models.ContentKind, bool) {
	switch chi.URLParam(r, "kind") {
	case "pages":
		return models.ContentKindPage, true
	case "articles":
		return models.ContentKindArticle, true
	}
	return "", false
}

// idFromURL parses the {id} path segment.
func idFromURL(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	return id, err == nil
}

// authorID resolves the acting user placed in the context by the auth
// middleware.
func authorID(r *http.Request) uuid.UUID {
	if u := middleware.UserFrom(r.Context()); u != nil {
		return u.ID
	}
	return uuid.Nil
}

type createRequest struct {
	Title        string               `json:"title"`
	Slug         string               `json:"slug"`
	Body         string               `json:"body"`
	Summary      *string              `json:"summary"`
	Status       models.ContentStatus `json:"status"`
	PublishAt    *time.Time           `json:"publish_at"`
	CoverMediaID *uuid.UUID           `json:"cover_media_id"`
}

type updateRequest struct {
	Title        *string               `json:"title"`
	Slug         *string               `json:"slug"`
	Body         *string               `json:"body"`
	Summary      *string               `json:"summary"`
	Status       *models.ContentStatus `json:"status"`
	PublishAt    *time.Time            `json:"publish_at"`
	CoverMediaID *uuid.UUID            `json:"cover_media_id"`
}

// List returns one page of content, optionally filtered by status.
func (h *Content) List(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindFromURL(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	var status *models.ContentStatus
	if s := r.URL.Query().Get("status"); s != "" {
		st := models.ContentStatus(s)
		status = &st
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	result, err := h.svc.List(r.Context(), kind, status, page, perPage)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Create inserts a new content item.
func (h *Content) Create(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindFromURL(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	created, err := h.svc.Create(r.Context(), kind, lifecycle.CreateInput{
		Title:        req.Title,
		Slug:         req.Slug,
		Body:         req.Body,
		Summary:      req.Summary,
		Status:       req.Status,
		PublishAt:    req.PublishAt,
		CoverMediaID: req.CoverMediaID,
	}, authorID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Get returns a single item by id.
func (h *Content) Get(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindFromURL(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	id, ok := idFromURL(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	item, err := h.svc.Get(r.Context(), kind, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Update applies a partial update.
func (h *Content) Update(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindFromURL(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	id, ok := idFromURL(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	updated, err := h.svc.Update(r.Context(), kind, id, lifecycle.UpdateInput{
		Title:        req.Title,
		Slug:         req.Slug,
		Body:         req.Body,
		Summary:      req.Summary,
		Status:       req.Status,
		PublishAt:    req.PublishAt,
		CoverMediaID: req.CoverMediaID,
	}, authorID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// setStatus is the shared implementation of the four status endpoints.
func (h *Content) setStatus(w http.ResponseWriter, r *http.Request, action lifecycle.Action) {
	kind, ok := kindFromURL(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	id, ok := idFromURL(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	updated, err := h.svc.SetStatus(r.Context(), kind, id, action, authorID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Publish transitions an item to published. Idempotent.
func (h *Content) Publish(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, lifecycle.Action{Name: lifecycle.ActionPublish})
}

// Trash moves an item to the trash.
func (h *Content) Trash(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, lifecycle.Action{Name: lifecycle.ActionTrash})
}

// Restore brings a trashed item back to draft.
func (h *Content) Restore(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, lifecycle.Action{Name: lifecycle.ActionRestore})
}

// Schedule sets a future publish time.
func (h *Content) Schedule(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PublishAt *time.Time `json:"publish_at"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	h.setStatus(w, r, lifecycle.Action{Name: lifecycle.ActionSchedule, PublishAt: req.PublishAt})
}

// Revisions lists an item's revision history, newest first.
func (h *Content) Revisions(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindFromURL(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	id, ok := idFromURL(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	revisions, err := h.svc.ListRevisions(r.Context(), kind, id)
	if err != nil {
		writeError(w, err)
		return
	}
	if revisions == nil {
		revisions = []models.Revision{}
	}
	writeJSON(w, http.StatusOK, revisions)
}

// RestoreRevision rewrites an item from a historical snapshot.
func (h *Content) RestoreRevision(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindFromURL(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	id, ok := idFromURL(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	revisionID, ok := idFromURL(r, "revisionID")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid revision id"})
		return
	}

	updated, err := h.svc.RestoreRevision(r.Context(), kind, id, revisionID, authorID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Public serves a published item by slug for the unauthenticated site,
// through the Valkey cache when one is configured.
func (h *Content) Public(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindFromURL(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	itemSlug := chi.URLParam(r, "slug")

	if h.cache != nil {
		if item := h.cache.Get(r.Context(), kind, itemSlug); item != nil {
			writeJSON(w, http.StatusOK, item)
			return
		}
	}

	item, err := h.svc.GetPublishedBySlug(r.Context(), kind, itemSlug)
	if err != nil {
		writeError(w, err)
		return
	}
	if h.cache != nil {
		h.cache.Set(r.Context(), item)
	}
	writeJSON(w, http.StatusOK, item)
}
