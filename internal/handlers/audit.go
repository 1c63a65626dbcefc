package handlers

import (
	"net/http"
	"strconv"

	"github.com/janvanerven/pawtal/internal/store"
)

const defaultAuditLimit = 50

// Audit exposes the recent audit trail to administrators.
type Audit struct {
	audit *store.AuditStore
}

// NewAudit creates a new Audit handler group.
func NewAudit(audit *store.AuditStore) *Audit {
	return &Audit{audit: audit}
}

// Recent returns the latest audit entries, newest first.
func (h *Audit) Recent(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 500 {
		limit = defaultAuditLimit
	}

	entries, err := h.audit.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []store.AuditEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
