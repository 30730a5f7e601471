package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mm--/fatcat/internal/catalog"
)

// ChangelogHandlers implements the append-only changelog read endpoints
// (spec.md §3 "Changelog", §5 "Ordering guarantees").
type ChangelogHandlers struct {
	env *Env
}

// NewChangelogHandlers builds the changelog route handlers.
func NewChangelogHandlers(env *Env) *ChangelogHandlers {
	return &ChangelogHandlers{env: env}
}

// List handles GET /v0/changelog?limit=N, newest first.
func (h *ChangelogHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 50)
	rows, err := catalog.GetChangelog(h.env.DB, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// Get handles GET /v0/changelog/{changelog_id}.
func (h *ChangelogHandlers) Get(w http.ResponseWriter, r *http.Request) {
	raw := mux.Vars(r)["changelog_id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, catalog.WrapError(catalog.OtherBadRequest, err, "invalid changelog id %q", raw))
		return
	}
	row, err := catalog.GetChangelogEntry(h.env.DB, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, row)
}
