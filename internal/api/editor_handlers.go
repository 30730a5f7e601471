package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mm--/fatcat/internal/catalog"
)

// EditorHandlers implements the editor read endpoint.
type EditorHandlers struct {
	env *Env
}

// NewEditorHandlers builds the editor route handlers.
func NewEditorHandlers(env *Env) *EditorHandlers {
	return &EditorHandlers{env: env}
}

// Get handles GET /v0/editor/{editor_id}.
func (h *EditorHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseFatCatId(mux.Vars(r)["editor_id"])
	if err != nil {
		writeError(w, err)
		return
	}
	e, err := catalog.GetEditor(h.env.DB, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// Changelog handles GET /v0/editor/{editor_id}/changelog?limit=N: the
// changelog entries for editgroups this editor authored, newest first.
func (h *EditorHandlers) Changelog(w http.ResponseWriter, r *http.Request) {
	id, err := parseFatCatId(mux.Vars(r)["editor_id"])
	if err != nil {
		writeError(w, err)
		return
	}
	limit := parseLimit(r, 50)
	rows, err := catalog.GetEditorChangelog(h.env.DB, id, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
