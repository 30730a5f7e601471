package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mm--/fatcat/internal/catalog"
)

// EditgroupHandlers implements the editgroup lifecycle endpoints: create
// (explicit editgroup open), get, and accept (spec.md §4.3/§4.5).
type EditgroupHandlers struct {
	env      *Env
	registry *catalog.Registry
}

// NewEditgroupHandlers builds the editgroup route handlers.
func NewEditgroupHandlers(env *Env, registry *catalog.Registry) *EditgroupHandlers {
	return &EditgroupHandlers{env: env, registry: registry}
}

type createEditgroupRequest struct {
	EditorID  string `json:"editor_id"`
	ExtraJSON []byte `json:"extra_json,omitempty"`
}

// Create handles POST /v0/editgroup: returns the caller's active editgroup,
// opening a new one only when the editor has none, rather than letting the
// next mutation implicitly create one.
func (h *EditgroupHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req createEditgroupRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	editorID, err := parseFatCatId(req.EditorID)
	if err != nil {
		writeError(w, err)
		return
	}
	ec, err := catalog.MakeEditContext(h.env.DB, editorID, nil, false, req.ExtraJSON)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ec)
}

// Get handles GET /v0/editgroup/{editgroup_id}.
func (h *EditgroupHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseFatCatId(mux.Vars(r)["editgroup_id"])
	if err != nil {
		writeError(w, err)
		return
	}
	eg, err := catalog.GetEditgroup(h.env.DB, id)
	if err != nil {
		writeError(w, err)
		return
	}
	status, err := eg.Status(h.env.DB)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		catalog.Editgroup
		Status string `json:"status"`
	}{*eg, status})
}

// Accept handles POST /v0/editgroup/{editgroup_id}/accept (spec.md §4.5).
func (h *EditgroupHandlers) Accept(w http.ResponseWriter, r *http.Request) {
	id, err := parseFatCatId(mux.Vars(r)["editgroup_id"])
	if err != nil {
		writeError(w, err)
		return
	}
	row, err := catalog.AcceptEditgroup(h.env.DB, h.registry, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, row)
}
