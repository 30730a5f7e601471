package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/mm--/fatcat/internal/catalog"
	"github.com/mm--/fatcat/pkg/fcid"
)

// newEntity returns a fresh, empty pointer to the concrete entity struct
// for kind, used as the JSON decode/create target. One entry per
// registered EntityCrud implementation (spec.md §9).
func newEntity(kind string) interface{} {
	switch kind {
	case "container":
		return &catalog.ContainerEntity{}
	case "creator":
		return &catalog.CreatorEntity{}
	case "file":
		return &catalog.FileEntity{}
	case "fileset":
		return &catalog.FilesetEntity{}
	case "webcapture":
		return &catalog.WebcaptureEntity{}
	case "release":
		return &catalog.ReleaseEntity{}
	case "work":
		return &catalog.WorkEntity{}
	default:
		return nil
	}
}

// EntityRouter mounts the generic per-kind entity endpoints (get,
// revision, history, redirects, create, update, delete, redirect) for
// every kind known to registry.
type EntityRouter struct {
	srv      *Env
	registry *catalog.Registry
}

// NewEntityRouter builds the per-kind CRUD routes.
func NewEntityRouter(env *Env, registry *catalog.Registry) *EntityRouter {
	return &EntityRouter{srv: env, registry: registry}
}

func (er *EntityRouter) crud(kind string) (catalog.EntityCrud, error) {
	crud := er.registry.Get(kind)
	if crud == nil {
		return nil, catalog.NewError(catalog.OtherBadRequest, "unknown entity kind: %s", kind)
	}
	return crud, nil
}

// Get handles GET /v0/{kind}/{ident}.
func (er *EntityRouter) Get(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	crud, err := er.crud(vars["kind"])
	if err != nil {
		writeError(w, err)
		return
	}
	ident, err := parseFatCatId(vars["ident"])
	if err != nil {
		writeError(w, err)
		return
	}
	hide := catalog.ParseHideFlags(r.URL.Query().Get("hide"))

	var out interface{}
	if rc, ok := crud.(interface {
		GetExpanded(*gorm.DB, fcid.FatCatId, catalog.HideFlags, catalog.ExpandFlags) (interface{}, error)
	}); ok {
		expand := catalog.ParseExpandFlags(r.URL.Query().Get("expand"))
		out, err = rc.GetExpanded(er.srv.DB, ident, hide, expand)
	} else {
		out, err = crud.Get(er.srv.DB, ident, hide)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// GetRevision handles GET /v0/{kind}/rev/{rev_id}.
func (er *EntityRouter) GetRevision(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	crud, err := er.crud(vars["kind"])
	if err != nil {
		writeError(w, err)
		return
	}
	revID, err := parseFatCatId(vars["rev_id"])
	if err != nil {
		writeError(w, err)
		return
	}
	hide := catalog.ParseHideFlags(r.URL.Query().Get("hide"))
	out, err := crud.GetRev(er.srv.DB, revID, hide)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// GetHistory handles GET /v0/{kind}/{ident}/history.
func (er *EntityRouter) GetHistory(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	crud, err := er.crud(vars["kind"])
	if err != nil {
		writeError(w, err)
		return
	}
	ident, err := parseFatCatId(vars["ident"])
	if err != nil {
		writeError(w, err)
		return
	}
	limit := parseLimit(r, 50)
	out, err := crud.GetHistory(er.srv.DB, ident, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// GetRedirects handles GET /v0/{kind}/{ident}/redirects.
func (er *EntityRouter) GetRedirects(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	crud, err := er.crud(vars["kind"])
	if err != nil {
		writeError(w, err)
		return
	}
	ident, err := parseFatCatId(vars["ident"])
	if err != nil {
		writeError(w, err)
		return
	}
	out, err := crud.GetRedirects(er.srv.DB, ident)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Create handles POST /v0/editgroup/{editgroup_id}/{kind}.
func (er *EntityRouter) Create(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	kind := vars["kind"]
	crud, err := er.crud(kind)
	if err != nil {
		writeError(w, err)
		return
	}
	ec, err := er.editContext(r, vars)
	if err != nil {
		writeError(w, err)
		return
	}
	entity := newEntity(kind)
	if err := decodeJSONBody(r, entity); err != nil {
		writeError(w, err)
		return
	}

	var edit interface{}
	txErr := er.srv.DB.Transaction(func(tx *gorm.DB) error {
		e, err := crud.Create(tx, ec, entity)
		if err != nil {
			return err
		}
		edit = e
		if ec.Autoaccept {
			if _, err := catalog.AcceptEditgroup(tx, er.registry, ec.EditgroupID); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		writeError(w, txErr)
		return
	}
	writeJSON(w, http.StatusCreated, edit)
}

// Update handles PUT /v0/editgroup/{editgroup_id}/{kind}/{ident}.
func (er *EntityRouter) Update(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	kind := vars["kind"]
	crud, err := er.crud(kind)
	if err != nil {
		writeError(w, err)
		return
	}
	ident, err := parseFatCatId(vars["ident"])
	if err != nil {
		writeError(w, err)
		return
	}
	ec, err := er.editContext(r, vars)
	if err != nil {
		writeError(w, err)
		return
	}
	entity := newEntity(kind)
	if err := decodeJSONBody(r, entity); err != nil {
		writeError(w, err)
		return
	}
	edit, err := crud.Update(er.srv.DB, ec, ident, entity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, edit)
}

// Delete handles DELETE /v0/editgroup/{editgroup_id}/{kind}/{ident}.
func (er *EntityRouter) Delete(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	crud, err := er.crud(vars["kind"])
	if err != nil {
		writeError(w, err)
		return
	}
	ident, err := parseFatCatId(vars["ident"])
	if err != nil {
		writeError(w, err)
		return
	}
	ec, err := er.editContext(r, vars)
	if err != nil {
		writeError(w, err)
		return
	}
	edit, err := crud.Delete(er.srv.DB, ec, ident)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, edit)
}

// Redirect handles POST /v0/editgroup/{editgroup_id}/{kind}/{ident}/redirect/{target}.
func (er *EntityRouter) Redirect(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	crud, err := er.crud(vars["kind"])
	if err != nil {
		writeError(w, err)
		return
	}
	ident, err := parseFatCatId(vars["ident"])
	if err != nil {
		writeError(w, err)
		return
	}
	target, err := parseFatCatId(vars["target"])
	if err != nil {
		writeError(w, err)
		return
	}
	ec, err := er.editContext(r, vars)
	if err != nil {
		writeError(w, err)
		return
	}
	edit, err := crud.Redirect(er.srv.DB, ec, ident, target)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, edit)
}

// CreateBatch handles POST /v0/editgroup/{editgroup_id}/{kind}/batch,
// staging a JSON array of entities in one transaction (spec.md §4.4).
func (er *EntityRouter) CreateBatch(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	kind := vars["kind"]
	if _, err := er.crud(kind); err != nil {
		writeError(w, err)
		return
	}
	ec, err := er.editContext(r, vars)
	if err != nil {
		writeError(w, err)
		return
	}

	var raw []json.RawMessage
	if err := decodeJSONBody(r, &raw); err != nil {
		writeError(w, err)
		return
	}
	entities := make([]interface{}, len(raw))
	for i, msg := range raw {
		e := newEntity(kind)
		if e == nil {
			writeError(w, catalog.NewError(catalog.OtherBadRequest, "unknown entity kind: %s", kind))
			return
		}
		if err := json.Unmarshal(msg, e); err != nil {
			writeError(w, catalog.NewError(catalog.OtherBadRequest, "invalid entity at index %d: %v", i, err))
			return
		}
		entities[i] = e
	}

	edits, err := catalog.CreateBatch(er.srv.DB, er.registry, kind, ec, entities)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, edits)
}

// editContext resolves the edit context for a mutation route: the
// editgroup id comes from the path, the editor id from the "editor_id"
// query parameter (no credential check is made), and autoaccept from the
// "autoaccept" query flag.
func (er *EntityRouter) editContext(r *http.Request, vars map[string]string) (*catalog.EditContext, error) {
	egIDRaw := vars["editgroup_id"]
	var egID *fcid.FatCatId
	if egIDRaw != "" {
		id, err := parseFatCatId(egIDRaw)
		if err != nil {
			return nil, err
		}
		egID = &id
	}
	editorRaw := r.URL.Query().Get("editor_id")
	if editorRaw == "" {
		return nil, catalog.NewError(catalog.OtherBadRequest, "editor_id query parameter is required")
	}
	editorID, err := parseFatCatId(editorRaw)
	if err != nil {
		return nil, err
	}
	autoaccept := r.URL.Query().Get("autoaccept") == "true"
	return catalog.MakeEditContext(er.srv.DB, editorID, egID, autoaccept, nil)
}

func parseLimit(r *http.Request, def int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	n := 0
	for _, c := range raw {
		if c < '0' || c > '9' {
			return def
		}
		n = n*10 + int(c-'0')
	}
	if n <= 0 {
		return def
	}
	return n
}
