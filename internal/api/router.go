package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/mm--/fatcat/internal/catalog"
	"github.com/mm--/fatcat/internal/server"
)

// Env is the dependency bag every handler closes over: the database
// connection and logger out of server.Server. The entity registry is not
// part of it; NewRouter takes it as a separate argument.
type Env struct {
	DB     *gorm.DB
	Log    hclog.Logger
	Server *server.Server
}

// NewEnv builds the handler environment from a server.Server.
func NewEnv(srv *server.Server) *Env {
	return &Env{DB: srv.DB, Log: srv.Logger, Server: srv}
}

// NewRouter builds the full fatcat HTTP/JSON API (spec.md §4/§7) mounted
// under /v0, in the versioned-prefix style jrepp-hermes uses for its own
// document API.
func NewRouter(env *Env, registry *catalog.Registry) *mux.Router {
	r := mux.NewRouter()
	v0 := r.PathPrefix("/v0").Subrouter()

	// Routes match in registration order, so the two-segment entity routes
	// are limited to the entity kinds and lookup is registered before them.
	const entityKinds = "container|creator|file|fileset|webcapture|release|work"
	entities := NewEntityRouter(env, registry)
	v0.HandleFunc("/{kind}/lookup", LookupHandler(env)).Methods(http.MethodGet)
	v0.HandleFunc("/{kind:"+entityKinds+"}/{ident}", entities.Get).Methods(http.MethodGet)
	v0.HandleFunc("/{kind}/rev/{rev_id}", entities.GetRevision).Methods(http.MethodGet)
	v0.HandleFunc("/{kind}/{ident}/history", entities.GetHistory).Methods(http.MethodGet)
	v0.HandleFunc("/{kind}/{ident}/redirects", entities.GetRedirects).Methods(http.MethodGet)

	v0.HandleFunc("/editgroup/{editgroup_id}/{kind}/batch", entities.CreateBatch).Methods(http.MethodPost)
	v0.HandleFunc("/editgroup/{editgroup_id}/{kind:"+entityKinds+"}", entities.Create).Methods(http.MethodPost)
	v0.HandleFunc("/editgroup/{editgroup_id}/{kind}/{ident}", entities.Update).Methods(http.MethodPut)
	v0.HandleFunc("/editgroup/{editgroup_id}/{kind}/{ident}", entities.Delete).Methods(http.MethodDelete)
	v0.HandleFunc("/editgroup/{editgroup_id}/{kind}/{ident}/redirect/{target}", entities.Redirect).Methods(http.MethodPost)

	eg := NewEditgroupHandlers(env, registry)
	v0.HandleFunc("/editgroup", eg.Create).Methods(http.MethodPost)
	v0.HandleFunc("/editgroup/{editgroup_id}", eg.Get).Methods(http.MethodGet)
	v0.HandleFunc("/editgroup/{editgroup_id}/accept", eg.Accept).Methods(http.MethodPost)

	ed := NewEditorHandlers(env)
	v0.HandleFunc("/editor/{editor_id}", ed.Get).Methods(http.MethodGet)
	v0.HandleFunc("/editor/{editor_id}/changelog", ed.Changelog).Methods(http.MethodGet)

	cl := NewChangelogHandlers(env)
	v0.HandleFunc("/changelog", cl.List).Methods(http.MethodGet)
	v0.HandleFunc("/changelog/{changelog_id}", cl.Get).Methods(http.MethodGet)

	v0.HandleFunc("/stats", StatsHandler(env)).Methods(http.MethodGet)

	return r
}
