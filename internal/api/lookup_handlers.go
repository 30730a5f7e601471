package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mm--/fatcat/internal/catalog"
)

// LookupHandler handles GET /v0/{kind}/lookup?<identifier>=<value> (spec.md
// §4.4), dispatching to the kind-specific Lookup* function since each kind
// accepts a different set of external identifiers.
func LookupHandler(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind := mux.Vars(r)["kind"]
		q := r.URL.Query()
		l := catalog.ExternalIDLookup{
			ISSNL:       q.Get("issnl"),
			ORCID:       q.Get("orcid"),
			MD5:         q.Get("md5"),
			SHA1:        q.Get("sha1"),
			SHA256:      q.Get("sha256"),
			DOI:         q.Get("doi"),
			PMID:        q.Get("pmid"),
			PMCID:       q.Get("pmcid"),
			ISBN13:      q.Get("isbn13"),
			CoreID:      q.Get("core_id"),
			WikidataQID: q.Get("wikidata_qid"),
		}
		hide := catalog.ParseHideFlags(q.Get("hide"))

		var out interface{}
		var err error
		switch kind {
		case "container":
			out, err = catalog.LookupContainer(env.DB, l, hide)
		case "creator":
			out, err = catalog.LookupCreator(env.DB, l, hide)
		case "file":
			out, err = catalog.LookupFile(env.DB, l)
		case "release":
			out, err = catalog.LookupRelease(env.DB, l, hide)
		default:
			err = catalog.NewError(catalog.OtherBadRequest, "lookup is not supported for kind %q", kind)
		}
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}
