// Package api implements the fatcat HTTP/JSON surface (spec.md §4/§7)
// over internal/catalog, in the dispatch-table-handler style jrepp-hermes
// uses for its own document/review HTTP handlers.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/mm--/fatcat/internal/catalog"
	"github.com/mm--/fatcat/pkg/fcid"
)

// writeJSON encodes v as the JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorBody is the response shape for every non-2xx response (spec.md
// §7's error envelope).
type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeError maps err to an HTTP status via its catalog.Kind, falling
// back to 500 for anything that isn't a *catalog.Error.
func writeError(w http.ResponseWriter, err error) {
	var ce *catalog.Error
	status := http.StatusInternalServerError
	kind := "Internal"
	if ok := errorsAsCatalog(err, &ce); ok {
		status = ce.Kind.HTTPStatus()
		kind = ce.Kind.String()
	}
	writeJSON(w, status, errorBody{Success: false, Error: kind, Message: err.Error()})
}

func errorsAsCatalog(err error, target **catalog.Error) bool {
	for err != nil {
		if ce, ok := err.(*catalog.Error); ok {
			*target = ce
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// parseFatCatId parses a path parameter into a fcid.FatCatId, reporting
// an InvalidFatcatId catalog error on failure.
func parseFatCatId(raw string) (fcid.FatCatId, error) {
	id, err := fcid.Parse(raw)
	if err != nil {
		return fcid.FatCatId{}, catalog.WrapError(catalog.InvalidFatcatId, err, "parsing identifier %q", raw)
	}
	return id, nil
}

func decodeJSONBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return catalog.WrapError(catalog.OtherBadRequest, err, "decoding request body")
	}
	return nil
}
