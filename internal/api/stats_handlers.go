package api

import (
	"net/http"

	"github.com/mm--/fatcat/pkg/database"
)

// StatsHandler handles GET /v0/stats: connection-pool utilization, used
// by operators to watch for exhaustion under load.
func StatsHandler(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.GetPoolStats(env.DB)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}
