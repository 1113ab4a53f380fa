package handler

import (
	"net/http"

	"github.com/compclass/platform/internal/infra"
	"github.com/jackc/pgx/v5/pgxpool"
)

// HealthHandler returns a liveness probe that also pings the database.
func HealthHandler(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := infra.HealthCheck(r.Context(), pool); err != nil {
			RespondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
