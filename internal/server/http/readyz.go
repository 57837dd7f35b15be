package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aussiebroadwan/stackplate/pkg/authsdk"
	"github.com/aussiebroadwan/stackplate/pkg/httpx"
	"github.com/aussiebroadwan/stackplate/pkg/slogx"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe endpoint returning service health status and checks for critical dependencies
//	@Description	Includes uptime, version, and status of the user database and the reset key store
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	authsdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get]
func ReadyzHandler(startTime time.Time, version string, db, resetKeys pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := slogx.FromContext(r.Context())
		checks := &authsdk.HealthChecks{
			Database:   "ok",
			ResetStore: "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		// Probe errors are logged, not returned, they may carry DSNs or addresses
		if err := db.Ping(ctx); err != nil {
			log.Warn("readiness: database ping failed", "err", err)
			checks.Database = "error"
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if err := resetKeys.Ping(ctx); err != nil {
			log.Warn("readiness: reset store ping failed", "err", err)
			checks.ResetStore = "error"
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		response := authsdk.HealthResponse{
			Status:  overallStatus,
			Service: ServiceName,
			Uptime:  uptime(startTime),
			Version: version,
			Checks:  checks,
		}
		httpx.WriteJSON(w, statusCode, response)
	}
}
