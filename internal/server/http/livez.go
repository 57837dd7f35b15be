package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/stackplate/pkg/authsdk"
	"github.com/aussiebroadwan/stackplate/pkg/httpx"
)

// ServiceName is reported by both health endpoints.
const ServiceName = "stackplate"

func uptime(since time.Time) string {
	return time.Since(since).Round(time.Second).String()
}

// LivezHandler godoc
//
//	@Summary		Liveness probe
//	@Description	Answers 200 while the process is up. Dependencies are not checked, see /readyz
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, service, uptime, version"
//	@Router			/livez [get]
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, authsdk.HealthResponse{
			Status:  "ok",
			Service: ServiceName,
			Uptime:  uptime(startTime),
			Version: version,
		})
	}
}
