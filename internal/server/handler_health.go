package server

import (
	"net/http"
	"runtime"
	"time"
)

// Version is the server version reported by the health endpoint.
const Version = "0.1.0"

type healthResponse struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	GoVersion  string `json:"go_version"`
	Uptime     string `json:"uptime"`
	Store      string `json:"store"`
	PricingAPI string `json:"pricing_api"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	status, storeStatus := "healthy", "ok"
	if _, err := s.store.ListActivity(r.Context(), 1); err != nil {
		s.logger.Warn("health check: store unavailable", "error", err)
		status, storeStatus = "degraded", "unavailable"
	}

	respondOK(w, reqID, healthResponse{
		Status:     status,
		Version:    Version,
		GoVersion:  runtime.Version(),
		Uptime:     time.Since(s.startTime).Round(time.Second).String(),
		Store:      storeStatus,
		PricingAPI: s.config.APIBaseURL,
	})
}
