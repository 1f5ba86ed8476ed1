package server

import "net/http"

type endpointInfo struct {
	Path        string   `json:"path"`
	Methods     []string `json:"methods"`
	Description string   `json:"description"`
}

type discoveryResponse struct {
	Name        string         `json:"name"`
	Version     string         `json:"version"`
	Description string         `json:"description"`
	Endpoints   []endpointInfo `json:"endpoints"`
}

func (s *Server) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	respondOK(w, reqID, discoveryResponse{
		Name:        "pricedesk API",
		Version:     "v1",
		Description: "pricedesk admin panel: pricing resource catalogue and audit trail",
		Endpoints: []endpointInfo{
			{"/api/v1/resources", []string{"GET"}, "Pricing resources with their fields and paging mode"},
			{"/api/v1/activity", []string{"GET"}, "Recent mutations made through the panel. Accepts ?limit=1..100"},
			{"/api/v1/health", []string{"GET"}, "Server health and version"},
		},
	})
}
