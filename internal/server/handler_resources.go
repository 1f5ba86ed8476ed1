package server

import (
	"net/http"
	"strconv"

	"github.com/me/pricedesk/pkg/model"
)

type fieldInfo struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Kind     string   `json:"kind"`
	Required bool     `json:"required"`
	Options  []string `json:"options,omitempty"`
}

type resourceInfo struct {
	Name        string       `json:"name"`
	Title       string       `json:"title"`
	Path        string       `json:"path"`
	FilterField string       `json:"filter_field,omitempty"`
	Paging      model.Paging `json:"paging"`
	PageSize    int          `json:"page_size"`
	Fields      []fieldInfo  `json:"fields"`
}

func (s *Server) handleListResources(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	var out []resourceInfo
	for _, name := range s.registry.Names() {
		schema, _ := s.registry.Lookup(name)
		info := resourceInfo{
			Name:        schema.Name,
			Title:       schema.Title,
			Path:        schema.Path,
			FilterField: schema.FilterField,
			Paging:      schema.Paging,
			PageSize:    schema.PageSize,
		}
		for _, f := range schema.Fields {
			info.Fields = append(info.Fields, fieldInfo{
				Name:     f.Name,
				Label:    f.Label,
				Kind:     string(f.Kind),
				Required: f.Required,
				Options:  f.Options,
			})
		}
		out = append(out, info)
	}
	respondOK(w, reqID, out)
}

// handleListActivity serves the audit trail; mine=true keeps only the
// caller's own entries.
func (s *Server) handleListActivity(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			respondError(w, reqID, http.StatusBadRequest, &model.APIError{
				Code:    model.ErrValidation,
				Message: "limit must be an integer between 1 and 100",
				Details: []model.FieldError{{Field: "limit", Message: "out of range"}},
			})
			return
		}
		limit = n
	}

	var activity []*model.Activity
	var err error
	if mine, _ := strconv.ParseBool(r.URL.Query().Get("mine")); mine {
		activity, err = s.store.ListUserActivity(r.Context(), SessionFromContext(r.Context()).Username, limit)
	} else {
		activity, err = s.store.ListActivity(r.Context(), limit)
	}
	if err != nil {
		s.logger.Error("list activity failed", "error", err)
		respondError(w, reqID, http.StatusInternalServerError, &model.APIError{
			Code:    model.ErrInternal,
			Message: "could not load activity",
		})
		return
	}
	if activity == nil {
		activity = []*model.Activity{}
	}
	respondOK(w, reqID, activity)
}
