package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kodepos-id/kodepos/internal/server/filter"
	"github.com/kodepos-id/kodepos/internal/server/response"
	"github.com/kodepos-id/kodepos/pkg/dataset"
	"github.com/kodepos-id/kodepos/pkg/errors"
	"github.com/kodepos-id/kodepos/pkg/villagecode"
)

// HandleListVillages handles GET /api/v1/villages.
// Query: status, source, type, region, name_contains, limit, offset.
func (h *Handlers) HandleListVillages(w http.ResponseWriter, r *http.Request) {
	f, err := filter.ParseVillageFilter(r)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	page, err := h.cache.Remember("villages:"+f.Key(), func() (any, error) {
		return f.Apply(h.index.Entries()), nil
	})
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, page)
}

// HandleGetVillage handles GET /api/v1/villages/{code}. Dotted codes are
// accepted.
func (h *Handlers) HandleGetVillage(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if villagecode.Normalize(code) == "" {
		response.ErrorFromType(w, errors.NewValidationError("code", code, "must contain digits"))
		return
	}
	v, err := h.index.Village(code)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, v)
}

// PostalResult lists the villages sharing a postal code.
type PostalResult struct {
	PostalCode string                   `json:"postal_code"`
	Count      int                      `json:"count"`
	Villages   []dataset.EnrichedRecord `json:"villages"`
}

// HandleGetPostalCode handles GET /api/v1/postal-codes/{postal}.
func (h *Handlers) HandleGetPostalCode(w http.ResponseWriter, r *http.Request) {
	postal := chi.URLParam(r, "postal")
	if postal == "" || villagecode.Normalize(postal) != postal {
		response.ErrorFromType(w, errors.NewValidationError("postal_code", postal, "must be digits only"))
		return
	}
	res, err := h.cache.Remember("postal:"+postal, func() (any, error) {
		villages := h.index.ByPostal(postal)
		if len(villages) == 0 {
			return nil, errors.NewNotFoundError("postal code", postal)
		}
		return PostalResult{PostalCode: postal, Count: len(villages), Villages: villages}, nil
	})
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, res)
}
