// Package filter parses list query parameters and applies them to indexed
// records.
package filter

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/kodepos-id/kodepos/pkg/dataset"
	"github.com/kodepos-id/kodepos/pkg/errors"
	"github.com/kodepos-id/kodepos/pkg/villagecode"
)

// Pagination bounds.
const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// VillageFilter holds the criteria of a village listing.
type VillageFilter struct {
	Status       dataset.Status
	Source       string
	Type         string
	Region       string // code prefix: province, regency or district
	NameContains string

	Limit  int
	Offset int
}

// ParseVillageFilter extracts filter parameters from a request.
func ParseVillageFilter(r *http.Request) (VillageFilter, error) {
	q := r.URL.Query()

	f := VillageFilter{
		Status:       dataset.Status(strings.ToUpper(q.Get("status"))),
		Source:       strings.ToUpper(q.Get("source")),
		Type:         q.Get("type"),
		Region:       villagecode.Normalize(q.Get("region")),
		NameContains: strings.ToLower(strings.TrimSpace(q.Get("name_contains"))),
	}
	if f.Status != "" && !f.Status.IsValid() {
		return f, errors.NewValidationError("status", q.Get("status"), "unknown status")
	}

	var err error
	if f.Limit, err = intParam(q, "limit", DefaultLimit); err != nil {
		return f, err
	}
	if f.Offset, err = intParam(q, "offset", 0); err != nil {
		return f, err
	}
	if f.Limit <= 0 || f.Limit > MaxLimit {
		f.Limit = DefaultLimit
	}
	return f, nil
}

func intParam(q url.Values, name string, def int) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.NewValidationError(name, raw, "must be a non-negative integer")
	}
	return n, nil
}

// Key returns a canonical cache key for the filter.
func (f VillageFilter) Key() string {
	return strings.Join([]string{
		string(f.Status), f.Source, f.Type, f.Region, f.NameContains,
		strconv.Itoa(f.Limit), strconv.Itoa(f.Offset),
	}, "|")
}

// Page is one page of a filtered listing.
type Page struct {
	Villages   []dataset.EnrichedRecord `json:"villages"`
	Pagination Pagination               `json:"pagination"`
}

// Pagination describes where a page sits in the full result.
type Pagination struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Count  int `json:"count"`
}

// Apply filters entries, which keep their order, and returns the requested
// page.
func (f VillageFilter) Apply(entries []dataset.EnrichedRecord) Page {
	matched := []dataset.EnrichedRecord{}
	for _, e := range entries {
		if f.matches(e) {
			matched = append(matched, e)
		}
	}

	total := len(matched)
	start := min(f.Offset, total)
	end := min(start+f.Limit, total)
	page := matched[start:end]
	return Page{
		Villages: page,
		Pagination: Pagination{
			Total:  total,
			Limit:  f.Limit,
			Offset: f.Offset,
			Count:  len(page),
		},
	}
}

func (f VillageFilter) matches(e dataset.EnrichedRecord) bool {
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	if f.Source != "" && e.Source != f.Source {
		return false
	}
	if f.Type != "" && e.VillageType != f.Type {
		return false
	}
	if f.Region != "" && !strings.HasPrefix(e.VillageCode, f.Region) {
		return false
	}
	if f.NameContains != "" && !strings.Contains(strings.ToLower(e.VillageName), f.NameContains) {
		return false
	}
	return true
}
