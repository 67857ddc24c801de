// Package index holds a published dataset in memory for lookups by village
// code, postal code and region prefix.
package index

import (
	"slices"
	"strings"

	"github.com/kodepos-id/kodepos/pkg/coverage"
	"github.com/kodepos-id/kodepos/pkg/dataset"
	"github.com/kodepos-id/kodepos/pkg/errors"
	"github.com/kodepos-id/kodepos/pkg/reconcile"
	"github.com/kodepos-id/kodepos/pkg/registry"
	"github.com/kodepos-id/kodepos/pkg/villagecode"
)

// Index is a read-only view of a dataset. Entries are kept in ascending
// village code order.
type Index struct {
	entries  []dataset.EnrichedRecord
	byCode   map[string]int
	byPostal map[string][]int
	stats    reconcile.Stats
	coverage coverage.Report
}

// New indexes records. When reg is non-nil every entry carries its
// registry ancestors and coverage is measured against the registry;
// otherwise coverage is measured against the records themselves.
func New(records []dataset.Record, reg *registry.Registry, source string) (*Index, error) {
	idx := &Index{
		entries:  make([]dataset.EnrichedRecord, 0, len(records)),
		byCode:   make(map[string]int, len(records)),
		byPostal: make(map[string][]int),
		stats: reconcile.Stats{
			ByStatus: make(map[dataset.Status]int, 3),
			BySource: make(map[string]int),
		},
	}

	sorted := slices.Clone(records)
	slices.SortFunc(sorted, func(a, b dataset.Record) int {
		return strings.Compare(a.VillageCode, b.VillageCode)
	})
	for _, rec := range sorted {
		if _, ok := idx.byCode[rec.VillageCode]; ok {
			return nil, &errors.DuplicateError{Artifact: "dataset", ID: rec.VillageCode}
		}
		e := dataset.EnrichedRecord{Record: rec}
		if u, ok := reg.Get(rec.VillageCode); ok {
			e.DistrictCode, e.DistrictName = u.DistrictCode, u.DistrictName
			e.RegencyCode, e.RegencyName = u.RegencyCode, u.RegencyName
			e.ProvinceCode, e.ProvinceName = u.ProvinceCode, u.ProvinceName
		}
		i := len(idx.entries)
		idx.entries = append(idx.entries, e)
		idx.byCode[rec.VillageCode] = i
		if rec.Assigned() {
			idx.byPostal[rec.Postal()] = append(idx.byPostal[rec.Postal()], i)
		}
		idx.stats.Total++
		idx.stats.ByStatus[rec.Status]++
		idx.stats.BySource[rec.Source]++
	}

	seen := coverage.SeenFromRecords(records)
	if reg == nil {
		units := make([]registry.Unit, len(sorted))
		for i, rec := range sorted {
			units[i] = registry.Unit{Code: rec.VillageCode, Name: rec.VillageName, Type: rec.VillageType}
		}
		var err error
		if reg, err = registry.New(units); err != nil {
			return nil, err
		}
	}
	idx.coverage = coverage.Audit(reg, seen, coverage.Options{Source: source}).Report
	return idx, nil
}

// Len returns the number of entries.
func (i *Index) Len() int {
	return len(i.entries)
}

// Village returns the entry for a village code. The code is normalized
// first, so dotted codes are accepted.
func (i *Index) Village(code string) (dataset.EnrichedRecord, error) {
	n, ok := i.byCode[villagecode.Normalize(code)]
	if !ok {
		return dataset.EnrichedRecord{}, errors.NewNotFoundError("village", code)
	}
	return i.entries[n], nil
}

// ByPostal returns the villages assigned a postal code, in code order.
func (i *Index) ByPostal(postal string) []dataset.EnrichedRecord {
	ns := i.byPostal[strings.TrimSpace(postal)]
	out := make([]dataset.EnrichedRecord, len(ns))
	for j, n := range ns {
		out[j] = i.entries[n]
	}
	return out
}

// Entries returns all entries in code order. The slice must not be modified.
func (i *Index) Entries() []dataset.EnrichedRecord {
	return i.entries
}

// Stats returns record counts by status and source.
func (i *Index) Stats() reconcile.Stats {
	return i.stats
}

// Coverage returns the coverage report of the indexed dataset.
func (i *Index) Coverage() coverage.Report {
	return i.coverage
}
