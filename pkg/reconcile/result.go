package reconcile

import (
	"fmt"
	"math"
	"time"

	"github.com/kodepos-id/kodepos/pkg/dataset"
	"github.com/kodepos-id/kodepos/pkg/provenance"
	"github.com/kodepos-id/kodepos/pkg/registry"
)

// Result represents the outcome of a reconciliation.
type Result struct {
	// Records holds one record per registry unit in ascending code order
	Records []dataset.Record

	// Stats counts records by status and source
	Stats Stats

	// Metadata about the run
	Metadata Metadata

	// Provenance holds every offer per village; nil unless tracking was enabled
	Provenance provenance.Map
}

// Metadata describes a reconciliation run.
type Metadata struct {
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Chain     []string
	BuildYear int
}

// Stats summarizes a reconciliation.
type Stats struct {
	Total    int                    `yaml:"total" json:"total"`
	ByStatus map[dataset.Status]int `yaml:"by_status" json:"by_status"`
	BySource map[string]int         `yaml:"by_source" json:"by_source"`
	// Conflicts counts lower layers that offered a different postal code
	// than the winning layer.
	Conflicts int `yaml:"conflicts" json:"conflicts"`
	// Orphans counts source codes absent from the registry, per source.
	Orphans map[string]int `yaml:"orphans" json:"orphans"`
}

func newStats(chain []Layer) Stats {
	s := Stats{
		ByStatus: make(map[dataset.Status]int, 3),
		BySource: make(map[string]int, len(chain)+1),
		Orphans:  make(map[string]int, len(chain)),
	}
	for _, st := range dataset.Statuses() {
		s.ByStatus[st] = 0
	}
	return s
}

func (s *Stats) add(rec dataset.Record) {
	s.Total++
	s.ByStatus[rec.Status]++
	s.BySource[rec.Source]++
}

// Assigned returns the number of records carrying a postal code.
func (s Stats) Assigned() int {
	return s.Total - s.ByStatus[dataset.StatusUnassigned]
}

// CoveragePercent returns the share of assigned records, rounded to two
// decimals. An empty result has 0 coverage.
func (s Stats) CoveragePercent() float64 {
	if s.Total == 0 {
		return 0
	}
	return math.Round(float64(s.Assigned())*10000/float64(s.Total)) / 100
}

// Enriched joins each record with its registry ancestors. Units missing
// from reg get empty ancestor fields.
func (r *Result) Enriched(reg *registry.Registry) []dataset.EnrichedRecord {
	out := make([]dataset.EnrichedRecord, len(r.Records))
	for i, rec := range r.Records {
		e := dataset.EnrichedRecord{Record: rec}
		if u, ok := reg.Get(rec.VillageCode); ok {
			e.DistrictCode = u.DistrictCode
			e.DistrictName = u.DistrictName
			e.RegencyCode = u.RegencyCode
			e.RegencyName = u.RegencyName
			e.ProvinceCode = u.ProvinceCode
			e.ProvinceName = u.ProvinceName
		}
		out[i] = e
	}
	return out
}

// Summary returns a human-readable summary of the result.
func (r *Result) Summary() string {
	s := r.Stats
	return fmt.Sprintf("Reconciled %d villages: %d OFFICIAL, %d AUGMENTED, %d UNASSIGNED (%.2f%% assigned, %d conflicts)",
		s.Total,
		s.ByStatus[dataset.StatusOfficial],
		s.ByStatus[dataset.StatusAugmented],
		s.ByStatus[dataset.StatusUnassigned],
		s.CoveragePercent(),
		s.Conflicts,
	)
}
