package output

import (
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/kodepos-id/kodepos"
	"github.com/kodepos-id/kodepos/pkg/codec"
	"github.com/kodepos-id/kodepos/pkg/coverage"
	"github.com/kodepos-id/kodepos/pkg/profiles"
	"github.com/kodepos-id/kodepos/pkg/reconcile"
	"github.com/kodepos-id/kodepos/pkg/schema"
)

// Coverage renders a coverage report as a field/value table.
type Coverage struct {
	Report coverage.Report
}

// Table implements Tabular.
func (c Coverage) Table() Data {
	r := c.Report
	return Data{
		Headers: []string{"field", "value"},
		Rows: [][]string{
			{"source", r.Source},
			{"baseline", r.Baseline},
			{"total_villages", strconv.Itoa(r.TotalVillages)},
			{"matched", strconv.Itoa(r.Matched)},
			{"missing", strconv.Itoa(r.Missing)},
			{"coverage_percent", fmt.Sprintf("%.2f", r.CoveragePercent)},
			{"generated_at", r.GeneratedAt},
		},
	}
}

// Value implements Tabular.
func (c Coverage) Value() any { return c.Report }

// Stats renders reconciliation statistics, one row per status, source
// and orphan count.
type Stats struct {
	Stats reconcile.Stats
}

// Table implements Tabular.
func (s Stats) Table() Data {
	st := s.Stats
	rows := [][]string{{"total", "", strconv.Itoa(st.Total)}}
	for _, status := range slices.Sorted(maps.Keys(st.ByStatus)) {
		rows = append(rows, []string{"status", status.String(), strconv.Itoa(st.ByStatus[status])})
	}
	for _, src := range slices.Sorted(maps.Keys(st.BySource)) {
		rows = append(rows, []string{"source", src, strconv.Itoa(st.BySource[src])})
	}
	for _, src := range slices.Sorted(maps.Keys(st.Orphans)) {
		rows = append(rows, []string{"orphans", src, strconv.Itoa(st.Orphans[src])})
	}
	rows = append(rows,
		[]string{"conflicts", "", strconv.Itoa(st.Conflicts)},
		[]string{"coverage_percent", "", fmt.Sprintf("%.2f", st.CoveragePercent())},
	)
	return Data{Headers: []string{"metric", "key", "count"}, Rows: rows, RightAlign: []int{2}}
}

// Value implements Tabular.
func (s Stats) Value() any { return s.Stats }

// Artifacts renders written files with their size and digest.
type Artifacts []codec.Artifact

// Table implements Tabular.
func (a Artifacts) Table() Data {
	rows := make([][]string, len(a))
	for i, art := range a {
		rows[i] = []string{art.Path, strconv.FormatInt(art.Bytes, 10), art.SHA256}
	}
	return Data{Headers: []string{"path", "bytes", "sha256"}, Rows: rows, RightAlign: []int{1}}
}

// Value implements Tabular.
func (a Artifacts) Value() any { return []codec.Artifact(a) }

// Violations renders schema violations.
type Violations struct {
	Report *schema.Report
}

// Table implements Tabular.
func (v Violations) Table() Data {
	rows := make([][]string, len(v.Report.Violations))
	for i, viol := range v.Report.Violations {
		rows[i] = []string{strconv.Itoa(viol.Index), viol.VillageCode, viol.Location, viol.Message}
	}
	return Data{Headers: []string{"index", "village_code", "location", "message"}, Rows: rows, RightAlign: []int{0}}
}

// Value implements Tabular.
func (v Violations) Value() any { return v.Report }

// Profiles renders a profile set, one row per profile.
type Profiles struct {
	Set profiles.Set
}

// Table implements Tabular.
func (p Profiles) Table() Data {
	var rows [][]string
	for _, name := range p.Set.Names() {
		prof := p.Set[name]
		chain := ""
		for i, l := range prof.Layers {
			if i > 0 {
				chain += " > "
			}
			chain += l.Source.String()
		}
		rows = append(rows, []string{name, chain, prof.Outputs.CSV, prof.Description})
	}
	return Data{Headers: []string{"name", "chain", "csv", "description"}, Rows: rows}
}

// Value implements Tabular.
func (p Profiles) Value() any { return p.Set }

// BuildSummary is the outcome of a build as commands report it.
type BuildSummary struct {
	Profile   string           `json:"profile" yaml:"profile"`
	BuildID   string           `json:"build_id,omitempty" yaml:"build_id,omitempty"`
	Records   int              `json:"records" yaml:"records"`
	Coverage  coverage.Report  `json:"coverage" yaml:"coverage"`
	Stats     reconcile.Stats  `json:"stats" yaml:"stats"`
	Artifacts []codec.Artifact `json:"artifacts" yaml:"artifacts"`
}

// NewBuildSummary summarizes res.
func NewBuildSummary(res *kodepos.BuildResult) BuildSummary {
	s := BuildSummary{
		Profile:   res.Profile.Name,
		Records:   len(res.Result.Records),
		Coverage:  res.Coverage,
		Stats:     res.Result.Stats,
		Artifacts: res.Artifacts,
	}
	if res.Manifest != nil {
		s.BuildID = res.Manifest.BuildID
	}
	return s
}

// Table implements Tabular.
func (s BuildSummary) Table() Data {
	rows := [][]string{
		{"profile", s.Profile},
		{"build_id", s.BuildID},
		{"records", strconv.Itoa(s.Records)},
		{"assigned", strconv.Itoa(s.Stats.Assigned())},
		{"conflicts", strconv.Itoa(s.Stats.Conflicts)},
		{"coverage_percent", fmt.Sprintf("%.2f", s.Coverage.CoveragePercent)},
	}
	for _, a := range s.Artifacts {
		rows = append(rows, []string{"artifact", a.Path})
	}
	return Data{Headers: []string{"field", "value"}, Rows: rows}
}

// Value implements Tabular.
func (s BuildSummary) Value() any { return s }
