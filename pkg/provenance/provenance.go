// Package provenance records which sources offered a postal code for each
// village during reconciliation, and which offer was selected.
package provenance

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/kodepos-id/kodepos/pkg/constants"
	"github.com/kodepos-id/kodepos/pkg/errors"
)

// Provenance is one source's offer for a village. Rank is the source's
// position in the precedence chain, 0 being the highest.
type Provenance struct {
	Source   string `yaml:"source" json:"source"`
	Postal   string `yaml:"postal_code" json:"postal_code"`
	Rank     int    `yaml:"rank" json:"rank"`
	Selected bool   `yaml:"selected" json:"selected"`
	Reason   string `yaml:"reason,omitempty" json:"reason,omitempty"`
}

// Map holds offers per village code, in chain order.
type Map map[string][]Provenance

// Tracker manages provenance tracking during reconciliation.
type Tracker interface {
	// Track records an offer for a village
	Track(villageCode string, p Provenance)

	// Find retrieves the offers recorded for a village
	Find(villageCode string) []Provenance

	// Map returns a copy of the complete provenance map
	Map() Map

	// Clear removes all provenance data
	Clear()
}

type tracker struct {
	provenance Map
	enabled    bool
}

// NewTracker creates a new provenance tracker. A disabled tracker records
// nothing and returns nil from every query.
func NewTracker(enabled bool) Tracker {
	return &tracker{
		provenance: make(Map),
		enabled:    enabled,
	}
}

// Track records an offer for a village.
func (p *tracker) Track(villageCode string, history Provenance) {
	if !p.enabled {
		return
	}
	p.provenance[villageCode] = append(p.provenance[villageCode], history)
}

// Find retrieves the offers recorded for a village.
func (p *tracker) Find(villageCode string) []Provenance {
	if !p.enabled {
		return nil
	}
	return p.provenance[villageCode]
}

// Map returns the complete provenance map.
func (p *tracker) Map() Map {
	if !p.enabled {
		return nil
	}

	result := make(Map, len(p.provenance))
	for k, v := range p.provenance {
		result[k] = slices.Clone(v)
	}
	return result
}

// Clear removes all provenance data.
func (p *tracker) Clear() {
	p.provenance = make(Map)
}

// Conflict describes a village for which sources disagreed.
type Conflict struct {
	VillageCode    string   `yaml:"village_code" json:"village_code"`
	Sources        []string `yaml:"sources" json:"sources"`
	Values         []string `yaml:"values" json:"values"`
	SelectedSource string   `yaml:"selected_source" json:"selected_source"`
}

// Conflicts returns the villages where at least two sources offered
// different postal codes, in ascending code order.
func (m Map) Conflicts() []Conflict {
	var conflicts []Conflict
	for _, code := range slices.Sorted(maps.Keys(m)) {
		if c, ok := detectConflict(code, m[code]); ok {
			conflicts = append(conflicts, c)
		}
	}
	return conflicts
}

func detectConflict(code string, offers []Provenance) (Conflict, bool) {
	if len(offers) < 2 {
		return Conflict{}, false
	}
	c := Conflict{VillageCode: code}
	distinct := make(map[string]struct{}, len(offers))
	for _, p := range offers {
		c.Sources = append(c.Sources, p.Source)
		c.Values = append(c.Values, p.Postal)
		distinct[p.Postal] = struct{}{}
		if p.Selected {
			c.SelectedSource = p.Source
		}
	}
	return c, len(distinct) > 1
}

// Report summarizes a provenance map.
type Report struct {
	Villages  int        `yaml:"villages" json:"villages"`
	Offers    int        `yaml:"offers" json:"offers"`
	BySource  Counts     `yaml:"selected_by_source" json:"selected_by_source"`
	Conflicts []Conflict `yaml:"conflicts" json:"conflicts"`
}

// Counts maps a source label to a count.
type Counts map[string]int

// GenerateReport creates a provenance report from a Map.
func GenerateReport(provenance Map) *Report {
	report := &Report{
		Villages:  len(provenance),
		BySource:  make(Counts),
		Conflicts: provenance.Conflicts(),
	}
	for _, offers := range provenance {
		report.Offers += len(offers)
		for _, p := range offers {
			if p.Selected {
				report.BySource[p.Source]++
			}
		}
	}
	return report
}

// String generates a string representation of the provenance report.
func (r *Report) String() string {
	var sb strings.Builder

	sb.WriteString("Provenance Report\n")
	sb.WriteString("=================\n\n")
	sb.WriteString(fmt.Sprintf("Villages with offers: %d\n", r.Villages))
	sb.WriteString(fmt.Sprintf("Total offers: %d\n", r.Offers))

	for _, src := range slices.Sorted(maps.Keys(r.BySource)) {
		sb.WriteString(fmt.Sprintf("  %s: %d selected\n", src, r.BySource[src]))
	}

	if len(r.Conflicts) > 0 {
		sb.WriteString(fmt.Sprintf("\nConflicts: %d\n", len(r.Conflicts)))
		for i, c := range r.Conflicts {
			if i >= 20 {
				sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(r.Conflicts)-i))
				break
			}
			sb.WriteString(fmt.Sprintf("  - %s: %s (selected %s)\n",
				c.VillageCode, pairs(c.Sources, c.Values), c.SelectedSource))
		}
	}

	return sb.String()
}

func pairs(sources, values []string) string {
	parts := make([]string, len(sources))
	for i := range sources {
		parts[i] = sources[i] + "=" + values[i]
	}
	return strings.Join(parts, ", ")
}

// File represents a provenance file stored on disk.
type File struct {
	Provenance Map `yaml:"provenance"`
}

// Save writes m to path as YAML.
func Save(path string, m Map) error {
	data, err := yaml.Marshal(File{Provenance: m})
	if err != nil {
		return fmt.Errorf("marshaling provenance: %w", err)
	}
	if err := os.WriteFile(path, data, constants.FilePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// Load reads provenance data from a YAML file.
// Returns nil, nil if the file doesn't exist (not an error).
func Load(path string) (*File, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("failed to read provenance file: %w", err)
	}

	var pf File
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse provenance file: %w", err)
	}

	return &pf, nil
}
