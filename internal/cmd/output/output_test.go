package output_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodepos-id/kodepos/internal/cmd/output"
	"github.com/kodepos-id/kodepos/pkg/codec"
	"github.com/kodepos-id/kodepos/pkg/coverage"
	"github.com/kodepos-id/kodepos/pkg/dataset"
	"github.com/kodepos-id/kodepos/pkg/profiles"
	"github.com/kodepos-id/kodepos/pkg/reconcile"
)

func sampleReport() coverage.Report {
	return coverage.Report{
		Source:          "pos_indonesia",
		Baseline:        "regions_id.csv",
		TotalVillages:   3,
		Matched:         2,
		Missing:         1,
		CoveragePercent: 66.67,
		GeneratedAt:     "2025-01-02T03:04:05Z",
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    output.Format
		wantErr bool
	}{
		{"table", output.FormatTable, false},
		{"JSON", output.FormatJSON, false},
		{"yaml", output.FormatYAML, false},
		{"", "", false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := output.ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectFormatExplicit(t *testing.T) {
	assert.Equal(t, output.FormatYAML, output.DetectFormat("YAML"))
}

func TestCoverageTable(t *testing.T) {
	var buf bytes.Buffer
	err := output.NewFormatter(output.FormatTable).Format(&buf, output.Coverage{Report: sampleReport()})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, strings.ToUpper(out), "FIELD")
	assert.Contains(t, out, "total_villages")
	assert.Contains(t, out, "66.67")
	assert.Contains(t, out, "regions_id.csv")
}

func TestCoverageJSONUsesReport(t *testing.T) {
	var buf bytes.Buffer
	err := output.NewFormatter(output.FormatJSON).Format(&buf, output.Coverage{Report: sampleReport()})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "pos_indonesia", got["source"])
	assert.InDelta(t, 66.67, got["coverage_percent"], 0.001)
}

func TestStatsYAML(t *testing.T) {
	stats := reconcile.Stats{
		Total:    3,
		ByStatus: map[dataset.Status]int{dataset.StatusAugmented: 2, dataset.StatusUnassigned: 1},
		BySource: map[string]int{"pos_indonesia": 2},
		Orphans:  map[string]int{"pos_indonesia": 1},
	}
	var buf bytes.Buffer
	require.NoError(t, output.NewFormatter(output.FormatYAML).Format(&buf, output.Stats{Stats: stats}))
	assert.Contains(t, buf.String(), "total: 3")
	assert.Contains(t, buf.String(), "AUGMENTED: 2")
}

func TestStatsTableRows(t *testing.T) {
	stats := reconcile.Stats{
		Total:    2,
		ByStatus: map[dataset.Status]int{dataset.StatusOfficial: 1, dataset.StatusUnassigned: 1},
		BySource: map[string]int{"opendata_jabar": 1},
	}
	data := output.Stats{Stats: stats}.Table()
	require.NotEmpty(t, data.Rows)
	assert.Equal(t, []string{"total", "", "2"}, data.Rows[0])
	assert.Contains(t, data.Rows, []string{"status", "OFFICIAL", "1"})
	assert.Contains(t, data.Rows, []string{"source", "opendata_jabar", "1"})
	assert.Contains(t, data.Rows, []string{"coverage_percent", "", "50.00"})
}

func TestArtifactsTable(t *testing.T) {
	arts := output.Artifacts{{Path: "dist/postal_codes.csv", SHA256: "abc", Bytes: 42}}
	var buf bytes.Buffer
	require.NoError(t, output.NewFormatter(output.FormatTable).Format(&buf, arts))
	assert.Contains(t, buf.String(), "dist/postal_codes.csv")
	assert.Contains(t, buf.String(), "42")

	buf.Reset()
	require.NoError(t, output.NewFormatter(output.FormatJSON).Format(&buf, arts))
	var got []codec.Artifact
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, []codec.Artifact(arts), got)
}

func TestProfilesTable(t *testing.T) {
	data := output.Profiles{Set: profiles.Builtin()}.Table()
	require.Len(t, data.Rows, 3)

	byName := map[string][]string{}
	for _, row := range data.Rows {
		byName[row[0]] = row
	}
	assert.Equal(t, "OPENDATA_JABAR > POSINDONESIA_LOOKUP", byName[profiles.Combined][1])
}

func TestTableFormatterFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, output.NewFormatter(output.FormatTable).Format(&buf, map[string]int{"a": 1}))
	assert.JSONEq(t, `{"a":1}`, buf.String())
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Village Code", output.Title("village_code"))
}
