package filter_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodepos-id/kodepos/internal/server/filter"
	"github.com/kodepos-id/kodepos/pkg/dataset"
	"github.com/kodepos-id/kodepos/pkg/errors"
)

func entries() []dataset.EnrichedRecord {
	rec := func(code, name, typ, source string, status dataset.Status) dataset.EnrichedRecord {
		return dataset.EnrichedRecord{Record: dataset.Record{
			VillageCode: code, VillageName: name, VillageType: typ, Source: source, Status: status,
		}}
	}
	return []dataset.EnrichedRecord{
		rec("1101012001", "Lam Ara", "village", "POSINDONESIA_LOOKUP", dataset.StatusAugmented),
		rec("3204012001", "Cikalong", "village", "OPENDATA_JABAR", dataset.StatusOfficial),
		rec("3204012003", "Cibodas", "village", "NONE", dataset.StatusUnassigned),
		rec("3273011001", "Sukaraja", "urban_village", "POSINDONESIA_LOOKUP", dataset.StatusAugmented),
	}
}

func codes(p filter.Page) []string {
	out := []string{}
	for _, v := range p.Villages {
		out = append(out, v.VillageCode)
	}
	return out
}

func TestParseVillageFilter(t *testing.T) {
	r := httptest.NewRequest("GET", "/villages?status=official&region=32.04&name_contains=%20Ci&limit=5&offset=2", nil)
	f, err := filter.ParseVillageFilter(r)
	require.NoError(t, err)
	assert.Equal(t, dataset.StatusOfficial, f.Status)
	assert.Equal(t, "3204", f.Region)
	assert.Equal(t, "ci", f.NameContains)
	assert.Equal(t, 5, f.Limit)
	assert.Equal(t, 2, f.Offset)
}

func TestParseVillageFilterDefaults(t *testing.T) {
	f, err := filter.ParseVillageFilter(httptest.NewRequest("GET", "/villages?limit=5000", nil))
	require.NoError(t, err)
	assert.Equal(t, filter.DefaultLimit, f.Limit)
	assert.Zero(t, f.Offset)
}

func TestParseVillageFilterErrors(t *testing.T) {
	for _, query := range []string{"status=PENDING", "limit=abc", "offset=-1"} {
		t.Run(query, func(t *testing.T) {
			_, err := filter.ParseVillageFilter(httptest.NewRequest("GET", "/villages?"+query, nil))
			assert.True(t, errors.IsValidationError(err))
		})
	}
}

func TestApply(t *testing.T) {
	tests := []struct {
		name string
		f    filter.VillageFilter
		want []string
	}{
		{"all", filter.VillageFilter{Limit: 10}, []string{"1101012001", "3204012001", "3204012003", "3273011001"}},
		{"status", filter.VillageFilter{Status: dataset.StatusAugmented, Limit: 10}, []string{"1101012001", "3273011001"}},
		{"region", filter.VillageFilter{Region: "3204", Limit: 10}, []string{"3204012001", "3204012003"}},
		{"type", filter.VillageFilter{Type: "urban_village", Limit: 10}, []string{"3273011001"}},
		{"source", filter.VillageFilter{Source: "NONE", Limit: 10}, []string{"3204012003"}},
		{"name", filter.VillageFilter{NameContains: "ci", Limit: 10}, []string{"3204012001", "3204012003"}},
		{"page", filter.VillageFilter{Limit: 2, Offset: 1}, []string{"3204012001", "3204012003"}},
		{"offset past end", filter.VillageFilter{Limit: 2, Offset: 9}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, codes(tt.f.Apply(entries())))
		})
	}
}

func TestApplyPagination(t *testing.T) {
	p := filter.VillageFilter{Limit: 3, Offset: 2}.Apply(entries())
	assert.Equal(t, filter.Pagination{Total: 4, Limit: 3, Offset: 2, Count: 2}, p.Pagination)
}

func TestKeyDistinguishesFilters(t *testing.T) {
	a := filter.VillageFilter{Region: "32", Limit: 10}
	b := filter.VillageFilter{Region: "32", Limit: 10, Offset: 10}
	assert.NotEqual(t, a.Key(), b.Key())
	assert.Equal(t, a.Key(), filter.VillageFilter{Region: "32", Limit: 10}.Key())
}
