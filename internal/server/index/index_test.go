package index_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodepos-id/kodepos/internal/server/index"
	"github.com/kodepos-id/kodepos/pkg/dataset"
	"github.com/kodepos-id/kodepos/pkg/errors"
	"github.com/kodepos-id/kodepos/pkg/registry"
)

func records() []dataset.Record {
	return []dataset.Record{
		{PostalCode: dataset.Ptr("40161"), VillageCode: "3273011001", VillageName: "Sukaraja", VillageType: "urban_village", Source: "POSINDONESIA_LOOKUP", Confidence: 1, Year: 2025, Status: dataset.StatusAugmented},
		{PostalCode: dataset.Ptr("40556"), VillageCode: "3204012001", VillageName: "Cikalong", VillageType: "village", Source: "OPENDATA_JABAR", Confidence: 0.7, Year: 2023, Status: dataset.StatusOfficial},
		{PostalCode: dataset.Ptr("40556"), VillageCode: "3204012002", VillageName: "Mekarjaya", VillageType: "village", Source: "OPENDATA_JABAR", Confidence: 0.7, Year: 2023, Status: dataset.StatusOfficial},
		{VillageCode: "3204012003", VillageName: "Cibodas", VillageType: "village", Source: "NONE", Year: 2025, Status: dataset.StatusUnassigned},
	}
}

func TestVillage(t *testing.T) {
	idx, err := index.New(records(), nil, "combined")
	require.NoError(t, err)
	assert.Equal(t, 4, idx.Len())

	e, err := idx.Village("32.04.01.2001")
	require.NoError(t, err)
	assert.Equal(t, "Cikalong", e.VillageName)
	assert.Empty(t, e.ProvinceCode)

	_, err = idx.Village("9999999999")
	assert.True(t, errors.IsNotFound(err))
}

func TestByPostal(t *testing.T) {
	idx, err := index.New(records(), nil, "combined")
	require.NoError(t, err)

	got := idx.ByPostal(" 40556 ")
	require.Len(t, got, 2)
	assert.Equal(t, "3204012001", got[0].VillageCode)
	assert.Equal(t, "3204012002", got[1].VillageCode)
	assert.Empty(t, idx.ByPostal("00000"))
}

func TestEntriesSorted(t *testing.T) {
	idx, err := index.New(records(), nil, "combined")
	require.NoError(t, err)

	var codes []string
	for _, e := range idx.Entries() {
		codes = append(codes, e.VillageCode)
	}
	assert.Equal(t, []string{"3204012001", "3204012002", "3204012003", "3273011001"}, codes)
}

func TestStatsAndCoverage(t *testing.T) {
	idx, err := index.New(records(), nil, "combined")
	require.NoError(t, err)

	s := idx.Stats()
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.ByStatus[dataset.StatusOfficial])
	assert.Equal(t, 1, s.ByStatus[dataset.StatusUnassigned])

	c := idx.Coverage()
	assert.Equal(t, "combined", c.Source)
	assert.Equal(t, 4, c.TotalVillages)
	assert.Equal(t, 3, c.Matched)
	assert.Equal(t, 75.0, c.CoveragePercent)
}

func TestCoverageAgainstRegistry(t *testing.T) {
	reg, err := registry.New([]registry.Unit{
		{Code: "3204012001", Name: "Cikalong", Type: "village", DistrictCode: "320401", ProvinceCode: "32", ProvinceName: "Jawa Barat"},
		{Code: "3204012002", Name: "Mekarjaya", Type: "village"},
		{Code: "3204012003", Name: "Cibodas", Type: "village"},
		{Code: "3273011001", Name: "Sukaraja", Type: "urban_village"},
		{Code: "3273011002", Name: "Sukagalih", Type: "urban_village"},
	})
	require.NoError(t, err)

	idx, err := index.New(records(), reg, "combined")
	require.NoError(t, err)

	e, err := idx.Village("3204012001")
	require.NoError(t, err)
	assert.Equal(t, "320401", e.DistrictCode)
	assert.Equal(t, "Jawa Barat", e.ProvinceName)
	assert.Equal(t, 5, idx.Coverage().TotalVillages)
	assert.Equal(t, 60.0, idx.Coverage().CoveragePercent)
}

func TestNewRejectsDuplicates(t *testing.T) {
	recs := append(records(), records()[0])
	_, err := index.New(recs, nil, "combined")
	assert.ErrorIs(t, err, errors.ErrDuplicate)
}
