package codec_test

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodepos-id/kodepos/pkg/codec"
	"github.com/kodepos-id/kodepos/pkg/dataset"
	"github.com/kodepos-id/kodepos/pkg/errors"
	"github.com/kodepos-id/kodepos/pkg/registry"
)

func sampleRecords() []dataset.Record {
	return []dataset.Record{
		{PostalCode: dataset.Ptr("23111"), VillageCode: "1101012001", VillageName: "Lam Ara", VillageType: "village", Source: "POSINDONESIA_LOOKUP", Confidence: 1, Year: 2025, Status: dataset.StatusAugmented},
		{VillageCode: "1101012002", VillageName: "Gampong <Baro> & Co", VillageType: "village", Source: "NONE", Confidence: 0, Year: 2025, Status: dataset.StatusUnassigned},
	}
}

func TestWriteRecordsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, codec.WriteRecordsCSV(&buf, sampleRecords()))
	assert.Equal(t,
		"postal_code,village_code,village_name,village_type,source,confidence,year,status\n"+
			"23111,1101012001,Lam Ara,village,POSINDONESIA_LOOKUP,1.0,2025,AUGMENTED\n"+
			",1101012002,Gampong <Baro> & Co,village,NONE,0.0,2025,UNASSIGNED\n",
		buf.String())
}

func TestWriteEnrichedCSV(t *testing.T) {
	var buf bytes.Buffer
	err := codec.WriteEnrichedCSV(&buf, []dataset.EnrichedRecord{{
		Record:       sampleRecords()[0],
		DistrictCode: "110101",
		DistrictName: "Bakongan",
		ProvinceName: "Aceh, Nanggroe",
	}})
	require.NoError(t, err)
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.True(t, bytes.HasSuffix(lines[0], []byte("province_code,province_name")))
	assert.True(t, bytes.HasSuffix(lines[1], []byte(`110101,Bakongan,,,,"Aceh, Nanggroe"`)))
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, codec.WriteJSON(&buf, sampleRecords()[1:]))
	assert.Equal(t, `[
  {
    "postal_code": null,
    "village_code": "1101012002",
    "village_name": "Gampong <Baro> & Co",
    "village_type": "village",
    "source": "NONE",
    "confidence": 0.0,
    "year": 2025,
    "status": "UNASSIGNED"
  }
]
`, buf.String())
}

func TestWriteJSONL(t *testing.T) {
	var buf bytes.Buffer
	type row struct {
		Code string `json:"village_code"`
	}
	require.NoError(t, codec.WriteJSONL(&buf, []row{{"1"}, {"2"}}))
	assert.Equal(t, "{\"village_code\":\"1\"}\n{\"village_code\":\"2\"}\n", buf.String())
}

func TestWriteJSONLUnits(t *testing.T) {
	units := []registry.Unit{
		{Code: "3204012002", Name: "Mekarsari", Type: "village", DistrictCode: "320401", DistrictName: "Cikalong", RegencyCode: "3204", RegencyName: "Kab. Bandung", ProvinceCode: "32", ProvinceName: "Jawa Barat"},
		{Code: "3273011001", Name: "Sukaraja & Co", Type: "urban_village"},
	}

	var buf bytes.Buffer
	require.NoError(t, codec.WriteJSONL(&buf, units))
	assert.Equal(t,
		`{"village_code":"3204012002","village_name":"Mekarsari","village_type":"village","district_code":"320401","district_name":"Cikalong","regency_code":"3204","regency_name":"Kab. Bandung","province_code":"32","province_name":"Jawa Barat"}`+"\n"+
			`{"village_code":"3273011001","village_name":"Sukaraja & Co","village_type":"urban_village"}`+"\n",
		buf.String())

	buf.Reset()
	require.NoError(t, codec.WriteJSONL[registry.Unit](&buf, nil))
	assert.Empty(t, buf.String())
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "postal_codes.csv")

	a, err := codec.WriteFile(path, func(w io.Writer) error {
		return codec.WriteRecordsCSV(w, sampleRecords())
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), a.Bytes)

	sum, err := codec.FileSHA256(path)
	require.NoError(t, err)
	assert.Equal(t, sum, a.SHA256)
	assert.Len(t, a.SHA256, 64)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file is removed")
}

func TestWriteFileFailureLeavesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "postal_codes.json")
	_, err := codec.WriteFile(path, func(w io.Writer) error {
		_, _ = w.Write([]byte("partial"))
		return assert.AnError
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoFileExists(t, path)
}

func TestDeterministicOutput(t *testing.T) {
	dir := t.TempDir()
	write := func(name string) codec.Artifact {
		a, err := codec.WriteFile(filepath.Join(dir, name), func(w io.Writer) error {
			return codec.WriteJSON(w, sampleRecords())
		})
		require.NoError(t, err)
		return a
	}
	assert.Equal(t, write("a.json").SHA256, write("b.json").SHA256)
}

func TestFingerprint(t *testing.T) {
	a := codec.Fingerprint(sampleRecords())
	assert.Len(t, a, 16)
	assert.Equal(t, a, codec.Fingerprint(sampleRecords()))

	changed := sampleRecords()
	changed[0].Confidence = 0.7
	assert.NotEqual(t, a, codec.Fingerprint(changed))
}

func TestReadRecords(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, codec.WriteJSON(&buf, sampleRecords()))

	got, err := codec.ReadRecords(&buf)
	require.NoError(t, err)
	assert.Equal(t, sampleRecords(), got)
}

func TestReadRecordsRejectsBrokenCoupling(t *testing.T) {
	in := `[{"postal_code":null,"village_code":"1101012001","village_name":"x","village_type":"village","source":"OPENDATA_JABAR","confidence":0.7,"year":2023,"status":"OFFICIAL"}]`
	_, err := codec.ReadRecords(bytes.NewBufferString(in))
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestReadRecordsFile(t *testing.T) {
	dir := t.TempDir()

	_, err := codec.ReadRecordsFile(filepath.Join(dir, "missing.json"))
	assert.True(t, errors.IsConfigError(err))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"not":"an array"}`), 0o644))
	_, err = codec.ReadRecordsFile(bad)
	var pe *errors.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, bad, pe.File)
}
