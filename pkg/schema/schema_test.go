package schema_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodepos-id/kodepos/pkg/codec"
	"github.com/kodepos-id/kodepos/pkg/dataset"
	"github.com/kodepos-id/kodepos/pkg/errors"
	"github.com/kodepos-id/kodepos/pkg/schema"
)

func validator(t *testing.T) *schema.Validator {
	t.Helper()
	v, err := schema.Default()
	require.NoError(t, err)
	return v
}

func TestValidRecords(t *testing.T) {
	records := []dataset.Record{
		{PostalCode: dataset.Ptr("40556"), VillageCode: "3204012001", VillageName: "Cikalong", VillageType: "village", Source: "OPENDATA_JABAR", Confidence: 0.7, Year: 2023, Status: dataset.StatusOfficial},
		{PostalCode: dataset.Ptr("40161"), VillageCode: "3273011001", VillageName: "Sukaraja", VillageType: "urban_village", Source: "POSINDONESIA_LOOKUP", Confidence: 1, Year: 2025, Status: dataset.StatusAugmented},
		{VillageCode: "3204012003", VillageName: "Cibodas", VillageType: "village", Source: "NONE", Confidence: 0, Year: 2025, Status: dataset.StatusUnassigned},
	}
	var buf bytes.Buffer
	require.NoError(t, codec.WriteJSON(&buf, records))

	report, err := validator(t).ValidateRecords(&buf, 0)
	require.NoError(t, err)
	assert.True(t, report.Valid())
	assert.Equal(t, 3, report.Records)
	assert.False(t, report.Truncated)
}

func TestViolations(t *testing.T) {
	input := `[
  {"postal_code": null, "village_code": "1101012001", "village_name": "A", "village_type": "village", "source": "NONE", "confidence": 0.0, "year": 2025, "status": "UNASSIGNED"},
  {"postal_code": null, "village_code": "1101012002", "village_name": "B", "village_type": "village", "source": "OPENDATA_JABAR", "confidence": 0.7, "year": 2023, "status": "OFFICIAL"},
  {"postal_code": "23111", "village_code": "1101012003", "village_name": "C", "village_type": "village", "source": "X", "confidence": 0.7, "year": 2023, "status": "GUESSED"}
]`
	report, err := validator(t).ValidateRecords(strings.NewReader(input), 0)
	require.NoError(t, err)
	require.False(t, report.Valid())

	codes := map[string]bool{}
	for _, v := range report.Violations {
		codes[v.VillageCode] = true
		assert.NotEmpty(t, v.Message)
		assert.Contains(t, v.String(), fmt.Sprintf("Record #%d (%s)", v.Index, v.VillageCode))
	}
	assert.False(t, codes["1101012001"])
	assert.True(t, codes["1101012002"])
	assert.True(t, codes["1101012003"])
}

func TestViolationLimit(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("[")
	for i := 0; i < 25; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(`{"village_code": "x"}`)
	}
	sb.WriteString("]")

	report, err := validator(t).ValidateRecords(strings.NewReader(sb.String()), 0)
	require.NoError(t, err)
	assert.Len(t, report.Violations, 10)
	assert.True(t, report.Truncated)

	report, err = validator(t).ValidateRecords(strings.NewReader(sb.String()), 3)
	require.NoError(t, err)
	assert.Len(t, report.Violations, 3)
}

func TestNotAnArray(t *testing.T) {
	_, err := validator(t).ValidateRecords(strings.NewReader(`{"records": []}`), 0)
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))

	_, err = validator(t).ValidateRecords(strings.NewReader(`[`), 0)
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	_, err := schema.Load(filepath.Join(dir, "absent.json"))
	assert.True(t, errors.IsConfigError(err))

	path := filepath.Join(dir, "postal_code.schema.json")
	require.NoError(t, os.WriteFile(path, schema.DefaultSchema(), 0o644))
	v, err := schema.Load(path)
	require.NoError(t, err)

	_, err = v.ValidateFile(filepath.Join(dir, "absent.json"), 0)
	assert.True(t, errors.IsConfigError(err))

	data := filepath.Join(dir, "postal_codes.json")
	require.NoError(t, os.WriteFile(data, []byte("[]"), 0o644))
	report, err := v.ValidateFile(data, 0)
	require.NoError(t, err)
	assert.True(t, report.Valid())
	assert.Equal(t, 0, report.Records)
}
