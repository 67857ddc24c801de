package build_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodepos-id/kodepos"
	"github.com/kodepos-id/kodepos/cmd/kodepos/cmd/build"
	"github.com/kodepos-id/kodepos/internal/cmd/application"
	"github.com/kodepos-id/kodepos/pkg/codec"
	"github.com/kodepos-id/kodepos/pkg/dataset"
	"github.com/kodepos-id/kodepos/pkg/profiles"
)

const regionsCSV = `village_code,village_name,village_type,district_code,district_name,regency_code,regency_name,province_code,province_name
3204012001,Cikalong,village,320401,Cikalong,3204,Kab. Bandung,32,Jawa Barat
3273011001,Sukaraja,urban_village,327301,Sukajadi,3273,Kota Bandung,32,Jawa Barat
`

const officialCSV = `kemendagri_kode_desa_kelurahan,kode_pos
32.04.01.2001,40556
`

const lookupJSONL = `{"village_code":"3204012001","postal_code":"40599"}
{"village_code":"3273011001","postal_code":"40161"}
`

func execute(t *testing.T, app *application.Mock, args ...string) (string, error) {
	t.Helper()
	root := &cobra.Command{Use: "kodepos"}
	root.AddGroup(&cobra.Group{ID: "core", Title: "Core Commands:"})
	root.AddCommand(build.NewCommand(app))

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"build"}, args...))
	err := root.Execute()
	return out.String(), err
}

type inputs struct {
	dir, regions, official, lookup string
}

func newInputs(t *testing.T) inputs {
	t.Helper()
	dir := t.TempDir()
	in := inputs{
		dir:      dir,
		regions:  filepath.Join(dir, "regions_id.csv"),
		official: filepath.Join(dir, "opendata.csv"),
		lookup:   filepath.Join(dir, "lookup.jsonl"),
	}
	require.NoError(t, os.WriteFile(in.regions, []byte(regionsCSV), 0o644))
	require.NoError(t, os.WriteFile(in.official, []byte(officialCSV), 0o644))
	require.NoError(t, os.WriteFile(in.lookup, []byte(lookupJSONL), 0o644))
	return in
}

func TestBuildCombined(t *testing.T) {
	in := newInputs(t)
	out := filepath.Join(in.dir, "dist")

	stdout, err := execute(t, &application.Mock{},
		"--profile", profiles.Combined,
		"--regions", in.regions,
		"--official", in.official,
		"--augmented", in.lookup,
		"--out-dir", out,
		"--build-year", "2025",
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, `"profile": "combined"`)

	records, err := codec.ReadRecordsFile(filepath.Join(out, "postal_codes_combined.json"))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "40556", records[0].Postal())
	assert.Equal(t, dataset.StatusOfficial, records[0].Status)
	assert.Equal(t, "40161", records[1].Postal())
	assert.Equal(t, dataset.StatusAugmented, records[1].Status)
	assert.Equal(t, 2025, records[1].Year)

	assert.FileExists(t, filepath.Join(out, "postal_codes_combined_enriched.csv"))
	assert.FileExists(t, filepath.Join(out, "build_manifest.yaml"))
}

func TestBuildWithoutEnriched(t *testing.T) {
	in := newInputs(t)

	_, err := execute(t, &application.Mock{},
		"--profile", profiles.PosIndonesia,
		"--regions", in.regions,
		"--augmented", in.lookup,
		"--out-dir", in.dir,
		"--enriched=false",
	)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(in.dir, "postal_codes_pos_indonesia.csv"))
	assert.NoFileExists(t, filepath.Join(in.dir, "postal_codes_pos_indonesia_enriched.csv"))
}

func TestBuildUnknownProfile(t *testing.T) {
	in := newInputs(t)
	_, err := execute(t, &application.Mock{}, "--profile", "nope", "--regions", in.regions, "--out-dir", in.dir)
	require.Error(t, err)
}

func TestBuildBuilderError(t *testing.T) {
	mock := &application.Mock{
		BuilderFunc: func(...kodepos.Option) (*kodepos.Builder, error) {
			return nil, assert.AnError
		},
	}
	_, err := execute(t, mock)
	require.ErrorIs(t, err, assert.AnError)
}
