package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/kodepos-id/kodepos/pkg/profiles"
)

const regionsCSV = `village_code,village_name,village_type,district_code,district_name,regency_code,regency_name,province_code,province_name
3204012001,Cikalong,village,320401,Cikalong,3204,Kab. Bandung,32,Jawa Barat
3204012003,Cibodas,village,320401,Cikalong,3204,Kab. Bandung,32,Jawa Barat
3273011001,Sukaraja,urban_village,327301,Sukajadi,3273,Kota Bandung,32,Jawa Barat
`

const officialCSV = `kemendagri_kode_desa_kelurahan,kode_pos
32.04.01.2001,40556
3273011001,40161
`

func newTestApp(t *testing.T) *App {
	t.Helper()
	logger := zerolog.Nop()
	app, err := New("1.0.0", "abc123", "2024-01-01", "test", WithLogger(&logger))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return app
}

// run executes the command tree with args and returns stdout.
func run(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := app.createRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

// TestApp_New verifies app initialization.
func TestApp_New(t *testing.T) {
	app := newTestApp(t)

	if app.Version() != "1.0.0" {
		t.Errorf("Version() = %s, want 1.0.0", app.Version())
	}
	if app.Commit() != "abc123" {
		t.Errorf("Commit() = %s, want abc123", app.Commit())
	}
	if app.Date() != "2024-01-01" {
		t.Errorf("Date() = %s, want 2024-01-01", app.Date())
	}
	if app.BuiltBy() != "test" {
		t.Errorf("BuiltBy() = %s, want test", app.BuiltBy())
	}
	if app.Logger() == nil {
		t.Error("Logger() returned nil")
	}
	if app.Config() == nil {
		t.Error("Config() returned nil")
	}
	if _, err := app.Profiles().Get(profiles.Combined); err != nil {
		t.Errorf("Profiles() lacks %s: %v", profiles.Combined, err)
	}
}

func TestApp_Builder(t *testing.T) {
	app := newTestApp(t)
	b, err := app.Builder()
	if err != nil {
		t.Fatalf("Builder() failed: %v", err)
	}
	if len(b.Profiles()) != len(app.Profiles()) {
		t.Errorf("builder has %d profiles, want %d", len(b.Profiles()), len(app.Profiles()))
	}
}

func TestApp_WithProfiles(t *testing.T) {
	set := profiles.Set{profiles.OpenDataJabar: profiles.Builtin()[profiles.OpenDataJabar]}
	app, err := New("dev", "", "", "", WithProfiles(set))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if got := app.Profiles().Names(); len(got) != 1 || got[0] != profiles.OpenDataJabar {
		t.Errorf("Profiles().Names() = %v", got)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, newTestApp(t), "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	for _, want := range []string{"kodepos version 1.0.0", "commit: abc123", "built by: test"} {
		if !strings.Contains(out, want) {
			t.Errorf("version output missing %q:\n%s", want, out)
		}
	}
}

func TestProfilesCommand(t *testing.T) {
	out, err := run(t, newTestApp(t), "profiles", "-o", "json")
	if err != nil {
		t.Fatalf("profiles failed: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("profiles output is not JSON: %v\n%s", err, out)
	}
	for _, name := range []string{profiles.OpenDataJabar, profiles.PosIndonesia, profiles.Combined} {
		if _, ok := got[name]; !ok {
			t.Errorf("profiles output lacks %s", name)
		}
	}
}

func TestBuildCommand(t *testing.T) {
	dir := t.TempDir()
	regions := writeFile(t, dir, "regions_id.csv", regionsCSV)
	official := writeFile(t, dir, "opendata.csv", officialCSV)
	outDir := filepath.Join(dir, "dist")
	metricsFile := filepath.Join(dir, "kodepos.prom")

	out, err := run(t, newTestApp(t), "build",
		"--profile", profiles.OpenDataJabar,
		"--regions", regions,
		"--official", official,
		"--out-dir", outDir,
		"--build-year", "2025",
		"--metrics-file", metricsFile,
		"-o", "json",
	)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	var summary struct {
		Profile  string `json:"profile"`
		BuildID  string `json:"build_id"`
		Records  int    `json:"records"`
		Coverage struct {
			Matched int `json:"matched"`
		} `json:"coverage"`
	}
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("build output is not JSON: %v\n%s", err, out)
	}
	if summary.Profile != profiles.OpenDataJabar {
		t.Errorf("profile = %s", summary.Profile)
	}
	if summary.Records != 3 {
		t.Errorf("records = %d, want 3", summary.Records)
	}
	if summary.BuildID == "" {
		t.Error("build_id is empty")
	}

	for _, name := range []string{"postal_codes.csv", "postal_codes.json", "build_manifest.yaml"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("missing output %s: %v", name, err)
		}
	}
	prom, err := os.ReadFile(metricsFile)
	if err != nil {
		t.Fatalf("reading metrics file: %v", err)
	}
	if !strings.Contains(string(prom), "kodepos_records") {
		t.Errorf("metrics file lacks kodepos_records:\n%s", prom)
	}
}

func TestBuildCommand_MissingInput(t *testing.T) {
	dir := t.TempDir()
	regions := writeFile(t, dir, "regions_id.csv", regionsCSV)

	_, err := run(t, newTestApp(t), "build",
		"--profile", profiles.OpenDataJabar,
		"--regions", regions,
		"--official", filepath.Join(dir, "absent.csv"),
		"--out-dir", dir,
	)
	if err == nil {
		t.Fatal("build with a missing input succeeded")
	}
	if _, statErr := os.Stat(filepath.Join(dir, "postal_codes.csv")); !os.IsNotExist(statErr) {
		t.Error("build with a missing input wrote outputs")
	}
}

func TestCoverageCommand(t *testing.T) {
	dir := t.TempDir()
	regions := writeFile(t, dir, "regions_id.csv", regionsCSV)
	lookup := writeFile(t, dir, "lookup.jsonl",
		`{"village_code":"3204012001","postal_code":"40599"}`+"\n"+
			`{"village_code":"9999999999","postal_code":"11111"}`+"\n")
	coverageFile := filepath.Join(dir, "coverage.json")
	failedFile := filepath.Join(dir, "failed_villages.jsonl")

	out, err := run(t, newTestApp(t), "coverage",
		"--regions", regions,
		"--output", lookup,
		"--source", "pos_indonesia",
		"--coverage", coverageFile,
		"--failed", failedFile,
		"-o", "json",
	)
	if err != nil {
		t.Fatalf("coverage failed: %v", err)
	}
	if !strings.Contains(out, `"matched": 1`) {
		t.Errorf("coverage output:\n%s", out)
	}

	failed, err := os.ReadFile(failedFile)
	if err != nil {
		t.Fatalf("reading failed file: %v", err)
	}
	if lines := strings.Count(string(failed), "\n"); lines != 2 {
		t.Errorf("failed file has %d lines, want 2", lines)
	}
	if _, err := os.Stat(coverageFile); err != nil {
		t.Errorf("missing coverage file: %v", err)
	}
}

func TestCoverageCommand_UnknownFormat(t *testing.T) {
	_, err := run(t, newTestApp(t), "coverage", "--input-format", "xml")
	if err == nil {
		t.Fatal("coverage accepted an unknown input format")
	}
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	valid := writeFile(t, dir, "valid.json", `[
  {"postal_code": "40556", "village_code": "3204012001", "village_name": "Cikalong",
   "village_type": "village", "source": "OPENDATA_JABAR", "confidence": 0.7, "year": 2023, "status": "OFFICIAL"}
]`)
	invalid := writeFile(t, dir, "invalid.json", `[
  {"postal_code": "4055", "village_code": "3204012001", "village_name": "Cikalong",
   "village_type": "village", "source": "OPENDATA_JABAR", "confidence": 0.7, "year": 2023, "status": "OFFICIAL"}
]`)

	out, err := run(t, newTestApp(t), "validate", "--data", valid, "-o", "table")
	if err != nil {
		t.Fatalf("validate of a valid file failed: %v", err)
	}
	if !strings.Contains(out, "1 records valid") {
		t.Errorf("validate output = %q", out)
	}

	if _, err := run(t, newTestApp(t), "validate", "--data", invalid, "-o", "table"); err == nil {
		t.Fatal("validate of an invalid file succeeded")
	}
}

func TestPublishCommand_NoDSN(t *testing.T) {
	t.Setenv("KODEPOS_DATABASE_URL", "")
	t.Setenv("DATABASE_URL", "")
	app := newTestApp(t)
	app.config.DatabaseURL = ""

	_, err := run(t, app, "publish", "--data", "absent.json")
	if err == nil || !strings.Contains(err.Error(), "no database") {
		t.Fatalf("publish without a DSN: err = %v", err)
	}
}

func TestServeCommand_BadAddr(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "postal_codes.json", "[]")
	_, err := run(t, newTestApp(t), "serve", "--data", data, "--addr", "no-port")
	if err == nil {
		t.Fatal("serve accepted an address without a port")
	}
}
