// Package constants provides shared constants used throughout the kodepos
// codebase: default artifact names, file permissions, and the fixed policy
// values of the concrete build profiles.
package constants

import "time"

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Input artifact names
const (
	// RegionsFile is the flattened region-id registry snapshot
	RegionsFile = "regions_id.csv"

	// RegionsRelease is the pinned region-id release the registry comes from
	RegionsRelease = "v1.0.0"

	// OpenDataJabarFile is the Open Data Jawa Barat postal-code export
	OpenDataJabarFile = "dispusipda-kode_pos_kab_kota_indonesia_data.csv"

	// PosIndonesiaFile is the Pos Indonesia lookup result, one object per line
	PosIndonesiaFile = "data/sources/kodepos-posindonesia-co-id/village_postal_codes.jsonl"

	// SchemaFile is the published record schema
	SchemaFile = "schema/postal_code.schema.json"
)

// Output artifact names
const (
	// OutputCSV is the canonical tabular output of the official build
	OutputCSV = "postal_codes.csv"

	// OutputJSON is the canonical JSON array output of the official build
	OutputJSON = "postal_codes.json"

	// CoverageFile is the default coverage report path
	CoverageFile = "coverage.json"

	// FailedFile is the default missing-villages detail path
	FailedFile = "failed_villages.jsonl"

	// ManifestFile is the default build manifest path
	ManifestFile = "build_manifest.yaml"
)

// Baseline labels used in coverage reports
const (
	// BaselineRegionID names the registry baseline
	BaselineRegionID = "region-id"
)

// Policy constants for the concrete profiles
const (
	// ConfidenceOfficial is assigned to matches from the curated official baseline
	ConfidenceOfficial = 0.7

	// ConfidenceAugmented is assigned to matches from the full-coverage lookup source
	ConfidenceAugmented = 1.0

	// OpenDataJabarYear is the reference year of the Open Data Jabar export
	OpenDataJabarYear = 2023
)

// Limit constants
const (
	// MaxSchemaViolations is how many violations the validator reports before stopping
	MaxSchemaViolations = 10

	// MaxJSONLLineBytes bounds a single line of a line-delimited JSON source
	MaxJSONLLineBytes = 1 << 20
)

// Timeout constants
const (
	// PublishTimeout bounds a single publish transaction
	PublishTimeout = 5 * time.Minute

	// ReadHeaderTimeout is the HTTP server header read timeout
	ReadHeaderTimeout = 5 * time.Second

	// ShutdownTimeout is how long the HTTP server gets to drain
	ShutdownTimeout = 5 * time.Second
)

// Format constants
const (
	// TimeFormatISO8601 is the timestamp format used in reports
	TimeFormatISO8601 = time.RFC3339
)
