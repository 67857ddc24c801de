// Package manifest records what a build read and wrote, so a published
// dataset can be traced back to its exact inputs.
package manifest

import (
	"cmp"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/google/uuid"

	"github.com/kodepos-id/kodepos/pkg/codec"
	"github.com/kodepos-id/kodepos/pkg/constants"
	"github.com/kodepos-id/kodepos/pkg/errors"
	"github.com/kodepos-id/kodepos/pkg/reconcile"
)

// Namespace is the UUID namespace build IDs are derived in.
var Namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://kodepos.id/build"))

// Input is a file a build read.
type Input struct {
	Role   string `yaml:"role" json:"role"`
	Path   string `yaml:"path" json:"path"`
	SHA256 string `yaml:"sha256" json:"sha256"`
}

// Manifest describes one build.
type Manifest struct {
	BuildID     string           `yaml:"build_id" json:"build_id"`
	Profile     string           `yaml:"profile" json:"profile"`
	BuildYear   int              `yaml:"build_year" json:"build_year"`
	GeneratedAt time.Time        `yaml:"generated_at" json:"generated_at"`
	Chain       []string         `yaml:"chain" json:"chain"`
	Inputs      []Input          `yaml:"inputs" json:"inputs"`
	Outputs     []codec.Artifact `yaml:"outputs" json:"outputs"`
	Fingerprint string           `yaml:"fingerprint" json:"fingerprint"`
	Coverage    float64          `yaml:"coverage_percent" json:"coverage_percent"`
	Stats       reconcile.Stats  `yaml:"stats" json:"stats"`
}

// New starts a manifest for profile and build year.
func New(profile string, buildYear int) *Manifest {
	return &Manifest{
		Profile:     profile,
		BuildYear:   buildYear,
		GeneratedAt: time.Now().UTC(),
	}
}

// AddInput digests the file at path and records it under role.
func (m *Manifest) AddInput(role, path string) error {
	sum, err := codec.FileSHA256(path)
	if err != nil {
		return err
	}
	m.Inputs = append(m.Inputs, Input{Role: role, Path: path, SHA256: sum})
	return nil
}

// AddOutput records a written artifact.
func (m *Manifest) AddOutput(a codec.Artifact) {
	m.Outputs = append(m.Outputs, a)
}

// SetResult copies the reconciliation outcome into the manifest.
func (m *Manifest) SetResult(r *reconcile.Result) {
	m.Chain = slices.Clone(r.Metadata.Chain)
	m.Stats = r.Stats
	m.Coverage = r.Stats.CoveragePercent()
	m.Fingerprint = codec.Fingerprint(r.Records)
}

// ComputeBuildID derives the build ID from the profile, the build year and
// the input digests, and stores it. Paths and timestamps do not take part,
// so identical inputs always yield the same ID.
func (m *Manifest) ComputeBuildID() string {
	inputs := slices.Clone(m.Inputs)
	slices.SortFunc(inputs, func(a, b Input) int {
		return cmp.Or(cmp.Compare(a.Role, b.Role), cmp.Compare(a.SHA256, b.SHA256))
	})

	var sb strings.Builder
	sb.WriteString(m.Profile)
	sb.WriteString("\n")
	sb.WriteString(strconv.Itoa(m.BuildYear))
	for _, in := range inputs {
		sb.WriteString("\n")
		sb.WriteString(in.Role)
		sb.WriteString("=")
		sb.WriteString(in.SHA256)
	}

	m.BuildID = uuid.NewSHA1(Namespace, []byte(sb.String())).String()
	return m.BuildID
}

// Encode writes the manifest as YAML.
func (m *Manifest) Encode(w io.Writer) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// Write computes the build ID and writes the manifest to path.
func (m *Manifest) Write(path string) (codec.Artifact, error) {
	m.ComputeBuildID()
	return codec.WriteFile(path, m.Encode)
}

// Read loads a manifest from path.
func Read(path string) (*Manifest, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewConfigError("manifest", "missing manifest: "+path, err)
		}
		return nil, errors.WrapIO("read", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}
	return &m, nil
}

// DefaultPath returns the manifest path inside dir.
func DefaultPath(dir string) string {
	return filepath.Join(dir, constants.ManifestFile)
}
