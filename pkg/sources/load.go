package sources

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/kodepos-id/kodepos/pkg/errors"
	"github.com/kodepos-id/kodepos/pkg/logging"
)

// OpenDataJabar returns the adapter for the Open Data Jawa Barat export.
func OpenDataJabar() *CSVAdapter {
	return &CSVAdapter{
		Source:       OpenDataJabarID,
		CodeColumn:   "kemendagri_kode_desa_kelurahan",
		PostalColumn: "kode_pos",
	}
}

// PosIndonesia returns the adapter for the Pos Indonesia lookup result.
func PosIndonesia() *JSONLAdapter {
	return &JSONLAdapter{
		Source:    PosIndonesiaID,
		CodeKey:   "village_code",
		PostalKey: "postal_code",
	}
}

// ByName returns a bundled adapter by source label or short name.
func ByName(name string) (Adapter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "opendata_jabar", "opendata-jabar", "official":
		return OpenDataJabar(), nil
	case "posindonesia_lookup", "pos-indonesia", "pos_indonesia", "augmented":
		return PosIndonesia(), nil
	}
	return nil, &errors.NotFoundError{Resource: "source", ID: name}
}

// LoadFile opens path and reads it with adapter. A missing file is a
// configuration error.
func LoadFile(ctx context.Context, adapter Adapter, path string) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewConfigError("sources",
				fmt.Sprintf("missing %s artifact: %s", adapter.ID(), path), err)
		}
		return nil, errors.WrapIO("open", path, err)
	}
	defer f.Close() //nolint:errcheck

	switch a := adapter.(type) {
	case *CSVAdapter:
		if a.Name == "" {
			c := *a
			c.Name = path
			adapter = &c
		}
	case *JSONLAdapter:
		if a.Name == "" {
			c := *a
			c.Name = path
			adapter = &c
		}
	}

	m, err := adapter.Load(ctx, f)
	if err != nil {
		return nil, err
	}

	ctx = logging.WithArtifact(logging.WithSource(ctx, adapter.ID().String()), path)
	logging.FromContext(ctx).Info().
		Int("codes", m.Len()).
		Int("skipped", m.SkippedTotal()).
		Int("replaced", m.Replaced()).
		Msg("Loaded source")
	return m, nil
}
