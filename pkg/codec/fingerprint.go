package codec

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/kodepos-id/kodepos/pkg/dataset"
)

// Fingerprint returns an xxhash64 digest of the records' canonical rows.
// Two record sets with the same fingerprint serialize identically.
func Fingerprint(records []dataset.Record) string {
	digest := xxhash.New()
	for _, r := range records {
		_, _ = digest.WriteString(strings.Join(r.Row(), ";"))
		_, _ = digest.WriteString("\n")
	}
	return fmt.Sprintf("%016x", digest.Sum64())
}
