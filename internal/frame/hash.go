package frame

import (
	"crypto/sha256"
	"encoding/hex"
)

// DomainTable is the domain-separation prefix for table fingerprints.
// The version suffix allows the canonical layout to evolve without old
// run-log fingerprints colliding with new ones.
const DomainTable = "physiopipe/table/v1"

// Fingerprint computes the content hash of a frame:
// SHA256(domain + 0x00 + CanonicalBytes). The null separator prevents
// domain/data boundary ambiguity.
//
// Equal fingerprints mean row-for-row identical tables, which is what the
// run log records to verify pipeline idempotence across re-runs.
func Fingerprint(f *Frame) string {
	h := sha256.New()
	h.Write([]byte(DomainTable))
	h.Write([]byte{0x00})
	h.Write(CanonicalBytes(f))
	return hex.EncodeToString(h.Sum(nil))
}
