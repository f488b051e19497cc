// Package frame provides the in-memory columnar table model shared by every
// layer of the pipeline.
//
// A Frame is an ordered collection of equal-length Series (columns). Each
// Series has exactly one storage kind:
//
//   - Identifier: int64 (participant ids, trial numbers, sample counters)
//   - Numeric: float64 (signal samples, feature values)
//   - Timestamp: float64 milliseconds relative to trial onset
//   - Categorical: string labels (questionnaire answers, skin areas)
//
// Frames are the only currency between the store, the transforms, and the
// exclusion filter: transforms map Frame to Frame with no knowledge of
// storage, and the store marshals Frames to and from SQLite rows.
//
// # Identity columns
//
// All pipeline tables share the (participant_id, trial_number) key shape,
// with timestamp added for time-series stages. The column name constants in
// this package are the single source of truth for those names.
//
// # Canonical serialization
//
// CanonicalBytes produces a deterministic byte serialization of a Frame:
// columns in declaration order, rows in storage order, strings NFC
// normalized, floats rendered as shortest round-trip decimals. Fingerprint
// hashes those bytes with SHA-256 under a domain prefix. Two Frames have
// equal fingerprints iff they are row-for-row, cell-for-cell identical,
// which is how pipeline idempotence is checked and recorded in the run log.
package frame
