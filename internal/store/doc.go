// Package store is the database manager: SQLite-backed persistence for
// the staged modality tables and their static siblings.
//
// One store table exists per (modality, stage) pair plus the static
// participants/trials/calibration/questionnaire tables. Data tables are
// created from the schema registry's declarations; their DDL, inserts,
// and selects are generated from the same TableSpec the validator uses,
// so a table can never be written in a shape the contract does not
// describe.
//
// # Write contract
//
// PutTable validates first and performs no write at all on a schema
// violation. A successful write replaces the previous table content
// atomically: drop, create, and insert happen in one transaction, so a
// reader either sees the old table or the new one, never a mix. The
// store is a single-writer resource; concurrent writers to the same
// table are out of scope.
//
// # Read contract
//
// GetTable returns NotFoundError for a table no pipeline run has
// populated yet. With exclusion enabled it applies the persisted
// exclusion list through the one shared filter; rows are never deleted
// by exclusion, so the unfiltered read always remains available.
//
// # Bookkeeping
//
// The exclusions table is append-only. The run log records each pipeline
// write with a UUID, the row count, and the table fingerprint, which is
// how idempotent re-runs can be verified after the fact.
package store
