// Package ingest loads vendor recording exports into the Raw tables.
//
// The experiment software (iMotions) writes one CSV per sensor per
// participant, with a free-form metadata preamble terminated by a #DATA
// marker line and vendor-specific column names. A YAML dataset config
// maps each modality to its export file and renames vendor columns to
// the canonical ones the table contracts declare. Ingestion is the only
// code that ever sees vendor names; everything downstream speaks the
// contract vocabulary.
//
// Raw tables are written whole: ingest reads every requested
// participant, concatenates, validates, and replaces the table in one
// store write. The trials metadata table is derived from the stimulus
// export during the same pass.
package ingest
