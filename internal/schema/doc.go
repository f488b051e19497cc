// Package schema is the registry of table contracts for the analytical
// store.
//
// Every (modality, stage) pair, and every static sibling table
// (participants, trials, calibration, questionnaire scores), has a
// declared column set: name, kind, nullability, and key membership. The
// declarations live in tables.cue, embedded into the binary and compiled
// through the CUE SDK at load time. Keeping the schema as data rather
// than scattered type checks is what lets the pipeline coordinator stay
// generic across modalities, and lets external tools read the same
// declarations to generate or validate compatible tables.
//
// Validation is a pure check with exactly three failure kinds:
// MissingColumn, UnexpectedColumn, and TypeMismatch. There is no partial
// or best-effort mode; the first violation fails the whole call.
package schema
