package schema

import (
	"fmt"

	"github.com/physiolab/physiopipe/internal/frame"
)

// Modality is a physiological or behavioral signal source. Stimulus
// covers the device temperature trace and the continuous pain rating,
// which the acquisition software records as one stream.
type Modality string

const (
	Stimulus Modality = "stimulus"
	EDA      Modality = "eda"
	EEG      Modality = "eeg"
	PPG      Modality = "ppg"
	Pupil    Modality = "pupil"
	Face     Modality = "face"
)

// Modalities returns all modalities in canonical order. The pipeline
// processes them in this order; nothing depends on it beyond stable logs.
func Modalities() []Modality {
	return []Modality{Stimulus, EDA, EEG, PPG, Pupil, Face}
}

// ParseModality parses a user-supplied modality name.
func ParseModality(s string) (Modality, error) {
	for _, m := range Modalities() {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown modality %q", s)
}

// Stage is one of the three sequential table forms.
type Stage string

const (
	Raw        Stage = "raw"
	Preprocess Stage = "preprocess"
	Feature    Stage = "feature"
)

// Stages returns the stages in pipeline order.
func Stages() []Stage {
	return []Stage{Raw, Preprocess, Feature}
}

// ParseStage parses a user-supplied stage name.
func ParseStage(s string) (Stage, error) {
	for _, st := range Stages() {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown stage %q", s)
}

// Predecessor returns the stage a transform reads from. Raw has no
// predecessor; it is populated by ingestion, not by the pipeline.
func (s Stage) Predecessor() (Stage, bool) {
	switch s {
	case Preprocess:
		return Raw, true
	case Feature:
		return Preprocess, true
	default:
		return "", false
	}
}

// TableName returns the store table name for a (modality, stage) pair,
// e.g. "eda_preprocess".
func TableName(m Modality, s Stage) string {
	return string(m) + "_" + string(s)
}

// Static sibling table names. These use the same put/get surface as the
// pipeline tables but are written once at ingestion.
const (
	TableParticipants   = "participants"
	TableTrials         = "trials"
	TableCalibration    = "calibration"
	TableQuestionnaires = "questionnaire_scores"
)

// ColumnSpec declares one column of a table contract.
type ColumnSpec struct {
	Name     string
	Kind     frame.Kind
	Nullable bool
	Key      bool
}

// TableSpec declares the full column set of one table. Columns are in
// declaration order; the store writes columns in this order so that
// re-runs produce byte-identical tables.
type TableSpec struct {
	Name    string
	Columns []ColumnSpec
}

// Column returns the named column spec, or false if not declared.
func (t TableSpec) Column(name string) (ColumnSpec, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnSpec{}, false
}

// KeyColumns returns the names of the row-key columns in declaration
// order.
func (t TableSpec) KeyColumns() []string {
	var keys []string
	for _, c := range t.Columns {
		if c.Key {
			keys = append(keys, c.Name)
		}
	}
	return keys
}

// ColumnNames returns all column names in declaration order.
func (t TableSpec) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}
