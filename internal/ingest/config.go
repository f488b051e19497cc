package ingest

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/physiolab/physiopipe/internal/schema"
)

//go:embed datasets.yaml
var defaultDatasetsYAML []byte

// Dataset maps one modality's vendor export onto its raw table.
type Dataset struct {
	// File is the export file name under the participant's directory.
	File string `yaml:"file"`

	// Columns renames vendor columns to canonical raw-table columns.
	// Vendor columns not listed are ignored.
	Columns map[string]string `yaml:"columns"`

	// Meta renames vendor columns to trials-table columns. Only the
	// stimulus dataset carries these.
	Meta map[string]string `yaml:"meta,omitempty"`
}

// Config is the dataset map for one export layout.
type Config struct {
	Datasets map[schema.Modality]Dataset `yaml:"datasets"`
}

// DefaultConfig returns the embedded dataset map for the standard
// iMotions export layout.
func DefaultConfig(reg *schema.Registry) (Config, error) {
	return parseConfig(defaultDatasetsYAML, reg)
}

// LoadConfig reads a dataset map from a YAML file, for export layouts
// that differ from the embedded default.
func LoadConfig(path string, reg *schema.Registry) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read dataset config: %w", err)
	}
	return parseConfig(data, reg)
}

func parseConfig(data []byte, reg *schema.Registry) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse dataset config: %w", err)
	}
	if err := cfg.validate(reg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// validate checks the dataset map against the table contracts: every
// modality mapped, every canonical target declared.
func (c Config) validate(reg *schema.Registry) error {
	trials, ok := reg.SpecByName(schema.TableTrials)
	if !ok {
		return fmt.Errorf("no contract declared for table %s", schema.TableTrials)
	}
	for _, m := range schema.Modalities() {
		ds, ok := c.Datasets[m]
		if !ok {
			return fmt.Errorf("dataset config: modality %s not mapped", m)
		}
		if ds.File == "" {
			return fmt.Errorf("dataset config: %s has no file", m)
		}
		spec, ok := reg.SpecByName(schema.TableName(m, schema.Raw))
		if !ok {
			return fmt.Errorf("no contract declared for table %s", schema.TableName(m, schema.Raw))
		}
		for vendor, canonical := range ds.Columns {
			if _, ok := spec.Column(canonical); !ok {
				return fmt.Errorf("dataset config: %s maps %q to undeclared column %q",
					m, vendor, canonical)
			}
		}
		for vendor, canonical := range ds.Meta {
			if _, ok := trials.Column(canonical); !ok {
				return fmt.Errorf("dataset config: %s maps %q to undeclared trials column %q",
					m, vendor, canonical)
			}
		}
	}
	return nil
}
