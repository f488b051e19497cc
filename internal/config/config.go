// Package config resolves the file locations the tools work with.
//
// Precedence, lowest to highest: struct defaults, the optional YAML
// config file, PHYSIO_* environment variables.
package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// envPrefix namespaces the environment overrides, e.g. PHYSIO_DB_FILE.
const envPrefix = "PHYSIO"

// Config holds the experiment file layout.
type Config struct {
	// DBFile is the SQLite store holding all tables.
	DBFile string `yaml:"db_file" envconfig:"DB_FILE" default:"data/experiment.db"`

	// DataDir contains one directory of vendor exports per participant.
	DataDir string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data/imotions"`

	// DatasetConfig optionally overrides the embedded dataset map.
	DatasetConfig string `yaml:"dataset_config" envconfig:"DATASET_CONFIG"`

	// ParticipantsFile is the cohort roster CSV.
	ParticipantsFile string `yaml:"participants_file" envconfig:"PARTICIPANTS_FILE" default:"data/participants.csv"`

	// InvalidTrialsFile is the experimenters' append-only exclusion CSV.
	InvalidTrialsFile string `yaml:"invalid_trials_file" envconfig:"INVALID_TRIALS_FILE" default:"data/invalid_trials.csv"`
}

// Load reads the config file at path (skipped when path is empty or the
// file does not exist) and applies environment overrides on top.
func Load(path string) (Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("config from env: %w", err)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Optional file; defaults and env stand.
		case err != nil:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		default:
			var fileCfg Config
			if err := yaml.Unmarshal(data, &fileCfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
			cfg = merge(cfg, fileCfg)
			// Env wins over file: re-apply. envconfig leaves non-empty
			// fields alone unless the variable is actually set.
			if err := envconfig.Process(envPrefix, &cfg); err != nil {
				return Config{}, fmt.Errorf("config from env: %w", err)
			}
		}
	}
	if cfg.DBFile == "" {
		return Config{}, fmt.Errorf("config: db_file must not be empty")
	}
	return cfg, nil
}

// merge overlays file values onto cfg wherever the file set one.
func merge(cfg, file Config) Config {
	if file.DBFile != "" {
		cfg.DBFile = file.DBFile
	}
	if file.DataDir != "" {
		cfg.DataDir = file.DataDir
	}
	if file.DatasetConfig != "" {
		cfg.DatasetConfig = file.DatasetConfig
	}
	if file.ParticipantsFile != "" {
		cfg.ParticipantsFile = file.ParticipantsFile
	}
	if file.InvalidTrialsFile != "" {
		cfg.InvalidTrialsFile = file.InvalidTrialsFile
	}
	return cfg
}
