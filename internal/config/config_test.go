package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "data/experiment.db", cfg.DBFile)
	assert.Equal(t, "data/imotions", cfg.DataDir)
	assert.Empty(t, cfg.DatasetConfig)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "physiopipe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"db_file: /srv/study/experiment.db\ndata_dir: /srv/study/imotions\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/study/experiment.db", cfg.DBFile)
	assert.Equal(t, "/srv/study/imotions", cfg.DataDir)
	// Untouched fields keep their defaults.
	assert.Equal(t, "data/participants.csv", cfg.ParticipantsFile)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "physiopipe.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db_file: from_file.db\n"), 0o644))
	t.Setenv("PHYSIO_DB_FILE", "from_env.db")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from_env.db", cfg.DBFile)
}

func TestLoad_MissingFileIsOptional(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "data/experiment.db", cfg.DBFile)
}

func TestLoad_MalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db_file: [\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
