package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/physiolab/physiopipe/internal/pipeline"
	"github.com/physiolab/physiopipe/internal/schema"
	"github.com/physiolab/physiopipe/internal/store"
	"github.com/physiolab/physiopipe/internal/testutil"
	"github.com/physiolab/physiopipe/internal/transform"
)

// execute runs the root command with args against a scratch store.
func execute(t *testing.T, dbFile string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("PHYSIO_DB_FILE", dbFile)

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// seededDB builds a store with raw tables and a full pipeline run.
func seededDB(t *testing.T) string {
	t.Helper()
	dbFile := filepath.Join(t.TempDir(), "test.db")
	s, err := store.Open(dbFile, schema.MustLoad())
	require.NoError(t, err)
	defer s.Close()

	testutil.SeedRaw(t, s, testutil.DefaultKeys, 40)
	_, err = pipeline.New(s, transform.Default()).RunAll(context.Background())
	require.NoError(t, err)
	return dbFile
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "physiopipe", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"ingest", "run", "query", "export", "exclude", "schema"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestInvalidFormatRejected(t *testing.T) {
	_, err := execute(t, filepath.Join(t.TempDir(), "x.db"), "--format", "yaml", "schema")
	require.ErrorContains(t, err, "invalid format")
}

func TestSchemaCommand_ListsAllTables(t *testing.T) {
	out, err := execute(t, filepath.Join(t.TempDir(), "x.db"), "schema")
	require.NoError(t, err)
	for _, m := range schema.Modalities() {
		for _, st := range schema.Stages() {
			assert.Contains(t, out, schema.TableName(m, st))
		}
	}
	assert.Contains(t, out, "trials")
}

func TestSchemaCommand_ShowsColumns(t *testing.T) {
	out, err := execute(t, filepath.Join(t.TempDir(), "x.db"), "schema", "ppg_feature")
	require.NoError(t, err)
	assert.Contains(t, out, "hr_mean")
	assert.Contains(t, out, "ibi_sdnn")
	assert.Contains(t, out, "nullable")
}

func TestSchemaCommand_UnknownTable(t *testing.T) {
	_, err := execute(t, filepath.Join(t.TempDir(), "x.db"), "schema", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRunCommand_FullPipeline(t *testing.T) {
	dbFile := filepath.Join(t.TempDir(), "test.db")
	s, err := store.Open(dbFile, schema.MustLoad())
	require.NoError(t, err)
	testutil.SeedRaw(t, s, testutil.DefaultKeys, 40)
	require.NoError(t, s.Close())

	out, err := execute(t, dbFile, "run")
	require.NoError(t, err)
	assert.Contains(t, out, "eda_preprocess")
	assert.Contains(t, out, "face_feature")
}

func TestRunCommand_SingleStage(t *testing.T) {
	dbFile := filepath.Join(t.TempDir(), "test.db")
	s, err := store.Open(dbFile, schema.MustLoad())
	require.NoError(t, err)
	testutil.SeedRaw(t, s, testutil.DefaultKeys, 40)
	require.NoError(t, s.Close())

	out, err := execute(t, dbFile, "run", "--modality", "eda", "--stage", "preprocess")
	require.NoError(t, err)
	assert.Contains(t, out, "eda_preprocess")
	assert.NotContains(t, out, "eeg_preprocess")
}

func TestRunCommand_EmptyStoreFails(t *testing.T) {
	_, err := execute(t, filepath.Join(t.TempDir(), "empty.db"), "run")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestQueryCommand_CSV(t *testing.T) {
	out, err := execute(t, seededDB(t), "query", "stimulus_feature")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, "participant_id,trial_number,mean_temperature,max_temperature,mean_rating,max_rating,rating_auc", lines[0])
	assert.Len(t, lines, 1+len(testutil.DefaultKeys))
}

func TestQueryCommand_NotFound(t *testing.T) {
	_, err := execute(t, filepath.Join(t.TempDir(), "empty.db"), "query", "eda_feature")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestExcludeAddListAndFilteredQuery(t *testing.T) {
	dbFile := seededDB(t)

	_, err := execute(t, dbFile, "exclude", "add",
		"--participant", "1", "--trial", "2", "--reason", "sensor fault")
	require.NoError(t, err)

	out, err := execute(t, dbFile, "exclude", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "participant 1 trial 2: sensor fault")

	filtered, err := execute(t, dbFile, "query", "eda_feature", "--exclude-invalid")
	require.NoError(t, err)
	full, err := execute(t, dbFile, "query", "eda_feature")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(filtered), "\n"), 4)
	assert.Len(t, strings.Split(strings.TrimSpace(full), "\n"), 5)
}

func TestExportCommand_WritesWorkbook(t *testing.T) {
	dbFile := seededDB(t)
	out := filepath.Join(t.TempDir(), "features.xlsx")

	stdout, err := execute(t, dbFile, "export", "--out", out)
	require.NoError(t, err)
	// Six feature tables plus trials, but trials was never ingested here.
	assert.Contains(t, stdout, "wrote 6 sheets")
}

func TestExportCommand_RejectsNonXLSX(t *testing.T) {
	_, err := execute(t, seededDB(t), "export", "--out", "features.csv")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
