// Package commands_test provides tests for CLI command creation.
package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maive-lab/mockcsv/internal/cli/config"
	"github.com/maive-lab/mockcsv/internal/cli/testutil"
	"github.com/spf13/cobra"
)

// loadProject creates a test project, enters it and loads its config.
func loadProject(t *testing.T, env map[string]string) string {
	t.Helper()
	dir := testutil.SetupTestProject(t)
	t.Chdir(dir)
	for k, v := range env {
		t.Setenv(k, v)
	}

	config.ResetConfig()
	t.Cleanup(config.ResetConfig)
	_, err := config.LoadConfig("", nil)
	require.NoError(t, err)

	wd, err := os.Getwd()
	require.NoError(t, err)
	return wd
}

func execute(cmd *cobra.Command, args ...string) (string, string, error) {
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestNewGenerateCommand(t *testing.T) {
	cmd := NewGenerateCommand()

	assert.Equal(t, "generate", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")

	flags := []string{"seed", "dry-run", "watch", "no-history"}
	for _, flag := range flags {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}

	assert.NotEmpty(t, cmd.Aliases, "generate command should have aliases")
	assert.Equal(t, "gen", cmd.Aliases[0], "generate command should have 'gen' alias")
}

func TestNewInspectCommand(t *testing.T) {
	cmd := NewInspectCommand()

	assert.Equal(t, "inspect <file>", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")
	assert.NotNil(t, cmd.Flags().Lookup("limit"))
	assert.NotNil(t, cmd.Flags().Lookup("seed"))
}

func TestNewHistoryCommand(t *testing.T) {
	cmd := NewHistoryCommand()

	assert.Equal(t, "history [run-id]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotNil(t, cmd.Flags().Lookup("limit"))
}

func TestGenerate_Markdown(t *testing.T) {
	dir := loadProject(t, nil)

	out, _, err := execute(NewGenerateCommand(), "--seed", "1", "--no-history")
	require.NoError(t, err)

	testutil.AssertNoANSI(t, out)
	testutil.AssertValidMarkdown(t, out)
	testutil.AssertContains(t, out, "# Generate Report")
	testutil.AssertContains(t, out, "- **Seed:** 1")
	testutil.AssertContains(t, out, "- **Tables:** 1 succeeded, 1 failed")
	testutil.AssertContains(t, out, "- **Rows:** 2 kept of 3 read")
	testutil.AssertContains(t, out, "- **Dropped:** ROW002 x1")
	testutil.AssertContains(t, out, "- [success] trials.csv: 2/2 rows -> trials_maive.csv")
	testutil.AssertContains(t, out, "- [failed] notes.csv: TBL003")
	testutil.AssertContains(t, out, "| Mock Data 1 | trials.csv | 2 |")

	cleaned, err := os.ReadFile(filepath.Join(dir, "out", "trials_maive.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(cleaned), "effect,se,n,study_id\n0.5,0.1,100,1\n")

	module, err := os.ReadFile(filepath.Join(dir, "out", "mockData.ts"))
	require.NoError(t, err)
	assert.Contains(t, string(module), "export const mockCsvFiles")

	_, err = os.Stat(filepath.Join(dir, ".mockcsv", "state.db"))
	assert.ErrorIs(t, err, os.ErrNotExist, "--no-history must not create the state database")
}

func TestGenerate_DryRun(t *testing.T) {
	dir := loadProject(t, nil)

	out, _, err := execute(NewGenerateCommand(), "--dry-run", "--no-history")
	require.NoError(t, err)
	testutil.AssertContains(t, out, "Dry run: nothing was written")

	_, err = os.Stat(filepath.Join(dir, "out"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestGenerate_NothingSurvives(t *testing.T) {
	dir := loadProject(t, nil)
	require.NoError(t, os.Remove(filepath.Join(dir, "data", "trials.csv")))

	out, _, err := execute(NewGenerateCommand(), "--no-history")
	require.NoError(t, err)
	testutil.AssertContains(t, out, "No dataset survived")
}

func TestGenerate_MissingSourceDir(t *testing.T) {
	dir := loadProject(t, nil)
	require.NoError(t, os.RemoveAll(filepath.Join(dir, "data")))

	_, _, err := execute(NewGenerateCommand(), "--no-history")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source directory does not exist")
}

func TestGenerate_WatchRejectsSharedOutput(t *testing.T) {
	loadProject(t, map[string]string{"MOCKCSV_OUT_DIR": "data"})

	_, _, err := execute(NewGenerateCommand(), "--watch", "--no-history")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out_dir must differ")
}

func TestGenerate_JSONAndHistory(t *testing.T) {
	loadProject(t, map[string]string{"MOCKCSV_OUTPUT": "json"})

	out, _, err := execute(NewGenerateCommand(), "--seed", "42")
	require.NoError(t, err)

	var report struct {
		RunID     string `json:"run_id"`
		Seed      uint64 `json:"seed"`
		Succeeded int    `json:"succeeded"`
		Failed    int    `json:"failed"`
		Tables    []struct {
			Source string `json:"source"`
			Status string `json:"status"`
		} `json:"tables"`
		Written []string `json:"written"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, uint64(42), report.Seed)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Tables, 2)
	assert.Equal(t, "notes.csv", report.Tables[0].Source)
	assert.Equal(t, "failed", report.Tables[0].Status)
	assert.Len(t, report.Written, 2)

	out, _, err = execute(NewHistoryCommand())
	require.NoError(t, err)

	var history HistoryOutput
	require.NoError(t, json.Unmarshal([]byte(out), &history))
	require.Len(t, history.Runs, 1)
	assert.Equal(t, report.RunID, history.Runs[0].ID)
	assert.Equal(t, uint64(42), history.Runs[0].Seed)
	assert.Equal(t, 3, history.Runs[0].TotalRows)
	assert.Equal(t, 2, history.Runs[0].KeptRows)

	out, _, err = execute(NewHistoryCommand(), report.RunID)
	require.NoError(t, err)

	var shown HistoryRun
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	require.Len(t, shown.Tables, 2)
	assert.Equal(t, "TBL003", shown.Tables[0].Code)
	assert.Equal(t, "Mock Data 1", shown.Tables[1].DisplayName)
}

func TestHistory_Empty(t *testing.T) {
	loadProject(t, nil)

	out, _, err := execute(NewHistoryCommand())
	require.NoError(t, err)
	testutil.AssertContains(t, out, "No runs recorded yet")
}

func TestHistory_UnknownRun(t *testing.T) {
	loadProject(t, nil)

	_, _, err := execute(NewHistoryCommand(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run nope not found")
}

func TestInspect_Markdown(t *testing.T) {
	loadProject(t, nil)

	out, _, err := execute(NewInspectCommand(), filepath.Join("data", "trials.csv"), "--seed", "3")
	require.NoError(t, err)

	testutil.AssertNoANSI(t, out)
	testutil.AssertContains(t, out, "# trials.csv")
	testutil.AssertContains(t, out, "- **Delimiter:** comma")
	testutil.AssertContains(t, out, "- **Rows:** 2 kept of 2 read")
	testutil.AssertContains(t, out, "| effect | 0 | effect | primary |")
	testutil.AssertContains(t, out, "| study_id | - |")
	testutil.AssertContains(t, out, "| effect | se | n | study_id |")
	testutil.AssertContains(t, out, "| 0.5 | 0.1 | 100 | 1 |")
}

func TestInspect_DroppedRows(t *testing.T) {
	loadProject(t, nil)

	out, errOut, err := execute(NewInspectCommand(), filepath.Join("data", "notes.csv"))
	require.NoError(t, err)
	testutil.AssertContains(t, out, "## Dropped rows")
	testutil.AssertContains(t, out, "- **ROW002:** 1")
	testutil.AssertContains(t, errOut, "TBL003 notes.csv")
}

func TestInspect_MissingFile(t *testing.T) {
	loadProject(t, nil)

	_, _, err := execute(NewInspectCommand(), "missing.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot inspect missing.csv")
}
