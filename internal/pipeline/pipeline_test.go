package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maive-lab/mockcsv/internal/materialize"
	"github.com/maive-lab/mockcsv/internal/record"
	"github.com/maive-lab/mockcsv/internal/testutil"
)

func testConfig(t *testing.T, sourceDir string, seed uint64) Config {
	t.Helper()
	out := t.TempDir()
	return Config{
		SourceDir:   sourceDir,
		Exclude:     []string{"(with fitted variances)"},
		Seed:        &seed,
		OutputDir:   filepath.Join(out, "maive_processed"),
		ModulePath:  filepath.Join(out, "mockCsvFiles.ts"),
		Materialize: materialize.DefaultOptions(),
		Logger:      testutil.NewTestLogger(t),
	}
}

func TestRun_EndToEnd(t *testing.T) {
	dir := testutil.WriteSources(t, map[string]string{
		"a.csv": testutil.ValidSource,
		"b.csv": testutil.JunkSource,
	})
	cfg := testConfig(t, dir, 1)

	report, err := New(cfg).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 5, report.TotalRows)
	assert.Equal(t, 3, report.KeptRows)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, uint64(1), report.Seed)

	require.Len(t, report.Tables, 2)
	a, b := report.Tables[0], report.Tables[1]

	assert.Equal(t, "a.csv", a.Source)
	assert.Equal(t, TableOK, a.Status)
	assert.Equal(t, "Mock Data 1", a.DisplayName)
	assert.Equal(t, "a_maive.csv", a.OutputFilename)
	assert.Equal(t, "comma", a.Delimiter)
	require.NotNil(t, a.Summary)
	assert.Equal(t, 50, a.Summary.TotalN)

	assert.Equal(t, "b.csv", b.Source)
	assert.Equal(t, TableFailed, b.Status)
	require.NotNil(t, b.Diagnostic)
	assert.Equal(t, CodeNoValidRows, b.Diagnostic.Code)
	assert.Equal(t, 0, b.RowsKept)
	assert.Equal(t, map[Code]int{CodeInvalidEffect: 2}, b.Dropped)
	assert.Empty(t, b.DisplayName)

	cleaned, err := os.ReadFile(filepath.Join(cfg.OutputDir, "a_maive.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(cleaned), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "effect,se,n,study_id", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "0.5,0.1,12,1"), lines[1])

	_, err = os.Stat(filepath.Join(cfg.OutputDir, "b_maive.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	module, err := os.ReadFile(cfg.ModulePath)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(module), "name: \"Mock Data"))
	assert.Contains(t, string(module), `original_filename: "a.csv",`)
	assert.Equal(t, []string{
		filepath.Join(cfg.OutputDir, "a_maive.csv"),
		cfg.ModulePath,
	}, report.Written)
}

func TestRun_SeedIsReproducible(t *testing.T) {
	var big strings.Builder
	big.WriteString("effect,se,n\n")
	for i := range 200 {
		big.WriteString("0.")
		big.WriteString(strings.Repeat("1", i%5+1))
		big.WriteString(",0.2,10\n")
	}
	dir := testutil.WriteSources(t, map[string]string{
		"a.csv": testutil.ValidSource,
		"c.csv": big.String(),
	})

	run := func(seed uint64) []byte {
		cfg := testConfig(t, dir, seed)
		_, err := New(cfg).Run(context.Background())
		require.NoError(t, err)
		data, err := os.ReadFile(cfg.ModulePath)
		require.NoError(t, err)
		return data
	}

	first := run(42)
	assert.Equal(t, first, run(42))
	assert.NotEqual(t, first, run(43), "200 rows should group differently under another seed")
}

func TestRun_UnseededKeepsShape(t *testing.T) {
	dir := testutil.WriteSources(t, map[string]string{"a.csv": testutil.ValidSource})
	cfg := testConfig(t, dir, 0)
	cfg.Seed = nil

	report, err := New(cfg).Run(context.Background())
	require.NoError(t, err)

	content := report.Artifacts.Entries[0].Content
	for _, line := range strings.Split(content, "\n") {
		assert.Len(t, strings.Split(line, ","), 4, line)
	}
}

func TestRun_DefaultGroupingProbability(t *testing.T) {
	var b strings.Builder
	b.WriteString("effect,se,n\n")
	for i := 0; i < 200; i++ {
		fmt.Fprintf(&b, "0.%d,0.1,%d\n", i%10, 10+i)
	}
	dir := testutil.WriteSources(t, map[string]string{"a.csv": b.String()})

	report, err := New(testConfig(t, dir, 1)).Run(context.Background())
	require.NoError(t, err)

	groups := make(map[string]bool)
	for _, line := range strings.Split(report.Artifacts.Entries[0].Content, "\n") {
		fields := strings.Split(line, ",")
		groups[fields[len(fields)-1]] = true
	}
	assert.Greater(t, len(groups), 10)
}

func TestRun_TableGroupingIndependentOfOtherSources(t *testing.T) {
	alone := testutil.WriteSources(t, map[string]string{"a.csv": testutil.ValidSource})
	withOthers := testutil.WriteSources(t, map[string]string{
		"0first.csv": testutil.ValidSource,
		"a.csv":      testutil.ValidSource,
	})

	r1, err := New(testConfig(t, alone, 9)).Run(context.Background())
	require.NoError(t, err)
	r2, err := New(testConfig(t, withOthers, 9)).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, r1.Artifacts.Entries[0].Content, r2.Artifacts.Entries[1].Content)
}

func TestRun_ExplicitStudyColumn(t *testing.T) {
	dir := testutil.WriteSources(t, map[string]string{"s.csv": testutil.StudySource})

	report, err := New(testConfig(t, dir, 1)).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Succeeded)

	assert.Equal(t, "0.4,0.2,50,Site; A\n0.1,0.1,20,Site B", report.Artifacts.Entries[0].Content)
	assert.Equal(t, 2, report.Tables[0].Summary.StudyGroups)
}

func TestRun_TableFailures(t *testing.T) {
	dir := testutil.WriteSources(t, map[string]string{
		"empty.csv":  "",
		"header.csv": "effect,se,n\n",
		"short.csv":  testutil.ShortRowSource,
		"ok.csv":     testutil.ValidSource,
	})

	report, err := New(testConfig(t, dir, 1)).Run(context.Background())
	require.NoError(t, err)

	codes := map[string]Code{}
	for _, d := range report.Diagnostics() {
		codes[d.Source] = d.Code
	}
	assert.Equal(t, map[string]Code{
		"empty.csv":  CodeTooFewRows,
		"header.csv": CodeTooFewRows,
		"short.csv":  CodeNoValidRows,
	}, codes)

	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 3, report.Failed)
	assert.Equal(t, map[Code]int{CodeShortRow: 2}, report.Dropped())
	assert.Equal(t, "Mock Data 1", report.Tables[2].DisplayName, "ok.csv sorts third and is the only dataset")
}

func TestRun_Unreadable(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores file permissions")
	}
	dir := testutil.WriteSources(t, map[string]string{"locked.csv": testutil.ValidSource})
	require.NoError(t, os.Chmod(filepath.Join(dir, "locked.csv"), 0o000))

	report, err := New(testConfig(t, dir, 1)).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Tables, 1)
	assert.Equal(t, CodeUnreadable, report.Tables[0].Diagnostic.Code)
}

func TestRun_Exclusion(t *testing.T) {
	dir := testutil.WriteSources(t, map[string]string{
		"a.csv":                         testutil.ValidSource,
		"a (with fitted variances).csv": testutil.ValidSource,
		"notes.txt":                     testutil.ValidSource,
		"nested/inner.csv":              testutil.ValidSource,
	})

	report, err := New(testConfig(t, dir, 1)).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Tables, 1)
	assert.Equal(t, "a.csv", report.Tables[0].Source)
}

func TestRun_NothingSurvives(t *testing.T) {
	dir := testutil.WriteSources(t, map[string]string{"b.csv": testutil.JunkSource})
	cfg := testConfig(t, dir, 1)

	report, err := New(cfg).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Succeeded)
	assert.Empty(t, report.Written)

	_, err = os.Stat(cfg.ModulePath)
	assert.ErrorIs(t, err, os.ErrNotExist)
	_, err = os.Stat(cfg.OutputDir)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRun_DryRun(t *testing.T) {
	dir := testutil.WriteSources(t, map[string]string{"a.csv": testutil.ValidSource})
	cfg := testConfig(t, dir, 1)
	cfg.DryRun = true

	report, err := New(cfg).Run(context.Background())
	require.NoError(t, err)
	assert.True(t, report.DryRun)
	assert.Empty(t, report.Written)
	require.NotNil(t, report.Artifacts)
	assert.Len(t, report.Artifacts.Datasets, 1)

	_, err = os.Stat(cfg.ModulePath)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRun_MissingSourceDir(t *testing.T) {
	cfg := testConfig(t, filepath.Join(t.TempDir(), "missing"), 1)

	report, err := New(cfg).Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, report)
	assert.ErrorIs(t, err, ErrSourceDir)
	assert.True(t, IsStructural(err))
}

func TestRun_Cancelled(t *testing.T) {
	dir := testutil.WriteSources(t, map[string]string{"a.csv": testutil.ValidSource})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(testConfig(t, dir, 1)).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, IsStructural(err))
}

func TestNew_Defaults(t *testing.T) {
	p := New(Config{})
	assert.Equal(t, []string{".csv"}, p.cfg.Extensions)
	assert.Equal(t, 1024, p.cfg.SampleBytes)
	require.NotNil(t, p.cfg.IncrementProbability)
	assert.InDelta(t, record.DefaultIncrementProbability, *p.cfg.IncrementProbability, 1e-12)

	zero := 0.0
	p = New(Config{IncrementProbability: &zero})
	assert.Zero(t, *p.cfg.IncrementProbability)
	assert.NotNil(t, p.logger)
	assert.NotNil(t, p.resolver)
}

func TestTableRand(t *testing.T) {
	a1 := TableRand(5, "a.csv").Uint64()
	a2 := TableRand(5, "a.csv").Uint64()
	b := TableRand(5, "b.csv").Uint64()
	assert.Equal(t, a1, a2)
	assert.NotEqual(t, a1, b)
}

func TestInspect(t *testing.T) {
	dir := testutil.WriteSources(t, map[string]string{"studies.csv": testutil.StudySource})

	outcome, records := New(testConfig(t, dir, 3)).Inspect(filepath.Join(dir, "studies.csv"))

	assert.Equal(t, TableOK, outcome.Status)
	assert.Equal(t, "comma", outcome.Delimiter)
	require.NotNil(t, outcome.Resolution)
	assert.Equal(t, 3, outcome.Resolution.Roles.Study)
	require.Len(t, records, 2)
	assert.Equal(t, "Site; A", records[0].StudyID)
	assert.Equal(t, 20, records[1].N)

	_, err := os.Stat(filepath.Join(dir, "out"))
	assert.ErrorIs(t, err, os.ErrNotExist, "inspect writes nothing")
}
