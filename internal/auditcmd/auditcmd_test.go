package auditcmd

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehigh-university-libraries/labelaudit/internal/config"
	"github.com/lehigh-university-libraries/labelaudit/internal/extract"
	"github.com/lehigh-university-libraries/labelaudit/internal/matcher"
	"github.com/lehigh-university-libraries/labelaudit/internal/results"
	"github.com/lehigh-university-libraries/labelaudit/internal/storage"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
}

func run(t *testing.T, cmd *cobra.Command, args ...string) string {
	t.Helper()
	for _, k := range []string{config.EnvFuzzyThreshold, config.EnvConcurrency, config.EnvDB, config.EnvOCRProvider, config.EnvOCRModel} {
		t.Setenv(k, "")
	}
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.ExecuteContext(context.Background()), out.String())
	return out.String()
}

func fixture(t *testing.T) (labels, texts string) {
	t.Helper()
	root := t.TempDir()
	labels = filepath.Join(root, "labels")
	texts = filepath.Join(root, "texts")
	writeFiles(t, labels, map[string]string{
		"a.json": `{"Invoice Number": "INV-001", "Total": "10.00"}`,
		"b.json": `{"Invoice Number": "INV-999", "Note": null}`,
		"c.json": `{"Invoice Number": `,
	})
	writeFiles(t, texts, map[string]string{
		"a.txt": "Invoice Number: INV-001\nTotal: 10.00",
		"b.txt": "Invoice Number: INV-002",
	})
	return labels, texts
}

func TestVerifyCommand(t *testing.T) {
	labels, texts := fixture(t)
	outDir := t.TempDir()
	output := filepath.Join(outDir, "results.csv")
	issues := filepath.Join(outDir, "issues")
	db := filepath.Join(outDir, "runs.db")

	out := run(t, NewVerifyCmd(),
		"--records", labels, "--documents", texts,
		"--output", output, "--issues", issues, "--db", db, "--concurrency", "2")

	assert.Contains(t, out, "LABEL VERIFICATION SUMMARY")
	assert.Contains(t, out, "Unparseable:        1")

	rows, err := results.ReadCSVFile(output)
	require.NoError(t, err)
	assert.Len(t, rows, 4)

	missing, err := results.ReadCSVFile(filepath.Join(issues, results.MissingFile))
	require.NoError(t, err)
	for _, r := range missing {
		assert.Equal(t, matcher.StatusMissing, r.Status)
	}

	store, err := storage.OpenSQLite(db)
	require.NoError(t, err)
	defer store.Close()
	runs, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 2, runs[0].Summary.Records)
	assert.Equal(t, 1, runs[0].Summary.Verified)
}

func TestVerifyBundle(t *testing.T) {
	dir := t.TempDir()
	bundle := filepath.Join(dir, "bundle.jsonl")
	writeFiles(t, dir, map[string]string{
		"bundle.jsonl": `{"id": "x", "label": {"Seller": "ACME"}, "text": "Sold by ACME"}` + "\n",
	})
	output := filepath.Join(dir, "run.yaml")

	run(t, NewVerifyCmd(), "--records", bundle, "--output", output)

	spec, err := results.ReadYAML(output)
	require.NoError(t, err)
	require.Len(t, spec.Report.Rows, 1)
	assert.Equal(t, matcher.StatusFound, spec.Report.Rows[0].Status)
	assert.Equal(t, []string{"x"}, spec.Report.Verified)
}

func TestVerifyNeedsTextSource(t *testing.T) {
	labels, _ := fixture(t)
	cmd := NewVerifyCmd()
	cmd.SetArgs([]string{"--records", labels})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	assert.Error(t, cmd.Execute())
}

func TestMatchCommand(t *testing.T) {
	out := run(t, NewMatchCmd(), "INV-001", "--text", "invoice inv-001")
	assert.Contains(t, out, string(matcher.StatusFoundCaseInsensitive))

	out = run(t, NewMatchCmd(), "03/10/2023", "--field", "Invoice Date", "--text", "Date: 3/10/2023", "--json")
	assert.Contains(t, out, `"status"`)
}

func TestConsistencyCommand(t *testing.T) {
	labels, texts := fixture(t)
	out := run(t, NewConsistencyCmd(), "--records", labels, "--documents", texts, "--inventory")
	assert.Contains(t, out, "Records without a document (1):\n  c\n")
	assert.Contains(t, out, "Documents without a record (0):")
}

func TestDuplicatesCommand(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.json": `{"x": 1, "y": "z"}`,
		"b.json": `{"y": "z", "x": 1}`,
		"c.json": `{"x": 2}`,
		"d.json": `not json`,
	})
	out := run(t, NewDuplicatesCmd(), "--records", dir)
	assert.Contains(t, out, "keep a, duplicates: b")

	out = run(t, NewDuplicatesCmd(), "--records", dir, "--yaml")
	assert.Contains(t, out, "keep: a")
}

func TestReportCommand(t *testing.T) {
	labels, texts := fixture(t)
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "results.csv")
	run(t, NewVerifyCmd(), "--records", labels, "--documents", texts, "--output", csvPath)

	xlsx := filepath.Join(dir, "results.xlsx")
	out := run(t, NewReportCmd(), "--results", csvPath, "--convert", xlsx, "--accept", "FOUND")
	assert.Contains(t, out, "LABEL VERIFICATION SUMMARY")
	assert.Contains(t, out, "Verified:           1")
	_, err := os.Stat(xlsx)
	assert.NoError(t, err)
}

func TestParseStatuses(t *testing.T) {
	got, err := parseStatuses("found, similar")
	require.NoError(t, err)
	assert.Equal(t, []matcher.Status{matcher.StatusFound, matcher.StatusSimilar}, got)

	_, err = parseStatuses("FOUND,MAYBE")
	assert.Error(t, err)
}

func TestExtractDir(t *testing.T) {
	in := t.TempDir()
	writeFiles(t, in, map[string]string{
		"a.txt":  "Invoice A",
		"a.md":   "shadowed",
		"b.md":   "Invoice B",
		"c.png":  "not really an image",
		"d.json": "{}",
	})
	out := filepath.Join(t.TempDir(), "texts")

	summary, err := ExtractDir(context.Background(), extract.New(extract.Options{}, nil), in, out, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, summary.Written)
	assert.Equal(t, []string{"a.txt"}, summary.Skipped)
	assert.Contains(t, summary.Failed, "c.png")

	data, err := os.ReadFile(filepath.Join(out, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "shadowed", string(data))

	_, err = os.Stat(filepath.Join(out, ErrorsFile))
	assert.NoError(t, err)
}

func TestVerifyLogsRunOnce(t *testing.T) {
	labels, texts := fixture(t)
	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	run(t, NewVerifyCmd(), "--records", labels, "--documents", texts, "--output", "")

	assert.Equal(t, 1, strings.Count(logs.String(), "Starting verification"))
	assert.Equal(t, 1, strings.Count(logs.String(), "Verification finished"))
}
