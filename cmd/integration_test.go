package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/popstat-cli/internal/workspace"
)

// runCmd is a helper to execute the root command with args.
func runCmd(t *testing.T, args ...string) {
	t.Helper()
	// Reload config per invocation so tests with different HOMEs stay isolated
	cfg = nil
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
}

func writeCSV(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestCLI_InitAddListDatasets(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	csvPath := filepath.Join(home, "pop.csv")
	writeCSV(t, csvPath, "country,year,population\nGermany,2020,83000000\nFrance,2020,67000000\n")

	runCmd(t, "init", "demo", "-d", "demo workspace")
	runCmd(t, "add", "-w", "demo", csvPath, "--desc", "population snapshot")
	runCmd(t, "list", "--datasets", "-w", "demo")

	dir, err := resolveWorkspaceDirByName("demo")
	if err != nil {
		t.Fatalf("resolve workspace: %v", err)
	}
	w, err := workspace.Load(dir)
	if err != nil {
		t.Fatalf("load workspace: %v", err)
	}
	if len(w.Datasets) != 1 {
		t.Fatalf("datasets = %d, want 1", len(w.Datasets))
	}
	d := w.Sorted()[0]
	if d.Name != "pop.csv" || d.Rows != 2 {
		t.Fatalf("dataset = %+v", d)
	}
	if d.EntityCol != "country" || d.TimeCol != "year" || d.ValueCol != "population" {
		t.Fatalf("resolved schema = %s/%s/%s", d.EntityCol, d.TimeCol, d.ValueCol)
	}
}

func TestCLI_InitRefusesExistingWorkspace(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	runCmd(t, "init", "dup")
	cfg = nil
	rootCmd.SetArgs([]string{"init", "dup"})
	if err := rootCmd.Execute(); err == nil {
		t.Fatalf("expected error for existing workspace")
	}
}

func TestCLI_AnalyzeWritesSummary(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	csvPath := filepath.Join(home, "metrics.csv")
	writeCSV(t, csvPath, "country,year,population\nGermany,2020,83000000\nGermany,2020,83000000\nFrance,2020,\n")
	out := filepath.Join(home, "out.md")

	runCmd(t, "analyze", csvPath, "-o", out)

	body, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	s := string(body)
	for _, want := range []string{
		"[POPULATION ANALYSIS REPORT]",
		"Rows: 3 (clean 1)",
		"[SCHEMA]",
		"- entity: country",
		"- time: year",
		"- value: population",
		"[NOTES]",
		"clean: removed 1 duplicate rows",
		"clean: removed 1 rows with missing values",
		"clean: 1 rows remain",
	} {
		if !strings.Contains(s, want) {
			t.Fatalf("summary missing %q:\n%s", want, s)
		}
	}
}

func TestCLI_AnalyzeBatchWritesSummaries(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dataDir := filepath.Join(home, "data")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeCSV(t, filepath.Join(dataDir, "a.csv"), "country,year,population\nMalta,2020,515000\n")
	writeCSV(t, filepath.Join(dataDir, "b.csv"), "country,year,population\nCyprus,2020,1200000\n")
	outDir := filepath.Join(home, "sums")

	runCmd(t, "analyze-batch", filepath.Join(dataDir, "*.csv"), "--output-dir", outDir, "--quiet")

	for _, name := range []string{"a.summary.md", "b.summary.md"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Fatalf("missing summary %s: %v", name, err)
		}
	}
}

func TestCLI_ReportEuropeMarkdown(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	csvPath := filepath.Join(home, "world.csv")
	writeCSV(t, csvPath, strings.Join([]string{
		"country,year,population",
		"Germany,1999,81000000",
		"Germany,2020,83000000",
		"France,2020,67000000",
		"Brazil,2020,212000000",
		"",
	}, "\n"))
	out := filepath.Join(home, "report.md")

	runCmd(t, "report", csvPath, "--europe", "--from", "2000", "-o", out)

	body, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	s := string(body)
	for _, want := range []string{
		"[EUROPEAN POPULATION ANALYSIS REPORT]",
		"Countries: 2",
		"[TOP 2 COUNTRIES]",
		"1. Germany: 83000000",
		"2. France: 67000000",
		"[AGGREGATES BY COUNTRY]",
	} {
		if !strings.Contains(s, want) {
			t.Fatalf("report missing %q:\n%s", want, s)
		}
	}
	if strings.Contains(s, "Brazil") {
		t.Fatalf("report should not mention filtered countries:\n%s", s)
	}
}

func TestCLI_GrowthWritesCSV(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	csvPath := filepath.Join(home, "series.csv")
	writeCSV(t, csvPath, "country,year,population\nGermany,2001,150\nGermany,2000,100\n")
	out := filepath.Join(home, "growth.csv")

	runCmd(t, "growth", csvPath, "-o", out)

	body, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read growth csv: %v", err)
	}
	want := "country,year,population,growth_rate\nGermany,2000,100,\nGermany,2001,150,50\n"
	if string(body) != want {
		t.Fatalf("growth csv = %q, want %q", string(body), want)
	}
}
