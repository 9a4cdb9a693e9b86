package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func testdataPath(name string) string {
	return filepath.Join("..", "..", "test", "integration", "testdata", name)
}

func TestRootCommand(t *testing.T) {
	cmd := rootCmd

	if cmd == nil {
		t.Fatal("Expected root command to be created")
	}

	if cmd.Use != "persreport" {
		t.Errorf("Expected root command use to be 'persreport', got %s", cmd.Use)
	}

	if cmd.Short == "" {
		t.Error("Expected root command to have a short description")
	}

	if cmd.Long == "" {
		t.Error("Expected root command to have a long description")
	}
}

func TestRootCommand_Help(t *testing.T) {
	cmd := rootCmd
	cmd.SetArgs([]string{"--help"})

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)

	if err := cmd.Execute(); err != nil {
		t.Errorf("Expected no error for help command, got %v", err)
	}

	if buf.String() == "" {
		t.Error("Expected help command to show help text")
	}
}

func TestCommandSubcommands(t *testing.T) {
	expectedCommands := []string{"run", "validate", "periods", "history", "version"}

	cmd := rootCmd.Commands()
	for _, expectedCmd := range expectedCommands {
		found := false
		for _, c := range cmd {
			if c.Name() == expectedCmd {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Expected command '%s' to be registered with root command", expectedCmd)
		}
	}
}

func TestRunCommandFlags(t *testing.T) {
	for _, name := range []string{"config", "date", "period-summary", "charges", "separator", "out", "report-number",
		"report-count", "correction", "single-period", "prior-month", "archive", "format", "debug"} {
		if runCmd.Flag(name) == nil {
			t.Errorf("Expected run command to have --%s", name)
		}
	}
}

func TestRootCommand_InvalidCommand(t *testing.T) {
	cmd := rootCmd
	cmd.SetArgs([]string{"invalid-command"})

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)

	if err := cmd.Execute(); err == nil {
		t.Error("Expected error for invalid command")
	}
}

func TestFileExists(t *testing.T) {
	if !fileExists(testdataPath("persreport.yaml")) {
		t.Error("Expected test configuration to exist")
	}

	if fileExists("non_existing_file.txt") {
		t.Error("Expected non_existing_file.txt to not exist")
	}
}

func TestParseControlDate(t *testing.T) {
	now := time.Date(2021, time.July, 8, 15, 4, 5, 0, time.Local)

	got, err := parseControlDate("", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := time.Date(2021, time.July, 8, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	got, err = parseControlDate("20210812", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := time.Date(2021, time.August, 12, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	if _, err := parseControlDate("2021-08-12", now); err == nil {
		t.Error("Expected error for a dashed date")
	}
}

func TestSeparatorRune(t *testing.T) {
	tests := []struct {
		in      string
		want    rune
		wantErr bool
	}{
		{"", ',', false},
		{",", ',', false},
		{";", ';', false},
		{`\t`, '\t', false},
		{"tab", '\t', false},
		{"||", 0, true},
	}

	for _, tt := range tests {
		got, err := separatorRune(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("separatorRune(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("separatorRune(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestShowPeriods(t *testing.T) {
	var buf bytes.Buffer
	if err := showPeriods(testdataPath("persreport.yaml"), "", &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lines := strings.Split(strings.TrimSpace(buf.String()), "\n"); len(lines) != 4 {
		t.Errorf("Expected a header and three periods, got %d lines", len(lines))
	}

	buf.Reset()
	if err := showPeriods(testdataPath("persreport.yaml"), "20210708", &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Split:          true", "Boundary:       2021-07-01", "Rate change:    true", "Workday ratios: 0.800 / 0.200"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestRunReport(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "archive.db")
	opts := runOptions{
		ConfigFile:    testdataPath("persreport.yaml"),
		ControlDate:   "20210708",
		PeriodSummary: testdataPath("period_summary.csv"),
		Charges:       testdataPath("charges.csv"),
		Separator:     ",",
		OutDir:        dir,
		Tag:           "cli",
		ArchivePath:   archivePath,
		Format:        "mrl",
	}

	var stdout bytes.Buffer
	if err := runReport(context.Background(), opts, &stdout); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	written, err := os.ReadFile(filepath.Join(dir, "20210708-Send2DRS-cli.txt"))
	if err != nil {
		t.Fatalf("report file not written: %v", err)
	}
	if !bytes.Equal(written, stdout.Bytes()) {
		t.Error("Expected stdout in mrl format to match the report file")
	}
	if !strings.HasPrefix(string(written), "S,8821  ,202107,R,01,02,") {
		t.Errorf("unexpected summary line: %q", strings.SplitN(string(written), "\r\n", 2)[0])
	}
	if !fileExists(filepath.Join(dir, "20210708-Validate-cli.xlsx")) {
		t.Error("Expected validation workbook to be written")
	}

	var history bytes.Buffer
	if err := showHistory(context.Background(), archivePath, &history); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(history.String(), "2021-07-08  202107 R 01/02  split=true") {
		t.Errorf("Expected the run in the archive history, got %q", history.String())
	}
}

func TestRunReport_Errors(t *testing.T) {
	base := runOptions{
		ConfigFile:    testdataPath("persreport.yaml"),
		ControlDate:   "20210708",
		PeriodSummary: testdataPath("period_summary.csv"),
		Charges:       testdataPath("charges.csv"),
		OutDir:        t.TempDir(),
		Format:        "console",
	}

	tests := []struct {
		name   string
		modify func(o *runOptions)
		want   string
	}{
		{"unknown format", func(o *runOptions) { o.Format = "pdf" }, "unsupported format"},
		{"workbook to stdout", func(o *runOptions) { o.Format = "xlsx" }, "validation workbook"},
		{"bad date", func(o *runOptions) { o.ControlDate = "July 8" }, "invalid control date"},
		{"report number out of range", func(o *runOptions) { o.ReportNumber = 4 }, "report number"},
		{"no pay period", func(o *runOptions) { o.ControlDate = "20200101" }, "pay period"},
		{"missing extract", func(o *runOptions) { o.Charges = "missing.csv" }, "missing.csv"},
		{"bad separator", func(o *runOptions) { o.Separator = "::" }, "separator"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := base
			tt.modify(&opts)
			err := runReport(context.Background(), opts, &bytes.Buffer{})
			if err == nil {
				t.Fatal("Expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestShowHistory_MissingArchive(t *testing.T) {
	if err := showHistory(context.Background(), filepath.Join(t.TempDir(), "none.db"), &bytes.Buffer{}); err == nil {
		t.Error("Expected error for a missing archive")
	}
}
