package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rgehrsitz/persreport/internal/archive"
	"github.com/rgehrsitz/persreport/internal/calculation"
	"github.com/rgehrsitz/persreport/internal/config"
	"github.com/rgehrsitz/persreport/internal/domain"
	"github.com/rgehrsitz/persreport/internal/ingest"
	"github.com/rgehrsitz/persreport/internal/output"
	"github.com/spf13/cobra"
)

// simpleCLILogger implements calculation.Logger using the standard log package
type simpleCLILogger struct{}

func (simpleCLILogger) Debugf(format string, args ...any) { log.Printf("DEBUG: "+format, args...) }
func (simpleCLILogger) Infof(format string, args ...any)  { log.Printf("INFO: "+format, args...) }
func (simpleCLILogger) Warnf(format string, args ...any)  { log.Printf("WARN: "+format, args...) }
func (simpleCLILogger) Errorf(format string, args ...any) { log.Printf("ERROR: "+format, args...) }

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const controlDateLayout = "20060102"

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "persreport %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(cmd.OutOrStdout(), info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.String()
	}
	return ""
}

// fileExists checks if a file exists
func fileExists(filename string) bool {
	_, err := os.Stat(filename)
	return !os.IsNotExist(err)
}

// runOptions carries everything the run command needs
type runOptions struct {
	ConfigFile    string
	ControlDate   string
	PeriodSummary string
	Charges       string
	SummarySheet  string
	ChargesSheet  string
	Separator     string
	OutDir        string
	Tag           string
	ReportNumber  int
	ReportCount   int
	Correction    bool
	SingleEarning bool
	PriorMonth    bool
	ArchivePath   string
	Format        string
	Debug         bool
	Now           func() time.Time
}

var rootCmd = &cobra.Command{
	Use:   "persreport",
	Short: "PERS/DRS monthly contribution report generator",
	Long: `Reconciles a payroll period summary against the charge-date ledger,
splits pay periods that cross a month boundary, and writes the DRS
monthly report file together with an analyst validation workbook.`,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Reconcile one pay period and write the report files",
	Long: `Reconcile one pay period and write the report files.

Examples:
  persreport run --config persreport.yaml --date 20210708 \
      --period-summary summary.csv --charges charges.csv --out reports
  persreport run --date 20210708 --period-summary extract.xlsx --worksheet-summary Summary \
      --charges extract.xlsx --worksheet-charges Charges --correction
`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		opts := runOptions{Now: time.Now}
		opts.ConfigFile, _ = cmd.Flags().GetString("config")
		opts.ControlDate, _ = cmd.Flags().GetString("date")
		opts.PeriodSummary, _ = cmd.Flags().GetString("period-summary")
		opts.Charges, _ = cmd.Flags().GetString("charges")
		opts.SummarySheet, _ = cmd.Flags().GetString("worksheet-summary")
		opts.ChargesSheet, _ = cmd.Flags().GetString("worksheet-charges")
		opts.Separator, _ = cmd.Flags().GetString("separator")
		opts.OutDir, _ = cmd.Flags().GetString("out")
		opts.Tag, _ = cmd.Flags().GetString("tag")
		opts.ReportNumber, _ = cmd.Flags().GetInt("report-number")
		opts.ReportCount, _ = cmd.Flags().GetInt("report-count")
		opts.Correction, _ = cmd.Flags().GetBool("correction")
		opts.SingleEarning, _ = cmd.Flags().GetBool("single-period")
		opts.PriorMonth, _ = cmd.Flags().GetBool("prior-month")
		opts.ArchivePath, _ = cmd.Flags().GetString("archive")
		opts.Format, _ = cmd.Flags().GetString("format")
		opts.Debug, _ = cmd.Flags().GetBool("debug")

		if err := runReport(cmd.Context(), opts, cmd.OutOrStdout()); err != nil {
			log.Fatal(err)
		}
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		configFile, _ := cmd.Flags().GetString("config")

		parser := config.NewInputParser()
		if _, err := parser.LoadFromFile(configFile); err != nil {
			log.Fatal(err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Configuration file %s is valid\n", configFile)
	},
}

var periodsCmd = &cobra.Command{
	Use:   "periods",
	Short: "List configured pay periods or show the one selected for a date",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		configFile, _ := cmd.Flags().GetString("config")
		controlDate, _ := cmd.Flags().GetString("date")

		if err := showPeriods(configFile, controlDate, cmd.OutOrStdout()); err != nil {
			log.Fatal(err)
		}
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List runs recorded in the archive",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		archivePath, _ := cmd.Flags().GetString("archive")

		if err := showHistory(cmd.Context(), archivePath, cmd.OutOrStdout()); err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	runCmd.Flags().StringP("config", "c", config.DefaultFile, "Path to the configuration file")
	runCmd.Flags().StringP("date", "d", "", "Period control date YYYYMMDD near the target check date (default today)")
	runCmd.Flags().String("period-summary", "", "Period summary extract (CSV or XLSX)")
	runCmd.Flags().String("charges", "", "Charge-date ledger extract (CSV or XLSX)")
	runCmd.Flags().String("worksheet-summary", "", "Worksheet holding the period summary when reading XLSX")
	runCmd.Flags().String("worksheet-charges", "", "Worksheet holding the charge ledger when reading XLSX")
	runCmd.Flags().String("separator", ",", "Field separator for CSV extracts")
	runCmd.Flags().StringP("out", "o", ".", "Directory for the report files")
	runCmd.Flags().String("tag", "", "Tag for output file names (default current time)")
	runCmd.Flags().Int("report-number", 0, "Monthly report number 1-3 (default from the calendar)")
	runCmd.Flags().Int("report-count", 0, "Expected monthly report count 1-3 (default from the calendar)")
	runCmd.Flags().Bool("correction", false, "Produce a correction (C) report")
	runCmd.Flags().Bool("single-period", false, "Treat a split pay period as a single earning period")
	runCmd.Flags().Bool("prior-month", false, "Report under the month the pay period begins in")
	runCmd.Flags().String("archive", "", "SQLite archive to record the run in")
	runCmd.Flags().StringP("format", "f", "console", "Summary printed to stdout (console, csv, json, mrl, review)")
	runCmd.Flags().Bool("debug", false, "Enable debug logging")
	_ = runCmd.MarkFlagRequired("period-summary")
	_ = runCmd.MarkFlagRequired("charges")

	validateCmd.Flags().StringP("config", "c", config.DefaultFile, "Path to the configuration file")

	periodsCmd.Flags().StringP("config", "c", config.DefaultFile, "Path to the configuration file")
	periodsCmd.Flags().StringP("date", "d", "", "Show the period selected for this control date YYYYMMDD")

	historyCmd.Flags().String("archive", "persreport.db", "SQLite archive to read")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(periodsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runReport performs one reconciliation run end to end
func runReport(ctx context.Context, opts runOptions, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	cfg, err := config.NewInputParser().LoadFromFile(opts.ConfigFile)
	if err != nil {
		return err
	}

	control, err := parseControlDate(opts.ControlDate, now())
	if err != nil {
		return err
	}
	params := domain.RunParameters{
		PeriodControlDate:   control,
		ReportNumber:        opts.ReportNumber,
		ReportCount:         opts.ReportCount,
		Correction:          opts.Correction,
		UsePriorMonth:       opts.PriorMonth,
		SingleEarningPeriod: opts.SingleEarning,
	}
	if err := validateOverride("report number", params.ReportNumber); err != nil {
		return err
	}
	if err := validateOverride("report count", params.ReportCount); err != nil {
		return err
	}

	formatter := output.GetFormatterByName(opts.Format)
	if formatter == nil {
		return fmt.Errorf("unsupported format: %s (available: %s)", opts.Format, strings.Join(output.AvailableFormatterNames(), ", "))
	}
	if formatter.Name() == "xlsx" {
		return fmt.Errorf("the validation workbook is always written to the output directory; choose a text format for stdout")
	}

	sep, err := separatorRune(opts.Separator)
	if err != nil {
		return err
	}
	summaries, err := readPeriodSummary(opts.PeriodSummary, opts.SummarySheet, sep)
	if err != nil {
		return err
	}
	charges, err := readCharges(opts.Charges, opts.ChargesSheet, sep)
	if err != nil {
		return err
	}

	engine := calculation.NewReconciliationEngine(cfg)
	if opts.Debug {
		engine.SetLogger(simpleCLILogger{})
	}
	result, err := engine.Run(ctx, summaries, charges, params)
	if err != nil {
		return err
	}

	tag := opts.Tag
	if tag == "" {
		tag = output.TimeTag(now())
	}
	paths, err := output.WriteRunFiles(opts.OutDir, result, tag)
	if err != nil {
		return err
	}

	if opts.ArchivePath != "" {
		store, err := archive.New(opts.ArchivePath)
		if err != nil {
			return err
		}
		defer store.Close()
		id, err := store.SaveRun(ctx, result)
		if err != nil {
			return err
		}
		log.Printf("archived run %s in %s", id, opts.ArchivePath)
	}

	data, err := formatter.Format(result)
	if err != nil {
		return err
	}
	if _, err := stdout.Write(data); err != nil {
		return err
	}
	for _, p := range paths {
		log.Printf("wrote %s", p)
	}
	return nil
}

func showPeriods(configFile, controlDate string, w io.Writer) error {
	cfg, err := config.NewInputParser().LoadFromFile(configFile)
	if err != nil {
		return err
	}
	engine := calculation.NewReconciliationEngine(cfg)

	if controlDate == "" {
		fmt.Fprintf(w, "%-12s %-12s %-12s %-6s %s\n", "BEGIN", "END", "CHECK", "SPLIT", "REPORT")
		for _, p := range engine.Calendar.Periods() {
			fmt.Fprintf(w, "%-12s %-12s %-12s %-6t %02d/%02d\n",
				p.BeginDate.Format("2006-01-02"), p.EndDate.Format("2006-01-02"), p.CheckDate.Format("2006-01-02"),
				p.IsSplit(), p.ReportNumber, p.ReportCount)
		}
		return nil
	}

	control, err := parseControlDate(controlDate, time.Now())
	if err != nil {
		return err
	}
	pc, err := engine.SelectPeriod(domain.RunParameters{PeriodControlDate: control})
	if err != nil {
		return err
	}
	first, second := calculation.WorkDayRatios(pc.Period)
	fmt.Fprintf(w, "Pay period:     %s\n", pc.Period)
	fmt.Fprintf(w, "Report:         %s %s of %s\n", pc.ReportPeriod, pc.ReportNumber, pc.ReportCount)
	fmt.Fprintf(w, "Split:          %t\n", pc.Split)
	if pc.Split {
		fmt.Fprintf(w, "Boundary:       %s\n", pc.Boundary.Format("2006-01-02"))
		fmt.Fprintf(w, "Earning months: %s / %s\n", pc.PriorEarningPeriod, pc.EarningPeriod)
		fmt.Fprintf(w, "Rate change:    %t\n", pc.RateChange)
	}
	fmt.Fprintf(w, "Workday ratios: %s / %s\n", first.StringFixed(3), second.StringFixed(3))
	return nil
}

func showHistory(ctx context.Context, archivePath string, w io.Writer) error {
	if !fileExists(archivePath) {
		return fmt.Errorf("archive %s does not exist", archivePath)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	store, err := archive.New(archivePath)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns(ctx)
	if err != nil {
		return err
	}
	for _, r := range runs {
		fmt.Fprintf(w, "%s  %s  %s %s %s/%s  split=%t  records=%d  %s\n",
			r.ID, r.CheckDate.Format("2006-01-02"), r.ReportPeriod, r.ReportType, r.ReportNumber, r.ReportCount,
			r.Split, r.TotalRecords, r.CreatedAt.Format(time.RFC3339))
	}
	return nil
}

func parseControlDate(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse(controlDateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid control date %q, want YYYYMMDD: %w", s, err)
	}
	return t, nil
}

func validateOverride(name string, v int) error {
	if v < 0 || v > 3 {
		return fmt.Errorf("%s must be between 1 and 3, got %d", name, v)
	}
	return nil
}

func separatorRune(s string) (rune, error) {
	switch {
	case s == "":
		return ',', nil
	case s == `\t` || s == "tab":
		return '\t', nil
	case len([]rune(s)) == 1:
		return []rune(s)[0], nil
	default:
		return 0, fmt.Errorf("separator must be a single character, got %q", s)
	}
}

func isWorkbook(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".xlsx" || ext == ".xlsm"
}

func readPeriodSummary(path, sheet string, sep rune) ([]domain.EmployeePeriodRecord, error) {
	if isWorkbook(path) {
		return ingest.ReadPeriodSummaryXLSX(path, sheet)
	}
	return ingest.ReadPeriodSummaryFile(path, sep)
}

func readCharges(path, sheet string, sep rune) ([]domain.ChargeDateRecord, error) {
	if isWorkbook(path) {
		return ingest.ReadChargeLedgerXLSX(path, sheet)
	}
	return ingest.ReadChargeLedgerFile(path, sep)
}
