package output

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rgehrsitz/persreport/internal/domain"
)

// Formatter renders a run result into one output document
type Formatter interface {
	Name() string
	Format(result *domain.RunResult) ([]byte, error)
}

// FormatterFunc adapts a plain function to the Formatter interface
type FormatterFunc struct {
	ID string
	F  func(result *domain.RunResult) ([]byte, error)
}

func (f FormatterFunc) Name() string { return f.ID }

func (f FormatterFunc) Format(result *domain.RunResult) ([]byte, error) { return f.F(result) }

var formatters = map[string]Formatter{
	"mrl":     MRLFormatter{},
	"console": ConsoleFormatter{},
	"csv":     CSVSummarizer{},
	"json":    JSONFormatter{},
	"xlsx":    WorkbookFormatter{},
	"review":  ReviewFormatter,
}

var formatAliases = map[string]string{
	"send2drs": "mrl",
	"text":     "mrl",
	"validate": "xlsx",
	"excel":    "xlsx",
}

// AvailableFormatterNames lists the registered formatter names in sorted order
func AvailableFormatterNames() []string {
	names := make([]string, 0, len(formatters))
	for name := range formatters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AvailableFormatAliases lists the accepted alternative names in sorted order
func AvailableFormatAliases() []string {
	aliases := make([]string, 0, len(formatAliases))
	for alias := range formatAliases {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	return aliases
}

// GetFormatterByName resolves a formatter or alias; nil when unknown
func GetFormatterByName(name string) Formatter {
	if target, ok := formatAliases[name]; ok {
		name = target
	}
	return formatters[name]
}

// TimeTag is the default run tag, e.g. 2021-07-08-1530
func TimeTag(now time.Time) string {
	return now.Format("2006-01-02-1504")
}

// ReportFileName names the regulator text file for a check date
func ReportFileName(checkDate time.Time, tag string) string {
	return fmt.Sprintf("%s-Send2DRS-%s.txt", checkDate.Format("20060102"), tag)
}

// ValidationFileName names the validation workbook for a check date
func ValidationFileName(checkDate time.Time, tag string) string {
	return fmt.Sprintf("%s-Validate-%s.xlsx", checkDate.Format("20060102"), tag)
}

// FileNameFor picks the output file name a formatter writes to
func FileNameFor(f Formatter, checkDate time.Time, tag string) string {
	switch f.Name() {
	case "mrl":
		return ReportFileName(checkDate, tag)
	case "xlsx":
		return ValidationFileName(checkDate, tag)
	default:
		return fmt.Sprintf("%s-%s-%s.%s", checkDate.Format("20060102"), f.Name(), tag, extensionFor(f.Name()))
	}
}

func extensionFor(name string) string {
	switch name {
	case "console", "review":
		return "txt"
	default:
		return name
	}
}

// WriteFormatted formats the result and writes it into dir, returning the path
func WriteFormatted(dir string, f Formatter, result *domain.RunResult, tag string) (string, error) {
	if result == nil {
		return "", fmt.Errorf("no run result to write")
	}
	data, err := f.Format(result)
	if err != nil {
		return "", fmt.Errorf("failed to format %s output: %w", f.Name(), err)
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	path := filepath.Join(dir, FileNameFor(f, result.Period.CheckDate, tag))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// WriteRunFiles writes the regulator text file and the validation workbook
func WriteRunFiles(dir string, result *domain.RunResult, tag string) ([]string, error) {
	var paths []string
	for _, f := range []Formatter{MRLFormatter{}, WorkbookFormatter{}} {
		path, err := WriteFormatted(dir, f, result, tag)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
