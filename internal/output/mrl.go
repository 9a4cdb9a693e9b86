package output

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/rgehrsitz/persreport/internal/domain"
	"github.com/shopspring/decimal"
)

// Field widths of the regulator layout, decimal point included
const (
	summaryMoneyWidth  = 12
	summaryHoursWidth  = 11
	benefitMoneyWidth  = 10
	benefitHoursWidth  = 5
	employerCodeWidth  = 6
	summaryTrailer     = "+000000000.0"
	benefitDaysWorked  = "+00.0"
	benefitStatusSpace = "   "
)

// MRLWriter renders a run as the monthly regulator report text file
type MRLWriter struct {
	// LineEnding terminates every line; the regulator accepts CRLF files
	LineEnding string
}

// NewMRLWriter creates a writer using CRLF line endings
func NewMRLWriter() *MRLWriter {
	return &MRLWriter{LineEnding: "\r\n"}
}

// Write emits the summary line, then every benefit line, then every contribution line
func (m *MRLWriter) Write(w io.Writer, result *domain.RunResult) error {
	if result == nil {
		return fmt.Errorf("no run result to export")
	}
	eol := m.LineEnding
	if eol == "" {
		eol = "\n"
	}

	bw := bufio.NewWriter(w)
	lines := make([]string, 0, 1+len(result.Output.Benefits)+len(result.Output.Contributions))
	lines = append(lines, SummaryLine(result))
	for _, row := range result.Output.Benefits {
		lines = append(lines, BenefitLine(result, row))
	}
	for _, row := range result.Output.Contributions {
		lines = append(lines, ContributionLine(result, row))
	}
	for _, line := range lines {
		if _, err := bw.WriteString(line + eol); err != nil {
			return fmt.Errorf("failed to write report line: %w", err)
		}
	}
	return bw.Flush()
}

// SummaryLine formats the S record
func SummaryLine(result *domain.RunResult) string {
	s := result.Output.Summary
	return strings.Join([]string{
		"S",
		employerCode(result.EmployerID),
		s.ReportPeriod,
		result.Params.ReportType(),
		twoDigits(s.ReportNumber),
		twoDigits(s.ReportCount),
		signedFixed(s.TotalCompensation, summaryMoneyWidth, 2),
		signedFixed(s.TotalEmployeeAmount, summaryMoneyWidth, 2),
		signedFixed(s.TotalEmployerAmount, summaryMoneyWidth, 2),
		signedFixed(s.TotalHours, summaryHoursWidth, 1),
		fmt.Sprintf("%d", s.TotalRecords),
		summaryTrailer,
	}, ",")
}

// BenefitLine formats one B record
func BenefitLine(result *domain.RunResult, row domain.BenefitRow) string {
	return strings.Join([]string{
		"B",
		employerCode(result.EmployerID),
		row.ReportPeriod,
		result.Params.ReportType(),
		twoDigits(row.ReportNumber),
		row.SSN,
		"P",
		row.PlanCode,
		row.TypeCode,
		row.EarningPeriod,
		" ",
		signedFixed(row.Hours, benefitHoursWidth, 1),
		benefitDaysWorked,
		signedFixed(row.Compensation, benefitMoneyWidth, 2),
		signedFixed(row.EmployerAmount, benefitMoneyWidth, 2),
		signedFixed(row.EmployeeAmount, benefitMoneyWidth, 2),
		row.Status + benefitStatusSpace,
	}, ",")
}

// ContributionLine formats one C record
func ContributionLine(result *domain.RunResult, row domain.ContributionRow) string {
	return strings.Join([]string{
		"C",
		employerCode(result.EmployerID),
		row.ReportPeriod,
		result.Params.ReportType(),
		twoDigits(row.ReportNumber),
		row.SSN,
		"P",
		signedFixed(row.EmployeeAmount, benefitMoneyWidth, 2),
		" ",
		row.InvestmentProgram,
		row.RateOption,
	}, ",")
}

// MRLFormatter adapts MRLWriter to the Formatter interface
type MRLFormatter struct{}

func (MRLFormatter) Name() string { return "mrl" }

func (MRLFormatter) Format(result *domain.RunResult) ([]byte, error) {
	var buf bytes.Buffer
	if err := NewMRLWriter().Write(&buf, result); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// signedFixed renders d as a sign followed by its rounded magnitude,
// zero-padded on the left to width characters
func signedFixed(d decimal.Decimal, width int, places int32) string {
	sign := "+"
	if d.IsNegative() {
		sign = "-"
	}
	digits := d.Abs().RoundBank(places).StringFixed(places)
	if pad := width - len(digits); pad > 0 {
		digits = strings.Repeat("0", pad) + digits
	}
	return sign + digits
}

func employerCode(id string) string {
	if id == "" {
		id = domain.DefaultEmployerID
	}
	return fmt.Sprintf("%-*s", employerCodeWidth, id)
}

func twoDigits(s string) string {
	s = strings.TrimSpace(s)
	for len(s) < 2 {
		s = "0" + s
	}
	return s
}
