package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rgehrsitz/persreport/internal/domain"
	"github.com/shopspring/decimal"
)

// ConsoleFormatter prints the run summary an operator checks before sending the file
type ConsoleFormatter struct{}

func (ConsoleFormatter) Name() string { return "console" }

func (ConsoleFormatter) Format(result *domain.RunResult) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("no run result to format")
	}
	var b bytes.Buffer
	out := result.Output
	s := out.Summary
	inv := out.Invoice

	line := strings.Repeat("=", 60)
	fmt.Fprintln(&b, line)
	fmt.Fprintln(&b, "PERS MONTHLY REPORT SUMMARY")
	fmt.Fprintln(&b, line)
	fmt.Fprintf(&b, "Employer:          %s\n", result.EmployerID)
	fmt.Fprintf(&b, "Pay Period:        %s\n", result.Period)
	fmt.Fprintf(&b, "Report:            %s %s (%s of %s)\n", s.ReportPeriod, result.Params.ReportType(), s.ReportNumber, s.ReportCount)
	if result.Split {
		fmt.Fprintf(&b, "Split Period:      %s / %s\n", result.Period.PriorEarningPeriod(), result.Period.EarningPeriod())
	} else {
		fmt.Fprintln(&b, "Split Period:      no")
	}
	if result.RateChange {
		fmt.Fprintln(&b, "Rate Change:       plan 2 member rate changes within the period")
	}
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "TOTALS")
	fmt.Fprintln(&b, strings.Repeat("-", 30))
	fmt.Fprintf(&b, "  Compensation:    %s\n", FormatCurrency(s.TotalCompensation))
	fmt.Fprintf(&b, "  Employee Amount: %s\n", FormatCurrency(s.TotalEmployeeAmount))
	fmt.Fprintf(&b, "  Employer Amount: %s\n", FormatCurrency(s.TotalEmployerAmount))
	fmt.Fprintf(&b, "  Hours:           %s\n", s.TotalHours.StringFixed(1))
	fmt.Fprintf(&b, "  Records:         %d (%d benefit, %d contribution)\n", s.TotalRecords, len(out.Benefits), len(out.Contributions))
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "INVOICE")
	fmt.Fprintln(&b, strings.Repeat("-", 30))
	fmt.Fprintf(&b, "  Employer Plan 1/2/3: %s / %s / %s\n", FormatCurrency(inv.EmployerSharePlan1), FormatCurrency(inv.EmployerSharePlan2), FormatCurrency(inv.EmployerSharePlan3))
	fmt.Fprintf(&b, "  Employee Plan 1/2:   %s / %s\n", FormatCurrency(inv.EmployeeSharePlan1), FormatCurrency(inv.EmployeeSharePlan2))
	fmt.Fprintf(&b, "  Employee Plan 3:     WSIB %s  SELF %s\n", FormatCurrency(inv.EmployeeSharePlan3WSIB), FormatCurrency(inv.EmployeeSharePlan3Self))
	fmt.Fprintf(&b, "  Total Contribution:  %s\n", FormatCurrency(inv.TotalPERSContribution))
	if !inv.EmployeeRegisterAdjustment.IsZero() || !inv.EmployerRegisterAdjustment.IsZero() {
		fmt.Fprintf(&b, "  Register Adjustment: employee %s  employer %s\n", FormatCurrency(inv.EmployeeRegisterAdjustment), FormatCurrency(inv.EmployerRegisterAdjustment))
	}
	fmt.Fprintln(&b)

	fmt.Fprintf(&b, "MANUAL REVIEW (%d)\n", len(out.ManualReview))
	fmt.Fprintln(&b, strings.Repeat("-", 30))
	for _, m := range out.ManualReview {
		fmt.Fprintf(&b, "  %-8s %-16s %s\n", m.Record.EmployeeID, m.Record.LastName, m.Note)
	}
	return b.Bytes(), nil
}

// ReviewFormatter lists only the records flagged for analyst triage, one
// tab-separated line each
var ReviewFormatter = FormatterFunc{ID: "review", F: formatManualReview}

func formatManualReview(result *domain.RunResult) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("no run result to format")
	}
	var b bytes.Buffer
	fmt.Fprintln(&b, "EmployeeNumber\tLastName\tDeductionBenefitCode\tCategory\tNote")
	for _, m := range result.Output.ManualReview {
		r := m.Record
		fmt.Fprintf(&b, "%s\t%s\t%s\t%s\t%s\n", r.EmployeeID, r.LastName, r.PlanCode, r.Category, m.Note)
	}
	return b.Bytes(), nil
}

// FormatCurrency formats a decimal as currency
func FormatCurrency(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return "-$" + amount.Abs().StringFixed(2)
	}
	return "$" + amount.StringFixed(2)
}
