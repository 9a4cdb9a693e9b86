package domain

import (
	"fmt"
	"time"
)

// PayPeriod is one bi-weekly pay period from the payroll calendar
type PayPeriod struct {
	BeginDate    time.Time  `yaml:"begin_date" json:"begin_date"`
	EndDate      time.Time  `yaml:"end_date" json:"end_date"`
	CheckDate    time.Time  `yaml:"check_date" json:"check_date"`
	SplitDate    *time.Time `yaml:"split_date,omitempty" json:"split_date,omitempty"`
	ReportNumber int        `yaml:"report_number" json:"report_number"`
	ReportCount  int        `yaml:"report_count" json:"report_count"`
}

// IsSplit reports whether the period crosses a calendar-month boundary
func (p PayPeriod) IsSplit() bool {
	return p.BeginDate.Year() != p.EndDate.Year() || p.BeginDate.Month() != p.EndDate.Month()
}

// Boundary returns the first day of the second sub-period. When the calendar
// does not name one, the first day of the end month is used.
func (p PayPeriod) Boundary() (time.Time, bool) {
	if !p.IsSplit() {
		return time.Time{}, false
	}
	if p.SplitDate != nil {
		return *p.SplitDate, true
	}
	return time.Date(p.EndDate.Year(), p.EndDate.Month(), 1, 0, 0, 0, 0, p.EndDate.Location()), true
}

// EarningPeriod is the YYYYMM label of the end month
func (p PayPeriod) EarningPeriod() string {
	return MonthLabel(p.EndDate)
}

// PriorEarningPeriod is the YYYYMM label of the begin month
func (p PayPeriod) PriorEarningPeriod() string {
	return MonthLabel(p.BeginDate)
}

// String renders the period for logs and CLI output
func (p PayPeriod) String() string {
	return fmt.Sprintf("%s..%s (check %s)", p.BeginDate.Format("2006-01-02"), p.EndDate.Format("2006-01-02"), p.CheckDate.Format("2006-01-02"))
}

// MonthLabel formats a date as YYYYMM
func MonthLabel(t time.Time) string {
	return fmt.Sprintf("%04d%02d", t.Year(), int(t.Month()))
}

// RunParameters are the per-run choices made by the payroll operator
type RunParameters struct {
	PeriodControlDate   time.Time // near the target check date
	ReportNumber        int       // 1..3 overrides the calendar, 0 keeps it
	ReportCount         int       // 1..3 overrides the calendar, 0 keeps it
	Correction          bool      // report type C instead of R
	UsePriorMonth       bool      // report under the begin month
	SingleEarningPeriod bool      // treat a split period as one earning period
}

// ReportType returns the regulator report type code
func (rp RunParameters) ReportType() string {
	if rp.Correction {
		return "C"
	}
	return "R"
}
