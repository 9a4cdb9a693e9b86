package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// EmployeePeriodRecord is one employee's row from the period-summary extract,
// progressively enriched by classification, aggregation and allocation.
// Stages never mutate a record in place; they return an updated copy.
type EmployeePeriodRecord struct {
	EmployeeID      string     `json:"employee_id"`
	LastName        string     `json:"last_name"`
	SSN             string     `json:"ssn"`
	PlanCode        string     `json:"plan_code"`      // DeductionBenefitCode, e.g. PERS2, P3BW1
	Classification  string     `json:"classification"` // PersClassification, e.g. 05, 98
	TypeCode        string     `json:"type_code"`      // EmployeeTypeCode
	Status          string     `json:"status"`         // A or T
	CheckAddMode    string     `json:"check_add_mode"`
	HireDate        *time.Time `json:"hire_date,omitempty"`
	TerminationDate *time.Time `json:"termination_date,omitempty"`

	TotalHours               decimal.Decimal `json:"total_hours"`
	TotalEarningAmount       decimal.Decimal `json:"total_earning_amount"`
	DeductionCalcBasisAmount decimal.Decimal `json:"deduction_calc_basis_amount"`
	EmployerAmount           decimal.Decimal `json:"employer_amount"`
	EmployeeAmount           decimal.Decimal `json:"employee_amount"`

	// Derived fields
	Category             Category         `json:"category,omitempty"`
	ReportPeriod         string           `json:"report_period,omitempty"`
	ReportNumber         string           `json:"report_number,omitempty"`
	EarningPeriod        string           `json:"earning_period,omitempty"`
	BasisAmount          decimal.Decimal  `json:"basis_amount"`
	ChargeDateTotalHours decimal.Decimal  `json:"charge_date_total_hours"`
	ChargeDateTotalPay   decimal.Decimal  `json:"charge_date_total_pay"`
	Split                *SplitAllocation `json:"split,omitempty"`

	Notes []string `json:"notes,omitempty"`
}

// SplitAllocation holds the per-month results for a split pay period
type SplitAllocation struct {
	First  SubPeriodAllocation `json:"first"`
	Second SubPeriodAllocation `json:"second"`

	// Reported minus derived contribution when a rate changed mid-period
	EmployerDifference decimal.Decimal `json:"employer_difference"`
	EmployeeDifference decimal.Decimal `json:"employee_difference"`
}

// SubPeriodAllocation is one month's share of a split pay period
type SubPeriodAllocation struct {
	EarningPeriod        string          `json:"earning_period"`
	Hours                decimal.Decimal `json:"hours"`
	HoursRatio           decimal.Decimal `json:"hours_ratio"`
	Pay                  decimal.Decimal `json:"pay"`
	EmployerRate         decimal.Decimal `json:"employer_rate"`
	MemberRate           decimal.Decimal `json:"member_rate"`
	EmployerContribution decimal.Decimal `json:"employer_contribution"`
	EmployeeContribution decimal.Decimal `json:"employee_contribution"`
}

// WithNote returns a copy of the record with msg appended to its note log
func (r EmployeePeriodRecord) WithNote(msg string) EmployeePeriodRecord {
	notes := make([]string, 0, len(r.Notes)+1)
	notes = append(notes, r.Notes...)
	r.Notes = append(notes, strings.TrimSpace(msg))
	return r
}

// WithSplit returns a copy of the record carrying its own copy of s
func (r EmployeePeriodRecord) WithSplit(s SplitAllocation) EmployeePeriodRecord {
	r.Split = &s
	return r
}

// NoteText joins the note log the way the review worksheet shows it
func (r EmployeePeriodRecord) NoteText() string {
	return strings.Join(r.Notes, "  ")
}

// HasNotes reports whether anything was logged against the record
func (r EmployeePeriodRecord) HasNotes() bool {
	return len(r.Notes) > 0
}

// IsTerminated reports whether the employment status is terminated
func (r EmployeePeriodRecord) IsTerminated() bool {
	return strings.EqualFold(strings.TrimSpace(r.Status), StatusTerminated)
}

// IsRegularCheck reports whether the check was produced by a regular payroll run
func (r EmployeePeriodRecord) IsRegularCheck() bool {
	return strings.EqualFold(strings.TrimSpace(r.CheckAddMode), CheckModeRegular)
}

// Employment status and check modes
const (
	StatusActive     = "A"
	StatusTerminated = "T"
	CheckModeRegular = "R"
)

// ChargeDateRecord is one employee's hours and pay attributed to one charge date.
// Charge records are read-only.
type ChargeDateRecord struct {
	EmployeeID       string          `json:"employee_id"`
	ChargeDate       time.Time       `json:"charge_date"`
	ChargeMonth      time.Month      `json:"charge_month"`
	Hours            decimal.Decimal `json:"hours"`
	Pay              decimal.Decimal `json:"pay"`
	Pers1Accountable bool            `json:"pers1_accountable"`
	Pers2Accountable bool            `json:"pers2_accountable"`
	Pers3Accountable bool            `json:"pers3_accountable"`
	TypeCode         string          `json:"type_code"`
	Classification   string          `json:"classification"`
	Status           string          `json:"status"`
	TerminationDate  *time.Time      `json:"termination_date,omitempty"`
}

// Month returns the calendar month the charge is booked under
func (c ChargeDateRecord) Month() time.Month {
	if c.ChargeMonth != 0 {
		return c.ChargeMonth
	}
	return c.ChargeDate.Month()
}

// EligibleFor reports whether the charge counts toward the given plan family.
// Plan 0 (retired-but-working) members accrue under the plan 1 flag.
func (c ChargeDateRecord) EligibleFor(family PlanFamily) bool {
	switch family {
	case Plan0, Plan1:
		return c.Pers1Accountable
	case Plan2:
		return c.Pers2Accountable
	case Plan3:
		return c.Pers3Accountable
	default:
		return false
	}
}

// IsTerminated reports whether the charge was booked for a terminated employee
func (c ChargeDateRecord) IsTerminated() bool {
	return strings.EqualFold(strings.TrimSpace(c.Status), StatusTerminated)
}
