package domain

import "github.com/shopspring/decimal"

// BenefitRow is a defined-benefit (DBR) line of the monthly report
type BenefitRow struct {
	ReportPeriod   string          `json:"report_period"`
	ReportNumber   string          `json:"report_number"`
	EmployeeID     string          `json:"employee_id"`
	LastName       string          `json:"last_name"`
	SSN            string          `json:"ssn"`
	PlanCode       string          `json:"plan_code"` // 0, 1, 2 or 3
	TypeCode       string          `json:"type_code"` // PERS classification
	EarningPeriod  string          `json:"earning_period"`
	Hours          decimal.Decimal `json:"hours"`
	Compensation   decimal.Decimal `json:"compensation"`
	EmployerAmount decimal.Decimal `json:"employer_amount"`
	EmployeeAmount decimal.Decimal `json:"employee_amount"`
	Status         string          `json:"status"`
}

// ContributionRow is a plan 3 defined-contribution (DCR) line
type ContributionRow struct {
	ReportPeriod      string          `json:"report_period"`
	ReportNumber      string          `json:"report_number"`
	EmployeeID        string          `json:"employee_id"`
	LastName          string          `json:"last_name"`
	SSN               string          `json:"ssn"`
	PlanCode          string          `json:"plan_code"` // full deduction-benefit code
	EmployeeAmount    decimal.Decimal `json:"employee_amount"`
	InvestmentProgram string          `json:"investment_program"`
	RateOption        string          `json:"rate_option"`
}

// ManualReviewRow snapshots a record that carries notes for analyst triage
type ManualReviewRow struct {
	Record EmployeePeriodRecord `json:"record"`
	Note   string               `json:"note"`
}

// SummaryRow is the header line of the monthly report
type SummaryRow struct {
	ReportPeriod        string          `json:"report_period"`
	ReportNumber        string          `json:"report_number"`
	ReportCount         string          `json:"report_count"`
	TotalCompensation   decimal.Decimal `json:"total_compensation"`
	TotalEmployeeAmount decimal.Decimal `json:"total_employee_amount"`
	TotalEmployerAmount decimal.Decimal `json:"total_employer_amount"`
	TotalHours          decimal.Decimal `json:"total_hours"`
	TotalRecords        int             `json:"total_records"`
}

// InvoiceRow breaks the report totals out by plan for finance
type InvoiceRow struct {
	EmployerSharePlan1         decimal.Decimal `json:"employer_share_plan1"`
	EmployerSharePlan2         decimal.Decimal `json:"employer_share_plan2"`
	EmployerSharePlan3         decimal.Decimal `json:"employer_share_plan3"`
	TotalEmployerShare         decimal.Decimal `json:"total_employer_share"`
	EmployeeSharePlan1         decimal.Decimal `json:"employee_share_plan1"`
	EmployeeSharePlan2         decimal.Decimal `json:"employee_share_plan2"`
	EmployeeSharePlan3WSIB     decimal.Decimal `json:"employee_share_plan3_wsib"`
	EmployeeSharePlan3Self     decimal.Decimal `json:"employee_share_plan3_self"`
	TotalEmployeeShare         decimal.Decimal `json:"total_employee_share"`
	TotalPERSContribution      decimal.Decimal `json:"total_pers_contribution"`
	EmployeeRegisterAdjustment decimal.Decimal `json:"employee_register_adjustment"`
	EmployerRegisterAdjustment decimal.Decimal `json:"employer_register_adjustment"`
}

// OutputRecords are all tables produced for one run
type OutputRecords struct {
	Benefits      []BenefitRow      `json:"benefits"`
	Contributions []ContributionRow `json:"contributions"`
	ManualReview  []ManualReviewRow `json:"manual_review"`
	Summary       SummaryRow        `json:"summary"`
	Invoice       InvoiceRow        `json:"invoice"`
}

// RunResult is everything a run produced, ready for the exporters
type RunResult struct {
	EmployerID  string                 `json:"employer_id"`
	Period      PayPeriod              `json:"period"`
	Params      RunParameters          `json:"-"`
	Split       bool                   `json:"split"`
	RateChange  bool                   `json:"rate_change"`
	Records     []EmployeePeriodRecord `json:"records"`
	Output      OutputRecords          `json:"output"`
	Diagnostics []Event                `json:"diagnostics"`
}
