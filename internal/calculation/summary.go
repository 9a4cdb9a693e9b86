package calculation

import (
	"github.com/rgehrsitz/persreport/internal/domain"
	"github.com/shopspring/decimal"
)

// Summarize totals the benefit and contribution rows into the report summary
// and the finance invoice. Register adjustments are carried only when a split
// period saw the plan 2 member rate change.
func Summarize(pc PeriodContext, benefits []domain.BenefitRow, contributions []domain.ContributionRow, records []domain.EmployeePeriodRecord) (domain.SummaryRow, domain.InvoiceRow) {
	summary := domain.SummaryRow{
		ReportPeriod: pc.ReportPeriod,
		ReportNumber: pc.ReportNumber,
		ReportCount:  pc.ReportCount,
		TotalRecords: len(benefits) + len(contributions),
	}
	invoice := domain.InvoiceRow{}

	for _, row := range benefits {
		summary.TotalCompensation = summary.TotalCompensation.Add(row.Compensation)
		summary.TotalEmployeeAmount = summary.TotalEmployeeAmount.Add(row.EmployeeAmount)
		summary.TotalEmployerAmount = summary.TotalEmployerAmount.Add(row.EmployerAmount)
		summary.TotalHours = summary.TotalHours.Add(row.Hours)

		switch domain.PlanFamily(row.PlanCode) {
		case domain.Plan2:
			invoice.EmployerSharePlan2 = invoice.EmployerSharePlan2.Add(row.EmployerAmount)
			invoice.EmployeeSharePlan2 = invoice.EmployeeSharePlan2.Add(row.EmployeeAmount)
		case domain.Plan3:
			invoice.EmployerSharePlan3 = invoice.EmployerSharePlan3.Add(row.EmployerAmount)
		case domain.Plan0, domain.Plan1:
			// Plan 0 has no invoice column of its own; it is billed with plan 1.
			invoice.EmployerSharePlan1 = invoice.EmployerSharePlan1.Add(row.EmployerAmount)
			invoice.EmployeeSharePlan1 = invoice.EmployeeSharePlan1.Add(row.EmployeeAmount)
		}
	}

	for _, row := range contributions {
		summary.TotalEmployeeAmount = summary.TotalEmployeeAmount.Add(row.EmployeeAmount)
		switch row.InvestmentProgram {
		case domain.ProgramSelf:
			invoice.EmployeeSharePlan3Self = invoice.EmployeeSharePlan3Self.Add(row.EmployeeAmount)
		case domain.ProgramWSIB:
			invoice.EmployeeSharePlan3WSIB = invoice.EmployeeSharePlan3WSIB.Add(row.EmployeeAmount)
		}
	}

	invoice.TotalEmployerShare = invoice.EmployerSharePlan1.Add(invoice.EmployerSharePlan2).Add(invoice.EmployerSharePlan3)
	invoice.TotalEmployeeShare = invoice.EmployeeSharePlan1.Add(invoice.EmployeeSharePlan2).
		Add(invoice.EmployeeSharePlan3WSIB).Add(invoice.EmployeeSharePlan3Self)
	invoice.TotalPERSContribution = invoice.TotalEmployerShare.Add(invoice.TotalEmployeeShare)

	if pc.Split && pc.RateChange {
		employee, employer := decimal.Zero, decimal.Zero
		for _, rec := range records {
			if rec.Split == nil {
				continue
			}
			employee = employee.Add(rec.Split.EmployeeDifference)
			employer = employer.Add(rec.Split.EmployerDifference)
		}
		invoice.EmployeeRegisterAdjustment = employee.RoundBank(2)
		invoice.EmployerRegisterAdjustment = employer.RoundBank(2)
	}
	return summary, invoice
}
