package calculation

import (
	"fmt"
	"strings"

	"github.com/rgehrsitz/persreport/internal/domain"
	"github.com/shopspring/decimal"
)

// Notes raised while building rows
const (
	noteNonRegularCheck = "Non-Regular Check Mode"
	noteTermination     = "Termination"
	noteInvalidPlanCode = "Invalid PERS classification code"
	noteMissingProgram  = "Missing PERS3 investment program : DeductionBenefitCode=%s"
)

// ContributionRecordBuilder turns finalized records into regulator rows
type ContributionRecordBuilder struct{}

// NewContributionRecordBuilder creates a record builder
func NewContributionRecordBuilder() *ContributionRecordBuilder {
	return &ContributionRecordBuilder{}
}

// Build produces every output table for the finalized records, in input
// order. The returned records carry any notes raised while building.
func (b *ContributionRecordBuilder) Build(records []domain.EmployeePeriodRecord, pc PeriodContext, an *Annotator) ([]domain.EmployeePeriodRecord, domain.OutputRecords) {
	out := domain.OutputRecords{}
	final := make([]domain.EmployeePeriodRecord, 0, len(records))

	for _, rec := range records {
		rec = b.buildRecord(rec, pc, an, &out)
		if rec.HasNotes() {
			out.ManualReview = append(out.ManualReview, domain.ManualReviewRow{Record: rec, Note: rec.NoteText()})
		}
		final = append(final, rec)
	}

	out.Summary, out.Invoice = Summarize(pc, out.Benefits, out.Contributions, final)
	return final, out
}

func (b *ContributionRecordBuilder) buildRecord(rec domain.EmployeePeriodRecord, pc PeriodContext, an *Annotator, out *domain.OutputRecords) domain.EmployeePeriodRecord {
	if !rec.IsRegularCheck() {
		rec = an.Note(rec, domain.SeverityWarning, noteNonRegularCheck)
	}
	if rec.IsTerminated() {
		rec = an.Note(rec, domain.SeverityInfo, noteTermination)
	}

	family, ok := domain.PlanFamilyOf(rec.PlanCode)
	if !ok {
		return an.Note(rec, domain.SeverityError, noteInvalidPlanCode)
	}

	if pc.Split && rec.Split != nil {
		for _, sub := range []domain.SubPeriodAllocation{rec.Split.First, rec.Split.Second} {
			rec = b.splitRows(rec, pc, family, sub, an, out)
		}
		return rec
	}
	return b.contiguousRows(rec, pc, family, an, out)
}

func (b *ContributionRecordBuilder) splitRows(rec domain.EmployeePeriodRecord, pc PeriodContext, family domain.PlanFamily, sub domain.SubPeriodAllocation, an *Annotator, out *domain.OutputRecords) domain.EmployeePeriodRecord {
	hours := sub.Hours.RoundBank(1)
	pay := sub.Pay.RoundBank(2)
	employer := sub.EmployerContribution.RoundBank(2)
	employee := sub.EmployeeContribution.RoundBank(2)

	if family != domain.Plan3 {
		if allZero(hours, pay, employer, employee) {
			return rec
		}
		out.Benefits = append(out.Benefits, benefitRow(rec, pc, family, sub.EarningPeriod, hours, pay, employer, employee, domain.StatusActive))
		return rec
	}

	if !allZero(hours, pay, employer) {
		out.Benefits = append(out.Benefits, benefitRow(rec, pc, family, sub.EarningPeriod, hours, pay, employer, decimal.Zero, domain.StatusActive))
	}
	return b.contributionRow(rec, pc, employee, an, out)
}

func (b *ContributionRecordBuilder) contiguousRows(rec domain.EmployeePeriodRecord, pc PeriodContext, family domain.PlanFamily, an *Annotator, out *domain.OutputRecords) domain.EmployeePeriodRecord {
	hours := rec.ChargeDateTotalHours.RoundBank(1)
	compensation := rec.BasisAmount.RoundBank(2)
	employer := rec.EmployerAmount.RoundBank(2)
	employee := rec.EmployeeAmount.RoundBank(2)

	if family != domain.Plan3 {
		out.Benefits = append(out.Benefits, benefitRow(rec, pc, family, pc.EarningPeriod, hours, compensation, employer, employee, domain.StatusActive))
		return rec
	}

	out.Benefits = append(out.Benefits, benefitRow(rec, pc, family, pc.EarningPeriod, hours, compensation, employer, decimal.Zero, domain.StatusActive))
	return b.contributionRow(rec, pc, employee, an, out)
}

// contributionRow appends the plan 3 member contribution, if there is one
func (b *ContributionRecordBuilder) contributionRow(rec domain.EmployeePeriodRecord, pc PeriodContext, amount decimal.Decimal, an *Annotator, out *domain.OutputRecords) domain.EmployeePeriodRecord {
	if amount.IsZero() {
		return rec
	}
	program, option, ok := domain.Plan3Option(rec.PlanCode)
	if !ok {
		msg := fmt.Sprintf(noteMissingProgram, rec.PlanCode)
		for _, n := range rec.Notes {
			if n == msg {
				return rec
			}
		}
		return an.Note(rec, domain.SeverityError, msg)
	}

	out.Contributions = append(out.Contributions, domain.ContributionRow{
		ReportPeriod:      pc.ReportPeriod,
		ReportNumber:      pc.ReportNumber,
		EmployeeID:        rec.EmployeeID,
		LastName:          rec.LastName,
		SSN:               rec.SSN,
		PlanCode:          strings.ToUpper(strings.TrimSpace(rec.PlanCode)),
		EmployeeAmount:    amount,
		InvestmentProgram: program,
		RateOption:        option,
	})
	return rec
}

func benefitRow(rec domain.EmployeePeriodRecord, pc PeriodContext, family domain.PlanFamily, earning string, hours, compensation, employer, employee decimal.Decimal, status string) domain.BenefitRow {
	return domain.BenefitRow{
		ReportPeriod:   pc.ReportPeriod,
		ReportNumber:   pc.ReportNumber,
		EmployeeID:     rec.EmployeeID,
		LastName:       rec.LastName,
		SSN:            rec.SSN,
		PlanCode:       string(family),
		TypeCode:       strings.TrimSpace(rec.Classification),
		EarningPeriod:  earning,
		Hours:          hours,
		Compensation:   compensation,
		EmployerAmount: employer,
		EmployeeAmount: employee,
		Status:         status,
	}
}

func allZero(values ...decimal.Decimal) bool {
	for _, v := range values {
		if !v.IsZero() {
			return false
		}
	}
	return true
}
