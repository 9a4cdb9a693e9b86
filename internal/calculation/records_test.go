package calculation

import (
	"testing"

	"github.com/rgehrsitz/persreport/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func finalizedSplit(rec domain.EmployeePeriodRecord, first, second domain.SubPeriodAllocation) domain.EmployeePeriodRecord {
	first.EarningPeriod = "202106"
	second.EarningPeriod = "202107"
	return rec.WithSplit(domain.SplitAllocation{First: first, Second: second})
}

func TestContributionRecordBuilder_SplitPlan3(t *testing.T) {
	pc := splitContext(t)
	rec := finalizedSplit(activeRecord("3001", "p3bw2", "1"),
		domain.SubPeriodAllocation{Hours: dec("40"), Pay: dec("1000.004"), EmployerContribution: dec("100.005"), EmployeeContribution: dec("50.015")},
		domain.SubPeriodAllocation{Hours: dec("40"), Pay: dec("1000"), EmployerContribution: dec("100"), EmployeeContribution: dec("0")},
	)

	records, out := NewContributionRecordBuilder().Build([]domain.EmployeePeriodRecord{rec}, pc, NewAnnotator(nil, nil))
	require.Len(t, records, 1)

	require.Len(t, out.Benefits, 2)
	assert.Equal(t, "3", out.Benefits[0].PlanCode)
	assertDecimal(t, "1000.00", out.Benefits[0].Compensation)
	assertDecimal(t, "100.00", out.Benefits[0].EmployerAmount)
	assertDecimal(t, "0", out.Benefits[0].EmployeeAmount)
	assert.Equal(t, "202106", out.Benefits[0].EarningPeriod)
	assert.Equal(t, "A", out.Benefits[1].Status)

	require.Len(t, out.Contributions, 1, "a zero member contribution has no row")
	dcr := out.Contributions[0]
	assert.Equal(t, "P3BW2", dcr.PlanCode)
	assertDecimal(t, "50.02", dcr.EmployeeAmount)
	assert.Equal(t, domain.ProgramWSIB, dcr.InvestmentProgram)
	assert.Equal(t, "B", dcr.RateOption)

	assert.Empty(t, out.ManualReview)
	assert.Equal(t, 3, out.Summary.TotalRecords)
	assertDecimal(t, "50.02", out.Summary.TotalEmployeeAmount)
	assertDecimal(t, "200.00", out.Invoice.EmployerSharePlan3)
	assertDecimal(t, "50.02", out.Invoice.EmployeeSharePlan3WSIB)
}

func TestContributionRecordBuilder_SuppressesEmptyMonths(t *testing.T) {
	pc := splitContext(t)
	rec := finalizedSplit(activeRecord("2001", "PERS2", "1"),
		domain.SubPeriodAllocation{},
		domain.SubPeriodAllocation{Hours: dec("80"), Pay: dec("4000"), EmployerContribution: dec("400"), EmployeeContribution: dec("260")},
	)
	rounding := finalizedSplit(activeRecord("2002", "PERS1", "1"),
		domain.SubPeriodAllocation{Hours: dec("0.04"), Pay: dec("0.004")},
		domain.SubPeriodAllocation{Hours: dec("8")},
	)

	_, out := NewContributionRecordBuilder().Build([]domain.EmployeePeriodRecord{rec, rounding}, pc, NewAnnotator(nil, nil))

	require.Len(t, out.Benefits, 2)
	assert.Equal(t, "2001", out.Benefits[0].EmployeeID)
	assert.Equal(t, "202107", out.Benefits[0].EarningPeriod)
	assert.Equal(t, "2002", out.Benefits[1].EmployeeID, "rows that round to zero are suppressed")
	assertDecimal(t, "8.0", out.Benefits[1].Hours)
}

func TestContributionRecordBuilder_Notes(t *testing.T) {
	pc := NewPeriodContext(testPayPeriods()[1], domain.RunParameters{})

	terminated := activeRecord("1001", "PERS2", "1")
	terminated.Status = domain.StatusTerminated
	terminated.CheckAddMode = "M"
	terminated.ChargeDateTotalHours = dec("12.25")
	terminated.BasisAmount = dec("612.505")
	terminated.EmployeeAmount = dec("36.75")

	noProgram := activeRecord("1002", "P3ZZ", "1")
	noProgram.EmployeeAmount = dec("25")
	noProgram.EmployerAmount = dec("50")

	invalid := activeRecord("1003", "PERS9", "1")

	an := NewAnnotator(nil, nil)
	records, out := NewContributionRecordBuilder().Build([]domain.EmployeePeriodRecord{terminated, noProgram, invalid}, pc, an)

	assert.Equal(t, []string{"Non-Regular Check Mode", "Termination"}, records[0].Notes)
	assert.Equal(t, []string{"Missing PERS3 investment program : DeductionBenefitCode=P3ZZ"}, records[1].Notes)
	assert.Equal(t, []string{"Invalid PERS classification code"}, records[2].Notes)

	require.Len(t, out.Benefits, 2)
	assert.Equal(t, "A", out.Benefits[0].Status, "termination goes to manual review, not the row")
	assertDecimal(t, "12.2", out.Benefits[0].Hours)
	assertDecimal(t, "612.50", out.Benefits[0].Compensation)
	assert.Equal(t, "3", out.Benefits[1].PlanCode)
	assert.Empty(t, out.Contributions)

	require.Len(t, out.ManualReview, 3)
	assert.Equal(t, "Non-Regular Check Mode  Termination", out.ManualReview[0].Note)
	assert.Equal(t, "1003", out.ManualReview[2].Record.EmployeeID)
	assert.Equal(t, 1, an.Diagnostics.Count(domain.SeverityInfo))
}

func TestContributionRecordBuilder_ContiguousRowsReportActive(t *testing.T) {
	pc := NewPeriodContext(testPayPeriods()[1], domain.RunParameters{})

	tests := []struct {
		name   string
		status string
	}{
		{"blank", ""},
		{"active", domain.StatusActive},
		{"terminated", domain.StatusTerminated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := activeRecord("2001", "PERS2", "1")
			rec.Status = tt.status
			rec.ChargeDateTotalHours = dec("80")
			rec.BasisAmount = dec("4000")
			rec.EmployerAmount = dec("400")
			rec.EmployeeAmount = dec("240")

			p3 := activeRecord("3001", "P3BW1", "1")
			p3.Status = tt.status
			p3.ChargeDateTotalHours = dec("80")
			p3.BasisAmount = dec("3000")
			p3.EmployerAmount = dec("300")
			p3.EmployeeAmount = dec("150")

			_, out := NewContributionRecordBuilder().Build([]domain.EmployeePeriodRecord{rec, p3}, pc, NewAnnotator(nil, nil))

			require.Len(t, out.Benefits, 2)
			for _, row := range out.Benefits {
				assert.Equal(t, domain.StatusActive, row.Status)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	pc := splitContext(t)
	pc.RateChange = true

	benefits := []domain.BenefitRow{
		{PlanCode: "2", Hours: dec("40.0"), Compensation: dec("2000.00"), EmployerAmount: dec("200.00"), EmployeeAmount: dec("120.00")},
		{PlanCode: "1", Hours: dec("8.0"), Compensation: dec("400.00"), EmployerAmount: dec("40.00"), EmployeeAmount: dec("24.00")},
		{PlanCode: "0", Hours: dec("8.0"), Compensation: dec("400.00"), EmployerAmount: dec("40.00"), EmployeeAmount: dec("0.00")},
		{PlanCode: "3", Hours: dec("20.0"), Compensation: dec("1000.00"), EmployerAmount: dec("100.00")},
	}
	contributions := []domain.ContributionRow{
		{InvestmentProgram: domain.ProgramSelf, EmployeeAmount: dec("50.00")},
		{InvestmentProgram: domain.ProgramWSIB, EmployeeAmount: dec("70.00")},
	}
	records := []domain.EmployeePeriodRecord{
		activeRecord("1", "PERS2", "1").WithSplit(domain.SplitAllocation{EmployeeDifference: dec("-6"), EmployerDifference: dec("0.004")}),
		activeRecord("2", "PERS2", "1").WithSplit(domain.SplitAllocation{EmployeeDifference: dec("1.5")}),
		activeRecord("3", "PERS1", "1"),
	}

	summary, invoice := Summarize(pc, benefits, contributions, records)

	assert.Equal(t, "202107", summary.ReportPeriod)
	assert.Equal(t, "01", summary.ReportNumber)
	assert.Equal(t, "02", summary.ReportCount)
	assert.Equal(t, 6, summary.TotalRecords)
	assertDecimal(t, "3800", summary.TotalCompensation)
	assertDecimal(t, "264", summary.TotalEmployeeAmount)
	assertDecimal(t, "380", summary.TotalEmployerAmount)
	assertDecimal(t, "76", summary.TotalHours)

	assertDecimal(t, "80", invoice.EmployerSharePlan1)
	assertDecimal(t, "200", invoice.EmployerSharePlan2)
	assertDecimal(t, "100", invoice.EmployerSharePlan3)
	assertDecimal(t, "380", invoice.TotalEmployerShare)
	assertDecimal(t, "24", invoice.EmployeeSharePlan1)
	assertDecimal(t, "120", invoice.EmployeeSharePlan2)
	assertDecimal(t, "50", invoice.EmployeeSharePlan3Self)
	assertDecimal(t, "70", invoice.EmployeeSharePlan3WSIB)
	assertDecimal(t, "264", invoice.TotalEmployeeShare)
	assertDecimal(t, "644", invoice.TotalPERSContribution)
	assertDecimal(t, "-4.50", invoice.EmployeeRegisterAdjustment)
	assertDecimal(t, "0.00", invoice.EmployerRegisterAdjustment)

	pc.RateChange = false
	_, invoice = Summarize(pc, benefits, contributions, records)
	assert.True(t, invoice.EmployeeRegisterAdjustment.IsZero(), "no adjustment without a rate change")
}

