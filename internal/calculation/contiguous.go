package calculation

import (
	"fmt"

	"github.com/rgehrsitz/persreport/internal/domain"
)

// Notes raised on a contiguous period
const (
	noteRetireeContribution = "Retiree with non-zero Contribution : %s"
	noteRetireeBenefit      = "Retiree with non-zero Benefit : %s"
	noteNewHireBasis        = "PERS3 New Hire : DeductionCalcBasisAmount=%s"
)

// ContiguousPeriodProcessor finalizes records for a pay period that stays
// inside one calendar month
type ContiguousPeriodProcessor struct {
	Charges *ChargeDateAggregator
}

// NewContiguousPeriodProcessor creates a contiguous period processor
func NewContiguousPeriodProcessor(charges *ChargeDateAggregator) *ContiguousPeriodProcessor {
	return &ContiguousPeriodProcessor{Charges: charges}
}

// Process returns a copy of rec with its charge totals and basis amount resolved
func (p *ContiguousPeriodProcessor) Process(rec domain.EmployeePeriodRecord, an *Annotator) (domain.EmployeePeriodRecord, error) {
	rec, sums, err := p.Charges.Accumulate(rec, an)
	if err != nil {
		return rec, err
	}
	rec.ChargeDateTotalHours = sums.Hours
	rec.ChargeDateTotalPay = sums.Pay

	basis := rec.DeductionCalcBasisAmount
	if rec.Category == domain.Retiree && basis.IsZero() {
		basis = rec.TotalEarningAmount
		if !rec.EmployeeAmount.IsZero() {
			rec = an.Note(rec, domain.SeverityWarning, fmt.Sprintf(noteRetireeContribution, money(rec.EmployeeAmount)))
		}
		if !rec.EmployerAmount.IsZero() {
			rec = an.Note(rec, domain.SeverityWarning, fmt.Sprintf(noteRetireeBenefit, money(rec.EmployerAmount)))
		}
	}
	if domain.IsPlan3NewHire(rec.PlanCode) && basis.IsZero() {
		basis = sums.Pay.RoundBank(2)
		rec = an.Note(rec, domain.SeverityInfo, fmt.Sprintf(noteNewHireBasis, money(basis)))
	}
	rec.BasisAmount = basis
	return rec, nil
}
