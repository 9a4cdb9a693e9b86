package calculation

import (
	"fmt"
	"strings"
	"time"

	"github.com/rgehrsitz/persreport/internal/domain"
	"github.com/shopspring/decimal"
)

// reconcileTolerance is the largest difference treated as equal when a split
// is summed back to its reported total
var reconcileTolerance = decimal.RequireFromString("0.0001")

// significantShare is the fraction of combined hours above which two hour
// totals are reported as differing
var significantShare = decimal.RequireFromString("0.05")

// Notes raised while allocating a split period
const (
	noteRetireeBasis        = "Retiree : TotalEarningAmount=%s"
	noteNewHireDerived      = "PERS3 New Hire : Derived DeductionCalcBasisAmount=%s"
	noteValidateHours       = "Validate ChargeDate hours: %s."
	noteHoursDiffer         = "ChargeDate TotalHours and PeriodControlDate TotalHours differ significantly."
	noteBasisDiffers        = "ERROR DeductionCalcBasisAmount differs from SplitSum : SUM=%s : DCBA=%s"
	noteEmployeeDiffers     = "ERROR : Employee Contribution differs on Split : SPLIT=%s : ORIG=%s"
	noteEmployerDiffers     = "ERROR : Company Contribution differs on Split : SPLIT=%s : ORIG=%s"
	noteMissingMemberRate   = "no member rate for %s on %s"
	noteMissingEmployerRate = "no employer rate for %s on %s"
)

// SplitAllocationEngine allocates a record's hours, pay and contributions
// across the two months of a split pay period
type SplitAllocationEngine struct {
	Rates   *RateSchedule
	Charges *ChargeDateAggregator
}

// NewSplitAllocationEngine creates a split allocation engine
func NewSplitAllocationEngine(rates *RateSchedule, charges *ChargeDateAggregator) *SplitAllocationEngine {
	return &SplitAllocationEngine{Rates: rates, Charges: charges}
}

// Allocate returns a copy of rec carrying its finalized split. Reconciliation
// problems are noted on the record; only broken input is returned as an error.
func (e *SplitAllocationEngine) Allocate(rec domain.EmployeePeriodRecord, pc PeriodContext, an *Annotator) (domain.EmployeePeriodRecord, error) {
	rec, sums, err := e.Charges.AccumulateSplit(rec, an)
	if err != nil {
		return rec, err
	}

	begin, end := pc.Period.BeginDate, pc.Period.EndDate
	first := domain.SubPeriodAllocation{
		EarningPeriod: pc.PriorEarningPeriod,
		HoursRatio:    pc.FirstRatio,
		EmployerRate:  e.employerRate(rec, begin, an),
		MemberRate:    e.memberRate(rec, begin, an),
	}
	second := domain.SubPeriodAllocation{
		EarningPeriod: pc.EarningPeriod,
		HoursRatio:    pc.SecondRatio,
		EmployerRate:  e.employerRate(rec, end, an),
		MemberRate:    e.memberRate(rec, end, an),
	}

	basis := rec.DeductionCalcBasisAmount
	if rec.Category == domain.Retiree {
		basis = rec.TotalEarningAmount
		rec = an.Note(rec, domain.SeverityInfo, fmt.Sprintf(noteRetireeBasis, money(basis)))
	}
	if domain.IsPlan3NewHire(rec.PlanCode) && basis.IsZero() {
		basis = sums.TotalPay()
		rec = an.Note(rec, domain.SeverityInfo, fmt.Sprintf(noteNewHireDerived, money(basis)))
	}

	total := sums.TotalHours()
	rec = e.allocateHours(rec, pc, sums, &first, &second, an)

	if differsSignificantly(total, rec.TotalHours) {
		rec = an.Note(rec, domain.SeverityWarning, noteHoursDiffer)
	}

	first.Pay = first.HoursRatio.Mul(basis)
	second.Pay = second.HoursRatio.Mul(basis)
	if sum := first.Pay.Add(second.Pay); !withinTolerance(sum, basis) {
		rec = an.Note(rec, domain.SeverityError, fmt.Sprintf(noteBasisDiffers, money(sum), money(basis)))
	}

	split := domain.SplitAllocation{}

	// Employee side. Plan 3 members contribute through their own program, so
	// the reported amount is always split as is.
	if withinTolerance(first.MemberRate, second.MemberRate) || strings.Contains(strings.ToUpper(rec.PlanCode), domain.CodePlan3Marker) {
		first.EmployeeContribution = rec.EmployeeAmount.Mul(first.HoursRatio)
		second.EmployeeContribution = rec.EmployeeAmount.Mul(second.HoursRatio)
		if sum := first.EmployeeContribution.Add(second.EmployeeContribution); !withinTolerance(sum, rec.EmployeeAmount) {
			rec = an.Note(rec, domain.SeverityError, fmt.Sprintf(noteEmployeeDiffers, money(sum), money(rec.EmployeeAmount)))
		}
	} else {
		first.EmployeeContribution = first.MemberRate.Mul(basis).Mul(first.HoursRatio)
		second.EmployeeContribution = second.MemberRate.Mul(basis).Mul(second.HoursRatio)
		split.EmployeeDifference = rec.EmployeeAmount.Sub(first.EmployeeContribution.Add(second.EmployeeContribution))
	}

	// Employer side
	if withinTolerance(first.EmployerRate, second.EmployerRate) {
		first.EmployerContribution = rec.EmployerAmount.Mul(first.HoursRatio)
		second.EmployerContribution = rec.EmployerAmount.Mul(second.HoursRatio)
		if sum := first.EmployerContribution.Add(second.EmployerContribution); !withinTolerance(sum, rec.EmployerAmount) {
			rec = an.Note(rec, domain.SeverityError, fmt.Sprintf(noteEmployerDiffers, money(sum), money(rec.EmployerAmount)))
		}
	} else {
		first.EmployerContribution = first.EmployerRate.Mul(basis).Mul(first.HoursRatio)
		second.EmployerContribution = second.EmployerRate.Mul(basis).Mul(second.HoursRatio)
		split.EmployerDifference = rec.EmployerAmount.Sub(first.EmployerContribution.Add(second.EmployerContribution))
	}

	split.First, split.Second = first, second
	rec.BasisAmount = basis
	rec.ChargeDateTotalHours = total
	rec.ChargeDateTotalPay = sums.TotalPay()
	return rec.WithSplit(split), nil
}

// allocateHours sets the hours ratio and hours of each sub-period. The calendar
// ratios already on first and second are the fallback.
func (e *SplitAllocationEngine) allocateHours(rec domain.EmployeePeriodRecord, pc PeriodContext, sums SplitSums, first, second *domain.SubPeriodAllocation, an *Annotator) domain.EmployeePeriodRecord {
	s1, s2 := sums.FirstHours, sums.SecondHours
	total := s1.Add(s2)

	byCalendar := func() {
		first.Hours = first.HoursRatio.Mul(total)
		second.Hours = second.HoursRatio.Mul(total)
	}
	force := func(r1, r2 decimal.Decimal) {
		first.HoursRatio, second.HoursRatio = r1, r2
		first.Hours, second.Hours = r1.Mul(total), r2.Mul(total)
	}

	if ratioBranch(rec) == domain.NonExempt {
		if s1.Sign() >= 0 && s2.Sign() >= 0 && total.Sign() > 0 {
			first.HoursRatio = s1.Div(total).Abs()
			second.HoursRatio = decimal.NewFromInt(1).Sub(first.HoursRatio)
			first.Hours, second.Hours = s1, s2
			return rec
		}
		byCalendar()
		detail := fmt.Sprintf("%s=%s %s=%s", FirstSubPeriod, s1.StringFixed(2), SecondSubPeriod, s2.StringFixed(2))
		return an.Note(rec, domain.SeverityWarning, fmt.Sprintf(noteValidateHours, detail))
	}

	switch {
	case rec.IsTerminated():
		if rec.TerminationDate != nil && dateOnly(*rec.TerminationDate).Before(pc.Boundary) && !sums.AllAfterTermination {
			force(decimal.NewFromInt(1), decimal.Zero)
			return rec
		}
		byCalendar()
	case rec.HireDate != nil && !dateOnly(*rec.HireDate).Before(dateOnly(pc.Period.BeginDate)) && !dateOnly(*rec.HireDate).Before(pc.Boundary):
		force(decimal.Zero, decimal.NewFromInt(1))
	default:
		byCalendar()
	}
	return rec
}

func (e *SplitAllocationEngine) memberRate(rec domain.EmployeePeriodRecord, day time.Time, an *Annotator) decimal.Decimal {
	rate, ok := e.Rates.LookupMember(rec.PlanCode, day)
	if _, known := domain.PlanFamilyOf(rec.PlanCode); known && !ok {
		an.Record(domain.SeverityWarning, rec.EmployeeID, fmt.Sprintf(noteMissingMemberRate, rec.PlanCode, day.Format("2006-01-02")))
	}
	return rate
}

func (e *SplitAllocationEngine) employerRate(rec domain.EmployeePeriodRecord, day time.Time, an *Annotator) decimal.Decimal {
	rate, ok := e.Rates.LookupEmployer(rec.PlanCode, day)
	if _, known := domain.PlanFamilyOf(rec.PlanCode); known && !ok {
		an.Record(domain.SeverityWarning, rec.EmployeeID, fmt.Sprintf(noteMissingEmployerRate, rec.PlanCode, day.Format("2006-01-02")))
	}
	return rate
}

// differsSignificantly reports whether a and b differ by more than 5% of
// their sum
func differsSignificantly(a, b decimal.Decimal) bool {
	if a.Equal(b) {
		return false
	}
	return a.Sub(b).Abs().GreaterThan(a.Add(b).Mul(significantShare))
}

func withinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().Cmp(reconcileTolerance) <= 0
}

// money renders an amount the way notes quote it
func money(d decimal.Decimal) string {
	return d.RoundBank(2).StringFixed(2)
}
