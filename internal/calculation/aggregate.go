package calculation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rgehrsitz/persreport/internal/domain"
	"github.com/shopspring/decimal"
)

// SubPeriod identifies one calendar month of a split pay period
type SubPeriod int

const (
	FirstSubPeriod SubPeriod = iota
	SecondSubPeriod
)

func (s SubPeriod) String() string {
	if s == SecondSubPeriod {
		return "split2"
	}
	return "split1"
}

// Notes raised while accumulating charges
const (
	noteMissingPlanCode       = "Employee is missing PERS Plan Code : DeductionBenefitCode=%s"
	noteNoChargeRecords       = "No ChargeDate records found for %s"
	notePaidPastTermSplit     = "*** Pay received past Termination date and within second EarningPeriod. Added to first EarningPeriod. ***"
	notePaidPastTermOnePeriod = "*** Pay received past Termination date. Ignored on single EarningPeriod. ***"
)

type bucketKey struct {
	sub      SubPeriod
	category domain.Category
}

// ChargeDateAggregator partitions the charge ledger into sub-period and
// category buckets and sums each employee's eligible charges. Charge records
// are never modified.
type ChargeDateAggregator struct {
	period  PeriodContext
	buckets map[bucketKey]map[string][]domain.ChargeDateRecord
}

// SplitSums are one employee's eligible hours and pay per sub-period after
// post-termination pay has been moved into the first sub-period
type SplitSums struct {
	FirstHours  decimal.Decimal
	FirstPay    decimal.Decimal
	SecondHours decimal.Decimal
	SecondPay   decimal.Decimal
	FirstCount  int // records selected from the first bucket
	SecondCount int // records selected from the second bucket
	Rebucketed  int // second-bucket records moved into the first sub-period

	// AllAfterTermination is set when every selected charge is dated after
	// the termination date it carries
	AllAfterTermination bool
}

// TotalHours sums both sub-periods
func (s SplitSums) TotalHours() decimal.Decimal {
	return s.FirstHours.Add(s.SecondHours)
}

// TotalPay sums both sub-periods
func (s SplitSums) TotalPay() decimal.Decimal {
	return s.FirstPay.Add(s.SecondPay)
}

// PeriodSums are one employee's eligible hours and pay for a contiguous period
type PeriodSums struct {
	Hours           decimal.Decimal
	Pay             decimal.Decimal
	Count           int
	PastTermination bool
}

// NewChargeDateAggregator partitions charges for the period. On a split
// period each charge lands in the sub-period of its charge month; a charge
// outside both months breaks the partition and is fatal.
func NewChargeDateAggregator(charges []domain.ChargeDateRecord, pc PeriodContext) (*ChargeDateAggregator, error) {
	a := &ChargeDateAggregator{
		period:  pc,
		buckets: make(map[bucketKey]map[string][]domain.ChargeDateRecord),
	}

	for _, c := range charges {
		sub, ok := a.subPeriodOf(c)
		if !ok {
			continue
		}
		key := bucketKey{sub: sub, category: ClassifyCharge(c)}
		byEmployee, ok := a.buckets[key]
		if !ok {
			byEmployee = make(map[string][]domain.ChargeDateRecord)
			a.buckets[key] = byEmployee
		}
		id := normalizeEmployeeID(c.EmployeeID)
		byEmployee[id] = append(byEmployee[id], c)
	}

	for _, byEmployee := range a.buckets {
		for _, list := range byEmployee {
			sort.SliceStable(list, func(i, j int) bool {
				return list[i].ChargeDate.Before(list[j].ChargeDate)
			})
		}
	}

	if n := a.Len(); n != len(charges) {
		return nil, fmt.Errorf("%w: %d of %d records fall in %s or %s",
			ErrPartitionMismatch, n, len(charges), pc.PriorEarningPeriod, pc.EarningPeriod)
	}
	return a, nil
}

func (a *ChargeDateAggregator) subPeriodOf(c domain.ChargeDateRecord) (SubPeriod, bool) {
	if !a.period.Split {
		return FirstSubPeriod, true
	}
	switch c.Month() {
	case a.period.Period.BeginDate.Month():
		return FirstSubPeriod, true
	case a.period.Period.EndDate.Month():
		return SecondSubPeriod, true
	}
	return FirstSubPeriod, false
}

// Len returns the number of records across all buckets
func (a *ChargeDateAggregator) Len() int {
	n := 0
	for _, byEmployee := range a.buckets {
		for _, list := range byEmployee {
			n += len(list)
		}
	}
	return n
}

// Bucket returns one bucket's records ordered by employee id then charge date
func (a *ChargeDateAggregator) Bucket(sub SubPeriod, category domain.Category) []domain.ChargeDateRecord {
	byEmployee := a.buckets[bucketKey{sub: sub, category: category}]
	ids := make([]string, 0, len(byEmployee))
	for id := range byEmployee {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []domain.ChargeDateRecord
	for _, id := range ids {
		out = append(out, byEmployee[id]...)
	}
	return out
}

// AccumulateSplit sums the record's eligible charges per sub-period. Pay a
// terminated employee received after a termination that precedes the
// boundary is moved into the first sub-period.
func (a *ChargeDateAggregator) AccumulateSplit(rec domain.EmployeePeriodRecord, an *Annotator) (domain.EmployeePeriodRecord, SplitSums, error) {
	sums := SplitSums{}
	family, ok := domain.PlanFamilyOf(rec.PlanCode)
	if !ok {
		rec = an.Note(rec, domain.SeverityWarning, fmt.Sprintf(noteMissingPlanCode, rec.PlanCode))
		return rec, sums, nil
	}

	first, err := a.selectFor(FirstSubPeriod, rec, family)
	if err != nil {
		return rec, sums, err
	}
	second, err := a.selectFor(SecondSubPeriod, rec, family)
	if err != nil {
		return rec, sums, err
	}
	sums.FirstCount, sums.SecondCount = len(first), len(second)
	sums.AllAfterTermination = len(first)+len(second) > 0

	for _, c := range first {
		after, err := paidAfterTermination(c)
		if err != nil {
			return rec, sums, err
		}
		sums.AllAfterTermination = sums.AllAfterTermination && after
		sums.FirstHours = sums.FirstHours.Add(c.Hours)
		sums.FirstPay = sums.FirstPay.Add(c.Pay)
	}

	for _, c := range second {
		after, err := paidAfterTermination(c)
		if err != nil {
			return rec, sums, err
		}
		sums.AllAfterTermination = sums.AllAfterTermination && after
		if after && c.TerminationDate.Before(a.period.Boundary) {
			sums.Rebucketed++
			sums.FirstHours = sums.FirstHours.Add(c.Hours)
			sums.FirstPay = sums.FirstPay.Add(c.Pay)
			continue
		}
		sums.SecondHours = sums.SecondHours.Add(c.Hours)
		sums.SecondPay = sums.SecondPay.Add(c.Pay)
	}

	if sums.Rebucketed > 0 {
		rec = an.Note(rec, domain.SeverityWarning, notePaidPastTermSplit)
	}
	if rec.Category.UsesActualHours() {
		if len(first) == 0 {
			rec = an.Note(rec, domain.SeverityWarning, fmt.Sprintf(noteNoChargeRecords, FirstSubPeriod))
		}
		if len(second) == 0 {
			rec = an.Note(rec, domain.SeverityWarning, fmt.Sprintf(noteNoChargeRecords, SecondSubPeriod))
		}
	}
	return rec, sums, nil
}

// Accumulate sums the record's eligible charges over a contiguous period.
// Pay after termination is kept and only noted.
func (a *ChargeDateAggregator) Accumulate(rec domain.EmployeePeriodRecord, an *Annotator) (domain.EmployeePeriodRecord, PeriodSums, error) {
	sums := PeriodSums{}
	family, ok := domain.PlanFamilyOf(rec.PlanCode)
	if !ok {
		rec = an.Note(rec, domain.SeverityWarning, fmt.Sprintf(noteMissingPlanCode, rec.PlanCode))
		return rec, sums, nil
	}

	selected, err := a.selectFor(FirstSubPeriod, rec, family)
	if err != nil {
		return rec, sums, err
	}
	for _, c := range selected {
		after, err := paidAfterTermination(c)
		if err != nil {
			return rec, sums, err
		}
		sums.PastTermination = sums.PastTermination || after
		sums.Hours = sums.Hours.Add(c.Hours)
		sums.Pay = sums.Pay.Add(c.Pay)
	}
	sums.Count = len(selected)

	if sums.PastTermination {
		rec = an.Note(rec, domain.SeverityWarning, notePaidPastTermOnePeriod)
	}
	return rec, sums, nil
}

// selectFor returns the record's charges in one bucket that count toward its
// plan family. Charges are correlated on a normalized id; any difference in
// the raw ids means the extracts are out of sync.
func (a *ChargeDateAggregator) selectFor(sub SubPeriod, rec domain.EmployeePeriodRecord, family domain.PlanFamily) ([]domain.ChargeDateRecord, error) {
	list := a.buckets[bucketKey{sub: sub, category: rec.Category}][normalizeEmployeeID(rec.EmployeeID)]
	want := strings.TrimSpace(rec.EmployeeID)

	var out []domain.ChargeDateRecord
	for _, c := range list {
		if strings.TrimSpace(c.EmployeeID) != want {
			return nil, fmt.Errorf("%w: period summary %q, charge ledger %q", ErrEmployeeMismatch, rec.EmployeeID, c.EmployeeID)
		}
		if c.EligibleFor(family) {
			out = append(out, c)
		}
	}
	return out, nil
}

// paidAfterTermination reports whether a terminated employee's charge is
// dated after the termination date it carries
func paidAfterTermination(c domain.ChargeDateRecord) (bool, error) {
	if !c.IsTerminated() {
		return false, nil
	}
	if c.TerminationDate == nil {
		return false, fmt.Errorf("%w: employee %s charge on %s is terminated with no termination date",
			ErrInvalidDate, c.EmployeeID, c.ChargeDate.Format("2006-01-02"))
	}
	return dateOnly(c.ChargeDate).After(dateOnly(*c.TerminationDate)), nil
}

func normalizeEmployeeID(id string) string {
	trimmed := strings.TrimSpace(id)
	n := strings.TrimLeft(trimmed, "0")
	if n == "" && trimmed != "" {
		return "0"
	}
	return n
}
