package calculation

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rgehrsitz/persreport/internal/domain"
	"github.com/shopspring/decimal"
)

// RateSchedule resolves member and employer contribution rates for a
// deduction-benefit code on a given day
type RateSchedule struct {
	member   map[string][]domain.RateRecord
	employer map[string][]domain.RateRecord
}

// NewRateSchedule creates a rate schedule from the configured intervals
func NewRateSchedule(member, employer []domain.RateRecord) *RateSchedule {
	return &RateSchedule{
		member:   indexRates(member),
		employer: indexRates(employer),
	}
}

func indexRates(records []domain.RateRecord) map[string][]domain.RateRecord {
	out := make(map[string][]domain.RateRecord)
	for _, r := range records {
		r.EffectiveDate = dateOnly(r.EffectiveDate)
		if r.EndDate != nil {
			end := dateOnly(*r.EndDate)
			r.EndDate = &end
		}
		key := rateKey(r.Plan)
		out[key] = append(out[key], r)
	}
	return out
}

func rateKey(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// employerKey folds every plan 3 sub-code onto the single plan 3 schedule
func employerKey(code string) string {
	key := rateKey(code)
	if strings.Contains(key, domain.CodePlan3Marker) {
		return domain.CodePERS3
	}
	return key
}

func isPlan3(code string) bool {
	return strings.Contains(rateKey(code), domain.CodePlan3Marker)
}

// MemberRate returns the member rate for code on day. Plan 3 members have no
// rate here and always get zero; so does a day no interval covers.
func (s *RateSchedule) MemberRate(code string, day time.Time) decimal.Decimal {
	rate, _ := s.LookupMember(code, day)
	return rate
}

// EmployerRate returns the employer rate for code on day, or zero when no
// interval covers it
func (s *RateSchedule) EmployerRate(code string, day time.Time) decimal.Decimal {
	rate, _ := s.LookupEmployer(code, day)
	return rate
}

// LookupMember is MemberRate that also reports whether an interval matched.
// Plan 3 codes report a match with a zero rate.
func (s *RateSchedule) LookupMember(code string, day time.Time) (decimal.Decimal, bool) {
	if isPlan3(code) {
		return decimal.Zero, true
	}
	return lookupRate(s.member[rateKey(code)], day)
}

// LookupEmployer is EmployerRate that also reports whether an interval matched
func (s *RateSchedule) LookupEmployer(code string, day time.Time) (decimal.Decimal, bool) {
	return lookupRate(s.employer[employerKey(code)], day)
}

func lookupRate(records []domain.RateRecord, day time.Time) (decimal.Decimal, bool) {
	d := dateOnly(day)
	for _, r := range records {
		if r.Covers(d) {
			return r.Rate, true
		}
	}
	return decimal.Zero, false
}

// MemberRateChanges reports whether the member rate for code differs between
// two days
func (s *RateSchedule) MemberRateChanges(code string, a, b time.Time) bool {
	return !s.MemberRate(code, a).Equal(s.MemberRate(code, b))
}

// Validate checks that no two intervals for the same plan overlap
func (s *RateSchedule) Validate() error {
	if err := validateIntervals("member", s.member); err != nil {
		return err
	}
	return validateIntervals("employer", s.employer)
}

func validateIntervals(kind string, byPlan map[string][]domain.RateRecord) error {
	plans := make([]string, 0, len(byPlan))
	for plan := range byPlan {
		plans = append(plans, plan)
	}
	sort.Strings(plans)

	for _, plan := range plans {
		records := byPlan[plan]
		for i := 0; i < len(records); i++ {
			for j := i + 1; j < len(records); j++ {
				if records[i].Overlaps(records[j]) {
					return fmt.Errorf("%s rates for %s overlap: %s and %s", kind, plan,
						records[i].EffectiveDate.Format("2006-01-02"), records[j].EffectiveDate.Format("2006-01-02"))
				}
			}
		}
	}
	return nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
