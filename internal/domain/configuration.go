package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultEmployerID is the regulator employer code used when the configuration omits one
const DefaultEmployerID = "8821"

// Configuration is the top-level run configuration
type Configuration struct {
	EmployerID    string       `yaml:"employer_id" json:"employer_id"`
	MemberRates   []RateRecord `yaml:"member_rates" json:"member_rates"`
	EmployerRates []RateRecord `yaml:"employer_rates" json:"employer_rates"`
	PayPeriods    []PayPeriod  `yaml:"pay_periods" json:"pay_periods"`
}

// RateRecord is one time-bounded contribution rate for a plan
type RateRecord struct {
	Plan          string          `yaml:"plan" json:"plan"`
	EffectiveDate time.Time       `yaml:"effective_date" json:"effective_date"`
	EndDate       *time.Time      `yaml:"end_date,omitempty" json:"end_date,omitempty"`
	Rate          decimal.Decimal `yaml:"rate" json:"rate"`
}

// Covers reports whether the interval includes the given day
func (r RateRecord) Covers(day time.Time) bool {
	if day.Before(r.EffectiveDate) {
		return false
	}
	return r.EndDate == nil || !day.After(*r.EndDate)
}

// Overlaps reports whether two intervals share at least one day
func (r RateRecord) Overlaps(other RateRecord) bool {
	if r.EndDate != nil && r.EndDate.Before(other.EffectiveDate) {
		return false
	}
	if other.EndDate != nil && other.EndDate.Before(r.EffectiveDate) {
		return false
	}
	return true
}
