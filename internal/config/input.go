package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/rgehrsitz/persreport/internal/calculation"
	"github.com/rgehrsitz/persreport/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the configuration file used when none is named
const DefaultFile = "persreport.yaml"

// weekdaysPerPeriod is the number of working days in every bi-weekly period
const weekdaysPerPeriod = 10

// InputParser handles parsing of input configuration files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads configuration from a YAML file
func (ip *InputParser) LoadFromFile(filename string) (*domain.Configuration, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	var config domain.Configuration
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if strings.TrimSpace(config.EmployerID) == "" {
		config.EmployerID = domain.DefaultEmployerID
	}

	if err := ip.ValidateConfiguration(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// ValidateConfiguration validates the loaded configuration
func (ip *InputParser) ValidateConfiguration(config *domain.Configuration) error {
	if len(config.MemberRates) == 0 {
		return fmt.Errorf("member_rates is required")
	}
	if len(config.EmployerRates) == 0 {
		return fmt.Errorf("employer_rates is required")
	}
	if len(config.PayPeriods) == 0 {
		return fmt.Errorf("pay_periods is required")
	}

	for i, r := range config.MemberRates {
		if err := ip.validateRate(r); err != nil {
			return fmt.Errorf("member rate %d (%s) validation failed: %w", i, r.Plan, err)
		}
	}
	for i, r := range config.EmployerRates {
		if err := ip.validateRate(r); err != nil {
			return fmt.Errorf("employer rate %d (%s) validation failed: %w", i, r.Plan, err)
		}
	}
	if err := calculation.NewRateSchedule(config.MemberRates, config.EmployerRates).Validate(); err != nil {
		return err
	}

	for i, p := range config.PayPeriods {
		if err := ip.validatePayPeriod(p); err != nil {
			return fmt.Errorf("pay period %d (%s) validation failed: %w", i, p.BeginDate.Format("2006-01-02"), err)
		}
	}
	return nil
}

func (ip *InputParser) validateRate(r domain.RateRecord) error {
	if strings.TrimSpace(r.Plan) == "" {
		return fmt.Errorf("plan is required")
	}
	if r.EffectiveDate.IsZero() {
		return fmt.Errorf("effective_date is required")
	}
	if r.EndDate != nil && r.EndDate.Before(r.EffectiveDate) {
		return fmt.Errorf("end_date %s is before effective_date %s",
			r.EndDate.Format("2006-01-02"), r.EffectiveDate.Format("2006-01-02"))
	}
	if r.Rate.IsNegative() || r.Rate.Cmp(decimal.NewFromInt(1)) >= 0 {
		return fmt.Errorf("rate must be between 0 and 1, got %s", r.Rate.String())
	}
	return nil
}

func (ip *InputParser) validatePayPeriod(p domain.PayPeriod) error {
	if p.BeginDate.IsZero() || p.EndDate.IsZero() || p.CheckDate.IsZero() {
		return fmt.Errorf("begin_date, end_date and check_date are required")
	}
	if !p.BeginDate.Before(p.EndDate) {
		return fmt.Errorf("begin_date must be before end_date")
	}

	months := (p.EndDate.Year()-p.BeginDate.Year())*12 + int(p.EndDate.Month()) - int(p.BeginDate.Month())
	if months > 1 {
		return fmt.Errorf("period spans more than two calendar months")
	}
	if n := calculation.CountWeekdays(p.BeginDate, p.EndDate); n != weekdaysPerPeriod {
		return fmt.Errorf("period has %d weekdays, want %d", n, weekdaysPerPeriod)
	}

	if p.SplitDate != nil {
		if !p.IsSplit() {
			return fmt.Errorf("split_date given for a period inside one month")
		}
		if !p.SplitDate.After(p.BeginDate) || !p.SplitDate.Before(p.EndDate) {
			return fmt.Errorf("split_date %s must fall strictly inside the period", p.SplitDate.Format("2006-01-02"))
		}
		if p.SplitDate.Day() != 1 || p.SplitDate.Month() != p.EndDate.Month() {
			return fmt.Errorf("split_date %s must be the first day of the end month", p.SplitDate.Format("2006-01-02"))
		}
	}

	if p.ReportNumber < 0 || p.ReportNumber > 3 {
		return fmt.Errorf("report_number must be between 1 and 3, got %d", p.ReportNumber)
	}
	if p.ReportCount < 0 || p.ReportCount > 3 {
		return fmt.Errorf("report_count must be between 1 and 3, got %d", p.ReportCount)
	}
	return nil
}
