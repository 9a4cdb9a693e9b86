package calculation

import (
	"testing"
	"time"

	"github.com/rgehrsitz/persreport/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dayPtr(y int, m time.Month, d int) *time.Time {
	t := day(y, m, d)
	return &t
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got.String())
}

// Pay periods used across the tests:
//
//	June/July split   2021-06-20..2021-07-03, 8 + 2 weekdays, check 2021-07-08
//	July contiguous   2021-07-04..2021-07-17, check 2021-07-22
//	July/August split 2021-07-25..2021-08-07, 5 + 5 weekdays, check 2021-08-12
var (
	juneJulySplit   = day(2021, time.July, 8)
	julyContiguous  = day(2021, time.July, 22)
	julyAugustSplit = day(2021, time.August, 12)
)

func testPayPeriods() []domain.PayPeriod {
	return []domain.PayPeriod{
		{BeginDate: day(2021, time.June, 20), EndDate: day(2021, time.July, 3), CheckDate: juneJulySplit, ReportNumber: 1, ReportCount: 2},
		{BeginDate: day(2021, time.July, 4), EndDate: day(2021, time.July, 17), CheckDate: julyContiguous, ReportNumber: 2, ReportCount: 2},
		{BeginDate: day(2021, time.July, 25), EndDate: day(2021, time.August, 7), CheckDate: julyAugustSplit, ReportNumber: 1, ReportCount: 2},
	}
}

func flatRates(plans []string, rate string) []domain.RateRecord {
	out := make([]domain.RateRecord, 0, len(plans))
	for _, p := range plans {
		out = append(out, domain.RateRecord{Plan: p, EffectiveDate: day(2020, time.July, 1), Rate: dec(rate)})
	}
	return out
}

func testConfig() *domain.Configuration {
	return &domain.Configuration{
		MemberRates:   flatRates([]string{"PERS0", "PERS1", "PERS2"}, "0.06"),
		EmployerRates: flatRates([]string{"PERS0", "PERS1", "PERS2", "PERS3"}, "0.1"),
		PayPeriods:    testPayPeriods(),
	}
}

// rateChangeConfig moves the plan 2 member rate from 0.06 to 0.065 on 2021-07-01
func rateChangeConfig() *domain.Configuration {
	cfg := testConfig()
	cfg.MemberRates = append(flatRates([]string{"PERS0", "PERS1"}, "0.06"),
		domain.RateRecord{Plan: "PERS2", EffectiveDate: day(2020, time.July, 1), EndDate: dayPtr(2021, time.June, 30), Rate: dec("0.06")},
		domain.RateRecord{Plan: "PERS2", EffectiveDate: day(2021, time.July, 1), Rate: dec("0.065")},
	)
	return cfg
}

func activeRecord(id, plan, typeCode string) domain.EmployeePeriodRecord {
	return domain.EmployeePeriodRecord{
		EmployeeID:     id,
		LastName:       "Tester" + id,
		SSN:            "123-45-" + id,
		PlanCode:       plan,
		Classification: "05",
		TypeCode:       typeCode,
		Status:         domain.StatusActive,
		CheckAddMode:   domain.CheckModeRegular,
	}
}

func charge(id string, on time.Time, hours, pay string, plan domain.PlanFamily) domain.ChargeDateRecord {
	c := domain.ChargeDateRecord{
		EmployeeID:     id,
		ChargeDate:     on,
		Hours:          dec(hours),
		Pay:            dec(pay),
		TypeCode:       "1",
		Classification: "05",
		Status:         domain.StatusActive,
	}
	switch plan {
	case domain.Plan0, domain.Plan1:
		c.Pers1Accountable = true
	case domain.Plan2:
		c.Pers2Accountable = true
	case domain.Plan3:
		c.Pers3Accountable = true
	}
	return c
}

func terminatedCharge(c domain.ChargeDateRecord, term time.Time) domain.ChargeDateRecord {
	c.Status = domain.StatusTerminated
	c.TerminationDate = &term
	return c
}

func withTypeCode(c domain.ChargeDateRecord, typeCode string) domain.ChargeDateRecord {
	c.TypeCode = typeCode
	return c
}

// TestLogger records everything it is given
type TestLogger struct {
	messages []string
}

func (tl *TestLogger) Debugf(format string, args ...interface{}) {
	tl.messages = append(tl.messages, "DEBUG: "+format)
}

func (tl *TestLogger) Infof(format string, args ...interface{}) {
	tl.messages = append(tl.messages, "INFO: "+format)
}

func (tl *TestLogger) Warnf(format string, args ...interface{}) {
	tl.messages = append(tl.messages, "WARN: "+format)
}

func (tl *TestLogger) Errorf(format string, args ...interface{}) {
	tl.messages = append(tl.messages, "ERROR: "+format)
}
