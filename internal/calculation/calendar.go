package calculation

import (
	"fmt"
	"time"

	"github.com/rgehrsitz/persreport/internal/domain"
	"github.com/shopspring/decimal"
)

// checkDateWindow is how far, in days, a control date may sit from a check date
const checkDateWindow = 7

// standardPeriodHours is the length of a full bi-weekly pay period
var standardPeriodHours = decimal.NewFromInt(80)

// PayPeriodCalendar selects pay periods from the configured calendar
type PayPeriodCalendar struct {
	periods []domain.PayPeriod
}

// NewPayPeriodCalendar creates a calendar over the configured pay periods
func NewPayPeriodCalendar(periods []domain.PayPeriod) *PayPeriodCalendar {
	return &PayPeriodCalendar{periods: append([]domain.PayPeriod(nil), periods...)}
}

// Periods returns the configured pay periods in calendar order
func (c *PayPeriodCalendar) Periods() []domain.PayPeriod {
	return append([]domain.PayPeriod(nil), c.periods...)
}

// Select returns the single pay period whose check date lies within a week of
// the control date
func (c *PayPeriodCalendar) Select(control time.Time) (domain.PayPeriod, error) {
	target := dateOnly(control)
	var matches []domain.PayPeriod
	for _, p := range c.periods {
		if absDays(dateOnly(p.CheckDate), target) <= checkDateWindow {
			matches = append(matches, p)
		}
	}

	switch len(matches) {
	case 0:
		return domain.PayPeriod{}, fmt.Errorf("%w: %s", ErrNoPayPeriod, target.Format("2006-01-02"))
	case 1:
		return matches[0], nil
	default:
		return domain.PayPeriod{}, fmt.Errorf("%w: %s matches %d periods", ErrAmbiguousPayPeriod, target.Format("2006-01-02"), len(matches))
	}
}

func absDays(a, b time.Time) int {
	d := int(a.Sub(b).Hours() / 24)
	if d < 0 {
		return -d
	}
	return d
}

// CountWeekdays counts Monday through Friday days between from and to inclusive
func CountWeekdays(from, to time.Time) int {
	n := 0
	for d := dateOnly(from); !d.After(dateOnly(to)); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			n++
		}
	}
	return n
}

// WorkDayRatios returns the default share of the period's 80 hours that falls
// on each side of the split boundary. A period inside one month gets its
// whole share first.
func WorkDayRatios(p domain.PayPeriod) (first, second decimal.Decimal) {
	boundary, ok := p.Boundary()
	if !ok {
		return workDayShare(CountWeekdays(p.BeginDate, p.EndDate)), decimal.Zero
	}
	return workDayShare(CountWeekdays(p.BeginDate, boundary.AddDate(0, 0, -1))), workDayShare(CountWeekdays(boundary, p.EndDate))
}

func workDayShare(days int) decimal.Decimal {
	return decimal.NewFromInt(int64(days * 8)).Div(standardPeriodHours)
}

// PeriodContext carries the selected pay period and everything derived from
// it through every stage of a run
type PeriodContext struct {
	Period             domain.PayPeriod
	Split              bool
	Boundary           time.Time
	ReportPeriod       string
	ReportNumber       string
	ReportCount        string
	ReportType         string
	EarningPeriod      string
	PriorEarningPeriod string
	FirstRatio         decimal.Decimal
	SecondRatio        decimal.Decimal
	RateChange         bool
}

// NewPeriodContext derives labels, numbering and default ratios for a run
func NewPeriodContext(p domain.PayPeriod, params domain.RunParameters) PeriodContext {
	pc := PeriodContext{
		Period:             p,
		Split:              p.IsSplit() && !params.SingleEarningPeriod,
		ReportPeriod:       domain.MonthLabel(p.EndDate),
		ReportNumber:       twoDigits(params.ReportNumber, p.ReportNumber),
		ReportCount:        twoDigits(params.ReportCount, p.ReportCount),
		ReportType:         params.ReportType(),
		EarningPeriod:      p.EarningPeriod(),
		PriorEarningPeriod: p.PriorEarningPeriod(),
	}
	if params.UsePriorMonth {
		pc.ReportPeriod = domain.MonthLabel(p.BeginDate)
	}
	if pc.Split {
		pc.Boundary, _ = p.Boundary()
		pc.Boundary = dateOnly(pc.Boundary)
	}
	pc.FirstRatio, pc.SecondRatio = WorkDayRatios(p)
	return pc
}

func twoDigits(override, configured int) string {
	if override != 0 {
		return fmt.Sprintf("%02d", override)
	}
	return fmt.Sprintf("%02d", configured)
}
