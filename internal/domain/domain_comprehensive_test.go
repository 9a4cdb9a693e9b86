package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func TestEmployeePeriodRecord_WithNote_CopiesLog(t *testing.T) {
	original := EmployeePeriodRecord{EmployeeID: "1001", Notes: []string{"first"}}

	noted := original.WithNote("  second ")

	assert.Equal(t, []string{"first"}, original.Notes, "original note log must not change")
	assert.Equal(t, []string{"first", "second"}, noted.Notes)
	assert.Equal(t, "first  second", noted.NoteText())

	// Appending to one branch must not leak into a sibling branch
	a := noted.WithNote("a")
	b := noted.WithNote("b")
	assert.Equal(t, "a", a.Notes[2])
	assert.Equal(t, "b", b.Notes[2])
}

func TestEmployeePeriodRecord_WithSplit_DoesNotAlias(t *testing.T) {
	s := SplitAllocation{First: SubPeriodAllocation{Hours: decimal.NewFromInt(40)}}
	rec := EmployeePeriodRecord{}.WithSplit(s)

	s.First.Hours = decimal.NewFromInt(1)

	assert.True(t, rec.Split.First.Hours.Equal(decimal.NewFromInt(40)))
}

func TestEmployeePeriodRecord_StatusHelpers(t *testing.T) {
	assert.True(t, EmployeePeriodRecord{Status: " t"}.IsTerminated())
	assert.False(t, EmployeePeriodRecord{Status: "A"}.IsTerminated())
	assert.True(t, EmployeePeriodRecord{CheckAddMode: "R"}.IsRegularCheck())
	assert.False(t, EmployeePeriodRecord{CheckAddMode: "M"}.IsRegularCheck())
}

func TestPlanFamilyOf(t *testing.T) {
	tests := []struct {
		code   string
		family PlanFamily
		ok     bool
	}{
		{"PERS2", Plan2, true},
		{" pers2 ", Plan2, true},
		{"P3BW1", Plan3, true},
		{"P3NH", Plan3, true},
		{"PERS3", PlanUnknown, false},
		{"PERS1", Plan1, true},
		{"PERS0", Plan0, true},
		{"", PlanUnknown, false},
		{"LEOFF2", PlanUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			family, ok := PlanFamilyOf(tt.code)
			assert.Equal(t, tt.family, family)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestPlan3Option(t *testing.T) {
	program, option, ok := Plan3Option("P3BW2")
	assert.True(t, ok)
	assert.Equal(t, ProgramWSIB, program)
	assert.Equal(t, "B", option)

	program, option, ok = Plan3Option("p3nh")
	assert.True(t, ok)
	assert.Equal(t, ProgramSelf, program)
	assert.Equal(t, "A", option)

	_, _, ok = Plan3Option("P3ZZ")
	assert.False(t, ok)
}

func TestChargeDateRecord_EligibleFor(t *testing.T) {
	c := ChargeDateRecord{Pers1Accountable: true, Pers3Accountable: true}

	assert.True(t, c.EligibleFor(Plan0), "plan 0 uses the plan 1 flag")
	assert.True(t, c.EligibleFor(Plan1))
	assert.False(t, c.EligibleFor(Plan2))
	assert.True(t, c.EligibleFor(Plan3))
	assert.False(t, c.EligibleFor(PlanUnknown))
}

func TestChargeDateRecord_Month(t *testing.T) {
	assert.Equal(t, time.July, ChargeDateRecord{ChargeDate: date(2021, time.July, 2)}.Month())
	assert.Equal(t, time.June, ChargeDateRecord{ChargeDate: date(2021, time.July, 2), ChargeMonth: time.June}.Month())
}

func TestPayPeriod_SplitAndLabels(t *testing.T) {
	split := PayPeriod{
		BeginDate: date(2021, time.June, 20),
		EndDate:   date(2021, time.July, 3),
		CheckDate: date(2021, time.July, 8),
	}
	assert.True(t, split.IsSplit())
	assert.Equal(t, "202107", split.EarningPeriod())
	assert.Equal(t, "202106", split.PriorEarningPeriod())

	boundary, ok := split.Boundary()
	assert.True(t, ok)
	assert.Equal(t, date(2021, time.July, 1), boundary)

	split.SplitDate = datePtr(2021, time.June, 30)
	boundary, ok = split.Boundary()
	assert.True(t, ok)
	assert.Equal(t, date(2021, time.June, 30), boundary)

	single := PayPeriod{BeginDate: date(2021, time.July, 4), EndDate: date(2021, time.July, 17)}
	assert.False(t, single.IsSplit())
	_, ok = single.Boundary()
	assert.False(t, ok)

	yearEnd := PayPeriod{BeginDate: date(2021, time.December, 26), EndDate: date(2022, time.January, 8)}
	assert.True(t, yearEnd.IsSplit())
	assert.Equal(t, "202201", yearEnd.EarningPeriod())
	assert.Equal(t, "202112", yearEnd.PriorEarningPeriod())
}

func TestRunParameters_ReportType(t *testing.T) {
	assert.Equal(t, "R", RunParameters{}.ReportType())
	assert.Equal(t, "C", RunParameters{Correction: true}.ReportType())
}

func TestRateRecord_CoversAndOverlaps(t *testing.T) {
	closed := RateRecord{Plan: "PERS2", EffectiveDate: date(2020, time.July, 1), EndDate: datePtr(2021, time.June, 30)}
	open := RateRecord{Plan: "PERS2", EffectiveDate: date(2021, time.July, 1)}

	assert.True(t, closed.Covers(date(2021, time.June, 30)), "end date is inclusive")
	assert.False(t, closed.Covers(date(2021, time.July, 1)))
	assert.True(t, open.Covers(date(2030, time.January, 1)))
	assert.False(t, open.Covers(date(2021, time.June, 30)))

	assert.False(t, closed.Overlaps(open))
	assert.False(t, open.Overlaps(closed))

	overlapping := RateRecord{Plan: "PERS2", EffectiveDate: date(2021, time.June, 30)}
	assert.True(t, closed.Overlaps(overlapping))
	assert.True(t, open.Overlaps(overlapping))
}

func TestDiagnostics(t *testing.T) {
	d := NewDiagnostics()
	d.Record(SeverityWarning, "1001", "hours differ")
	d.Record(SeverityInfo, "1002", "retiree")
	d.Record(SeverityWarning, "1001", "missing plan")

	assert.Len(t, d.Events(), 3)
	assert.Equal(t, 2, d.Count(SeverityWarning))
	assert.Equal(t, 0, d.Count(SeverityError))

	events := d.ForEmployee("1001")
	assert.Len(t, events, 2)
	assert.Equal(t, "hours differ", events[0].Message)

	// Events returns a copy
	events = d.Events()
	events[0].Message = "changed"
	assert.Equal(t, "hours differ", d.Events()[0].Message)
}
