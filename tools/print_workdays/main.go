package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rgehrsitz/persreport/internal/calculation"
	"github.com/rgehrsitz/persreport/internal/domain"
)

// Prints the weekday split and calendar ratios of bi-weekly pay periods.
// With no arguments it walks 2021 from the first Sunday; with BEGIN END
// (YYYY-MM-DD) it prints that single period.
func main() {
	if len(os.Args) == 3 {
		begin, err := time.Parse("2006-01-02", os.Args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		end, err := time.Parse("2006-01-02", os.Args[2])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		printPeriod(domain.PayPeriod{BeginDate: begin, EndDate: end})
		return
	}

	begin := time.Date(2021, time.January, 3, 0, 0, 0, 0, time.UTC)
	for begin.Year() == 2021 {
		printPeriod(domain.PayPeriod{BeginDate: begin, EndDate: begin.AddDate(0, 0, 13)})
		begin = begin.AddDate(0, 0, 14)
	}
}

func printPeriod(p domain.PayPeriod) {
	first, second := calculation.WorkDayRatios(p)
	days := calculation.CountWeekdays(p.BeginDate, p.EndDate)
	if !p.IsSplit() {
		fmt.Printf("%s..%s  weekdays=%2d  ratio=%s\n",
			p.BeginDate.Format("2006-01-02"), p.EndDate.Format("2006-01-02"), days, first.StringFixed(3))
		return
	}
	boundary, _ := p.Boundary()
	fmt.Printf("%s..%s  weekdays=%2d  split %s  ratios=%s/%s\n",
		p.BeginDate.Format("2006-01-02"), p.EndDate.Format("2006-01-02"), days,
		boundary.Format("2006-01-02"), first.StringFixed(3), second.StringFixed(3))
}
