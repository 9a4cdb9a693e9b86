package calculation

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/persreport/internal/domain"
)

// ReconciliationEngine runs one pay period through classification,
// aggregation, allocation and row building
type ReconciliationEngine struct {
	EmployerID string
	Rates      *RateSchedule
	Calendar   *PayPeriodCalendar
	Builder    *ContributionRecordBuilder
	Logger     Logger
}

// NewReconciliationEngine creates an engine for the given configuration
func NewReconciliationEngine(cfg *domain.Configuration) *ReconciliationEngine {
	employerID := cfg.EmployerID
	if employerID == "" {
		employerID = domain.DefaultEmployerID
	}
	return &ReconciliationEngine{
		EmployerID: employerID,
		Rates:      NewRateSchedule(cfg.MemberRates, cfg.EmployerRates),
		Calendar:   NewPayPeriodCalendar(cfg.PayPeriods),
		Builder:    NewContributionRecordBuilder(),
		Logger:     NopLogger{},
	}
}

// SetLogger sets the logger for the engine
func (e *ReconciliationEngine) SetLogger(l Logger) {
	if l == nil {
		e.Logger = NopLogger{}
		return
	}
	e.Logger = l
}

// SelectPeriod resolves the pay period and its derived labels for a run
func (e *ReconciliationEngine) SelectPeriod(params domain.RunParameters) (PeriodContext, error) {
	p, err := e.Calendar.Select(params.PeriodControlDate)
	if err != nil {
		return PeriodContext{}, err
	}
	pc := NewPeriodContext(p, params)
	pc.RateChange = pc.Split && e.Rates.MemberRateChanges(domain.CodePERS2, p.BeginDate, p.EndDate)
	return pc, nil
}

// Run reconciles the period summary against the charge ledger and builds the
// report rows. A fatal condition returns an error and no result.
func (e *ReconciliationEngine) Run(ctx context.Context, summaries []domain.EmployeePeriodRecord, charges []domain.ChargeDateRecord, params domain.RunParameters) (*domain.RunResult, error) {
	if len(summaries) == 0 {
		return nil, fmt.Errorf("%w: period summary is empty", ErrMissingInput)
	}
	if len(charges) == 0 {
		return nil, fmt.Errorf("%w: charge ledger is empty", ErrMissingInput)
	}

	pc, err := e.SelectPeriod(params)
	if err != nil {
		return nil, err
	}
	e.Logger.Infof("selected pay period %s (split=%t, report %s %s/%s)", pc.Period, pc.Split, pc.ReportPeriod, pc.ReportNumber, pc.ReportCount)

	agg, err := NewChargeDateAggregator(charges, pc)
	if err != nil {
		return nil, err
	}

	an := NewAnnotator(domain.NewDiagnostics(), e.Logger)
	split := NewSplitAllocationEngine(e.Rates, agg)
	contiguous := NewContiguousPeriodProcessor(agg)

	records := make([]domain.EmployeePeriodRecord, 0, len(summaries))
	for _, rec := range summaries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec.Category = Classify(rec)
		rec.ReportPeriod = pc.ReportPeriod
		rec.ReportNumber = pc.ReportNumber
		rec.EarningPeriod = pc.EarningPeriod

		if pc.Split {
			rec, err = split.Allocate(rec, pc, an)
		} else {
			rec, err = contiguous.Process(rec, an)
		}
		if err != nil {
			return nil, fmt.Errorf("employee %s: %w", rec.EmployeeID, err)
		}
		e.Logger.Debugf("employee %s classified %s, charge hours %s", rec.EmployeeID, rec.Category, rec.ChargeDateTotalHours.String())
		records = append(records, rec)
	}

	records, out := e.Builder.Build(records, pc, an)
	e.Logger.Infof("built %d benefit rows, %d contribution rows, %d for manual review",
		len(out.Benefits), len(out.Contributions), len(out.ManualReview))

	return &domain.RunResult{
		EmployerID:  e.EmployerID,
		Period:      pc.Period,
		Params:      params,
		Split:       pc.Split,
		RateChange:  pc.RateChange,
		Records:     records,
		Output:      out,
		Diagnostics: an.Diagnostics.Events(),
	}, nil
}
