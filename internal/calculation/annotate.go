package calculation

import "github.com/rgehrsitz/persreport/internal/domain"

// Annotator records a note against a record, in the record's own note log and
// in the run's diagnostics, and echoes it to the logger
type Annotator struct {
	Diagnostics *domain.Diagnostics
	Logger      Logger
}

// NewAnnotator creates an annotator. A nil logger discards output.
func NewAnnotator(diag *domain.Diagnostics, logger Logger) *Annotator {
	if diag == nil {
		diag = domain.NewDiagnostics()
	}
	if logger == nil {
		logger = NopLogger{}
	}
	return &Annotator{Diagnostics: diag, Logger: logger}
}

// Note returns a copy of rec carrying msg
func (a *Annotator) Note(rec domain.EmployeePeriodRecord, sev domain.Severity, msg string) domain.EmployeePeriodRecord {
	a.Record(sev, rec.EmployeeID, msg)
	return rec.WithNote(msg)
}

// Record logs a diagnostic that does not belong in the record's note log
func (a *Annotator) Record(sev domain.Severity, employeeID, msg string) {
	a.Diagnostics.Record(sev, employeeID, msg)
	switch sev {
	case domain.SeverityError:
		a.Logger.Errorf("employee %s: %s", employeeID, msg)
	case domain.SeverityWarning:
		a.Logger.Warnf("employee %s: %s", employeeID, msg)
	default:
		a.Logger.Debugf("employee %s: %s", employeeID, msg)
	}
}
