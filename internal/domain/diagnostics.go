package domain

import "sync"

// Severity grades a diagnostic event
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Event is one structured diagnostic raised while processing a run
type Event struct {
	Severity   Severity `json:"severity"`
	EmployeeID string   `json:"employee_id,omitempty"`
	Message    string   `json:"message"`
}

// Diagnostics collects events in the order they were raised.
// It is safe for concurrent use.
type Diagnostics struct {
	mu     sync.Mutex
	events []Event
}

// NewDiagnostics creates an empty collector
func NewDiagnostics() *Diagnostics {
	return &Diagnostics{}
}

// Record appends an event
func (d *Diagnostics) Record(sev Severity, employeeID, msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, Event{Severity: sev, EmployeeID: employeeID, Message: msg})
}

// Events returns a copy of everything recorded so far
func (d *Diagnostics) Events() []Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Event(nil), d.events...)
}

// ForEmployee returns the events raised against one employee
func (d *Diagnostics) ForEmployee(employeeID string) []Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []Event
	for _, e := range d.events {
		if e.EmployeeID == employeeID {
			out = append(out, e)
		}
	}
	return out
}

// Count returns the number of events with the given severity
func (d *Diagnostics) Count(sev Severity) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, e := range d.events {
		if e.Severity == sev {
			n++
		}
	}
	return n
}
