// Package archive keeps an append-only SQLite history of reconciliation runs.
//
// Each run is written once under a uuid together with the benefit,
// contribution and manual-review rows it produced and the diagnostics it
// raised. Rows are never updated or deleted; triggers reject both. A corrected
// report is archived as a new run.
//
// Use ":memory:" for an in-memory database.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rgehrsitz/persreport/internal/domain"
)

var (
	// ErrRunExists is returned when a run id has already been archived
	ErrRunExists = errors.New("run already archived")
	// ErrRunNotFound is returned when no run has the requested id
	ErrRunNotFound = errors.New("run not found")
)

const dateLayout = "2006-01-02"

// RunRecord is the header of one archived run
type RunRecord struct {
	ID           string
	EmployerID   string
	BeginDate    time.Time
	EndDate      time.Time
	CheckDate    time.Time
	ReportPeriod string
	ReportNumber string
	ReportCount  string
	ReportType   string
	Split        bool
	RateChange   bool
	TotalRecords int
	CreatedAt    time.Time
}

// Store archives runs in SQLite
type Store struct {
	db  *sql.DB
	mu  sync.RWMutex
	now func() time.Time
}

// New opens (and migrates) the archive at dbPath
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps ":memory:" databases shared across calls
	db.SetMaxOpenConns(1)

	store := &Store{db: db, now: time.Now}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		employer_id TEXT NOT NULL,
		begin_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		check_date TEXT NOT NULL,
		report_period TEXT NOT NULL,
		report_number TEXT NOT NULL,
		report_count TEXT NOT NULL,
		report_type TEXT NOT NULL,
		split INTEGER NOT NULL,
		rate_change INTEGER NOT NULL,
		total_records INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_check_date ON runs(check_date);

	CREATE TABLE IF NOT EXISTS benefit_rows (
		run_id TEXT NOT NULL REFERENCES runs(id),
		seq INTEGER NOT NULL,
		report_period TEXT NOT NULL,
		report_number TEXT NOT NULL,
		employee_id TEXT NOT NULL,
		last_name TEXT NOT NULL,
		ssn TEXT NOT NULL,
		plan_code TEXT NOT NULL,
		type_code TEXT NOT NULL,
		earning_period TEXT NOT NULL,
		hours TEXT NOT NULL,
		compensation TEXT NOT NULL,
		employer_amount TEXT NOT NULL,
		employee_amount TEXT NOT NULL,
		status TEXT NOT NULL,
		PRIMARY KEY (run_id, seq)
	);

	CREATE TABLE IF NOT EXISTS contribution_rows (
		run_id TEXT NOT NULL REFERENCES runs(id),
		seq INTEGER NOT NULL,
		report_period TEXT NOT NULL,
		report_number TEXT NOT NULL,
		employee_id TEXT NOT NULL,
		last_name TEXT NOT NULL,
		ssn TEXT NOT NULL,
		plan_code TEXT NOT NULL,
		employee_amount TEXT NOT NULL,
		investment_program TEXT NOT NULL,
		rate_option TEXT NOT NULL,
		PRIMARY KEY (run_id, seq)
	);

	CREATE TABLE IF NOT EXISTS manual_review_rows (
		run_id TEXT NOT NULL REFERENCES runs(id),
		seq INTEGER NOT NULL,
		employee_id TEXT NOT NULL,
		note TEXT NOT NULL,
		record_json TEXT NOT NULL,
		PRIMARY KEY (run_id, seq)
	);

	CREATE TABLE IF NOT EXISTS diagnostics (
		run_id TEXT NOT NULL REFERENCES runs(id),
		seq INTEGER NOT NULL,
		severity TEXT NOT NULL,
		employee_id TEXT,
		message TEXT NOT NULL,
		PRIMARY KEY (run_id, seq)
	);

	CREATE INDEX IF NOT EXISTS idx_diagnostics_employee ON diagnostics(employee_id);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	for _, table := range []string{"runs", "benefit_rows", "contribution_rows", "manual_review_rows", "diagnostics"} {
		guard := fmt.Sprintf(`
		CREATE TRIGGER IF NOT EXISTS %[1]s_no_update BEFORE UPDATE ON %[1]s
		BEGIN SELECT RAISE(ABORT, '%[1]s is append-only'); END;
		CREATE TRIGGER IF NOT EXISTS %[1]s_no_delete BEFORE DELETE ON %[1]s
		BEGIN SELECT RAISE(ABORT, '%[1]s is append-only'); END;`, table)
		if _, err := s.db.Exec(guard); err != nil {
			return err
		}
	}
	return nil
}

// SaveRun archives a run under a fresh uuid and returns the id
func (s *Store) SaveRun(ctx context.Context, result *domain.RunResult) (string, error) {
	id := uuid.NewString()
	if err := s.SaveRunWithID(ctx, id, result); err != nil {
		return "", err
	}
	return id, nil
}

// SaveRunWithID archives a run under a caller-chosen id. An id can be written once.
func (s *Store) SaveRunWithID(ctx context.Context, id string, result *domain.RunResult) error {
	if result == nil {
		return fmt.Errorf("no run result to archive")
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid run id %q: %w", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sum := result.Output.Summary
	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, employer_id, begin_date, end_date, check_date, report_period, report_number,
		 report_count, report_type, split, rate_change, total_records, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		result.EmployerID,
		result.Period.BeginDate.Format(dateLayout),
		result.Period.EndDate.Format(dateLayout),
		result.Period.CheckDate.Format(dateLayout),
		sum.ReportPeriod,
		sum.ReportNumber,
		sum.ReportCount,
		result.Params.ReportType(),
		result.Split,
		result.RateChange,
		sum.TotalRecords,
		s.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: %s", ErrRunExists, id)
		}
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for i, r := range result.Output.Benefits {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO benefit_rows
			(run_id, seq, report_period, report_number, employee_id, last_name, ssn, plan_code,
			 type_code, earning_period, hours, compensation, employer_amount, employee_amount, status)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, i, r.ReportPeriod, r.ReportNumber, r.EmployeeID, r.LastName, r.SSN, r.PlanCode,
			r.TypeCode, r.EarningPeriod, r.Hours.String(), r.Compensation.String(),
			r.EmployerAmount.String(), r.EmployeeAmount.String(), r.Status)
		if err != nil {
			return fmt.Errorf("failed to insert benefit row %d: %w", i, err)
		}
	}

	for i, r := range result.Output.Contributions {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO contribution_rows
			(run_id, seq, report_period, report_number, employee_id, last_name, ssn, plan_code,
			 employee_amount, investment_program, rate_option)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, i, r.ReportPeriod, r.ReportNumber, r.EmployeeID, r.LastName, r.SSN, r.PlanCode,
			r.EmployeeAmount.String(), r.InvestmentProgram, r.RateOption)
		if err != nil {
			return fmt.Errorf("failed to insert contribution row %d: %w", i, err)
		}
	}

	for i, m := range result.Output.ManualReview {
		recordJSON, err := json.Marshal(m.Record)
		if err != nil {
			return fmt.Errorf("failed to encode manual review row %d: %w", i, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO manual_review_rows (run_id, seq, employee_id, note, record_json)
			VALUES (?, ?, ?, ?, ?)`,
			id, i, m.Record.EmployeeID, m.Note, string(recordJSON))
		if err != nil {
			return fmt.Errorf("failed to insert manual review row %d: %w", i, err)
		}
	}

	for i, e := range result.Diagnostics {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO diagnostics (run_id, seq, severity, employee_id, message)
			VALUES (?, ?, ?, ?, ?)`,
			id, i, string(e.Severity), nullString(e.EmployeeID), e.Message)
		if err != nil {
			return fmt.Errorf("failed to insert diagnostic %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// ListRuns returns every archived run, oldest first
func (s *Store) ListRuns(ctx context.Context) ([]RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, runSelect+` ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun returns one run header
func (s *Store) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, runSelect+` WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	run, err := scanRun(rows)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// LoadBenefitRows returns a run's benefit rows in report order
func (s *Store) LoadBenefitRows(ctx context.Context, runID string) ([]domain.BenefitRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT report_period, report_number, employee_id, last_name, ssn, plan_code, type_code,
		       earning_period, hours, compensation, employer_amount, employee_amount, status
		FROM benefit_rows WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query benefit rows: %w", err)
	}
	defer rows.Close()

	var out []domain.BenefitRow
	for rows.Next() {
		var r domain.BenefitRow
		if err := rows.Scan(&r.ReportPeriod, &r.ReportNumber, &r.EmployeeID, &r.LastName, &r.SSN,
			&r.PlanCode, &r.TypeCode, &r.EarningPeriod, &r.Hours, &r.Compensation,
			&r.EmployerAmount, &r.EmployeeAmount, &r.Status); err != nil {
			return nil, fmt.Errorf("failed to scan benefit row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LoadContributionRows returns a run's contribution rows in report order
func (s *Store) LoadContributionRows(ctx context.Context, runID string) ([]domain.ContributionRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT report_period, report_number, employee_id, last_name, ssn, plan_code,
		       employee_amount, investment_program, rate_option
		FROM contribution_rows WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query contribution rows: %w", err)
	}
	defer rows.Close()

	var out []domain.ContributionRow
	for rows.Next() {
		var r domain.ContributionRow
		if err := rows.Scan(&r.ReportPeriod, &r.ReportNumber, &r.EmployeeID, &r.LastName, &r.SSN,
			&r.PlanCode, &r.EmployeeAmount, &r.InvestmentProgram, &r.RateOption); err != nil {
			return nil, fmt.Errorf("failed to scan contribution row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LoadManualReview returns a run's manual-review rows with their record snapshots
func (s *Store) LoadManualReview(ctx context.Context, runID string) ([]domain.ManualReviewRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT note, record_json FROM manual_review_rows WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query manual review rows: %w", err)
	}
	defer rows.Close()

	var out []domain.ManualReviewRow
	for rows.Next() {
		var (
			m          domain.ManualReviewRow
			recordJSON string
		)
		if err := rows.Scan(&m.Note, &recordJSON); err != nil {
			return nil, fmt.Errorf("failed to scan manual review row: %w", err)
		}
		if err := json.Unmarshal([]byte(recordJSON), &m.Record); err != nil {
			return nil, fmt.Errorf("failed to decode manual review record: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// LoadDiagnostics returns a run's diagnostics in the order they were raised
func (s *Store) LoadDiagnostics(ctx context.Context, runID string) ([]domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT severity, employee_id, message FROM diagnostics WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query diagnostics: %w", err)
	}
	defer rows.Close()

	var out []domain.Event
	for rows.Next() {
		var (
			severity   string
			employeeID sql.NullString
			e          domain.Event
		)
		if err := rows.Scan(&severity, &employeeID, &e.Message); err != nil {
			return nil, fmt.Errorf("failed to scan diagnostic: %w", err)
		}
		e.Severity = domain.Severity(severity)
		e.EmployeeID = employeeID.String
		out = append(out, e)
	}
	return out, rows.Err()
}

const runSelect = `
	SELECT id, employer_id, begin_date, end_date, check_date, report_period, report_number,
	       report_count, report_type, split, rate_change, total_records, created_at
	FROM runs`

func scanRun(rows *sql.Rows) (RunRecord, error) {
	var (
		run                        RunRecord
		begin, end, check, created string
	)
	err := rows.Scan(&run.ID, &run.EmployerID, &begin, &end, &check, &run.ReportPeriod,
		&run.ReportNumber, &run.ReportCount, &run.ReportType, &run.Split, &run.RateChange,
		&run.TotalRecords, &created)
	if err != nil {
		return run, fmt.Errorf("failed to scan run: %w", err)
	}
	run.BeginDate, _ = time.Parse(dateLayout, begin)
	run.EndDate, _ = time.Parse(dateLayout, end)
	run.CheckDate, _ = time.Parse(dateLayout, check)
	run.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	return run, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
