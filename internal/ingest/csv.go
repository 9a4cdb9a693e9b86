// Package ingest reads the period-summary and charge-ledger extracts
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rgehrsitz/persreport/internal/calculation"
	"github.com/rgehrsitz/persreport/internal/domain"
	"github.com/shopspring/decimal"
)

// DefaultSeparator is the field separator of the payroll extracts
const DefaultSeparator = ','

// Period-summary columns
const (
	ColEmployeeNumber           = "EmployeeNumber"
	ColLastName                 = "LastName"
	ColSSN                      = "SSN"
	ColDeductionBenefitCode     = "DeductionBenefitCode"
	ColPersClassification       = "PersClassification"
	ColEmployeeTypeCode         = "EmployeeTypeCode"
	ColEmployeeStatusCode       = "EmployeeStatusCode"
	ColCheckAddMode             = "CheckAddMode"
	ColLastHireDate             = "LastHireDate"
	ColTerminationDate          = "TerminationDate"
	ColTotalHours               = "TotalHours"
	ColTotalEarningAmount       = "TotalEarningAmount"
	ColDeductionCalcBasisAmount = "DeductionCalcBasisAmount"
	ColCurrentAmountEmployer    = "CurrentAmountEmployer"
	ColCurrentAmountEmployee    = "CurrentAmountEmployee"
)

// Charge-ledger columns
const (
	ColChargeDate       = "ChargeDate"
	ColChargeMonth      = "ChargeMonth"
	ColCurrentHours     = "CurrentHours"
	ColCurrentAmount    = "CurrentAmount"
	ColPers1Accountable = "Pers1Accountable"
	ColPers2Accountable = "Pers2Accountable"
	ColPers3Accountable = "Pers3Accountable"
)

var periodSummaryRequired = []string{
	ColEmployeeNumber, ColDeductionBenefitCode, ColPersClassification, ColEmployeeTypeCode,
	ColEmployeeStatusCode, ColTotalHours, ColTotalEarningAmount, ColDeductionCalcBasisAmount,
	ColCurrentAmountEmployer, ColCurrentAmountEmployee,
}

var chargeLedgerRequired = []string{
	ColEmployeeNumber, ColChargeDate, ColCurrentHours, ColCurrentAmount,
	ColPers1Accountable, ColPers2Accountable, ColPers3Accountable,
}

var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"1/2/06",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"01/02/2006 15:04:05",
	"1/2/2006 15:04:05",
	"1/2/2006 3:04:05 PM",
	time.RFC3339,
}

// table is a header-mapped view over extract rows
type table struct {
	source string
	header map[string]int
	rows   [][]string
}

func newTable(records [][]string, source string, required []string) (*table, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s has no header", calculation.ErrMissingInput, source)
	}

	t := &table{source: source, header: make(map[string]int)}
	for i, name := range records[0] {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		t.header[strings.ToLower(name)] = i
	}
	for _, col := range required {
		if _, ok := t.header[strings.ToLower(col)]; !ok {
			return nil, fmt.Errorf("%s is missing required column %s", source, col)
		}
	}

	for _, row := range records[1:] {
		if blankRow(row) {
			continue
		}
		t.rows = append(t.rows, row)
	}
	if len(t.rows) == 0 {
		return nil, fmt.Errorf("%w: %s has no rows", calculation.ErrMissingInput, source)
	}
	return t, nil
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// get returns the trimmed cell for col, or "" when the row is short or the
// column is absent
func (t *table) get(row []string, col string) string {
	i, ok := t.header[strings.ToLower(col)]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (t *table) fieldError(line int, col string, err error) error {
	return fmt.Errorf("%s row %d column %s: %w", t.source, line, col, err)
}

// ReadPeriodSummary reads the period-summary extract
func ReadPeriodSummary(r io.Reader, sep rune) ([]domain.EmployeePeriodRecord, error) {
	records, err := readDelimited(r, sep)
	if err != nil {
		return nil, fmt.Errorf("failed to read period summary: %w", err)
	}
	t, err := newTable(records, "period summary", periodSummaryRequired)
	if err != nil {
		return nil, err
	}
	return periodSummaryFromTable(t)
}

// ReadChargeLedger reads the charge-date extract
func ReadChargeLedger(r io.Reader, sep rune) ([]domain.ChargeDateRecord, error) {
	records, err := readDelimited(r, sep)
	if err != nil {
		return nil, fmt.Errorf("failed to read charge ledger: %w", err)
	}
	t, err := newTable(records, "charge ledger", chargeLedgerRequired)
	if err != nil {
		return nil, err
	}
	return chargeLedgerFromTable(t)
}

// ReadPeriodSummaryFile reads the period-summary extract from a file
func ReadPeriodSummaryFile(path string, sep rune) ([]domain.EmployeePeriodRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer f.Close()
	return ReadPeriodSummary(f, sep)
}

// ReadChargeLedgerFile reads the charge-date extract from a file
func ReadChargeLedgerFile(path string, sep rune) ([]domain.ChargeDateRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer f.Close()
	return ReadChargeLedger(f, sep)
}

func readDelimited(r io.Reader, sep rune) ([][]string, error) {
	if sep == 0 {
		sep = DefaultSeparator
	}
	reader := csv.NewReader(r)
	reader.Comma = sep
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return reader.ReadAll()
}

func periodSummaryFromTable(t *table) ([]domain.EmployeePeriodRecord, error) {
	out := make([]domain.EmployeePeriodRecord, 0, len(t.rows))
	for i, row := range t.rows {
		line := i + 2
		rec := domain.EmployeePeriodRecord{
			EmployeeID:     t.get(row, ColEmployeeNumber),
			LastName:       t.get(row, ColLastName),
			SSN:            t.get(row, ColSSN),
			PlanCode:       strings.ToUpper(t.get(row, ColDeductionBenefitCode)),
			Classification: t.get(row, ColPersClassification),
			TypeCode:       t.get(row, ColEmployeeTypeCode),
			Status:         strings.ToUpper(t.get(row, ColEmployeeStatusCode)),
			CheckAddMode:   strings.ToUpper(t.get(row, ColCheckAddMode)),
		}
		if rec.CheckAddMode == "" {
			rec.CheckAddMode = domain.CheckModeRegular
		}
		if rec.EmployeeID == "" {
			return nil, t.fieldError(line, ColEmployeeNumber, fmt.Errorf("value is required"))
		}

		var err error
		if rec.HireDate, err = parseDate(t.get(row, ColLastHireDate)); err != nil {
			return nil, t.fieldError(line, ColLastHireDate, err)
		}
		if rec.TerminationDate, err = parseDate(t.get(row, ColTerminationDate)); err != nil {
			return nil, t.fieldError(line, ColTerminationDate, err)
		}

		amounts := []struct {
			col string
			dst *decimal.Decimal
		}{
			{ColTotalHours, &rec.TotalHours},
			{ColTotalEarningAmount, &rec.TotalEarningAmount},
			{ColDeductionCalcBasisAmount, &rec.DeductionCalcBasisAmount},
			{ColCurrentAmountEmployer, &rec.EmployerAmount},
			{ColCurrentAmountEmployee, &rec.EmployeeAmount},
		}
		for _, a := range amounts {
			if *a.dst, err = parseDecimal(t.get(row, a.col)); err != nil {
				return nil, t.fieldError(line, a.col, err)
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

func chargeLedgerFromTable(t *table) ([]domain.ChargeDateRecord, error) {
	out := make([]domain.ChargeDateRecord, 0, len(t.rows))
	for i, row := range t.rows {
		line := i + 2
		c := domain.ChargeDateRecord{
			EmployeeID:       t.get(row, ColEmployeeNumber),
			Pers1Accountable: parseFlag(t.get(row, ColPers1Accountable)),
			Pers2Accountable: parseFlag(t.get(row, ColPers2Accountable)),
			Pers3Accountable: parseFlag(t.get(row, ColPers3Accountable)),
			TypeCode:         t.get(row, ColEmployeeTypeCode),
			Classification:   t.get(row, ColPersClassification),
			Status:           strings.ToUpper(t.get(row, ColEmployeeStatusCode)),
		}
		if c.EmployeeID == "" {
			return nil, t.fieldError(line, ColEmployeeNumber, fmt.Errorf("value is required"))
		}

		chargeDate, err := parseDate(t.get(row, ColChargeDate))
		if err != nil {
			return nil, t.fieldError(line, ColChargeDate, err)
		}
		if chargeDate == nil {
			return nil, t.fieldError(line, ColChargeDate, fmt.Errorf("%w: value is required", calculation.ErrInvalidDate))
		}
		c.ChargeDate = *chargeDate

		if c.ChargeMonth, err = parseMonth(t.get(row, ColChargeMonth)); err != nil {
			return nil, t.fieldError(line, ColChargeMonth, err)
		}
		if c.TerminationDate, err = parseDate(t.get(row, ColTerminationDate)); err != nil {
			return nil, t.fieldError(line, ColTerminationDate, err)
		}
		if c.Hours, err = parseDecimal(t.get(row, ColCurrentHours)); err != nil {
			return nil, t.fieldError(line, ColCurrentHours, err)
		}
		if c.Pay, err = parseDecimal(t.get(row, ColCurrentAmount)); err != nil {
			return nil, t.fieldError(line, ColCurrentAmount, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero, nil
	}
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = "-" + strings.Trim(s, "()")
	}
	return decimal.NewFromString(s)
}

// parseDate returns nil for an empty cell
func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", calculation.ErrInvalidDate, s)
}

// parseMonth accepts a month number, a month name, or a date; empty means
// the charge date's own month
func parseMonth(s string) (time.Month, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > 12 {
			return 0, fmt.Errorf("month %d out of range", n)
		}
		return time.Month(n), nil
	}
	for m := time.January; m <= time.December; m++ {
		if strings.EqualFold(s, m.String()) || strings.EqualFold(s, m.String()[:3]) {
			return m, nil
		}
	}
	if d, err := parseDate(s); err == nil && d != nil {
		return d.Month(), nil
	}
	return 0, fmt.Errorf("unrecognized month %q", s)
}

func parseFlag(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "Y", "YES", "T", "TRUE", "1":
		return true
	}
	return false
}
