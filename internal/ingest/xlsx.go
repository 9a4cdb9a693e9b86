package ingest

import (
	"fmt"

	"github.com/rgehrsitz/persreport/internal/domain"
	"github.com/xuri/excelize/v2"
)

// ReadPeriodSummaryXLSX reads the period-summary extract from a worksheet.
// An empty sheet name reads the first sheet.
func ReadPeriodSummaryXLSX(path, sheet string) ([]domain.EmployeePeriodRecord, error) {
	rows, name, err := readSheet(path, sheet)
	if err != nil {
		return nil, err
	}
	t, err := newTable(rows, fmt.Sprintf("period summary %s[%s]", path, name), periodSummaryRequired)
	if err != nil {
		return nil, err
	}
	return periodSummaryFromTable(t)
}

// ReadChargeLedgerXLSX reads the charge-date extract from a worksheet.
// An empty sheet name reads the first sheet.
func ReadChargeLedgerXLSX(path, sheet string) ([]domain.ChargeDateRecord, error) {
	rows, name, err := readSheet(path, sheet)
	if err != nil {
		return nil, err
	}
	t, err := newTable(rows, fmt.Sprintf("charge ledger %s[%s]", path, name), chargeLedgerRequired)
	if err != nil {
		return nil, err
	}
	return chargeLedgerFromTable(t)
}

func readSheet(path, sheet string) ([][]string, string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, "", fmt.Errorf("workbook %s has no sheets", path)
		}
		sheet = sheets[0]
	}
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		return nil, "", fmt.Errorf("workbook %s has no sheet %q", path, sheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return rows, sheet, nil
}
