package output

import (
	"fmt"

	"github.com/rgehrsitz/persreport/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Validation workbook sheet names
const (
	SheetBenefits      = "DefinedBenefitRecords"
	SheetContributions = "DefinedContributionRecords"
	SheetManualReview  = "ManualVerifyRecords"
	SheetSummary       = "SummaryRecord"
	SheetInvoice       = "DRSInvoice"
	SheetRecords       = "PeriodControlDate"
)

// WorkbookSheets is the sheet order of the validation workbook
var WorkbookSheets = []string{SheetBenefits, SheetContributions, SheetManualReview, SheetSummary, SheetInvoice, SheetRecords}

var (
	benefitHeaders = []string{
		"ReportPeriod", "ReportNumber", "EmployeeNumber", "LastName", "SSN", "PlanCode", "TypeCode",
		"EarningPeriod", "Hours", "Compensation", "EmployerAmt", "EmployeeAmt", "Status",
	}
	contributionHeaders = []string{
		"ReportPeriod", "ReportNumber", "EmployeeNumber", "LastName", "SSN", "PlanCode",
		"EmployeeAmt", "InvestProgram", "RateOption",
	}
	manualReviewHeaders = []string{
		"EmployeeNumber", "LastName", "DeductionBenefitCode", "PersClassification", "EmployeeTypeCode",
		"EmployeeStatusCode", "CheckAddMode", "Category", "TotalHours", "TotalEarningAmount",
		"DeductionCalcBasisAmount", "CurrentAmountEmployer", "CurrentAmountEmployee",
		"ChargeDateTotalHours", "ChargeDateTotalPay", "Note",
	}
	summaryHeaders = []string{
		"ReportPeriod", "ReportType", "ReportNumber", "ReportCount", "TotalCompensation",
		"TotalEmployeeAmt", "TotalEmployerAmt", "TotalHours", "TotalRecords",
	}
	invoiceHeaders = []string{
		"EmployerSharePlan1", "EmployerSharePlan2", "EmployerSharePlan3", "TotalEmployerShare",
		"EmployeeSharePlan1", "EmployeeSharePlan2", "EmployeeSharePlan3WSIB", "EmployeeSharePlan3SELF",
		"TotalEmployeeShare", "TotalPERSContribution", "EmployeeRegisterAdjustment", "EmployerRegisterAdjustment",
	}
	recordHeaders = []string{
		"EmployeeNumber", "LastName", "DeductionBenefitCode", "Category", "EarningPeriod", "BasisAmount",
		"ChargeDateTotalHours", "ChargeDateTotalPay",
		"Split1Ratio", "Split1Hours", "Split1Pay", "Split1MemberRate", "Split1EmployerRate", "Split1EmployeeAmt", "Split1EmployerAmt",
		"Split2Ratio", "Split2Hours", "Split2Pay", "Split2MemberRate", "Split2EmployerRate", "Split2EmployeeAmt", "Split2EmployerAmt",
		"EmployeeDifference", "EmployerDifference", "Notes",
	}
)

// BuildWorkbook lays the run out as the analyst validation workbook
func BuildWorkbook(result *domain.RunResult) (*excelize.File, error) {
	if result == nil {
		return nil, fmt.Errorf("no run result to export")
	}

	f := excelize.NewFile()
	for _, sheet := range WorkbookSheets {
		if index, _ := f.GetSheetIndex(sheet); index == -1 {
			if _, err := f.NewSheet(sheet); err != nil {
				return nil, fmt.Errorf("create sheet %s: %w", sheet, err)
			}
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("remove default sheet: %w", err)
	}
	activeIndex, _ := f.GetSheetIndex(SheetBenefits)
	f.SetActiveSheet(activeIndex)

	out := result.Output

	benefits := newSheetWriter(f, SheetBenefits, benefitHeaders)
	for _, r := range out.Benefits {
		benefits.row(r.ReportPeriod, r.ReportNumber, r.EmployeeID, r.LastName, r.SSN, r.PlanCode, r.TypeCode,
			r.EarningPeriod, r.Hours, r.Compensation, r.EmployerAmount, r.EmployeeAmount, r.Status)
	}

	contributions := newSheetWriter(f, SheetContributions, contributionHeaders)
	for _, r := range out.Contributions {
		contributions.row(r.ReportPeriod, r.ReportNumber, r.EmployeeID, r.LastName, r.SSN, r.PlanCode,
			r.EmployeeAmount, r.InvestmentProgram, r.RateOption)
	}

	review := newSheetWriter(f, SheetManualReview, manualReviewHeaders)
	for _, m := range out.ManualReview {
		rec := m.Record
		review.row(rec.EmployeeID, rec.LastName, rec.PlanCode, rec.Classification, rec.TypeCode,
			rec.Status, rec.CheckAddMode, string(rec.Category), rec.TotalHours, rec.TotalEarningAmount,
			rec.DeductionCalcBasisAmount, rec.EmployerAmount, rec.EmployeeAmount,
			rec.ChargeDateTotalHours, rec.ChargeDateTotalPay, m.Note)
	}

	s := out.Summary
	summary := newSheetWriter(f, SheetSummary, summaryHeaders)
	summary.row(s.ReportPeriod, result.Params.ReportType(), s.ReportNumber, s.ReportCount, s.TotalCompensation,
		s.TotalEmployeeAmount, s.TotalEmployerAmount, s.TotalHours, s.TotalRecords)

	inv := out.Invoice
	invoice := newSheetWriter(f, SheetInvoice, invoiceHeaders)
	invoice.row(inv.EmployerSharePlan1, inv.EmployerSharePlan2, inv.EmployerSharePlan3, inv.TotalEmployerShare,
		inv.EmployeeSharePlan1, inv.EmployeeSharePlan2, inv.EmployeeSharePlan3WSIB, inv.EmployeeSharePlan3Self,
		inv.TotalEmployeeShare, inv.TotalPERSContribution, inv.EmployeeRegisterAdjustment, inv.EmployerRegisterAdjustment)

	records := newSheetWriter(f, SheetRecords, recordHeaders)
	for _, rec := range result.Records {
		values := []interface{}{
			rec.EmployeeID, rec.LastName, rec.PlanCode, string(rec.Category), rec.EarningPeriod, rec.BasisAmount,
			rec.ChargeDateTotalHours, rec.ChargeDateTotalPay,
		}
		if sp := rec.Split; sp != nil {
			values = append(values, subPeriodValues(sp.First)...)
			values = append(values, subPeriodValues(sp.Second)...)
			values = append(values, sp.EmployeeDifference, sp.EmployerDifference)
		} else {
			values = append(values, make([]interface{}, 2*7+2)...)
		}
		values = append(values, rec.NoteText())
		records.row(values...)
	}

	for _, w := range []*sheetWriter{benefits, contributions, review, summary, invoice, records} {
		if w.err != nil {
			return nil, fmt.Errorf("write sheet %s: %w", w.sheet, w.err)
		}
		w.widen()
	}
	return f, nil
}

func subPeriodValues(s domain.SubPeriodAllocation) []interface{} {
	return []interface{}{s.HoursRatio, s.Hours, s.Pay, s.MemberRate, s.EmployerRate, s.EmployeeContribution, s.EmployerContribution}
}

// WorkbookFormatter renders the validation workbook as XLSX bytes
type WorkbookFormatter struct{}

func (WorkbookFormatter) Name() string { return "xlsx" }

func (WorkbookFormatter) Format(result *domain.RunResult) ([]byte, error) {
	f, err := BuildWorkbook(result)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetWriter appends rows to one sheet and keeps the first error
type sheetWriter struct {
	f       *excelize.File
	sheet   string
	next    int
	columns int
	err     error
}

func newSheetWriter(f *excelize.File, sheet string, headers []string) *sheetWriter {
	w := &sheetWriter{f: f, sheet: sheet, next: 1, columns: len(headers)}
	values := make([]interface{}, len(headers))
	for i, h := range headers {
		values[i] = h
	}
	w.row(values...)
	return w
}

func (w *sheetWriter) row(values ...interface{}) {
	if w.err != nil {
		return
	}
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, w.next)
		if err != nil {
			w.err = err
			return
		}
		if err := w.f.SetCellValue(w.sheet, cell, cellValue(v)); err != nil {
			w.err = err
			return
		}
	}
	w.next++
}

func (w *sheetWriter) widen() {
	if w.columns == 0 {
		return
	}
	last, err := excelize.ColumnNumberToName(w.columns)
	if err != nil {
		return
	}
	_ = w.f.SetColWidth(w.sheet, "A", last, 16)
}

// cellValue stores decimals as numbers; nil leaves the cell empty
func cellValue(v interface{}) interface{} {
	switch d := v.(type) {
	case decimal.Decimal:
		return d.InexactFloat64()
	case nil:
		return ""
	default:
		return v
	}
}
