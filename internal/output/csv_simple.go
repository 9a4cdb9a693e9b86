package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"

	"github.com/rgehrsitz/persreport/internal/domain"
)

// CSVSummarizer writes one row per benefit and contribution line
type CSVSummarizer struct{}

func (c CSVSummarizer) Name() string { return "csv" }

func (c CSVSummarizer) Format(result *domain.RunResult) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("no run result to format")
	}
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"RecordType", "EmployeeNumber", "LastName", "PlanCode", "TypeCode", "EarningPeriod", "Hours", "Compensation", "EmployerAmt", "EmployeeAmt", "InvestProgram", "RateOption", "Status"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, r := range result.Output.Benefits {
		row := []string{
			"B",
			r.EmployeeID,
			r.LastName,
			r.PlanCode,
			r.TypeCode,
			r.EarningPeriod,
			r.Hours.StringFixed(1),
			r.Compensation.StringFixed(2),
			r.EmployerAmount.StringFixed(2),
			r.EmployeeAmount.StringFixed(2),
			"",
			"",
			r.Status,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	for _, r := range result.Output.Contributions {
		row := []string{
			"C",
			r.EmployeeID,
			r.LastName,
			r.PlanCode,
			"",
			"",
			"",
			"",
			"",
			r.EmployeeAmount.StringFixed(2),
			r.InvestmentProgram,
			r.RateOption,
			"",
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// JSONFormatter writes the whole run result as indented JSON
type JSONFormatter struct{}

func (JSONFormatter) Name() string { return "json" }

func (JSONFormatter) Format(result *domain.RunResult) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("no run result to format")
	}
	return json.MarshalIndent(result, "", "  ")
}
