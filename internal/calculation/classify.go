package calculation

import (
	"strings"

	"github.com/rgehrsitz/persreport/internal/domain"
)

// Classify maps a period record to exactly one category. The first matching
// rule wins: Commissioner, Retiree, NonExempt, Exempt.
func Classify(r domain.EmployeePeriodRecord) domain.Category {
	return classifyCodes(r.TypeCode, r.Classification)
}

// ClassifyCharge applies the same rule to a charge-ledger record
func ClassifyCharge(c domain.ChargeDateRecord) domain.Category {
	return classifyCodes(c.TypeCode, c.Classification)
}

func classifyCodes(typeCode, classification string) domain.Category {
	switch {
	case strings.Contains(typeCode, "6"):
		return domain.Commissioner
	case strings.Contains(classification, "98") || strings.Contains(classification, "99"):
		return domain.Retiree
	case !strings.ContainsAny(typeCode, "367"):
		return domain.NonExempt
	default:
		return domain.Exempt
	}
}

// ratioBranch returns the category whose ratio rules apply to the record.
// Commissioners use actual hours; retirees follow the exempt rules only when
// their type code is an exempt one.
func ratioBranch(r domain.EmployeePeriodRecord) domain.Category {
	switch r.Category {
	case domain.Commissioner, domain.NonExempt:
		return domain.NonExempt
	case domain.Retiree:
		if strings.ContainsAny(r.TypeCode, "37") {
			return domain.Exempt
		}
		return domain.NonExempt
	default:
		return domain.Exempt
	}
}
