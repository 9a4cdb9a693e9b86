package calculation

import "errors"

// Fatal conditions. A run that hits one of these returns no partial result.
var (
	ErrMissingInput       = errors.New("missing required input")
	ErrEmployeeMismatch   = errors.New("employee id mismatch between period summary and charge ledger")
	ErrNoPayPeriod        = errors.New("no pay period matches the control date")
	ErrAmbiguousPayPeriod = errors.New("more than one pay period matches the control date")
	ErrPartitionMismatch  = errors.New("charge records do not partition into the pay period sub-periods")
	ErrInvalidDate        = errors.New("invalid or missing date")
)
