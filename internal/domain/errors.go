package domain

import "fmt"

// ValidationError reports a malformed or out-of-range scenario field. It is
// raised before any simulation starts; inputs are never silently clamped.
type ValidationError struct {
	Scenario string
	Field    string
	Reason   string
}

func (e *ValidationError) Error() string {
	if e.Scenario == "" {
		return fmt.Sprintf("invalid scenario: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid scenario %q: %s: %s", e.Scenario, e.Field, e.Reason)
}

// DataError reports a malformed reference table (tax brackets, RMD
// divisors) or invalid engine input. Fatal; the run aborts.
type DataError struct {
	Source string
	Reason string
}

func (e *DataError) Error() string {
	return fmt.Sprintf("bad data in %s: %s", e.Source, e.Reason)
}
