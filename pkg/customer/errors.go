package customer

import "fmt"

// ValidationError reports a malformed identity field. It is raised before
// any remote call is attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConsistencyError reports a reference to an entity that does not exist
// within the aggregate, such as a default payment method id pointing at
// nothing. The condition is surfaced to the caller, never silently
// repaired.
type ConsistencyError struct {
	Reference string
	TargetID  string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("dangling reference: %s %q does not resolve", e.Reference, e.TargetID)
}
