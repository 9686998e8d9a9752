package models

import "fmt"

// ValidationError reports a structural or type violation in a legacy document
// or a form draft. Field is the qualified path of the offending field
// (e.g. "agentGroups[1].agents[0].name"). Validation errors are always
// recoverable by correcting the input.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Msg)
}
