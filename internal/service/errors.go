package service

import (
	"fmt"
	"strings"
)

// ValidationError reports required inputs that were not supplied.
type ValidationError struct {
	Message  string
	Required []string
	Missing  []string
	// Format documents the expected shape of the inputs, when relevant.
	Format string
}

func (e *ValidationError) Error() string {
	if len(e.Missing) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Missing, ", "))
}

// ParameterError reports an input that was supplied but cannot be used.
type ParameterError struct {
	Param  string
	Value  string
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Param, e.Value, e.Reason)
}
