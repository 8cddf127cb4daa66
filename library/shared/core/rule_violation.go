package core

import (
	"errors"
	"fmt"
)

// ErrRuleViolated is matched by every RuleViolation.
var ErrRuleViolated = errors.New("business rule violated")

// RuleViolation is a refused command. Its message is meant for the end user.
type RuleViolation struct {
	Message string
}

func (e *RuleViolation) Error() string {
	return e.Message
}

func (e *RuleViolation) Is(target error) bool {
	return target == ErrRuleViolated
}

// Violation builds a RuleViolation with a formatted message.
func Violation(format string, args ...any) *RuleViolation {
	return &RuleViolation{Message: fmt.Sprintf(format, args...)}
}

// AsRuleViolation unwraps a RuleViolation from err.
func AsRuleViolation(err error) (*RuleViolation, bool) {
	var v *RuleViolation
	ok := errors.As(err, &v)

	return v, ok
}
