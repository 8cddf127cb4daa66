package shell

import (
	"errors"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
	"github.com/AntonStoeckl/entitystore-go/library/shared/core"
)

// FailureDescriber maps errors a handler expects to a user-facing message. It returns "" for others.
type FailureDescriber func(err error) string

// ResultFrom translates the outcome of a handler into a Result.
//
// Rule violations and validation errors carry their own message. Other errors are offered to describe,
// and anything still unexplained becomes a generic failure, so infrastructure details do not leak.
func ResultFrom(err error, describe FailureDescriber) entitystore.Result {
	if err == nil {
		return entitystore.Success()
	}

	if violation, ok := core.AsRuleViolation(err); ok {
		return entitystore.Failure(violation.Message)
	}

	if describe != nil {
		if msg := describe(err); msg != "" {
			return entitystore.Failure(msg)
		}
	}

	var validationErr *entitystore.ValidationError
	if errors.As(err, &validationErr) {
		return entitystore.Failure(validationErr.Error())
	}

	return entitystore.Failure("")
}
