package entitystore

const defaultFailureMessage = "The operation failed."

// Result is the success/failure envelope returned by command handlers.
// Exactly one of IsSuccess and ErrorMessage is meaningful.
type Result struct {
	IsSuccess    bool
	ErrorMessage string
}

// Success builds a successful Result.
func Success() Result {
	return Result{IsSuccess: true}
}

// Failure builds a failed Result carrying a human-readable message.
func Failure(message string) Result {
	if message == "" {
		message = defaultFailureMessage
	}

	return Result{IsSuccess: false, ErrorMessage: message}
}

// IsFailure is the negation of IsSuccess.
func (r Result) IsFailure() bool {
	return !r.IsSuccess
}

func (r Result) String() string {
	if r.IsSuccess {
		return "success"
	}

	return "failure: " + r.ErrorMessage
}
