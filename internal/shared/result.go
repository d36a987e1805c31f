package shared

// Result is the envelope every command operation returns to its caller.
// Expected business failures travel as Success=false with a human-readable
// Error; Go errors are reserved for programmer mistakes and transport faults.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OK builds a successful result.
func OK(message string) Result {
	return Result{Success: true, Message: message}
}

// Fail builds a failed result.
func Fail(reason string) Result {
	return Result{Success: false, Error: reason}
}

// FailErr builds a failed result from an error using its user-safe message.
func FailErr(err error) Result {
	return Result{Success: false, Error: UserSafeMessage(err)}
}
