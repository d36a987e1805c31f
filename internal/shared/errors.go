package shared

import "errors"

var (
	// ErrNotFound indicates the referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidStatus indicates a state transition the entity lifecycle forbids.
	ErrInvalidStatus = errors.New("invalid status transition")
	// ErrValidation indicates input rejected before any mutation.
	ErrValidation = errors.New("validation failed")
	// ErrSystemAccount indicates an attempted edit of a system-managed account.
	ErrSystemAccount = errors.New("system account is immutable")
	// ErrUnbalancedEntry indicates a journal entry whose debits and credits differ.
	ErrUnbalancedEntry = errors.New("journal entry does not balance")
)

// UserSafeMessage maps internal errors to messages safe to show API callers.
func UserSafeMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "The requested record could not be found."
	case errors.Is(err, ErrSystemAccount):
		return "System accounts cannot be modified."
	case errors.Is(err, ErrUnbalancedEntry):
		return "Journal entry debits and credits must balance."
	case errors.Is(err, ErrInvalidStatus):
		return "This action is not allowed in the record's current status."
	case errors.Is(err, ErrValidation):
		return "The submitted data is invalid."
	default:
		return err.Error()
	}
}
