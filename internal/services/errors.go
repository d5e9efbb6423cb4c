package services

// The four recoverable error kinds the booking and document layers return.
// Handlers match them with errors.As to pick a client-facing status code;
// anything else is treated as a server-side failure.

// ValidationError reports missing or malformed input. No state was changed.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// NotFoundError reports that a referenced entity does not exist.
type NotFoundError struct {
	Reason string
}

func (e *NotFoundError) Error() string { return e.Reason }

// AuthorizationError reports that the actor lacks ownership or role.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string { return e.Reason }

// ConflictError reports a business-rule violation: a past date, a
// double-booked slot, or an already-terminal status.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }
