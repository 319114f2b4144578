package application

import "errors"

var (
	// ErrUnauthorized is returned when the acting principal lacks permission for an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrAlreadyExists is returned when a record with the same key is already stored.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrInvalidCredentials is returned for a wrong passkey or an unusable session token.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrAccountPending is returned when a teacher account has not been approved yet.
	ErrAccountPending = errors.New("application: account pending approval")
	// ErrAccountRejected is returned when a teacher account request was declined.
	ErrAccountRejected = errors.New("application: account rejected")
	// ErrInvalidTransition is returned when an approval decision targets a non-pending account.
	ErrInvalidTransition = errors.New("application: invalid status transition")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

func newValidationError(field, message string) *ValidationError {
	v := &ValidationError{}
	v.add(field, message)
	return v
}
