package types

import "errors"

var (
	ErrUnsupportedState = errors.New("withholding: unsupported state")
	ErrMissingSignature = errors.New("withholding: signature missing")
	// ErrOnboardingNotFound is returned by identity readers for unknown records.
	ErrOnboardingNotFound = errors.New("withholding: onboarding record not found")
)

type MissingRequiredFieldError struct {
	Field string
}

func (e *MissingRequiredFieldError) Error() string {
	return "withholding: required field missing: " + e.Field
}

// SubmissionFailedError carries the submission collaborator's message verbatim.
type SubmissionFailedError struct {
	Message string
	Err     error
}

func (e *SubmissionFailedError) Error() string { return e.Message }

func (e *SubmissionFailedError) Unwrap() error { return e.Err }

func NewSubmissionFailed(err error) error {
	if err == nil {
		return nil
	}
	return &SubmissionFailedError{Message: err.Error(), Err: err}
}

func IsMissingRequiredField(err error) (string, bool) {
	e, ok := errors.AsType[*MissingRequiredFieldError](err)
	if !ok {
		return "", false
	}
	return e.Field, true
}
