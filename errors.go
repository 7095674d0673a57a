package localeflow

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by stores when a job or document does not exist.
var ErrNotFound = errors.New("not found")

// TranslationError is the base error type for pipeline failures.
type TranslationError struct {
	Message string
	Cause   error
}

func (e *TranslationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *TranslationError) Unwrap() error {
	return e.Cause
}

// ProviderError indicates an AI provider failure (API error, rate limit, etc.).
type ProviderError struct {
	Message   string
	Cause     error
	Retryable bool // Whether the operation can be retried
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("provider error: %s", e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// StoreError indicates a job-store or document-store operation failure.
type StoreError struct {
	Op    string // e.g. "lease", "save document"
	Cause error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error: %s: %v", e.Op, e.Cause)
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}

// CountMismatchError indicates the provider returned a different number of
// translations than requested. This is a structural failure: the affected job
// fails permanently rather than silently misaligning values.
type CountMismatchError struct {
	Expected int
	Got      int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("translation count mismatch: expected %d, got %d", e.Expected, e.Got)
}

// UnsupportedLocaleError indicates a request for a locale outside the
// configured set. It lists the supported codes for the caller.
type UnsupportedLocaleError struct {
	Locale    string
	Supported []string
}

func (e *UnsupportedLocaleError) Error() string {
	return fmt.Sprintf("unsupported locale %q: supported locales are %s",
		e.Locale, strings.Join(e.Supported, ", "))
}

// IsPermanent reports whether an error should fail a job immediately instead
// of leaving it eligible for another attempt. Count mismatches and
// unsupported locales are structural; everything else is transient and
// charged against the job's attempt budget.
func IsPermanent(err error) bool {
	var mismatch *CountMismatchError
	if errors.As(err, &mismatch) {
		return true
	}
	var locale *UnsupportedLocaleError
	return errors.As(err, &locale)
}
