// Package exception provides the error types used by weekreport.
// Errors are split into two classes: setup errors, which abort a whole batch pass and are
// returned to the caller, and farm errors, which are captured as data on the farm's report record.
package exception

import (
	"errors"
	"fmt"
	"runtime"
	"unicode/utf8"
)

// MaxLogMessageLength is the longest error message persisted to the job log.
const MaxLogMessageLength = 4000

// ReportError is the error type raised by report generation.
type ReportError struct {
	// Module indicates where the error occurred (e.g., "orchestrator", "pipeline", "store").
	Module string
	// Message is a concise description of the error.
	Message string
	// OriginalErr is the wrapped original error.
	OriginalErr error
	// fatal marks setup failures that must abort the whole pass.
	fatal bool
	// StackTrace is the stack at construction time (for debugging).
	StackTrace string
}

// NewReportError creates a non-fatal ReportError.
//
// module: The module where the error occurred.
// message: The error message.
// originalErr: The original error to wrap (may be nil).
func NewReportError(module, message string, originalErr error) *ReportError {
	return newReportError(module, message, originalErr, false)
}

// NewSetupError creates a fatal ReportError for failures in period resolution,
// farm enumeration or placeholder creation.
func NewSetupError(module, message string, originalErr error) *ReportError {
	return newReportError(module, message, originalErr, true)
}

// NewReportErrorf creates a non-fatal ReportError with a formatted message.
// If the last argument is an error it is wrapped instead of being formatted.
//
// Example:
//
//	NewReportErrorf("store", "failed to load events for farm %d", farmNo, err)
func NewReportErrorf(module, format string, a ...interface{}) *ReportError {
	var originalErr error
	args := a
	if len(args) > 0 {
		if err, ok := args[len(args)-1].(error); ok {
			originalErr = err
			args = args[:len(args)-1]
		}
	}
	return newReportError(module, fmt.Sprintf(format, args...), originalErr, false)
}

func newReportError(module, message string, originalErr error, fatal bool) *ReportError {
	buf := make([]byte, 2048)
	n := runtime.Stack(buf, false)
	return &ReportError{
		Module:      module,
		Message:     message,
		OriginalErr: originalErr,
		fatal:       fatal,
		StackTrace:  string(buf[:n]),
	}
}

// Error implements the error interface.
func (e *ReportError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Module, e.Message, e.OriginalErr)
	}
	return fmt.Sprintf("[%s] %s", e.Module, e.Message)
}

// Unwrap returns the original error for errors.Unwrap.
func (e *ReportError) Unwrap() error {
	return e.OriginalErr
}

// IsFatal reports whether this error aborts the batch pass.
func (e *ReportError) IsFatal() bool {
	return e.fatal
}

// IsFatal reports whether err, or any error it wraps, is a fatal ReportError.
func IsFatal(err error) bool {
	var re *ReportError
	for err != nil {
		if errors.As(err, &re) {
			if re.fatal {
				return true
			}
			err = re.OriginalErr
			continue
		}
		return false
	}
	return false
}

// IsReportError determines if the given error is a *ReportError.
func IsReportError(err error) bool {
	var re *ReportError
	return errors.As(err, &re)
}

// ErrFarmInFlight is returned when a (period, farm) pair is already being processed in this process.
var ErrFarmInFlight = errors.New("farm report already in flight for this period")

// ErrFarmNotFound is returned when a single run names a farm that is not in the farm master.
var ErrFarmNotFound = errors.New("farm does not exist")

// ErrConnectionUnavailable wraps a failure to lease a database connection for a farm.
var ErrConnectionUnavailable = errors.New("database connection unavailable")

// ExtractErrorMessage extracts the error message string from an error.
// For ReportError, the full chain is returned so the job log keeps the cause.
func ExtractErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// Truncate shortens msg to at most max runes without splitting a multi-byte character.
func Truncate(msg string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(msg) <= max {
		return msg
	}
	runes := []rune(msg)
	return string(runes[:max])
}
