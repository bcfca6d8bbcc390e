package errors

import (
	"fmt"
	"time"
)

// FormError describes a failure while loading assets or rendering a form,
// with enough context to log it or report it to the caller.
type FormError struct {
	Type        ErrorType `json:"type"`
	Message     string    `json:"message"`
	Context     string    `json:"context,omitempty"`
	Field       string    `json:"field,omitempty"`
	Path        string    `json:"path,omitempty"`
	PageNumber  int       `json:"page_number,omitempty"`
	Recoverable bool      `json:"recoverable"`
	Timestamp   time.Time `json:"timestamp"`
	Err         error     `json:"-"`
}

// ErrorType represents the categories of form pipeline errors
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeMissingAsset
	ErrorTypeInvalidAsset
	ErrorTypeMalformedInput
	ErrorTypeUnresolvedField
	ErrorTypeOutOfRangePage
	ErrorTypeInvalidPlacement
	ErrorTypeRenderFailed
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity int

const (
	SeverityInfo ErrorSeverity = iota
	SeverityWarning
	SeverityError
	SeverityFatal
)

// Error implements the error interface
func (e *FormError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Type.String(), e.Message)
	if e.Path != "" {
		msg += ": " + e.Path
	}
	if e.Context != "" {
		msg += " (" + e.Context + ")"
	}
	return msg
}

// Unwrap exposes the underlying cause
func (e *FormError) Unwrap() error {
	return e.Err
}

// String returns a string representation of the ErrorType
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeMissingAsset:
		return "MISSING_ASSET"
	case ErrorTypeInvalidAsset:
		return "INVALID_ASSET"
	case ErrorTypeMalformedInput:
		return "MALFORMED_INPUT"
	case ErrorTypeUnresolvedField:
		return "UNRESOLVED_FIELD"
	case ErrorTypeOutOfRangePage:
		return "OUT_OF_RANGE_PAGE"
	case ErrorTypeInvalidPlacement:
		return "INVALID_PLACEMENT"
	case ErrorTypeRenderFailed:
		return "RENDER_FAILED"
	default:
		return "UNKNOWN"
	}
}

// GetSeverity returns the severity level for a given error type
func (et ErrorType) GetSeverity() ErrorSeverity {
	switch et {
	case ErrorTypeMissingAsset, ErrorTypeInvalidAsset, ErrorTypeRenderFailed:
		return SeverityFatal
	case ErrorTypeMalformedInput, ErrorTypeOutOfRangePage, ErrorTypeInvalidPlacement:
		return SeverityWarning
	case ErrorTypeUnresolvedField:
		return SeverityInfo
	default:
		return SeverityError
	}
}

// IsRecoverable reports whether the pipeline keeps going after this error.
// Recoverable errors skip one entry or degrade the input; the rest abort
// the request.
func (et ErrorType) IsRecoverable() bool {
	switch et {
	case ErrorTypeMalformedInput, ErrorTypeUnresolvedField,
		ErrorTypeOutOfRangePage, ErrorTypeInvalidPlacement:
		return true
	default:
		return false
	}
}

// NewFormError creates a new FormError
func NewFormError(errorType ErrorType, message string) *FormError {
	return &FormError{
		Type:        errorType,
		Message:     message,
		Recoverable: errorType.IsRecoverable(),
		Timestamp:   time.Now(),
	}
}

// WrapError wraps a standard error as a FormError
func WrapError(errorType ErrorType, err error) *FormError {
	fe := NewFormError(errorType, err.Error())
	fe.Err = err
	return fe
}

// MissingAsset reports a static asset that could not be found.
func MissingAsset(kind, path string, err error) *FormError {
	fe := NewFormError(ErrorTypeMissingAsset, kind+" not found")
	fe.Path = path
	fe.Err = err
	return fe
}

// InvalidAsset reports a static asset that exists but cannot be used.
func InvalidAsset(kind, path string, err error) *FormError {
	fe := NewFormError(ErrorTypeInvalidAsset, kind+" is unusable")
	fe.Path = path
	fe.Err = err
	if err != nil {
		fe.Context = err.Error()
	}
	return fe
}

// WithContext adds context to an existing FormError
func (e *FormError) WithContext(context string) *FormError {
	e.Context = context
	return e
}

// WithField records the mapping field involved
func (e *FormError) WithField(field string) *FormError {
	e.Field = field
	return e
}

// WithPage adds page number information to an existing FormError
func (e *FormError) WithPage(pageNumber int) *FormError {
	e.PageNumber = pageNumber
	return e
}

// GetSeverity returns the severity of this specific error
func (e *FormError) GetSeverity() ErrorSeverity {
	return e.Type.GetSeverity()
}

// IsFatal returns true if this error aborts the request
func (e *FormError) IsFatal() bool {
	return e.GetSeverity() == SeverityFatal
}

// ErrorCollection gathers the non-fatal problems of one render pass
type ErrorCollection struct {
	Errors   []*FormError `json:"errors"`
	Warnings []*FormError `json:"warnings"`
}

// NewErrorCollection creates a new error collection
func NewErrorCollection() *ErrorCollection {
	return &ErrorCollection{
		Errors:   make([]*FormError, 0),
		Warnings: make([]*FormError, 0),
	}
}

// Add adds an error to the appropriate collection based on severity
func (ec *ErrorCollection) Add(err *FormError) {
	if err == nil {
		return
	}
	severity := err.GetSeverity()
	if severity == SeverityWarning || severity == SeverityInfo {
		ec.Warnings = append(ec.Warnings, err)
	} else {
		ec.Errors = append(ec.Errors, err)
	}
}

// HasFatalErrors returns true if any fatal errors exist
func (ec *ErrorCollection) HasFatalErrors() bool {
	for _, err := range ec.Errors {
		if err.IsFatal() {
			return true
		}
	}
	return false
}

// CountByType tallies collected errors and warnings per type
func (ec *ErrorCollection) CountByType() map[ErrorType]int {
	counts := make(map[ErrorType]int)
	for _, err := range ec.Errors {
		counts[err.Type]++
	}
	for _, err := range ec.Warnings {
		counts[err.Type]++
	}
	return counts
}

// Count returns the total number of errors and warnings
func (ec *ErrorCollection) Count() (errors, warnings int) {
	return len(ec.Errors), len(ec.Warnings)
}

// Summary returns a text summary of all errors and warnings
func (ec *ErrorCollection) Summary() string {
	errorCount, warningCount := ec.Count()
	if errorCount == 0 && warningCount == 0 {
		return "No errors or warnings"
	}

	summary := fmt.Sprintf("Found %d error(s) and %d warning(s)", errorCount, warningCount)

	if ec.HasFatalErrors() {
		summary += " (including fatal errors)"
	}

	return summary
}
