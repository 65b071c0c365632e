package errors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategoryFile          ErrorCategory = "file"
	CategoryParse         ErrorCategory = "parse"
	CategoryValidation    ErrorCategory = "validation"
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryPipeline      ErrorCategory = "pipeline"
	CategoryChart         ErrorCategory = "chart"
	CategoryInternal      ErrorCategory = "internal"
)

// ErrorCode represents specific error codes within categories
type ErrorCode string

const (
	// File errors
	CodeFileNotFound   ErrorCode = "file_not_found"
	CodeFilePermission ErrorCode = "file_permission"
	CodeFileCorrupted  ErrorCode = "file_corrupted"
	CodeDirectoryError ErrorCode = "directory_error"

	// Parse errors
	CodeInvalidFormat ErrorCode = "invalid_format"
	CodeMissingColumn ErrorCode = "missing_column"
	CodeInvalidData   ErrorCode = "invalid_data"
	CodeEncodingError ErrorCode = "encoding_error"

	// Validation errors
	CodeInvalidValue  ErrorCode = "invalid_value"
	CodeInvalidPeriod ErrorCode = "invalid_period"
	CodeMissingField  ErrorCode = "missing_field"
	CodeOutOfRange    ErrorCode = "out_of_range"

	// Configuration errors
	CodeInvalidConfig  ErrorCode = "invalid_config"
	CodeMissingConfig  ErrorCode = "missing_config"
	CodeConfigConflict ErrorCode = "config_conflict"

	// Pipeline errors
	CodeNoClassifiedRows ErrorCode = "no_classified_rows"
	CodeRankingFailed    ErrorCode = "ranking_failed"
	CodeProcessingError  ErrorCode = "processing_error"

	// Chart errors
	CodeAssemblyFailed ErrorCode = "assembly_failed"
	CodeEncodeFailed   ErrorCode = "encode_failed"

	// Internal errors
	CodeUnexpectedError   ErrorCode = "unexpected_error"
	CodeResourceExhausted ErrorCode = "resource_exhausted"
)

// DashboardError is the base error type for all application errors
type DashboardError struct {
	Category   ErrorCategory     `json:"category"`
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Context provides additional information about the error
type Context map[string]interface{}

// Error implements the error interface
func (e *DashboardError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *DashboardError) Unwrap() error {
	return e.Cause
}

// GetExitCode returns an appropriate exit code for the error.
// Ingestion failures (file/parse) map to distinct codes so a failed run
// can be told apart from a generic runtime failure.
func (e *DashboardError) GetExitCode() int {
	switch e.Category {
	case CategoryFile:
		return 2
	case CategoryParse, CategoryValidation:
		return 3
	case CategoryConfiguration:
		return 4
	case CategoryPipeline, CategoryChart, CategoryInternal:
		return 5
	default:
		return 1
	}
}

// GetExitCode maps any error to a process exit code. Nil means success,
// a DashboardError reports its category code, anything else is a generic
// failure.
func GetExitCode(err error) int {
	if err == nil {
		return 0
	}
	if dashErr, ok := AsDashboardError(err); ok {
		return dashErr.GetExitCode()
	}
	return 1
}

// WithContext adds context information to the error
func (e *DashboardError) WithContext(key string, value interface{}) *DashboardError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion for fixing the error
func (e *DashboardError) WithSuggestion(suggestion string) *DashboardError {
	e.Suggestion = suggestion
	return e
}

// New creates a new DashboardError
func New(category ErrorCategory, code ErrorCode, message string) *DashboardError {
	return &DashboardError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with DashboardError context
func Wrap(err error, category ErrorCategory, code ErrorCode, message string) *DashboardError {
	if err == nil {
		return nil
	}

	return &DashboardError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

// stackTracer interface for extracting stack traces
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// Specific error constructors

// FileError creates a file-related error
func FileError(code ErrorCode, path string, err error) *DashboardError {
	var message string
	var suggestion string

	switch code {
	case CodeFileNotFound:
		message = fmt.Sprintf("file not found: %s", path)
		suggestion = "check if the file path is correct and the file exists"
	case CodeFilePermission:
		message = fmt.Sprintf("permission denied accessing file: %s", path)
		suggestion = "check file permissions and ensure you have read access"
	case CodeFileCorrupted:
		message = fmt.Sprintf("file appears to be corrupted: %s", path)
		suggestion = "verify the file integrity and re-export the report"
	case CodeDirectoryError:
		message = fmt.Sprintf("directory error: %s", path)
		suggestion = "ensure the directory exists and is accessible"
	default:
		message = fmt.Sprintf("file error: %s", path)
		suggestion = "check the file and try again"
	}

	var result *DashboardError
	if err != nil {
		result = Wrap(err, CategoryFile, code, message)
	} else {
		result = New(CategoryFile, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("file_path", path)
}

// ParseError creates a parsing-related error
func ParseError(code ErrorCode, file string, line int, column string, value string, err error) *DashboardError {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidFormat:
		message = fmt.Sprintf("invalid format in file %s at line %d, column '%s': '%s'", file, line, column, value)
		suggestion = "check the data format and ensure it matches the expected structure"
	case CodeMissingColumn:
		message = fmt.Sprintf("missing required column '%s' in file %s", column, file)
		suggestion = "verify the report has all required columns with correct headers"
	case CodeInvalidData:
		message = fmt.Sprintf("invalid data in file %s at line %d, column '%s': '%s'", file, line, column, value)
		suggestion = "correct the data format or remove the invalid entry"
	case CodeEncodingError:
		message = fmt.Sprintf("encoding error in file %s at line %d", file, line)
		suggestion = "ensure the file is saved in UTF-8 encoding"
	default:
		message = fmt.Sprintf("parse error in file %s at line %d", file, line)
		suggestion = "check the file format and data integrity"
	}

	var result *DashboardError
	if err != nil {
		result = Wrap(err, CategoryParse, code, message)
	} else {
		result = New(CategoryParse, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("file", file).
		WithContext("line", line).
		WithContext("column", column).
		WithContext("value", value)
}

// ValidationError creates a validation-related error
func ValidationError(code ErrorCode, field string, value interface{}, err error) *DashboardError {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidValue:
		message = fmt.Sprintf("invalid value in field '%s': %v", field, value)
		suggestion = "ensure values are valid decimal numbers (e.g., '12345.67')"
	case CodeInvalidPeriod:
		message = fmt.Sprintf("invalid period in field '%s': %v", field, value)
		suggestion = "use a month period format such as 2024-01 or 2024-01-01"
	case CodeMissingField:
		message = fmt.Sprintf("required field '%s' is missing or empty", field)
		suggestion = "provide a value for this required field"
	case CodeOutOfRange:
		message = fmt.Sprintf("value out of range in field '%s': %v", field, value)
		suggestion = "ensure the value is within the acceptable range"
	default:
		message = fmt.Sprintf("validation error in field '%s': %v", field, value)
		suggestion = "check the field value and format"
	}

	var result *DashboardError
	if err != nil {
		result = Wrap(err, CategoryValidation, code, message)
	} else {
		result = New(CategoryValidation, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("field", field).
		WithContext("value", value)
}

// ConfigurationError creates a configuration-related error
func ConfigurationError(code ErrorCode, setting string, value interface{}, err error) *DashboardError {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidConfig:
		message = fmt.Sprintf("invalid configuration for '%s': %v", setting, value)
		suggestion = "check the configuration documentation for valid values"
	case CodeMissingConfig:
		message = fmt.Sprintf("missing required configuration: %s", setting)
		suggestion = "provide this configuration setting or use a config file"
	case CodeConfigConflict:
		message = fmt.Sprintf("configuration conflict with setting '%s': %v", setting, value)
		suggestion = "resolve the conflicting settings or use default values"
	default:
		message = fmt.Sprintf("configuration error: %s", setting)
		suggestion = "check your configuration and try again"
	}

	var result *DashboardError
	if err != nil {
		result = Wrap(err, CategoryConfiguration, code, message)
	} else {
		result = New(CategoryConfiguration, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("setting", setting).
		WithContext("value", value)
}

// PipelineError creates a pipeline-stage error
func PipelineError(code ErrorCode, stage string, err error) *DashboardError {
	var message string
	var suggestion string

	switch code {
	case CodeNoClassifiedRows:
		message = fmt.Sprintf("no classifiable rows survived %s", stage)
		suggestion = "check the province filter and that the report contains known commodities"
	case CodeRankingFailed:
		message = fmt.Sprintf("ranking failed during %s", stage)
		suggestion = "verify commodity values are present and parseable"
	case CodeProcessingError:
		message = fmt.Sprintf("processing error during %s", stage)
		suggestion = "check the input data and try again"
	default:
		message = fmt.Sprintf("pipeline error during %s", stage)
		suggestion = "review the data and configuration"
	}

	var result *DashboardError
	if err != nil {
		result = Wrap(err, CategoryPipeline, code, message)
	} else {
		result = New(CategoryPipeline, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("stage", stage)
}

// ChartError creates a chart-generation error
func ChartError(code ErrorCode, operation string, err error) *DashboardError {
	var message string
	var suggestion string

	switch code {
	case CodeAssemblyFailed:
		message = fmt.Sprintf("trace assembly failed during %s", operation)
		suggestion = "check that classified rows carry valid periods and values"
	case CodeEncodeFailed:
		message = fmt.Sprintf("failed to encode chart document during %s", operation)
		suggestion = "check the output destination is writable"
	default:
		message = fmt.Sprintf("chart error during %s", operation)
		suggestion = "review the assembled series and try again"
	}

	var result *DashboardError
	if err != nil {
		result = Wrap(err, CategoryChart, code, message)
	} else {
		result = New(CategoryChart, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("operation", operation)
}

// InternalError creates an internal error
func InternalError(code ErrorCode, operation string, err error) *DashboardError {
	var message string
	var suggestion string

	switch code {
	case CodeUnexpectedError:
		message = fmt.Sprintf("unexpected error during %s", operation)
		suggestion = "this is likely a bug - please report it with the error details"
	case CodeResourceExhausted:
		message = fmt.Sprintf("resource exhausted during %s", operation)
		suggestion = "try reducing the input size or increasing system resources"
	default:
		message = fmt.Sprintf("internal error during %s", operation)
		suggestion = "try again or contact support if the problem persists"
	}

	var result *DashboardError
	if err != nil {
		result = Wrap(err, CategoryInternal, code, message)
	} else {
		result = New(CategoryInternal, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("operation", operation)
}

// ErrorSummary provides a summary of multiple errors
type ErrorSummary struct {
	Total        int                   `json:"total"`
	ByCategory   map[ErrorCategory]int `json:"by_category"`
	ByCode       map[ErrorCode]int     `json:"by_code"`
	Errors       []*DashboardError     `json:"errors"`
	SampleErrors []*DashboardError     `json:"sample_errors,omitempty"`
}

// NewErrorSummary creates a new error summary
func NewErrorSummary(errs []*DashboardError) *ErrorSummary {
	if len(errs) == 0 {
		return &ErrorSummary{
			Total:      0,
			ByCategory: make(map[ErrorCategory]int),
			ByCode:     make(map[ErrorCode]int),
			Errors:     []*DashboardError{},
		}
	}

	summary := &ErrorSummary{
		Total:      len(errs),
		ByCategory: make(map[ErrorCategory]int),
		ByCode:     make(map[ErrorCode]int),
		Errors:     errs,
	}

	// Count by category and code
	for _, err := range errs {
		summary.ByCategory[err.Category]++
		summary.ByCode[err.Code]++
	}

	// Include sample errors (max 5)
	maxSamples := 5
	if len(errs) > maxSamples {
		summary.SampleErrors = errs[:maxSamples]
	} else {
		summary.SampleErrors = errs
	}

	return summary
}

// Error returns a formatted error message for the summary
func (es *ErrorSummary) Error() string {
	if es.Total == 0 {
		return "no errors"
	}

	if es.Total == 1 {
		return es.Errors[0].Error()
	}

	var categories []string
	for category, count := range es.ByCategory {
		categories = append(categories, fmt.Sprintf("%s: %d", category, count))
	}

	return fmt.Sprintf("%d errors occurred (%s)", es.Total, strings.Join(categories, ", "))
}

// HasCategory checks if the summary contains errors of the given category
func (es *ErrorSummary) HasCategory(category ErrorCategory) bool {
	count, exists := es.ByCategory[category]
	return exists && count > 0
}

// HasCode checks if the summary contains errors with the given code
func (es *ErrorSummary) HasCode(code ErrorCode) bool {
	count, exists := es.ByCode[code]
	return exists && count > 0
}

// GetExitCode returns the highest priority exit code from all errors
func (es *ErrorSummary) GetExitCode() int {
	if es.Total == 0 {
		return 0
	}

	maxCode := 1
	for _, err := range es.Errors {
		if code := err.GetExitCode(); code > maxCode {
			maxCode = code
		}
	}

	return maxCode
}

// Utility functions

// IsDashboardError checks if an error is a DashboardError
func IsDashboardError(err error) bool {
	_, ok := err.(*DashboardError)
	return ok
}

// AsDashboardError extracts a DashboardError from an error chain
func AsDashboardError(err error) (*DashboardError, bool) {
	var dashboardErr *DashboardError
	if errors.As(err, &dashboardErr) {
		return dashboardErr, true
	}
	return nil, false
}

// WrapIfNeeded wraps an error if it's not already a DashboardError
func WrapIfNeeded(err error, category ErrorCategory, code ErrorCode, message string) *DashboardError {
	if err == nil {
		return nil
	}

	if dashboardErr, ok := AsDashboardError(err); ok {
		return dashboardErr
	}

	return Wrap(err, category, code, message)
}
