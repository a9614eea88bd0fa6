package errors

import (
	"errors"
	"fmt"
)

// Standard application errors
var (
	ErrEmptyInput      = errors.New("input is empty or contains only whitespace")
	ErrInvalidJSON     = errors.New("invalid JSON document")
	ErrNoInput         = errors.New("no input provided: please specify a file or directory with -i or pipe JSON data to stdin")
	ErrFileNotFound    = errors.New("file not found")
	ErrFileEmpty       = errors.New("file is empty")
	ErrInvalidFilePath = errors.New("invalid file path")
	ErrEmptyTable      = errors.New("structure table is empty")
	ErrMixedDocuments  = errors.New("structure table spans more than one document")
	ErrNoDocuments     = errors.New("collection contains no parseable documents")
)

// ErrorType categorizes errors
type ErrorType string

const (
	ErrorTypeInput   ErrorType = "input"
	ErrorTypeParsing ErrorType = "parsing"
	ErrorTypeShape   ErrorType = "shape"
	ErrorTypeConfig  ErrorType = "config"
	ErrorTypeOutput  ErrorType = "output"
	ErrorTypeUnknown ErrorType = "unknown"
)

// AppError is an application-specific error with context
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for comparison
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// NewInputError creates a new error related to input processing
func NewInputError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInput,
		Message: message,
		Err:     err,
	}
}

// NewParsingError creates a new error related to JSON parsing
func NewParsingError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeParsing,
		Message: message,
		Err:     err,
	}
}

// NewShapeError creates a new error for structurally invalid tables,
// e.g. a graph projection over nodes from more than one document
func NewShapeError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeShape,
		Message: message,
		Err:     err,
	}
}

// NewConfigError creates a new error related to configuration loading
func NewConfigError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeConfig,
		Message: message,
		Err:     err,
	}
}

// NewOutputError creates a new error related to output processing
func NewOutputError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeOutput,
		Message: message,
		Err:     err,
	}
}

// UserFriendlyError returns a user-friendly error message
func UserFriendlyError(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case ErrorTypeInput:
			return fmt.Sprintf("Input error: %s", appErr.Message)
		case ErrorTypeParsing:
			return fmt.Sprintf("JSON parsing error: %s", appErr.Message)
		case ErrorTypeShape:
			return fmt.Sprintf("Shape error: %s", appErr.Message)
		case ErrorTypeConfig:
			return fmt.Sprintf("Configuration error: %s", appErr.Message)
		case ErrorTypeOutput:
			return fmt.Sprintf("Output error: %s", appErr.Message)
		default:
			return fmt.Sprintf("Error: %s", appErr.Message)
		}
	}

	// Handle standard errors
	if errors.Is(err, ErrEmptyInput) {
		return "Error: The input is empty. Please provide valid JSON data."
	}
	if errors.Is(err, ErrInvalidJSON) {
		return "Error: The input contains invalid JSON. Please check your JSON syntax."
	}
	if errors.Is(err, ErrFileNotFound) {
		return "Error: The specified file could not be found. Please check the file path."
	}
	if errors.Is(err, ErrFileEmpty) {
		return "Error: The specified file is empty. Please provide a file with valid JSON content."
	}
	if errors.Is(err, ErrNoInput) {
		return "Error: No input provided. Please specify a file with -i or pipe JSON data to stdin."
	}
	if errors.Is(err, ErrInvalidFilePath) {
		return "Error: Invalid file path. Please provide a valid file path."
	}
	if errors.Is(err, ErrEmptyTable) {
		return "Error: The structure table is empty. Flatten a document first."
	}
	if errors.Is(err, ErrMixedDocuments) {
		return "Error: The structure table contains nodes from more than one document. Project one document at a time."
	}
	if errors.Is(err, ErrNoDocuments) {
		return "Error: No document in the collection could be parsed."
	}

	// Generic error message for unknown errors
	return fmt.Sprintf("Error: %v", err)
}
