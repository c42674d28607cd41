package errors

import "fmt"

// Application error types organized by pipeline stage for better error handling

type ErrorType int

// Pipeline Errors - each stage of the daily run fails with its own type
const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeValidation
	ErrorTypeDownload
	ErrorTypeParse
	ErrorTypeNoUsableSnapshot
	ErrorTypeNoDataForAnyDate
	ErrorTypeStorage
	ErrorTypeRender
	ErrorTypeDelivery

	// System/Configuration Errors - errors related to system setup and configuration
	ErrorTypeConfiguration
)

// String returns the string representation of error type
func (e ErrorType) String() string {
	switch e {
	case ErrorTypeValidation:
		return "VALIDATION_ERROR"
	case ErrorTypeDownload:
		return "DOWNLOAD_ERROR"
	case ErrorTypeParse:
		return "PARSE_ERROR"
	case ErrorTypeNoUsableSnapshot:
		return "NO_USABLE_SNAPSHOT"
	case ErrorTypeNoDataForAnyDate:
		return "NO_DATA_FOR_ANY_DATE"
	case ErrorTypeStorage:
		return "STORAGE_ERROR"
	case ErrorTypeRender:
		return "RENDER_ERROR"
	case ErrorTypeDelivery:
		return "DELIVERY_ERROR"
	case ErrorTypeConfiguration:
		return "CONFIGURATION_ERROR"
	default:
		return "UNKNOWN_ERROR"
	}
}

type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type.String(), e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type.String(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(errorType ErrorType, message string) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
	}
}

func Wrap(errorType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// Pipeline Error Constructors
func NewValidationError(message string) *AppError {
	return New(ErrorTypeValidation, message)
}

func NewDownloadError(message string, cause error) *AppError {
	return Wrap(ErrorTypeDownload, message, cause)
}

func NewParseError(message string, cause error) *AppError {
	return Wrap(ErrorTypeParse, message, cause)
}

func NewNoUsableSnapshotError(message string, cause error) *AppError {
	return Wrap(ErrorTypeNoUsableSnapshot, message, cause)
}

func NewNoDataForAnyDateError(message string) *AppError {
	return New(ErrorTypeNoDataForAnyDate, message)
}

func NewStorageError(message string, cause error) *AppError {
	return Wrap(ErrorTypeStorage, message, cause)
}

func NewRenderError(message string, cause error) *AppError {
	return Wrap(ErrorTypeRender, message, cause)
}

func NewDeliveryError(message string, cause error) *AppError {
	return Wrap(ErrorTypeDelivery, message, cause)
}

// System/Configuration Error Constructors
func NewConfigurationError(message string, cause error) *AppError {
	return Wrap(ErrorTypeConfiguration, message, cause)
}

// Helper functions for error type checking
func IsValidationError(err error) bool {
	return hasType(err, ErrorTypeValidation)
}

func IsDownloadError(err error) bool {
	return hasType(err, ErrorTypeDownload)
}

func IsParseError(err error) bool {
	return hasType(err, ErrorTypeParse)
}

func IsNoUsableSnapshotError(err error) bool {
	return hasType(err, ErrorTypeNoUsableSnapshot)
}

func IsNoDataForAnyDateError(err error) bool {
	return hasType(err, ErrorTypeNoDataForAnyDate)
}

func IsStorageError(err error) bool {
	return hasType(err, ErrorTypeStorage)
}

func IsRenderError(err error) bool {
	return hasType(err, ErrorTypeRender)
}

func IsDeliveryError(err error) bool {
	return hasType(err, ErrorTypeDelivery)
}

func IsConfigurationError(err error) bool {
	return hasType(err, ErrorTypeConfiguration)
}

func hasType(err error, errorType ErrorType) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Type == errorType
	}
	return false
}
