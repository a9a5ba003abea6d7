package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNetwork represents fetch/transport errors
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeRateLimit represents upstream rate limiting
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeAuth represents login/session errors
	ErrorTypeAuth ErrorType = "auth"
	// ErrorTypeMalformedPayload represents payloads the adapters cannot decode
	ErrorTypeMalformedPayload ErrorType = "malformed_payload"
	// ErrorTypeInvalidRecord represents containers that fail the validity gate
	ErrorTypeInvalidRecord ErrorType = "invalid_record"
	// ErrorTypeNoData represents an exhausted orchestration pass
	ErrorTypeNoData ErrorType = "no_data"
	// ErrorTypeCache represents cache-related errors
	ErrorTypeCache ErrorType = "cache"
	// ErrorTypePublisher represents publisher-related errors
	ErrorTypePublisher ErrorType = "publisher"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// ScrapeError represents a scraper-specific error. Pipeline internals never
// let one of these escape ExtractTips; they exist for diagnostics in the
// fetch/cache/publish collaborators and for structured logging of dropped
// records.
type ScrapeError struct {
	Type    ErrorType
	Source  string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Source, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Source, e.Message)
}

// Unwrap returns the underlying error
func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is worth retrying at the fetch layer
func (e *ScrapeError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeNetwork:
		return true
	case ErrorTypeAuth:
		return true
	default:
		return false
	}
}

// New creates a new ScrapeError
func New(errType ErrorType, source, message string, err error) *ScrapeError {
	return &ScrapeError{
		Type:    errType,
		Source:  source,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewNetwork creates a new network error
func NewNetwork(source, message string, err error) *ScrapeError {
	return New(ErrorTypeNetwork, source, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(source string, duration time.Duration) *ScrapeError {
	message := fmt.Sprintf("rate limited for %v", duration)
	return New(ErrorTypeRateLimit, source, message, nil)
}

// NewAuth creates a new auth error
func NewAuth(source, message string, err error) *ScrapeError {
	return New(ErrorTypeAuth, source, message, err)
}

// NewMalformedPayload creates a new malformed payload error
func NewMalformedPayload(source, message string, err error) *ScrapeError {
	return New(ErrorTypeMalformedPayload, source, message, err)
}

// NewInvalidRecord creates a new invalid record error
func NewInvalidRecord(source, message string) *ScrapeError {
	return New(ErrorTypeInvalidRecord, source, message, nil)
}

// NewNoData creates a new no-data error
func NewNoData(source string) *ScrapeError {
	return New(ErrorTypeNoData, source, "all adapters exhausted", nil)
}

// NewCache creates a new cache error
func NewCache(source, message string, err error) *ScrapeError {
	return New(ErrorTypeCache, source, message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(source, message string, err error) *ScrapeError {
	return New(ErrorTypePublisher, source, message, err)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *ScrapeError {
	return New(ErrorTypeConfiguration, "", message, err)
}
