// Package errors provides standardized error handling for the routing service.
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeItemValidationFailed  ErrorCode = "ITEM_VALIDATION_FAILED"
	ErrCodeInvalidAttributeValue ErrorCode = "INVALID_ATTRIBUTE_VALUE"

	ErrCodeItemNotFound          ErrorCode = "ITEM_NOT_FOUND"
	ErrCodeDecisionPersistFailed ErrorCode = "DECISION_PERSIST_FAILED"

	ErrCodeQuotaLedgerUnavailable ErrorCode = "QUOTA_LEDGER_UNAVAILABLE"

	ErrCodeUPCLookupFailed        ErrorCode = "UPC_LOOKUP_FAILED"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeAuditIndexFailed       ErrorCode = "AUDIT_INDEX_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// IsRetryable reports whether err is a StandardError the caller may retry.
func IsRetryable(err error) bool {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr.Retryable
	}
	return false
}

// CodeOf extracts the error code, or INTERNAL_ERROR for foreign errors.
func CodeOf(err error) ErrorCode {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr.Code
	}
	return ErrCodeInternal
}

// NewItemValidationError flags an intake payload that failed schema or
// required-field validation. Not retryable; the record must be corrected.
func NewItemValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeItemValidationFailed,
		Message:   "Item attributes failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidAttributeError flags an unknown enum value on an item record.
// Distinct from a missing field, which is a routing outcome rather than an error.
func NewInvalidAttributeError(field, value string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidAttributeValue,
		Message:   "Unknown value for item attribute",
		Details:   fmt.Sprintf("%s: %q", field, value),
		Retryable: false,
		Metadata:  map[string]interface{}{"field": field, "value": value},
		Timestamp: time.Now().UTC(),
	}
}

// NewItemNotFoundError creates a non-retryable store error.
func NewItemNotFoundError(itemID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeItemNotFound,
		Message:   "Item not found",
		Details:   fmt.Sprintf("itemId: %s", itemID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDecisionPersistError creates a retryable store error.
func NewDecisionPersistError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDecisionPersistFailed,
		Message:   "Failed to persist routing decision",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQuotaLedgerUnavailableError creates a retryable ledger error. Routing
// for quota-tracked tiers fails closed on this error so the fairness ratio
// is never silently bypassed.
func NewQuotaLedgerUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQuotaLedgerUnavailable,
		Message:   "Quota ledger unreachable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewUPCLookupError creates a retryable lookup error.
func NewUPCLookupError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUPCLookupFailed,
		Message:   "UPC lookup request failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendError creates a retryable notification error.
func NewNotificationSendError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Failed to send review notification",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAuditIndexError creates a retryable audit indexing error.
func NewAuditIndexError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuditIndexFailed,
		Message:   "Failed to index decision audit record",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps an unexpected failure.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
