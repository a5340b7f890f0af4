package common

import (
	"errors"
	"fmt"
)

// BazaarError is the typed error surfaced by every operation. All
// failures are synchronous and non-retryable by the system itself; the
// caller decides whether to resubmit with corrected arguments.
type BazaarError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *BazaarError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Error code constants
const (
	// Validation errors
	ErrorCodeInvalidFee         = "INVALID_FEE"
	ErrorCodeNameTooShort       = "NAME_TOO_SHORT"
	ErrorCodeNameTooLong        = "NAME_TOO_LONG"
	ErrorCodeDescriptionTooLong = "DESCRIPTION_TOO_LONG"
	ErrorCodeURITooLong         = "URI_TOO_LONG"
	ErrorCodeTooManyCategories  = "TOO_MANY_CATEGORIES"
	ErrorCodeCategoryTooLong    = "CATEGORY_TOO_LONG"
	ErrorCodeInvalidRating      = "INVALID_RATING"
	ErrorCodeInvalidAmount      = "INVALID_AMOUNT"
	ErrorCodeInvalidTimestamp   = "INVALID_TIMESTAMP"
	ErrorCodeInvalidRequest     = "INVALID_REQUEST"

	// State precondition errors
	ErrorCodeNotInitialized     = "NOT_INITIALIZED"
	ErrorCodeAlreadyInitialized = "ALREADY_INITIALIZED"
	ErrorCodeInvalidAgent       = "INVALID_AGENT"
	ErrorCodeAgentNotFound      = "AGENT_NOT_FOUND"
	ErrorCodeAgentStillActive   = "AGENT_STILL_ACTIVE"
	ErrorCodeAgentAlreadyActive = "AGENT_ALREADY_ACTIVE"
	ErrorCodeRecentActivity     = "RECENT_ACTIVITY"
	ErrorCodeTooManyAgents      = "TOO_MANY_AGENTS"

	// Authorization errors
	ErrorCodeUnauthorized = "UNAUTHORIZED"

	// Anti-abuse errors
	ErrorCodeSelfRating          = "SELF_RATING"
	ErrorCodeFeedbackTooFrequent = "FEEDBACK_TOO_FREQUENT"
	ErrorCodeFutureTimestamp     = "FUTURE_TIMESTAMP"
	ErrorCodeTimestampTooOld     = "TIMESTAMP_TOO_OLD"
	ErrorCodeFeedbackExists      = "FEEDBACK_EXISTS"

	// Arithmetic errors
	ErrorCodeArithmeticOverflow = "ARITHMETIC_OVERFLOW"
)

// Predefined error values, one per failure mode
var (
	ErrInvalidFee = &BazaarError{
		Code:    ErrorCodeInvalidFee,
		Message: "Fee must be at most 10000 basis points",
	}

	ErrNameTooShort = &BazaarError{
		Code:    ErrorCodeNameTooShort,
		Message: "Name must be at least 3 characters",
	}

	ErrNameTooLong = &BazaarError{
		Code:    ErrorCodeNameTooLong,
		Message: "Name must be at most 64 characters",
	}

	ErrDescriptionTooLong = &BazaarError{
		Code:    ErrorCodeDescriptionTooLong,
		Message: "Description must be at most 256 characters",
	}

	ErrURITooLong = &BazaarError{
		Code:    ErrorCodeURITooLong,
		Message: "URI must be at most 256 characters",
	}

	ErrTooManyCategories = &BazaarError{
		Code:    ErrorCodeTooManyCategories,
		Message: "At most 5 categories are allowed",
	}

	ErrCategoryTooLong = &BazaarError{
		Code:    ErrorCodeCategoryTooLong,
		Message: "Category must be at most 32 characters",
	}

	ErrInvalidRating = &BazaarError{
		Code:    ErrorCodeInvalidRating,
		Message: "Rating must be between 1 and 5",
	}

	ErrInvalidAmount = &BazaarError{
		Code:    ErrorCodeInvalidAmount,
		Message: "Amount paid must be positive",
	}

	ErrInvalidTimestamp = &BazaarError{
		Code:    ErrorCodeInvalidTimestamp,
		Message: "Timestamp must be positive",
	}

	ErrNotInitialized = &BazaarError{
		Code:    ErrorCodeNotInitialized,
		Message: "Protocol ledger has not been initialized",
	}

	ErrAlreadyInitialized = &BazaarError{
		Code:    ErrorCodeAlreadyInitialized,
		Message: "Protocol ledger already exists",
	}

	ErrInvalidAgent = &BazaarError{
		Code:    ErrorCodeInvalidAgent,
		Message: "Agent does not exist or is not active",
	}

	ErrAgentNotFound = &BazaarError{
		Code:    ErrorCodeAgentNotFound,
		Message: "Agent not found",
	}

	ErrAgentStillActive = &BazaarError{
		Code:    ErrorCodeAgentStillActive,
		Message: "Agent must be deactivated before closing",
	}

	ErrAgentAlreadyActive = &BazaarError{
		Code:    ErrorCodeAgentAlreadyActive,
		Message: "Agent is already active",
	}

	ErrRecentActivity = &BazaarError{
		Code:    ErrorCodeRecentActivity,
		Message: "Agent was rated within the last 7 days",
	}

	ErrTooManyAgents = &BazaarError{
		Code:    ErrorCodeTooManyAgents,
		Message: "Agent counter is exhausted",
	}

	ErrUnauthorized = &BazaarError{
		Code:    ErrorCodeUnauthorized,
		Message: "Caller does not match the stored owner or authority",
	}

	ErrSelfRating = &BazaarError{
		Code:    ErrorCodeSelfRating,
		Message: "Owners cannot rate their own agents",
	}

	ErrFeedbackTooFrequent = &BazaarError{
		Code:    ErrorCodeFeedbackTooFrequent,
		Message: "Rater is still in the one-hour cooldown window",
	}

	ErrFutureTimestamp = &BazaarError{
		Code:    ErrorCodeFutureTimestamp,
		Message: "Timestamp is ahead of the host clock",
	}

	ErrTimestampTooOld = &BazaarError{
		Code:    ErrorCodeTimestampTooOld,
		Message: "Timestamp is more than 24 hours old",
	}

	ErrFeedbackExists = &BazaarError{
		Code:    ErrorCodeFeedbackExists,
		Message: "Feedback with this key already exists",
	}

	ErrArithmeticOverflow = &BazaarError{
		Code:    ErrorCodeArithmeticOverflow,
		Message: "Counter increment would overflow",
	}
)

// NewBazaarError creates a new error with the given code and detail
func NewBazaarError(code, message, details string) *BazaarError {
	return &BazaarError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// WrapError wraps a generic error as a BazaarError
func WrapError(err error, code, message string) *BazaarError {
	return &BazaarError{
		Code:    code,
		Message: message,
		Details: err.Error(),
	}
}

// IsBazaarError checks if an error is a BazaarError
func IsBazaarError(err error) bool {
	var be *BazaarError
	return errors.As(err, &be)
}

// GetErrorCode extracts the error code, or UNKNOWN_ERROR for foreign errors
func GetErrorCode(err error) string {
	var be *BazaarError
	if errors.As(err, &be) {
		return be.Code
	}
	return "UNKNOWN_ERROR"
}

// HasCode reports whether err is a BazaarError with the given code
func HasCode(err error, code string) bool {
	return GetErrorCode(err) == code
}
