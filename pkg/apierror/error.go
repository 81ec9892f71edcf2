package apierror

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Error represents a structured API error response.
type Error struct {
	StatusCode int          `json:"-"`
	Code       string       `json:"code"`
	Reason     string       `json:"reason,omitempty"`
	Message    string       `json:"message"`
	Data       interface{}  `json:"data,omitempty"`
	Details    []FieldError `json:"details,omitempty"`
}

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error codes. Reasons refine a code (e.g. EMPTY_COLLECTION/SHOP_EMPTY).
const (
	CodeBadRequest         = "BAD_REQUEST"
	CodeValidation         = "VALIDATION_ERROR"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeNotFound           = "NOT_FOUND"
	CodeInsufficientFunds  = "INSUFFICIENT_FUNDS"
	CodeEmptyCollection    = "EMPTY_COLLECTION"
	CodeCooldownActive     = "COOLDOWN_ACTIVE"
	CodeRateLimited        = "RATE_LIMITED"
	CodeInternal           = "INTERNAL_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"

	ReasonShopEmpty          = "SHOP_EMPTY"
	ReasonEmptyInventory     = "EMPTY_INVENTORY"
	ReasonEmptyHistory       = "EMPTY_HISTORY"
	ReasonEmptyLeaderboard   = "EMPTY_LEADERBOARD"
	ReasonItemNotFound       = "ITEM_NOT_FOUND"
	ReasonItemNotInInventory = "ITEM_NOT_IN_INVENTORY"
	ReasonHistoryNotFound    = "HISTORY_NOT_FOUND"
)

// Sentinels for errors.Is. Matching is by Code, and by Reason when the
// target sets one.
var (
	ErrValidation        = &Error{Code: CodeValidation}
	ErrNotFound          = &Error{Code: CodeNotFound}
	ErrInsufficientFunds = &Error{Code: CodeInsufficientFunds}
	ErrEmpty             = &Error{Code: CodeEmptyCollection}
	ErrCooldownActive    = &Error{Code: CodeCooldownActive}

	ErrShopEmpty          = &Error{Code: CodeEmptyCollection, Reason: ReasonShopEmpty}
	ErrEmptyInventory     = &Error{Code: CodeEmptyCollection, Reason: ReasonEmptyInventory}
	ErrEmptyHistory       = &Error{Code: CodeEmptyCollection, Reason: ReasonEmptyHistory}
	ErrItemNotFound       = &Error{Code: CodeNotFound, Reason: ReasonItemNotFound}
	ErrItemNotInInventory = &Error{Code: CodeNotFound, Reason: ReasonItemNotInInventory}
)

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target is an *Error with the same code (and reason, if set on target).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != e.Code {
		return false
	}
	return t.Reason == "" || t.Reason == e.Reason
}

// WithDetails adds field-level error details.
func (e *Error) WithDetails(details ...FieldError) *Error {
	e.Details = details
	return e
}

// WithData attaches a payload the caller can render (e.g. the next collect time).
func (e *Error) WithData(data interface{}) *Error {
	e.Data = data
	return e
}

// ToJSON converts the error to JSON bytes.
func (e *Error) ToJSON() []byte {
	body := map[string]interface{}{
		"code":    e.Code,
		"message": e.Message,
	}
	if e.Reason != "" {
		body["reason"] = e.Reason
	}
	if e.Data != nil {
		body["data"] = e.Data
	}
	if len(e.Details) > 0 {
		body["details"] = e.Details
	}

	data, _ := json.Marshal(map[string]interface{}{
		"success": false,
		"status":  false,
		"error":   body,
	})
	return data
}

// BadRequest creates a 400 Bad Request error.
func BadRequest(message string) *Error {
	return &Error{
		StatusCode: http.StatusBadRequest,
		Code:       CodeBadRequest,
		Message:    message,
	}
}

// ValidationError creates a 400 error with validation details.
func ValidationError(message string, details ...FieldError) *Error {
	return &Error{
		StatusCode: http.StatusBadRequest,
		Code:       CodeValidation,
		Message:    message,
		Details:    details,
	}
}

// Unauthorized creates a 401 Unauthorized error.
func Unauthorized(message string) *Error {
	if message == "" {
		message = "Authentication required"
	}
	return &Error{
		StatusCode: http.StatusUnauthorized,
		Code:       CodeUnauthorized,
		Message:    message,
	}
}

// NotFound creates a 404 Not Found error.
func NotFound(reason, message string) *Error {
	if message == "" {
		message = "Resource not found"
	}
	return &Error{
		StatusCode: http.StatusNotFound,
		Code:       CodeNotFound,
		Reason:     reason,
		Message:    message,
	}
}

// InsufficientFunds creates a 409 error for an operation that would underflow a balance.
func InsufficientFunds(message string) *Error {
	return &Error{
		StatusCode: http.StatusConflict,
		Code:       CodeInsufficientFunds,
		Message:    message,
	}
}

// Empty creates a 404 error for an empty shop, inventory, history or leaderboard.
func Empty(reason, message string) *Error {
	return &Error{
		StatusCode: http.StatusNotFound,
		Code:       CodeEmptyCollection,
		Reason:     reason,
		Message:    message,
	}
}

// CooldownActive creates a 429 error carrying the time the reward becomes collectable.
func CooldownActive(message string, collectAt interface{}) *Error {
	return &Error{
		StatusCode: http.StatusTooManyRequests,
		Code:       CodeCooldownActive,
		Message:    message,
		Data:       collectAt,
	}
}

// RateLimited creates a 429 error for callers over their request budget.
func RateLimited(message string) *Error {
	return &Error{
		StatusCode: http.StatusTooManyRequests,
		Code:       CodeRateLimited,
		Message:    message,
	}
}

// InternalError creates a 500 Internal Server Error.
func InternalError(message string) *Error {
	if message == "" {
		message = "An unexpected error occurred"
	}
	return &Error{
		StatusCode: http.StatusInternalServerError,
		Code:       CodeInternal,
		Message:    message,
	}
}

// ServiceUnavailable creates a 503 Service Unavailable error.
func ServiceUnavailable(message string) *Error {
	if message == "" {
		message = "Service temporarily unavailable"
	}
	return &Error{
		StatusCode: http.StatusServiceUnavailable,
		Code:       CodeServiceUnavailable,
		Message:    message,
	}
}

// IsExpected reports whether err is a normal ledger outcome (empty collection,
// cooldown) rather than a failure worth logging.
func IsExpected(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == CodeEmptyCollection || e.Code == CodeCooldownActive
}
