package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses. Field names
// the request field a validation or business error refers to, matching the
// ledger boundary contract (e.g. {"field": "amount", "message": "..."}).
type AppError struct {
	Code       string `json:"error_code"`
	Field      string `json:"field,omitempty"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// NewField creates an AppError bound to a specific request field.
func NewField(code string, field string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Field:      field,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Ledger Business Logic (LED) ----

func ErrInvalidAmount() *AppError {
	return NewField("LED_001", "amount", "Must be a decimal greater than 0", http.StatusBadRequest)
}

func ErrInvoiceRequired() *AppError {
	return NewField("LED_002", "invoice", "Required", http.StatusBadRequest)
}

func ErrInsufficientFunds() *AppError {
	return NewField("LED_003", "amount", "Insufficient funds", http.StatusPaymentRequired)
}

func ErrDuplicateInvoice() *AppError {
	return NewField("LED_004", "invoice", "Invoice has already been charged to this wallet", http.StatusConflict)
}

func ErrMerchantWalletLimit() *AppError {
	return NewField("LED_005", "user", "Merchants can only have one wallet", http.StatusBadRequest)
}

func ErrNotFound(entity string) *AppError {
	return New("LED_006", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrUsernameExists() *AppError {
	return New("AUTH_002", "Username already exists", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

func ErrLockTimeout(err error) *AppError {
	return Wrap("SYS_002", "Lock acquisition timeout", http.StatusServiceUnavailable, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a generic 400 validation error.
func Validation(message string) *AppError {
	return New("LED_000", message, http.StatusBadRequest)
}
