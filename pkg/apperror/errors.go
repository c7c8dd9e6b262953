package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
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

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Wallet lifecycle ----

func ErrWalletNotFound() *AppError {
	return New("WALLET_NOT_FOUND", "Wallet not found", http.StatusNotFound)
}

func ErrWalletNotActive(status string, reason string) *AppError {
	msg := fmt.Sprintf("Wallet is %s", status)
	if reason != "" {
		msg = fmt.Sprintf("%s: %s", msg, reason)
	}
	return New("WALLET_NOT_ACTIVE", msg, http.StatusForbidden)
}

func ErrInvalidTransition(from string, to string) *AppError {
	return New("INVALID_TRANSITION",
		fmt.Sprintf("Wallet status transition %s -> %s is not permitted", from, to),
		http.StatusConflict)
}

func ErrReasonRequired(status string) *AppError {
	return New("VALIDATION_ERROR",
		fmt.Sprintf("A reason is required when transitioning to %s", status),
		http.StatusBadRequest)
}

// ---- Spend policy ----

func ErrTransactionLimitExceeded() *AppError {
	return New("TRANSACTION_LIMIT_EXCEEDED", "Amount exceeds the per-transaction limit", http.StatusUnprocessableEntity)
}

func ErrDailyBudgetExceeded() *AppError {
	return New("DAILY_BUDGET_EXCEEDED", "Amount exceeds the remaining daily budget", http.StatusUnprocessableEntity)
}

func ErrMonthlyBudgetExceeded() *AppError {
	return New("MONTHLY_BUDGET_EXCEEDED", "Amount exceeds the remaining monthly budget", http.StatusUnprocessableEntity)
}

// ---- Signature & replay ----

func ErrInvalidSignature() *AppError {
	return New("INVALID_SIGNATURE", "Request signature verification failed", http.StatusUnauthorized)
}

func ErrReplayDetected() *AppError {
	return New("REPLAY_DETECTED", "Nonce has already been used", http.StatusForbidden)
}

func ErrSignatureExpired() *AppError {
	return New("SIGNATURE_EXPIRED", "Request timestamp is outside the validity window", http.StatusForbidden)
}

func ErrVerificationUnavailable(err error) *AppError {
	return Wrap("SIGNATURE_VERIFICATION_UNAVAILABLE", "Signer key resolution is unavailable", http.StatusServiceUnavailable, err)
}

// ---- Admin auth ----

func ErrUnauthorized() *AppError {
	return New("UNAUTHORIZED", "Missing or invalid credentials", http.StatusUnauthorized)
}

// ---- Rate limiting ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_LIMIT_EXCEEDED", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & infrastructure ----

// InternalError wraps an internal error.
func InternalError(err error) *AppError {
	return Wrap("INTERNAL_ERROR", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a request validation error.
func Validation(message string) *AppError {
	return New("VALIDATION_ERROR", message, http.StatusBadRequest)
}
