package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	// Swap pipeline
	ErrValidation       ErrorType = "VALIDATION_ERROR"
	ErrQuoteInvalid     ErrorType = "QUOTE_INVALID"
	ErrQuoteRequest     ErrorType = "QUOTE_REQUEST_FAILED"
	ErrSignatureReject  ErrorType = "SIGNATURE_REJECTED"
	ErrSubmission       ErrorType = "SUBMISSION_FAILED"
	ErrPollingTransport ErrorType = "POLLING_TRANSPORT_ERROR"
	ErrPollingTimeout   ErrorType = "POLLING_TIMEOUT"
	ErrBusy             ErrorType = "ORCHESTRATOR_BUSY"
	ErrSwapFailed       ErrorType = "SWAP_FAILED"
	ErrCancelled        ErrorType = "SWAP_CANCELLED"

	// Gateway
	ErrAuthFailed     ErrorType = "AUTH_FAILED"
	ErrRateLimited    ErrorType = "RATE_LIMITED"
	ErrInvalidRequest ErrorType = "INVALID_REQUEST"
	ErrInternal       ErrorType = "INTERNAL_ERROR"
	ErrNotFound       ErrorType = "NOT_FOUND"
	ErrUpstream       ErrorType = "UPSTREAM_ERROR"
	ErrReadOnly       ErrorType = "READ_ONLY"
)

// AppError is the standard error struct for the application
type AppError struct {
	Type       ErrorType `json:"code"`
	Message    string    `json:"message"`
	Suggestion string    `json:"suggestion,omitempty"`
	HTTPStatus int       `json:"-"`
	Cause      error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches another *AppError by type so callers can write
// errors.Is(err, apperrors.Busy).
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

func New(errType ErrorType, msg string, cause error) *AppError {
	return &AppError{
		Type:       errType,
		Message:    msg,
		Cause:      cause,
		HTTPStatus: mapTypeToStatus(errType),
		Suggestion: mapTypeToSuggestion(errType),
	}
}

func Newf(errType ErrorType, format string, args ...any) *AppError {
	return New(errType, fmt.Sprintf(format, args...), nil)
}

func NewValidation(msg string) *AppError {
	return New(ErrValidation, msg, nil)
}

func NewInvalidRequest(msg string) *AppError {
	return New(ErrInvalidRequest, msg, nil)
}

// Sentinels for errors.Is comparisons.
var (
	Busy            = New(ErrBusy, "a swap is already in progress", nil)
	QuoteInvalid    = New(ErrQuoteInvalid, "quote invalid", nil)
	SignatureReject = New(ErrSignatureReject, "signature rejected", nil)
)

func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return New(ErrInternal, err.Error(), err)
}

// TypeOf returns the ErrorType carried by err, or ErrInternal.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrInternal
}

// HasType reports whether err is an AppError of the given type.
func HasType(err error, t ErrorType) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == t
}

func mapTypeToStatus(t ErrorType) int {
	switch t {
	case ErrValidation, ErrInvalidRequest:
		return http.StatusBadRequest
	case ErrQuoteInvalid, ErrSwapFailed:
		return http.StatusUnprocessableEntity
	case ErrSignatureReject:
		return http.StatusForbidden
	case ErrAuthFailed:
		return http.StatusUnauthorized
	case ErrBusy:
		return http.StatusConflict
	case ErrRateLimited:
		return http.StatusTooManyRequests
	case ErrNotFound:
		return http.StatusNotFound
	case ErrQuoteRequest, ErrSubmission, ErrUpstream:
		return http.StatusBadGateway
	case ErrPollingTransport, ErrPollingTimeout:
		return http.StatusGatewayTimeout
	case ErrCancelled:
		return http.StatusRequestTimeout
	case ErrReadOnly:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func mapTypeToSuggestion(t ErrorType) string {
	switch t {
	case ErrValidation:
		return "Check chain, tokens, amount and recipient."
	case ErrQuoteInvalid:
		return "Try a different amount or token pair."
	case ErrQuoteRequest:
		return "Retry later; the quoting service is unavailable."
	case ErrSignatureReject:
		return "Approve the signature request in the wallet and start a new swap."
	case ErrSubmission:
		return "Start a new swap; signed authorizations cannot be reused."
	case ErrPollingTransport, ErrPollingTimeout:
		return "Check the transaction on the block explorer."
	case ErrSwapFailed:
		return "The relayer reported the trade as failed; request a new quote."
	case ErrBusy:
		return "Wait for the current swap to finish."
	case ErrCancelled:
		return "Nothing was submitted; start a new swap."
	case ErrAuthFailed:
		return "Check the gateway API key."
	case ErrRateLimited:
		return "Slow down and retry."
	case ErrReadOnly:
		return "The gateway is in maintenance mode; only reads are served."
	default:
		return ""
	}
}
