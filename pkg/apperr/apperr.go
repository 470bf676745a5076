// Package apperr defines the structured error types shared across the service.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	// Auth / token lifecycle
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeExchangeFailed     = "EXCHANGE_FAILED"
	CodeMissingIDToken     = "MISSING_IDENTITY_TOKEN"
	CodeIdentityClaim      = "IDENTITY_CLAIM_MISSING"
	CodeNoStoredCredential = "NO_STORED_CREDENTIAL"
	CodeRefreshFailed      = "REFRESH_FAILED"

	// Mail provider
	CodeFetchFailed = "FETCH_FAILED"
	CodeSendFailed  = "SEND_FAILED"

	// Validation / resources
	CodeBadRequest = "BAD_REQUEST"
	CodeNotFound   = "NOT_FOUND"
	CodeConflict   = "CONFLICT"

	// Infrastructure
	CodeStorageError  = "STORAGE_ERROR"
	CodeInternalError = "INTERNAL_ERROR"
)

// AppError represents a structured application error
type AppError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Status  int            `json:"-"`
	Details map[string]any `json:"details,omitempty"`
	Err     error          `json:"-"`
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

func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// Is matches AppErrors by code so wrapped instances compare against sentinels.
func (e *AppError) Is(target error) bool {
	var other *AppError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// Constructor functions
func New(code, message string, status int) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
	}
}

func Wrap(err error, code, message string, status int) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// Token lifecycle errors. The provider's raw error body travels in Err so it
// reaches logs without leaking into client responses.

func ExchangeFailed(err error) *AppError {
	return &AppError{
		Code:    CodeExchangeFailed,
		Message: "authorization code exchange failed",
		Status:  http.StatusBadGateway,
		Err:     err,
	}
}

func MissingIdentityToken() *AppError {
	return &AppError{
		Code:    CodeMissingIDToken,
		Message: "token response carried no identity token",
		Status:  http.StatusBadGateway,
	}
}

func IdentityClaimMissing() *AppError {
	return &AppError{
		Code:    CodeIdentityClaim,
		Message: "identity token carries no email claim",
		Status:  http.StatusBadGateway,
	}
}

func NoStoredCredential(identity string) *AppError {
	return &AppError{
		Code:    CodeNoStoredCredential,
		Message: "no refresh credential stored, re-authorization required",
		Status:  http.StatusUnauthorized,
		Details: map[string]any{"identity": identity},
	}
}

func RefreshFailed(err error) *AppError {
	return &AppError{
		Code:    CodeRefreshFailed,
		Message: "access token refresh failed",
		Status:  http.StatusBadGateway,
		Err:     err,
	}
}

// Mail provider errors

func FetchFailed(messageID string, err error) *AppError {
	return &AppError{
		Code:    CodeFetchFailed,
		Message: "message fetch failed",
		Status:  http.StatusBadGateway,
		Details: map[string]any{"message_id": messageID},
		Err:     err,
	}
}

func SendFailed(err error) *AppError {
	return &AppError{
		Code:    CodeSendFailed,
		Message: "message send failed",
		Status:  http.StatusBadGateway,
		Err:     err,
	}
}

// Validation / resource errors

func Unauthorized(message string) *AppError {
	if message == "" {
		message = "unauthorized"
	}
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
		Status:  http.StatusUnauthorized,
	}
}

func InvalidToken(message string) *AppError {
	return &AppError{
		Code:    CodeInvalidToken,
		Message: message,
		Status:  http.StatusUnauthorized,
	}
}

func BadRequest(message string) *AppError {
	return &AppError{
		Code:    CodeBadRequest,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

func NotFound(resource string) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Status:  http.StatusNotFound,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
		Status:  http.StatusConflict,
	}
}

// Infrastructure errors

func StorageError(operation string, err error) *AppError {
	return &AppError{
		Code:    CodeStorageError,
		Message: fmt.Sprintf("storage error: %s", operation),
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

func Internal(message string) *AppError {
	if message == "" {
		message = "internal server error"
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Status:  http.StatusInternalServerError,
	}
}

func InternalWithError(err error) *AppError {
	return &AppError{
		Code:    CodeInternalError,
		Message: "internal server error",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// Helper functions
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return InternalWithError(err)
}

func GetHTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

// IsCode reports whether err is an AppError bearing the given code.
func IsCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
