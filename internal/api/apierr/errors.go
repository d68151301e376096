package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/JaimeRLA/CorrelationGame/internal/model"
	"github.com/JaimeRLA/CorrelationGame/internal/storage"
)

// APIError represents an API error response
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeInvalidIdentityName = "INVALID_IDENTITY_NAME"
	CodeWeakCredential      = "WEAK_CREDENTIAL"
	CodeCredentialTooLong   = "CREDENTIAL_TOO_LONG"
	CodeAccountExists       = "ACCOUNT_EXISTS"
	CodeNoSuchAccount       = "NO_SUCH_ACCOUNT"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeOperationNotAllowed = "OPERATION_NOT_ALLOWED"
	CodeIdentityTaken       = "IDENTITY_TAKEN"
	CodeIdentityMismatch    = "IDENTITY_MISMATCH"
	CodeAlreadyPlayedToday  = "ALREADY_PLAYED_TODAY"
	CodeNoActiveProfile     = "NO_ACTIVE_PROFILE"
	CodeInvalidPoints       = "INVALID_POINTS"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeUnavailable         = "UNAVAILABLE"
	CodeInternalError       = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status an error maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	var played *model.AlreadyPlayedError
	if errors.As(err, &played) {
		return &httpError{http.StatusConflict, APIError{
			Code:    CodeAlreadyPlayedToday,
			Message: "You already played today, come back after midnight UTC",
			Details: map[string]any{
				"day":          string(played.Day),
				"remaining_ms": played.Remaining.Milliseconds(),
			},
		}}
	}

	switch {
	case errors.Is(err, model.ErrInvalidIdentityName):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidIdentityName, Message: "Name must have 3 to 24 letters, digits, '-' or '_'"}}
	case errors.Is(err, model.ErrWeakCredential):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeWeakCredential, Message: "Password is too weak, use at least 6 characters"}}
	case errors.Is(err, model.ErrCredentialTooLong):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeCredentialTooLong, Message: "Password is too long, use at most 72 bytes"}}
	case errors.Is(err, model.ErrAccountExists):
		return &httpError{http.StatusConflict, APIError{Code: CodeAccountExists, Message: "An account with this name already exists, log in instead"}}
	case errors.Is(err, model.ErrNoSuchAccount):
		return &httpError{http.StatusNotFound, APIError{Code: CodeNoSuchAccount, Message: "No account with this name"}}
	case errors.Is(err, model.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{Code: CodeInvalidCredentials, Message: "Wrong password"}}
	case errors.Is(err, model.ErrOperationNotAllowed):
		return &httpError{http.StatusForbidden, APIError{Code: CodeOperationNotAllowed, Message: "Registration is disabled"}}
	case errors.Is(err, model.ErrIdentityTaken):
		return &httpError{http.StatusConflict, APIError{Code: CodeIdentityTaken, Message: "This name is already taken"}}
	case errors.Is(err, model.ErrIdentityMismatch):
		return &httpError{http.StatusForbidden, APIError{Code: CodeIdentityMismatch, Message: "This name belongs to a different account"}}
	case errors.Is(err, model.ErrAlreadyPlayedToday):
		return &httpError{http.StatusConflict, APIError{Code: CodeAlreadyPlayedToday, Message: "You already played today, come back after midnight UTC"}}
	case errors.Is(err, model.ErrNoActiveProfile):
		return &httpError{http.StatusUnauthorized, APIError{Code: CodeNoActiveProfile, Message: "No active profile, log in again"}}
	case errors.Is(err, model.ErrInvalidSession):
		return &httpError{http.StatusUnauthorized, APIError{Code: CodeUnauthorized, Message: "Invalid or expired session"}}
	case errors.Is(err, model.ErrInvalidPoints):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidPoints, Message: "Points must be zero or more and within range"}}
	case errors.Is(err, model.ErrEmptyGuess):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidRequest, Message: "Write a guess first"}}
	case errors.Is(err, storage.ErrTxConflict):
		return &httpError{http.StatusServiceUnavailable, APIError{Code: CodeUnavailable, Message: "Store is busy, try again"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{Code: CodeInternalError, Message: "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidRequest, Message: message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{Code: CodeUnauthorized, Message: "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{Code: CodeInternalError, Message: "Internal server error"}}
}
