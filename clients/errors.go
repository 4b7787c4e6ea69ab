package clients

import "encoding/json"

// Error codes produced by this layer when the backend does not supply one.
const (
	ErrNetwork       = "NETWORK_ERROR"
	ErrRequestFailed = "REQUEST_FAILED"
	ErrUnauthorized  = "UNAUTHORIZED"
	ErrForbidden     = "FORBIDDEN"
	ErrNotFound      = "NOT_FOUND"
	ErrFileTooLarge  = "FILE_TOO_LARGE"
	ErrRateLimited   = "RATE_LIMITED"
	ErrInternal      = "INTERNAL_ERROR"
)

// APIError is the failure half of an API call result. Status is the HTTP
// status code, or 0 when no response was received at all. Code is either the
// backend-supplied error code or a status-derived fallback.
type APIError struct {
	Status int
	Code   string
}

func (e *APIError) Error() string {
	return e.Code
}

// FallbackErrorByStatus maps an HTTP status to a coarse error code, used
// when the response body carries no usable error field.
func FallbackErrorByStatus(status int) string {
	switch {
	case status == 401:
		return ErrUnauthorized
	case status == 403:
		return ErrForbidden
	case status == 404:
		return ErrNotFound
	case status == 413:
		return ErrFileTooLarge
	case status == 429:
		return ErrRateLimited
	case status >= 500:
		return ErrInternal
	default:
		return ErrRequestFailed
	}
}

// readAPIError extracts an error code from a response body: a non-empty
// "error" field wins, then "message", else REQUEST_FAILED.
func readAPIError(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ErrRequestFailed
	}
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ErrRequestFailed
	}
	if s := trimmed(body.Error); s != "" {
		return s
	}
	if s := trimmed(body.Message); s != "" {
		return s
	}
	return ErrRequestFailed
}
