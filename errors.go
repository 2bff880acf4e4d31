package extend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrValidation is returned when a request parameter is missing or invalid.
	// No request is sent in that case.
	ErrValidation = errors.New("invalid request")
	// ErrTransport is returned when the request could not be delivered or the
	// response could not be read.
	ErrTransport = errors.New("transport failure")
	// ErrStatus is returned when the API returns an unexpected status code.
	ErrStatus = errors.New("unexpected status code")
	// ErrRateLimit is returned when the rate limit is exceeded.
	ErrRateLimit = errors.New("rate limit exceeded")
	// ErrDecode is returned when a response body is not the expected JSON.
	ErrDecode = errors.New("malformed response")
)

// ValidationError describes a rejected request parameter.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap makes the error match [ErrValidation].
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// APIError is returned for every non-2xx response.
type APIError struct {
	// StatusCode is the HTTP status returned by the API.
	StatusCode int
	// Message is the error text reported by the API, if any.
	Message string
	// Body is the raw response body.
	Body []byte
	// RetryAfter is the delay requested by the API on 429 responses.
	// The client does not retry on its own.
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: %d", http.StatusText(e.StatusCode), e.StatusCode)
	}

	return fmt.Sprintf("%s: %d: %s", http.StatusText(e.StatusCode), e.StatusCode, e.Message)
}

// Unwrap makes the error match [ErrStatus], and [ErrRateLimit] for 429.
func (e *APIError) Unwrap() []error {
	if e.StatusCode == http.StatusTooManyRequests {
		return []error{ErrStatus, ErrRateLimit}
	}

	return []error{ErrStatus}
}

// errorBody is the error document returned by the API.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// newAPIError builds an APIError from a failed response and its body.
func newAPIError(resp *http.Response, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Body:       body,
	}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		apiErr.Message = eb.Message
		if apiErr.Message == "" {
			apiErr.Message = eb.Error
		}
	} else {
		apiErr.Message = strings.TrimSpace(string(body))
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		if d, err := parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()); err == nil {
			apiErr.RetryAfter = d
		}
	}

	return apiErr
}

// parseRetryAfter reads a Retry-After header given either in seconds or as
// an HTTP date.
func parseRetryAfter(header string, now time.Time) (time.Duration, error) {
	if header == "" {
		return 0, fmt.Errorf("missing Retry-After header")
	}

	if secs, err := strconv.ParseInt(header, 10, 64); err == nil {
		if secs < 0 {
			return 0, fmt.Errorf("invalid Retry-After header %q", header)
		}
		return time.Duration(secs) * time.Second, nil
	}

	t, err := http.ParseTime(header)
	if err != nil {
		return 0, fmt.Errorf("invalid Retry-After header %q: %w", header, err)
	}

	if d := t.Sub(now); d > 0 {
		return d, nil
	}

	return 0, nil
}
