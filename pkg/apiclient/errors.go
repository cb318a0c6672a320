package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// DefaultErrorMessage is used when a failed response carries no usable message.
const DefaultErrorMessage = "API request failed"

var (
	// ErrEmptyEndpoint is returned when a request is made without an endpoint.
	ErrEmptyEndpoint = errors.New("endpoint is required")
	// ErrInvalidForm is returned when form encoding is requested without a Form payload.
	ErrInvalidForm = errors.New("form data requests require a *Form payload")
	// ErrMalformedResponse is returned when a successful response body is not JSON.
	ErrMalformedResponse = errors.New("malformed response body")
)

// APIError is a non-2xx response from the API.
type APIError struct {
	Method     string
	URL        string
	StatusCode int
	Message    string
	Body       []byte
}

// Error returns the server supplied message verbatim.
func (e *APIError) Error() string {
	return e.Message
}

// TransportError wraps failures that happened before any HTTP status was received.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// newAPIError builds an APIError from a failed response body.
func newAPIError(method, url string, status int, body []byte) *APIError {
	return &APIError{
		Method:     method,
		URL:        url,
		StatusCode: status,
		Message:    errorMessage(body),
		Body:       body,
	}
}

// errorMessage extracts the `message` field of an error body.
func errorMessage(body []byte) string {
	var payload struct {
		Message any `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return DefaultErrorMessage
	}
	msg, ok := payload.Message.(string)
	if !ok || msg == "" {
		return DefaultErrorMessage
	}
	return msg
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == status
	}
	return false
}

// IsNotFound reports whether err is a 404 APIError.
func IsNotFound(err error) bool {
	return IsStatus(err, http.StatusNotFound)
}

// IsUnauthorized reports whether err is a 401 APIError.
func IsUnauthorized(err error) bool {
	return IsStatus(err, http.StatusUnauthorized)
}

// IsTransport reports whether err was raised by the transport layer.
func IsTransport(err error) bool {
	var tErr *TransportError
	return errors.As(err, &tErr)
}
