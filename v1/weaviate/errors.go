package weaviate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/weaviate/weaviate-go-client/v4/weaviate/fault"
)

var (
	// ErrNotFound matches any APIError with status 404.
	ErrNotFound = errors.New("weaviate: not found")

	// ErrNotReady is returned by NewClient when the readiness check fails.
	ErrNotReady = errors.New("weaviate: server not ready")
)

// APIError is returned for every unexpected status code. Body holds the
// server's message.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("[Weaviate] %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Is makes errors.Is(err, ErrNotFound) work for 404 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// IsNotFound checks if the error is a 404 from Weaviate.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if Weaviate rejected a request because the target
// class already exists. Weaviate reports this only in the message text.
func IsAlreadyExists(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return ContainsAlreadyExists(apiErr.Body)
	}
	return false
}

// ContainsAlreadyExists reports whether a server message says the target exists.
func ContainsAlreadyExists(msg string) bool {
	return strings.Contains(strings.ToLower(msg), "already exists")
}

// StatusCode extracts the HTTP status from an APIError, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// ResponseBody extracts the response body from an APIError, or the error text.
func ResponseBody(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Body
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// apiError turns an error of the underlying client into an *APIError, or
// wraps the transport error it was derived from so that context errors
// still match errors.Is.
func apiError(method, path string, err error) error {
	var clientErr *fault.WeaviateClientError
	if !errors.As(err, &clientErr) {
		return fmt.Errorf("[Weaviate] %s %s failed: %w", method, path, err)
	}
	if clientErr.DerivedFromError != nil {
		return fmt.Errorf("[Weaviate] %s %s failed: %w", method, path, clientErr.DerivedFromError)
	}
	if clientErr.StatusCode <= 0 {
		return fmt.Errorf("[Weaviate] %s %s failed: %s", method, path, clientErr.Msg)
	}
	return &APIError{
		Method:     method,
		Path:       path,
		StatusCode: clientErr.StatusCode,
		Body:       strings.TrimSpace(clientErr.Msg),
	}
}

// convert copies in into out through their JSON form. Numbers decode as
// json.Number so values without a fixed type round-trip unchanged.
func convert(in, out any) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(out)
}
