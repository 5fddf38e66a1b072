package apierrors

import (
	"encoding/json"
	"fmt"
)

// ConfigurationError reports an invalid client or proxy configuration:
// a malformed proxy URL, an empty proxy chain, an unsupported hop
// arrangement. It is raised synchronously at configuration time, before
// any network I/O.
type ConfigurationError struct {
	Message string
	Cause   error
}

func NewConfiguration(message string, cause error) *ConfigurationError {
	return &ConfigurationError{Message: message, Cause: cause}
}

func (e *ConfigurationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Message, e.Cause)
	}
	return "configuration error: " + e.Message
}

func (e *ConfigurationError) Unwrap() error { return e.Cause }

// NetworkError reports a transport-level failure (timeout, connection
// refused, DNS or TLS failure) during a single request attempt. It is
// never retried by this layer.
type NetworkError struct {
	Message string
	Cause   error
}

func NewNetwork(message string, cause error) *NetworkError {
	return &NetworkError{Message: message, Cause: cause}
}

func (e *NetworkError) Error() string { return e.Message }

func (e *NetworkError) Unwrap() error { return e.Cause }

// APIError is a declared error parsed from a response envelope. It is
// the call's result, not a transport failure.
type APIError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Code, e.Message)
}
