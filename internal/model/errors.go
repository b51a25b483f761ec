package model

import (
	"errors"
	"fmt"
)

// ErrUnknownProvider is returned when a config entry names a provider kind
// that has no registered constructor.
var ErrUnknownProvider = errors.New("unknown provider kind")

// HTTPError wraps a non-success HTTP status from a provider fetch.
type HTTPError struct {
	StatusCode int
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// ValidationError reports a required record field that was missing after mapping.
type ValidationError struct {
	Field string
	UID   string // may be empty when the uid itself is missing
}

func (e *ValidationError) Error() string {
	if e.UID != "" {
		return fmt.Sprintf("record %s: missing required field %q", e.UID, e.Field)
	}
	return fmt.Sprintf("record: missing required field %q", e.Field)
}

// ConfigError reports a provider entry that could not be configured, or a
// configuration mistake noticed at runtime (duplicate uids).
type ConfigError struct {
	Kind string
	Key  string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("provider %s.%s: %v", e.Kind, e.Key, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
