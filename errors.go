package timetable

import "errors"

// ConfigurationError marks an invalid slot collection or schedule settings.
// It is fatal at configuration-load time and is surfaced to the operator
// before any scheduling begins; it is never retried.
type ConfigurationError struct {
	msg string
}

// NewConfigurationError creates a configuration error with the given message
func NewConfigurationError(msg string) *ConfigurationError {
	return &ConfigurationError{msg: msg}
}

func (e *ConfigurationError) Error() string {
	return e.msg
}

// IsConfigurationError reports whether err is (or wraps) a ConfigurationError
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// ErrNoSlots is returned when a schedule has no slots at all
var ErrNoSlots = NewConfigurationError("no valid time slots configured")
