package errors

import (
	"errors"
	"fmt"
)

var (
	ErrMissingRequiredFields = errors.New("missing required fields")
	ErrUnsupportedLocation   = errors.New("unsupported storage location")
	ErrNoStorageLocation     = errors.New("catalog table has no storage location")
	ErrQueryFailed           = errors.New("athena query failed")
	ErrQueryNotFinished      = errors.New("athena query has not finished")
	ErrQualityCheckFailed    = errors.New("quality check failed")
	ErrEmptyForecast         = errors.New("forecast response contains no daily values")
)

// ConfigNotSetError wraps ErrMissingRequiredFields with the unset key.
func ConfigNotSetError(config string) error {
	return fmt.Errorf("%w: the %s configuration value must be set", ErrMissingRequiredFields, config)
}

// QueryFailedError wraps ErrQueryFailed with Athena's state change reason.
func QueryFailedError(reason string) error {
	if reason == "" {
		reason = "Unknown error"
	}
	return fmt.Errorf("%w: %s", ErrQueryFailed, reason)
}
