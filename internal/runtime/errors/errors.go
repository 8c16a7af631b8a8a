// Package errors defines the configuration errors raised while building a
// messaging application. These are the only errors that escape construction;
// runtime failures inside component loops are logged and counted instead.
package errors

import (
	"fmt"

	sterrors "errors"
)

var (
	ErrNameRequired         = sterrors.New("connekted: component name is required")
	ErrDuplicateName        = sterrors.New("connekted: component name is already registered")
	ErrScheduleRequired     = sterrors.New("connekted: sender schedule is required")
	ErrGenerateRequired     = sterrors.New("connekted: generate function is required")
	ErrHandlerRequired      = sterrors.New("connekted: message handler is required")
	ErrTransformRequired    = sterrors.New("connekted: transform function is required")
	ErrSendQueueRequired    = sterrors.New("connekted: send queue is required")
	ErrReceiveQueueRequired = sterrors.New("connekted: receive queue is required")
	ErrNonPositiveInterval  = sterrors.New("connekted: schedule interval must be positive")
	ErrNoNextExecution      = sterrors.New("connekted: schedule has no computable next execution time")
	ErrTransportRequired    = sterrors.New("connekted: transport is required")
)

// ConfigValidationError wraps a configuration error with the component it
// belongs to, so build failures name the offending registration.
type ConfigValidationError struct {
	Component string
	Err       error
}

func (e *ConfigValidationError) Error() string {
	if e.Component == "" {
		return fmt.Sprintf("invalid configuration: %v", e.Err)
	}
	return fmt.Sprintf("invalid configuration for component %q: %v", e.Component, e.Err)
}

func (e *ConfigValidationError) Unwrap() error {
	return e.Err
}
