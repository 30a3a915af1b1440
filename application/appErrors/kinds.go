package apperrors

import (
	"errors"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
)

// InputError fails the current attempt before any signal is computed.
type InputError struct {
	Field string
	Err   error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input %s: %s", e.Field, e.Err.Error())
}

func (e *InputError) Unwrap() error {
	return e.Err
}

func NewInputError(field string, msg string) *InputError {
	return &InputError{Field: field, Err: eris.New(msg)}
}

func WrapInputError(field string, err error) *InputError {
	return &InputError{Field: field, Err: eris.Wrap(err, field)}
}

// CollaboratorUnavailable marks a dependent check as skipped.
type CollaboratorUnavailable struct {
	Collaborator string
	Err          error
}

func (e *CollaboratorUnavailable) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s unavailable", e.Collaborator)
	}
	return fmt.Sprintf("%s unavailable: %s", e.Collaborator, e.Err.Error())
}

func (e *CollaboratorUnavailable) Unwrap() error {
	return e.Err
}

// CheckTimeout is reported when an offloaded analysis call exceeds its budget.
type CheckTimeout struct {
	Check string
	After time.Duration
}

func (e *CheckTimeout) Error() string {
	return fmt.Sprintf("check %s timed out after %s", e.Check, e.After)
}

// ConfigurationMissing means no stored configuration row exists.
type ConfigurationMissing struct {
	Source string
}

func (e *ConfigurationMissing) Error() string {
	return fmt.Sprintf("no configuration found in %s", e.Source)
}

func IsInputError(err error) bool {
	var target *InputError
	return errors.As(err, &target)
}

func IsCollaboratorUnavailable(err error) bool {
	var target *CollaboratorUnavailable
	return errors.As(err, &target)
}

func IsCheckTimeout(err error) bool {
	var target *CheckTimeout
	return errors.As(err, &target)
}

func IsConfigurationMissing(err error) bool {
	var target *ConfigurationMissing
	return errors.As(err, &target)
}
