package payment

import (
	"errors"
)

var (
	ErrMissingCredentials    = errors.New("empty credentials")
	ErrNoEnvironmentSelected = errors.New("no environment chosen")
	ErrMissingField          = errors.New("missing field")
)

// FailureKind classifies a fault raised while running a flow.
type FailureKind string

const (
	FailureNone               FailureKind = ""
	FailureMissingCredentials FailureKind = "missing_credentials"
	FailureNoEnvironment      FailureKind = "no_environment"
	FailureUnclassified       FailureKind = "unclassified"
)

// Kind maps err to its FailureKind.
func Kind(err error) FailureKind {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, ErrMissingCredentials):
		return FailureMissingCredentials
	case errors.Is(err, ErrNoEnvironmentSelected):
		return FailureNoEnvironment
	default:
		return FailureUnclassified
	}
}

// Logged reports whether failures of this kind go to the handler's logger.
// Only configuration failures are logged; anything else is left to the caller.
func (k FailureKind) Logged() bool {
	return k == FailureMissingCredentials || k == FailureNoEnvironment
}
