package core

import (
	"errors"
	"fmt"
)

// Kind classifies a simulation error per the taxonomy the replay driver
// reports on: contract/invariant violations abort the current replay,
// OracleUnavailable aborts at startup, Cancelled is not a failure.
type Kind string

const (
	KindContractViolation   Kind = "CONTRACT_VIOLATION"
	KindOracleUnavailable   Kind = "ORACLE_UNAVAILABLE"
	KindStateInvariantBroken Kind = "STATE_INVARIANT_BROKEN"
	KindCancelled           Kind = "CANCELLED"
	KindUnknown             Kind = "UNKNOWN"
)

// ErrCancelled is the sentinel returned by RunOneGame when the caller's
// cancel flag is observed at the top of a loop cycle. Check with errors.Is.
var ErrCancelled = &SimError{Kind: KindCancelled, Message: "replay cancelled"}

// SimError carries the offending state snapshot alongside the error kind,
// per spec's requirement that contract/invariant violations abort with a
// diagnostic snapshot.
type SimError struct {
	Kind    Kind
	Message string
	State   *Snapshot
}

func (e *SimError) Error() string {
	if e.State != nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *SimError) Is(target error) bool {
	t, ok := target.(*SimError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// NewContractViolation reports an illegal mutator argument. Fatal to the
// current replay — indicates a bug in the caller, not a data condition.
func NewContractViolation(msg string, snap *Snapshot) error {
	return &SimError{Kind: KindContractViolation, Message: msg, State: snap}
}

// NewOracleUnavailable reports a missing required model or PMF table.
// Fatal at startup; the simulator must refuse to run without it.
func NewOracleUnavailable(msg string) error {
	return &SimError{Kind: KindOracleUnavailable, Message: msg}
}

// NewStateInvariantBroken reports a post-transition invariant check
// failure. Fatal to the replay and indicates a logic bug in PlayResolver
// or GameLoop, not in caller input.
func NewStateInvariantBroken(msg string, snap *Snapshot) error {
	return &SimError{Kind: KindStateInvariantBroken, Message: msg, State: snap}
}

// IsContractViolation reports whether err is a ContractViolation SimError.
func IsContractViolation(err error) bool {
	var se *SimError
	return errors.As(err, &se) && se.Kind == KindContractViolation
}

// IsStateInvariantBroken reports whether err is a StateInvariantBroken SimError.
func IsStateInvariantBroken(err error) bool {
	var se *SimError
	return errors.As(err, &se) && se.Kind == KindStateInvariantBroken
}

// KindOf extracts the Kind from any error produced by this package,
// reporting KindUnknown for a non-nil error that isn't a *SimError. Used by
// the replay batch driver to tally aborts per kind for later diagnosis.
func KindOf(err error) Kind {
	var se *SimError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnknown
}
