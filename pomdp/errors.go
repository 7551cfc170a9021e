package pomdp

import (
	"errors"
	"fmt"
)

// Sentinel error kinds surfaced to the driver.
var (
	// ErrParticleDeprivation: belief empty at reinvigoration time, or a
	// POMCP update could not find a leaf for the real observation.
	ErrParticleDeprivation = errors.New("pomdp: particle deprivation")

	// ErrBeliefTypeMismatch: POMCP update invoked on a non-particle belief.
	ErrBeliefTypeMismatch = errors.New("pomdp: belief is not a particle belief")

	// ErrInvalidHistory: the tree root's recorded history disagrees with
	// the agent's history when attempting to reuse the tree.
	ErrInvalidHistory = errors.New("pomdp: root history does not match agent history")

	// ErrBudgetMisconfigured: neither num_sims nor planning_time was given
	// and the implementer does not want the 1s default applied.
	ErrBudgetMisconfigured = errors.New("pomdp: neither num_sims nor planning_time configured")

	// ErrDomainError wraps any error propagated from a domain model.
	ErrDomainError = errors.New("pomdp: domain error")
)

// WrapDomainError wraps err so that errors.Is(wrapped, ErrDomainError) holds.
// err's message is kept in the wrapped error's text, but err itself is not
// in the chain: errors.Unwrap returns ErrDomainError, and errors.Is/As do
// not reach err.
func WrapDomainError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrDomainError, err)
}
