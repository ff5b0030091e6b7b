package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimError_IsMatchesOnKindOnly(t *testing.T) {
	a := NewContractViolation("down must be in {1,2,3,4}", nil)
	b := NewContractViolation("distance must be >= 1", nil)

	assert.True(t, errors.Is(a, b), "two ContractViolation errors with different messages must still match via errors.Is")
}

func TestSimError_IsDoesNotMatchDifferentKind(t *testing.T) {
	contract := NewContractViolation("bad input", nil)
	invariant := NewStateInvariantBroken("broken invariant", nil)

	assert.False(t, errors.Is(contract, invariant))
}

func TestIsContractViolation(t *testing.T) {
	err := NewContractViolation("bad input", nil)
	assert.True(t, IsContractViolation(err))
	assert.False(t, IsStateInvariantBroken(err))
}

func TestIsStateInvariantBroken(t *testing.T) {
	err := NewStateInvariantBroken("broken invariant", nil)
	assert.True(t, IsStateInvariantBroken(err))
	assert.False(t, IsContractViolation(err))
}

func TestErrCancelled_MatchesViaErrorsIs(t *testing.T) {
	wrapped := func() error { return ErrCancelled }()
	assert.ErrorIs(t, wrapped, ErrCancelled)
}

func TestNewOracleUnavailable_CarriesNoSnapshot(t *testing.T) {
	err := NewOracleUnavailable("missing field goal make classifier")
	var se *SimError
	require := assert.New(t)
	require.True(errors.As(err, &se))
	require.Equal(KindOracleUnavailable, se.Kind)
	require.Nil(se.State)
}
