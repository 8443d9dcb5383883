package reexec

import (
	"context"
	"testing"

	"github.com/soda480/mpmq-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopFunc(_ context.Context, _, _ mpmq.Record) (any, error) { return nil, nil }

func TestRegisterAndLookup(t *testing.T) {
	Register("registry-test-noop", noopFunc)

	fn, err := lookup("registry-test-noop")
	require.NoError(t, err)
	require.NotNil(t, fn)
}

func TestLookup_Unknown(t *testing.T) {
	_, err := lookup("registry-test-never-registered")
	require.ErrorIs(t, err, mpmq.ErrUnknownFunction)
}

func TestRegister_DuplicatePanics(t *testing.T) {
	Register("registry-test-dup", noopFunc)
	assert.Panics(t, func() { Register("registry-test-dup", noopFunc) })
}

func TestRegister_EmptyNamePanics(t *testing.T) {
	assert.Panics(t, func() { Register("", noopFunc) })
}

func TestRegister_NilFuncPanics(t *testing.T) {
	assert.Panics(t, func() { Register("registry-test-nil", nil) })
}
