package bus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	pkgerrors "conceptbase/pkg/errors"
)

type testCommand struct {
	valid bool
}

func (c testCommand) Validate() error {
	if !c.valid {
		return pkgerrors.NewValidationError("INVALID", "command is invalid")
	}
	return nil
}

type otherCommand struct{}

func (otherCommand) Validate() error { return nil }

func TestCommandBusDispatch(t *testing.T) {
	b := NewCommandBus(LoggingMiddleware(zap.NewNop()))

	handled := false
	err := b.Register(testCommand{}, CommandHandlerFunc(func(ctx context.Context, cmd Command) (interface{}, error) {
		handled = true
		return uint64(7), nil
	}))
	require.NoError(t, err)

	result, err := b.Send(context.Background(), testCommand{valid: true})
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, uint64(7), result)
}

func TestCommandBusValidatesBeforeDispatch(t *testing.T) {
	b := NewCommandBus()

	called := false
	require.NoError(t, b.Register(testCommand{}, CommandHandlerFunc(func(ctx context.Context, cmd Command) (interface{}, error) {
		called = true
		return nil, nil
	})))

	_, err := b.Send(context.Background(), testCommand{valid: false})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
	assert.False(t, called)
}

func TestCommandBusUnregisteredCommand(t *testing.T) {
	b := NewCommandBus()

	_, err := b.Send(context.Background(), otherCommand{})
	assert.Error(t, err)
}

func TestCommandBusDuplicateRegistration(t *testing.T) {
	b := NewCommandBus()
	handler := CommandHandlerFunc(func(ctx context.Context, cmd Command) (interface{}, error) {
		return nil, nil
	})

	require.NoError(t, b.Register(testCommand{}, handler))
	assert.Error(t, b.Register(testCommand{}, handler))
}
