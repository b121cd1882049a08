package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opshub/internal/gateway"
)

func TestCall_PrimarySuccessSkipsFallback(t *testing.T) {
	orch := New(true, time.Second)

	fallbackRan := false
	result, err := orch.Call(context.Background(), "doorloop.retrieve_tenants",
		func(ctx context.Context) (any, error) { return "primary", nil },
		func(ctx context.Context) (any, error) { fallbackRan = true; return "fallback", nil },
	)

	require.NoError(t, err)
	assert.Equal(t, "primary", result)
	assert.False(t, fallbackRan)
}

func TestCall_FallsBackOnTransportError(t *testing.T) {
	orch := New(true, time.Second)

	transportErr := &gateway.TransportError{Op: "call_tool", Err: errors.New("broken pipe")}
	result, err := orch.Call(context.Background(), "doorloop.retrieve_tenants",
		func(ctx context.Context) (any, error) { return nil, transportErr },
		func(ctx context.Context) (any, error) { return "fallback", nil },
	)

	require.NoError(t, err)
	assert.Equal(t, "fallback", result)
}

func TestCall_FallsBackOnTimeout(t *testing.T) {
	orch := New(true, 20*time.Millisecond)

	result, err := orch.Call(context.Background(), "connecteam.list_tasks",
		func(ctx context.Context) (any, error) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(5 * time.Second):
				return "too late", nil
			}
		},
		func(ctx context.Context) (any, error) { return "fallback", nil },
	)

	require.NoError(t, err)
	assert.Equal(t, "fallback", result)
}

func TestCall_NonTransportErrorPropagates(t *testing.T) {
	orch := New(true, time.Second)

	apiErr := errors.New("DOORLOOP_API_KEY not configured")
	fallbackRan := false
	_, err := orch.Call(context.Background(), "doorloop.retrieve_tenants",
		func(ctx context.Context) (any, error) { return nil, apiErr },
		func(ctx context.Context) (any, error) { fallbackRan = true; return "fallback", nil },
	)

	assert.ErrorIs(t, err, apiErr)
	assert.False(t, fallbackRan)
}

func TestCall_FallbackDisabledReturnsPrimaryError(t *testing.T) {
	orch := New(false, time.Second)

	transportErr := &gateway.TransportError{Op: "start", Err: errors.New("spawn failed")}
	_, err := orch.Call(context.Background(), "doorloop.retrieve_tenants",
		func(ctx context.Context) (any, error) { return nil, transportErr },
		func(ctx context.Context) (any, error) { return "fallback", nil },
	)

	require.Error(t, err)
	assert.True(t, gateway.IsTransportError(err))
}

func TestCall_NilFallbackReturnsPrimaryError(t *testing.T) {
	orch := New(true, time.Second)

	transportErr := &gateway.TransportError{Op: "start", Err: errors.New("spawn failed")}
	_, err := orch.Call(context.Background(), "connecteam.create_task",
		func(ctx context.Context) (any, error) { return nil, transportErr },
		nil,
	)

	assert.Error(t, err)
}

func TestCall_CallerCancellationNeverFallsBack(t *testing.T) {
	orch := New(true, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	fallbackRan := false
	_, err := orch.Call(ctx, "doorloop.retrieve_leases",
		func(ctx context.Context) (any, error) {
			cancel()
			<-ctx.Done()
			return nil, ctx.Err()
		},
		func(ctx context.Context) (any, error) { fallbackRan = true; return "fallback", nil },
	)

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, fallbackRan)
}

func TestCall_FallbackErrorPropagates(t *testing.T) {
	orch := New(true, time.Second)

	fallbackErr := errors.New("direct call failed too")
	_, err := orch.Call(context.Background(), "doorloop.retrieve_tenants",
		func(ctx context.Context) (any, error) {
			return nil, &gateway.TransportError{Op: "call_tool", Err: errors.New("broken pipe")}
		},
		func(ctx context.Context) (any, error) { return nil, fallbackErr },
	)

	assert.ErrorIs(t, err, fallbackErr)
}
