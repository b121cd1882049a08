package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTransportError(t *testing.T) {
	assert.True(t, IsTransportError(&TransportError{Op: "start", Err: errors.New("exec failed")}))
	assert.True(t, IsTransportError(fmt.Errorf("wrapped: %w", &TransportError{Op: "call_tool", Err: errors.New("pipe")})))
	assert.True(t, IsTransportError(context.DeadlineExceeded))
	assert.True(t, IsTransportError(fmt.Errorf("tool timed out: %w", context.DeadlineExceeded)))

	assert.False(t, IsTransportError(nil))
	assert.False(t, IsTransportError(errors.New("plain error")))
	assert.False(t, IsTransportError(context.Canceled))
}

func TestTransportError_Unwrap(t *testing.T) {
	inner := errors.New("broken pipe")
	err := &TransportError{Op: "call_tool list_tasks", Err: inner}

	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "call_tool list_tasks")
}

func TestSessionKey_DistinguishesServers(t *testing.T) {
	a := sessionKey("doorloop", "./toolserver", []string{"doorloop"})
	b := sessionKey("connecteam", "./toolserver", []string{"connecteam"})
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, sessionKey("doorloop", "./toolserver", []string{"doorloop"}))
}

func TestRegistry_GetFailsForMissingBinary(t *testing.T) {
	r := NewRegistry()
	defer r.Shutdown()

	_, err := r.Get(context.Background(), "doorloop", "/nonexistent/opshub-toolserver", "doorloop")
	require.Error(t, err)
	assert.True(t, IsTransportError(err))

	// A failed open leaves nothing cached.
	stats := r.Stats()
	assert.Equal(t, 0, stats["active_sessions"])
}

// Exercises the read-locked fast path from many goroutines at once, with
// the stale sweep reading lastUsed concurrently. Run with -race.
func TestRegistry_ConcurrentCachedGets(t *testing.T) {
	r := NewRegistry()
	defer r.Shutdown()

	key := sessionKey("doorloop", "./toolserver", []string{"doorloop"})
	entry := &registryEntry{session: &Session{name: "doorloop"}}
	entry.touch()
	r.sessions[key] = entry

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				session, err := r.Get(context.Background(), "doorloop", "./toolserver", "doorloop")
				if err != nil {
					t.Errorf("cached Get failed: %v", err)
					return
				}
				if session == nil {
					t.Error("cached Get returned nil session")
					return
				}
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 50; j++ {
			r.cleanupStaleSessions()
		}
	}()

	wg.Wait()
	assert.Equal(t, 1, r.Stats()["active_sessions"])
}

func TestRegistry_InvalidateUnknownSessionIsSafe(t *testing.T) {
	r := NewRegistry()
	defer r.Shutdown()

	r.Invalidate("doorloop", "./toolserver", "doorloop")
}

func TestRegistry_StatsShape(t *testing.T) {
	r := NewRegistry()
	defer r.Shutdown()

	stats := r.Stats()
	assert.Equal(t, 0, stats["active_sessions"])
	assert.Empty(t, stats["servers"])
}
