// Package resilience decides, per logical operation, whether the primary
// subprocess transport result stands or the direct in-process fallback runs.
package resilience

import (
	"context"
	"errors"
	"time"

	"opshub/internal/gateway"
	"opshub/internal/logging"
)

// CallFunc is one transport attempt for a logical operation.
type CallFunc func(ctx context.Context) (any, error)

// Orchestrator runs an operation over the primary transport under a hard
// timeout and falls back to the direct path when the transport breaks.
// It never retries the primary within a single call; the background
// refresher is the only retry mechanism for cached data.
type Orchestrator struct {
	allowFallback bool
	timeout       time.Duration
}

// New builds an orchestrator. allowFallback mirrors the global configuration
// toggle; timeout bounds each primary attempt.
func New(allowFallback bool, timeout time.Duration) *Orchestrator {
	return &Orchestrator{
		allowFallback: allowFallback,
		timeout:       timeout,
	}
}

// Call invokes primary under the configured timeout. On success its result
// is returned immediately. On failure, if fallback is permitted and
// provided, the fallback result (or its own error) is returned; otherwise
// the original transport error propagates. Caller cancellation is honored
// and never triggers a fallback.
func (o *Orchestrator) Call(ctx context.Context, operation string, primary, fallback CallFunc) (any, error) {
	pctx, cancel := context.WithTimeout(ctx, o.timeout)
	result, err := primary(pctx)
	cancel()
	if err == nil {
		return result, nil
	}

	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return nil, err
	}

	// Only transport breakage and timeouts are recoverable here. Upstream
	// API errors and credential problems would fail identically on the
	// direct path, so they propagate as-is.
	if !gateway.IsTransportError(err) {
		return nil, err
	}

	if !o.allowFallback || fallback == nil {
		logging.Warn("Primary transport failed for %s (%T); fallback unavailable", operation, err)
		logging.Debug("Primary failure detail for %s: %v", operation, err)
		return nil, err
	}

	logging.Warn("Primary transport failed for %s (%T); falling back to direct call", operation, err)
	logging.Debug("Primary failure detail for %s: %v", operation, err)

	return fallback(ctx)
}
