package services

import (
	"context"
	"fmt"

	"opshub/internal/gateway"
	"opshub/internal/resilience"
)

// toolCaller binds one tool server to the session registry and the
// resilience orchestrator. Each call runs the named tool over the primary
// stdio transport; the direct closure is the fallback path.
type toolCaller struct {
	server   string
	bin      string
	arg      string
	registry *gateway.Registry
	orch     *resilience.Orchestrator

	// ready short-circuits before either transport is attempted. The tool
	// server would report a missing credential as a flattened tool error,
	// losing the type; checking here keeps the error typed on both paths.
	ready func() error
}

func (t *toolCaller) call(ctx context.Context, tool string, args map[string]any, direct resilience.CallFunc) (any, error) {
	if t.ready != nil {
		if err := t.ready(); err != nil {
			return nil, err
		}
	}
	primary := func(ctx context.Context) (any, error) {
		session, err := t.registry.Get(ctx, t.server, t.bin, t.arg)
		if err != nil {
			return nil, err
		}

		result, err := session.CallTool(ctx, tool, args)
		if err != nil {
			// The subprocess is not trustworthy after a transport
			// failure; drop it so the next call respawns.
			t.registry.Invalidate(t.server, t.bin, t.arg)
			return nil, err
		}

		if result.IsError() {
			return nil, fmt.Errorf("tool %s failed: %s", tool, result.Error)
		}
		return result.Result, nil
	}

	return t.orch.Call(ctx, t.server+"."+tool, primary, direct)
}
