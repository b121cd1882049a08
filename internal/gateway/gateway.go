// Package gateway manages stdio connections to the tool server subprocess.
// It is the primary transport: a session spawns the server binary, performs
// the MCP handshake under a bound, and issues named tool calls. Transport
// failures are classified so the resilience layer can decide to fall back.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"

	"opshub/pkg/models"
)

// handshakeTimeout bounds subprocess startup plus the initialize exchange.
const handshakeTimeout = 8 * time.Second

// TransportError marks a subprocess or protocol level failure (broken pipe,
// failed spawn, malformed frame). It is the signal the orchestrator uses to
// switch to the fallback path.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransportError reports whether err is (or wraps) a transport failure or
// a timeout, the two error classes that permit falling back.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te) || errors.Is(err, context.DeadlineExceeded)
}

// Session is one live stdio connection to a tool server subprocess.
type Session struct {
	name   string
	client *client.Client
}

// Open spawns the tool server and completes the MCP handshake. The spawn and
// initialize exchange share an 8 second bound; exceeding it surfaces a
// timeout to the caller. On any failure the subprocess is torn down before
// returning.
func Open(ctx context.Context, name, command string, args ...string) (*Session, error) {
	stdioTransport := transport.NewStdio(command, nil, args...)
	mcpClient := client.NewClient(stdioTransport)

	hctx, cancel := context.WithTimeout(ctx, handshakeTimeout)
	defer cancel()

	if err := mcpClient.Start(hctx); err != nil {
		return nil, &TransportError{Op: "start", Err: err}
	}

	initRequest := mcp.InitializeRequest{}
	initRequest.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initRequest.Params.ClientInfo = mcp.Implementation{
		Name:    "opshub",
		Version: "1.0.0",
	}
	initRequest.Params.Capabilities = mcp.ClientCapabilities{}

	if _, err := mcpClient.Initialize(hctx, initRequest); err != nil {
		mcpClient.Close()
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("handshake with %s timed out: %w", name, err)
		}
		return nil, &TransportError{Op: "initialize", Err: err}
	}

	return &Session{name: name, client: mcpClient}, nil
}

// Name returns the server name this session was opened for.
func (s *Session) Name() string { return s.name }

// CallTool sends one named operation with JSON arguments and awaits one
// response. Tool-level failures and non-JSON payloads come back as error
// results; only transport breakage or timeout is returned as a Go error.
func (s *Session) CallTool(ctx context.Context, tool string, arguments map[string]any) (*models.ToolCallResult, error) {
	callRequest := mcp.CallToolRequest{}
	callRequest.Params.Name = tool
	callRequest.Params.Arguments = arguments

	result, err := s.client.CallTool(ctx, callRequest)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("tool %s on %s timed out: %w", tool, s.name, err)
		}
		return nil, &TransportError{Op: "call_tool " + tool, Err: err}
	}

	if result.IsError {
		msg := "tool execution failed"
		if len(result.Content) > 0 {
			if textContent, ok := mcp.AsTextContent(result.Content[0]); ok {
				msg = textContent.Text
			}
		}
		return &models.ToolCallResult{Error: msg}, nil
	}

	if len(result.Content) == 0 {
		return &models.ToolCallResult{}, nil
	}

	textContent, ok := mcp.AsTextContent(result.Content[0])
	if !ok {
		return &models.ToolCallResult{Error: fmt.Sprintf("tool %s returned non-text content", tool)}, nil
	}

	var parsed any
	if err := json.Unmarshal([]byte(textContent.Text), &parsed); err != nil {
		return &models.ToolCallResult{Error: fmt.Sprintf("tool %s returned non-JSON response: %v", tool, err)}, nil
	}

	return &models.ToolCallResult{Result: parsed}, nil
}

// Close tears down the stdio channel and terminates the subprocess. Safe on
// every exit path, including after a failed call.
func (s *Session) Close() {
	if s != nil && s.client != nil {
		s.client.Close()
	}
}
