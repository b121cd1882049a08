// Package toolserver exposes the upstream API operations as MCP tools over
// stdio. The aggregation service spawns this server as a subprocess and
// calls it through the gateway; the tools wrap the same direct clients the
// fallback path uses, so both transports return identical payloads.
package toolserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"opshub/internal/upstream/connecteam"
	"opshub/internal/upstream/doorloop"
)

// NewDoorloopServer registers the property-management tool set.
func NewDoorloopServer(client *doorloop.Client) *server.MCPServer {
	s := server.NewMCPServer(
		"opshub-doorloop",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("retrieve_tenants",
			mcp.WithDescription("Retrieve all tenants from the property-management API"),
		),
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return jsonResult(client.Tenants(ctx))
		},
	)

	s.AddTool(
		mcp.NewTool("retrieve_tenant",
			mcp.WithDescription("Retrieve a single tenant by id"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Tenant id")),
		),
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := request.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return jsonResult(client.Tenant(ctx, id))
		},
	)

	s.AddTool(
		mcp.NewTool("retrieve_properties",
			mcp.WithDescription("Retrieve all properties"),
		),
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return jsonResult(client.Properties(ctx))
		},
	)

	s.AddTool(
		mcp.NewTool("retrieve_property",
			mcp.WithDescription("Retrieve a single property by id"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Property id")),
		),
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := request.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return jsonResult(client.PropertyByID(ctx, id))
		},
	)

	s.AddTool(
		mcp.NewTool("retrieve_leases",
			mcp.WithDescription("Retrieve all leases with balances"),
		),
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return jsonResult(client.Leases(ctx))
		},
	)

	s.AddTool(
		mcp.NewTool("retrieve_communications",
			mcp.WithDescription("Retrieve the communications log"),
		),
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return jsonResult(client.Communications(ctx))
		},
	)

	return s
}

// NewConnecteamServer registers the workforce-scheduling tool set.
func NewConnecteamServer(client *connecteam.Client) *server.MCPServer {
	s := server.NewMCPServer(
		"opshub-connecteam",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("retrieve_users",
			mcp.WithDescription("Retrieve active users"),
			mcp.WithNumber("limit", mcp.Description("Page size (default 10)")),
			mcp.WithNumber("offset", mcp.Description("Page offset (default 0)")),
		),
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			limit := request.GetInt("limit", 10)
			offset := request.GetInt("offset", 0)
			return jsonResult(client.Users(ctx, limit, offset))
		},
	)

	s.AddTool(
		mcp.NewTool("list_tasks",
			mcp.WithDescription("List tasks on the configured taskboard"),
			mcp.WithString("status", mcp.Description("Status filter (default all)")),
			mcp.WithNumber("limit", mcp.Description("Page size (default 10)")),
			mcp.WithNumber("offset", mcp.Description("Page offset (default 0)")),
		),
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			status := request.GetString("status", "all")
			limit := request.GetInt("limit", 10)
			offset := request.GetInt("offset", 0)
			return jsonResult(client.ListTasks(ctx, status, limit, offset))
		},
	)

	s.AddTool(
		mcp.NewTool("retrieve_taskboards",
			mcp.WithDescription("List the available taskboards"),
		),
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return jsonResult(client.Taskboards(ctx))
		},
	)

	s.AddTool(
		mcp.NewTool("get_task",
			mcp.WithDescription("Retrieve a single task by id"),
			mcp.WithString("task_id", mcp.Required(), mcp.Description("Task id")),
		),
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			taskID, err := request.RequireString("task_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return jsonResult(client.GetTask(ctx, taskID))
		},
	)

	return s
}

// Serve runs the server over stdio until the parent closes the pipe.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

// jsonResult renders an upstream document (or its error) as a tool result.
// Errors become error results so they survive the protocol boundary as
// structured outcomes instead of broken frames.
func jsonResult(doc map[string]any, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
