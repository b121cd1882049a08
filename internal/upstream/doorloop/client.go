// Package doorloop is the direct HTTP client for the property-management
// API. It is the fallback transport: the same operations are exposed by the
// tool server, but this path bypasses the subprocess protocol entirely.
package doorloop

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"opshub/internal/upstream"
)

const maxErrorBody = 1000

// Client issues authenticated requests against the DoorLoop REST API.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient builds a client. An empty apiKey is allowed at construction;
// every call short-circuits with a CredentialError until one is configured.
func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Ready reports whether the API credential is configured. Callers check it
// before attempting the subprocess transport, so a missing key surfaces as
// a typed CredentialError on both paths instead of a flattened tool error.
func (c *Client) Ready() error {
	if c.apiKey == "" {
		return &upstream.CredentialError{Name: "DOORLOOP_API_KEY"}
	}
	return nil
}

func (c *Client) get(ctx context.Context, operation, path string) (map[string]any, error) {
	if err := c.Ready(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", operation, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", operation, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", operation, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := string(body)
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return nil, &upstream.APIError{Operation: operation, Status: resp.StatusCode, Body: snippet}
	}

	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%s returned invalid JSON: %w", operation, err)
	}
	return doc, nil
}

// Tenants retrieves all tenants.
func (c *Client) Tenants(ctx context.Context) (map[string]any, error) {
	return c.get(ctx, "fetch tenants", "/api/tenants")
}

// Tenant retrieves one tenant by id.
func (c *Client) Tenant(ctx context.Context, id string) (map[string]any, error) {
	return c.get(ctx, "fetch tenant", "/api/tenants/"+id)
}

// Properties retrieves all properties.
func (c *Client) Properties(ctx context.Context) (map[string]any, error) {
	return c.get(ctx, "fetch properties", "/api/properties")
}

// PropertyByID retrieves one property.
func (c *Client) PropertyByID(ctx context.Context, id string) (map[string]any, error) {
	return c.get(ctx, fmt.Sprintf("fetch property %s", id), "/api/properties/"+id)
}

// Leases retrieves all leases.
func (c *Client) Leases(ctx context.Context) (map[string]any, error) {
	return c.get(ctx, "fetch leases", "/api/leases")
}

// Communications retrieves the communications log.
func (c *Client) Communications(ctx context.Context) (map[string]any, error) {
	return c.get(ctx, "fetch communications", "/api/communications")
}
