// Package upstream defines the error taxonomy shared by the SaaS API
// clients. Both error types are structured so the route layer can map them
// to HTTP responses without string matching.
package upstream

import "fmt"

// CredentialError means a required API credential is absent from the
// configuration. The call is short-circuited before any request is made.
type CredentialError struct {
	Name string
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("%s not configured", e.Name)
}

// APIError carries a non-2xx upstream response. It is surfaced to the
// caller as structured data and never retried automatically.
type APIError struct {
	Operation string
	Status    int
	Body      string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s failed with status %d", e.Operation, e.Status)
}

// Document renders the error in the wire shape the route layer returns.
func (e *APIError) Document() map[string]any {
	return map[string]any{
		"error":    fmt.Sprintf("Failed to %s", e.Operation),
		"status":   e.Status,
		"response": e.Body,
	}
}
