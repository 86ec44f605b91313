package client

import (
	"context"
	"time"
)

const (
	DefaultBaseURL = "http://127.0.0.1:8040"

	// DefaultQueryTimeout bounds a single gateway request.
	DefaultQueryTimeout = 6 * time.Second
	// DefaultLongCallTimeout bounds direct calls to slow backends (speech synthesis and the like).
	DefaultLongCallTimeout = 180 * time.Second

	// TokenHeader carries the gateway token alongside the bearer authorization.
	TokenHeader = "x-miya-gateway-token"
)

// Transport performs one JSON request and returns the decoded response body.
// Implementations must not retry.
type Transport interface {
	Request(ctx context.Context, method, url string, body any, headers map[string]string, timeout time.Duration) (any, error)
}

// AuthHeaders returns the headers that authenticate against the gateway.
// It returns nil when token is empty.
func AuthHeaders(token string) map[string]string {
	if token == "" {
		return nil
	}
	return map[string]string{
		"Authorization": "Bearer " + token,
		TokenHeader:     token,
	}
}
