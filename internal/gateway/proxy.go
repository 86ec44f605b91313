package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/yourusername/openclaw-adapter/internal/client"
	"github.com/yourusername/openclaw-adapter/internal/logging"
	"github.com/yourusername/openclaw-adapter/internal/tracing"
)

// rpcIDPrefix prefixes the JSON-RPC id of every outgoing call.
const rpcIDPrefix = "miya-"

// Proxy implements the logical gateway operations on top of a Transport.
// It holds no state between calls.
type Proxy struct {
	transport client.Transport
	resolver  *Resolver
	headers   map[string]string
	timeout   time.Duration
}

// NewProxy creates a proxy. token may be empty; timeout applies per candidate.
func NewProxy(t client.Transport, r *Resolver, token string, timeout time.Duration) *Proxy {
	if timeout <= 0 {
		timeout = client.DefaultQueryTimeout
	}
	return &Proxy{
		transport: t,
		resolver:  r,
		headers:   client.AuthHeaders(token),
		timeout:   timeout,
	}
}

// Resolver returns the proxy's endpoint resolver
func (p *Proxy) Resolver() *Resolver {
	return p.resolver
}

// rpcEnvelope is the JSON-RPC 2.0 request body
type rpcEnvelope struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      string         `json:"id"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params"`
}

// restCall describes the REST fallback of an operation.
type restCall struct {
	method string // GET or POST
	query  url.Values
	body   any
}

// call tries JSON-RPC first and falls back to REST only when every JSON-RPC
// candidate failed at the transport level. rest may be nil for JSON-RPC only
// operations.
func (p *Proxy) call(ctx context.Context, op Operation, method string, params map[string]any, rest *restCall) (any, error) {
	result, err := p.callRPC(ctx, op, method, params)
	if err == nil {
		return result, nil
	}
	return p.fallback(ctx, op, method, err, rest)
}

// fallback moves on to the REST candidates when err is a JSON-RPC transport
// failure. Any other error is returned unchanged.
func (p *Proxy) fallback(ctx context.Context, op Operation, method string, err error, rest *restCall) (any, error) {
	var rpcErr *TransportError
	if !errors.As(err, &rpcErr) || rest == nil || !HasREST(op) {
		return nil, err
	}

	logging.Debug().
		Str("op", string(op)).
		Str("method", method).
		Int("attempts", len(rpcErr.Attempts)).
		Msg("json-rpc candidates exhausted, falling back to rest")

	result, err := p.callREST(ctx, op, rest)
	if err == nil {
		return result, nil
	}

	var restErr *TransportError
	if errors.As(err, &restErr) {
		return nil, &TransportError{
			Op:       op,
			Attempts: append(append([]Attempt{}, rpcErr.Attempts...), restErr.Attempts...),
		}
	}
	return nil, err
}

// callRPC posts the envelope to each JSON-RPC candidate in order. The first
// candidate that returns parsed JSON decides the outcome, including an error
// envelope, which is returned as *UpstreamError without trying further.
func (p *Proxy) callRPC(ctx context.Context, op Operation, method string, params map[string]any) (any, error) {
	if params == nil {
		params = map[string]any{}
	}
	body := rpcEnvelope{
		JSONRPC: "2.0",
		ID:      rpcIDPrefix + method,
		Method:  method,
		Params:  params,
	}

	var attempts []Attempt
	for i, c := range p.resolver.RPC() {
		payload, err := p.attempt(ctx, op, i, c, http.MethodPost, body)
		if err != nil {
			attempts = append(attempts, Attempt{URL: c.URL, Protocol: c.Protocol, Error: err.Error()})
			continue
		}

		result, uerr := Normalize(method, payload)
		if uerr != nil {
			logging.Info().
				Str("op", string(op)).
				Str("url", c.URL).
				Str("code", uerr.Code).
				Str("message", uerr.Message).
				Msg("gateway returned upstream error")
			return nil, uerr
		}
		return result, nil
	}

	return nil, &TransportError{Op: op, Attempts: attempts}
}

// callREST tries each REST candidate in order; any parsed JSON is the result.
func (p *Proxy) callREST(ctx context.Context, op Operation, rest *restCall) (any, error) {
	var body any
	if rest.method != http.MethodGet {
		body = rest.body
	}

	var attempts []Attempt
	for i, c := range p.resolver.REST(op, rest.query) {
		payload, err := p.attempt(ctx, op, i, c, rest.method, body)
		if err != nil {
			attempts = append(attempts, Attempt{URL: c.URL, Protocol: c.Protocol, Error: err.Error()})
			continue
		}
		return payload, nil
	}

	return nil, &TransportError{Op: op, Attempts: attempts}
}

// attempt performs one request against one candidate, logging and tracing it.
func (p *Proxy) attempt(ctx context.Context, op Operation, index int, c Candidate, httpMethod string, body any) (any, error) {
	ctx, span := tracing.StartSpan(ctx, "gateway.attempt", trace.WithAttributes(
		tracing.StringAttr("gateway.op", string(op)),
		tracing.StringAttr("candidate.url", c.URL),
		tracing.StringAttr("candidate.protocol", string(c.Protocol)),
		tracing.IntAttr("candidate.index", index),
	))
	defer span.End()

	start := time.Now()
	payload, err := p.transport.Request(ctx, httpMethod, c.URL, body, p.headers, p.timeout)
	elapsed := time.Since(start)

	if err != nil {
		tracing.RecordError(span, err)
		logging.Debug().
			Str("op", string(op)).
			Str("url", c.URL).
			Str("protocol", string(c.Protocol)).
			Dur("elapsed", elapsed).
			Err(err).
			Msg("candidate failed")
		return nil, err
	}

	tracing.SetOK(span)
	logging.Debug().
		Str("op", string(op)).
		Str("url", c.URL).
		Str("protocol", string(c.Protocol)).
		Dur("elapsed", elapsed).
		Msg("candidate answered")
	return payload, nil
}
