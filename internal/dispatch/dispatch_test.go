package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/openclaw-adapter/internal/capability"
	"github.com/yourusername/openclaw-adapter/internal/client"
	"github.com/yourusername/openclaw-adapter/internal/gateway"
	"github.com/yourusername/openclaw-adapter/internal/models"
)

// countingTransport fails every request and records how many it saw.
type countingTransport struct {
	mu    sync.Mutex
	calls int
}

func (c *countingTransport) Request(ctx context.Context, method, url string, body any, headers map[string]string, timeout time.Duration) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return nil, &client.Error{Method: method, URL: url, Message: "connection refused"}
}

// fakeGateway records which operation ran and returns canned values.
type fakeGateway struct {
	called []string
	result any
	err    error
}

func (f *fakeGateway) record(name string) (any, error) {
	f.called = append(f.called, name)
	return f.result, f.err
}

func (f *fakeGateway) Status(context.Context) (any, error) { return f.record("status") }
func (f *fakeGateway) SessionStatus(context.Context, gateway.Params) (any, error) {
	return f.record("sessions")
}
func (f *fakeGateway) SessionSend(context.Context, gateway.Params) (any, error) {
	return f.record("session_send")
}
func (f *fakeGateway) Pairing(context.Context, gateway.Params) (any, error) {
	return f.record("pairing")
}
func (f *fakeGateway) SkillSync(context.Context, gateway.Params) (any, error) {
	return f.record("skill_sync")
}
func (f *fakeGateway) RoutingMap(context.Context, gateway.Params) (any, error) {
	return f.record("routing_map")
}
func (f *fakeGateway) AuditReplay(context.Context, gateway.Params) (any, error) {
	return f.record("audit_replay")
}

type staticProvider []string

func (s staticProvider) Name() string { return "openclaw" }
func (s staticProvider) Capabilities(context.Context) ([]string, error) {
	return []string(s), nil
}

func req(method string, params map[string]any) *models.Request {
	return models.NewRequest("r1", method, params)
}

func TestHealthPingPerformsNoIO(t *testing.T) {
	transport := &countingTransport{}
	proxy := gateway.NewProxy(transport, gateway.NewResolver("http://gw.test"), "", time.Second)
	d := New(proxy, nil)
	d.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("X", 3600)) }

	resp := d.Dispatch(context.Background(), req("health.ping", nil))

	require.True(t, resp.OK)
	assert.Equal(t, "r1", resp.ID)
	assert.Equal(t, map[string]any{
		"adapter": "openclaw",
		"status":  "ok",
		"ts":      "2026-03-01T11:00:00Z",
	}, resp.Result)
	assert.Equal(t, 0, transport.calls)
}

func TestSynonymsRouteToSameOperation(t *testing.T) {
	groups := map[string][]string{
		"status":       {"gateway.status", "gateway.status.get", "status"},
		"sessions":     {"session.status", "sessions.status", "sessions.get", "sessions.list"},
		"session_send": {"session.send", "sessions.send"},
		"pairing":      {"pairing.list", "pairing.query", "pair.list", "nodes.pair.list"},
		"skill_sync":   {"skills.sync", "miya.sync"},
		"routing_map":  {"routing.map", "routing.stats", "routing.stats.get"},
		"audit_replay": {"audit.replay", "audit.ledger", "audit.ledger.list"},
	}

	for op, names := range groups {
		for _, name := range names {
			t.Run(name, func(t *testing.T) {
				gw := &fakeGateway{result: map[string]any{"ok": 1}}
				resp := New(gw, nil).Dispatch(context.Background(), req(name, nil))
				require.True(t, resp.OK)
				assert.Equal(t, []string{op}, gw.called)
			})
		}
	}
}

func TestUnknownMethod(t *testing.T) {
	gw := &fakeGateway{}
	params := map[string]any{"x": 1.0}
	resp := New(gw, nil).Dispatch(context.Background(), req("nope.method", params))

	require.False(t, resp.OK)
	assert.Equal(t, models.CodeMethodNotImplemented, resp.Error.Code)
	assert.Equal(t, "unsupported_method:nope.method", resp.Error.Message)
	assert.Equal(t, map[string]any{"params": params}, resp.Error.Details)
	assert.Empty(t, gw.called)
}

func TestEmptyMethod(t *testing.T) {
	resp := New(&fakeGateway{}, nil).Dispatch(context.Background(), req("", nil))
	require.False(t, resp.OK)
	assert.Equal(t, models.CodeInvalidMethod, resp.Error.Code)
	assert.Equal(t, "method_required", resp.Error.Message)
}

func TestSkillsList(t *testing.T) {
	d := New(&fakeGateway{}, staticProvider{"sync", "_hidden", "alpha", "sync"})
	resp := d.Dispatch(context.Background(), req("skills.list", nil))

	require.True(t, resp.OK)
	assert.Equal(t, map[string]any{
		"provider": "openclaw",
		"skills":   []string{"alpha", "sync"},
	}, resp.Result)
}

func TestSkillsListNotInstalled(t *testing.T) {
	d := New(&fakeGateway{}, capability.NotInstalled{Reason: "no manifest"})
	resp := d.Dispatch(context.Background(), req("skills.list", nil))

	require.False(t, resp.OK)
	assert.Equal(t, models.CodeOpenClawUnavailable, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "not installed")
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    string
		message string
	}{
		{
			name:    "validation",
			err:     &gateway.ValidationError{Op: gateway.OpSessionSend, Reason: "invalid_sessions_send_args", Fields: []string{"text"}},
			code:    models.CodeInvalidParams,
			message: "invalid_sessions_send_args",
		},
		{
			name:    "transport",
			err:     &gateway.TransportError{Op: gateway.OpStatus, Attempts: []gateway.Attempt{{URL: "http://gw.test/rpc", Protocol: gateway.ProtocolJSONRPC, Error: "refused"}}},
			code:    models.CodeGatewayUnavailable,
			message: "",
		},
		{
			name:    "upstream",
			err:     &gateway.UpstreamError{Method: "gateway.status.get", Code: "forbidden", Message: "nope"},
			code:    models.CodeGatewayUnavailable,
			message: "forbidden:nope",
		},
		{
			name:    "other",
			err:     errors.New("boom"),
			code:    models.CodeUnhandledException,
			message: "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(&fakeGateway{err: tt.err}, nil)
			resp := d.Dispatch(context.Background(), req("status", nil))
			require.False(t, resp.OK)
			assert.Equal(t, tt.code, resp.Error.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, resp.Error.Message)
			}
		})
	}
}

func TestUpstreamErrorDetails(t *testing.T) {
	d := New(&fakeGateway{err: &gateway.UpstreamError{Method: "sessions.send", Code: "busy", Message: "later"}}, nil)
	resp := d.Dispatch(context.Background(), req("sessions.send", nil))

	require.False(t, resp.OK)
	details, ok := resp.Error.Details.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "busy", details["upstreamCode"])
	assert.Equal(t, "later", details["upstreamMessage"])
	assert.NotContains(t, details, "data")
}

func TestValidationThroughProxyMakesNoCalls(t *testing.T) {
	transport := &countingTransport{}
	proxy := gateway.NewProxy(transport, gateway.NewResolver("http://gw.test"), "", time.Second)

	resp := New(proxy, nil).Dispatch(context.Background(), req("sessions.send", map[string]any{"sessionID": "s1"}))

	require.False(t, resp.OK)
	assert.Equal(t, models.CodeInvalidParams, resp.Error.Code)
	assert.Equal(t, 0, transport.calls)
}

func TestGatewayDownThroughProxy(t *testing.T) {
	transport := &countingTransport{}
	proxy := gateway.NewProxy(transport, gateway.NewResolver("http://gw.test"), "", time.Second)

	resp := New(proxy, nil).Dispatch(context.Background(), req("gateway.status", nil))

	require.False(t, resp.OK)
	assert.Equal(t, models.CodeGatewayUnavailable, resp.Error.Code)
	// three JSON-RPC paths then three REST paths
	assert.Equal(t, 6, transport.calls)
}

func TestMethodsSorted(t *testing.T) {
	methods := New(&fakeGateway{}, nil).Methods()
	require.NotEmpty(t, methods)
	for i := 1; i < len(methods); i++ {
		assert.Less(t, methods[i-1].Name, methods[i].Name)
	}
	assert.Equal(t, "audit.ledger", methods[0].Name)
}

func TestUnconfiguredGatewayKeepsLocalMethods(t *testing.T) {
	d := New(Unavailable{Err: errors.New(`logging: invalid level "verbose"`)}, staticProvider{"alpha"})
	ctx := context.Background()

	ping := d.Dispatch(ctx, req("health.ping", nil))
	require.True(t, ping.OK)
	assert.Equal(t, "ok", ping.Result.(map[string]any)["status"])

	skills := d.Dispatch(ctx, req("skills.list", nil))
	require.True(t, skills.OK)

	unknown := d.Dispatch(ctx, req("no.such", nil))
	require.False(t, unknown.OK)
	assert.Equal(t, models.CodeMethodNotImplemented, unknown.Error.Code)

	for _, method := range []string{"gateway.status", "sessions.send", "audit.replay"} {
		resp := d.Dispatch(ctx, req(method, nil))
		require.False(t, resp.OK, method)
		assert.Equal(t, models.CodeGatewayUnavailable, resp.Error.Code, method)
		assert.Equal(t, `invalid_config:logging: invalid level "verbose"`, resp.Error.Message, method)
	}
}

func TestNilGateway(t *testing.T) {
	var d *Dispatcher
	require.NotPanics(t, func() { d = New(nil, nil) })

	assert.True(t, d.Dispatch(context.Background(), req("health.ping", nil)).OK)

	resp := d.Dispatch(context.Background(), req("routing.map", nil))
	require.False(t, resp.OK)
	assert.Equal(t, models.CodeGatewayUnavailable, resp.Error.Code)
	assert.Equal(t, "invalid_config:gateway not configured", resp.Error.Message)
}
