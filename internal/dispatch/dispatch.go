package dispatch

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/yourusername/openclaw-adapter/internal/capability"
	"github.com/yourusername/openclaw-adapter/internal/gateway"
	"github.com/yourusername/openclaw-adapter/internal/logging"
	"github.com/yourusername/openclaw-adapter/internal/models"
)

// Gateway is the set of remote operations the dispatcher routes to.
// *gateway.Proxy implements it.
type Gateway interface {
	Status(ctx context.Context) (any, error)
	SessionStatus(ctx context.Context, params gateway.Params) (any, error)
	SessionSend(ctx context.Context, params gateway.Params) (any, error)
	Pairing(ctx context.Context, params gateway.Params) (any, error)
	SkillSync(ctx context.Context, params gateway.Params) (any, error)
	RoutingMap(ctx context.Context, params gateway.Params) (any, error)
	AuditReplay(ctx context.Context, params gateway.Params) (any, error)
}

type handlerFunc func(ctx context.Context, params gateway.Params) (any, error)

// MethodInfo describes one accepted method name.
type MethodInfo struct {
	Name      string `json:"name"`
	Operation string `json:"operation"`
	Upstream  string `json:"upstream"` // JSON-RPC method, "local" for in-process methods
	Mutating  bool   `json:"mutating"`
}

type route struct {
	info    MethodInfo
	handler handlerFunc
}

// Dispatcher maps method names, including synonyms, to operations and wraps
// every outcome in a response envelope.
type Dispatcher struct {
	gw     Gateway
	caps   capability.Provider
	routes map[string]route
	now    func() time.Time
}

// New creates a dispatcher. A nil gw makes every remote operation fail with
// openclaw_gateway_unavailable. caps may be nil, in which case skills.list
// reports the module as unavailable.
func New(gw Gateway, caps capability.Provider) *Dispatcher {
	if gw == nil {
		gw = Unavailable{}
	}
	if caps == nil {
		caps = capability.NotInstalled{}
	}
	d := &Dispatcher{
		gw:     gw,
		caps:   caps,
		routes: make(map[string]route),
		now:    time.Now,
	}
	d.registerDefaults()
	return d
}

func (d *Dispatcher) register(names []string, operation, upstream string, mutating bool, h handlerFunc) {
	for _, name := range names {
		d.routes[name] = route{
			info:    MethodInfo{Name: name, Operation: operation, Upstream: upstream, Mutating: mutating},
			handler: h,
		}
	}
}

func (d *Dispatcher) registerDefaults() {
	d.register([]string{"health.ping"}, "health", "local", false, d.healthPing)
	d.register([]string{"skills.list"}, "capabilities", "local", false, d.skillsList)

	d.register([]string{"gateway.status", "gateway.status.get", "status"},
		string(gateway.OpStatus), "gateway.status.get", false,
		func(ctx context.Context, _ gateway.Params) (any, error) { return d.gw.Status(ctx) })
	d.register([]string{"session.status", "sessions.status", "sessions.get", "sessions.list"},
		string(gateway.OpSessions), "sessions.get|sessions.list", false,
		func(ctx context.Context, p gateway.Params) (any, error) { return d.gw.SessionStatus(ctx, p) })
	d.register([]string{"session.send", "sessions.send"},
		string(gateway.OpSessionSend), "sessions.send", true,
		func(ctx context.Context, p gateway.Params) (any, error) { return d.gw.SessionSend(ctx, p) })
	d.register([]string{"pairing.list", "pairing.query", "pair.list", "nodes.pair.list"},
		string(gateway.OpPairing), "nodes.pair.list", false,
		func(ctx context.Context, p gateway.Params) (any, error) { return d.gw.Pairing(ctx, p) })
	d.register([]string{"skills.sync", "miya.sync"},
		string(gateway.OpSkillSync), "miya.sync.*", true,
		func(ctx context.Context, p gateway.Params) (any, error) { return d.gw.SkillSync(ctx, p) })
	d.register([]string{"routing.map", "routing.stats", "routing.stats.get"},
		string(gateway.OpRoutingMap), "routing.stats.get", false,
		func(ctx context.Context, p gateway.Params) (any, error) { return d.gw.RoutingMap(ctx, p) })
	d.register([]string{"audit.replay", "audit.ledger", "audit.ledger.list"},
		string(gateway.OpAuditReplay), "audit.ledger.list", false,
		func(ctx context.Context, p gateway.Params) (any, error) { return d.gw.AuditReplay(ctx, p) })
}

// Methods lists every accepted method name, sorted.
func (d *Dispatcher) Methods() []MethodInfo {
	out := make([]MethodInfo, 0, len(d.routes))
	for _, r := range d.routes {
		out = append(out, r.info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Dispatch evaluates req exactly once and returns its envelope.
func (d *Dispatcher) Dispatch(ctx context.Context, req *models.Request) *models.Response {
	if req.Method == "" {
		return models.NewError(req.ID, models.CodeInvalidMethod, "method_required", nil)
	}

	params := req.Params
	if params == nil {
		params = map[string]any{}
	}

	r, ok := d.routes[req.Method]
	if !ok {
		logging.Warn().Str("id", req.ID).Str("method", req.Method).Msg("method not implemented")
		return models.NewError(req.ID, models.CodeMethodNotImplemented,
			"unsupported_method:"+req.Method, map[string]any{"params": params})
	}

	start := time.Now()
	result, err := r.handler(ctx, gateway.Params(params))
	event := logging.Info()
	if err != nil {
		event = logging.Warn().Err(err)
	}
	event.Str("id", req.ID).
		Str("method", req.Method).
		Str("operation", r.info.Operation).
		Bool("ok", err == nil).
		Dur("elapsed", time.Since(start)).
		Msg("dispatched")

	if err != nil {
		return errorResponse(req.ID, err)
	}
	return models.NewResult(req.ID, result)
}

func (d *Dispatcher) healthPing(context.Context, gateway.Params) (any, error) {
	return map[string]any{
		"adapter": "openclaw",
		"status":  "ok",
		"ts":      d.now().UTC().Format(time.RFC3339Nano),
	}, nil
}

func (d *Dispatcher) skillsList(ctx context.Context, _ gateway.Params) (any, error) {
	names, err := capability.List(ctx, d.caps)
	if err != nil {
		return nil, &capabilityError{err: err}
	}
	return map[string]any{
		"provider": d.caps.Name(),
		"skills":   names,
	}, nil
}

// capabilityError marks failures of the local introspection module.
type capabilityError struct {
	err error
}

func (e *capabilityError) Error() string { return e.err.Error() }
func (e *capabilityError) Unwrap() error { return e.err }

// errorResponse converts an operation error into an envelope.
func errorResponse(id string, err error) *models.Response {
	var (
		verr *gateway.ValidationError
		terr *gateway.TransportError
		uerr *gateway.UpstreamError
		cerr *capabilityError
		ferr *ConfigError
	)

	switch {
	case errors.As(err, &verr):
		return models.NewError(id, models.CodeInvalidParams, verr.Reason, map[string]any{
			"operation": string(verr.Op),
			"fields":    verr.Fields,
		})
	case errors.As(err, &ferr):
		return models.NewError(id, models.CodeGatewayUnavailable, ferr.Error(), nil)
	case errors.As(err, &uerr):
		details := map[string]any{
			"method":          uerr.Method,
			"upstreamCode":    uerr.Code,
			"upstreamMessage": uerr.Message,
		}
		if uerr.Data != nil {
			details["data"] = uerr.Data
		}
		return models.NewError(id, models.CodeGatewayUnavailable, uerr.Error(), details)
	case errors.As(err, &terr):
		return models.NewError(id, models.CodeGatewayUnavailable, terr.Error(), map[string]any{
			"operation": string(terr.Op),
			"attempts":  terr.Attempts,
		})
	case errors.As(err, &cerr):
		return models.NewError(id, models.CodeOpenClawUnavailable, cerr.Error(), nil)
	default:
		return models.NewError(id, models.CodeUnhandledException, err.Error(), nil)
	}
}
