package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/cast"
)

const (
	defaultSendSource = "miya"
	defaultSessionID  = "main"

	routingLimitDefault = 100
	routingLimitMax     = 1000
	auditLimitDefault   = 50
	auditLimitMax       = 500
)

// Status queries the gateway status snapshot.
func (p *Proxy) Status(ctx context.Context) (any, error) {
	return p.call(ctx, OpStatus, "gateway.status.get", nil, &restCall{method: http.MethodGet})
}

// SessionStatus returns one session when sessionID is set, otherwise the session list.
func (p *Proxy) SessionStatus(ctx context.Context, params Params) (any, error) {
	sessionID := params.String("sessionID")

	method := "sessions.list"
	rpcParams := map[string]any{}
	query := url.Values{}
	if sessionID != "" {
		method = "sessions.get"
		rpcParams["sessionID"] = sessionID
		query.Set("sessionID", sessionID)
	}

	return p.call(ctx, OpSessions, method, rpcParams, &restCall{method: http.MethodGet, query: query})
}

// SessionSend routes a message into a session. It mutates remote state and is
// attempted at most once per candidate.
func (p *Proxy) SessionSend(ctx context.Context, params Params) (any, error) {
	sessionID := params.String("sessionID")
	text := params.String("text")

	var missing []string
	if sessionID == "" {
		missing = append(missing, "sessionID")
	}
	if text == "" {
		missing = append(missing, "text")
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Op: OpSessionSend, Reason: "invalid_sessions_send_args", Fields: missing}
	}

	source := params.String("source")
	if source == "" {
		source = defaultSendSource
	}

	body := map[string]any{
		"sessionID": sessionID,
		"text":      text,
		"source":    source,
	}
	for _, key := range []string{"routingSessionID", "agent"} {
		if v := params.String(key); v != "" {
			body[key] = v
		}
	}

	return p.call(ctx, OpSessionSend, "sessions.send", body, &restCall{method: http.MethodPost, body: body})
}

// pairStatuses are the status filters the gateway understands.
var pairStatuses = map[string]bool{"pending": true, "approved": true, "rejected": true}

// Pairing lists node pairing requests. With pairID set, a JSON-RPC list result is
// filtered to exact id matches; the REST fallback forwards pairID instead.
func (p *Proxy) Pairing(ctx context.Context, params Params) (any, error) {
	pairID := params.String("pairID")
	status := strings.ToLower(params.String("status"))

	rpcParams := map[string]any{}
	query := url.Values{}
	if pairStatuses[status] {
		rpcParams["status"] = status
		query.Set("status", status)
	}
	if pairID != "" {
		query.Set("pairID", pairID)
	}

	result, err := p.callRPC(ctx, OpPairing, "nodes.pair.list", rpcParams)
	if err == nil {
		if pairID == "" {
			return result, nil
		}
		items, ok := result.([]any)
		if !ok {
			return result, nil
		}
		return filterByField(items, "id", pairID), nil
	}

	return p.fallback(ctx, OpPairing, "nodes.pair.list", err, &restCall{method: http.MethodGet, query: query})
}

// SkillAction is one skill-sync action.
type SkillAction string

const (
	SkillList   SkillAction = "list"
	SkillDiff   SkillAction = "diff"
	SkillApply  SkillAction = "apply"
	SkillVerify SkillAction = "verify"
)

var skillMethods = map[SkillAction]string{
	SkillList:   "miya.sync.list",
	SkillDiff:   "miya.sync.diff",
	SkillApply:  "miya.sync.apply",
	SkillVerify: "miya.sync.diff",
}

// SkillSync lists, diffs, verifies or applies a skill source pack.
func (p *Proxy) SkillSync(ctx context.Context, params Params) (any, error) {
	action := SkillAction(strings.ToLower(params.String("action")))
	if action == "" {
		action = SkillList
	}
	method, ok := skillMethods[action]
	if !ok {
		return nil, &ValidationError{Op: OpSkillSync, Reason: "invalid_skill_sync_action:" + string(action), Fields: []string{"action"}}
	}

	rpcParams := map[string]any{}
	if action != SkillList {
		packID := params.FirstString("sourcePackID", "source", "target")
		if packID == "" {
			return nil, &ValidationError{Op: OpSkillSync, Reason: "source_pack_id_required", Fields: []string{"sourcePackID"}}
		}
		rpcParams["sourcePackID"] = packID
	}

	switch action {
	case SkillVerify:
		rpcParams["verify"] = true
	case SkillApply:
		if rev := params.String("revision"); rev != "" {
			rpcParams["revision"] = rev
		}
		sessionID := params.String("sessionID")
		if sessionID == "" {
			sessionID = defaultSessionID
		}
		rpcParams["sessionID"] = sessionID
		if hash := params.String("policyHash"); hash != "" {
			rpcParams["policyHash"] = hash
		}
		rpcParams["dryRun"] = params.Bool("dryRun", false)
	}

	rest := &restCall{method: http.MethodGet, query: url.Values{"action": {string(action)}}}
	if action != SkillList {
		body := map[string]any{"action": string(action)}
		for k, v := range rpcParams {
			body[k] = v
		}
		rest = &restCall{method: http.MethodPost, body: body}
	}

	return p.call(ctx, OpSkillSync, method, rpcParams, rest)
}

// RoutingMap returns {mode, recent, cost} from the routing stats. JSON-RPC only.
func (p *Proxy) RoutingMap(ctx context.Context, params Params) (any, error) {
	limit := params.Limit("limit", routingLimitDefault, 1, routingLimitMax)

	result, err := p.call(ctx, OpRoutingMap, "routing.stats.get", map[string]any{"limit": limit}, nil)
	if err != nil {
		return nil, err
	}

	stats, _ := result.(map[string]any)
	return map[string]any{
		"mode":   stats["mode"],
		"recent": stats["recent"],
		"cost":   stats["cost"],
	}, nil
}

// AuditReplay lists the action ledger. With replayToken set and an items list in
// the result, items are filtered to exact token matches. JSON-RPC only.
func (p *Proxy) AuditReplay(ctx context.Context, params Params) (any, error) {
	limit := params.Limit("limit", auditLimitDefault, 1, auditLimitMax)
	token := params.String("replayToken")

	result, err := p.call(ctx, OpAuditReplay, "audit.ledger.list", map[string]any{"limit": limit}, nil)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return result, nil
	}

	obj, ok := result.(map[string]any)
	if !ok {
		return result, nil
	}
	items, ok := obj["items"].([]any)
	if !ok {
		return result, nil
	}

	matched := filterByField(items, "replayToken", token)
	return map[string]any{
		"items":       matched,
		"matched":     len(matched),
		"replayToken": token,
	}, nil
}

// filterByField keeps object items whose field equals want exactly. Never nil.
func filterByField(items []any, field, want string) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		v, ok := obj[field]
		if !ok || v == nil {
			continue
		}
		if s, err := cast.ToStringE(v); err == nil && s == want {
			out = append(out, item)
		}
	}
	return out
}
