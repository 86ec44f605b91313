package gateway

import (
	"net/url"
	"strings"

	"github.com/yourusername/openclaw-adapter/internal/client"
)

// Protocol identifies how a candidate is spoken to.
type Protocol string

const (
	ProtocolJSONRPC Protocol = "jsonrpc"
	ProtocolREST    Protocol = "rest"
)

// Operation is a logical gateway operation.
type Operation string

const (
	OpStatus      Operation = "status"
	OpSessions    Operation = "sessions"
	OpSessionSend Operation = "session_send"
	OpPairing     Operation = "pairing"
	OpSkillSync   Operation = "skill_sync"
	OpRoutingMap  Operation = "routing_map"
	OpAuditReplay Operation = "audit_replay"
)

// Candidate is one URL+protocol combination to try.
type Candidate struct {
	URL      string
	Protocol Protocol
}

// rpcPaths are the conventional JSON-RPC mount points, most likely first.
var rpcPaths = []string{"/rpc", "/wsrpc", "/api/rpc"}

// restPaths lists REST fallbacks per operation. Operations without an entry are
// JSON-RPC only.
var restPaths = map[Operation][]string{
	OpStatus:      {"/api/status", "/status", "/health"},
	OpSessions:    {"/api/sessions", "/sessions"},
	OpSessionSend: {"/api/sessions/send", "/sessions/send"},
	OpPairing:     {"/api/nodes/pairs", "/nodes/pairs"},
	OpSkillSync:   {"/api/skills/sync", "/skills/sync"},
}

// Resolver turns logical operations into ordered candidate URLs. It does no I/O.
type Resolver struct {
	baseURL string
}

// NewResolver creates a resolver for baseURL, stripping trailing slashes.
func NewResolver(baseURL string) *Resolver {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = client.DefaultBaseURL
	}
	return &Resolver{baseURL: baseURL}
}

// BaseURL returns the normalized base URL
func (r *Resolver) BaseURL() string {
	return r.baseURL
}

// RPC returns the JSON-RPC candidates in preference order.
func (r *Resolver) RPC() []Candidate {
	out := make([]Candidate, len(rpcPaths))
	for i, p := range rpcPaths {
		out[i] = Candidate{URL: r.baseURL + p, Protocol: ProtocolJSONRPC}
	}
	return out
}

// REST returns the REST candidates for op with query appended (keys sorted).
// It returns nil for JSON-RPC only operations.
func (r *Resolver) REST(op Operation, query url.Values) []Candidate {
	paths := restPaths[op]
	if len(paths) == 0 {
		return nil
	}
	suffix := ""
	if len(query) > 0 {
		suffix = "?" + query.Encode()
	}
	out := make([]Candidate, len(paths))
	for i, p := range paths {
		out[i] = Candidate{URL: r.baseURL + p + suffix, Protocol: ProtocolREST}
	}
	return out
}

// CandidatesFor returns every candidate for op: JSON-RPC first, then REST.
func (r *Resolver) CandidatesFor(op Operation, query url.Values) []Candidate {
	return append(r.RPC(), r.REST(op, query)...)
}

// HasREST reports whether op has a REST fallback.
func HasREST(op Operation) bool {
	return len(restPaths[op]) > 0
}
