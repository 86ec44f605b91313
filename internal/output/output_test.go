package output

import (
	"bytes"
	"testing"

	"github.com/fatih/color"

	"github.com/yourusername/openclaw-adapter/internal/dispatch"
	"github.com/yourusername/openclaw-adapter/internal/gateway"
	"github.com/yourusername/openclaw-adapter/internal/models"
)

func init() {
	color.NoColor = true
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"much longer than ten", 10, "much lo..."},
		{"abcdef", 2, "ab"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestUpstreamColumnWidth(t *testing.T) {
	if got := upstreamColumnWidth(40); got != 12 {
		t.Errorf("narrow terminal: got %d, want 12", got)
	}
	if got := upstreamColumnWidth(120); got != 60 {
		t.Errorf("wide terminal: got %d, want 60", got)
	}
}

func TestPrintMethodsTable(t *testing.T) {
	var buf bytes.Buffer
	PrintMethodsTable(&buf, []dispatch.MethodInfo{
		{Name: "sessions.send", Operation: "session_send", Upstream: "sessions.send", Mutating: true},
		{Name: "health.ping", Operation: "health", Upstream: "local"},
	})

	out := buf.String()
	for _, want := range []string{"sessions.send", "health.ping", "yes", "local"} {
		if !bytes.Contains(buf.Bytes(), []byte(want)) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	if bytes.Index(buf.Bytes(), []byte("health.ping")) > bytes.Index(buf.Bytes(), []byte("sessions.send")) {
		t.Errorf("expected rows ordered by operation:\n%s", out)
	}
}

func TestPrintResponseSuccess(t *testing.T) {
	var buf bytes.Buffer
	err := PrintResponse(&buf, models.NewResult("a", map[string]any{"status": "ok"}))
	if err != nil {
		t.Fatalf("PrintResponse: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"status": "ok"`)) {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestPrintResponseTransportFailure(t *testing.T) {
	var buf bytes.Buffer
	resp := models.NewError("b", models.CodeGatewayUnavailable, "status: all 1 candidates failed", map[string]any{
		"operation": "status",
		"attempts": []gateway.Attempt{
			{URL: "http://gw.test/rpc", Protocol: gateway.ProtocolJSONRPC, Error: "connection refused"},
		},
	})
	if err := PrintResponse(&buf, resp); err != nil {
		t.Fatalf("PrintResponse: %v", err)
	}
	for _, want := range []string{"openclaw_gateway_unavailable", "http://gw.test/rpc", "connection refused"} {
		if !bytes.Contains(buf.Bytes(), []byte(want)) {
			t.Errorf("output missing %q:\n%s", want, buf.String())
		}
	}
}

func TestPrintResponseDetails(t *testing.T) {
	var buf bytes.Buffer
	resp := models.NewError("c", models.CodeInvalidParams, "invalid_sessions_send_args", map[string]any{
		"fields": []string{"text"},
	})
	if err := PrintResponse(&buf, resp); err != nil {
		t.Fatalf("PrintResponse: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("details:")) {
		t.Errorf("expected details block:\n%s", buf.String())
	}
}
