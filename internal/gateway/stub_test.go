package gateway

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/yourusername/openclaw-adapter/internal/client"
)

// call is one recorded transport request.
type call struct {
	Method  string
	URL     string
	Body    any
	Headers map[string]string
}

// stubTransport answers by URL path suffix. Unknown URLs fail like a refused connection.
type stubTransport struct {
	mu        sync.Mutex
	responses map[string]any
	calls     []call
}

func newStub(responses map[string]any) *stubTransport {
	return &stubTransport{responses: responses}
}

func (s *stubTransport) Request(ctx context.Context, method, url string, body any, headers map[string]string, timeout time.Duration) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call{Method: method, URL: url, Body: body, Headers: headers})

	path := strings.TrimPrefix(url, testBase)
	if i := strings.Index(path, "?"); i >= 0 {
		path = path[:i]
	}
	if resp, ok := s.responses[path]; ok {
		if err, isErr := resp.(error); isErr {
			return nil, err
		}
		return resp, nil
	}
	return nil, &client.Error{Method: method, URL: url, Message: "connection refused", Err: errors.New("dial tcp: connection refused")}
}

// count returns how many calls hit URLs starting with base+path.
func (s *stubTransport) count(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if strings.HasPrefix(c.URL, testBase+path) {
			n++
		}
	}
	return n
}

func (s *stubTransport) restCalls() []call {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []call
	for _, c := range s.calls {
		if !strings.HasSuffix(c.URL, "/rpc") && !strings.HasSuffix(c.URL, "/wsrpc") {
			out = append(out, c)
		}
	}
	return out
}

const testBase = "http://gw.test"

func newTestProxy(s *stubTransport) *Proxy {
	return NewProxy(s, NewResolver(testBase+"/"), "tok", time.Second)
}
