package mcp

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"tableflip.dev/termwise/pkg/app"
)

func TestParseTransport(t *testing.T) {
	tests := []struct {
		in      string
		want    Transport
		wantErr bool
	}{
		{in: "", want: TransportHTTP},
		{in: "HTTP", want: TransportHTTP},
		{in: " stdio ", want: TransportStdio},
		{in: "grpc", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseTransport(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseTransport(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestListenURL(t *testing.T) {
	bound := &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 4242}
	tests := []struct {
		requested string
		path      string
		tls       bool
		want      string
	}{
		{requested: "127.0.0.1:0", path: "/mcp", want: "http://127.0.0.1:4242/mcp"},
		{requested: "0.0.0.0:4242", path: "rpc", want: "http://127.0.0.1:4242/rpc"},
		{requested: "localhost:4242", path: "", tls: true, want: "https://localhost:4242/mcp"},
		{requested: "[::1]:4242", path: "/mcp", want: "http://[::1]:4242/mcp"},
	}
	for _, tt := range tests {
		if got := ListenURL(tt.requested, bound, tt.path, tt.tls); got != tt.want {
			t.Errorf("ListenURL(%q) = %q, want %q", tt.requested, got, tt.want)
		}
	}
}

func TestRouterServesInitialize(t *testing.T) {
	srv := server.NewMCPServer("termwise MCP", "test", server.WithToolCapabilities(false))
	registerTools(srv, NewService(app.New(), nil, nil, nil))

	body := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"1"}}}`
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	rec := httptest.NewRecorder()
	Router(srv, "mcp", zap.NewNop()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected a request id header")
	}
	if !strings.Contains(rec.Body.String(), "termwise MCP") {
		t.Fatalf("expected server info in %s", rec.Body.String())
	}
}

func TestServeHTTPStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	urls := make(chan string, 1)
	errc := make(chan error, 1)
	go func() {
		errc <- Runner{
			State:       app.New(),
			Addr:        "127.0.0.1:0",
			OnListening: func(url string) { urls <- url },
		}.Do(ctx)
	}()

	select {
	case url := <-urls:
		if !strings.HasPrefix(url, "http://127.0.0.1:") || !strings.HasSuffix(url, "/mcp") {
			t.Fatalf("unexpected url %q", url)
		}
	case err := <-errc:
		t.Fatalf("runner exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatalf("runner did not start listening")
	}

	cancel()
	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("Do: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("runner did not stop")
	}
}

func TestServeHTTPRequiresCertAndKey(t *testing.T) {
	err := Runner{State: app.New(), Addr: "127.0.0.1:0", TLSCert: "cert.pem"}.Do(context.Background())
	if err == nil || !strings.Contains(err.Error(), "cert and key") {
		t.Fatalf("unexpected error: %v", err)
	}
}
