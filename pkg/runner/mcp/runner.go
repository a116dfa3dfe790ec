package mcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"tableflip.dev/termwise/pkg/app"
	"tableflip.dev/termwise/pkg/course"
	"tableflip.dev/termwise/pkg/layout"
	termserver "tableflip.dev/termwise/pkg/server"
	"tableflip.dev/termwise/pkg/submit"
)

// Transport selects the mechanism used to expose the MCP server.
type Transport string

const (
	// TransportHTTP serves MCP via the streamable HTTP transport.
	TransportHTTP Transport = "http"
	// TransportStdio serves MCP over stdio.
	TransportStdio Transport = "stdio"
)

// ParseTransport accepts http or stdio in any case. Empty means http.
func ParseTransport(s string) (Transport, error) {
	switch t := Transport(strings.ToLower(strings.TrimSpace(s))); t {
	case "", TransportHTTP:
		return TransportHTTP, nil
	case TransportStdio:
		return t, nil
	default:
		return "", fmt.Errorf("unsupported transport %q (expected http or stdio)", s)
	}
}

const instructions = `Plan a university timetable. Preferences are kept per term (fall, winter):
up to 7 course codes, a buffer between classes, and per-weekday availability.
Edit them with the tools, call generate_schedule, then browse alternatives with
next_alternative/previous_alternative and read the grid with get_calendar.`

// Runner coordinates MCP server startup.
type Runner struct {
	State    *app.State
	Pipeline *submit.Pipeline
	Engine   *layout.Engine
	Labels   map[course.Term]string
	Logger   *zap.Logger
	Version  string

	Transport Transport
	// Addr and Path locate the HTTP endpoint.
	Addr string
	Path string
	// TLSCert and TLSKey switch the HTTP transport to HTTPS; both or neither.
	TLSCert string
	TLSKey  string
	// OnListening receives the endpoint URL once the listener is bound.
	OnListening func(url string)
}

// Do executes the runner.
func (r Runner) Do(ctx context.Context) error {
	if r.State == nil {
		return errors.New("mcp runner requires state")
	}
	version := r.Version
	if version == "" {
		version = "dev"
	}
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	srv := server.NewMCPServer(
		"termwise MCP",
		version,
		server.WithResourceCapabilities(false, false),
		server.WithToolCapabilities(false),
		server.WithInstructions(instructions),
		server.WithResourceRecovery(),
		server.WithRecovery(),
	)
	svc := NewService(r.State, r.Pipeline, r.Engine, r.Labels)
	registerResources(srv, svc)
	registerTools(srv, svc)

	switch t := r.Transport; t {
	case "", TransportHTTP:
		return r.serveHTTP(ctx, srv, logger)
	case TransportStdio:
		logger.Debug("serving mcp over stdio")
		return server.ServeStdio(srv)
	default:
		return fmt.Errorf("unknown MCP transport %q", t)
	}
}

// Router mounts the streamable HTTP handler at path behind the request id
// and access log middleware.
func Router(srv *server.MCPServer, path string, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), termserver.RequestID(), termserver.Logger(logger))
	router.Any(endpointPath(path), gin.WrapH(server.NewStreamableHTTPServer(srv)))
	return router
}

func (r Runner) serveHTTP(ctx context.Context, srv *server.MCPServer, logger *zap.Logger) error {
	if (r.TLSCert == "") != (r.TLSKey == "") {
		return errors.New("both http tls cert and key must be provided")
	}
	addr := r.Addr
	if addr == "" {
		addr = "127.0.0.1:8090"
	}
	path := endpointPath(r.Path)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	httpSrv := &http.Server{
		Handler:           Router(srv, path, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	url := ListenURL(addr, ln.Addr(), path, r.TLSCert != "")
	logger.Info("serving mcp over http", zap.String("url", url))
	if r.OnListening != nil {
		r.OnListening(url)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	if r.TLSCert != "" {
		err = httpSrv.ServeTLS(ln, r.TLSCert, r.TLSKey)
	} else {
		err = httpSrv.Serve(ln)
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func endpointPath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return "/mcp"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

// ListenURL describes the bound endpoint. Wildcard hosts are shown as the
// loopback address so the URL can be pasted into a client.
func ListenURL(requested string, bound net.Addr, path string, tls bool) string {
	scheme := "http"
	if tls {
		scheme = "https"
	}
	host, _, err := net.SplitHostPort(requested)
	if err != nil {
		host = ""
	}
	port := ""
	if tcp, ok := bound.(*net.TCPAddr); ok {
		port = strconv.Itoa(tcp.Port)
		if host == "" || host == "0.0.0.0" || host == "::" {
			host = "127.0.0.1"
			if tcp.IP != nil && !tcp.IP.IsUnspecified() {
				host = tcp.IP.String()
			}
		}
	} else if _, p, err := net.SplitHostPort(bound.String()); err == nil {
		port = p
	}
	if host == "" {
		host = "127.0.0.1"
	}
	return fmt.Sprintf("%s://%s%s", scheme, net.JoinHostPort(host, port), endpointPath(path))
}
