// Package mcp exposes the engine to Model Context Protocol clients.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/lifelog/pkg/app"
)

// Transport selects how the MCP server is reached.
type Transport string

const (
	TransportHTTP  Transport = "http"
	TransportStdio Transport = "stdio"
)

const (
	DefaultAddr = "127.0.0.1:37779"
	DefaultPath = "/mcp"
)

// ParseTransport accepts "http" or "stdio", case-insensitively. Empty
// means http.
func ParseTransport(v string) (Transport, error) {
	switch t := Transport(strings.ToLower(strings.TrimSpace(v))); t {
	case "", TransportHTTP:
		return TransportHTTP, nil
	case TransportStdio:
		return TransportStdio, nil
	default:
		return "", fmt.Errorf("unsupported transport %q (expected http or stdio)", v)
	}
}

// Runner serves one Service over one transport.
type Runner struct {
	Service *app.Service
	Version string

	Transport Transport
	Addr      string
	Path      string
	// Listening is called once the HTTP listener is bound.
	Listening func(endpoint string)

	// Stdin and Stdout default to the process streams.
	Stdin  io.Reader
	Stdout io.Writer
}

// NewServer builds the MCP server with every lifelog tool and resource.
func NewServer(svc *app.Service, version string) *server.MCPServer {
	if version == "" {
		version = "dev"
	}
	srv := server.NewMCPServer(
		"lifelog",
		version,
		server.WithResourceCapabilities(false, false),
		server.WithToolCapabilities(false),
		server.WithInstructions("Read and change a life log: notes in eight categories, archives of past notes, and deadline alerts."),
		server.WithResourceRecovery(),
		server.WithRecovery(),
	)

	t := &tools{svc: svc, now: time.Now}
	registerTools(srv, t)
	registerResources(srv, t)
	return srv
}

// Do serves until ctx is done or the transport ends.
func (r Runner) Do(ctx context.Context) error {
	if r.Service == nil {
		return errors.New("mcp runner requires a service")
	}
	srv := NewServer(r.Service, r.Version)

	switch r.Transport {
	case "", TransportHTTP:
		return r.serveHTTP(ctx, srv)
	case TransportStdio:
		in, out := r.Stdin, r.Stdout
		if in == nil {
			in = os.Stdin
		}
		if out == nil {
			out = os.Stdout
		}
		return server.NewStdioServer(srv).Listen(ctx, in, out)
	default:
		return fmt.Errorf("unknown MCP transport %q", r.Transport)
	}
}

// Handler mounts the streamable HTTP transport at path on a chi router.
func Handler(srv *server.MCPServer, path string) http.Handler {
	if path == "" {
		path = DefaultPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Handle(path, server.NewStreamableHTTPServer(srv))
	return router
}

func (r Runner) serveHTTP(ctx context.Context, srv *server.MCPServer) error {
	addr := r.Addr
	if addr == "" {
		addr = DefaultAddr
	}
	path := r.Path
	if path == "" {
		path = DefaultPath
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	if r.Listening != nil {
		r.Listening(fmt.Sprintf("http://%s%s", ln.Addr(), path))
	}

	httpSrv := &http.Server{Handler: Handler(srv, path)}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	if err := httpSrv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
