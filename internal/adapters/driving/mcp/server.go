package mcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/trials-mcp/internal/core/domain"
	"github.com/custodia-labs/trials-mcp/internal/logger"
)

// Version is the MCP server version.
const Version = "0.1.0"

// Path is where the streamable HTTP transport is mounted.
const Path = "/mcp"

// Server is the MCP server for ClinicalTrials.gov tools.
type Server struct {
	ports    *Ports
	server   *mcp.Server
	tools    []domain.ToolDescriptor
	sessions *sessionLocks
	orders   *callOrders
}

// NewServer creates a new MCP server publishing every tool of ports.Tools.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	tools, err := ports.Tools.Tools(context.Background())
	if err != nil {
		return nil, fmt.Errorf("listing tools: %w", err)
	}

	impl := &mcp.Implementation{
		Name:    "clinical-trials",
		Version: Version,
	}

	s := &Server{
		ports:    ports,
		server:   mcp.NewServer(impl, nil),
		tools:    tools,
		sessions: newSessionLocks(),
		orders:   newCallOrders(),
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Run starts the MCP server over stdio.
// It blocks until the context is cancelled or the peer disconnects.
func (s *Server) Run(ctx context.Context) error {
	logger.Info("mcp: serving %d tools over stdio", len(s.tools))
	return s.ServeTransport(ctx, &mcp.StdioTransport{})
}

// ServeTransport serves a single session over transport until the peer
// disconnects or ctx is cancelled. Tool calls run in the order they are read.
func (s *Server) ServeTransport(ctx context.Context, transport mcp.Transport) error {
	err := s.server.Run(ctx, s.ordered(transport))
	if err != nil && ctx.Err() == nil {
		logger.Error("mcp: session ended: %v", err)
	}
	return err
}

// Connect starts a session over transport without blocking.
func (s *Server) Connect(ctx context.Context, transport mcp.Transport) (*mcp.ServerSession, error) {
	return s.server.Connect(ctx, s.ordered(transport), nil)
}

func (s *Server) ordered(transport mcp.Transport) mcp.Transport {
	return &orderedTransport{inner: transport, orders: s.orders}
}

// Handler returns the streamable HTTP handler mounted at Path.
func (s *Server) Handler() http.Handler {
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	mux := http.NewServeMux()
	mux.Handle(Path, s.orderCalls(handler))
	return mux
}

// RunHTTP starts the MCP server over HTTP on addr. onReady, when set, is
// called with the bound address once the listener is open.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) RunHTTP(ctx context.Context, addr string, onReady func(addr string)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	logger.Info("mcp: serving %d tools on http://%s%s", len(s.tools), ln.Addr(), Path)
	if onReady != nil {
		onReady(ln.Addr().String())
	}

	err = httpServer.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
