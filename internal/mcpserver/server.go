package mcpserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/mark3labs/mcp-go/server"

	"github.com/mark3labs/taskdeck/internal/logger"
	"github.com/mark3labs/taskdeck/internal/mutation"
	"github.com/mark3labs/taskdeck/internal/session"
	"github.com/mark3labs/taskdeck/internal/taskcache"
)

// Server exposes the board as MCP tools. Reads go through the task cache
// and writes through the mutation pipeline, so tool calls behave exactly
// like board interactions.
type Server struct {
	session  *session.Cache
	cache    *taskcache.Collection
	pipeline *mutation.Pipeline

	mcpServer  *server.MCPServer
	stdServer  *http.Server
	listenAddr string
	mu         sync.Mutex
}

// New creates a server with all tools registered.
func New(sess *session.Cache, cache *taskcache.Collection, pipeline *mutation.Pipeline) *Server {
	s := &Server{
		session:  sess,
		cache:    cache,
		pipeline: pipeline,
		mcpServer: server.NewMCPServer(
			"taskdeck",
			"1.0.0",
			server.WithToolCapabilities(true),
		),
	}
	s.registerTools()
	return s
}

// ServeStdio serves MCP over stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// Start serves streamable HTTP on addr ("127.0.0.1:0" picks a port) and
// returns once the listener is bound.
func (s *Server) Start(addr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stdServer != nil {
		return fmt.Errorf("server already started")
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	s.listenAddr = listener.Addr().String()

	mux := http.NewServeMux()
	mux.Handle("/mcp", server.NewStreamableHTTPServer(s.mcpServer, server.WithStateLess(true)))
	s.stdServer = &http.Server{Handler: mux}

	stdServer := s.stdServer
	go func() {
		if err := stdServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error("MCP server error: %v", err)
		}
	}()

	logger.Debug("MCP server ready on %s", s.listenAddr)
	return nil
}

// Stop shuts down the HTTP listener.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stdServer == nil {
		return nil
	}
	if err := s.stdServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}
	s.stdServer = nil
	return nil
}

// URL returns the streamable HTTP endpoint.
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("http://%s/mcp", s.listenAddr)
}
