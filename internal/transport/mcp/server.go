// Package mcp exposes the query pipeline as Model Context Protocol tools
// so external LLM hosts can call the datasets directly.
package mcp

import (
	"context"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	queryuc "github.com/atricence/voxdata/internal/usecase/query"
	"github.com/atricence/voxdata/internal/version"
)

// Server is the MCP server for voxdata.
type Server struct {
	queries *queryuc.Service
	logger  *zap.Logger
	server  *mcp.Server
}

// NewServer creates an MCP server over the query service.
func NewServer(queries *queryuc.Service, logger *zap.Logger) *Server {
	impl := &mcp.Implementation{
		Name:    "voxdata",
		Version: version.Version,
	}

	s := &Server{
		queries: queries,
		logger:  logger,
		server:  mcp.NewServer(impl, nil),
	}
	s.registerTools()
	return s
}

// Run starts the MCP server over stdio.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP starts the MCP server over HTTP on the specified address.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		_ = httpServer.Shutdown(context.Background())
	}()

	err := httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
