// Package mcpserver provides the MCP (Model Context Protocol) server that
// exposes the vault's notes as resources and note operations as tools.
package mcpserver

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/vaultmcp/internal/noteservice"
)

// Server identity reported during initialization.
const (
	ServerName    = "obsidian-mcp"
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with the vault tools and resources.
type Server struct {
	mcp     *server.MCPServer
	router  *Router
	catalog *catalog
	logger  *slog.Logger
}

// New creates a new MCP server with all vault tools registered.
func New(notes *noteservice.Service, logger *slog.Logger) *Server {
	s := &Server{
		router: NewRouter(notes),
		logger: logger,
	}

	hooks := &server.Hooks{}
	hooks.AddBeforeListResources(func(ctx context.Context, _ any, _ *mcp.ListResourcesRequest) {
		if err := s.catalog.Sync(ctx); err != nil {
			logger.Warn("catalog: sync before list failed", slog.String("error", err.Error()))
		}
	})

	s.mcp = server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, true),
		server.WithRecovery(),
		server.WithHooks(hooks),
	)
	s.catalog = newCatalog(s.router, s.mcp, logger)

	for _, tool := range s.router.Tools() {
		s.mcp.AddTool(tool, s.callTool)
	}

	// Notes created after the last resources/list are still readable by URI.
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(ResourceScheme+"{+path}", "Vault note",
			mcp.WithTemplateDescription("Markdown note addressed by its path relative to the vault root."),
			mcp.WithTemplateMIMEType(NoteMIMEType),
		),
		s.readResource,
	)

	return s
}

// SyncResources refreshes the registered note resources from disk. Clients
// are notified through resources/list_changed when the set changes.
func (s *Server) SyncResources(ctx context.Context) error {
	return s.catalog.Sync(ctx)
}

// ServeStdio serves MCP over the given reader and writer until ctx is done
// or the input is closed.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))
	return stdio.Listen(ctx, in, out)
}

// HTTPHandler returns a Streamable HTTP handler for the server.
func (s *Server) HTTPHandler() http.Handler {
	return server.NewStreamableHTTPServer(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// callTool runs a tool through the router. Failures are reported to the
// client as error results instead of protocol errors.
func (s *Server) callTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.router.CallTool(ctx, req.Params.Name, req.GetArguments())
	if err != nil {
		s.logger.Warn("tool call failed",
			slog.String("tool", req.Params.Name),
			slog.String("error", err.Error()))
		return mcp.NewToolResultError(err.Error()), nil
	}
	return res, nil
}

func (s *Server) readResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	contents, err := s.router.ReadResource(ctx, req.Params.URI)
	if err != nil {
		s.logger.Warn("resource read failed",
			slog.String("uri", req.Params.URI),
			slog.String("error", err.Error()))
		return nil, err
	}
	return contents, nil
}
