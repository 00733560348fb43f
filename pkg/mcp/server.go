// Package mcp exposes the component registry, tag completion and the
// auto-import edit as MCP tools over stdio.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/ngtags/pkg/completion"
	"github.com/gnana997/ngtags/pkg/importer"
	"github.com/gnana997/ngtags/pkg/indexer"
	"github.com/gnana997/ngtags/pkg/mcplog"
)

const serverName = "ngtags"

// Server wires the indexer service to an MCP server.
type Server struct {
	mcpServer *server.MCPServer
	service   *indexer.Service
	completer *completion.Provider
	importer  *importer.Importer
	calls     *mcplog.Logger // nil disables the tool-call log
	logger    *slog.Logger
}

// NewServer creates the MCP server. calls may be nil.
func NewServer(version string, svc *indexer.Service, imp *importer.Importer, calls *mcplog.Logger, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		service:   svc,
		completer: completion.NewProvider(svc.Registry(), logger),
		importer:  imp,
		calls:     calls,
		logger:    logger,
	}

	s.mcpServer = server.NewMCPServer(
		serverName,
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithToolHandlerMiddleware(s.loggingMiddleware()),
	)

	s.mcpServer.AddTools(
		server.ServerTool{Tool: listComponentsTool(), Handler: s.handleListComponents},
		server.ServerTool{Tool: getComponentTool(), Handler: s.handleGetComponent},
		server.ServerTool{Tool: completeTagsTool(), Handler: s.handleCompleteTags},
		server.ServerTool{Tool: importComponentTool(), Handler: s.handleImportComponent},
		server.ServerTool{Tool: rescanTool(), Handler: s.handleRescan},
	)

	return s
}

// MCPServer returns the underlying server, for transports other than stdio.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio serves on stdin/stdout until stdin closes or the process is
// signalled.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
