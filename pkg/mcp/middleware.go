package mcp

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/ngtags/pkg/mcplog"
)

// loggingMiddleware debug-logs every tool call and, when a call log is
// configured, appends it as a JSONL entry. Log failures never affect the
// tool result.
func (s *Server) loggingMiddleware() server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			start := mcplog.Now()
			result, err := next(ctx, req)

			s.logger.Debug("tool call",
				"tool", req.Params.Name,
				"duration_ms", time.Since(start).Milliseconds(),
				"is_error", result != nil && result.IsError,
				"error", err)

			if werr := s.calls.Record(req.Params.Name, req.GetArguments(), start, result, err); werr != nil {
				s.logger.Warn("failed to write tool-call log", "path", s.calls.Path(), "error", werr)
			}
			return result, err
		}
	}
}
