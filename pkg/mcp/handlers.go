package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gnana997/ngtags/pkg/completion"
	"github.com/gnana997/ngtags/pkg/component"
	"github.com/gnana997/ngtags/pkg/importer"
	"github.com/gnana997/ngtags/pkg/indexer"
)

// componentSummary is the list_components row.
type componentSummary struct {
	Name       string           `json:"name"`
	Selector   string           `json:"selector"`
	ImportPath string           `json:"import_path"`
	ImportName string           `json:"import_name"`
	Standalone bool             `json:"standalone"`
	Origin     component.Origin `json:"origin"`
}

// rescanSummary is the rescan result.
type rescanSummary struct {
	Scope    string             `json:"scope"`
	Local    int                `json:"local"`
	Packages int                `json:"packages"`
	Cache    indexer.CacheStats `json:"cache"`
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleListComponents(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	origin := req.GetString("origin", "all")
	keyword := req.GetString("keyword", "")

	out := make([]componentSummary, 0)
	for _, d := range s.service.Registry().Search(keyword) {
		if origin != "all" && string(d.Origin) != origin {
			continue
		}
		out = append(out, componentSummary{
			Name:       d.Name,
			Selector:   d.Selector(),
			ImportPath: d.ImportPath,
			ImportName: d.ImportName,
			Standalone: d.IsStandalone,
			Origin:     d.Origin,
		})
	}
	return jsonResult(out)
}

func (s *Server) handleGetComponent(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	selector, err := req.RequireString("selector")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	d, ok := s.service.Registry().BySelector(selector)
	if !ok {
		return mcp.NewToolResultError("component not found: " + selector), nil
	}
	return jsonResult(d)
}

func (s *Server) handleCompleteTags(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	line, err := req.RequireInt("line")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	character, err := req.RequireInt("character")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	doc := completion.Document{
		Path:       req.GetString("file", ""),
		LanguageID: req.GetString("language", ""),
		Text:       text,
	}
	items := s.completer.Complete(doc, completion.Position{Line: line, Character: character})
	if items == nil {
		items = []completion.Item{}
	}
	return jsonResult(items)
}

func (s *Server) handleImportComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	selector, err := req.RequireString("selector")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	file, err := req.RequireString("file")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	d, ok := s.service.Registry().BySelector(selector)
	if !ok {
		return mcp.NewToolResultError("component not found: " + selector), nil
	}

	edit, err := s.importer.Import(ctx, d, file)
	if errors.Is(err, importer.ErrNoHost) {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("import failed: %v", err)), nil
	}
	return jsonResult(edit)
}

func (s *Server) handleRescan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	scope := req.GetString("scope", "all")

	var err error
	switch scope {
	case "all":
		err = s.service.Reload(ctx)
	case "local":
		err = s.service.RescanLocal(ctx)
	case "packages":
		err = s.service.RescanPackages(ctx, s.service.Packages())
	default:
		return mcp.NewToolResultError("unknown scope: " + scope), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("rescan failed: %v", err)), nil
	}

	registry := s.service.Registry()
	return jsonResult(rescanSummary{
		Scope:    scope,
		Local:    len(registry.Local()),
		Packages: len(registry.Packages()),
		Cache:    s.service.CacheStats(),
	})
}
