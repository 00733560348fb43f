package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/ngtags/pkg/discovery"
	"github.com/gnana997/ngtags/pkg/importer"
	"github.com/gnana997/ngtags/pkg/indexer"
	"github.com/gnana997/ngtags/pkg/mcplog"
	"github.com/gnana997/ngtags/pkg/parser"
	"github.com/gnana997/ngtags/pkg/util"
)

// --- fixtures ---

const (
	userCard = `import { Component } from '@angular/core';

@Component({
  selector: 'app-user-card',
  standalone: true,
  imports: [],
  templateUrl: './user-card.component.html',
})
export class UserCardComponent {}
`

	badge = `@Component({
  selector: 'app-badge',
  standalone: true,
})
export class BadgeComponent {}
`

	buttonDeclaration = `export declare class ButtonComponent {
    static ɵcmp: i0.ɵɵComponentDeclaration<ButtonComponent, "acme-button", never, { "label": "label"; }, {}, never, never, true, never>;
}
`
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	full := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	return full
}

func testServer(t *testing.T, calls *mcplog.Logger) (*Server, string) {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "src/app/user-card/user-card.component.ts", userCard)
	writeFile(t, root, "src/app/user-card/user-card.component.html", "<div></div>\n")
	writeFile(t, root, "src/app/badge/badge.component.ts", badge)
	writeFile(t, root, "node_modules/@acme/button/index.d.ts", buttonDeclaration)

	logger := util.NewDiscardLogger()
	svc, err := indexer.NewService(indexer.ServiceConfig{
		Scanner: indexer.ScannerConfig{
			Root:    root,
			Local:   discovery.DefaultLocalConfig(),
			Workers: 2,
		},
		Packages:    []string{"@acme/*"},
		QuietWindow: time.Hour,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	require.NoError(t, svc.Reload(context.Background()))

	parsers := parser.NewManagerWithPoolSize(logger, 1)
	t.Cleanup(func() { parsers.Close() })

	imp := importer.New(root, svc.Registry(), parsers, logger)
	return NewServer("test", svc, imp, calls, logger), root
}

func callTool(t *testing.T, s *Server, req mcp.CallToolRequest) *mcp.CallToolResult {
	t.Helper()
	var handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

	switch req.Params.Name {
	case ToolListComponents:
		handler = s.handleListComponents
	case ToolGetComponent:
		handler = s.handleGetComponent
	case ToolCompleteTags:
		handler = s.handleCompleteTags
	case ToolImportComponent:
		handler = s.handleImportComponent
	case ToolRescan:
		handler = s.handleRescan
	default:
		t.Fatalf("unknown tool: %s", req.Params.Name)
	}

	result, err := s.loggingMiddleware()(handler)(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func makeRequest(toolName string, args map[string]any) mcp.CallToolRequest {
	var arguments any
	if args != nil {
		arguments = args
	}
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      toolName,
			Arguments: arguments,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	textContent, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])
	return textContent.Text
}

// --- list_components ---

func TestHandleListComponents_All(t *testing.T) {
	s, _ := testServer(t, nil)
	result := callTool(t, s, makeRequest(ToolListComponents, nil))
	assert.False(t, result.IsError)

	var comps []map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &comps))
	require.Len(t, comps, 3)
	assert.Equal(t, "acme-button", comps[0]["selector"], "packages come first")
	assert.Equal(t, "package", comps[0]["origin"])
	assert.Equal(t, "app-badge", comps[1]["selector"])
	assert.Equal(t, "app-user-card", comps[2]["selector"])
}

func TestHandleListComponents_ByOrigin(t *testing.T) {
	s, _ := testServer(t, nil)
	result := callTool(t, s, makeRequest(ToolListComponents, map[string]any{"origin": "local"}))

	var comps []map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &comps))
	assert.Len(t, comps, 2)
	for _, c := range comps {
		assert.Equal(t, "local", c["origin"])
	}
}

func TestHandleListComponents_ByKeyword(t *testing.T) {
	s, _ := testServer(t, nil)
	result := callTool(t, s, makeRequest(ToolListComponents, map[string]any{"keyword": "USER"}))

	var comps []map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &comps))
	require.Len(t, comps, 1)
	assert.Equal(t, "UserCardComponent", comps[0]["name"])
}

func TestHandleListComponents_NoMatch(t *testing.T) {
	s, _ := testServer(t, nil)
	result := callTool(t, s, makeRequest(ToolListComponents, map[string]any{"keyword": "nothing"}))
	assert.Equal(t, "[]", resultText(t, result))
}

// --- get_component ---

func TestHandleGetComponent(t *testing.T) {
	s, _ := testServer(t, nil)
	result := callTool(t, s, makeRequest(ToolGetComponent, map[string]any{"selector": "acme-button"}))
	assert.False(t, result.IsError)

	var comp map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &comp))
	assert.Equal(t, "ButtonComponent", comp["name"])
	assert.Equal(t, "@acme/button", comp["import_path"])
	assert.Equal(t, true, comp["standalone"])
	assert.Contains(t, comp, "inputs")
}

func TestHandleGetComponent_NotFound(t *testing.T) {
	s, _ := testServer(t, nil)
	result := callTool(t, s, makeRequest(ToolGetComponent, map[string]any{"selector": "app-missing"}))
	assert.True(t, result.IsError)
}

func TestHandleGetComponent_MissingSelector(t *testing.T) {
	s, _ := testServer(t, nil)
	result := callTool(t, s, makeRequest(ToolGetComponent, nil))
	assert.True(t, result.IsError)
}

// --- complete_tags ---

func TestHandleCompleteTags(t *testing.T) {
	s, _ := testServer(t, nil)
	result := callTool(t, s, makeRequest(ToolCompleteTags, map[string]any{
		"text":      "<div>\n  <\n</div>",
		"line":      float64(1),
		"character": float64(3),
		"file":      "/ws/src/app/x.component.html",
	}))
	assert.False(t, result.IsError)

	var items []map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &items))
	require.Len(t, items, 3)
	assert.Equal(t, "acme-button (@acme/button)", items[0]["label"])
	assert.Equal(t, "acme-button>$1</acme-button>", items[0]["insert_text"])
}

func TestHandleCompleteTags_UnsupportedLanguage(t *testing.T) {
	s, _ := testServer(t, nil)
	result := callTool(t, s, makeRequest(ToolCompleteTags, map[string]any{
		"text":      "<",
		"line":      float64(0),
		"character": float64(1),
		"file":      "styles.scss",
	}))
	assert.False(t, result.IsError)
	assert.Equal(t, "[]", resultText(t, result))
}

func TestHandleCompleteTags_MissingPosition(t *testing.T) {
	s, _ := testServer(t, nil)
	result := callTool(t, s, makeRequest(ToolCompleteTags, map[string]any{"text": "<"}))
	assert.True(t, result.IsError)
}

// --- import_component ---

func TestHandleImportComponent(t *testing.T) {
	s, root := testServer(t, nil)
	template := filepath.Join(root, "src/app/user-card/user-card.component.html")

	result := callTool(t, s, makeRequest(ToolImportComponent, map[string]any{
		"selector": "app-badge",
		"file":     template,
	}))
	require.False(t, result.IsError, resultText(t, result))

	var edit map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &edit))
	assert.Equal(t, true, edit["import_added"])
	assert.Equal(t, true, edit["array_updated"])
	assert.Equal(t, "ast", edit["method"])

	data, err := os.ReadFile(filepath.Join(root, "src/app/user-card/user-card.component.ts"))
	require.NoError(t, err)
	content := string(data)
	assert.True(t, strings.HasPrefix(content, `import { BadgeComponent } from "../badge/badge.component";`))
	assert.Contains(t, content, "imports: [BadgeComponent],")
}

func TestHandleImportComponent_NoHost(t *testing.T) {
	s, root := testServer(t, nil)
	orphan := writeFile(t, root, "src/orphan.html", "<")

	result := callTool(t, s, makeRequest(ToolImportComponent, map[string]any{
		"selector": "acme-button",
		"file":     orphan,
	}))
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "no host component")
}

func TestHandleImportComponent_UnknownSelector(t *testing.T) {
	s, root := testServer(t, nil)
	result := callTool(t, s, makeRequest(ToolImportComponent, map[string]any{
		"selector": "app-missing",
		"file":     filepath.Join(root, "src/app/badge/badge.component.ts"),
	}))
	assert.True(t, result.IsError)
}

// --- rescan ---

func TestHandleRescan(t *testing.T) {
	s, root := testServer(t, nil)
	writeFile(t, root, "src/app/alert/alert.component.ts",
		"@Component({\n  selector: 'app-alert',\n  standalone: true,\n})\nexport class AlertComponent {}\n")

	result := callTool(t, s, makeRequest(ToolRescan, map[string]any{"scope": "local"}))
	require.False(t, result.IsError)

	var summary map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &summary))
	assert.Equal(t, "local", summary["scope"])
	assert.Equal(t, float64(3), summary["local"])
	assert.Equal(t, float64(1), summary["packages"])

	result = callTool(t, s, makeRequest(ToolRescan, nil))
	require.False(t, result.IsError)
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &summary))
	assert.Equal(t, "all", summary["scope"])
}

func TestHandleRescan_UnknownScope(t *testing.T) {
	s, _ := testServer(t, nil)
	result := callTool(t, s, makeRequest(ToolRescan, map[string]any{"scope": "everything"}))
	assert.True(t, result.IsError)
}

// --- middleware ---

func TestLoggingMiddleware_WritesCallLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calls.jsonl")
	calls, err := mcplog.Open(path)
	require.NoError(t, err)

	s, _ := testServer(t, calls)
	callTool(t, s, makeRequest(ToolGetComponent, map[string]any{"selector": "app-missing"}))
	callTool(t, s, makeRequest(ToolCompleteTags, map[string]any{
		"text":      strings.Repeat("<p></p>\n", 40),
		"line":      float64(0),
		"character": float64(1),
		"language":  "html",
	}))
	require.NoError(t, calls.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var first, second mcplog.Entry
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))

	assert.Equal(t, ToolGetComponent, first.Tool)
	assert.True(t, first.IsError)
	assert.Equal(t, "app-missing", first.Params["selector"])

	assert.Equal(t, ToolCompleteTags, second.Tool)
	assert.False(t, second.IsError)
	assert.NotContains(t, second.Params, "text")
	assert.Contains(t, second.Params, "text_len")
}

func TestNewServer_RegistersTools(t *testing.T) {
	s, _ := testServer(t, nil)
	resp := s.MCPServer().HandleMessage(context.Background(),
		json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	data, err := json.Marshal(resp)
	require.NoError(t, err)
	for _, name := range []string{ToolListComponents, ToolGetComponent, ToolCompleteTags, ToolImportComponent, ToolRescan} {
		assert.Contains(t, string(data), `"name":"`+name+`"`)
	}
}
