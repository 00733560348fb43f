package mcp

import "github.com/mark3labs/mcp-go/mcp"

// Tool names.
const (
	ToolListComponents  = "list_components"
	ToolGetComponent    = "get_component"
	ToolCompleteTags    = "complete_tags"
	ToolImportComponent = "import_component"
	ToolRescan          = "rescan"
)

func listComponentsTool() mcp.Tool {
	return mcp.NewTool(ToolListComponents,
		mcp.WithDescription("List indexed Angular components. Returns name, tag selector, import path and origin for each."),
		mcp.WithString("origin",
			mcp.Description("Restrict to workspace components (local) or package components (package)"),
			mcp.Enum("all", "local", "package"),
		),
		mcp.WithString("keyword",
			mcp.Description("Case-insensitive match against class name, selectors and import path"),
		),
	)
}

func getComponentTool() mcp.Tool {
	return mcp.NewTool(ToolGetComponent,
		mcp.WithDescription("Full descriptor of one component: inputs, outputs, exportAs, content slots, import path and source file."),
		mcp.WithString("selector",
			mcp.Required(),
			mcp.Description("Tag selector, e.g. 'app-user-card'"),
		),
	)
}

func completeTagsTool() mcp.Tool {
	return mcp.NewTool(ToolCompleteTags,
		mcp.WithDescription("Tag completions at a cursor position in an HTML template or a component's inline template."),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Full document text"),
		),
		mcp.WithNumber("line",
			mcp.Required(),
			mcp.Description("Zero-based line of the cursor"),
		),
		mcp.WithNumber("character",
			mcp.Required(),
			mcp.Description("Zero-based character offset of the cursor within the line"),
		),
		mcp.WithString("language",
			mcp.Description("Document language; inferred from file when omitted"),
			mcp.Enum("html", "typescript"),
		),
		mcp.WithString("file",
			mcp.Description("Document path, used to infer the language"),
		),
	)
}

func importComponentTool() mcp.Tool {
	return mcp.NewTool(ToolImportComponent,
		mcp.WithDescription("Add the import statement for a component and register it in the host's imports array. The host is the component owning file (its module when not standalone)."),
		mcp.WithString("selector",
			mcp.Required(),
			mcp.Description("Tag selector of the component to import"),
		),
		mcp.WithString("file",
			mcp.Required(),
			mcp.Description("Absolute path of the file being edited (.html template or .ts component)"),
		),
	)
}

func rescanTool() mcp.Tool {
	return mcp.NewTool(ToolRescan,
		mcp.WithDescription("Rebuild the component registry now instead of waiting for file changes."),
		mcp.WithString("scope",
			mcp.Description("Which collection to rebuild (default: all)"),
			mcp.Enum("all", "local", "packages"),
		),
	)
}
