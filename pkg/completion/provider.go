// Package completion answers tag completion requests from the component
// registry.
package completion

import (
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gnana997/ngtags/pkg/component"
)

// TriggerCharacter is the character that opens a completion request.
const TriggerCharacter = "<"

// Follow-up command attached to every item.
const (
	CommandImport      = "command.componentImport"
	CommandImportTitle = "Imports Component"
)

// Language identifiers accepted in Document.LanguageID.
const (
	LanguageHTML       = "html"
	LanguageTypeScript = "typescript"
)

// classMarker marks the start of the class body in a component file. Only the
// text above it (the decorator and its inline template) accepts tags.
const classMarker = "export class"

// Document is the text of an open file.
type Document struct {
	// Path is the absolute file path.
	Path string

	// LanguageID is "html" or "typescript". When empty it is derived from the
	// Path extension.
	LanguageID string

	Text string
}

// Position is a zero-based line and character offset. Character counts runes.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Command is run by the host after an item is accepted.
type Command struct {
	ID        string                  `json:"command"`
	Title     string                  `json:"title"`
	Arguments []*component.Descriptor `json:"arguments"`
}

// Item is one completion candidate. InsertText uses snippet syntax with $1 as
// the cursor stop between the tags.
type Item struct {
	Label      string   `json:"label"`
	InsertText string   `json:"insert_text"`
	Command    *Command `json:"command,omitempty"`
}

// Source provides the descriptor collections to complete from. *indexer.Registry
// satisfies it.
type Source interface {
	Packages() []*component.Descriptor
	Local() []*component.Descriptor
}

// Provider answers completion requests.
type Provider struct {
	source Source
	logger *slog.Logger
}

// NewProvider creates a Provider reading from source on every request, so it
// always sees the most recently published collections.
func NewProvider(source Source, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{source: source, logger: logger}
}

// Complete returns one item per registered component. Package components come
// first, then local ones, each group ordered by selector.
//
// Nothing is offered in a TypeScript document once the cursor is below the
// class declaration, and nothing for languages other than HTML and TypeScript.
func (p *Provider) Complete(doc Document, pos Position) []Item {
	lang := languageOf(doc)
	if lang != LanguageHTML && lang != LanguageTypeScript {
		return nil
	}

	lines := strings.Split(doc.Text, "\n")
	line, prev := lineAt(lines, pos)

	if lang == LanguageTypeScript {
		if strings.Contains(textBefore(lines, pos.Line, prev), classMarker) {
			return nil
		}
	}

	prefix := TriggerCharacter
	if prev > 0 && prev <= len(line) && string(line[prev-1]) == TriggerCharacter {
		prefix = ""
	}

	items := make([]Item, 0, len(p.source.Packages())+len(p.source.Local()))
	items = appendItems(items, p.source.Packages(), prefix)
	items = appendItems(items, p.source.Local(), prefix)

	p.logger.Debug("completion", "file", doc.Path, "line", pos.Line, "character", pos.Character, "items", len(items))
	return items
}

func appendItems(items []Item, descriptors []*component.Descriptor, prefix string) []Item {
	group := make([]Item, 0, len(descriptors))
	for _, d := range descriptors {
		if item, ok := NewItem(d, prefix); ok {
			group = append(group, item)
		}
	}
	sort.SliceStable(group, func(i, j int) bool {
		return group[i].Command.Arguments[0].Selector() < group[j].Command.Arguments[0].Selector()
	})
	return append(items, group...)
}

// NewItem renders the completion item for d. It reports false when d has no
// usable selector.
func NewItem(d *component.Descriptor, prefix string) (Item, bool) {
	selector := d.Selector()
	if selector == "" {
		return Item{}, false
	}
	return Item{
		Label:      selector + " (" + d.ImportPath + ")",
		InsertText: prefix + selector + ">$1</" + selector + ">",
		Command: &Command{
			ID:        CommandImport,
			Title:     CommandImportTitle,
			Arguments: []*component.Descriptor{d},
		},
	}, true
}

func languageOf(doc Document) string {
	if doc.LanguageID != "" {
		return strings.ToLower(doc.LanguageID)
	}
	switch strings.ToLower(filepath.Ext(doc.Path)) {
	case ".html", ".htm":
		return LanguageHTML
	case ".ts":
		return LanguageTypeScript
	default:
		return ""
	}
}

// lineAt returns the runes of the cursor line and the cursor offset clamped to
// that line.
func lineAt(lines []string, pos Position) ([]rune, int) {
	if pos.Line < 0 || pos.Line >= len(lines) {
		return nil, 0
	}
	line := []rune(strings.TrimSuffix(lines[pos.Line], "\r"))
	ch := pos.Character
	if ch < 0 {
		ch = 0
	}
	if ch > len(line) {
		ch = len(line)
	}
	return line, ch
}

// textBefore returns the document text up to, but excluding, the character
// just before the cursor.
func textBefore(lines []string, lineNo, ch int) string {
	if lineNo >= len(lines) {
		lineNo = len(lines) - 1
	}
	if lineNo < 0 {
		return ""
	}

	var b strings.Builder
	for i := 0; i < lineNo; i++ {
		b.WriteString(lines[i])
		b.WriteByte('\n')
	}
	line := []rune(lines[lineNo])
	if end := ch - 1; end > 0 {
		if end > len(line) {
			end = len(line)
		}
		b.WriteString(string(line[:end]))
	}
	return b.String()
}
