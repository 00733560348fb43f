// Package parser owns the tree-sitter parsers used to edit component sources.
package parser

import (
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	ts "github.com/tree-sitter/go-tree-sitter"
	ts_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	ts_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/gnana997/ngtags/pkg/util"
)

// Manager hands out pooled tree-sitter parsers per grammar.
//
// Pools are created lazily on first use. Callers own every Tree returned by
// Parse and must Close it; the Manager itself must be closed once.
//
//	manager := parser.NewManager(logger)
//	defer manager.Close()
//
//	tree, err := manager.ParseFile(src, "src/app/foo.component.ts")
//	if err != nil {
//	    return err
//	}
//	defer tree.Close()
type Manager struct {
	pools    map[Language]*parserPool
	poolSize int
	mutex    sync.RWMutex
	logger   *slog.Logger

	parsesCalled int
}

// Stats reports parser usage.
type Stats struct {
	ParsersCreated int
	ParsesCalled   int
}

// NewManager creates a Manager whose pools are sized like the worker pool.
func NewManager(logger *slog.Logger) *Manager {
	return NewManagerWithPoolSize(logger, 0)
}

// NewManagerWithPoolSize creates a Manager with an explicit per-language pool
// size. Zero selects util.GetOptimalPoolSize.
func NewManagerWithPoolSize(logger *slog.Logger, poolSize int) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		pools:    make(map[Language]*parserPool),
		poolSize: util.GetOptimalPoolSizeWithOverride(poolSize),
		logger:   logger,
	}
}

// Parse parses source with the given grammar. Trees containing syntax errors
// are still returned; partial trees are enough for the import editor.
func (m *Manager) Parse(source []byte, lang Language) (*ts.Tree, error) {
	if lang == LanguageUnknown {
		return nil, fmt.Errorf("cannot parse unknown language")
	}

	m.mutex.Lock()
	m.parsesCalled++
	m.mutex.Unlock()

	pool, err := m.getOrCreatePool(lang)
	if err != nil {
		return nil, fmt.Errorf("failed to get pool for %s: %w", lang, err)
	}

	p, err := pool.acquire()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire parser: %w", err)
	}
	tree := p.Parse(source, nil)
	pool.release(p)

	if tree == nil {
		return nil, fmt.Errorf("parser returned nil tree")
	}
	if tree.RootNode().HasError() {
		m.logger.Debug("parse tree contains errors", "language", lang.String())
	}
	return tree, nil
}

// ParseFile detects the grammar from filePath and parses source.
func (m *Manager) ParseFile(source []byte, filePath string) (*ts.Tree, error) {
	lang := DetectLanguage(filePath)
	if lang == LanguageUnknown {
		return nil, fmt.Errorf("unsupported file extension: %s", filePath)
	}
	return m.Parse(source, lang)
}

// Close releases every pooled parser. The Manager cannot be used afterwards.
func (m *Manager) Close() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	closed := 0
	for _, pool := range m.pools {
		closed += pool.close()
	}
	m.pools = make(map[Language]*parserPool)

	m.logger.Debug("closed parser manager", "parsers_closed", closed, "parses_called", m.parsesCalled)
	return nil
}

// GetStats returns parser usage statistics.
func (m *Manager) GetStats() Stats {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	created := 0
	for _, pool := range m.pools {
		created += pool.createdCount()
	}
	return Stats{ParsersCreated: created, ParsesCalled: m.parsesCalled}
}

func (m *Manager) getOrCreatePool(lang Language) (*parserPool, error) {
	m.mutex.RLock()
	pool, ok := m.pools[lang]
	m.mutex.RUnlock()
	if ok {
		return pool, nil
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if pool, ok = m.pools[lang]; ok {
		return pool, nil
	}

	langPtr, err := languagePointer(lang)
	if err != nil {
		return nil, err
	}
	pool = newParserPool(lang, langPtr, m.poolSize, m.logger)
	m.pools[lang] = pool

	m.logger.Debug("created parser pool", "language", lang.String(), "max_size", m.poolSize)
	return pool, nil
}

func languagePointer(lang Language) (unsafe.Pointer, error) {
	switch lang {
	case LanguageTypeScript:
		return ts_typescript.LanguageTypescript(), nil
	case LanguageTSX:
		return ts_typescript.LanguageTSX(), nil
	case LanguageJavaScript:
		return ts_javascript.Language(), nil
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang.String())
	}
}
