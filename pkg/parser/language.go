package parser

import (
	"path/filepath"
	"strings"
)

// Language is a grammar the parser pool can load.
type Language int

const (
	// LanguageTypeScript covers .ts, .mts and .cts sources.
	LanguageTypeScript Language = iota
	// LanguageTSX covers .tsx sources.
	LanguageTSX
	// LanguageJavaScript covers .js, .mjs and .cjs sources.
	LanguageJavaScript
	// LanguageUnknown is returned for anything else.
	LanguageUnknown
)

// String returns the string representation of the language.
func (l Language) String() string {
	switch l {
	case LanguageTypeScript:
		return "typescript"
	case LanguageTSX:
		return "tsx"
	case LanguageJavaScript:
		return "javascript"
	default:
		return "unknown"
	}
}

// DetectLanguage picks the grammar for filePath by extension.
func DetectLanguage(filePath string) Language {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".ts", ".mts", ".cts":
		return LanguageTypeScript
	case ".tsx":
		return LanguageTSX
	case ".js", ".mjs", ".cjs", ".jsx":
		return LanguageJavaScript
	default:
		return LanguageUnknown
	}
}
