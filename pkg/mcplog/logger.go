// Package mcplog writes one JSON line per MCP tool call so that editor
// integrations can be audited after the fact.
package mcplog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// maxParamLen is the longest string argument recorded verbatim. Document
// text passed to completion tools is far longer and is logged as a length.
const maxParamLen = 80

// Entry is one line of the tool-call log.
type Entry struct {
	Time          string         `json:"time"`
	Tool          string         `json:"tool"`
	Params        map[string]any `json:"params"`
	DurationMs    int64          `json:"duration_ms"`
	ResponseBytes int            `json:"response_bytes"`

	// IsError mirrors CallToolResult.IsError: the tool ran but refused the
	// request.
	IsError bool `json:"is_error"`

	// Error is set when the handler itself failed.
	Error *string `json:"error"`
}

// Logger appends entries to a file. It is safe for concurrent use.
type Logger struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
	path string
}

// Open opens path for appending, creating it and its parent directories.
// An empty path yields a nil Logger, which discards everything.
func Open(path string) (*Logger, error) {
	if path == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("mcplog: create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("mcplog: open log file: %w", err)
	}
	return &Logger{file: f, enc: json.NewEncoder(f), path: path}, nil
}

// Path returns the log file location, or "" for a nil Logger.
func (l *Logger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Write appends e as a single line.
func (l *Logger) Write(e Entry) error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enc.Encode(e)
}

// Record builds an entry for a finished call and writes it.
func (l *Logger) Record(tool string, args map[string]any, start time.Time, result *mcp.CallToolResult, callErr error) error {
	if l == nil {
		return nil
	}
	e := Entry{
		Time:          start.UTC().Format(time.RFC3339),
		Tool:          tool,
		Params:        Redact(args),
		DurationMs:    Now().Sub(start).Milliseconds(),
		ResponseBytes: ResponseBytes(result),
		IsError:       result != nil && result.IsError,
	}
	if callErr != nil {
		msg := callErr.Error()
		e.Error = &msg
	}
	return l.Write(e)
}

// Close closes the log file.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

// Redact copies args, replacing long string values with a "<key>_len" entry.
func Redact(args map[string]any) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		if s, ok := v.(string); ok && len(s) > maxParamLen {
			out[k+"_len"] = len(s)
			continue
		}
		out[k] = v
	}
	return out
}

// ResponseBytes is the JSON size of a result's content; 0 when there is none.
func ResponseBytes(result *mcp.CallToolResult) int {
	if result == nil {
		return 0
	}
	b, err := json.Marshal(result.Content)
	if err != nil {
		return 0
	}
	return len(b)
}

// Now is the clock used for durations. Tests replace it.
var Now = time.Now
