// Package config loads ngtags settings from defaults, the workspace's
// .ngtags.yaml, NGTAGS_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const (
	// FileName is the config file looked up in the workspace root.
	FileName = ".ngtags.yaml"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "NGTAGS_"

	DefaultNodeModules = "node_modules"
	DefaultDebounceMs  = 1000
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
)

// packagesAlias is the key older workspaces use for the package list.
const packagesAlias = "configuration.UIComponentsPaths"

// listKeys are split on commas when they come from the environment.
var listKeys = []string{"packages", "exclude"}

// LogSettings configures the process logger and the tool-call log.
type LogSettings struct {
	Level  string `koanf:"level" json:"level"`
	Format string `koanf:"format" json:"format"`

	// File is the JSONL tool-call log written by the MCP server. Empty
	// disables it.
	File string `koanf:"file" json:"file,omitempty"`
}

// Settings is one resolved configuration snapshot.
type Settings struct {
	// Packages are doublestar globs of package directories under
	// node_modules whose components are indexed.
	Packages    []string    `koanf:"packages" json:"packages"`
	NodeModules string      `koanf:"node_modules" json:"node_modules"`
	DebounceMs  int         `koanf:"debounce_ms" json:"debounce_ms"`
	Exclude     []string    `koanf:"exclude" json:"exclude,omitempty"`
	Log         LogSettings `koanf:"log" json:"log"`
}

// QuietWindow is the debounce applied to rescans.
func (s Settings) QuietWindow() time.Duration {
	if s.DebounceMs <= 0 {
		return time.Duration(DefaultDebounceMs) * time.Millisecond
	}
	return time.Duration(s.DebounceMs) * time.Millisecond
}

// NodeModulesPath returns the node_modules directory resolved against root.
func (s Settings) NodeModulesPath(root string) string {
	if filepath.IsAbs(s.NodeModules) {
		return s.NodeModules
	}
	return filepath.Join(root, s.NodeModules)
}

// Store holds the current settings of one workspace and reloads them when the
// config file changes.
type Store struct {
	root   string
	path   string
	flags  *pflag.FlagSet
	logger *slog.Logger

	mu       sync.RWMutex
	settings Settings

	watchMu  sync.Mutex
	provider *file.File
}

// Load resolves the settings for the workspace at root. flags may be nil;
// only flags the user actually set override lower layers.
func Load(root string, flags *pflag.FlagSet, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		root:   root,
		flags:  flags,
		logger: logger,
	}
	candidate := filepath.Join(root, FileName)
	if _, err := os.Stat(candidate); err == nil {
		s.path = candidate
	}

	settings, err := s.load()
	if err != nil {
		return nil, err
	}
	s.settings = settings

	logger.Debug("configuration loaded",
		"file", s.path,
		"packages", len(settings.Packages),
		"debounce_ms", settings.DebounceMs)
	return s, nil
}

// Path returns the config file in use, or "" when the workspace has none.
func (s *Store) Path() string {
	return s.path
}

// Settings returns a copy of the current settings.
func (s *Store) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.settings)
}

// PackagePaths returns the configured package globs.
func (s *Store) PackagePaths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.settings.Packages)
}

// Reload re-reads every layer and reports whether the package list changed.
func (s *Store) Reload() (bool, error) {
	next, err := s.load()
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	changed := !slices.Equal(s.settings.Packages, next.Packages)
	s.settings = next
	s.mu.Unlock()

	return changed, nil
}

// Watch calls fn with the new package list each time the config file is
// saved with a different one. It returns immediately; watching stops when ctx
// is done or Close is called. Without a config file there is nothing to
// watch and Watch is a no-op.
func (s *Store) Watch(ctx context.Context, fn func(packages []string)) error {
	if s.path == "" {
		s.logger.Debug("no config file, not watching", "root", s.root)
		return nil
	}

	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	if s.provider != nil {
		return fmt.Errorf("already watching %s", s.path)
	}

	provider := file.Provider(s.path)
	err := provider.Watch(func(_ interface{}, err error) {
		if err != nil {
			s.logger.Warn("config watch error", "file", s.path, "error", err)
			return
		}
		changed, err := s.Reload()
		if err != nil {
			s.logger.Warn("config reload failed", "file", s.path, "error", err)
			return
		}
		if !changed {
			s.logger.Debug("config saved, package list unchanged", "file", s.path)
			return
		}
		packages := s.PackagePaths()
		s.logger.Info("package list changed", "packages", packages)
		fn(packages)
	})
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", s.path, err)
	}
	s.provider = provider

	context.AfterFunc(ctx, s.Close)
	return nil
}

// Close stops watching the config file.
func (s *Store) Close() {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	if s.provider == nil {
		return
	}
	if err := s.provider.Unwatch(); err != nil {
		s.logger.Debug("config unwatch failed", "error", err)
	}
	s.provider = nil
}

func (s *Store) load() (Settings, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"node_modules": DefaultNodeModules,
		"debounce_ms":  DefaultDebounceMs,
		"log.level":    DefaultLogLevel,
		"log.format":   DefaultLogFormat,
	}, "."), nil); err != nil {
		return Settings{}, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Workspace config file
	if s.path != "" {
		if err := k.Load(file.Provider(s.path), yaml.Parser()); err != nil {
			return Settings{}, fmt.Errorf("error reading config file %s: %w", s.path, err)
		}
	}

	// 3. Environment: NGTAGS_DEBOUNCE_MS -> debounce_ms, NGTAGS_LOG_LEVEL -> log.level
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envKey), nil); err != nil {
		return Settings{}, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if s.flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(s.flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key := flagKey(f.Name)
			if key == "" {
				return "", nil
			}
			return key, posflag.FlagVal(s.flags, f)
		}), nil); err != nil {
			return Settings{}, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Settings
	if err := k.Unmarshal("", &cfg); err != nil {
		return Settings{}, fmt.Errorf("unable to decode config: %w", err)
	}
	if len(cfg.Packages) == 0 && k.Exists(packagesAlias) {
		cfg.Packages = k.Strings(packagesAlias)
	}
	cfg.Packages = compact(cfg.Packages)
	cfg.Exclude = compact(cfg.Exclude)
	if cfg.DebounceMs <= 0 {
		cfg.DebounceMs = DefaultDebounceMs
	}
	return cfg, nil
}

func envKey(name, value string) (string, interface{}) {
	key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	if rest, ok := strings.CutPrefix(key, "log_"); ok {
		key = "log." + rest
	}
	if slices.Contains(listKeys, key) {
		return key, strings.Split(value, ",")
	}
	return key, value
}

// flagKey maps a command-line flag to its config key. Flags with no config
// counterpart map to "".
func flagKey(name string) string {
	switch name {
	case "package":
		return "packages"
	case "node-modules":
		return "node_modules"
	case "debounce":
		return "debounce_ms"
	case "exclude":
		return "exclude"
	case "log-level":
		return "log.level"
	case "log-format":
		return "log.format"
	case "log-file":
		return "log.file"
	}
	return ""
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func clone(s Settings) Settings {
	s.Packages = slices.Clone(s.Packages)
	s.Exclude = slices.Clone(s.Exclude)
	return s
}
