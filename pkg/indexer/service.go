package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Scheduler keys for the two rescans.
const (
	keyLocal    = "local"
	keyPackages = "packages"
)

// ServiceConfig configures a Service.
type ServiceConfig struct {
	Scanner ScannerConfig

	// Packages are the initial package globs.
	Packages []string

	// QuietWindow delays scheduled rescans (DefaultQuietWindow when zero).
	QuietWindow time.Duration

	// CacheSize bounds the descriptor cache (DefaultCacheSize when zero).
	CacheSize int

	// Reporter receives progress notifications; nil logs through the
	// service logger.
	Reporter ProgressReporter
}

// Service keeps the Registry in sync with the workspace and the configured
// packages. It owns the scanner, the registry and the rescan scheduler.
type Service struct {
	scanner   *WorkspaceScanner
	registry  *Registry
	scheduler *Scheduler
	cache     *DescriptorCache
	reporter  ProgressReporter
	logger    *slog.Logger

	mu       sync.RWMutex
	packages []string

	ctx    context.Context
	cancel context.CancelFunc
}

// NewService creates a Service. Nothing is scanned until Reload is called.
func NewService(config ServiceConfig, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cache, err := NewDescriptorCache(config.CacheSize, logger)
	if err != nil {
		return nil, err
	}

	reporter := config.Reporter
	if reporter == nil {
		reporter = LogReporter{Logger: logger}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		scanner:   NewWorkspaceScanner(config.Scanner, NewExtractor(cache, logger), logger),
		registry:  NewRegistry(),
		scheduler: NewScheduler(config.QuietWindow, logger),
		cache:     cache,
		reporter:  reporter,
		logger:    logger,
		packages:  append([]string(nil), config.Packages...),
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// Registry returns the registry kept up to date by the service.
func (s *Service) Registry() *Registry {
	return s.registry
}

// Root returns the workspace root.
func (s *Service) Root() string {
	return s.scanner.Root()
}

// Packages returns the package globs of the most recent package rescan.
func (s *Service) Packages() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.packages...)
}

// CacheStats returns the descriptor cache counters.
func (s *Service) CacheStats() CacheStats {
	return s.cache.GetStats()
}

// Reload rebuilds both collections concurrently and returns once both are
// published.
func (s *Service) Reload(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.RescanPackages(gctx, s.Packages())
	})
	g.Go(func() error {
		return s.RescanLocal(gctx)
	})
	return g.Wait()
}

// RescanLocal rebuilds the local collection now.
func (s *Service) RescanLocal(ctx context.Context) error {
	return s.rescanLocal(ctx, s.registry.Begin())
}

// RescanPackages rebuilds the package collection from globs now.
func (s *Service) RescanPackages(ctx context.Context, globs []string) error {
	return s.rescanPackages(ctx, s.registry.Begin(), globs)
}

func (s *Service) rescanLocal(ctx context.Context, generation uint64) error {
	return WithProgress(ctx, s.reporter, TitleLocal, func(ctx context.Context) error {
		result, err := s.scanner.ScanLocal(ctx)
		if err != nil {
			return err
		}
		s.publish(CollectionLocal, generation, result)
		return nil
	})
}

func (s *Service) rescanPackages(ctx context.Context, generation uint64, globs []string) error {
	globs = append([]string(nil), globs...)
	return WithProgress(ctx, s.reporter, TitlePackages, func(ctx context.Context) error {
		result, err := s.scanner.ScanPackages(ctx, globs)
		if err != nil {
			return err
		}
		if s.publish(CollectionPackages, generation, result) {
			s.mu.Lock()
			s.packages = globs
			s.mu.Unlock()
		}
		return nil
	})
}

func (s *Service) publish(c Collection, generation uint64, result *ScanResult) bool {
	if !s.registry.Replace(c, generation, result.Descriptors) {
		s.logger.Debug("discarded stale scan result",
			"collection", c.String(),
			"generation", generation,
			"current", s.registry.Generation(c))
		return false
	}
	return true
}

// HandleFileEvent schedules a local rescan when the event touches a component
// or module source.
func (s *Service) HandleFileEvent(event FileEvent) {
	relevant := false
	for _, p := range event.Paths {
		if IsComponentSource(p) {
			relevant = true
			break
		}
	}
	if !relevant {
		return
	}

	s.logger.Debug("scheduling local rescan", "event", event.Kind.String(), "paths", event.Paths)
	generation := s.registry.Begin()
	s.scheduler.Trigger(keyLocal, func() {
		if err := s.rescanLocal(s.ctx, generation); err != nil {
			s.logger.Warn("local rescan failed", "error", err)
		}
	})
}

// HandleConfigChange schedules a package rescan with the new globs.
func (s *Service) HandleConfigChange(globs []string) {
	s.logger.Debug("scheduling package rescan", "packages", globs)
	generation := s.registry.Begin()
	globs = append([]string(nil), globs...)
	s.scheduler.Trigger(keyPackages, func() {
		if err := s.rescanPackages(s.ctx, generation, globs); err != nil {
			s.logger.Warn("package rescan failed", "error", err)
		}
	})
}

// Flush runs any scheduled rescan immediately and waits for it.
func (s *Service) Flush() {
	s.scheduler.Flush()
}

// Close cancels running rescans and drops scheduled ones.
func (s *Service) Close() error {
	s.cancel()
	s.scheduler.Stop()
	return nil
}

// IsComponentSource reports whether path names a *.component.* or *.module.*
// file.
func IsComponentSource(path string) bool {
	base := filepath.Base(path)
	return strings.Contains(base, ".component.") || strings.Contains(base, ".module.")
}

// String describes the registry contents for logs.
func (s *Service) String() string {
	return fmt.Sprintf("%d local, %d package components", len(s.registry.Local()), len(s.registry.Packages()))
}
