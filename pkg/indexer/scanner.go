package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/gnana997/ngtags/pkg/component"
	"github.com/gnana997/ngtags/pkg/discovery"
	"github.com/gnana997/ngtags/pkg/util"
)

// DefaultNodeModules is the package directory name, relative to the workspace.
const DefaultNodeModules = "node_modules"

// ScannerConfig configures a WorkspaceScanner.
type ScannerConfig struct {
	// Root is the workspace root directory.
	Root string

	// Local controls workspace file discovery.
	Local discovery.LocalConfig

	// NodeModules is the package directory, absolute or relative to Root.
	NodeModules string

	// Workers is the worker pool size (0 = util.GetOptimalPoolSize).
	Workers int
}

// WorkspaceScanner assembles descriptor collections in three phases:
//  1. discovery of candidate files
//  2. parallel extraction on a WorkerPool
//  3. filtering and ordering of the extracted descriptors
//
// Descriptors without a kebab-case selector are dropped. The survivors are
// ordered by source file path and then by declaration order within the file,
// so two scans of the same tree produce identical collections.
type WorkspaceScanner struct {
	config    ScannerConfig
	extractor *Extractor
	logger    *slog.Logger
}

// NewWorkspaceScanner creates a new workspace scanner.
func NewWorkspaceScanner(config ScannerConfig, extractor *Extractor, logger *slog.Logger) *WorkspaceScanner {
	if config.NodeModules == "" {
		config.NodeModules = DefaultNodeModules
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkspaceScanner{config: config, extractor: extractor, logger: logger}
}

// Root returns the workspace root.
func (ws *WorkspaceScanner) Root() string {
	return ws.config.Root
}

// NodeModulesDir returns the absolute package directory.
func (ws *WorkspaceScanner) NodeModulesDir() string {
	if filepath.IsAbs(ws.config.NodeModules) {
		return ws.config.NodeModules
	}
	return filepath.Join(ws.config.Root, ws.config.NodeModules)
}

// ScanLocal discovers and extracts every workspace component.
func (ws *WorkspaceScanner) ScanLocal(ctx context.Context) (*ScanResult, error) {
	stats := newScanStats(CollectionLocal)

	discoveryStart := time.Now()
	files, err := discovery.DiscoverLocal(ws.config.Root, ws.config.Local)
	if err != nil {
		return nil, fmt.Errorf("local discovery failed: %w", err)
	}
	stats.DiscoveryTimeMs = time.Since(discoveryStart).Milliseconds()

	jobs := make([]FileJob, len(files.Components))
	for i := range files.Components {
		f := files.Components[i]
		jobs[i] = FileJob{FilePath: f.Path, JobID: i, Local: &f}
	}

	ws.logger.Info("local discovery complete",
		"component_files", len(files.Components),
		"modules", len(files.Modules),
		"duration_ms", stats.DiscoveryTimeMs)

	return ws.run(ctx, jobs, stats)
}

// ScanPackages discovers and extracts the components of the packages matched
// by globs under the node_modules directory.
func (ws *WorkspaceScanner) ScanPackages(ctx context.Context, globs []string) (*ScanResult, error) {
	stats := newScanStats(CollectionPackages)

	discoveryStart := time.Now()
	files, err := discovery.DiscoverPackages(ws.NodeModulesDir(), globs)
	if err != nil {
		return nil, fmt.Errorf("package discovery failed: %w", err)
	}
	stats.DiscoveryTimeMs = time.Since(discoveryStart).Milliseconds()

	jobs := make([]FileJob, len(files))
	for i := range files {
		f := files[i]
		jobs[i] = FileJob{FilePath: f.Path, JobID: i, Package: &f}
	}

	ws.logger.Info("package discovery complete",
		"packages", len(globs),
		"declaration_files", len(files),
		"duration_ms", stats.DiscoveryTimeMs)

	return ws.run(ctx, jobs, stats)
}

func newScanStats(c Collection) *ScanStats {
	return &ScanStats{
		Collection: c,
		Errors:     make([]FileError, 0),
		StartTime:  time.Now(),
	}
}

func (ws *WorkspaceScanner) run(ctx context.Context, jobs []FileJob, stats *ScanStats) (*ScanResult, error) {
	stats.FilesDiscovered = len(jobs)

	indexingStart := time.Now()
	results, err := ws.processFilesParallel(ctx, jobs, stats)
	if err != nil {
		return nil, err
	}
	stats.IndexingTimeMs = time.Since(indexingStart).Milliseconds()

	descriptors := assemble(results, stats)

	stats.EndTime = time.Now()
	stats.TotalTimeMs = stats.EndTime.Sub(stats.StartTime).Milliseconds()

	ws.logger.Info("scan complete",
		"collection", stats.Collection.String(),
		"files_indexed", stats.FilesIndexed,
		"files_failed", stats.FilesFailed,
		"cache_hits", stats.CacheHits,
		"components", len(descriptors),
		"skipped", stats.ComponentsSkipped,
		"duration_ms", stats.TotalTimeMs)

	return &ScanResult{Descriptors: descriptors, Stats: stats}, nil
}

// processFilesParallel extracts every job on a WorkerPool. Per-file failures
// are recorded in stats; only cancellation aborts the scan.
func (ws *WorkspaceScanner) processFilesParallel(ctx context.Context, jobs []FileJob, stats *ScanStats) ([]FileResult, error) {
	total := len(jobs)
	if total == 0 {
		return nil, ctx.Err()
	}

	numWorkers := util.GetOptimalPoolSizeWithOverride(ws.config.Workers)
	if numWorkers > total {
		numWorkers = total
	}
	stats.WorkerCount = numWorkers

	pool := NewWorkerPool(numWorkers, ws.extractor, ws.logger)
	pool.Start()
	defer pool.Stop()

	stop := context.AfterFunc(ctx, pool.Cancel)
	defer stop()

	// The collector must be running before jobs are submitted, otherwise a
	// full job queue blocks submission forever.
	results := make([]FileResult, 0, total)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for received := 0; received < total; {
			select {
			case <-ctx.Done():
				return
			case result, ok := <-pool.Results():
				if !ok {
					return
				}
				results = append(results, result)
				stats.FilesIndexed++
				if result.Cached {
					stats.CacheHits++
				}
				received++
			case fileErr, ok := <-pool.Errors():
				if !ok {
					return
				}
				stats.Errors = append(stats.Errors, fileErr)
				stats.FilesFailed++
				ws.logger.Warn("file processing failed", "file", fileErr.FilePath, "error", fileErr.Error)
				received++
			}
		}
	}()

	for _, job := range jobs {
		if err := pool.Submit(job); err != nil {
			break
		}
	}
	pool.FinishSubmitting()
	<-done

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scan cancelled: %w", err)
	}
	return results, nil
}

// assemble orders results by job (that is, by discovery order) and keeps the
// descriptors that can be used as tags.
func assemble(results []FileResult, stats *ScanStats) []*component.Descriptor {
	sort.Slice(results, func(i, j int) bool { return results[i].JobID < results[j].JobID })

	out := make([]*component.Descriptor, 0, len(results))
	for _, r := range results {
		for _, d := range r.Descriptors {
			stats.ComponentsFound++
			if d.Selector() == "" {
				stats.ComponentsSkipped++
				continue
			}
			out = append(out, d)
		}
	}
	return out
}
