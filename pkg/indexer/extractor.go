package indexer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/gnana997/ngtags/pkg/component"
	"github.com/gnana997/ngtags/pkg/textparse"
	"github.com/gnana997/ngtags/pkg/util"
)

// Extractor turns file contents into component descriptors.
//
// Workspace files are matched against the decorator dialect and package
// declaration files against the compiled dialect. A file with no match yields
// an empty slice; only I/O failures are errors.
type Extractor struct {
	cache  *DescriptorCache
	logger *slog.Logger
}

// NewExtractor creates an Extractor. cache may be nil to disable caching.
func NewExtractor(cache *DescriptorCache, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{cache: cache, logger: logger}
}

// ExtractFile reads job.FilePath and returns the descriptors it declares. The
// second return value reports whether the result came from the cache.
func (e *Extractor) ExtractFile(job FileJob) ([]*component.Descriptor, bool, error) {
	modulePath := ""
	if job.Local != nil {
		modulePath = job.Local.ModulePath
	}

	var (
		descriptors []*component.Descriptor
		cached      bool
	)
	err := util.WithFileBytes(job.FilePath, func(data []byte) error {
		sum := sha256.Sum256(data)
		hash := hex.EncodeToString(sum[:])

		if e.cache != nil {
			if hit, ok := e.cache.Get(job.FilePath, hash, modulePath); ok {
				descriptors, cached = hit, true
				return nil
			}
		}

		descriptors = e.extract(job, string(data))
		if e.cache != nil {
			e.cache.Put(job.FilePath, hash, modulePath, descriptors)
		}
		return nil
	})
	if err != nil {
		if e.cache != nil {
			e.cache.Invalidate(job.FilePath)
		}
		return nil, false, fmt.Errorf("failed to read file: %w", err)
	}

	e.logger.Debug("extracted file", "file", job.FilePath, "components", len(descriptors), "cached", cached)
	return descriptors, cached, nil
}

// ExtractContent runs the dialect selected by job over content without
// touching the cache or the file system.
func (e *Extractor) ExtractContent(job FileJob, content string) []*component.Descriptor {
	return e.extract(job, content)
}

func (e *Extractor) extract(job FileJob, content string) []*component.Descriptor {
	switch {
	case job.Package != nil:
		matches := textparse.PatternMatches(content, textparse.CompiledDeclarationPattern)
		out := make([]*component.Descriptor, 0, len(matches))
		for _, m := range matches {
			out = append(out, component.FromCompiledDeclaration(m[0], *job.Package))
		}
		return out

	case job.Local != nil:
		matches := textparse.PatternMatches(content, textparse.DecoratorDeclarationPattern)
		out := make([]*component.Descriptor, 0, len(matches))
		for _, m := range matches {
			out = append(out, component.FromDecorator(m, *job.Local))
		}
		return out

	default:
		return nil
	}
}
