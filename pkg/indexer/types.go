package indexer

import (
	"time"

	"github.com/gnana997/ngtags/pkg/component"
	"github.com/gnana997/ngtags/pkg/discovery"
)

// Collection names one of the two descriptor sets held by the Registry.
type Collection int

const (
	// CollectionLocal holds components declared in workspace sources.
	CollectionLocal Collection = iota
	// CollectionPackages holds components read from package declarations.
	CollectionPackages
)

func (c Collection) String() string {
	if c == CollectionPackages {
		return "packages"
	}
	return "local"
}

// FileJob is one file handed to the worker pool. Exactly one of Local and
// Package is set and selects the dialect used for extraction.
type FileJob struct {
	FilePath string
	JobID    int

	Local   *discovery.LocalFile
	Package *discovery.PackageFile
}

// FileResult carries the descriptors extracted from one file, in declaration
// order.
type FileResult struct {
	FilePath    string
	JobID       int
	Descriptors []*component.Descriptor
	Cached      bool
}

// FileError represents an error that occurred while processing a file.
type FileError struct {
	FilePath string
	Error    error
}

// ScanStats describes one scan of either collection.
type ScanStats struct {
	Collection Collection

	// FilesDiscovered is the number of files handed to extraction.
	FilesDiscovered int

	// FilesIndexed is the number of files extracted without error.
	FilesIndexed int

	// FilesFailed is the number of files that could not be read.
	FilesFailed int

	// CacheHits counts files whose content hash matched the cached entry.
	CacheHits int

	// ComponentsFound counts every declaration matched, before filtering.
	ComponentsFound int

	// ComponentsSkipped counts declarations without a kebab-case selector.
	ComponentsSkipped int

	WorkerCount     int
	DiscoveryTimeMs int64
	IndexingTimeMs  int64
	TotalTimeMs     int64

	// Errors contains per-file errors (if any).
	Errors []FileError

	StartTime time.Time
	EndTime   time.Time
}

// ScanResult is the output of a scan: the filtered, ordered descriptors and
// the statistics describing how they were produced.
type ScanResult struct {
	Descriptors []*component.Descriptor
	Stats       *ScanStats
}

// EventKind is the file-system change that produced a FileEvent.
type EventKind int

const (
	EventCreate EventKind = iota
	EventRename
	EventSave
)

func (k EventKind) String() string {
	switch k {
	case EventCreate:
		return "create"
	case EventRename:
		return "rename"
	default:
		return "save"
	}
}

// FileEvent reports that the listed paths were created, renamed or saved.
type FileEvent struct {
	Kind  EventKind
	Paths []string
}
