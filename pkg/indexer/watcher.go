package indexer

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ignoredDirs are never watched.
var ignoredDirs = map[string]bool{
	"node_modules": true,
	"dist":         true,
	"out":          true,
	"build":        true,
	"coverage":     true,
}

// FileWatcher translates fsnotify events under a workspace into FileEvents.
//
// fsnotify is not recursive, so every directory is added at Start and
// directories created later are added as they appear. Remove events are not
// reported; a rename is reported under the old name and the new name arrives
// as a create.
//
//	watcher, err := NewFileWatcher(logger)
//	if err != nil {
//	    return err
//	}
//	watcher.OnEvent(service.HandleFileEvent)
//	if err := watcher.Start(root); err != nil {
//	    return err
//	}
//	defer watcher.Stop()
type FileWatcher struct {
	watcher *fsnotify.Watcher
	logger  *slog.Logger
	root    string

	handlersMu sync.RWMutex
	handlers   []func(FileEvent)

	stopChan chan struct{}
	done     chan struct{}
	started  bool
	stopped  bool
	mu       sync.Mutex
}

// NewFileWatcher creates a watcher. It does nothing until Start.
func NewFileWatcher(logger *slog.Logger) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileWatcher{
		watcher:  w,
		logger:   logger,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// OnEvent registers a handler. Handlers run on the watcher goroutine and must
// not block.
func (fw *FileWatcher) OnEvent(handler func(FileEvent)) {
	fw.handlersMu.Lock()
	defer fw.handlersMu.Unlock()
	fw.handlers = append(fw.handlers, handler)
}

// Start watches rootPath and every non-ignored directory below it.
func (fw *FileWatcher) Start(rootPath string) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.stopped {
		return fmt.Errorf("watcher already stopped")
	}
	if fw.started {
		return fmt.Errorf("watcher already started")
	}

	if err := fw.watcher.Add(rootPath); err != nil {
		return fmt.Errorf("failed to watch %s: %w", rootPath, err)
	}
	fw.addTree(rootPath)

	fw.root = rootPath
	fw.started = true
	go fw.eventLoop()

	fw.logger.Info("file watcher started", "root", rootPath, "directories", len(fw.watcher.WatchList()))
	return nil
}

func (fw *FileWatcher) addTree(dir string) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != dir && shouldIgnoreDir(path) {
			return filepath.SkipDir
		}
		if err := fw.watcher.Add(path); err != nil {
			fw.logger.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

// Stop stops the watcher. Safe to call more than once.
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	if fw.stopped {
		fw.mu.Unlock()
		return nil
	}
	fw.stopped = true
	started := fw.started
	close(fw.stopChan)
	fw.mu.Unlock()

	err := fw.watcher.Close()
	if started {
		<-fw.done
	}
	fw.logger.Info("file watcher stopped")
	return err
}

func (fw *FileWatcher) eventLoop() {
	defer close(fw.done)

	for {
		select {
		case <-fw.stopChan:
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(event)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Error("file watcher error", "error", err)
		}
	}
}

func (fw *FileWatcher) handleEvent(event fsnotify.Event) {
	if fw.shouldIgnore(event.Name) {
		return
	}

	var kind EventKind
	switch {
	case event.Has(fsnotify.Create):
		kind = EventCreate
		if isDir(event.Name) && !shouldIgnoreDir(event.Name) {
			fw.addTree(event.Name)
		}
	case event.Has(fsnotify.Rename):
		kind = EventRename
	case event.Has(fsnotify.Write):
		kind = EventSave
	default:
		return
	}

	fw.logger.Debug("file event", "op", event.Op.String(), "file", event.Name)
	fw.emit(FileEvent{Kind: kind, Paths: []string{event.Name}})
}

func (fw *FileWatcher) emit(event FileEvent) {
	fw.handlersMu.RLock()
	defer fw.handlersMu.RUnlock()
	for _, h := range fw.handlers {
		h(event)
	}
}

func shouldIgnoreDir(path string) bool {
	base := filepath.Base(path)
	return ignoredDirs[base] || strings.HasPrefix(base, ".")
}

// shouldIgnore reports whether any directory between the root and path is
// ignored.
func (fw *FileWatcher) shouldIgnore(path string) bool {
	rel, err := filepath.Rel(fw.root, path)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(filepath.Dir(rel)), "/") {
		if part == "." || part == ".." {
			continue
		}
		if ignoredDirs[part] || strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
