package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/tristendillon/prefgen/core/cache"
	"github.com/tristendillon/prefgen/core/config"
	"github.com/tristendillon/prefgen/core/logger"
	"github.com/tristendillon/prefgen/core/walker"
)

const DefaultDebounce = 500 * time.Millisecond

type FileWatcher struct {
	Watcher      *fsnotify.Watcher
	RootDir      string
	ExcludePaths []string
	Debounce     time.Duration

	OnStart  func() error
	OnChange func() error
	OnClose  func() error

	debounceTimer *time.Timer
	mutex         sync.Mutex
	// runMutex serializes OnChange so regenerations never overlap.
	runMutex sync.Mutex
}

func NewFileWatcher(rootDir string, excludePaths []string) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	fw := &FileWatcher{
		Watcher:      w,
		RootDir:      rootDir,
		ExcludePaths: append([]string{".git"}, excludePaths...),
		Debounce:     DefaultDebounce,
		OnStart:      func() error { return nil },
		OnChange:     func() error { return fmt.Errorf("OnChange not set") },
		OnClose:      func() error { return nil },
	}
	logger.Debug("Excluding paths: %v", fw.ExcludePaths)
	return fw, nil
}

// NewFromConfig builds a watcher that ignores the configured excludes and
// output directory.
func NewFromConfig(rootDir string, cfg *config.Config) (*FileWatcher, error) {
	exclude := append([]string{}, cfg.Sources.Exclude...)
	if cfg.Codegen.Output != "" {
		exclude = append(exclude, cfg.Codegen.Output)
	}
	return NewFileWatcher(rootDir, exclude)
}

func (fw *FileWatcher) AddOnStartFunc(onStart func() error) {
	fw.OnStart = onStart
}

func (fw *FileWatcher) AddOnChangeFunc(onChange func() error) {
	fw.OnChange = onChange
}

func (fw *FileWatcher) AddOnCloseFunc(onClose func() error) {
	fw.OnClose = onClose
}

// Watch blocks until ctx is done or the underlying watcher fails.
func (fw *FileWatcher) Watch(ctx context.Context) error {
	if err := fw.addWatchersRecursively(fw.RootDir); err != nil {
		return fmt.Errorf("failed to add watchers: %w", err)
	}

	if err := fw.OnStart(); err != nil {
		logger.Error("Watcher.OnStart failed: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			fw.handleEvent(event)

		case err, ok := <-fw.Watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			logger.Error("Watcher error: %v", err)
		}
	}
}

func (fw *FileWatcher) handleEvent(event fsnotify.Event) {
	if fw.shouldExcludePath(event.Name) {
		return
	}

	if event.Has(fsnotify.Create) {
		if stat, err := os.Stat(event.Name); err == nil && stat.IsDir() {
			logger.Debug("Adding watcher for new directory: %s", event.Name)
			if err := fw.addWatchersRecursively(event.Name); err != nil {
				logger.Error("Failed to watch %s: %v", event.Name, err)
			}
			return
		}
	}

	if !isRelevant(event.Name) {
		return
	}
	logger.Debug("File event: %s %s", event.Op, event.Name)

	if event.Has(fsnotify.Write) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		if n := cache.GetCache().InvalidateSource(event.Name); n > 0 {
			logger.Debug("Invalidated %d generation records for %s", n, event.Name)
		}
	}
	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		cache.GetParseCache().Invalidate(event.Name)
	}

	fw.debounceGenerate()
}

// isRelevant accepts model sources and the files that configure generation.
// Generated outputs are ignored so a regeneration never retriggers itself.
func isRelevant(path string) bool {
	switch filepath.Base(path) {
	case config.FileName, ".env":
		return true
	}
	return walker.IsCandidate(path)
}

func (fw *FileWatcher) debounceGenerate() {
	fw.mutex.Lock()
	defer fw.mutex.Unlock()

	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
	}

	fw.debounceTimer = time.AfterFunc(fw.Debounce, func() {
		fw.runMutex.Lock()
		defer fw.runMutex.Unlock()

		logger.Debug("File changes detected, regenerating...")
		if err := fw.OnChange(); err != nil {
			logger.Error("Watcher.OnChange failed: %v", err)
		}
	})
}

func (fw *FileWatcher) Close() error {
	fw.mutex.Lock()
	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
	}
	fw.mutex.Unlock()

	if err := fw.OnClose(); err != nil {
		logger.Error("Watcher.OnClose failed: %v", err)
	}

	return fw.Watcher.Close()
}

func (fw *FileWatcher) shouldExcludePath(path string) bool {
	relPath, err := filepath.Rel(fw.RootDir, path)
	if err != nil {
		return false
	}

	relPath = filepath.Clean(relPath)

	for _, excludePath := range fw.ExcludePaths {
		excludePath = filepath.Clean(excludePath)

		if relPath == excludePath {
			return true
		}
		if strings.HasPrefix(relPath, excludePath+string(filepath.Separator)) {
			return true
		}
	}

	return false
}

func (fw *FileWatcher) addWatchersRecursively(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() {
			return nil
		}

		if fw.shouldExcludePath(path) {
			logger.Debug("Excluding directory: %s", path)
			return filepath.SkipDir
		}

		logger.Debug("Adding watcher for: %s", path)
		if err := fw.Watcher.Add(path); err != nil {
			return fmt.Errorf("failed to add watcher for %s: %w", path, err)
		}

		return nil
	})
}
