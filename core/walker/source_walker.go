package walker

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tristendillon/prefgen/core/ast"
	"github.com/tristendillon/prefgen/core/cache"
	"github.com/tristendillon/prefgen/core/config"
	"github.com/tristendillon/prefgen/core/emitter"
	"github.com/tristendillon/prefgen/core/logger"
	"github.com/tristendillon/prefgen/core/modelfile"
	"github.com/tristendillon/prefgen/core/models"
)

type SourceKind int

const (
	GoSource SourceKind = iota
	ModelFile
)

func (k SourceKind) String() string {
	if k == ModelFile {
		return "model file"
	}
	return "go source"
}

// DiscoveredSource is a file that declares at least one preferences model.
type DiscoveredSource struct {
	Path    string
	RelPath string
	Kind    SourceKind
}

type SourceWalker interface {
	Walk(root string) ([]DiscoveredSource, error)
	Load(sources []DiscoveredSource) ([]*models.Model, error)
}

type SourceWalkerImpl struct {
	Include []string
	Exclude []string
	// Parses, when set, skips re-parsing sources whose content is unchanged.
	Parses *cache.ParseCache
}

func NewSourceWalker(cfg *config.Config) *SourceWalkerImpl {
	exclude := append([]string{}, cfg.Sources.Exclude...)
	if cfg.Codegen.Output != "" {
		exclude = append(exclude, cfg.Codegen.Output)
	}
	return &SourceWalkerImpl{
		Include: append([]string{}, cfg.Sources.Include...),
		Exclude: exclude,
		Parses:  cache.GetParseCache(),
	}
}

// Walk visits every include path under root and returns the sources that
// declare models, sorted by path. Generated outputs are never returned.
func (w *SourceWalkerImpl) Walk(root string) ([]DiscoveredSource, error) {
	include := w.Include
	if len(include) == 0 {
		include = []string{"."}
	}

	seen := make(map[string]bool)
	var discovered []DiscoveredSource

	for _, inc := range include {
		start := inc
		if !filepath.IsAbs(start) {
			start = filepath.Join(root, inc)
		}

		err := filepath.WalkDir(start, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			relPath, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			if w.ShouldExclude(relPath) {
				if d.IsDir() {
					logger.Debug("Excluding directory: %s", relPath)
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() || seen[path] {
				return nil
			}

			kind, ok, err := classify(path)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}

			seen[path] = true
			discovered = append(discovered, DiscoveredSource{Path: path, RelPath: relPath, Kind: kind})
			logger.Debug("Discovered %s: %s", kind, relPath)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", inc, err)
		}
	}

	sort.Slice(discovered, func(i, j int) bool {
		return discovered[i].RelPath < discovered[j].RelPath
	})
	return discovered, nil
}

// Load parses every discovered source, keeping discovery order and the
// declaration order within each file.
func (w *SourceWalkerImpl) Load(sources []DiscoveredSource) ([]*models.Model, error) {
	var out []*models.Model
	for _, src := range sources {
		parse := ast.ParseSource
		if src.Kind == ModelFile {
			parse = modelfile.ParseSource
		}

		var (
			ms  []*models.Model
			err error
		)
		if w.Parses != nil {
			ms, err = w.Parses.Load(src.Path, parse)
		} else {
			ms, err = readAndParse(src.Path, parse)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", src.RelPath, err)
		}
		out = append(out, ms...)
	}
	return out, nil
}

// ShouldExclude matches relPath against the exclude list by whole path
// segments, so "vendor" excludes "vendor/x" but not "vendored".
func (w *SourceWalkerImpl) ShouldExclude(relPath string) bool {
	relPath = filepath.Clean(relPath)
	if relPath == "." {
		return false
	}
	for _, ex := range w.Exclude {
		ex = filepath.Clean(ex)
		if relPath == ex || strings.HasPrefix(relPath, ex+string(filepath.Separator)) {
			return true
		}
		// bare names such as ".git" match at any depth
		if !strings.ContainsRune(ex, filepath.Separator) {
			for _, part := range strings.Split(relPath, string(filepath.Separator)) {
				if part == ex {
					return true
				}
			}
		}
	}
	return false
}

// IsCandidate reports whether a path could hold a model, without reading it.
func IsCandidate(path string) bool {
	if modelfile.IsModelFile(path) {
		return true
	}
	return strings.HasSuffix(path, ".go") &&
		!strings.HasSuffix(path, "_test.go") &&
		!strings.HasSuffix(path, emitter.GoFileSuffix)
}

func readAndParse(path string, parse cache.ParseFunc) ([]*models.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parse(path, data)
}

func classify(path string) (SourceKind, bool, error) {
	if !IsCandidate(path) {
		return 0, false, nil
	}
	if modelfile.IsModelFile(path) {
		return ModelFile, true, nil
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return 0, false, err
	}
	return GoSource, ast.HasDirective(src), nil
}
