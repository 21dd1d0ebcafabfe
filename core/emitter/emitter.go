// Package emitter renders synthesized output types as source text. Renderers
// only print; every naming and ordering decision is already made in the
// output description they receive.
package emitter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tristendillon/prefgen/core/models"
)

type Renderer interface {
	Name() string
	// FileName is the path of the generated file relative to the output root.
	FileName(out *models.OutputType) string
	Render(out *models.OutputType) ([]byte, error)
}

type Options struct {
	// RuntimeImport is the Go import path of the prefs runtime.
	RuntimeImport string
	// GoPackage overrides the package clause of generated Go files.
	GoPackage string
	// Source is recorded in the generated file header when set.
	Source string
}

type factory func(Options) Renderer

var registry = map[string]factory{
	"go":   func(o Options) Renderer { return NewGoRenderer(o) },
	"java": func(o Options) Renderer { return NewJavaRenderer(o) },
}

// Lookup returns the renderer registered under name.
func Lookup(name string, opts Options) (Renderer, error) {
	f, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown renderer %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return f(opts), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
