package generator

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tristendillon/prefgen/core/cache"
	"github.com/tristendillon/prefgen/core/config"
	"github.com/tristendillon/prefgen/core/emitter"
	"github.com/tristendillon/prefgen/core/logger"
	"github.com/tristendillon/prefgen/core/models"
	"github.com/tristendillon/prefgen/core/synth"
	"github.com/tristendillon/prefgen/core/template_engine"
	"github.com/tristendillon/prefgen/core/walker"
)

// Result is one rendered model and where it goes.
type Result struct {
	Model      *models.Model
	Output     *models.OutputType
	OutputPath string
	Content    []byte
	Written    bool
}

type PrefGenerator struct {
	wd     string
	cfg    *config.Config
	Walker walker.SourceWalker
	Cache  *cache.GenerationCache
	// DryRun, when set, receives the generated sources instead of the disk.
	DryRun io.Writer
}

func NewPrefGenerator(wd string, cfg *config.Config) *PrefGenerator {
	return &PrefGenerator{
		wd:     wd,
		cfg:    cfg,
		Walker: walker.NewSourceWalker(cfg),
		Cache:  cache.GetCache(),
	}
}

// Generate discovers every model under the working directory, renders it
// and writes the files that changed.
func (g *PrefGenerator) Generate(ctx context.Context) ([]Result, error) {
	sources, err := g.Walker.Walk(g.wd)
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}
	ms, err := g.Walker.Load(sources)
	if err != nil {
		return nil, err
	}
	if len(ms) == 0 {
		logger.Warn("No preferences models found in %s", g.wd)
		return nil, nil
	}
	logger.Debug("Loaded %d models from %d sources", len(ms), len(sources))

	results, err := g.Render(ctx, ms)
	if err != nil {
		return nil, err
	}
	if err := g.write(results); err != nil {
		return nil, err
	}

	g.Cache.LogStats()
	return results, nil
}

// Render synthesizes and renders models on a bounded worker group. Results
// keep the order of ms regardless of which worker finished first.
func (g *PrefGenerator) Render(ctx context.Context, ms []*models.Model) ([]Result, error) {
	policy, err := synth.ParseAdapterPolicy(g.cfg.Codegen.Adapters)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(ms))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers())

	for i, m := range ms {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := g.renderOne(m, policy)
			if err != nil {
				return fmt.Errorf("model %s: %w", describe(m), err)
			}
			results[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	owners := make(map[string]*models.Model, len(results))
	for _, res := range results {
		if prev, ok := owners[res.OutputPath]; ok {
			return nil, fmt.Errorf("models %s and %s both generate %s", describe(prev), describe(res.Model), res.OutputPath)
		}
		owners[res.OutputPath] = res.Model
	}
	return results, nil
}

func (g *PrefGenerator) renderOne(m *models.Model, policy synth.AdapterPolicy) (Result, error) {
	out, err := synth.Synthesize(m, synth.WithAdapterPolicy(policy))
	if err != nil {
		return Result{}, err
	}

	renderer, err := emitter.Lookup(g.cfg.Codegen.Renderer, emitter.Options{
		RuntimeImport: g.cfg.Codegen.RuntimeImport,
		GoPackage:     g.cfg.Codegen.GoPackage,
		Source:        g.relative(m.Source),
	})
	if err != nil {
		return Result{}, err
	}

	content, err := renderer.Render(out)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Model:      m,
		Output:     out,
		OutputPath: g.outputPath(m, out, renderer),
		Content:    content,
	}, nil
}

// outputPath places Go files next to their source unless codegen.output is
// set. Other renderers always write below the output root.
func (g *PrefGenerator) outputPath(m *models.Model, out *models.OutputType, r emitter.Renderer) string {
	name := filepath.FromSlash(r.FileName(out))
	if g.cfg.Codegen.Output == "" {
		if r.Name() == "go" && m.Source != "" {
			return filepath.Join(filepath.Dir(m.Source), name)
		}
		return filepath.Join(g.wd, name)
	}

	root := g.cfg.Codegen.Output
	if !filepath.IsAbs(root) {
		root = filepath.Join(g.wd, root)
	}
	return filepath.Join(root, name)
}

func (g *PrefGenerator) write(results []Result) error {
	for i := range results {
		res := &results[i]
		rel := g.relative(res.OutputPath)

		if g.DryRun != nil {
			if _, err := fmt.Fprintf(g.DryRun, "// ==> %s\n%s\n", rel, res.Content); err != nil {
				return err
			}
			continue
		}

		if !g.Cache.NeedsWrite(res.OutputPath, res.Content) {
			if rec, ok := g.Cache.Get(res.OutputPath); ok {
				logger.Debug("Skipping %s, unchanged since %s", rel, rec.GeneratedAt.Format(time.TimeOnly))
			}
			continue
		}
		if err := template_engine.WriteFile(res.OutputPath, res.Content); err != nil {
			return fmt.Errorf("failed to write %s: %w", rel, err)
		}
		g.Cache.MarkWritten(res.OutputPath, res.Model.Source, res.Content)
		res.Written = true
		logger.Info("Generated %s for %s", rel, res.Model.OriginTypeName)
	}
	return nil
}

func (g *PrefGenerator) workers() int {
	if g.cfg.Codegen.Workers > 0 {
		return g.cfg.Codegen.Workers
	}
	return 1
}

func (g *PrefGenerator) relative(path string) string {
	if path == "" {
		return ""
	}
	rel, err := filepath.Rel(g.wd, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func describe(m *models.Model) string {
	if m == nil {
		return "<nil>"
	}
	if m.Source == "" {
		return m.StoreKey()
	}
	return fmt.Sprintf("%s (%s)", m.StoreKey(), filepath.Base(m.Source))
}
