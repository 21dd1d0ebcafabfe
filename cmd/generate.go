/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tristendillon/prefgen/core/cache"
	"github.com/tristendillon/prefgen/core/config"
	"github.com/tristendillon/prefgen/core/generator"
	"github.com/tristendillon/prefgen/core/logger"
)

var (
	rendererFlag string
	outputFlag   string
	adaptersFlag string
	dryRun       bool
)

var generateCmd = &cobra.Command{
	Use:   "generate [paths...]",
	Short: "Generates preference store implementations",
	Long: `Scans the project for interfaces marked with //prefgen:store and for
*.prefs.yaml model files, then writes one implementation per model.
Paths, when given, replace sources.include from prefgen.yaml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Debug("generate called")
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}

		cfg, err := loadConfig(cmd, args)
		if err != nil {
			return err
		}
		configureCaches(cfg)

		gen := generator.NewPrefGenerator(wd, cfg)
		if dryRun {
			gen.DryRun = cmd.OutOrStdout()
		}

		results, err := gen.Generate(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to generate: %w", err)
		}

		written := 0
		for _, res := range results {
			if res.Written {
				written++
			}
		}
		if !dryRun {
			logger.Info("Generated %d of %d files (%s renderer)", written, len(results), cfg.Codegen.Renderer)
		}
		return nil
	},
}

// loadConfig reads prefgen.yaml and applies the flags the user set.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("renderer") {
		cfg.Codegen.Renderer = rendererFlag
	}
	if flags.Changed("output") {
		cfg.Codegen.Output = outputFlag
	}
	if flags.Changed("adapters") {
		cfg.Codegen.Adapters = adaptersFlag
	}
	if len(args) > 0 {
		cfg.Sources.Include = args
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// configureCaches sizes both process-wide caches from cache.max_entries.
func configureCaches(cfg *config.Config) {
	sized := &cache.CacheConfig{MaxEntries: cfg.Cache.MaxEntries}
	cache.SetCache(cache.NewGenerationCache(sized))
	cache.SetParseCache(cache.NewParseCache(sized))
}

func addCodegenFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&rendererFlag, "renderer", "go", "Renderer to use (go, java)")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output directory, empty writes Go files next to their source")
	cmd.Flags().StringVar(&adaptersFlag, "adapters", "per-entry", "Adapter instantiation (per-entry, dedup)")
}

func init() {
	rootCmd.AddCommand(generateCmd)

	addCodegenFlags(generateCmd)
	generateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print generated sources instead of writing them")
}
