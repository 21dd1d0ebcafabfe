/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tristendillon/prefgen/core/config"
	"github.com/tristendillon/prefgen/core/logger"
	"github.com/tristendillon/prefgen/core/template_engine"
)

var (
	force bool
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a starter prefgen.yaml",
	Long:  `Creates a prefgen.yaml with the default settings in the given directory (default: current).`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Debug("init called")
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}

		target := filepath.Join(dir, config.FileName)
		if _, err := os.Stat(target); err == nil {
			if !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", target)
			}
			logger.Debug("%s already exists. Overwriting.", target)
		}

		initData := map[string]string{
			"ModuleName":    getModuleName(dir),
			"Renderer":      rendererFlag,
			"Output":        outputFlag,
			"RuntimeImport": config.DefaultRuntimeImport,
		}
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
		engine := template_engine.NewTemplateEngine()
		if err := engine.GenerateFolder(template_engine.TEMPLATES.INIT.Ref, dir, initData); err != nil {
			return fmt.Errorf("failed to write %s: %w", target, err)
		}
		logger.Info("Wrote %s", target)

		fmt.Fprintf(cmd.OutOrStdout(), "Next Steps:\n")
		fmt.Fprintf(cmd.OutOrStdout(), "  - mark an interface with //prefgen:store\n")
		fmt.Fprintf(cmd.OutOrStdout(), "  - prefgen generate\n")
		return nil
	},
}

// getModuleName reads the module path from dir/go.mod, falling back to the
// directory name.
func getModuleName(dir string) string {
	fallback := filepath.Base(dir)
	if abs, err := filepath.Abs(dir); err == nil {
		fallback = filepath.Base(abs)
	}

	content, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		logger.Debug("Could not read go.mod, using directory name: %v", err)
		return fallback
	}

	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "module ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "module"))
		}
	}

	logger.Debug("No module declaration found in go.mod, using directory name")
	return fallback
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&force, "force", false, "Force overwrite existing files")
	initCmd.Flags().StringVar(&rendererFlag, "renderer", "go", "Renderer to use (go, java)")
	initCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output directory, empty writes Go files next to their source")
}
