package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tristendillon/prefgen/core/cache"
	"github.com/tristendillon/prefgen/core/generator"
	"github.com/tristendillon/prefgen/core/logger"
	"github.com/tristendillon/prefgen/core/watcher"
)

// devCmd represents the dev command
var devCmd = &cobra.Command{
	Use:   "dev [paths...]",
	Short: "Regenerate on every change",
	Long:  "Generates once, then watches the project and regenerates whenever a model source, prefgen.yaml or .env changes.",
	RunE: func(cmd *cobra.Command, args []string) error {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}

		cfg, err := loadConfig(cmd, args)
		if err != nil {
			return err
		}
		configureCaches(cfg)

		fw, err := watcher.NewFromConfig(wd, cfg)
		if err != nil {
			return err
		}

		regenerate := func() error {
			// prefgen.yaml may have changed since the last run
			current, err := loadConfig(cmd, args)
			if err != nil {
				return err
			}
			_, err = generator.NewPrefGenerator(wd, current).Generate(cmd.Context())
			return err
		}

		fw.AddOnStartFunc(func() error {
			logger.Info("Watching %s for changes", wd)
			return regenerate()
		})
		fw.AddOnChangeFunc(regenerate)
		fw.AddOnCloseFunc(func() error {
			cache.GetCache().LogStats()
			return nil
		})
		defer fw.Close()

		return fw.Watch(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(devCmd)

	addCodegenFlags(devCmd)
}
