/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tristendillon/prefgen/core/logger"
)

var rootCmd = &cobra.Command{
	Use:   "prefgen",
	Short: "A code generator for typed preference stores.",
	Long: `prefgen turns annotated Go interfaces and *.prefs.yaml models into
implementations backed by a namespaced key-value store. Each entry becomes a
typed preference wrapper built once in the generated constructor.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logger.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		if verbose {
			level = logger.DEBUG
		}
		logger.SetLevel(level)
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			logger.SetColor(false)
		}
		if logfile != "" {
			closeFn, err := logger.AddFileWriter(logfile)
			if err != nil {
				return fmt.Errorf("failed to open log file: %w", err)
			}
			closeLog = closeFn
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if closeLog != nil {
			return closeLog()
		}
		return nil
	},
}

var logfile string
var verbose bool
var logLevel string
var closeLog func() error

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		logger.Error("%v", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logfile, "logfile", "", "File to write logs to")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Lowest level to log: debug, info, warn, error (--verbose means debug)")
}
