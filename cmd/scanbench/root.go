package main

import (
	"fmt"
	"os"

	"github.com/hxl1990/scanner/internal/logging"

	"github.com/spf13/cobra"
)

var (
	metricsPort int
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:   "scanbench",
	Short: "Benchmark harness and trace tools for the scanner engine",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.InitLogger()
		if err := logging.SetLevel(logLevel); err != nil {
			return fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().IntVar(&metricsPort, "metrics-port", 0, "Port for Prometheus metrics (0 disables the metrics server)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Minimum log level (debug, info, warn, error)")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
