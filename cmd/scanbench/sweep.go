package main

import (
	"context"
	"time"

	"github.com/hxl1990/scanner/internal/engine"
	"github.com/hxl1990/scanner/internal/logging"
	"github.com/hxl1990/scanner/internal/metrics"
	"github.com/hxl1990/scanner/internal/report"
	"github.com/hxl1990/scanner/internal/sweep"

	"github.com/spf13/cobra"
)

var (
	gridPath     string
	enginePath   string
	mpirunPath   string
	traceFile    string
	trialTimeout time.Duration
	resultsPath  string
	failSentinel bool
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run every trial in a sweep specification and print result tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := sweep.Load(gridPath)
		if err != nil {
			return err
		}

		if metricsPort > 0 {
			metrics.StartMetricsServer(metricsPort)
		}

		runner := sweep.Runner{
			Launcher: &engine.Launcher{
				Program:     enginePath,
				LauncherBin: mpirunPath,
				TracePath:   traceFile,
				Timeout:     trialTimeout,
				Logger:      logging.GetLogger(),
			},
			Logger:     logging.GetLogger(),
			OutputPath: resultsPath,
			Report:     report.Options{FailSentinel: failSentinel},
		}
		return runner.Run(context.Background(), spec)
	},
}

func init() {
	sweepCmd.Flags().StringVar(&gridPath, "grid", "sweep.hcl", "Sweep specification file")
	sweepCmd.Flags().StringVar(&enginePath, "engine", "build/debug/lightscanner", "Path to the engine binary")
	sweepCmd.Flags().StringVar(&mpirunPath, "mpirun", engine.DefaultLauncherBin, "Process-group launcher binary")
	sweepCmd.Flags().StringVar(&traceFile, "trace-file", engine.DefaultTraceFile, "Trace file the engine writes after a successful run")
	sweepCmd.Flags().DurationVar(&trialTimeout, "timeout", 0, "Per-trial timeout (0 waits forever)")
	sweepCmd.Flags().StringVar(&resultsPath, "out", "", "Write all trial results as JSON to this path")
	sweepCmd.Flags().BoolVar(&failSentinel, "fail-sentinel", false, "Print -1.000 instead of wall-clock time for failed trials")

	rootCmd.AddCommand(sweepCmd)
}
