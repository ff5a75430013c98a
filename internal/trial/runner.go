// Package trial executes one benchmark configuration end to end: launch
// the engine, wait for it, and on success recover the engine-reported
// timing from the trace file it leaves behind.
package trial

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/hxl1990/scanner/internal/logging"
	"github.com/hxl1990/scanner/internal/trace"
)

type Runner struct {
	Launcher Launcher
	Logger   *slog.Logger
}

// Execute runs one trial. A nonzero engine exit code produces a failed
// Result carrying the wall-clock duration; it is not an error, so a
// batch can continue with the next configuration. An engine that exits
// zero without leaving a readable trace file, or leaves a malformed one,
// is an error.
func (r *Runner) Execute(ctx context.Context, cfg Config) (Result, error) {
	if r.Launcher == nil {
		return Result{}, fmt.Errorf("launcher is required")
	}
	logger := r.Logger
	if logger == nil {
		logger = logging.GetLogger()
	}
	if err := cfg.Validate(); err != nil {
		return Result{}, fmt.Errorf("invalid trial config (%s): %w", cfg, err)
	}

	logger.Info("running trial", logging.StringField("config", cfg.String()))

	launch, err := r.Launcher.Run(ctx, cfg)
	if err != nil {
		return Result{}, fmt.Errorf("trial (%s): %w", cfg, err)
	}

	if launch.ExitCode != 0 {
		logger.Info("trial failed",
			logging.IntField("exit_code", launch.ExitCode),
			logging.DurationField("wall", launch.Wall),
		)
		return Result{
			Config:         cfg,
			ElapsedSeconds: launch.Wall.Seconds(),
			Failed:         true,
			ExitCode:       launch.ExitCode,
		}, nil
	}

	buf, err := os.ReadFile(launch.TracePath)
	if err != nil {
		return Result{}, &MissingTraceFileError{Path: launch.TracePath, Err: err}
	}
	dump, err := trace.Decode(buf)
	if err != nil {
		return Result{}, fmt.Errorf("trial (%s): decode %s: %w", cfg, launch.TracePath, err)
	}

	elapsed := dump.ElapsedSeconds()
	logger.Info("trial succeeded",
		logging.StringField("elapsed", fmt.Sprintf("%.3fs", elapsed)),
		logging.DurationField("wall", launch.Wall),
	)
	return Result{
		Config:         cfg,
		ElapsedSeconds: elapsed,
		Dump:           dump,
	}, nil
}
