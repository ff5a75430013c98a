// Package engine launches the scanner engine as an mpirun process group
// and reports what can be observed from outside: exit code, wall-clock
// duration, and the trace artifact path.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"time"

	"github.com/hxl1990/scanner/internal/logging"
	"github.com/hxl1990/scanner/internal/trial"
)

const (
	// DefaultTraceFile is the fixed filename the engine writes its
	// profiler dump to, relative to the working directory of the run.
	DefaultTraceFile = "profiler_0.bin"

	DefaultLauncherBin = "mpirun"
)

// Launcher runs the engine binary under an MPI process launcher. The
// zero value is not usable; Program is required.
type Launcher struct {
	// Program is the path to the engine binary.
	Program string
	// LauncherBin is the process-group launcher, normally mpirun.
	LauncherBin string
	// TracePath overrides where the engine's trace file is expected.
	TracePath string
	// Timeout bounds one engine run; zero means no timeout and a hung
	// engine blocks the harness.
	Timeout time.Duration

	Logger *slog.Logger
}

// Args builds the full launcher argv for one configuration, mirroring
// the engine's command-line contract.
func (l *Launcher) Args(cfg trial.Config) []string {
	return []string{
		"-n", strconv.Itoa(cfg.NodeCount),
		"--bind-to", "none",
		l.Program,
		"--video_paths_file", cfg.VideoManifest,
		"--gpus_per_node", strconv.Itoa(cfg.GPUsPerNode),
		"--batch_size", strconv.Itoa(cfg.BatchSize),
		"--batches_per_work_item", strconv.Itoa(cfg.BatchesPerWorkItem),
		"--tasks_in_queue_per_gpu", strconv.Itoa(cfg.TasksInQueuePerGPU),
		"--load_workers_per_node", strconv.Itoa(cfg.LoadWorkersPerNode),
	}
}

// Run blocks until the process group terminates and reports its exit
// code and wall-clock duration. Engine output is discarded.
func (l *Launcher) Run(ctx context.Context, cfg trial.Config) (trial.LaunchResult, error) {
	if l.Program == "" {
		return trial.LaunchResult{}, fmt.Errorf("engine program path is required")
	}
	logger := l.Logger
	if logger == nil {
		logger = logging.GetLogger()
	}
	launcherBin := l.LauncherBin
	if launcherBin == "" {
		launcherBin = DefaultLauncherBin
	}
	tracePath := l.TracePath
	if tracePath == "" {
		tracePath = DefaultTraceFile
	}

	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, launcherBin, l.Args(cfg)...)
	cmd.Stdout = nil
	cmd.Stderr = nil

	logger.Info("launching engine",
		logging.StringField("launcher", launcherBin),
		logging.StringField("config", cfg.String()),
	)

	start := time.Now()
	err := cmd.Run()
	wall := time.Since(start)

	result := trial.LaunchResult{Wall: wall, TracePath: tracePath}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, fmt.Errorf("engine run aborted after %s: %w", wall.Round(time.Millisecond), ctxErr)
		}
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return result, fmt.Errorf("launch engine: %w", err)
		}
		result.ExitCode = exitErr.ExitCode()
	}
	return result, nil
}
