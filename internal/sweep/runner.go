package sweep

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/hxl1990/scanner/internal/logging"
	"github.com/hxl1990/scanner/internal/metrics"
	"github.com/hxl1990/scanner/internal/report"
	"github.com/hxl1990/scanner/internal/trace"
	"github.com/hxl1990/scanner/internal/trial"
)

// Runner executes every sweep in a spec, strictly sequentially: trials
// share the same GPU and node pool, so overlapping them would invalidate
// the timing comparison.
type Runner struct {
	Launcher trial.Launcher
	Logger   *slog.Logger
	// Out receives the formatted tables; defaults to stdout.
	Out io.Writer
	// OutputPath, when set, receives the full results as JSON.
	OutputPath string
	Report     report.Options
}

// SweepResult pairs a sweep name with its trial results, in trial order.
type SweepResult struct {
	Name    string         `json:"name"`
	Results []trial.Result `json:"results"`
}

// Run executes spec and prints one table per sweep. A nonzero engine
// exit or a malformed trace fails that trial and the batch continues;
// cancellation, launch failures, and a missing trace artifact after a
// zero exit stop the whole run, since they would repeat for every later
// configuration.
func (r *Runner) Run(ctx context.Context, spec *Spec) error {
	logger := r.Logger
	if logger == nil {
		logger = logging.GetLogger()
	}
	out := r.Out
	if out == nil {
		out = os.Stdout
	}

	ctxRun, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("signal received", logging.StringField("signal", sig.String()))
			cancel()
		case <-ctxRun.Done():
		}
	}()

	runner := trial.Runner{Launcher: r.Launcher, Logger: logger}

	var all []SweepResult
	for _, s := range spec.Sweeps {
		metrics.SweepInfo.WithLabelValues(s.Name).Set(1)
		results, err := r.runSweep(ctxRun, &runner, s, logger)
		metrics.SweepInfo.WithLabelValues(s.Name).Set(0)
		if err != nil {
			return err
		}
		all = append(all, SweepResult{Name: s.Name, Results: results})
		fmt.Fprint(out, report.Table(s.Name, results, r.Report))
	}

	if r.OutputPath != "" {
		if err := report.WriteJSON(r.OutputPath, all); err != nil {
			return err
		}
		logger.Info("results written", logging.StringField("path", r.OutputPath))
	}
	return nil
}

func (r *Runner) runSweep(ctx context.Context, runner *trial.Runner, s Sweep, logger *slog.Logger) ([]trial.Result, error) {
	configs := s.Configs()
	logger.Info("starting sweep",
		logging.StringField("sweep", s.Name),
		logging.IntField("trials", len(configs)),
	)

	results := make([]trial.Result, 0, len(configs))
	for _, cfg := range configs {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("sweep %q canceled: %w", s.Name, err)
		}

		result, err := runner.Execute(ctx, cfg)
		var malformed *trace.MalformedTraceError
		switch {
		case err == nil:
		case errors.As(err, &malformed):
			// A malformed trace kills the trial, not the batch: record
			// a failed row and move on.
			logger.Error("trial error", logging.ErrorField(err))
			metrics.ErrorsTotal.WithLabelValues("malformed_trace").Inc()
			result = trial.Result{Config: cfg, Failed: true, ExitCode: -1}
		default:
			// Anything else (cancellation, a launcher that cannot
			// start, an engine that claimed success but left no trace
			// artifact) would repeat for every later configuration, so
			// it stops the whole run.
			metrics.ErrorsTotal.WithLabelValues(errorType(err)).Inc()
			return nil, fmt.Errorf("sweep %q: %w", s.Name, err)
		}

		status := "success"
		if result.Failed {
			status = "failed"
		}
		metrics.TrialsTotal.WithLabelValues(status).Inc()
		metrics.TrialDuration.WithLabelValues(
			s.Name,
			strconv.Itoa(cfg.NodeCount),
			strconv.Itoa(cfg.GPUsPerNode),
			strconv.Itoa(cfg.BatchSize),
		).Set(result.ElapsedSeconds)

		results = append(results, result)
	}
	return results, nil
}

func errorType(err error) string {
	var missing *trial.MissingTraceFileError
	switch {
	case errors.As(err, &missing):
		return "missing_trace_file"
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "launch"
	}
}
