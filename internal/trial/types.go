package trial

import (
	"context"
	"fmt"
	"time"

	"github.com/hxl1990/scanner/internal/trace"
)

// Config is one benchmark configuration, fixed before the trial runs.
type Config struct {
	VideoManifest      string `json:"video_manifest"`
	NodeCount          int    `json:"node_count"`
	GPUsPerNode        int    `json:"gpus_per_node"`
	BatchSize          int    `json:"batch_size"`
	BatchesPerWorkItem int    `json:"batches_per_work_item"`
	TasksInQueuePerGPU int    `json:"tasks_in_queue_per_gpu"`
	LoadWorkersPerNode int    `json:"load_workers_per_node"`
}

func (c Config) Validate() error {
	if c.VideoManifest == "" {
		return fmt.Errorf("video manifest path is required")
	}
	for _, f := range []struct {
		name  string
		value int
	}{
		{"node_count", c.NodeCount},
		{"gpus_per_node", c.GPUsPerNode},
		{"batch_size", c.BatchSize},
		{"batches_per_work_item", c.BatchesPerWorkItem},
		{"tasks_in_queue_per_gpu", c.TasksInQueuePerGPU},
		{"load_workers_per_node", c.LoadWorkersPerNode},
	} {
		if f.value <= 0 {
			return fmt.Errorf("%s must be > 0, got %d", f.name, f.value)
		}
	}
	return nil
}

func (c Config) String() string {
	return fmt.Sprintf("nodes=%d gpus=%d batch=%d loaders=%d manifest=%s",
		c.NodeCount, c.GPUsPerNode, c.BatchSize, c.LoadWorkersPerNode, c.VideoManifest)
}

// LaunchResult is what a launcher observes of one engine run: the exit
// code, the wall-clock duration of the blocking launch, and the path
// where the engine leaves its profiler trace on success.
type LaunchResult struct {
	ExitCode  int
	Wall      time.Duration
	TracePath string
}

// Launcher starts the engine for one configuration and blocks until the
// process group terminates. A nonzero engine exit code is reported in
// LaunchResult, not as an error; the error return is reserved for the
// launch itself going wrong (binary missing, context canceled).
type Launcher interface {
	Run(ctx context.Context, cfg Config) (LaunchResult, error)
}

// Result is the tagged outcome of one trial. Dump is nil exactly when
// Failed is set. ElapsedSeconds is the engine-reported duration on
// success and the wall-clock duration on failure.
type Result struct {
	Config         Config              `json:"config"`
	ElapsedSeconds float64             `json:"elapsed_seconds"`
	Failed         bool                `json:"failed"`
	ExitCode       int                 `json:"exit_code"`
	Dump           *trace.ProfilerDump `json:"dump,omitempty"`
}

// MissingTraceFileError marks the fatal inconsistency of an engine run
// that exited zero but left no readable trace artifact.
type MissingTraceFileError struct {
	Path string
	Err  error
}

func (e *MissingTraceFileError) Error() string {
	return fmt.Sprintf("engine exited 0 but trace file %s is unreadable: %v", e.Path, e.Err)
}

func (e *MissingTraceFileError) Unwrap() error {
	return e.Err
}
