package trial

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hxl1990/scanner/internal/trace"
)

type fakeLauncher struct {
	result LaunchResult
	err    error
	calls  int
}

func (f *fakeLauncher) Run(ctx context.Context, cfg Config) (LaunchResult, error) {
	f.calls++
	return f.result, f.err
}

func validConfig() Config {
	return Config{
		VideoManifest:      "videos.txt",
		NodeCount:          1,
		GPUsPerNode:        2,
		BatchSize:          256,
		BatchesPerWorkItem: 4,
		TasksInQueuePerGPU: 4,
		LoadWorkersPerNode: 2,
	}
}

func writeTrace(t *testing.T, dump *trace.ProfilerDump) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profiler_0.bin")
	if err := os.WriteFile(path, trace.Encode(dump), 0o644); err != nil {
		t.Fatalf("write trace fixture: %v", err)
	}
	return path
}

func TestExecuteSuccessUsesEngineTiming(t *testing.T) {
	dump := &trace.ProfilerDump{
		StartNS: 500_000_000,
		EndNS:   3_000_000_000,
		Profiles: map[string][]trace.WorkerProfile{
			"load": {}, "decode": {}, "eval": {},
		},
	}
	launcher := &fakeLauncher{result: LaunchResult{
		ExitCode:  0,
		Wall:      17 * time.Second, // deliberately far from the engine's own measurement
		TracePath: writeTrace(t, dump),
	}}

	runner := Runner{Launcher: launcher}
	result, err := runner.Execute(context.Background(), validConfig())
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.Failed {
		t.Fatalf("expected success, got failed result")
	}
	if result.Dump == nil {
		t.Fatalf("expected dump on success")
	}
	if got, want := result.ElapsedSeconds, 2.5; got != want {
		t.Fatalf("expected engine-reported elapsed %v, got %v", want, got)
	}
}

func TestExecuteFailureSkipsDecoder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiler_0.bin")
	if err := os.WriteFile(path, []byte("not a trace"), 0o644); err != nil {
		t.Fatalf("write sentinel file: %v", err)
	}
	launcher := &fakeLauncher{result: LaunchResult{
		ExitCode:  1,
		Wall:      1500 * time.Millisecond,
		TracePath: path, // garbage on purpose: a failed trial must never read it
	}}

	runner := Runner{Launcher: launcher}
	result, err := runner.Execute(context.Background(), validConfig())
	if err != nil {
		t.Fatalf("failed trial must not be an error: %v", err)
	}
	if !result.Failed {
		t.Fatalf("expected failed result")
	}
	if result.Dump != nil {
		t.Fatalf("failed trial must not carry a dump")
	}
	if result.ExitCode != 1 {
		t.Fatalf("expected exit code 1, got %d", result.ExitCode)
	}
	if result.ElapsedSeconds != 1.5 {
		t.Fatalf("expected wall-clock elapsed 1.5, got %v", result.ElapsedSeconds)
	}
}

func TestExecuteMissingTraceFile(t *testing.T) {
	launcher := &fakeLauncher{result: LaunchResult{
		ExitCode:  0,
		TracePath: filepath.Join(t.TempDir(), "never_written.bin"),
	}}

	runner := Runner{Launcher: launcher}
	_, err := runner.Execute(context.Background(), validConfig())
	var missing *MissingTraceFileError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingTraceFileError, got %v", err)
	}
}

func TestExecuteMalformedTraceCarriesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiler_0.bin")
	if err := os.WriteFile(path, []byte{1, 2, 3}, 0o644); err != nil {
		t.Fatalf("write truncated trace: %v", err)
	}
	launcher := &fakeLauncher{result: LaunchResult{ExitCode: 0, TracePath: path}}

	runner := Runner{Launcher: launcher}
	_, err := runner.Execute(context.Background(), validConfig())
	var malformed *trace.MalformedTraceError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedTraceError, got %v", err)
	}
	for _, want := range []string{"nodes=1", "gpus=2", "batch=256"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q does not mention %s", err, want)
		}
	}
}

func TestExecuteRejectsInvalidConfig(t *testing.T) {
	launcher := &fakeLauncher{}
	runner := Runner{Launcher: launcher}

	cfg := validConfig()
	cfg.BatchSize = 0
	if _, err := runner.Execute(context.Background(), cfg); err == nil {
		t.Fatalf("expected validation error")
	}
	if launcher.calls != 0 {
		t.Fatalf("invalid config must not launch the engine")
	}
}

func TestExecuteLaunchErrorPropagates(t *testing.T) {
	launcher := &fakeLauncher{err: fmt.Errorf("mpirun: executable not found")}
	runner := Runner{Launcher: launcher}

	if _, err := runner.Execute(context.Background(), validConfig()); err == nil {
		t.Fatalf("expected launch error to propagate")
	}
}
