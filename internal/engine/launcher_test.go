package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hxl1990/scanner/internal/trial"

	"github.com/google/go-cmp/cmp"
)

func testConfig() trial.Config {
	return trial.Config{
		VideoManifest:      "kcam_videos_small.txt",
		NodeCount:          2,
		GPUsPerNode:        4,
		BatchSize:          256,
		BatchesPerWorkItem: 4,
		TasksInQueuePerGPU: 4,
		LoadWorkersPerNode: 8,
	}
}

func TestArgs(t *testing.T) {
	l := Launcher{Program: "/opt/scanner/lightscanner"}
	want := []string{
		"-n", "2",
		"--bind-to", "none",
		"/opt/scanner/lightscanner",
		"--video_paths_file", "kcam_videos_small.txt",
		"--gpus_per_node", "4",
		"--batch_size", "256",
		"--batches_per_work_item", "4",
		"--tasks_in_queue_per_gpu", "4",
		"--load_workers_per_node", "8",
	}
	if diff := cmp.Diff(want, l.Args(testConfig())); diff != "" {
		t.Fatalf("argv mismatch (-want +got):\n%s", diff)
	}
}

func TestRunCapturesZeroExit(t *testing.T) {
	l := Launcher{Program: "engine", LauncherBin: "true"}
	result, err := l.Run(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.ExitCode != 0 {
		t.Fatalf("expected exit 0, got %d", result.ExitCode)
	}
	if result.TracePath != DefaultTraceFile {
		t.Fatalf("expected default trace path, got %q", result.TracePath)
	}
	if result.Wall <= 0 {
		t.Fatalf("expected positive wall time, got %v", result.Wall)
	}
}

func TestRunCapturesNonzeroExit(t *testing.T) {
	l := Launcher{Program: "engine", LauncherBin: "false"}
	result, err := l.Run(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("nonzero exit must not be an error: %v", err)
	}
	if result.ExitCode == 0 {
		t.Fatalf("expected nonzero exit code")
	}
}

func TestRunMissingLauncherBinary(t *testing.T) {
	l := Launcher{
		Program:     "engine",
		LauncherBin: filepath.Join(t.TempDir(), "no_such_mpirun"),
	}
	if _, err := l.Run(context.Background(), testConfig()); err == nil {
		t.Fatalf("expected error for missing launcher binary")
	}
}

func TestRunRequiresProgram(t *testing.T) {
	l := Launcher{}
	if _, err := l.Run(context.Background(), testConfig()); err == nil {
		t.Fatalf("expected error for empty program path")
	}
}

func TestRunTimeout(t *testing.T) {
	script := filepath.Join(t.TempDir(), "slow_launcher.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\nsleep 5\n"), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}

	l := Launcher{Program: "engine", LauncherBin: script, Timeout: 50 * time.Millisecond}
	start := time.Now()
	_, err := l.Run(context.Background(), testConfig())
	if err == nil {
		t.Fatalf("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Fatalf("timeout did not kill the process, took %v", elapsed)
	}
}

func TestRunOverridesTracePath(t *testing.T) {
	l := Launcher{Program: "engine", LauncherBin: "true", TracePath: "out/custom.bin"}
	result, err := l.Run(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.TracePath != "out/custom.bin" {
		t.Fatalf("expected overridden trace path, got %q", result.TracePath)
	}
}
