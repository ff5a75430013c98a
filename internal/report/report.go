// Package report formats a batch of trial results for humans (a fixed
// width table) and for tooling (a JSON document).
package report

import (
	"fmt"
	"strings"

	"github.com/hxl1990/scanner/internal/trial"
)

// Options control how failed trials are rendered.
type Options struct {
	// FailSentinel prints -1.000 in the elapsed column of failed rows
	// instead of their wall-clock duration.
	FailSentinel bool
}

// AvgEvalTaskSeconds is the total duration of "task" intervals across
// all eval workers, averaged over the eval worker count, in seconds.
// The second return is false when the average is undefined: a failed
// trial, or a dump with no eval workers.
func AvgEvalTaskSeconds(result trial.Result) (float64, bool) {
	if result.Failed || result.Dump == nil {
		return 0, false
	}
	profiles := result.Dump.Profiles["eval"]
	if len(profiles) == 0 {
		return 0, false
	}
	var totalNS int64
	for _, p := range profiles {
		for _, iv := range p.Intervals {
			if iv.Key == "task" {
				totalNS += iv.EndNS - iv.StartNS
			}
		}
	}
	return float64(totalNS) / float64(len(profiles)) / 1e9, true
}

// Table renders one row per trial result under a centered title.
func Table(title string, results []trial.Result, opts Options) string {
	var b strings.Builder
	fmt.Fprintf(&b, " %s \n", center(title, 58))
	b.WriteString(" =========================================================== \n")
	b.WriteString(" Nodes | GPUs/n | Batch | Loaders | Total Time | Eval Time \n")
	for _, result := range results {
		cfg := result.Config
		elapsed := result.ElapsedSeconds
		if result.Failed && opts.FailSentinel {
			elapsed = -1
		}
		evalCol := "       n/a"
		if avg, ok := AvgEvalTaskSeconds(result); ok {
			evalCol = fmt.Sprintf("%9.3fs", avg)
		}
		fmt.Fprintf(&b, " %5d | %6d | %5d | %7d | %9.3fs | %s",
			cfg.NodeCount, cfg.GPUsPerNode, cfg.BatchSize, cfg.LoadWorkersPerNode,
			elapsed, evalCol)
		if result.Failed {
			b.WriteString(" FAILED")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func center(s string, width int) string {
	if len(s) >= width {
		return s
	}
	left := (width - len(s)) / 2
	right := width - len(s) - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}
