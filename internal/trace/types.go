// Package trace decodes the binary profiler dump written by the scanner
// engine at the end of a run. The dump is a single little-endian stream:
// a global start/end timestamp pair followed by three worker sections
// (load, decode, eval), each a uint8 worker count and that many worker
// records. Strings are null-terminated byte sequences.
package trace

import "fmt"

// Categories is the fixed section order of the dump. Workers are filed
// under the section they were read from, not their self-reported type.
var Categories = []string{"load", "decode", "eval"}

// Interval is a named span of work reported by one worker, in
// nanoseconds since the engine's clock origin.
type Interval struct {
	Key     string `json:"key"`
	StartNS int64  `json:"start_ns"`
	EndNS   int64  `json:"end_ns"`
}

// WorkerProfile holds every interval reported by one worker instance,
// in the order the worker produced them.
type WorkerProfile struct {
	Node       int64      `json:"node"`
	WorkerType string     `json:"worker_type"`
	WorkerNum  int64      `json:"worker_num"`
	Intervals  []Interval `json:"intervals"`
}

// ProfilerDump is the fully decoded trace file.
type ProfilerDump struct {
	StartNS  int64                      `json:"start_ns"`
	EndNS    int64                      `json:"end_ns"`
	Profiles map[string][]WorkerProfile `json:"profiles"`
}

// ElapsedSeconds is the engine-measured duration of the run.
func (d *ProfilerDump) ElapsedSeconds() float64 {
	return float64(d.EndNS-d.StartNS) / 1e9
}

// MalformedTraceError reports a structurally invalid trace buffer. Offset
// is the byte position at which decoding could not continue.
type MalformedTraceError struct {
	Offset int
	Reason string
}

func (e *MalformedTraceError) Error() string {
	return fmt.Sprintf("malformed trace at byte %d: %s", e.Offset, e.Reason)
}
