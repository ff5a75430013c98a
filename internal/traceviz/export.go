// Package traceviz converts a decoded profiler dump into the trace-event
// JSON format understood by chrome://tracing and Perfetto.
package traceviz

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/hxl1990/scanner/internal/trace"
)

// Event is one object of the trace-event array: either a thread-metadata
// record (ph "M") or a complete event (ph "X").
type Event struct {
	Name string         `json:"name"`
	Cat  string         `json:"cat,omitempty"`
	Ph   string         `json:"ph"`
	Ts   int64          `json:"ts,omitempty"`
	Dur  int64          `json:"dur,omitempty"`
	Pid  int64          `json:"pid"`
	Tid  int64          `json:"tid"`
	Args map[string]any `json:"args"`
}

const exportPid = 1

// Events flattens dump into a deterministic event sequence. Thread ids
// are allocated in fixed category order (load, decode, eval), then in
// worker list order within a category. Each worker contributes one
// metadata event naming its thread "<category>_<index>", followed by one
// complete event per interval. Timestamps are nanoseconds truncated to
// microseconds.
func Events(dump *trace.ProfilerDump) []Event {
	var events []Event
	nextTid := int64(0)
	for _, category := range trace.Categories {
		for i, prof := range dump.Profiles[category] {
			tid := nextTid
			nextTid++
			events = append(events, Event{
				Name: "thread_name",
				Ph:   "M",
				Pid:  exportPid,
				Tid:  tid,
				Args: map[string]any{
					"name": fmt.Sprintf("%s_%d", category, i),
				},
			})
			for _, iv := range prof.Intervals {
				events = append(events, Event{
					Name: iv.Key,
					Cat:  category,
					Ph:   "X",
					Ts:   iv.StartNS / 1000,
					Dur:  (iv.EndNS - iv.StartNS) / 1000,
					Pid:  exportPid,
					Tid:  tid,
					Args: map[string]any{},
				})
			}
		}
	}
	return events
}

// Marshal renders the event array as a JSON document.
func Marshal(dump *trace.ProfilerDump) ([]byte, error) {
	events := Events(dump)
	if events == nil {
		events = []Event{}
	}
	return json.Marshal(events)
}

// Write renders dump and replaces any existing file at path.
func Write(path string, dump *trace.ProfilerDump) error {
	data, err := Marshal(dump)
	if err != nil {
		return fmt.Errorf("marshal trace events: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write trace document: %w", err)
	}
	return nil
}
