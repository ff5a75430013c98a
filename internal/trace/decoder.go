package trace

import (
	"fmt"
	"os"
)

// Decode parses a complete profiler dump from buf. The whole buffer must
// be resident; decoding is sequential and single-pass. Any truncation,
// count overrun, or dangling key index fails with a MalformedTraceError.
func Decode(buf []byte) (*ProfilerDump, error) {
	r := newReader(buf)

	start, err := r.readInt64("global start time")
	if err != nil {
		return nil, err
	}
	end, err := r.readInt64("global end time")
	if err != nil {
		return nil, err
	}

	dump := &ProfilerDump{
		StartNS:  start,
		EndNS:    end,
		Profiles: make(map[string][]WorkerProfile, len(Categories)),
	}
	for _, category := range Categories {
		n, err := r.readUint8(category + " worker count")
		if err != nil {
			return nil, err
		}
		profiles := make([]WorkerProfile, 0, n)
		for i := 0; i < int(n); i++ {
			p, err := decodeWorker(r)
			if err != nil {
				return nil, fmt.Errorf("%s worker %d: %w", category, i, err)
			}
			profiles = append(profiles, p)
		}
		dump.Profiles[category] = profiles
	}
	return dump, nil
}

// DecodeFile reads and decodes the trace file left by an engine run.
func DecodeFile(path string) (*ProfilerDump, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read trace file: %w", err)
	}
	dump, err := Decode(buf)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return dump, nil
}

func decodeWorker(r *reader) (WorkerProfile, error) {
	var p WorkerProfile
	var err error

	if p.Node, err = r.readInt64("node"); err != nil {
		return p, err
	}
	if p.WorkerType, err = r.readString("worker type"); err != nil {
		return p, err
	}
	if p.WorkerNum, err = r.readInt64("worker number"); err != nil {
		return p, err
	}

	// Each key entry is at least a terminator byte plus a uint8 index.
	numKeys, err := r.readCount("key count", 2)
	if err != nil {
		return p, err
	}
	keys := make(map[uint8]string, numKeys)
	for i := int64(0); i < numKeys; i++ {
		name, err := r.readString("key name")
		if err != nil {
			return p, err
		}
		idx, err := r.readUint8("key index")
		if err != nil {
			return p, err
		}
		keys[idx] = name
	}

	numIntervals, err := r.readCount("interval count", 17)
	if err != nil {
		return p, err
	}
	p.Intervals = make([]Interval, 0, numIntervals)
	for i := int64(0); i < numIntervals; i++ {
		idx, err := r.readUint8("interval key index")
		if err != nil {
			return p, err
		}
		key, ok := keys[idx]
		if !ok {
			return p, r.fail("interval references unknown key index %d", idx)
		}
		startNS, err := r.readInt64("interval start")
		if err != nil {
			return p, err
		}
		endNS, err := r.readInt64("interval end")
		if err != nil {
			return p, err
		}
		p.Intervals = append(p.Intervals, Interval{Key: key, StartNS: startNS, EndNS: endNS})
	}
	return p, nil
}
