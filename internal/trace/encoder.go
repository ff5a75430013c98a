package trace

import (
	"bytes"
	"encoding/binary"
)

// Encode writes dump back into the engine's binary layout. It is the
// exact inverse of Decode and is used to build trace files for tests and
// tooling. Key dictionaries are rebuilt per worker, with indexes assigned
// in first-appearance order of the interval keys.
func Encode(dump *ProfilerDump) []byte {
	var b bytes.Buffer
	writeInt64(&b, dump.StartNS)
	writeInt64(&b, dump.EndNS)
	for _, category := range Categories {
		profiles := dump.Profiles[category]
		b.WriteByte(uint8(len(profiles)))
		for _, p := range profiles {
			encodeWorker(&b, p)
		}
	}
	return b.Bytes()
}

func encodeWorker(b *bytes.Buffer, p WorkerProfile) {
	writeInt64(b, p.Node)
	writeCString(b, p.WorkerType)
	writeInt64(b, p.WorkerNum)

	keyIndex := make(map[string]uint8)
	keyOrder := make([]string, 0)
	for _, iv := range p.Intervals {
		if _, ok := keyIndex[iv.Key]; !ok {
			keyIndex[iv.Key] = uint8(len(keyOrder))
			keyOrder = append(keyOrder, iv.Key)
		}
	}

	writeInt64(b, int64(len(keyOrder)))
	for _, name := range keyOrder {
		writeCString(b, name)
		b.WriteByte(keyIndex[name])
	}

	writeInt64(b, int64(len(p.Intervals)))
	for _, iv := range p.Intervals {
		b.WriteByte(keyIndex[iv.Key])
		writeInt64(b, iv.StartNS)
		writeInt64(b, iv.EndNS)
	}
}

func writeInt64(b *bytes.Buffer, v int64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], uint64(v))
	b.Write(tmp[:])
}

func writeCString(b *bytes.Buffer, s string) {
	b.WriteString(s)
	b.WriteByte(0)
}
