package trace

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// reader is a forward-only cursor over a trace buffer. Every read
// validates the remaining length and fails with a MalformedTraceError
// carrying the current offset; there is no backtracking.
type reader struct {
	buf []byte
	off int
}

func newReader(buf []byte) *reader {
	return &reader{buf: buf}
}

func (r *reader) remaining() int {
	return len(r.buf) - r.off
}

func (r *reader) fail(format string, args ...any) error {
	return &MalformedTraceError{Offset: r.off, Reason: fmt.Sprintf(format, args...)}
}

func (r *reader) readInt64(what string) (int64, error) {
	if r.remaining() < 8 {
		return 0, r.fail("%s: need 8 bytes, have %d", what, r.remaining())
	}
	v := int64(binary.LittleEndian.Uint64(r.buf[r.off:]))
	r.off += 8
	return v, nil
}

func (r *reader) readUint8(what string) (uint8, error) {
	if r.remaining() < 1 {
		return 0, r.fail("%s: buffer exhausted", what)
	}
	v := r.buf[r.off]
	r.off++
	return v, nil
}

func (r *reader) readString(what string) (string, error) {
	i := bytes.IndexByte(r.buf[r.off:], 0)
	if i < 0 {
		return "", r.fail("%s: unterminated string", what)
	}
	s := string(r.buf[r.off : r.off+i])
	r.off += i + 1
	return s, nil
}

// readCount reads an int64 length prefix and rejects values that cannot fit
// in the remaining buffer even at the minimum record width. This keeps a
// corrupt count from driving a huge allocation before the overrun is hit.
func (r *reader) readCount(what string, minRecordBytes int) (int64, error) {
	n, err := r.readInt64(what)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, r.fail("%s: negative count %d", what, n)
	}
	if n > int64(r.remaining())/int64(minRecordBytes) {
		return 0, r.fail("%s: count %d overruns buffer (%d bytes left)", what, n, r.remaining())
	}
	return n, nil
}
