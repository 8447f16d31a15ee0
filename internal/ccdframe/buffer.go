package ccdframe

// streamBuffer accumulates link bytes. Bytes are appended at the tail and consumed from the head.
type streamBuffer struct {
	buf   []byte
	bound int

	// head is the absolute stream offset of buf[0].
	head uint64
}

func newStreamBuffer(bound int) *streamBuffer {
	return &streamBuffer{bound: bound}
}

func (b *streamBuffer) append(p []byte) {
	b.buf = append(b.buf, p...)
}

// consume drops the first n bytes. The caller guarantees n <= b.len().
func (b *streamBuffer) consume(n int) {
	if n <= 0 {
		return
	}
	b.head += uint64(n)
	if n == len(b.buf) {
		b.buf = b.buf[:0]
		return
	}
	// Shift in place so the backing array is reused instead of growing with every frame.
	m := copy(b.buf, b.buf[n:])
	b.buf = b.buf[:m]
}

func (b *streamBuffer) bytes() []byte { return b.buf }

func (b *streamBuffer) len() int { return len(b.buf) }

// trimToBound enforces the retention bound and returns how many bytes were dropped.
// pending is the offset of a located but incomplete candidate, or -1 when the buffer holds no
// start marker at all.
func (b *streamBuffer) trimToBound(pending int) int {
	if len(b.buf) <= b.bound {
		return 0
	}

	var drop int
	switch {
	case pending < 0:
		// Keep enough of the tail to still match a marker split across two reads.
		drop = len(b.buf) - (MarkerLength - 1)
	default:
		drop = min(len(b.buf)-b.bound, pending)
	}

	b.consume(drop)
	return drop
}

func (b *streamBuffer) reset() {
	b.buf = b.buf[:0]
	b.head = 0
}
