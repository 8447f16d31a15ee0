package ccdframe

import (
	"encoding/binary"
	"log/slog"
)

// Stats is a snapshot of the engine counters.
type Stats struct {
	FramesSeen         uint64
	FramesValid        uint64
	FramesRejected     uint64
	RejectedStructural uint64
	RejectedChecksum   uint64

	FramesMissed      uint64 // source frames lost between valid frames, from sequence gaps
	FramesRepeated    uint64 // valid frames carrying the previous frame's sequence counter
	SamplesOutOfRange uint64
	BytesDiscarded    uint64 // noise before a start marker
	BytesTrimmed      uint64 // dropped by the retention bound
	Buffered          int
}

// Engine turns successive link reads into validated frames. It never blocks and is not safe for
// concurrent use; a single goroutine must drive Poll.
type Engine struct {
	cfg       Config
	frameSize int
	buf       *streamBuffer
	stats     Stats

	lastSeq  uint16
	haveLast bool
}

func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		cfg:       cfg,
		frameSize: cfg.FrameSize(),
		buf:       newStreamBuffer(cfg.RetentionBound),
	}, nil
}

func (e *Engine) Config() Config { return e.cfg }

// Buffered reports how many bytes are held waiting for more input.
func (e *Engine) Buffered() int { return e.buf.len() }

func (e *Engine) Stats() Stats {
	s := e.stats
	s.Buffered = e.buf.len()
	return s
}

// Reset discards buffered bytes and zeroes all counters, as on a fresh acquisition session.
func (e *Engine) Reset() {
	e.buf.reset()
	e.stats = Stats{}
	e.lastSeq = 0
	e.haveLast = false
}

// Poll appends p to the stream and returns every frame and rejection that can be decided with
// the bytes buffered so far, in stream order. p may be empty.
func (e *Engine) Poll(p []byte) []Event {
	e.buf.append(p)

	var events []Event
	pending := -1
	for {
		res, s := locate(e.buf.bytes(), e.frameSize)
		if res == noCandidate {
			pending = -1
			break
		}
		if res == incomplete {
			pending = s
			break
		}

		if s > 0 {
			e.buf.consume(s)
			e.stats.BytesDiscarded += uint64(s)
		}

		offset := e.buf.head
		candidate := e.buf.bytes()[:e.frameSize]
		o, err := validate(e.cfg, candidate)
		e.stats.FramesSeen++

		switch o {
		case outcomeValid:
			f := e.decode(offset, candidate)
			e.stats.FramesValid++
			events = append(events, f)
		default:
			rej := Rejection{
				Offset:   offset,
				Err:      err,
				Consumed: advance(o, e.frameSize),
			}
			e.stats.FramesRejected++
			if o == outcomeStructural {
				rej.Reason = ReasonStructural
				e.stats.RejectedStructural++
			} else {
				rej.Reason = ReasonChecksum
				e.stats.RejectedChecksum++
			}
			slog.Debug("frame candidate rejected",
				slog.String("reason", rej.Reason.String()),
				slog.Uint64("offset", offset),
				slog.Any("error", err))
			events = append(events, rej)
		}

		e.buf.consume(advance(o, e.frameSize))
	}

	if n := e.buf.trimToBound(pending); n > 0 {
		e.stats.BytesTrimmed += uint64(n)
		slog.Debug("stream buffer trimmed", slog.Int("dropped", n), slog.Int("buffered", e.buf.len()))
	}

	return events
}

// decode copies a validated candidate into a Frame. The candidate aliases the stream buffer and
// must not escape.
func (e *Engine) decode(offset uint64, candidate []byte) Frame {
	f := Frame{
		Offset:   offset,
		Sequence: binary.LittleEndian.Uint16(candidate[4:6]),
		Samples:  make([]uint16, e.cfg.SampleCount),
		Checksum: binary.LittleEndian.Uint16(candidate[len(candidate)-2:]),
	}

	payload := candidate[HeaderSize:e.cfg.endMarkerOffset()]
	for i := range f.Samples {
		v := binary.LittleEndian.Uint16(payload[2*i:])
		if v < e.cfg.SampleMin || v > e.cfg.SampleMax {
			f.OutOfRange++
		}
		f.Samples[i] = v
	}
	e.stats.SamplesOutOfRange += uint64(f.OutOfRange)

	// The counter wraps 65535 -> 0, so the gap is computed modulo 2^16. A repeated counter is a
	// retransmission, not a full lap of missed frames.
	switch {
	case !e.haveLast:
	case f.Sequence == e.lastSeq:
		e.stats.FramesRepeated++
	default:
		f.Missed = int(f.Sequence - e.lastSeq - 1)
		e.stats.FramesMissed += uint64(f.Missed)
	}
	e.lastSeq = f.Sequence
	e.haveLast = true

	return f
}
