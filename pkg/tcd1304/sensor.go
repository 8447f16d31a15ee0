package tcd1304

import (
	"context"
	"log/slog"
	"time"

	"github.com/seagrayinc/tcdlink/internal/ccdframe"
	"github.com/seagrayinc/tcdlink/internal/command"
	"github.com/seagrayinc/tcdlink/internal/link"
)

func (s *Sensor) run(ctx context.Context, chunks <-chan link.Chunk) {
	defer close(s.events)

	var tick <-chan time.Time
	if s.cfg.StallTimeout > 0 {
		ticker := time.NewTicker(max(s.cfg.StallTimeout/4, 10*time.Millisecond))
		defer ticker.Stop()
		tick = ticker.C
	}

	var scanner command.Scanner
	for {
		select {
		case <-ctx.Done():
			return

		case c, ok := <-chunks:
			if !ok {
				return
			}
			if c.Err != nil {
				s.mu.Lock()
				s.err = c.Err
				s.mu.Unlock()
				return
			}

			for _, line := range scanner.Feed(c.Data) {
				s.cmd.Deliver(line)
			}
			for _, ev := range s.poll(c.Data) {
				s.emit(ev)
			}

		case now := <-tick:
			if st, ok := s.checkStall(now); ok {
				s.emit(st)
			}
		}
	}
}

func (s *Sensor) poll(data []byte) []ccdframe.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	events := s.engine.Poll(data)
	for _, ev := range events {
		switch v := ev.(type) {
		case ccdframe.Frame:
			if s.stalled {
				slog.Info("link recovered", slog.Duration("stalled_for", time.Since(s.lastValid)))
			}
			s.lastValid = time.Now()
			s.stalled = false
			if v.Missed > 0 {
				slog.Warn("frames lost upstream", slog.Int("sequence", int(v.Sequence)), slog.Int("missed", v.Missed))
			}
			if v.OutOfRange > 0 {
				slog.Warn("samples out of range", slog.Int("sequence", int(v.Sequence)), slog.Int("count", v.OutOfRange))
			}
		case ccdframe.Rejection:
			slog.Warn("frame rejected",
				slog.String("reason", v.Reason.String()),
				slog.Uint64("offset", v.Offset),
				slog.Any("error", v.Err))
		}
	}
	return events
}

func (s *Sensor) checkStall(now time.Time) (Stalled, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || s.stalled || now.Sub(s.lastValid) < s.cfg.StallTimeout {
		return Stalled{}, false
	}
	s.stalled = true
	st := Stalled{Since: s.lastValid, Stats: s.statsLocked()}
	slog.Warn("no valid frame within stall timeout",
		slog.Duration("timeout", s.cfg.StallTimeout),
		slog.Uint64("frames_rejected", st.Stats.FramesRejected),
		slog.Int("buffered", st.Stats.Buffered))
	return st, true
}

// emit queues ev without blocking so command responses keep flowing while the consumer is busy.
func (s *Sensor) emit(ev any) {
	select {
	case s.events <- ev:
	default:
		s.mu.Lock()
		s.dropped++
		n := s.dropped
		s.mu.Unlock()
		if n == 1 || n%100 == 0 {
			slog.Warn("event consumer too slow, dropping events", slog.Uint64("dropped", n))
		}
	}
}
