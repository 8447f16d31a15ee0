// Package tcd1304 drives a TCD1304 linear CCD acquisition board over its USB CDC link: it sends
// the ASCII control commands and turns the binary readout stream into validated frames.
//
// Events delivered on Sensor.Events are one of ccdframe.Frame, ccdframe.Rejection or Stalled.
package tcd1304

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/seagrayinc/tcdlink/internal/ccdframe"
	"github.com/seagrayinc/tcdlink/internal/command"
	"github.com/seagrayinc/tcdlink/internal/config"
	"github.com/seagrayinc/tcdlink/internal/link"
)

type (
	Frame     = ccdframe.Frame
	Rejection = ccdframe.Rejection
	Config    = config.Config
	Status    = command.StatusResponse
)

// EventBuffer is how many events wait for the consumer before new ones are dropped.
const EventBuffer = 64

// Stats is the frame engine's counters plus events the consumer was too slow to take.
type Stats struct {
	ccdframe.Stats
	EventsDropped uint64
}

// Stalled reports that acquisition is running but no valid frame arrived for the configured stall
// timeout. It is reported once per stall; the session keeps running.
type Stalled struct {
	Since time.Time
	Stats Stats
}

type Options struct {
	Config Config
	// Port overrides the USB link, e.g. with a replay or a mock.
	Port link.Port
}

// Sensor is one open acquisition session.
type Sensor struct {
	cfg    Config
	port   link.Port
	cmd    *command.Client
	events chan any

	mu        sync.Mutex
	engine    *ccdframe.Engine
	dropped   uint64
	running   bool
	lastValid time.Time
	stalled   bool
	err       error
}

// Open connects to the sensor and starts reading. The session ends when ctx is done or the link
// fails; Events is closed then.
func Open(ctx context.Context, opts Options) (*Sensor, error) {
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	engine, err := ccdframe.NewEngine(cfg.Frame)
	if err != nil {
		return nil, err
	}

	port := opts.Port
	if port == nil {
		name := cfg.SerialPort
		if name == "" {
			name, err = link.FindPort(cfg.VendorID, cfg.ProductID)
			if err != nil {
				return nil, fmt.Errorf("open sensor: %w", err)
			}
		}
		serialPort, err := link.OpenSerial(name, cfg.BaudRate)
		if err != nil {
			return nil, fmt.Errorf("open sensor: %w", err)
		}
		port = serialPort
	}

	cmd := command.NewClient(port)
	cmd.Timeout = cfg.CommandTimeout

	s := &Sensor{
		cfg:    cfg,
		port:   port,
		cmd:    cmd,
		events: make(chan any, EventBuffer),
		engine: engine,
	}

	go s.run(ctx, link.Poll(ctx, port, cfg.ReadSize))
	return s, nil
}

// Events streams frames, rejections and stalls. The read loop never waits for the consumer: once
// EventBuffer events are pending, further events are dropped and counted in Stats.EventsDropped.
func (s *Sensor) Events() <-chan any {
	return s.events
}

// Start resets the frame engine and begins acquisition. A configured integration time is sent
// first; firmware that does not implement it yet only produces a warning.
func (s *Sensor) Start(ctx context.Context) error {
	if s.cfg.IntegrationTime != 0 {
		if err := s.cmd.SetIntegrationTime(ctx, s.cfg.IntegrationTime); err != nil {
			var de *command.DeviceError
			if !errors.As(err, &de) || de.Code != command.CodeNotImplemented {
				return fmt.Errorf("set integration time: %w", err)
			}
			slog.Warn("integration time not applied", slog.Any("error", err))
		}
	}

	s.mu.Lock()
	s.engine.Reset()
	s.dropped = 0
	s.mu.Unlock()

	if err := s.cmd.Start(ctx); err != nil {
		return fmt.Errorf("start acquisition: %w", err)
	}

	s.mu.Lock()
	s.running = true
	s.lastValid = time.Now()
	s.stalled = false
	s.mu.Unlock()

	slog.Info("acquisition started")
	return nil
}

// Stop halts acquisition. Counters are kept until the next Start.
func (s *Sensor) Stop(ctx context.Context) error {
	if err := s.cmd.Stop(ctx); err != nil {
		return fmt.Errorf("stop acquisition: %w", err)
	}

	s.mu.Lock()
	s.running = false
	st := s.statsLocked()
	s.mu.Unlock()

	slog.Info("acquisition stopped",
		slog.Uint64("frames_valid", st.FramesValid),
		slog.Uint64("frames_rejected", st.FramesRejected),
		slog.Uint64("events_dropped", st.EventsDropped))
	return nil
}

func (s *Sensor) Status(ctx context.Context) (Status, error) {
	return s.cmd.Status(ctx)
}

func (s *Sensor) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statsLocked()
}

func (s *Sensor) statsLocked() Stats {
	return Stats{Stats: s.engine.Stats(), EventsDropped: s.dropped}
}

// Err returns the link error that ended the session, if any.
func (s *Sensor) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Sensor) Close() error {
	return s.port.Close()
}
