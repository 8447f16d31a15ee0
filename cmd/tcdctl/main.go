package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/seagrayinc/tcdlink/internal/config"
	"github.com/seagrayinc/tcdlink/internal/export"
	"github.com/seagrayinc/tcdlink/internal/link"
	"github.com/seagrayinc/tcdlink/internal/logging"
	"github.com/seagrayinc/tcdlink/pkg/tcd1304"
)

func main() {
	var (
		configPath     = flag.String("config", "", "TOML config file")
		replayPath     = flag.String("replay", "", "read a captured stream from this file instead of USB")
		replayInterval = flag.Duration("replay-interval", 0, "delay between replayed reads")
		maxFrames      = flag.Int("frames", 0, "stop after this many valid frames (0 = run until interrupted)")
		csvDir         = flag.String("csv", "", "write every valid frame as CSV into this directory")
		statsEvery     = flag.Duration("stats-every", 5*time.Second, "print counters at this interval (0 = never)")
		statusOnly     = flag.Bool("status", false, "query the sensor status and exit")
	)
	flag.Parse()

	logging.ConfigureRuntime()

	if err := run(*configPath, *replayPath, *replayInterval, *maxFrames, *csvDir, *statsEvery, *statusOnly); err != nil {
		slog.Error("tcdctl failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(configPath, replayPath string, replayInterval time.Duration, maxFrames int, csvDir string, statsEvery time.Duration, statusOnly bool) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	if csvDir != "" {
		if err := os.MkdirAll(csvDir, 0o755); err != nil {
			return fmt.Errorf("create csv dir: %w", err)
		}
	}

	sigCtx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM, syscall.SIGINT,
	)
	defer stop()

	// The session outlives the signal so STOP can still be sent after an interrupt.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := tcd1304.Options{Config: cfg}
	replay := replayPath != ""
	if replay {
		r, err := link.OpenReplay(replayPath, replayInterval)
		if err != nil {
			return err
		}
		opts.Port = r
	}

	s, err := tcd1304.Open(ctx, opts)
	if err != nil {
		return err
	}
	defer s.Close()

	if statusOnly {
		st, err := s.Status(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("state=%s integration_time_us=%d\n", st.State, st.IntegrationTimeUS)
		return nil
	}

	if !replay {
		if err := s.Start(ctx); err != nil {
			return err
		}
	}

	var tick <-chan time.Time
	if statsEvery > 0 {
		ticker := time.NewTicker(statsEvery)
		defer ticker.Stop()
		tick = ticker.C
	}

	valid := 0
loop:
	for {
		select {
		case <-sigCtx.Done():
			break loop

		case <-tick:
			printStats(s.Stats())

		case ev, ok := <-s.Events():
			if !ok {
				break loop
			}
			switch e := ev.(type) {
			case tcd1304.Frame:
				valid++
				fmt.Printf("frame seq=%d offset=%d samples=%d missed=%d out_of_range=%d\n",
					e.Sequence, e.Offset, len(e.Samples), e.Missed, e.OutOfRange)
				if csvDir != "" {
					path, err := export.SaveCSV(csvDir, e, cfg.Frame.SampleMax)
					if err != nil {
						return err
					}
					slog.Debug("frame saved", slog.String("path", path))
				}
				if maxFrames > 0 && valid >= maxFrames {
					break loop
				}
			case tcd1304.Rejection:
				fmt.Printf("rejected offset=%d reason=%s skipped=%d: %v\n", e.Offset, e.Reason, e.Consumed, e.Err)
			case tcd1304.Stalled:
				fmt.Printf("stalled: no valid frame since %s\n", e.Since.Format(time.RFC3339))
			}
		}
	}

	if !replay {
		stopCtx, stopCancel := context.WithTimeout(ctx, 2*time.Second)
		defer stopCancel()
		if err := s.Stop(stopCtx); err != nil {
			slog.Warn("stop failed", slog.Any("error", err))
		}
	}

	printStats(s.Stats())

	if err := s.Err(); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func printStats(st tcd1304.Stats) {
	fmt.Printf("seen=%d valid=%d rejected=%d (structural=%d checksum=%d) missed=%d out_of_range=%d discarded=%dB trimmed=%dB buffered=%dB dropped=%d\n",
		st.FramesSeen, st.FramesValid, st.FramesRejected, st.RejectedStructural, st.RejectedChecksum,
		st.FramesMissed, st.SamplesOutOfRange, st.BytesDiscarded, st.BytesTrimmed, st.Buffered, st.EventsDropped)
}
