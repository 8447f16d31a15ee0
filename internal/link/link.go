// Package link provides the byte transports a TCD1304 host reads frames from: the sensor's USB CDC
// endpoint, a captured stream replayed from disk, and an in-memory mock.
package link

import (
	"context"
	"errors"
	"io"
	"log/slog"
)

// DefaultReadSize matches the 4096-byte reads of the host viewer scripts.
const DefaultReadSize = 4096

// Port is an open, bidirectional byte link to the sensor. Binary frames and ASCII command
// responses share the same Port.
type Port interface {
	Read([]byte) (int, error)
	Write([]byte) (int, error)
	Close() error
}

// Chunk is one read from a Port. Err is set on the last chunk when reading stopped for any reason
// other than context cancellation.
type Chunk struct {
	Data []byte
	Err  error
}

// Poll starts a goroutine that reads from p until ctx is done or a read fails, emitting every
// non-empty read on the returned channel. The port is closed when ctx is done so a blocked Read
// returns.
func Poll(ctx context.Context, p Port, readSize int) <-chan Chunk {
	if readSize <= 0 {
		readSize = DefaultReadSize
	}
	out := make(chan Chunk)

	go func() {
		<-ctx.Done()
		_ = p.Close()
	}()

	go func() {
		defer close(out)

		for {
			buf := make([]byte, readSize)
			n, err := p.Read(buf)
			if n > 0 {
				select {
				case out <- Chunk{Data: buf[:n]}:
				case <-ctx.Done():
					return
				}
			}
			if err == nil {
				continue
			}

			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, io.EOF) {
				slog.Info("link reached end of stream")
			} else {
				slog.Warn("reading link failed", slog.Any("error", err))
			}
			select {
			case out <- Chunk{Err: err}:
			case <-ctx.Done():
			}
			return
		}
	}()
	return out
}
