package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// DefaultTimeout is how long the host scripts wait for a response line.
const DefaultTimeout = time.Second

// Client issues one command at a time. It never reads the link itself: whoever owns the read loop
// hands it response lines through Deliver, usually from a Scanner fed with the same chunks as the
// frame engine.
type Client struct {
	w       io.Writer
	Timeout time.Duration

	mu    sync.Mutex // serializes commands
	lines chan string
}

func NewClient(w io.Writer) *Client {
	return &Client{
		w:       w,
		Timeout: DefaultTimeout,
		lines:   make(chan string, 8),
	}
}

// Deliver passes a response line read from the link to the waiting command. Lines nobody waits
// for are dropped once the backlog is full.
func (c *Client) Deliver(line string) {
	select {
	case c.lines <- line:
	default:
		slog.Warn("dropping unsolicited response", slog.String("line", line))
	}
}

// Do writes cmd and waits for its response line. ERROR: responses are returned as *DeviceError.
func (c *Client) Do(ctx context.Context, cmd Command) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.drain()

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	slog.Debug("sending command", slog.String("command", string(cmd)))
	if _, err := c.w.Write(cmd.Bytes()); err != nil {
		return "", fmt.Errorf("send %s: %w", cmd, err)
	}

	select {
	case line := <-c.lines:
		slog.Debug("command response", slog.String("command", string(cmd)), slog.String("response", line))
		if strings.HasPrefix(line, ResponseError) {
			return line, parseDeviceError(line)
		}
		return line, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%s: %w", cmd, ErrTimeout)
		}
		return "", ctx.Err()
	}
}

// drain discards responses left over from earlier commands that timed out.
func (c *Client) drain() {
	for {
		select {
		case line := <-c.lines:
			slog.Debug("discarding stale response", slog.String("line", line))
		default:
			return
		}
	}
}
