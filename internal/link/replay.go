package link

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// Replay serves a captured link stream from a file. Writes are accepted and discarded so the
// command client can run against a capture.
type Replay struct {
	f        *os.File
	interval time.Duration

	mu     sync.Mutex
	closed bool
	last   time.Time
}

// OpenReplay opens path for replay. A non-zero interval paces successive reads the way a live link
// delivers them; zero replays as fast as the reader pulls.
func OpenReplay(path string, interval time.Duration) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open replay: %w", err)
	}
	return &Replay{f: f, interval: interval}, nil
}

func (r *Replay) Read(b []byte) (int, error) {
	if r.interval > 0 {
		r.mu.Lock()
		wait := r.interval - time.Since(r.last)
		r.mu.Unlock()
		if wait > 0 {
			time.Sleep(wait)
		}
		r.mu.Lock()
		r.last = time.Now()
		r.mu.Unlock()
	}
	return r.f.Read(b)
}

func (r *Replay) Write(b []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return 0, os.ErrClosed
	}
	return len(b), nil
}

func (r *Replay) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	return r.f.Close()
}
