package link

import (
	"bytes"
	"io"
	"sync"
)

// Mock is an in-memory Port. Emit queues bytes for Read; Respond registers the bytes sent back
// when a given command line is written.
type Mock struct {
	reads chan []byte
	done  chan struct{}
	once  sync.Once

	mu        sync.Mutex
	written   bytes.Buffer
	leftover  []byte
	responses map[string][]byte
}

func NewMock() *Mock {
	return &Mock{
		reads:     make(chan []byte, 64),
		done:      make(chan struct{}),
		responses: make(map[string][]byte),
	}
}

// Emit queues b to be returned by a subsequent Read. It blocks once 64 chunks are pending.
func (m *Mock) Emit(b []byte) {
	select {
	case m.reads <- append([]byte(nil), b...):
	case <-m.done:
	}
}

// Respond makes a Write of exactly line queue resp for reading.
func (m *Mock) Respond(line string, resp []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[line] = resp
}

// Written returns everything written to the port so far.
func (m *Mock) Written() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.written.Bytes()...)
}

func (m *Mock) Read(b []byte) (int, error) {
	m.mu.Lock()
	if len(m.leftover) > 0 {
		n := copy(b, m.leftover)
		m.leftover = m.leftover[n:]
		m.mu.Unlock()
		return n, nil
	}
	m.mu.Unlock()

	select {
	case chunk := <-m.reads:
		n := copy(b, chunk)
		m.mu.Lock()
		m.leftover = chunk[n:]
		m.mu.Unlock()
		return n, nil
	case <-m.done:
		return 0, io.EOF
	}
}

func (m *Mock) Write(b []byte) (int, error) {
	select {
	case <-m.done:
		return 0, io.ErrClosedPipe
	default:
	}

	m.mu.Lock()
	m.written.Write(b)
	resp, ok := m.responses[string(b)]
	m.mu.Unlock()

	if ok {
		go m.Emit(resp)
	}
	return len(b), nil
}

func (m *Mock) Close() error {
	m.once.Do(func() { close(m.done) })
	return nil
}
