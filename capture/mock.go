package capture

import (
	"io"
	"sync"
	"time"
)

// MockSource is a scripted Source for tests and for the degraded "audio
// disabled" mode entered when no real device can be opened. It serves
// queued chunks in order and returns io.EOF when the script runs out.
type MockSource struct {
	mu      sync.Mutex
	chunks  [][]float32
	pos     int
	started bool
	closed  bool

	// ReadErr, when non-nil, is returned once by the next Read and then
	// cleared. Lets tests exercise the transient-read-failure path.
	ReadErr error

	// ReadDelay paces Read to emulate a real device delivering chunks in
	// real time. Zero means serve as fast as the caller asks.
	ReadDelay time.Duration
}

// NewMockSource creates a mock source serving the given chunks in order
func NewMockSource(chunks [][]float32) *MockSource {
	return &MockSource{chunks: chunks}
}

// NewSilentSource creates a mock source that serves count all-zero chunks
// of the given size. This is the degraded-mode source: the session runs,
// analysis produces unvoiced readings, and every other application feature
// stays usable.
func NewSilentSource(chunkSize, count int) *MockSource {
	chunks := make([][]float32, count)
	for i := range chunks {
		chunks[i] = make([]float32, chunkSize)
	}
	return NewMockSource(chunks)
}

// Enqueue appends a chunk to the script
func (m *MockSource) Enqueue(chunk []float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = append(m.chunks, chunk)
}

// Start begins serving chunks
func (m *MockSource) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = true
	return nil
}

// Read copies the next scripted chunk into buf, or returns io.EOF when
// the script is exhausted
func (m *MockSource) Read(buf []float32) error {
	if d := m.readDelay(); d > 0 {
		time.Sleep(d)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ReadErr != nil {
		err := m.ReadErr
		m.ReadErr = nil
		return err
	}

	if m.closed || !m.started || m.pos >= len(m.chunks) {
		return io.EOF
	}

	copy(buf, m.chunks[m.pos])
	m.pos++
	return nil
}

func (m *MockSource) readDelay() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ReadDelay
}

// Stop halts serving; Start resumes from the current position
func (m *MockSource) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = false
	return nil
}

// Close releases the source; safe to call repeatedly
func (m *MockSource) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Remaining returns how many scripted chunks have not been served yet
func (m *MockSource) Remaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.chunks) - m.pos
}
