package capture

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/halcyonlabs/voxtrain/logging"
)

// PortAudioSource captures mono float32 audio from the system default
// input device via PortAudio.
type PortAudioSource struct {
	sampleRate int
	chunkSize  int

	stream *portaudio.Stream
	buffer []float32

	mu      sync.Mutex
	started bool
	closed  bool

	logger logging.Logger
}

// NewPortAudioSource opens the default input device for mono capture at
// the given rate and chunk size. Failure returns a *DeviceError with a
// user-actionable category; the caller decides whether to degrade to a
// mock source.
func NewPortAudioSource(sampleRate, chunkSize int) (*PortAudioSource, error) {
	if sampleRate <= 0 || chunkSize <= 0 {
		return nil, fmt.Errorf("invalid capture parameters: rate=%d chunk=%d", sampleRate, chunkSize)
	}

	if err := portaudio.Initialize(); err != nil {
		return nil, &DeviceError{Category: classify(err), Op: "initialize", Err: err}
	}

	s := &PortAudioSource{
		sampleRate: sampleRate,
		chunkSize:  chunkSize,
		buffer:     make([]float32, chunkSize),
		logger:     logging.WithFields(logging.Fields{"component": "portaudio_source"}),
	}

	stream, err := portaudio.OpenDefaultStream(1, 0, float64(sampleRate), chunkSize, s.buffer)
	if err != nil {
		portaudio.Terminate()
		return nil, &DeviceError{Category: classify(err), Op: "open", Err: err}
	}
	s.stream = stream

	s.logger.Info("audio device opened", logging.Fields{
		"sample_rate": sampleRate,
		"chunk_size":  chunkSize,
	})

	return s, nil
}

// Start begins capture
func (s *PortAudioSource) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("source is closed")
	}
	if s.started {
		return nil
	}

	if err := s.stream.Start(); err != nil {
		return &DeviceError{Category: classify(err), Op: "start", Err: err}
	}
	s.started = true
	return nil
}

// Read blocks until one chunk is captured and copies it into buf.
// buf shorter than the chunk size receives a truncated copy.
func (s *PortAudioSource) Read(buf []float32) error {
	if err := s.stream.Read(); err != nil {
		return fmt.Errorf("device read: %w", err)
	}

	copy(buf, s.buffer)
	return nil
}

// Stop halts capture; the source can be started again
func (s *PortAudioSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started || s.closed {
		return nil
	}
	s.started = false
	return s.stream.Stop()
}

// Close releases the stream and the PortAudio runtime. Safe to call
// repeatedly; only the first call does work.
func (s *PortAudioSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.started = false

	var err error
	if s.stream != nil {
		err = s.stream.Close()
		s.stream = nil
	}
	portaudio.Terminate()

	s.logger.Info("audio device released")
	return err
}

// SampleRate returns the configured sample rate
func (s *PortAudioSource) SampleRate() int {
	return s.sampleRate
}

// ChunkSize returns the configured chunk size in samples
func (s *PortAudioSource) ChunkSize() int {
	return s.chunkSize
}
