package session

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/halcyonlabs/voxtrain/capture"
	"github.com/halcyonlabs/voxtrain/logging"
)

// State is the session lifecycle state
type State int32

const (
	StateIdle State = iota
	StateCapturing
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateCapturing:
		return "capturing"
	case StateStopping:
		return "stopping"
	default:
		return "idle"
	}
}

// Session drives one capture-and-analyze run: it owns the audio source,
// the analyzer, and the single capture goroutine that moves chunks from
// one to the other.
//
// All analysis state is confined to the capture goroutine. The control
// side (Start, Stop, Pause, UpdateConfig) communicates through atomics
// and a buffered command channel, never by touching analyzer fields, so
// no analysis data is shared between goroutines.
//
// Readings and alerts are published on buffered channels with
// non-blocking sends: a stalled consumer drops readings rather than
// backing up the capture loop. Alerts use a deeper buffer because
// dropping one loses a user-visible cue rather than one frame of a
// continuously refreshed display.
type Session struct {
	source   capture.Source
	analyzer *Analyzer
	now      func() time.Time

	state  atomic.Int32
	paused atomic.Bool

	readings chan Reading
	alerts   chan AlertEvent
	cfgCh    chan Config

	done chan struct{}
	wg   sync.WaitGroup

	logger logging.Logger
}

// NewSession creates a session over the given source
func NewSession(source capture.Source, cfg Config) *Session {
	return NewSessionWithClock(source, cfg, time.Now)
}

// NewSessionWithClock creates a session with an injected clock for
// deterministic tests
func NewSessionWithClock(source capture.Source, cfg Config, now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	return &Session{
		source:   source,
		analyzer: NewAnalyzerWithClock(cfg, now),
		now:      now,
		readings: make(chan Reading, 8),
		alerts:   make(chan AlertEvent, 32),
		cfgCh:    make(chan Config, 4),
		logger:   logging.WithFields(logging.Fields{"component": "session"}),
	}
}

// State returns the current lifecycle state
func (s *Session) State() State {
	return State(s.state.Load())
}

// Readings is the stream of per-chunk analysis results. Values are
// dropped, not queued, when the consumer falls behind.
func (s *Session) Readings() <-chan Reading {
	return s.readings
}

// Alerts is the stream of discrete alert events
func (s *Session) Alerts() <-chan AlertEvent {
	return s.alerts
}

// Analyzer exposes the analysis context. Safe to read configuration and
// construction-time parameters from; per-chunk state belongs to the
// capture goroutine while the session is running.
func (s *Session) Analyzer() *Analyzer {
	return s.analyzer
}

// Start transitions Idle -> Capturing and launches the capture loop.
// Starting a non-idle session is a no-op error.
func (s *Session) Start() error {
	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateCapturing)) {
		return errors.New("session already running")
	}

	if err := s.source.Start(); err != nil {
		s.state.Store(int32(StateIdle))
		return err
	}

	// Pause state is owned by Pause/Resume only; a Pause issued before
	// Start means the session begins paused.
	s.done = make(chan struct{})

	if ev := s.analyzer.Alerts().Fire(AlertSessionStart, SeverityInfo, "session started"); ev != nil {
		s.publishAlert(*ev)
	}

	s.wg.Add(1)
	go s.captureLoop()

	s.logger.Info("session started", logging.Fields{
		"sample_rate": s.analyzer.Config().SampleRate,
		"chunk_size":  s.analyzer.Config().ChunkSize,
	})
	return nil
}

// Stop transitions Capturing -> Stopping -> Idle. It signals the capture
// goroutine, joins it, then stops the source, so Stop returning means no
// further readings will be produced. Safe to call repeatedly.
func (s *Session) Stop() {
	if !s.state.CompareAndSwap(int32(StateCapturing), int32(StateStopping)) {
		return
	}

	close(s.done)
	s.wg.Wait()

	if err := s.source.Stop(); err != nil {
		s.logger.Error(err, "stopping audio source")
	}

	s.state.Store(int32(StateIdle))
	s.logger.Info("session stopped")
}

// Close stops the session if needed and releases the audio source
func (s *Session) Close() error {
	s.Stop()
	return s.source.Close()
}

// Pause suspends analysis without stopping capture. Chunks are still
// read from the device and discarded, keeping device buffers drained.
func (s *Session) Pause() {
	s.paused.Store(true)
}

// Resume re-enables analysis after Pause
func (s *Session) Resume() {
	s.paused.Store(false)
}

// Paused reports whether analysis is suspended
func (s *Session) Paused() bool {
	return s.paused.Load()
}

// UpdateConfig applies a configuration change mid-session. The change is
// handed to the capture goroutine and takes effect on the next chunk.
func (s *Session) UpdateConfig(cfg Config) {
	if s.State() != StateCapturing {
		s.analyzer.SetConfig(cfg)
		return
	}
	select {
	case s.cfgCh <- cfg:
	default:
		s.logger.Warn("config update dropped, channel full")
	}
}

// captureLoop is the single goroutine that reads chunks, runs them
// through the analyzer, and publishes the results.
func (s *Session) captureLoop() {
	defer s.wg.Done()
	defer func() {
		// Emitted on both Stop and source exhaustion (end of file on a
		// replayed source, device teardown).
		if ev := s.analyzer.Alerts().Fire(AlertSessionEnd, SeverityInfo, "session ended"); ev != nil {
			s.publishAlert(*ev)
		}
	}()

	chunkSize := s.analyzer.Config().ChunkSize
	raw := make([]float32, chunkSize)
	chunk := make([]float64, chunkSize)

	for {
		select {
		case <-s.done:
			return
		case cfg := <-s.cfgCh:
			s.analyzer.SetConfig(cfg)
			continue
		default:
		}

		if err := s.source.Read(raw); err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Info("audio source exhausted")
				return
			}
			// Transient device hiccup: no chunk this tick
			s.logger.Warn("chunk read failed", logging.Fields{"error": err.Error()})
			continue
		}

		if s.paused.Load() {
			continue
		}

		for i, v := range raw {
			chunk[i] = float64(v)
		}

		reading, events := s.analyzer.ProcessChunk(chunk)

		select {
		case s.readings <- reading:
		default:
			// Consumer behind; newest-wins display semantics
		}
		for _, ev := range events {
			s.publishAlert(ev)
		}
	}
}

func (s *Session) publishAlert(ev AlertEvent) {
	select {
	case s.alerts <- ev:
	default:
		s.logger.Warn("alert dropped, channel full", logging.Fields{"kind": string(ev.Kind)})
	}
}
