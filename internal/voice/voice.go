// Package voice provides optional speech output and capture around the
// chat loop. Both sides are defined as small interfaces so the server can
// run without any audio backend installed.
package voice

import (
	"errors"
	"regexp"
	"sync"
	"sync/atomic"

	logx "clinic-receptionist/pkg/logger"
)

var (
	ErrAlreadyRecording = errors.New("voice: recording already in progress")
	ErrNotRecording     = errors.New("voice: no recording in progress")
)

// Engine converts text to audible speech.
type Engine interface {
	Say(text string) error
}

// Recognizer captures speech and returns the transcribed text on Stop.
type Recognizer interface {
	Start() error
	Stop() (string, error)
}

var urlPattern = regexp.MustCompile(`https?://\S+`)

// Speaker queues utterances onto a dedicated goroutine so callers never
// block on audio playback. When the queue is full the utterance is
// dropped.
type Speaker struct {
	engine Engine
	queue  chan string
	done   chan struct{}
	once   sync.Once
}

// NewSpeaker starts the playback goroutine.
func NewSpeaker(engine Engine) *Speaker {
	s := &Speaker{
		engine: engine,
		queue:  make(chan string, 16),
		done:   make(chan struct{}),
	}
	go s.loop()
	return s
}

// Speak enqueues text for playback. Links are unreadable aloud, so they
// are replaced with a short phrase.
func (s *Speaker) Speak(text string) {
	if text == "" {
		return
	}
	text = urlPattern.ReplaceAllString(text, "link provided")
	select {
	case s.queue <- text:
	default:
		logx.Warn().Msg("speech queue full, dropping utterance")
	}
}

// Close stops the playback goroutine after draining queued utterances.
func (s *Speaker) Close() {
	s.once.Do(func() {
		close(s.queue)
		<-s.done
	})
}

func (s *Speaker) loop() {
	defer close(s.done)
	for text := range s.queue {
		if err := s.engine.Say(text); err != nil {
			logx.Error().Err(err).Msg("speech playback failed")
		}
	}
}

// Capture wraps a Recognizer with start/stop mutual exclusion so only one
// recording runs at a time.
type Capture struct {
	rec       Recognizer
	recording atomic.Bool
}

func NewCapture(rec Recognizer) *Capture {
	return &Capture{rec: rec}
}

func (c *Capture) Start() error {
	if !c.recording.CompareAndSwap(false, true) {
		return ErrAlreadyRecording
	}
	if err := c.rec.Start(); err != nil {
		c.recording.Store(false)
		return err
	}
	return nil
}

func (c *Capture) Stop() (string, error) {
	if !c.recording.CompareAndSwap(true, false) {
		return "", ErrNotRecording
	}
	return c.rec.Stop()
}

// LogEngine writes utterances to the log instead of producing audio. It
// is the default engine when no speech backend is configured.
type LogEngine struct{}

func (LogEngine) Say(text string) error {
	logx.Info().Str("text", text).Msg("speak")
	return nil
}

// NopRecognizer captures nothing. It keeps the voice endpoints usable in
// environments without a microphone.
type NopRecognizer struct{}

func (NopRecognizer) Start() error          { return nil }
func (NopRecognizer) Stop() (string, error) { return "", nil }
