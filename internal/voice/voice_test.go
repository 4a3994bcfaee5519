package voice

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chanEngine forwards spoken text to a channel so tests can observe
// playback without timing assumptions.
type chanEngine struct {
	spoken chan string
	err    error
}

func (e *chanEngine) Say(text string) error {
	e.spoken <- text
	return e.err
}

func waitFor(t *testing.T, ch chan string) string {
	t.Helper()
	select {
	case text := <-ch:
		return text
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for playback")
		return ""
	}
}

func TestSpeakerPlaysQueuedText(t *testing.T) {
	engine := &chanEngine{spoken: make(chan string, 4)}
	s := NewSpeaker(engine)
	defer s.Close()

	s.Speak("Welcome back, Rohit Sharma!")
	assert.Equal(t, "Welcome back, Rohit Sharma!", waitFor(t, engine.spoken))
}

func TestSpeakerReplacesLinks(t *testing.T) {
	engine := &chanEngine{spoken: make(chan string, 4)}
	s := NewSpeaker(engine)
	defer s.Close()

	s.Speak("Add to your calendar: https://calendar.google.com/calendar/render?action=TEMPLATE&text=x")
	assert.Equal(t, "Add to your calendar: link provided", waitFor(t, engine.spoken))
}

func TestSpeakerIgnoresEmpty(t *testing.T) {
	engine := &chanEngine{spoken: make(chan string, 4)}
	s := NewSpeaker(engine)

	s.Speak("")
	s.Close()
	assert.Empty(t, engine.spoken)
}

func TestSpeakerSwallowsEngineErrors(t *testing.T) {
	engine := &chanEngine{spoken: make(chan string, 4), err: errors.New("no audio device")}
	s := NewSpeaker(engine)
	defer s.Close()

	s.Speak("hello")
	assert.Equal(t, "hello", waitFor(t, engine.spoken))

	// The loop keeps running after an engine error.
	s.Speak("still here")
	assert.Equal(t, "still here", waitFor(t, engine.spoken))
}

func TestSpeakerCloseIsIdempotent(t *testing.T) {
	s := NewSpeaker(LogEngine{})
	s.Close()
	s.Close()
}

// fakeRecognizer returns a fixed transcription.
type fakeRecognizer struct {
	text     string
	startErr error
	stopErr  error
}

func (f *fakeRecognizer) Start() error          { return f.startErr }
func (f *fakeRecognizer) Stop() (string, error) { return f.text, f.stopErr }

func TestCaptureRoundTrip(t *testing.T) {
	c := NewCapture(&fakeRecognizer{text: "I want to book an appointment"})

	require.NoError(t, c.Start())
	text, err := c.Stop()
	require.NoError(t, err)
	assert.Equal(t, "I want to book an appointment", text)
}

func TestCaptureMutualExclusion(t *testing.T) {
	c := NewCapture(&fakeRecognizer{})

	require.NoError(t, c.Start())
	assert.ErrorIs(t, c.Start(), ErrAlreadyRecording)

	_, err := c.Stop()
	require.NoError(t, err)
	_, err = c.Stop()
	assert.ErrorIs(t, err, ErrNotRecording)
}

func TestCaptureStartFailureReleasesLock(t *testing.T) {
	rec := &fakeRecognizer{startErr: errors.New("no microphone")}
	c := NewCapture(rec)

	require.Error(t, c.Start())
	// A failed start must not leave the capture stuck "recording".
	rec.startErr = nil
	require.NoError(t, c.Start())
}
