package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic-receptionist/internal/core"
	"clinic-receptionist/internal/llm"
	"clinic-receptionist/internal/session"
	"clinic-receptionist/internal/voice"
	"clinic-receptionist/pkg"
)

func newTestServer(t *testing.T, script *llm.ScriptedClient) *Server {
	t.Helper()
	store, err := session.NewStore(session.StoreTypeMemory)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	recept := core.NewReceptionist(script, nopRepo{}, nil, core.Config{})
	return NewServer(recept, store, nil, nil)
}

type nopRepo struct{}

func (nopRepo) FindClientByName(_ context.Context, _, _ string) (*pkg.Client, error) {
	return nil, nil
}
func (nopRepo) CreateClient(_ context.Context, c *pkg.Client) (*pkg.Client, error) {
	out := *c
	out.ClientID = 1
	return &out, nil
}
func (nopRepo) CreateAppointment(_ context.Context, a *pkg.Appointment) (*pkg.Appointment, error) {
	out := *a
	out.AppointmentID = 1
	return &out, nil
}
func (nopRepo) ListAppointments(_ context.Context, _ int64) ([]pkg.Appointment, error) {
	return []pkg.Appointment{}, nil
}

func createSession(t *testing.T, srv *Server) string {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sessions", nil))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created pkg.SessionCreated
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	require.NotEmpty(t, created.SessionID)
	return created.SessionID
}

func TestCreateSession(t *testing.T) {
	srv := newTestServer(t, llm.NewScriptedClient())
	id := createSession(t, srv)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/"+id, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, id, body["session_id"])
	state, ok := body["state"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "initial", state["conversation_stage"])
}

func TestPostMessage(t *testing.T) {
	script := llm.NewScriptedClient(
		`{"target_agent": "generic_query_handler"}`,
		`{"response": "We are open 9 to 6.", "action": "provide_info"}`,
	)
	srv := newTestServer(t, script)
	id := createSession(t, srv)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/sessions/"+id+"/messages",
		strings.NewReader(`{"content": "What are your hours?"}`))
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp pkg.ChatResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "We are open 9 to 6.", resp.Reply)
}

func TestPostMessageUnknownSession(t *testing.T) {
	srv := newTestServer(t, llm.NewScriptedClient())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/sessions/no-such-id/messages",
		strings.NewReader(`{"content": "hi"}`))
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPostMessageEmptyBody(t *testing.T) {
	srv := newTestServer(t, llm.NewScriptedClient())
	id := createSession(t, srv)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/sessions/"+id+"/messages",
		strings.NewReader(`{"content": "   "}`))
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResetSession(t *testing.T) {
	script := llm.NewScriptedClient(
		`{"target_agent": "appointment_manager"}`,
		`{"has_name": true, "first_name": "Rohit", "last_name": "Sharma"}`,
	)
	srv := newTestServer(t, script)
	id := createSession(t, srv)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/sessions/"+id+"/messages",
		strings.NewReader(`{"content": "My name is Rohit Sharma"}`))
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sessions/"+id+"/reset", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/"+id, nil))
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	state := body["state"].(map[string]any)
	assert.Equal(t, "initial", state["conversation_stage"])
	assert.Nil(t, state["first_name"])
}

func TestVoiceDisabled(t *testing.T) {
	srv := newTestServer(t, llm.NewScriptedClient())

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/voice/start", nil))
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

type fixedRecognizer struct{ text string }

func (fixedRecognizer) Start() error            { return nil }
func (f fixedRecognizer) Stop() (string, error) { return f.text, nil }

func TestVoiceStartStop(t *testing.T) {
	script := llm.NewScriptedClient()
	srv := newTestServer(t, script)
	srv.Capture = voice.NewCapture(fixedRecognizer{text: "hello there"})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/voice/start", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	// A second start while recording conflicts.
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/voice/start", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/voice/stop", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var capture pkg.VoiceCapture
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&capture))
	assert.Equal(t, "hello there", capture.Text)
	assert.Empty(t, capture.Reply)
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(t, llm.NewScriptedClient())

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/unknown", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
