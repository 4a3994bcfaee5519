package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"clinic-receptionist/internal/core"
	"clinic-receptionist/internal/session"
	"clinic-receptionist/internal/voice"
	"clinic-receptionist/pkg"
	logx "clinic-receptionist/pkg/logger"
)

// Server bundles together the dependencies required by HTTP handlers.  It
// implements http.Handler so it can be passed to http.ListenAndServe.
type Server struct {
	Recept   *core.Receptionist
	Sessions session.Store
	Speaker  *voice.Speaker
	Capture  *voice.Capture
}

// NewServer constructs a Server. Speaker and Capture may be nil when
// voice is disabled.
func NewServer(recept *core.Receptionist, sessions session.Store, speaker *voice.Speaker, capture *voice.Capture) *Server {
	return &Server{
		Recept:   recept,
		Sessions: sessions,
		Speaker:  speaker,
		Capture:  capture,
	}
}

// ServeHTTP dispatches incoming requests based on the URL path.  Minimal
// routing logic is implemented here to keep dependencies light.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	// Create a new session: POST /api/sessions
	case path == "/api/sessions" && r.Method == http.MethodPost:
		s.handleCreateSession(w, r)
	// Post a message: POST /api/sessions/{id}/messages
	case strings.HasPrefix(path, "/api/sessions/") && strings.HasSuffix(path, "/messages") && r.Method == http.MethodPost:
		parts := strings.Split(path, "/")
		if len(parts) < 5 {
			http.NotFound(w, r)
			return
		}
		s.handlePostMessage(w, r, parts[3])
	// Reset a session: POST /api/sessions/{id}/reset
	case strings.HasPrefix(path, "/api/sessions/") && strings.HasSuffix(path, "/reset") && r.Method == http.MethodPost:
		parts := strings.Split(path, "/")
		if len(parts) < 5 {
			http.NotFound(w, r)
			return
		}
		s.handleResetSession(w, r, parts[3])
	// Inspect session state: GET /api/sessions/{id}
	case strings.HasPrefix(path, "/api/sessions/") && r.Method == http.MethodGet:
		parts := strings.Split(path, "/")
		if len(parts) != 4 || parts[3] == "" {
			http.NotFound(w, r)
			return
		}
		s.handleGetSession(w, r, parts[3])
	// Begin voice capture: POST /api/voice/start
	case path == "/api/voice/start" && r.Method == http.MethodPost:
		s.handleVoiceStart(w, r)
	// End voice capture and transcribe: POST /api/voice/stop
	case path == "/api/voice/stop" && r.Method == http.MethodPost:
		s.handleVoiceStop(w, r)
	default:
		http.NotFound(w, r)
	}
}

// handleCreateSession creates a new conversation session and returns its ID.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := uuid.NewString()
	data := &session.Data{ID: id, State: s.Recept.NewSession()}
	if err := s.Sessions.Create(ctx, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, pkg.SessionCreated{SessionID: id})
}

// handlePostMessage runs one conversation turn: load state, respond, and
// persist the updated state back to the store.
func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request, sessionID string) {
	ctx := r.Context()
	var req pkg.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		http.Error(w, "empty message", http.StatusBadRequest)
		return
	}
	data, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if data == nil {
		http.NotFound(w, r)
		return
	}
	reply := s.Recept.Respond(ctx, data.State, req.Content)
	if err := s.Sessions.Update(ctx, data); err != nil {
		if errors.Is(err, session.ErrVersionConflict) {
			http.Error(w, "session modified concurrently", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if s.Speaker != nil {
		s.Speaker.Speak(reply)
	}
	writeJSON(w, http.StatusOK, pkg.ChatResponse{Reply: reply})
}

// handleResetSession clears the conversation state of an existing session.
func (s *Server) handleResetSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	ctx := r.Context()
	data, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if data == nil {
		http.NotFound(w, r)
		return
	}
	s.Recept.Reset(data.State)
	if err := s.Sessions.Update(ctx, data); err != nil {
		if errors.Is(err, session.ErrVersionConflict) {
			http.Error(w, "session modified concurrently", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetSession returns the current conversation state as JSON.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	ctx := r.Context()
	data, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if data == nil {
		http.NotFound(w, r)
		return
	}
	resp := map[string]interface{}{
		"session_id": data.ID,
		"created_at": data.CreatedAt,
		"updated_at": data.UpdatedAt,
		"state":      data.State.Snapshot(),
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleVoiceStart begins microphone capture.
func (s *Server) handleVoiceStart(w http.ResponseWriter, r *http.Request) {
	if s.Capture == nil {
		http.Error(w, "voice disabled", http.StatusNotImplemented)
		return
	}
	if err := s.Capture.Start(); err != nil {
		if errors.Is(err, voice.ErrAlreadyRecording) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"started": true})
}

// handleVoiceStop ends capture and returns the transcription.  If the
// request body names a session, the transcription is also routed through
// that session and the reply included in the response.
func (s *Server) handleVoiceStop(w http.ResponseWriter, r *http.Request) {
	if s.Capture == nil {
		http.Error(w, "voice disabled", http.StatusNotImplemented)
		return
	}
	text, err := s.Capture.Stop()
	if err != nil {
		if errors.Is(err, voice.ErrNotRecording) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	var req struct {
		SessionID string `json:"session_id"`
	}
	// Body is optional; decode errors just mean no session routing.
	_ = json.NewDecoder(r.Body).Decode(&req)

	capture := pkg.VoiceCapture{Text: text}
	if req.SessionID != "" && text != "" {
		ctx := r.Context()
		data, err := s.Sessions.Get(ctx, req.SessionID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if data == nil {
			http.NotFound(w, r)
			return
		}
		capture.Reply = s.Recept.Respond(ctx, data.State, text)
		if err := s.Sessions.Update(ctx, data); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if s.Speaker != nil {
			s.Speaker.Speak(capture.Reply)
		}
	}
	writeJSON(w, http.StatusOK, capture)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logx.Error().Err(err).Msg("failed to encode response")
	}
}
