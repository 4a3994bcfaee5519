package llm

import (
	"context"
	"errors"
	"sync"
)

// ScriptedClient is a deterministic Client substitute. It replays a fixed
// sequence of completions and records every prompt it was given, which
// lets tests drive the dialogue flow without a live model.
type ScriptedClient struct {
	mu        sync.Mutex
	responses []string
	Prompts   []string
}

// NewScriptedClient returns a client that will answer with the given
// responses in order.
func NewScriptedClient(responses ...string) *ScriptedClient {
	return &ScriptedClient{responses: responses}
}

// Push appends further responses to the script.
func (s *ScriptedClient) Push(responses ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses = append(s.responses, responses...)
}

// Complete pops the next scripted response. An exhausted script is an
// error, mirroring a failed round trip.
func (s *ScriptedClient) Complete(_ context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Prompts = append(s.Prompts, prompt)
	if len(s.responses) == 0 {
		return "", errors.New("scripted client: no responses left")
	}
	next := s.responses[0]
	s.responses = s.responses[1:]
	return next, nil
}
