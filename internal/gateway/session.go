package gateway

import (
	"sync"

	"ytbridge/internal/youtube"
)

// Session pairs one provider with the buffers that bridge it to the
// browser page hosting the actual iframe. The session itself is the
// provider's transport (outbound commands are queued until the page
// drains them) and its sink (semantic events are buffered for the
// local state store to drain).
type Session struct {
	ID string

	mu       sync.Mutex
	commands []youtube.Message
	events   []youtube.Event

	Provider *youtube.Provider
	EmbedSrc string
}

// NewSession returns an empty session shell; the caller attaches the
// provider after construction since the provider needs the session as
// its transport and sink.
func NewSession(id string) *Session {
	return &Session{ID: id}
}

// PostMessage implements youtube.Transport by queueing the command for
// the next drain.
func (s *Session) PostMessage(m youtube.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands = append(s.commands, m)
	return nil
}

// OnEvent implements youtube.Sink by buffering the event for the next
// drain. Called synchronously from the provider; it must not call back
// into it.
func (s *Session) OnEvent(ev youtube.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

// DrainCommands returns and clears the queued outbound messages.
func (s *Session) DrainCommands() []youtube.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.commands
	s.commands = nil
	return out
}

// DrainEvents returns and clears the buffered semantic events.
func (s *Session) DrainEvents() []youtube.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.events
	s.events = nil
	return out
}

// Registry is the concurrency-safe set of live sessions.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Get returns the session with the given id.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Put registers a session.
func (r *Registry) Put(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
}

// Remove deletes the session with the given id and returns it.
// Removing an unknown id is a no-op.
func (r *Registry) Remove(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	return s, ok
}

// Count returns the number of live sessions. Used for metrics.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
