// Package conversation provides per-session bounded message history.
//
// Sessions are independent of model state: loading, unloading, or
// swapping models never touches session history. Each session starts
// with a single system preamble at index 0 and keeps at most the last
// `window` user/assistant exchange pairs after it.
package conversation

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Message roles. The preamble is the only system message a session holds.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single conversation turn.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session holds the ordered history of one logical conversation.
type Session struct {
	ID         string    `json:"id"`
	Messages   []Message `json:"messages"`
	CreatedAt  time.Time `json:"created_at"`
	LastActive time.Time `json:"last_active"`
}

func (s *Session) copy() *Session {
	msgs := make([]Message, len(s.Messages))
	copy(msgs, s.Messages)
	return &Session{
		ID:         s.ID,
		Messages:   msgs,
		CreatedAt:  s.CreatedAt,
		LastActive: s.LastActive,
	}
}

// Store manages conversation sessions in memory. Session creation is
// safe under concurrent access across distinct ids; a single session is
// driven by one logical caller at a time.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	window   int
	preamble string
}

// New creates a session store keeping the last `window` exchange pairs
// per session. Every new session begins with `preamble` as its system
// message.
func New(window int, preamble string) *Store {
	if window <= 0 {
		window = 10
	}
	return &Store{
		sessions: make(map[string]*Session),
		window:   window,
		preamble: preamble,
	}
}

// Ensure returns the session id to use for a request, creating the
// session if needed. An empty id mints a fresh one.
func (s *Store) Ensure(id string) string {
	if id == "" {
		id = uuid.New().String()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		now := time.Now()
		s.sessions[id] = &Session{
			ID:         id,
			Messages:   []Message{{Role: RoleSystem, Content: s.preamble, Timestamp: now}},
			CreatedAt:  now,
			LastActive: now,
		}
	}
	return id
}

// BuildPrompt renders the session's preamble and retained turns followed
// by the new query, ready to hand to a completion engine. The session
// must exist (see Ensure).
func (s *Store) BuildPrompt(id, query string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return "", fmt.Errorf("conversation: unknown session %q", id)
	}

	var b strings.Builder
	for _, m := range sess.Messages {
		switch m.Role {
		case RoleSystem:
			b.WriteString(m.Content)
			b.WriteString("\n\n")
		case RoleUser:
			b.WriteString("User: ")
			b.WriteString(m.Content)
			b.WriteString("\n")
		case RoleAssistant:
			b.WriteString("Assistant: ")
			b.WriteString(m.Content)
			b.WriteString("\n")
		}
	}
	b.WriteString("User: ")
	b.WriteString(query)
	b.WriteString("\nAssistant:")
	return b.String(), nil
}

// Append records one completed exchange and trims the session to the
// configured window. The preamble at index 0 is always retained, so the
// history never exceeds 2*window+1 messages. Callers append only after
// a successful generation; failures leave history untouched.
func (s *Store) Append(id, userText, assistantText string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return
	}
	now := time.Now()
	sess.Messages = append(sess.Messages,
		Message{Role: RoleUser, Content: userText, Timestamp: now},
		Message{Role: RoleAssistant, Content: assistantText, Timestamp: now},
	)
	sess.LastActive = now

	max := 2*s.window + 1
	if len(sess.Messages) > max {
		trimmed := make([]Message, 0, max)
		trimmed = append(trimmed, sess.Messages[0])
		trimmed = append(trimmed, sess.Messages[len(sess.Messages)-2*s.window:]...)
		sess.Messages = trimmed
	}
}

// History returns a copy of the session's messages, or nil if the
// session does not exist.
func (s *Store) History(id string) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil
	}
	msgs := make([]Message, len(sess.Messages))
	copy(msgs, sess.Messages)
	return msgs
}

// Get returns a copy of the full session, or nil if it does not exist.
func (s *Store) Get(id string) *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil
	}
	return sess.copy()
}

// Clear removes a session and its history.
func (s *Store) Clear(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Count returns the number of live sessions.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
