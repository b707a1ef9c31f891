package followup

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/randomtoy/oracle-go/internal/domain"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a follow-up conversation.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Attempt identifies a recorded user question awaiting its answer.
type Attempt struct {
	Message Message
}

// Session is the append-only conversation attached to one reading.
// It is safe for concurrent use; at most one attempt may be pending.
type Session struct {
	mu       sync.Mutex
	messages []Message
	pending  string
	now      func() time.Time
}

func NewSession() *Session {
	return &Session{now: time.Now}
}

// NewSessionWithClock is NewSession with an injectable clock.
func NewSessionWithClock(now func() time.Time) *Session {
	return &Session{now: now}
}

// Messages returns a copy of the history in insertion order.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.messages...)
}

// UserQuestions counts messages with the user role.
func (s *Session) UserQuestions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return countUser(s.messages)
}

// Pending reports whether an attempt is awaiting resolution.
func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != ""
}

// Record appends the user's question and marks it pending.
func (s *Session) Record(question string) (Attempt, error) {
	return s.RecordChecked(question, nil)
}

// RecordChecked is Record with a gate evaluated against the history under the
// session lock. A non-nil error from check leaves the session untouched.
func (s *Session) RecordChecked(question string, check func([]Message) error) (Attempt, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Attempt{}, fmt.Errorf("%w: question is required", domain.ErrInvalidRequest)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if check != nil {
		if err := check(s.messages); err != nil {
			return Attempt{}, err
		}
	}
	if s.pending != "" {
		return Attempt{}, domain.ErrAskInFlight
	}

	msg := s.appendLocked(RoleUser, question)
	s.pending = msg.ID
	return Attempt{Message: msg}, nil
}

// Resolve appends the assistant answer to a pending attempt.
func (s *Session) Resolve(a Attempt, answer string) (Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == "" || s.pending != a.Message.ID {
		return Message{}, fmt.Errorf("%w: attempt %s is not pending", domain.ErrInvalidRequest, a.Message.ID)
	}
	s.pending = ""
	return s.appendLocked(RoleAssistant, answer), nil
}

// Fail clears a pending attempt. The user message stays in history.
func (s *Session) Fail(a Attempt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == a.Message.ID {
		s.pending = ""
	}
}

func (s *Session) appendLocked(role Role, content string) Message {
	ts := s.now()
	if n := len(s.messages); n > 0 {
		if last := s.messages[n-1].Timestamp; !ts.After(last) {
			ts = last.Add(time.Nanosecond)
		}
	}
	msg := Message{
		ID:        uuid.Must(uuid.NewV4()).String(),
		Role:      role,
		Content:   content,
		Timestamp: ts,
	}
	s.messages = append(s.messages, msg)
	return msg
}

func countUser(msgs []Message) int {
	n := 0
	for _, m := range msgs {
		if m.Role == RoleUser {
			n++
		}
	}
	return n
}
