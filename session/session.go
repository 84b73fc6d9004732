// Package session holds the conversation state for one assessment attempt.
package session

import (
	"sync"
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in the conversation. Immutable once appended.
type Turn struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserInfo is a read-only view of what the session has gathered so far.
type UserInfo struct {
	QuestionsAsked int               `json:"questionsAsked"`
	MBTIType       string            `json:"mbtiType,omitempty"`
	Collected      map[string]string `json:"collected,omitempty"`
}

// Store owns the state of a single logical session: the ordered turn
// sequence, the question counter and the collected-info record. One store
// per conversation; the mutex only guarantees that Reset is atomic with
// respect to concurrent reads.
type Store struct {
	mu        sync.Mutex
	turns     []Turn
	questions int
	mbtiType  string
	collected map[string]string
	now       func() time.Time
}

func NewStore() *Store {
	return &Store{
		collected: make(map[string]string),
		now:       time.Now,
	}
}

func (s *Store) AppendUser(text string) {
	s.append(RoleUser, text)
}

func (s *Store) AppendAssistant(text string) {
	s.append(RoleAssistant, text)
}

func (s *Store) append(role Role, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, Turn{Role: role, Text: text, CreatedAt: s.now()})
}

func (s *Store) IncrementQuestions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions++
}

// SetMBTIType marks the session complete with the assessed type.
func (s *Store) SetMBTIType(t string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mbtiType = t
}

// SetCollected records a piece of elicited user info.
func (s *Store) SetCollected(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collected[key] = value
}

// Reset discards all turns and zeroes the counters. Callers observing the
// store after Reset returns see an empty session.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = nil
	s.questions = 0
	s.mbtiType = ""
	s.collected = make(map[string]string)
}

// Snapshot returns a copy of the turn sequence, safe to hand to the
// prompt builder and gateway.
func (s *Store) Snapshot() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

func (s *Store) Info() UserInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	collected := make(map[string]string, len(s.collected))
	for k, v := range s.collected {
		collected[k] = v
	}
	return UserInfo{
		QuestionsAsked: s.questions,
		MBTIType:       s.mbtiType,
		Collected:      collected,
	}
}
