package server

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"sync"

	"github.com/hxl333/mbti-bot/assessor"
	"github.com/hxl333/mbti-bot/llm"
)

// SessionManager hands out one assessor per browser session. Sessions live
// in memory only; there is no TTL or persistence.
type SessionManager struct {
	gw   llm.Gateway
	opts assessor.Options
	log  *slog.Logger

	mu       sync.Mutex
	sessions map[string]*assessor.Assessor
}

func NewSessionManager(gw llm.Gateway, opts assessor.Options, log *slog.Logger) *SessionManager {
	if log == nil {
		log = slog.Default()
	}
	return &SessionManager{
		gw:       gw,
		opts:     opts,
		log:      log,
		sessions: make(map[string]*assessor.Assessor),
	}
}

// Get returns the assessor for id, creating one when needed. An empty id
// gets a fresh session under a generated id; the second return value is the
// effective id the client should keep sending.
func (m *SessionManager) Get(id string) (*assessor.Assessor, string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = newSessionID()
	}
	a, ok := m.sessions[id]
	if !ok {
		a = assessor.New(m.gw, m.opts, m.log.With("session_id", id))
		m.sessions[id] = a
	}
	return a, id
}

// Ready reports whether new sessions can reach the model.
func (m *SessionManager) Ready() bool {
	return m.gw != nil
}

func newSessionID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		// rand.Read does not fail on supported platforms
		panic(err)
	}
	return hex.EncodeToString(b[:])
}
