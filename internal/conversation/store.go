// Package conversation keeps per-user chat history in memory. Sessions expire after
// a period of inactivity and are never persisted.
package conversation

import (
	"slices"
	"sync"
	"time"

	"github.com/muratoffalex/gachicord/internal/logger"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"

	DefaultMaxMessages   = 20
	DefaultTimeout       = 2 * time.Hour
	DefaultSystemMessage = "You are a helpful assistant."
)

type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func SystemTurn(content string) Turn {
	return Turn{Role: RoleSystem, Content: content}
}

func UserTurn(content string) Turn {
	return Turn{Role: RoleUser, Content: content}
}

func AssistantTurn(content string) Turn {
	return Turn{Role: RoleAssistant, Content: content}
}

// Store owns the conversation history of every user. Every access through Get, Set
// or Append restarts the user's inactivity countdown.
type Store interface {
	Get(userID string) []Turn
	Set(userID string, turns []Turn)
	Append(userID string, turns ...Turn) []Turn
	Delete(userID string)
	// Teardown stops all pending expiry timers and leaves the sessions untouched.
	Teardown()
}

type Options struct {
	MaxMessages   int
	Timeout       time.Duration
	SystemMessage string
}

func (o Options) withDefaults() Options {
	if o.MaxMessages < 2 {
		o.MaxMessages = DefaultMaxMessages
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.SystemMessage == "" {
		o.SystemMessage = DefaultSystemMessage
	}
	return o
}

type session struct {
	turns []Turn
	timer *time.Timer
	// generation of the timer currently armed for this session
	generation uint64
}

type MemoryStore struct {
	mu         sync.Mutex
	sessions   map[string]*session
	opts       Options
	generation uint64
	logger     logger.Logger
}

func NewMemoryStore(opts Options, log logger.Logger) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*session),
		opts:     opts.withDefaults(),
		logger:   log,
	}
}

func (s *MemoryStore) Get(userID string) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(userID)
	s.touch(userID, sess)
	return slices.Clone(sess.turns)
}

// Set replaces the history wholesale. A missing leading system turn is filled in
// with the default one and the result is trimmed to the configured cap.
func (s *MemoryStore) Set(userID string, turns []Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(turns) == 0 || turns[0].Role != RoleSystem {
		turns = append([]Turn{SystemTurn(s.opts.SystemMessage)}, turns...)
	}

	sess := s.session(userID)
	sess.turns = Trim(slices.Clone(turns), s.opts.MaxMessages)
	s.touch(userID, sess)
}

func (s *MemoryStore) Append(userID string, turns ...Turn) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(userID)
	sess.turns = Trim(append(sess.turns, turns...), s.opts.MaxMessages)
	s.touch(userID, sess)
	return slices.Clone(sess.turns)
}

func (s *MemoryStore) Delete(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[userID]; ok {
		if sess.timer != nil {
			sess.timer.Stop()
		}
		delete(s.sessions, userID)
	}
}

func (s *MemoryStore) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sess := range s.sessions {
		if sess.timer != nil {
			sess.timer.Stop()
			sess.timer = nil
		}
	}
	s.logger.WithField("sessions", len(s.sessions)).Debug("Conversation timers stopped")
}

// Has reports whether a session exists without counting as an access.
func (s *MemoryStore) Has(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.sessions[userID]
	return ok
}

func (s *MemoryStore) session(userID string) *session {
	sess, ok := s.sessions[userID]
	if !ok {
		sess = &session{turns: []Turn{SystemTurn(s.opts.SystemMessage)}}
		s.sessions[userID] = sess
		s.logger.WithField("user_id", userID).Debug("Conversation started")
	}
	return sess
}

// touch must be called with s.mu held.
func (s *MemoryStore) touch(userID string, sess *session) {
	if sess.timer != nil {
		sess.timer.Stop()
	}
	s.generation++
	generation := s.generation
	sess.generation = generation
	sess.timer = time.AfterFunc(s.opts.Timeout, func() {
		s.expire(userID, generation)
	})
}

func (s *MemoryStore) expire(userID string, generation uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	// a newer access re-armed the timer after this one had already fired
	if !ok || sess.generation != generation {
		return
	}
	delete(s.sessions, userID)
	s.logger.WithField("user_id", userID).Debug("Conversation expired")
}

// Trim keeps the leading system turn and the most recent maxMessages-1 turns.
func Trim(turns []Turn, maxMessages int) []Turn {
	if maxMessages < 1 || len(turns) <= maxMessages {
		return turns
	}
	trimmed := make([]Turn, 0, maxMessages)
	trimmed = append(trimmed, turns[0])
	return append(trimmed, turns[len(turns)-(maxMessages-1):]...)
}
