package service

import (
	"sync"

	"go.uber.org/zap"

	"ocorrencias-ponto/backend/internal/filter"
	"ocorrencias-ponto/backend/internal/table"
	"ocorrencias-ponto/backend/pkg/identity"
)

// Session is one user's dashboard state: filters, table page and sort.
// It lives in memory only.
type Session struct {
	Filters *filter.Holder
	Pager   *table.Pager
}

// SessionStore keeps a Session per signed-in user
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	logger   *zap.Logger
}

// NewSessionStore creates an empty store
func NewSessionStore(logger *zap.Logger) *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session), logger: logger}
}

// Get returns the user's session, creating a fresh one on first use
func (s *SessionStore) Get(userID string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		sess = &Session{Filters: filter.NewHolder(), Pager: table.NewPager()}
		s.sessions[userID] = sess
	}
	return sess
}

// Drop discards the user's session
func (s *SessionStore) Drop(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

// Len returns the number of live sessions
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// HandleEvent starts a clean session on sign-in and drops it on sign-out
func (s *SessionStore) HandleEvent(e identity.Event) {
	switch e.Type {
	case identity.SignedIn:
		s.Drop(e.User.ID)
		s.Get(e.User.ID)
	case identity.SignedOut:
		s.Drop(e.User.ID)
		s.logger.Debug("dashboard session dropped", zap.String("user_id", e.User.ID))
	}
}
