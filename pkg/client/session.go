package client

import "sync"

// Session is the authenticated state shared by API consumers: the bearer
// token and the logged-in user, or the zero value when logged out.
type Session struct {
	Token string
	User  *User
}

// Active reports whether a token is held.
func (s Session) Active() bool {
	return s.Token != ""
}

// SessionStore is an observable holder of the current Session. Components
// subscribe to learn of login/logout instead of reading ambient storage.
type SessionStore struct {
	mu      sync.RWMutex
	session Session
	subs    map[int]chan Session
	nextID  int
}

func NewSessionStore() *SessionStore {
	return &SessionStore{subs: make(map[int]chan Session)}
}

// Current returns the session as of this call.
func (s *SessionStore) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// Token returns the current bearer token, or "" when logged out.
func (s *SessionStore) Token() string {
	return s.Current().Token
}

// Set replaces the session and notifies all subscribers.
func (s *SessionStore) Set(session Session) {
	s.mu.Lock()
	s.session = session
	subs := make([]chan Session, 0, len(s.subs))
	for _, ch := range s.subs {
		subs = append(subs, ch)
	}
	s.mu.Unlock()

	for _, ch := range subs {
		// Each subscriber channel holds only the latest session: drop the
		// stale value if the subscriber has not drained it yet. Every send
		// is non-blocking, so a stalled subscriber never stalls Set; if a
		// racing Set refills the slot first, that value is at least as
		// recent as ours.
		select {
		case ch <- session:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- session:
			default:
			}
		}
	}
}

// Clear logs out, notifying subscribers with the zero session.
func (s *SessionStore) Clear() {
	s.Set(Session{})
}

// Subscribe registers for session changes. The returned channel carries the
// most recent session after each change; call the returned function to
// unsubscribe.
func (s *SessionStore) Subscribe() (<-chan Session, func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	ch := make(chan Session, 1)
	s.subs[id] = ch
	s.mu.Unlock()

	unsubscribe := func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
	return ch, unsubscribe
}
