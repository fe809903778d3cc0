package orchestrator

import "sync"

// sessionLocks hands out one mutex per session id. Entries are never
// removed; a session's lock lives as long as the process.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sync.Mutex)}
}

// forSession returns the lock for id, creating it on first use.
func (s *sessionLocks) forSession(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	return lock
}
