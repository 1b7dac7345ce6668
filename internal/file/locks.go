package file

import (
	"sync"

	"github.com/google/uuid"
)

// lockSet hands out one RWMutex per file id, dropping it once unused.
type lockSet struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*refLock
}

type refLock struct {
	sync.RWMutex
	refs int
}

func newLockSet() *lockSet {
	return &lockSet{locks: make(map[uuid.UUID]*refLock)}
}

func (s *lockSet) acquire(id uuid.UUID) *refLock {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &refLock{}
		s.locks[id] = l
	}
	l.refs++
	return l
}

func (s *lockSet) release(id uuid.UUID, l *refLock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(s.locks, id)
	}
}

// RLock takes the shared side for id and returns its unlock func.
func (s *lockSet) RLock(id uuid.UUID) func() {
	l := s.acquire(id)
	l.RLock()
	return func() {
		l.RUnlock()
		s.release(id, l)
	}
}

// Lock takes the exclusive side for id and returns its unlock func.
func (s *lockSet) Lock(id uuid.UUID) func() {
	l := s.acquire(id)
	l.Lock()
	return func() {
		l.Unlock()
		s.release(id, l)
	}
}

func (s *lockSet) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locks)
}
