package session

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Manager errors.
var (
	ErrTooManySessions = errors.New("session limit reached")
	ErrUnknownSession  = errors.New("unknown session")
)

// Manager holds independent sessions by name. The map is guarded for
// concurrent Open/Get/Close; each session itself stays single-threaded
// and unshared.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	limit    int
	defaults Options
}

// NewManager creates a manager that opens sessions with the given
// defaults. A limit of zero means unlimited.
func NewManager(limit int, defaults Options) *Manager {
	return &Manager{
		sessions: map[string]*Session{},
		limit:    limit,
		defaults: defaults,
	}
}

// Open returns the named session, creating it on first use.
func (m *Manager) Open(name string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.sessions[name]; ok {
		return existing, nil
	}

	if m.limit > 0 && len(m.sessions) >= m.limit {
		return nil, fmt.Errorf("%w: %d open", ErrTooManySessions, len(m.sessions))
	}

	created := New(name, m.defaults)
	m.sessions[name] = created

	return created, nil
}

// Get returns the named session if it exists.
func (m *Manager) Get(name string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.sessions[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSession, name)
	}

	return existing, nil
}

// Close tears the named session down. Its arena is dropped with it; no
// node outlives its session.
func (m *Manager) Close(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSession, name)
	}

	delete(m.sessions, name)

	return nil
}

// Names returns the open session names, sorted.
func (m *Manager) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.sessions))
	for name := range m.sessions {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.sessions)
}

// HibernateIdle compresses the arenas of every idle session in
// parallel and returns the number of sessions hibernated.
func (m *Manager) HibernateIdle() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	var (
		wg    sync.WaitGroup
		cmu   sync.Mutex
		count int
	)

	for _, sess := range m.sessions {
		wg.Add(1)

		go func(s *Session) {
			defer wg.Done()

			if s.Hibernate() {
				cmu.Lock()
				count++
				cmu.Unlock()
			}
		}(sess)
	}

	wg.Wait()

	return count
}
