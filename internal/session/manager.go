// Package session is the host side of a trial run: it owns participant
// sessions, walks each one through its timeline of trials, and collects
// the per-trial results. The trial component itself stores nothing.
package session

import (
	"errors"
	"math/rand"
	"sync"

	"github.com/google/uuid"

	"github.com/Chuan-Peng-Lab/trialkit/internal/plugins/htmlresponse"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNoTrials        = errors.New("timeline has no trials")
	ErrAlreadyStarted  = errors.New("session already started")
)

type Manager struct {
	mu         sync.RWMutex
	sessions   map[string]*Session
	exportFile string
}

// NewManager creates a session registry. exportFile enables append-mode
// results export when non-empty.
func NewManager(exportFile string) *Manager {
	return &Manager{sessions: make(map[string]*Session), exportFile: exportFile}
}

func (m *Manager) CreateSession(trials []htmlresponse.Params) (*Session, error) {
	if len(trials) == 0 {
		return nil, ErrNoTrials
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	code := randomCode(5)
	for m.sessions[code] != nil {
		code = randomCode(5)
	}
	s := newSession(code, uuid.NewString(), trials, m.exportFile)
	m.sessions[code] = s
	return s, nil
}

func (m *Manager) Get(code string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.sessions[code]
	if s == nil {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Remove tears the session down and drops it from the registry.
func (m *Manager) Remove(code string) {
	m.mu.Lock()
	s := m.sessions[code]
	delete(m.sessions, code)
	m.mu.Unlock()
	if s != nil {
		s.Close()
	}
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func randomCode(n int) string {
	letters := []rune("ABCDEFGHJKLMNPQRSTUVWXYZ23456789")
	b := make([]rune, n)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}
