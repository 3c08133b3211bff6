package storage

import (
	"sync"

	"github.com/example/saathigo/internal/models"
)

// MemoryArchive keeps confirmed matches in process memory. Used when no
// Postgres DSN is configured and in tests.
type MemoryArchive struct {
	mu      sync.RWMutex
	matches map[string]models.ConfirmedMatch
}

func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{matches: make(map[string]models.ConfirmedMatch)}
}

func (a *MemoryArchive) SaveMatch(m models.ConfirmedMatch) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.matches[m.ID] = m
	return nil
}

func (a *MemoryArchive) Get(id string) (models.ConfirmedMatch, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	m, ok := a.matches[id]
	return m, ok
}

func (a *MemoryArchive) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.matches)
}
