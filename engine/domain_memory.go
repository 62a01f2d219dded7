package engine

import (
	"sync"
	"time"
)

type memoryEntry struct {
	engine    string
	expiresAt time.Time
}

// DomainMemory remembers which engine last succeeded for a host.
type DomainMemory struct {
	store sync.Map // host -> memoryEntry
	ttl   time.Duration
	now   func() time.Time
}

// NewDomainMemory creates a DomainMemory whose entries live for ttl.
// Expired entries are dropped lazily on lookup.
func NewDomainMemory(ttl time.Duration) *DomainMemory {
	return &DomainMemory{ttl: ttl, now: time.Now}
}

// Get returns the remembered engine for host, or "".
func (m *DomainMemory) Get(host string) string {
	v, ok := m.store.Load(host)
	if !ok {
		return ""
	}
	e := v.(memoryEntry)
	if m.now().After(e.expiresAt) {
		m.store.Delete(host)
		return ""
	}
	return e.engine
}

// Set records engine as the winner for host.
func (m *DomainMemory) Set(host, engine string) {
	m.store.Store(host, memoryEntry{engine: engine, expiresAt: m.now().Add(m.ttl)})
}

// Delete forgets host.
func (m *DomainMemory) Delete(host string) {
	m.store.Delete(host)
}
