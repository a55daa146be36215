// Package results implements the persistent tuning-results store: an
// in-memory signature-keyed map with JSON file serialization and a validator
// that ties a results file to the environment that produced it.
package results

import (
	"sync"

	"github.com/samcharles93/kerntune/internal/logger"
	"github.com/samcharles93/kerntune/internal/tunable"
)

// Manager maps (operation signature, parameter signature) to tuning results.
// Safe for concurrent use by multiple ops.
type Manager struct {
	mu      sync.RWMutex
	entries map[string]map[string]tunable.ResultEntry
	log     logger.Logger
}

// NewManager creates an empty results manager. A nil log falls back to the
// default logger.
func NewManager(log logger.Logger) *Manager {
	if log == nil {
		log = logger.Default()
	}
	return &Manager{
		entries: make(map[string]map[string]tunable.ResultEntry),
		log:     log,
	}
}

// Lookup returns the cached entry for the key, or the Null sentinel on a
// miss.
func (m *Manager) Lookup(opSig, paramsSig string) tunable.ResultEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if byParams, ok := m.entries[opSig]; ok {
		if e, ok := byParams[paramsSig]; ok {
			return e
		}
	}
	return tunable.Null()
}

// Add stores an entry for the key. An existing entry for the same key is
// kept: replacing a tuned decision requires deleting it first and re-tuning,
// never a silent overwrite.
func (m *Manager) Add(opSig, paramsSig string, entry tunable.ResultEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byParams, ok := m.entries[opSig]
	if !ok {
		byParams = make(map[string]tunable.ResultEntry)
		m.entries[opSig] = byParams
	}
	if existing, ok := byParams[paramsSig]; ok {
		if !existing.Equal(entry) {
			m.log.Warn("ignoring conflicting tuning result for existing key",
				"op", opSig, "params", paramsSig,
				"existing", existing.String(), "ignored", entry.String())
		}
		return
	}
	byParams[paramsSig] = entry
}

// Delete removes the entry for the key, if present.
func (m *Manager) Delete(opSig, paramsSig string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if byParams, ok := m.entries[opSig]; ok {
		delete(byParams, paramsSig)
		if len(byParams) == 0 {
			delete(m.entries, opSig)
		}
	}
}

// NumEntries returns the total number of stored results.
func (m *Manager) NumEntries() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, byParams := range m.entries {
		n += len(byParams)
	}
	return n
}

// Snapshot returns a deep copy of the stored results.
func (m *Manager) Snapshot() map[string]map[string]tunable.ResultEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]map[string]tunable.ResultEntry, len(m.entries))
	for opSig, byParams := range m.entries {
		inner := make(map[string]tunable.ResultEntry, len(byParams))
		for paramsSig, e := range byParams {
			inner[paramsSig] = e
		}
		out[opSig] = inner
	}
	return out
}

// OpSnapshot returns a copy of the results for one operation signature and
// whether any exist.
func (m *Manager) OpSnapshot(opSig string) (map[string]tunable.ResultEntry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	byParams, ok := m.entries[opSig]
	if !ok {
		return nil, false
	}
	out := make(map[string]tunable.ResultEntry, len(byParams))
	for paramsSig, e := range byParams {
		out[paramsSig] = e
	}
	return out, true
}

// replace swaps in a full result set, used when loading a file.
func (m *Manager) replace(entries map[string]map[string]tunable.ResultEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]map[string]tunable.ResultEntry, len(entries))
	for opSig, byParams := range entries {
		inner := make(map[string]tunable.ResultEntry, len(byParams))
		for paramsSig, e := range byParams {
			inner[paramsSig] = e
		}
		m.entries[opSig] = inner
	}
}
