package room

import (
	"sync"

	"github.com/google/uuid"
)

// Manager is the explicitly-owned room registry. Rooms are created on first
// join and removed when the last connection leaves.
type Manager struct {
	mu       sync.RWMutex
	rooms    map[string]*Room
	reporter ResultReporter
}

func NewManager(reporter ResultReporter) *Manager {
	return &Manager{
		rooms:    make(map[string]*Room),
		reporter: reporter,
	}
}

// RoomKey derives the registry key for a tournament match. A room without
// tournament linkage (practice) gets a throwaway unique key.
func RoomKey(tournamentID, matchID string) string {
	if tournamentID != "" && matchID != "" {
		return tournamentID + ":" + matchID
	}
	return "practice-" + uuid.NewString()
}

// GetOrCreateRoom returns the room for the given key, starting it if needed.
func (m *Manager) GetOrCreateRoom(key string) *Room {
	if key == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.rooms[key]; ok {
		return r
	}
	r := New(key)
	r.Reporter = m.reporter
	r.OnEmpty = func(k string) {
		m.removeRoom(k)
	}
	m.rooms[key] = r
	go r.Run()
	return r
}

func (m *Manager) removeRoom(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.rooms[key]; ok {
		r.Stop()
		delete(m.rooms, key)
	}
}

// NumRooms returns the number of live rooms (health/diagnostics).
func (m *Manager) NumRooms() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}
