// Package state provides thread-safe state shared between the roster
// reload loop and the UI.
package state

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/litescript/ls-globe/internal/entity"
)

// EventType represents the type of activity event.
type EventType string

const (
	EventSelected      EventType = "SELECTED"
	EventDismissed     EventType = "DISMISSED"
	EventCollaboration EventType = "COLLABORATION"
	EventOnline        EventType = "ENTITY_ONLINE"
	EventOffline       EventType = "ENTITY_OFFLINE"
	EventMoved         EventType = "ENTITY_MOVED"
)

// Event is one line of the activity log.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	EntityID  string    `json:"entity_id"`
	Name      string    `json:"name,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// HistoryEntry is the online count after one roster load.
type HistoryEntry struct {
	Timestamp time.Time
	Summary   entity.Summary
}

// Manager handles all shared application state with thread-safe access.
type Manager struct {
	mu sync.RWMutex

	// Current state
	current      *entity.Roster
	lastLoad     time.Time
	lastError    error
	loadDuration time.Duration
	summary      entity.Summary

	// Previous roster for event detection
	prev    map[string]entity.Entity
	hasPrev bool

	// Online count history
	history       []HistoryEntry
	maxHistoryLen int

	// Event log (ring buffer)
	events       []Event
	maxEvents    int
	eventWriteAt int

	refreshInterval time.Duration
	now             func() time.Time
}

// Config holds configuration for the state manager.
type Config struct {
	MaxHistoryLen   int
	MaxEvents       int
	RefreshInterval time.Duration
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		MaxHistoryLen:   60, // an hour of reloads at one per minute
		MaxEvents:       50,
		RefreshInterval: time.Minute,
	}
}

// NewManager creates a new state manager.
func NewManager(cfg Config) *Manager {
	maxEvents := cfg.MaxEvents
	if maxEvents <= 0 {
		maxEvents = 50
	}
	maxHistory := cfg.MaxHistoryLen
	if maxHistory <= 0 {
		maxHistory = 60
	}
	return &Manager{
		maxHistoryLen:   maxHistory,
		maxEvents:       maxEvents,
		events:          make([]Event, 0, maxEvents),
		refreshInterval: cfg.RefreshInterval,
		prev:            make(map[string]entity.Entity),
		now:             time.Now,
	}
}

// Update atomically records the result of a roster load. A failed load
// keeps the previous roster.
func (m *Manager) Update(roster *entity.Roster, loadDuration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.lastLoad = now
	m.lastError = err
	m.loadDuration = loadDuration

	if roster == nil {
		return
	}

	next := entity.Index(roster.Entities)
	if m.hasPrev {
		m.detectEvents(roster, next, now)
	}

	m.current = roster
	m.summary = entity.Summarize(roster.Entities)
	m.prev = next
	m.hasPrev = true

	m.history = append(m.history, HistoryEntry{Timestamp: now, Summary: m.summary})
	if len(m.history) > m.maxHistoryLen {
		m.history = m.history[1:]
	}
}

// detectEvents compares the new roster with the previous one. The first
// roster establishes the baseline and produces no events.
func (m *Manager) detectEvents(roster *entity.Roster, next map[string]entity.Entity, now time.Time) {
	for _, id := range orderedIDs(roster.Entities, next) {
		cur := next[id]
		old, existed := m.prev[id]
		wasOnline := existed && old.Online

		switch {
		case cur.Online && !wasOnline:
			m.addEvent(Event{Type: EventOnline, Timestamp: now, EntityID: cur.ID, Name: cur.Name, Detail: place(cur.Location)})
		case !cur.Online && wasOnline:
			m.addEvent(Event{Type: EventOffline, Timestamp: now, EntityID: cur.ID, Name: cur.Name})
		case existed && moved(old.Location, cur.Location):
			m.addEvent(Event{
				Type:      EventMoved,
				Timestamp: now,
				EntityID:  cur.ID,
				Name:      cur.Name,
				Detail:    fmt.Sprintf("%s → %s", place(old.Location), place(cur.Location)),
			})
		}
	}

	// Entities that left the roster while online go offline.
	for _, id := range orderedIDs(m.current.Entities, m.prev) {
		old := m.prev[id]
		if _, ok := next[id]; !ok && old.Online {
			m.addEvent(Event{Type: EventOffline, Timestamp: now, EntityID: id, Name: old.Name, Detail: "removed from roster"})
		}
	}
}

// orderedIDs returns the ids of idx in roster order so events are
// deterministic. Ids missing from source follow, sorted.
func orderedIDs(source []entity.Entity, idx map[string]entity.Entity) []string {
	var ids []string
	seen := make(map[string]bool, len(idx))
	for _, e := range source {
		if _, ok := idx[e.ID]; ok && !seen[e.ID] {
			ids = append(ids, e.ID)
			seen[e.ID] = true
		}
	}
	var rest []string
	for id := range idx {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	return append(ids, rest...)
}

func moved(a, b entity.Location) bool {
	return a.Lat != b.Lat || a.Lng != b.Lng
}

func place(l entity.Location) string {
	switch {
	case l.City != "" && l.Country != "":
		return l.City + ", " + l.Country
	case l.City != "":
		return l.City
	default:
		return fmt.Sprintf("%.2f, %.2f", l.Lat, l.Lng)
	}
}

// Record adds an interaction event (selection, dismissal, collaboration).
func (m *Manager) Record(t EventType, id, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addEvent(Event{Type: t, Timestamp: m.now(), EntityID: id, Name: name})
}

// addEvent adds an event to the ring buffer.
func (m *Manager) addEvent(e Event) {
	if len(m.events) < m.maxEvents {
		m.events = append(m.events, e)
	} else {
		m.events[m.eventWriteAt] = e
		m.eventWriteAt = (m.eventWriteAt + 1) % m.maxEvents
	}
}

// Snapshot represents an immutable snapshot of current state.
type Snapshot struct {
	Roster       *entity.Roster
	LastLoad     time.Time
	LastError    error
	LoadDuration time.Duration
	Summary      entity.Summary
	History      []HistoryEntry
	Events       []Event
}

// Snapshot returns a consistent snapshot of current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	hist := make([]HistoryEntry, len(m.history))
	copy(hist, m.history)

	return Snapshot{
		Roster:       m.current,
		LastLoad:     m.lastLoad,
		LastError:    m.lastError,
		LoadDuration: m.loadDuration,
		Summary:      m.summary,
		History:      hist,
		Events:       m.getEventsOrdered(),
	}
}

// getEventsOrdered returns events in chronological order.
func (m *Manager) getEventsOrdered() []Event {
	if len(m.events) == 0 {
		return nil
	}

	// If buffer isn't full yet, just copy
	if len(m.events) < m.maxEvents {
		result := make([]Event, len(m.events))
		copy(result, m.events)
		return result
	}

	// Ring buffer is full, reorder from oldest to newest
	result := make([]Event, m.maxEvents)
	for i := 0; i < m.maxEvents; i++ {
		idx := (m.eventWriteAt + i) % m.maxEvents
		result[i] = m.events[idx]
	}
	return result
}

// RecentEvents returns the last n events.
func (m *Manager) RecentEvents(n int) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.getEventsOrdered()
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}

// OnlineTrend returns the online counts from the history buffer, oldest first.
func (m *Manager) OnlineTrend() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]int, len(m.history))
	for i, h := range m.history {
		out[i] = h.Summary.Online
	}
	return out
}

// RefreshInterval returns the configured refresh interval.
func (m *Manager) RefreshInterval() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.refreshInterval
}

// SetRefreshInterval updates the refresh interval.
func (m *Manager) SetRefreshInterval(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshInterval = d
}

// HasData returns true if we have received at least one successful load.
func (m *Manager) HasData() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current != nil
}
