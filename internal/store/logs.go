package store

import (
	"slices"
	"strings"
	"sync"

	"somadev/internal/domain"
	"somadev/internal/events"
)

// LogFilter narrows a log listing. Zero values match everything.
type LogFilter struct {
	// Query matches the message or the agent, case-insensitively.
	Query string
	Level domain.LogLevel
	Agent domain.AgentType
}

func (f LogFilter) match(l domain.LogEntry) bool {
	if f.Level != "" && l.Level != f.Level {
		return false
	}
	if f.Agent != "" && (l.Agent == nil || *l.Agent != f.Agent) {
		return false
	}
	if f.Query == "" {
		return true
	}
	q := strings.ToLower(f.Query)
	if strings.Contains(strings.ToLower(l.Message), q) {
		return true
	}
	return l.Agent != nil && strings.Contains(strings.ToLower(string(*l.Agent)), q)
}

// Logs is an append-only activity log, clearable in bulk.
type Logs struct {
	mu    sync.RWMutex
	items []domain.LogEntry
	pub   events.Publisher
}

func NewLogs(seed []domain.LogEntry, pub events.Publisher) *Logs {
	return &Logs{items: slices.Clone(seed), pub: publisher(pub)}
}

func (s *Logs) List() []domain.LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

func (s *Logs) Append(l domain.LogEntry) {
	s.mu.Lock()
	s.items = appendCopy(s.items, l)
	s.mu.Unlock()
	s.pub.Publish(events.TopicLog, l)
}

func (s *Logs) Clear() {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()
	s.pub.Publish(events.TopicLog, map[string]bool{"cleared": true})
}

func (s *Logs) ByProject(projectID string) []domain.LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.LogEntry
	for _, l := range s.items {
		if l.ProjectID != nil && *l.ProjectID == projectID {
			out = append(out, l)
		}
	}
	return out
}

func (s *Logs) Filter(f LogFilter) []domain.LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.LogEntry
	for _, l := range s.items {
		if f.match(l) {
			out = append(out, l)
		}
	}
	return out
}
