package store

import (
	"slices"
	"sync"

	"somadev/internal/domain"
	"somadev/internal/events"
)

func agentID(a domain.Agent) string { return a.ID }

type Agents struct {
	mu       sync.RWMutex
	items    []domain.Agent
	selected string
	now      Clock
	pub      events.Publisher
}

func NewAgents(seed []domain.Agent, now Clock, pub events.Publisher) *Agents {
	return &Agents{items: slices.Clone(seed), now: now, pub: publisher(pub)}
}

func (s *Agents) List() []domain.Agent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

func (s *Agents) Get(id string) (domain.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return findWhere(s.items, agentID, id)
}

func (s *Agents) SetAll(items []domain.Agent) {
	s.mu.Lock()
	s.items = slices.Clone(items)
	stored := s.items
	s.mu.Unlock()
	s.pub.Publish(events.TopicAgent, stored)
}

// UpdateStatus sets status and current task and marks the agent active now.
// A nil currentTask clears it.
func (s *Agents) UpdateStatus(id string, status domain.AgentStatus, currentTask *string) bool {
	s.mu.Lock()
	at := s.now.now()
	var changed domain.Agent
	next, ok := updateWhere(s.items, agentID, id, func(a domain.Agent) domain.Agent {
		a.Status = status
		a.CurrentTask = currentTask
		a.LastActive = at
		changed = a
		return a
	})
	s.items = next
	s.mu.Unlock()
	if ok {
		s.pub.Publish(events.TopicAgent, changed)
	}
	return ok
}

// Select marks an agent as selected; "" clears the selection. The id is not
// checked against the collection.
func (s *Agents) Select(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = id
}

// Selected returns the selected agent, if it still exists.
func (s *Agents) Selected() (domain.Agent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == "" {
		return domain.Agent{}, false
	}
	a, err := findWhere(s.items, agentID, s.selected)
	return a, err == nil
}

// CountByStatus tallies agents per status.
func (s *Agents) CountByStatus() map[domain.AgentStatus]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := map[domain.AgentStatus]int{}
	for _, a := range s.items {
		out[a.Status]++
	}
	return out
}
