package store

import (
	"slices"
	"sync"
	"time"

	"somadev/internal/domain"
	"somadev/internal/events"
)

func taskID(t domain.Task) string { return t.ID }

// TaskPatch lists the fields an update may overwrite; nil means keep.
type TaskPatch struct {
	ProjectID      *string              `json:"project_id,omitempty"`
	Title          *string              `json:"title,omitempty"`
	Description    *string              `json:"description,omitempty"`
	Status         *domain.TaskStatus   `json:"status,omitempty" enum:"backlog,todo,in_progress,review,done"`
	Priority       *domain.TaskPriority `json:"priority,omitempty" enum:"low,medium,high,critical"`
	Assignee       *domain.AgentType    `json:"assignee,omitempty"`
	DueDate        *time.Time           `json:"due_date,omitempty"`
	EstimatedHours *float64             `json:"estimated_hours,omitempty"`
	ActualHours    *float64             `json:"actual_hours,omitempty"`
	Tags           *[]string            `json:"tags,omitempty"`
}

func (p TaskPatch) apply(t domain.Task) domain.Task {
	if p.ProjectID != nil {
		t.ProjectID = *p.ProjectID
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Assignee != nil {
		t.Assignee = p.Assignee
	}
	if p.DueDate != nil {
		t.DueDate = p.DueDate
	}
	if p.EstimatedHours != nil {
		t.EstimatedHours = p.EstimatedHours
	}
	if p.ActualHours != nil {
		t.ActualHours = p.ActualHours
	}
	if p.Tags != nil {
		t.Tags = slices.Clone(*p.Tags)
	}
	return t
}

// TaskMove is published on every effective move.
type TaskMove struct {
	Task     domain.Task       `json:"task"`
	Previous domain.TaskStatus `json:"previous"`
}

type Tasks struct {
	mu    sync.RWMutex
	items []domain.Task
	now   Clock
	pub   events.Publisher
}

func NewTasks(seed []domain.Task, now Clock, pub events.Publisher) *Tasks {
	return &Tasks{items: slices.Clone(seed), now: now, pub: publisher(pub)}
}

func (s *Tasks) List() []domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

func (s *Tasks) Get(id string) (domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return findWhere(s.items, taskID, id)
}

func (s *Tasks) SetAll(items []domain.Task) {
	s.mu.Lock()
	s.items = slices.Clone(items)
	stored := s.items
	s.mu.Unlock()
	s.pub.Publish(events.TopicTask, stored)
}

// Add appends t as given. The project id is not checked.
func (s *Tasks) Add(t domain.Task) {
	s.mu.Lock()
	s.items = appendCopy(s.items, t)
	s.mu.Unlock()
	s.pub.Publish(events.TopicTask, t)
}

// Update applies patch to the matching task and bumps updated_at.
func (s *Tasks) Update(id string, patch TaskPatch) bool {
	s.mu.Lock()
	at := s.now.now()
	var changed domain.Task
	next, ok := updateWhere(s.items, taskID, id, func(t domain.Task) domain.Task {
		t = patch.apply(t)
		t.UpdatedAt = at
		changed = t
		return t
	})
	s.items = next
	s.mu.Unlock()
	if ok {
		s.pub.Publish(events.TopicTask, changed)
	}
	return ok
}

// Move rewrites status and updated_at only. Any status may follow any other,
// including the current one.
func (s *Tasks) Move(id string, status domain.TaskStatus) bool {
	s.mu.Lock()
	at := s.now.now()
	var mv TaskMove
	next, ok := updateWhere(s.items, taskID, id, func(t domain.Task) domain.Task {
		mv.Previous = t.Status
		t.Status = status
		t.UpdatedAt = at
		mv.Task = t
		return t
	})
	s.items = next
	s.mu.Unlock()
	if ok {
		s.pub.Publish(events.TopicTask, mv)
	}
	return ok
}

func (s *Tasks) Delete(id string) bool {
	s.mu.Lock()
	next, ok := deleteWhere(s.items, taskID, id)
	s.items = next
	s.mu.Unlock()
	if ok {
		s.pub.Publish(events.TopicTask, map[string]string{"deleted": id})
	}
	return ok
}
