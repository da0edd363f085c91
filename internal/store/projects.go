package store

import (
	"slices"
	"sync"

	"somadev/internal/domain"
	"somadev/internal/events"
)

func projectID(p domain.Project) string { return p.ID }

// ProjectPatch lists the fields an update may overwrite; nil means keep.
type ProjectPatch struct {
	Name          *string               `json:"name,omitempty"`
	Description   *string               `json:"description,omitempty"`
	Type          *domain.ProjectType   `json:"type,omitempty" enum:"webapp,mobile,api,desktop,microservice"`
	Status        *domain.ProjectStatus `json:"status,omitempty" enum:"draft,planning,development,testing,deployed,archived"`
	Stack         *domain.TechStack     `json:"stack,omitempty"`
	TaskIDs       *[]string             `json:"task_ids,omitempty"`
	Agents        *[]domain.AgentType   `json:"agents,omitempty"`
	PreviewURL    *string               `json:"preview_url,omitempty"`
	ProductionURL *string               `json:"production_url,omitempty"`
}

func (p ProjectPatch) apply(v domain.Project) domain.Project {
	if p.Name != nil {
		v.Name = *p.Name
	}
	if p.Description != nil {
		v.Description = *p.Description
	}
	if p.Type != nil {
		v.Type = *p.Type
	}
	if p.Status != nil {
		v.Status = *p.Status
	}
	if p.Stack != nil {
		v.Stack = *p.Stack
	}
	if p.TaskIDs != nil {
		v.TaskIDs = slices.Clone(*p.TaskIDs)
	}
	if p.Agents != nil {
		v.Agents = slices.Clone(*p.Agents)
	}
	if p.PreviewURL != nil {
		v.PreviewURL = p.PreviewURL
	}
	if p.ProductionURL != nil {
		v.ProductionURL = p.ProductionURL
	}
	return v
}

type Projects struct {
	mu       sync.RWMutex
	items    []domain.Project
	selected string
	now      Clock
	pub      events.Publisher
}

func NewProjects(seed []domain.Project, now Clock, pub events.Publisher) *Projects {
	return &Projects{items: slices.Clone(seed), now: now, pub: publisher(pub)}
}

func (s *Projects) List() []domain.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

func (s *Projects) Get(id string) (domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return findWhere(s.items, projectID, id)
}

func (s *Projects) SetAll(items []domain.Project) {
	s.mu.Lock()
	s.items = slices.Clone(items)
	stored := s.items
	s.mu.Unlock()
	s.pub.Publish(events.TopicProject, stored)
}

// Add appends p as given; duplicate ids are kept.
func (s *Projects) Add(p domain.Project) {
	s.mu.Lock()
	s.items = appendCopy(s.items, p)
	s.mu.Unlock()
	s.pub.Publish(events.TopicProject, p)
}

// Update applies patch to the matching project and bumps updated_at.
func (s *Projects) Update(id string, patch ProjectPatch) bool {
	s.mu.Lock()
	at := s.now.now()
	var changed domain.Project
	next, ok := updateWhere(s.items, projectID, id, func(p domain.Project) domain.Project {
		p = patch.apply(p)
		p.UpdatedAt = at
		changed = p
		return p
	})
	s.items = next
	s.mu.Unlock()
	if ok {
		s.pub.Publish(events.TopicProject, changed)
	}
	return ok
}

func (s *Projects) Select(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = id
}

func (s *Projects) Selected() (domain.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == "" {
		return domain.Project{}, false
	}
	p, err := findWhere(s.items, projectID, s.selected)
	return p, err == nil
}
