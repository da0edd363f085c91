package store

import (
	"sync"

	"somadev/internal/domain"
	"somadev/internal/events"
)

// StatsPatch lists the counters an update may overwrite; nil means keep.
type StatsPatch struct {
	TotalProjects       *int     `json:"total_projects,omitempty"`
	ActiveAgents        *int     `json:"active_agents,omitempty"`
	TasksCompleted      *int     `json:"tasks_completed,omitempty"`
	DeploymentsThisWeek *int     `json:"deployments_this_week,omitempty"`
	AverageBuildTime    *float64 `json:"average_build_time,omitempty"`
	SuccessRate         *float64 `json:"success_rate,omitempty"`
}

type Stats struct {
	mu    sync.RWMutex
	stats domain.DashboardStats
	pub   events.Publisher
}

func NewStats(seed domain.DashboardStats, pub events.Publisher) *Stats {
	return &Stats{stats: seed, pub: publisher(pub)}
}

func (s *Stats) Get() domain.DashboardStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

func (s *Stats) Update(p StatsPatch) domain.DashboardStats {
	s.mu.Lock()
	next := s.stats
	if p.TotalProjects != nil {
		next.TotalProjects = *p.TotalProjects
	}
	if p.ActiveAgents != nil {
		next.ActiveAgents = *p.ActiveAgents
	}
	if p.TasksCompleted != nil {
		next.TasksCompleted = *p.TasksCompleted
	}
	if p.DeploymentsThisWeek != nil {
		next.DeploymentsThisWeek = *p.DeploymentsThisWeek
	}
	if p.AverageBuildTime != nil {
		next.AverageBuildTime = *p.AverageBuildTime
	}
	if p.SuccessRate != nil {
		next.SuccessRate = *p.SuccessRate
	}
	s.stats = next
	s.mu.Unlock()
	s.pub.Publish(events.TopicStats, next)
	return next
}
