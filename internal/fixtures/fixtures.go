// Package fixtures holds the seed state every fresh App starts from.
package fixtures

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"somadev/internal/domain"
)

//go:embed seed.yaml
var seedYAML []byte

// Seed is the fully resolved fixture state for one point in time.
type Seed struct {
	Agents      []domain.Agent
	Projects    []domain.Project
	Tasks       []domain.Task
	Messages    []domain.ChatMessage
	Logs        []domain.LogEntry
	Canvas      domain.CanvasData
	Stats       domain.DashboardStats
	Deployments []domain.Deployment
}

type agentRow struct {
	domain.Agent  `yaml:",inline"`
	LastActiveAgo time.Duration `yaml:"last_active_ago"`
}

type projectRow struct {
	domain.Project `yaml:",inline"`
	CreatedAgo     time.Duration `yaml:"created_ago"`
	UpdatedAgo     time.Duration `yaml:"updated_ago"`
}

type taskRow struct {
	domain.Task `yaml:",inline"`
	CreatedAgo  time.Duration `yaml:"created_ago"`
	UpdatedAgo  time.Duration `yaml:"updated_ago"`
}

type messageRow struct {
	domain.ChatMessage `yaml:",inline"`
	Ago                time.Duration `yaml:"ago"`
}

type logRow struct {
	domain.LogEntry `yaml:",inline"`
	Ago             time.Duration `yaml:"ago"`
}

type deploymentRow struct {
	domain.Deployment `yaml:",inline"`
	CreatedAgo        time.Duration `yaml:"created_ago"`
}

type seedFile struct {
	Agents      []agentRow            `yaml:"agents"`
	Projects    []projectRow          `yaml:"projects"`
	Tasks       []taskRow             `yaml:"tasks"`
	Messages    []messageRow          `yaml:"messages"`
	Logs        []logRow              `yaml:"logs"`
	Canvas      domain.CanvasData     `yaml:"canvas"`
	Stats       domain.DashboardStats `yaml:"stats"`
	Deployments []deploymentRow       `yaml:"deployments"`
}

// Load decodes the embedded seed and anchors every relative age at now.
// Each call returns fresh slices; callers may keep them.
func Load(now time.Time) (Seed, error) {
	var f seedFile
	if err := yaml.Unmarshal(seedYAML, &f); err != nil {
		return Seed{}, fmt.Errorf("decode seed fixtures: %w", err)
	}
	var s Seed
	for _, r := range f.Agents {
		a := r.Agent
		a.LastActive = now.Add(-r.LastActiveAgo)
		s.Agents = append(s.Agents, a)
	}
	for _, r := range f.Projects {
		p := r.Project
		p.CreatedAt = now.Add(-r.CreatedAgo)
		p.UpdatedAt = now.Add(-r.UpdatedAgo)
		if p.TaskIDs == nil {
			p.TaskIDs = []string{}
		}
		s.Projects = append(s.Projects, p)
	}
	for _, r := range f.Tasks {
		t := r.Task
		t.CreatedAt = now.Add(-r.CreatedAgo)
		t.UpdatedAt = now.Add(-r.UpdatedAgo)
		s.Tasks = append(s.Tasks, t)
	}
	for _, r := range f.Messages {
		m := r.ChatMessage
		m.Timestamp = now.Add(-r.Ago)
		s.Messages = append(s.Messages, m)
	}
	for _, r := range f.Logs {
		l := r.LogEntry
		l.Timestamp = now.Add(-r.Ago)
		s.Logs = append(s.Logs, l)
	}
	for _, r := range f.Deployments {
		d := r.Deployment
		d.CreatedAt = now.Add(-r.CreatedAgo)
		s.Deployments = append(s.Deployments, d)
	}
	s.Canvas = f.Canvas
	s.Stats = f.Stats
	return s, nil
}

// MustLoad is Load for callers that treat a broken embedded seed as a bug.
func MustLoad(now time.Time) Seed {
	s, err := Load(now)
	if err != nil {
		panic(err)
	}
	return s
}
