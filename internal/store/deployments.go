package store

import (
	"slices"

	"somadev/internal/domain"
)

func deploymentID(d domain.Deployment) string { return d.ID }

// Deployments is read-only after construction.
type Deployments struct {
	items []domain.Deployment
}

func NewDeployments(seed []domain.Deployment) *Deployments {
	return &Deployments{items: slices.Clone(seed)}
}

func (s *Deployments) List() []domain.Deployment {
	return slices.Clone(s.items)
}

func (s *Deployments) Get(id string) (domain.Deployment, error) {
	return findWhere(s.items, deploymentID, id)
}

func (s *Deployments) ByProject(projectID string) []domain.Deployment {
	var out []domain.Deployment
	for _, d := range s.items {
		if d.ProjectID == projectID {
			out = append(out, d)
		}
	}
	return out
}
