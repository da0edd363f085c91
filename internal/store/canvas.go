package store

import (
	"slices"
	"sync"

	"somadev/internal/domain"
	"somadev/internal/events"
)

func nodeID(n domain.CanvasNode) string { return n.ID }

// Canvas holds the design graph shown on the canvas panel.
type Canvas struct {
	mu       sync.RWMutex
	data     domain.CanvasData
	selected string
	syncing  bool
	pub      events.Publisher
}

func NewCanvas(seed domain.CanvasData, pub events.Publisher) *Canvas {
	return &Canvas{data: cloneCanvas(seed), pub: publisher(pub)}
}

func cloneCanvas(d domain.CanvasData) domain.CanvasData {
	return domain.CanvasData{Nodes: slices.Clone(d.Nodes), Edges: slices.Clone(d.Edges)}
}

func (s *Canvas) Data() domain.CanvasData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneCanvas(s.data)
}

func (s *Canvas) SetData(d domain.CanvasData) {
	s.set(func(domain.CanvasData) domain.CanvasData { return cloneCanvas(d) })
}

func (s *Canvas) UpdateNodes(nodes []domain.CanvasNode) {
	s.set(func(cur domain.CanvasData) domain.CanvasData {
		return domain.CanvasData{Nodes: slices.Clone(nodes), Edges: cur.Edges}
	})
}

func (s *Canvas) UpdateEdges(edges []domain.CanvasEdge) {
	s.set(func(cur domain.CanvasData) domain.CanvasData {
		return domain.CanvasData{Nodes: cur.Nodes, Edges: slices.Clone(edges)}
	})
}

func (s *Canvas) AddNode(n domain.CanvasNode) {
	s.set(func(cur domain.CanvasData) domain.CanvasData {
		return domain.CanvasData{Nodes: appendCopy(cur.Nodes, n), Edges: cur.Edges}
	})
}

// RemoveNode drops the node and every edge that starts or ends at it.
func (s *Canvas) RemoveNode(id string) bool {
	s.mu.Lock()
	nodes, ok := deleteWhere(s.data.Nodes, nodeID, id)
	if !ok {
		s.mu.Unlock()
		return false
	}
	edges := make([]domain.CanvasEdge, 0, len(s.data.Edges))
	for _, e := range s.data.Edges {
		if e.Source != id && e.Target != id {
			edges = append(edges, e)
		}
	}
	s.data = domain.CanvasData{Nodes: nodes, Edges: edges}
	out := cloneCanvas(s.data)
	s.mu.Unlock()
	s.pub.Publish(events.TopicCanvas, out)
	return true
}

func (s *Canvas) set(fn func(domain.CanvasData) domain.CanvasData) {
	s.mu.Lock()
	s.data = fn(s.data)
	out := cloneCanvas(s.data)
	s.mu.Unlock()
	s.pub.Publish(events.TopicCanvas, out)
}

// SelectNode marks a node as selected; "" clears it.
func (s *Canvas) SelectNode(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = id
}

func (s *Canvas) SelectedNode() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

func (s *Canvas) SetSyncing(syncing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncing = syncing
}

func (s *Canvas) Syncing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.syncing
}
