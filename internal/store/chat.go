package store

import (
	"slices"
	"sync"

	"somadev/internal/domain"
	"somadev/internal/events"
)

// Chat is the append-only conversation plus the typing indicator.
type Chat struct {
	mu     sync.RWMutex
	items  []domain.ChatMessage
	typing bool
	pub    events.Publisher
}

func NewChat(seed []domain.ChatMessage, pub events.Publisher) *Chat {
	return &Chat{items: slices.Clone(seed), pub: publisher(pub)}
}

func (s *Chat) List() []domain.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

func (s *Chat) Append(m domain.ChatMessage) {
	s.mu.Lock()
	s.items = appendCopy(s.items, m)
	s.mu.Unlock()
	s.pub.Publish(events.TopicChat, m)
}

func (s *Chat) Clear() {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()
	s.pub.Publish(events.TopicChat, map[string]bool{"cleared": true})
}

func (s *Chat) SetTyping(typing bool) {
	s.mu.Lock()
	changed := s.typing != typing
	s.typing = typing
	s.mu.Unlock()
	if changed {
		s.pub.Publish(events.TopicChat, map[string]bool{"typing": typing})
	}
}

func (s *Chat) Typing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.typing
}
