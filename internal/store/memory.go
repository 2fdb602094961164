package store

import (
	"context"
	"sync"
)

// Memory is an in-process ListStore with the same removal semantics as the
// Redis driver. It backs handler tests and local development without a
// running Redis.
type Memory struct {
	mu    sync.Mutex
	lists map[string][]string
}

func NewMemory() *Memory {
	return &Memory{lists: make(map[string][]string)}
}

func (s *Memory) Push(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists[key] = append(s.lists[key], value)
	return nil
}

func (s *Memory) PushHead(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists[key] = append([]string{value}, s.lists[key]...)
	return nil
}

func (s *Memory) Range(ctx context.Context, key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.lists[key]))
	copy(out, s.lists[key])
	return out, nil
}

func (s *Memory) RemoveOne(ctx context.Context, key, value string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.lists[key]
	for i, v := range list {
		if v == value {
			s.lists[key] = append(list[:i:i], list[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *Memory) Ping(ctx context.Context) error {
	return nil
}
