package dedup

import (
	"context"
	"sync"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/ports"
)

var _ ports.CallbackDeduplicator = (*Memory)(nil)

type Memory struct {
	clock kernel.Clock

	mu     sync.Mutex
	claims map[string]time.Time
}

func NewMemory(clock kernel.Clock) *Memory {
	return &Memory{
		clock:  clock,
		claims: make(map[string]time.Time),
	}
}

func (m *Memory) Claim(_ context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	if expires, ok := m.claims[key]; ok && now.Before(expires) {
		return false, nil
	}
	m.claims[key] = now.Add(ttl)
	return true, nil
}

func (m *Memory) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.claims, key)
	return nil
}
