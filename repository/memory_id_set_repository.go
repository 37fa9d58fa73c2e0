// Package repository provides data access layer implementations and interfaces for the durable ID store
package repository

import (
	"context"
	"sync"
)

// MemoryIDSetRepository keeps ID sets in process memory. It backs tests and
// the "memory" storage provider; nothing survives a restart.
type MemoryIDSetRepository struct {
	mu   sync.Mutex
	sets map[string][]int
}

// NewMemoryIDSetRepository creates an empty in-memory ID set repository.
func NewMemoryIDSetRepository() *MemoryIDSetRepository {
	return &MemoryIDSetRepository{sets: make(map[string][]int)}
}

func (r *MemoryIDSetRepository) Get(_ context.Context, key string) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := r.sets[key]
	ids := make([]int, len(stored))
	copy(ids, stored)
	return ids, nil
}

func (r *MemoryIDSetRepository) Set(_ context.Context, key string, ids []int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := make([]int, len(ids))
	copy(stored, ids)
	r.sets[key] = stored
	return nil
}
