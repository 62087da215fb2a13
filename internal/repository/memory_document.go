package repository

import (
	"context"
	"sync"

	"github.com/RealZimboGuy/gopherflow-designer/pkg/designer/domain"
)

// MemoryDocumentStore keeps documents in process. Used with
// GFLOW_DATABASE_TYPE=MEMORY and in tests.
type MemoryDocumentStore struct {
	mu   sync.RWMutex
	docs map[string]domain.Workflow
}

func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{docs: make(map[string]domain.Workflow)}
}

func (r *MemoryDocumentStore) Save(_ context.Context, key string, w domain.Workflow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[key] = w.Clone()
	return nil
}

func (r *MemoryDocumentStore) Load(_ context.Context, key string) (*domain.Workflow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.docs[key]
	if !ok {
		return nil, nil
	}
	c := w.Clone()
	return &c, nil
}

func (r *MemoryDocumentStore) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.docs, key)
	return nil
}
