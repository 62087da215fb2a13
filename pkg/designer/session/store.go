package session

import (
	"context"

	"github.com/RealZimboGuy/gopherflow-designer/pkg/designer/domain"
)

// Store is the persistence port a session writes through after every
// successful mutation. Implementations live in internal/repository.
type Store interface {
	// Load returns the stored workflow, or nil, nil when the key is unknown.
	Load(ctx context.Context, key string) (*domain.Workflow, error)
	Save(ctx context.Context, key string, w domain.Workflow) error
}

// Deleter is implemented by stores that can drop a document outright.
// Clear uses it instead of saving an empty workflow.
type Deleter interface {
	Delete(ctx context.Context, key string) error
}

// Option configures a Session.
type Option func(*Session)

// WithStore makes the session persist its workflow under key.
func WithStore(store Store, key string) Option {
	return func(s *Session) {
		s.store = store
		s.key = key
	}
}
