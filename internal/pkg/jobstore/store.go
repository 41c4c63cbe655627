package jobstore

import (
	"context"

	"github.com/prismwriting/prism/internal/pkg/persistence"
)

// Store keeps video processing jobs by ID.
// Get returns nil, nil for an unknown ID
type Store interface {
	Set(ctx context.Context, id string, job *persistence.Job) error
	Get(ctx context.Context, id string) (*persistence.Job, error)
	Has(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	GetAll(ctx context.Context) ([]*persistence.Job, error)
	Clear(ctx context.Context) error
	Size(ctx context.Context) (int, error)
}

// Cleaner adapts the store for the clean timer
type Cleaner struct {
	Store Store
}

// Clean deletes the job
func (c *Cleaner) Clean(ctx context.Context, id string) error {
	_, err := c.Store.Delete(ctx, id)
	return err
}
