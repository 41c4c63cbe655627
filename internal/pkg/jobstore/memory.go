package jobstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/prismwriting/prism/internal/pkg/persistence"
)

type item struct {
	job     *persistence.Job
	expires time.Time
}

// Memory keeps jobs in process memory, values expire after ttl
type Memory struct {
	lock  sync.RWMutex
	items map[string]*item
	ttl   time.Duration
	now   func() time.Time
}

// NewMemory creates in memory job store, ttl <= 0 disables expiration
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{items: map[string]*item{}, ttl: ttl, now: time.Now}
}

// Set stores a copy of the job
func (m *Memory) Set(_ context.Context, id string, job *persistence.Job) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.items[id] = &item{job: job.Clone(), expires: m.expiresAt()}
	return nil
}

// Get returns a copy of the job or nil if not found
func (m *Memory) Get(_ context.Context, id string) (*persistence.Job, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	it, ok := m.items[id]
	if !ok || m.expired(it) {
		return nil, nil
	}
	return it.job.Clone(), nil
}

// Has checks if job exists
func (m *Memory) Has(ctx context.Context, id string) (bool, error) {
	j, err := m.Get(ctx, id)
	return j != nil, err
}

// Delete removes job, returns false if there was nothing to delete
func (m *Memory) Delete(_ context.Context, id string) (bool, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	it, ok := m.items[id]
	if !ok {
		return false, nil
	}
	delete(m.items, id)
	return !m.expired(it), nil
}

// GetAll returns all not expired jobs ordered by creation time
func (m *Memory) GetAll(_ context.Context) ([]*persistence.Job, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	res := make([]*persistence.Job, 0, len(m.items))
	for _, it := range m.items {
		if !m.expired(it) {
			res = append(res, it.job.Clone())
		}
	}
	sortJobs(res)
	return res, nil
}

// Clear drops all jobs
func (m *Memory) Clear(_ context.Context) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.items = map[string]*item{}
	return nil
}

// Size returns count of not expired jobs
func (m *Memory) Size(_ context.Context) (int, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	res := 0
	for _, it := range m.items {
		if !m.expired(it) {
			res++
		}
	}
	return res, nil
}

// Evict drops expired jobs, returns dropped IDs
func (m *Memory) Evict() []string {
	m.lock.Lock()
	defer m.lock.Unlock()
	var res []string
	for id, it := range m.items {
		if m.expired(it) {
			delete(m.items, id)
			res = append(res, id)
		}
	}
	return res
}

// StartEviction runs Evict periodically until ctx is canceled
// returns channel closed when the loop exits
func (m *Memory) StartEviction(ctx context.Context, every time.Duration) <-chan struct{} {
	res := make(chan struct{})
	go func() {
		defer close(res)
		if every <= 0 {
			goapp.Log.Warn().Msg("no eviction interval, skip")
			return
		}
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				goapp.Log.Info().Msg("exit eviction loop")
				return
			case <-ticker.C:
				if ids := m.Evict(); len(ids) > 0 {
					goapp.Log.Info().Int("count", len(ids)).Msg("evicted jobs")
				}
			}
		}
	}()
	return res
}

func (m *Memory) expiresAt() time.Time {
	if m.ttl <= 0 {
		return time.Time{}
	}
	return m.now().Add(m.ttl)
}

func (m *Memory) expired(it *item) bool {
	return !it.expires.IsZero() && !m.now().Before(it.expires)
}

func sortJobs(jobs []*persistence.Job) {
	sort.SliceStable(jobs, func(i, j int) bool {
		if jobs[i].Created.Equal(jobs[j].Created) {
			return jobs[i].ID < jobs[j].ID
		}
		return jobs[i].Created.Before(jobs[j].Created)
	})
}
