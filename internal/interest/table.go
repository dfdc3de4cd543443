package interest

import (
	"context"
	"slices"
	"sync"

	"cloud.google.com/go/civil"
)

// Table stores at most one rule per effective date.
type Table interface {
	// Upsert replaces any rule sharing r's effective date.
	Upsert(ctx context.Context, r Rule) error
	// Rules returns every rule ascending by effective date.
	Rules(ctx context.Context) ([]Rule, error)
	// RulesOnOrBefore returns the rules effective on or before day, ascending.
	RulesOnOrBefore(ctx context.Context, day civil.Date) ([]Rule, error)
}

type inMemoryTable struct {
	mu    sync.RWMutex
	rules []Rule
}

// NewInMemory creates a concurrency-safe in-memory rule table.
func NewInMemory() Table {
	return &inMemoryTable{}
}

func (t *inMemoryTable) Upsert(_ context.Context, r Rule) error {
	if err := r.Validate(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	next := slices.DeleteFunc(slices.Clone(t.rules), func(existing Rule) bool {
		return existing.Date == r.Date
	})
	next = append(next, r)
	Sort(next)
	t.rules = next
	return nil
}

func (t *inMemoryTable) Rules(_ context.Context) ([]Rule, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.rules), nil
}

func (t *inMemoryTable) RulesOnOrBefore(_ context.Context, day civil.Date) ([]Rule, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(OnOrBefore(t.rules, day)), nil
}
