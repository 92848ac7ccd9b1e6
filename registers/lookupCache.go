package registers

import "context"

// lookupCache memoizes point lookups for the duration of one upload call.
// Absent rows are memoized as nil so repeated misses cost one query; errors
// are not memoized. The cache is not shared across calls, so a register
// changed between uploads is never served stale.
type lookupCache[E any] struct {
	find    func(context.Context, string) (*E, error)
	entries map[string]*E
}

func newLookupCache[E any](find func(context.Context, string) (*E, error)) *lookupCache[E] {
	return &lookupCache[E]{
		find:    find,
		entries: make(map[string]*E),
	}
}

func (c *lookupCache[E]) Get(ctx context.Context, key string) (*E, error) {
	if cached, ok := c.entries[key]; ok {
		return cached, nil
	}
	row, err := c.find(ctx, key)
	if err != nil {
		return nil, err
	}
	c.entries[key] = row
	return row, nil
}
