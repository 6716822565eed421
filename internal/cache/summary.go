package cache

import "fmt"

// SummaryCache maps summary keys to generated summaries. Entries never
// expire; Put overwrites.
type SummaryCache struct {
	store Store
}

func NewSummaryCache(store Store) *SummaryCache {
	return &SummaryCache{store: store}
}

func (c *SummaryCache) Get(key string) (string, bool, error) {
	data, ok, err := c.store.Get(key)
	if err != nil {
		return "", false, fmt.Errorf("get cached summary: %w", err)
	}

	if !ok {
		return "", false, nil
	}

	return string(data), true, nil
}

func (c *SummaryCache) Put(key string, text string) error {
	if err := c.store.Put(key, []byte(text)); err != nil {
		return fmt.Errorf("put cached summary: %w", err)
	}

	return nil
}

func (c *SummaryCache) Path(key string) string {
	return c.store.Path(key)
}
