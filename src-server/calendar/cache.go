package calendar

import (
	"fmt"
	"sync"

	"moncal/src-server/recurrence"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache keeps recently expanded months. Every event write must call Purge.
//
// A reader that expanded a month takes Generation before loading events and
// hands it back to Add, so a result computed from rows that were replaced in
// the meantime is never stored.
type Cache struct {
	months *lru.Cache[string, []recurrence.Occurrence]

	mu         sync.Mutex
	generation uint64
}

func NewCache(size int) (*Cache, error) {
	months, err := lru.New[string, []recurrence.Occurrence](size)
	if err != nil {
		return nil, fmt.Errorf("NewCache: %w", err)
	}
	return &Cache{months: months}, nil
}

func (c *Cache) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

func (c *Cache) Get(month recurrence.Date) ([]recurrence.Occurrence, bool) {
	return c.months.Get(month.MonthKey())
}

// Add stores occurrences for month unless the cache was purged after gen was taken.
func (c *Cache) Add(month recurrence.Date, gen uint64, occurrences []recurrence.Occurrence) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != gen {
		return false
	}
	c.months.Add(month.MonthKey(), occurrences)
	return true
}

func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.months.Purge()
}

func (c *Cache) Len() int {
	return c.months.Len()
}
