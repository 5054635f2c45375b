package feed

import (
	"container/list"
	"fmt"
	"sync"
)

const DefaultRecencyCapacity = 1000

// RecencyCache remembers the links of recently delivered items that carried
// no usable publication date. It holds at most capacity links and evicts the
// oldest insertion first. Entries are never refreshed on lookup.
type RecencyCache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // oldest at front
	seen     map[string]*list.Element
}

func NewRecencyCache(capacity int) (*RecencyCache, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("recency cache capacity must be positive, got %d", capacity)
	}
	return &RecencyCache{
		capacity: capacity,
		order:    list.New(),
		seen:     make(map[string]*list.Element, capacity),
	}, nil
}

// Contains reports whether id is currently remembered.
func (c *RecencyCache) Contains(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.seen[id]
	return ok
}

// Record appends id if it is not already present, evicting the oldest entry
// when the cache grows past capacity.
func (c *RecencyCache) Record(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.seen[id]; ok {
		return
	}
	c.seen[id] = c.order.PushBack(id)

	if c.order.Len() > c.capacity {
		front := c.order.Front()
		c.order.Remove(front)
		delete(c.seen, front.Value.(string))
	}
}

func (c *RecencyCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *RecencyCache) Capacity() int {
	return c.capacity
}
