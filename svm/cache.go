package svm

import "container/list"

// rowCache keeps the most recently used kernel rows. It is owned by a single
// solver and is not safe for concurrent use.
type rowCache struct {
	capacity int
	order    *list.List
	rows     map[int]*list.Element
}

type cacheEntry struct {
	index int
	row   []float64
}

// newRowCache sizes the cache to hold as many rows of length n as fit in
// megabytes, and never fewer than two.
func newRowCache(megabytes, n int) *rowCache {
	capacity := 2
	if n > 0 {
		if c := (megabytes << 20) / (8 * n); c > capacity {
			capacity = c
		}
	}
	return &rowCache{
		capacity: capacity,
		order:    list.New(),
		rows:     make(map[int]*list.Element),
	}
}

func (c *rowCache) get(i int) ([]float64, bool) {
	el, ok := c.rows[i]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).row, true
}

// put stores row i as the most recent entry, evicting the least recently
// used rows above capacity.
func (c *rowCache) put(i int, row []float64) {
	if el, ok := c.rows[i]; ok {
		el.Value.(*cacheEntry).row = row
		c.order.MoveToFront(el)
		return
	}
	c.rows[i] = c.order.PushFront(&cacheEntry{index: i, row: row})
	for c.order.Len() > c.capacity {
		last := c.order.Back()
		c.order.Remove(last)
		delete(c.rows, last.Value.(*cacheEntry).index)
	}
}

func (c *rowCache) len() int {
	return c.order.Len()
}
