package queue

import (
	"sync"

	"github.com/contre95/lyricsvault/src/features/importing"
)

// InMemoryQueue is an in-memory implementation of the importing.Queue interface
type InMemoryQueue struct {
	items sync.Map // map[string]importing.RejectedItem
}

// NewInMemoryQueue creates a new in-memory queue
func NewInMemoryQueue() importing.Queue {
	return &InMemoryQueue{}
}

// Add adds a new item to the queue
func (q *InMemoryQueue) Add(item importing.RejectedItem) error {
	if _, loaded := q.items.LoadOrStore(item.ID, item); loaded {
		return importing.ErrAlreadyExists
	}
	return nil
}

// GetAll returns all items in the queue
func (q *InMemoryQueue) GetAll() map[string]importing.RejectedItem {
	items := make(map[string]importing.RejectedItem)
	q.items.Range(func(key, value any) bool {
		items[key.(string)] = value.(importing.RejectedItem)
		return true
	})
	return items
}

// GetByID returns a specific item by ID
func (q *InMemoryQueue) GetByID(id string) (importing.RejectedItem, error) {
	if value, ok := q.items.Load(id); ok {
		return value.(importing.RejectedItem), nil
	}
	return importing.RejectedItem{}, importing.ErrNotFound
}

// Remove removes an item from the queue by ID
func (q *InMemoryQueue) Remove(id string) error {
	if _, loaded := q.items.LoadAndDelete(id); !loaded {
		return importing.ErrNotFound
	}
	return nil
}

// Clear removes all items from the queue
func (q *InMemoryQueue) Clear() error {
	q.items.Clear()
	return nil
}
