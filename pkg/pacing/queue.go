package pacing

import "time"

// Queue holds pending items in creation order. Items are only ever
// appended at the tail or removed, never reordered.
type Queue struct {
	items []Item
}

func (q *Queue) Push(items ...Item) {
	q.items = append(q.items, items...)
}

func (q *Queue) Len() int { return len(q.items) }

func (q *Queue) At(i int) Item { return q.items[i] }

// Remove takes the item at index i out of the queue, keeping the
// relative order of everything else.
func (q *Queue) Remove(i int) Item {
	item := q.items[i]
	copy(q.items[i:], q.items[i+1:])
	q.items[len(q.items)-1] = nil
	q.items = q.items[:len(q.items)-1]
	return item
}

// Due returns the indexes of items presented no later than cutoff,
// in queue order.
func (q *Queue) Due(cutoff time.Time) []int {
	var due []int
	for i, item := range q.items {
		if !item.PTS().After(cutoff) {
			due = append(due, i)
		}
	}
	return due
}

// Items returns a copy of the pending items.
func (q *Queue) Items() []Item {
	out := make([]Item, len(q.items))
	copy(out, q.items)
	return out
}

func (q *Queue) clear() []Item {
	items := q.items
	q.items = nil
	return items
}
