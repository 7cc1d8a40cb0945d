package toast

import (
	"slices"
	"sync"
	"time"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindWarning Kind = "warning"
	KindInfo    Kind = "info"
)

const DefaultTTL = 3 * time.Second

type Toast struct {
	ID        int64      `json:"id"`
	Message   string     `json:"message"`
	Kind      Kind       `json:"kind"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// Queue holds the notifications pending for one shopper. Toasts expire
// lazily: List and Add drop whatever is past its deadline.
type Queue struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	lastID int64
	items  []Toast
}

func NewQueue(ttl time.Duration) *Queue {
	return &Queue{ttl: ttl, now: time.Now}
}

// Add queues message and returns its id. ttl <= 0 keeps the toast until
// Remove is called.
func (q *Queue) Add(message string, kind Kind, ttl time.Duration) int64 {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	q.pruneLocked(now)

	q.lastID++
	t := Toast{ID: q.lastID, Message: message, Kind: kind, CreatedAt: now}
	if ttl > 0 {
		exp := now.Add(ttl)
		t.ExpiresAt = &exp
	}
	q.items = append(q.items, t)
	return t.ID
}

func (q *Queue) Success(message string) int64 { return q.Add(message, KindSuccess, q.ttl) }
func (q *Queue) Error(message string) int64   { return q.Add(message, KindError, q.ttl) }
func (q *Queue) Warning(message string) int64 { return q.Add(message, KindWarning, q.ttl) }
func (q *Queue) Info(message string) int64    { return q.Add(message, KindInfo, q.ttl) }

func (q *Queue) Remove(id int64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	i := slices.IndexFunc(q.items, func(t Toast) bool { return t.ID == id })
	if i < 0 {
		return false
	}
	q.items = slices.Delete(q.items, i, i+1)
	return true
}

// List returns the live toasts in the order they were added.
func (q *Queue) List() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.pruneLocked(q.now())
	out := make([]Toast, len(q.items))
	copy(out, q.items)
	return out
}

func (q *Queue) pruneLocked(now time.Time) {
	q.items = slices.DeleteFunc(q.items, func(t Toast) bool {
		return t.ExpiresAt != nil && !now.Before(*t.ExpiresAt)
	})
}
