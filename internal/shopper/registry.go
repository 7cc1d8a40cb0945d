package shopper

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/events"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/session"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/storage"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/toast"
)

// Shopper bundles the state of one browser session.
type Shopper struct {
	ID       string
	Cart     *cart.Store
	Session  *session.Store
	Toasts   *toast.Queue
	Checkout *checkout.Orchestrator

	lastSeen time.Time
	inFlight int
}

// Backend groups the clients a shopper's stores talk to.
type Backend struct {
	Auth      session.AuthAPI
	Orders    checkout.OrderAPI
	Payments  checkout.PaymentAPI
	Addresses checkout.AddressAPI
}

type Options struct {
	Store    storage.Store
	Backend  Backend
	Events   events.Publisher
	Fees     cart.Fees
	ToastTTL time.Duration
	Logger   *log.Logger
}

// Registry lazily builds shoppers and keeps them in memory while active.
// Evicted shoppers are rebuilt from storage on their next request; a shopper
// is never evicted while a request holds it.
type Registry struct {
	opts Options
	now  func() time.Time

	mu       sync.Mutex
	shoppers map[string]*Shopper
}

func NewRegistry(opts Options) *Registry {
	if opts.ToastTTL == 0 {
		opts.ToastTTL = toast.DefaultTTL
	}
	return &Registry{opts: opts, now: time.Now, shoppers: make(map[string]*Shopper)}
}

// Get returns the shopper for id, restoring persisted state on first use.
func (r *Registry) Get(ctx context.Context, id string) (*Shopper, error) {
	return r.get(ctx, id, false)
}

// Acquire is Get for the length of a request: the shopper stays resident
// until release is called.
func (r *Registry) Acquire(ctx context.Context, id string) (s *Shopper, release func(), err error) {
	s, err = r.get(ctx, id, true)
	if err != nil {
		return nil, nil, err
	}
	var once sync.Once
	return s, func() { once.Do(func() { r.release(s) }) }, nil
}

func (r *Registry) get(ctx context.Context, id string, hold bool) (*Shopper, error) {
	r.mu.Lock()
	if s, ok := r.shoppers[id]; ok {
		r.touchLocked(s, hold)
		r.mu.Unlock()
		return s, nil
	}
	r.mu.Unlock()

	built, err := r.build(ctx, id)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// a concurrent first request may have won the race
	s, ok := r.shoppers[id]
	if !ok {
		s = built
		r.shoppers[id] = s
	}
	r.touchLocked(s, hold)
	return s, nil
}

func (r *Registry) touchLocked(s *Shopper, hold bool) {
	s.lastSeen = r.now()
	if hold {
		s.inFlight++
	}
}

func (r *Registry) release(s *Shopper) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.inFlight--
	s.lastSeen = r.now()
}

// Sweep drops shoppers idle for longer than idle and returns how many went.
func (r *Registry) Sweep(idle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-idle)
	n := 0
	for id, s := range r.shoppers {
		if s.inFlight == 0 && s.lastSeen.Before(cutoff) {
			delete(r.shoppers, id)
			n++
		}
	}
	return n
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.shoppers)
}

func (r *Registry) build(ctx context.Context, id string) (*Shopper, error) {
	c := cart.NewStore(r.opts.Store, id)
	if err := c.Load(ctx); err != nil {
		return nil, fmt.Errorf("shopper %s: %w", id, err)
	}
	sess := session.NewStore(r.opts.Store, id, r.opts.Backend.Auth)
	if err := sess.Load(ctx); err != nil {
		return nil, fmt.Errorf("shopper %s: %w", id, err)
	}
	toasts := toast.NewQueue(r.opts.ToastTTL)
	co := checkout.New(checkout.Deps{
		SessionID: id,
		Store:     r.opts.Store,
		Cart:      c,
		Session:   sess,
		Orders:    r.opts.Backend.Orders,
		Payments:  r.opts.Backend.Payments,
		Addresses: r.opts.Backend.Addresses,
		Toasts:    toasts,
		Events:    r.opts.Events,
		Fees:      r.opts.Fees,
		Logger:    r.opts.Logger,
	})
	if err := co.Load(ctx); err != nil {
		return nil, fmt.Errorf("shopper %s: %w", id, err)
	}

	return &Shopper{
		ID:       id,
		Cart:     c,
		Session:  sess,
		Toasts:   toasts,
		Checkout: co,
	}, nil
}

