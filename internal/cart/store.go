package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/storage"
)

// Store holds one shopper's cart. A cart only ever contains lines from a
// single restaurant. Every mutation is persisted before it becomes visible.
type Store struct {
	mu         sync.Mutex
	sessionID  string
	kv         storage.Store
	lines      []Line
	restaurant *Restaurant
}

func NewStore(kv storage.Store, sessionID string) *Store {
	return &Store{kv: kv, sessionID: sessionID}
}

// Load restores the persisted cart. Missing keys leave the cart empty.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var lines []Line
	if err := storage.GetJSON(ctx, s.kv, s.sessionID, storage.KeyCart, &lines); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("load cart: %w", err)
	}
	var restaurant *Restaurant
	if err := storage.GetJSON(ctx, s.kv, s.sessionID, storage.KeyCartRestaurant, &restaurant); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("load cart restaurant: %w", err)
	}

	s.lines = lines
	s.restaurant = restaurant
	return nil
}

// AddItem adds one unit of item. When the cart is bound to another
// restaurant, nothing changes and false is returned unless confirmReplace
// is set, in which case the cart is emptied first.
func (s *Store) AddItem(ctx context.Context, item Item, restaurant Restaurant, confirmReplace bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := slices.Clone(s.lines)
	if s.restaurant != nil && s.restaurant.ID != restaurant.ID {
		if !confirmReplace {
			return false, nil
		}
		lines = nil
	}

	if i := indexOf(lines, item.ID); i >= 0 {
		lines[i].Quantity++
	} else {
		rid := item.RestaurantID
		if rid == 0 {
			rid = restaurant.ID
		}
		lines = append(lines, Line{
			ItemID:       item.ID,
			Name:         item.Name,
			UnitPrice:    item.Price,
			Quantity:     1,
			IsVeg:        item.IsVeg,
			RestaurantID: rid,
		})
	}

	r := restaurant
	if err := s.commit(ctx, lines, &r); err != nil {
		return false, err
	}
	return true, nil
}

// UpdateQuantity sets the quantity of a line. qty <= 0 removes it. Unknown
// items are ignored.
func (s *Store) UpdateQuantity(ctx context.Context, itemID int64, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.lines, itemID)
	if i < 0 {
		return nil
	}
	if qty <= 0 {
		return s.removeLocked(ctx, i)
	}

	lines := slices.Clone(s.lines)
	lines[i].Quantity = qty
	return s.commit(ctx, lines, s.restaurant)
}

func (s *Store) RemoveItem(ctx context.Context, itemID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.lines, itemID)
	if i < 0 {
		return nil
	}
	return s.removeLocked(ctx, i)
}

// Clear empties the cart and forgets the persisted copy.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(ctx, s.sessionID, storage.KeyCart, storage.KeyCartRestaurant); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	s.lines = nil
	s.restaurant = nil
	return nil
}

func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{Lines: slices.Clone(s.lines)}
	if st.Lines == nil {
		st.Lines = []Line{}
	}
	if s.restaurant != nil {
		r := *s.restaurant
		st.Restaurant = &r
	}
	return st
}

func (s *Store) Subtotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return subtotal(s.lines)
}

func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, l := range s.lines {
		n += l.Quantity
	}
	return n
}

func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines) == 0
}

func (s *Store) Bill(fees Fees) Bill {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ComputeBill(s.lines, s.restaurant, fees)
}

func (s *Store) removeLocked(ctx context.Context, i int) error {
	lines := slices.Delete(slices.Clone(s.lines), i, i+1)
	restaurant := s.restaurant
	if len(lines) == 0 {
		restaurant = nil
	}
	return s.commit(ctx, lines, restaurant)
}

// commit persists lines and restaurant in one write and then adopts them.
func (s *Store) commit(ctx context.Context, lines []Line, restaurant *Restaurant) error {
	if lines == nil {
		lines = []Line{}
	}
	linesRaw, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	restaurantRaw, err := json.Marshal(restaurant)
	if err != nil {
		return fmt.Errorf("encode cart restaurant: %w", err)
	}

	err = s.kv.Put(ctx, s.sessionID, map[string]json.RawMessage{
		storage.KeyCart:           linesRaw,
		storage.KeyCartRestaurant: restaurantRaw,
	})
	if err != nil {
		return fmt.Errorf("persist cart: %w", err)
	}

	s.lines = lines
	s.restaurant = restaurant
	return nil
}

func indexOf(lines []Line, itemID int64) int {
	return slices.IndexFunc(lines, func(l Line) bool { return l.ItemID == itemID })
}
