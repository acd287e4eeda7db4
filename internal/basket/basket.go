// Package basket keeps the training sessions a visitor picked for checkout.
package basket

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/goliatone/go-formwizard/internal/sessions"
	"github.com/goliatone/go-formwizard/pkg/liststore"
	"github.com/goliatone/go-formwizard/pkg/storage"
)

// StorageKey holds the basket in the backing store.
const StorageKey = "basketItems"

// Checkout charges.
const (
	ShippingFlat = 5.99
	TaxRate      = 0.08
)

// Item is a session placed in the basket.
type Item struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Coach     string    `json:"coach"`
	Image     string    `json:"image"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Location  string    `json:"location"`
	Price     float64   `json:"price"`
	Type      string    `json:"type"`
	AgeGroup  string    `json:"ageGroup"`
	Rating    float64   `json:"rating"`
	AddedDate time.Time `json:"addedDate"`
}

func (i Item) ItemID() string { return i.ID }

// Stamp sets the added date. Items keep the session id, so a generated id
// is used only when the item has none.
func (i Item) Stamp(id string, created time.Time) Item {
	if i.ID == "" {
		i.ID = id
	}
	i.AddedDate = created
	return i
}

// FromSession copies the displayed attributes of s.
func FromSession(s sessions.Session) Item {
	return Item{
		ID:       s.ID,
		Title:    s.Title,
		Coach:    s.Coach,
		Image:    s.Image,
		Date:     s.Date,
		Time:     s.Time,
		Location: s.Location,
		Price:    s.Price,
		Type:     s.Type,
		AgeGroup: s.AgeGroup,
		Rating:   s.Rating,
	}
}

// Summary is the checkout breakdown.
type Summary struct {
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
	Taxes    float64 `json:"taxes"`
	Total    float64 `json:"total"`
}

// Option configures a Basket.
type Option func(*Basket)

// WithClock overrides time.Now for added dates.
func WithClock(now func() time.Time) Option {
	return func(b *Basket) {
		if now != nil {
			b.now = now
		}
	}
}

// WithListOptions forwards options to the underlying list.
func WithListOptions(opts ...liststore.Option) Option {
	return func(b *Basket) {
		b.listOpts = append(b.listOpts, opts...)
	}
}

// Basket is the persisted selection, most recently added first.
type Basket struct {
	list     *liststore.List[Item]
	now      func() time.Time
	listOpts []liststore.Option
}

// Open loads the basket from store.
func Open(ctx context.Context, store storage.Store, opts ...Option) (*Basket, error) {
	b := &Basket{now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	list, err := liststore.Open[Item](ctx, store, StorageKey, b.listOpts...)
	if err != nil {
		return nil, fmt.Errorf("basket: open: %w", err)
	}
	b.list = list
	return b, nil
}

// Add puts item in the basket and reports whether it was added. An item
// already in the basket is left as is.
func (b *Basket) Add(ctx context.Context, item Item) (bool, error) {
	if item.ID == "" {
		return false, fmt.Errorf("basket: item needs an id")
	}
	return b.list.Insert(ctx, item.Stamp(item.ID, b.now().UTC()))
}

// Remove takes the item with id out of the basket.
func (b *Basket) Remove(ctx context.Context, id string) error {
	return b.list.Remove(ctx, id)
}

// Contains reports whether the item with id is in the basket.
func (b *Basket) Contains(id string) bool {
	_, ok := b.list.Get(id)
	return ok
}

// Items returns the basket contents.
func (b *Basket) Items() []Item {
	return b.list.All()
}

// Search matches query against title, coach, location and type.
func (b *Basket) Search(query string) []Item {
	return b.list.Search(query,
		func(i Item) string { return i.Title },
		func(i Item) string { return i.Coach },
		func(i Item) string { return i.Location },
		func(i Item) string { return i.Type },
	)
}

// Count returns the number of items.
func (b *Basket) Count() int {
	return b.list.Len()
}

// Total sums item prices.
func (b *Basket) Total() float64 {
	total := 0.0
	for _, item := range b.list.All() {
		total += item.Price
	}
	return total
}

// Summary computes the checkout breakdown. An empty basket costs nothing.
func (b *Basket) Summary() Summary {
	sub := b.Total()
	s := Summary{Subtotal: sub, Taxes: roundCents(sub * TaxRate)}
	if b.Count() > 0 {
		s.Shipping = ShippingFlat
	}
	s.Total = roundCents(s.Subtotal + s.Shipping + s.Taxes)
	return s
}

// Clear empties the basket and deletes its key.
func (b *Basket) Clear(ctx context.Context) error {
	return b.list.Clear(ctx)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
