package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/storage"
)

var ErrValidation = errors.New("validation")

// Engine owns the ordered line items of one cart and mirrors them to the
// store after every mutation. It is not safe for concurrent use.
type Engine struct {
	store     storage.Store
	items     []models.CartItem
	publisher mykafka.Publisher
	eventKey  string
}

type Option func(*Engine)

// WithPublisher emits a cart event under key after each mutation.
func WithPublisher(p mykafka.Publisher, key string) Option {
	return func(e *Engine) {
		e.publisher = p
		e.eventKey = key
	}
}

func Load(ctx context.Context, store storage.Store, opts ...Option) (*Engine, error) {
	e := &Engine{store: store}
	for _, opt := range opts {
		opt(e)
	}

	var items []models.CartItem
	if _, err := storage.LoadJSON(ctx, store, storage.KeyCart, &items); err != nil {
		return nil, err
	}
	for _, it := range items {
		if it.ID == "" || it.Quantity < 1 {
			logging.FromContext(ctx).Warn("cart_load_skip_item", "item_id", it.ID, "quantity", it.Quantity)
			continue
		}
		e.items = append(e.items, it)
	}
	return e, nil
}

func (e *Engine) Add(ctx context.Context, id, name string, price decimal.Decimal) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("item id required: %w", ErrValidation)
	}
	if price.IsNegative() {
		return fmt.Errorf("price must be >= 0: %w", ErrValidation)
	}

	qty := 1
	if i := e.index(id); i >= 0 {
		e.items[i].Quantity++
		qty = e.items[i].Quantity
	} else {
		e.items = append(e.items, models.CartItem{ID: id, Name: name, Price: price, Quantity: 1})
	}
	return e.commit(ctx, "item_added", id, qty)
}

// UpdateQuantity is a no-op for unknown ids. A result <= 0 removes the item.
func (e *Engine) UpdateQuantity(ctx context.Context, id string, delta int) error {
	i := e.index(id)
	if i < 0 {
		return nil
	}
	qty := e.items[i].Quantity + delta
	if qty <= 0 {
		return e.Remove(ctx, id)
	}
	e.items[i].Quantity = qty
	return e.commit(ctx, "quantity_updated", id, qty)
}

func (e *Engine) Remove(ctx context.Context, id string) error {
	kept := e.items[:0]
	for _, it := range e.items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	e.items = kept
	return e.commit(ctx, "item_removed", id, 0)
}

func (e *Engine) Clear(ctx context.Context) error {
	e.items = nil
	return e.commit(ctx, "cart_cleared", "", 0)
}

func (e *Engine) Items() []models.CartItem {
	return models.CloneItems(e.items)
}

func (e *Engine) Len() int {
	return len(e.items)
}

func (e *Engine) TotalItemCount() int {
	n := 0
	for _, it := range e.items {
		n += it.Quantity
	}
	return n
}

func (e *Engine) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, it := range e.items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// DisplayTotal is TotalPrice rounded to cents, for presentation only.
func (e *Engine) DisplayTotal() string {
	return e.TotalPrice().StringFixed(2)
}

func (e *Engine) index(id string) int {
	for i := range e.items {
		if e.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (e *Engine) commit(ctx context.Context, event, id string, qty int) error {
	items := e.items
	if items == nil {
		items = []models.CartItem{}
	}
	if err := storage.SaveJSON(ctx, e.store, storage.KeyCart, items); err != nil {
		logging.FromContext(ctx).Error("cart_save_error", "event", event, "error", err)
		return err
	}

	mykafka.Publish(ctx, e.publisher, mykafka.TopicCartEvents, e.eventKey, mykafka.CartEvent{
		Type:      event,
		ItemID:    id,
		Quantity:  qty,
		ItemCount: e.TotalItemCount(),
		Total:     e.DisplayTotal(),
	})
	return nil
}
