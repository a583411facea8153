package checkout

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/storage"
)

// OrderLog is the append-only record of confirmed orders of one origin.
type OrderLog struct {
	Store storage.Store
}

func NewOrderLog(store storage.Store) *OrderLog {
	return &OrderLog{Store: store}
}

func (l *OrderLog) List(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if _, err := storage.LoadJSON(ctx, l.Store, storage.KeyOrders, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (l *OrderLog) ForUser(ctx context.Context, email string) ([]models.Order, error) {
	orders, err := l.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if o.User.Email == email {
			out = append(out, o)
		}
	}
	return out, nil
}

// Append stores order at the end of the log. order.ID is raised above every
// id already logged so ids stay distinct within the same millisecond.
func (l *OrderLog) Append(ctx context.Context, order models.Order) (models.Order, error) {
	orders, err := l.List(ctx)
	if err != nil {
		return models.Order{}, err
	}
	for _, o := range orders {
		if o.ID >= order.ID {
			order.ID = o.ID + 1
		}
	}
	orders = append(orders, order)
	if err := storage.SaveJSON(ctx, l.Store, storage.KeyOrders, orders); err != nil {
		return models.Order{}, err
	}
	return order, nil
}
