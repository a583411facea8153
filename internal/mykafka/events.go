package mykafka

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/logging"
)

type UserEvent struct {
	Type   string `json:"type"`
	Origin string `json:"origin,omitempty"`
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
}

type CartEvent struct {
	Type      string `json:"type"`
	ItemID    string `json:"item_id,omitempty"`
	Quantity  int    `json:"quantity"`
	ItemCount int    `json:"item_count"`
	Total     string `json:"total"`
}

type OrderEvent struct {
	Type    string `json:"type"`
	OrderID int64  `json:"order_id"`
	UserID  int64  `json:"user_id"`
	Email   string `json:"email"`
	Items   int    `json:"items"`
	Total   string `json:"total"`
	Date    string `json:"date"`
}

// Publish sends event on topic and only logs a failure.
func Publish(ctx context.Context, p Publisher, topic, key string, event any) {
	if p == nil {
		return
	}
	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Error("kafka_publish_error", "topic", topic, "key", key, "error", err)
	}
}
