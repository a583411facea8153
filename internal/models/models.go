package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// persisted records keep prices as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

// ISOLayout matches the millisecond UTC timestamps of the persisted records.
const ISOLayout = "2006-01-02T15:04:05.000Z07:00"

type OrderStatus string

const OrderStatusConfirmed OrderStatus = "confirmed"

type User struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	CreatedAt string `json:"createdAt,omitempty"`
}

func (u User) Session() Session {
	return Session{ID: u.ID, Name: u.Name, Email: u.Email}
}

type Session struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type CartItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

func (i CartItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CloneItems returns an independent copy of items.
func CloneItems(items []CartItem) []CartItem {
	out := make([]CartItem, len(items))
	copy(out, items)
	return out
}

type Order struct {
	ID     int64           `json:"id"`
	User   Session         `json:"user"`
	Items  []CartItem      `json:"items"`
	Total  decimal.Decimal `json:"total"`
	Date   string          `json:"date"`
	Status OrderStatus     `json:"status"`
}

type ShippingInfo struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
}

type PaymentInfo struct {
	CardNumber string `json:"card_number"`
	Expiry     string `json:"expiry"`
	CVV        string `json:"cvv"`
}

func FormatTime(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}
