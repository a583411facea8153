package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/cart"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
)

const DefaultDelay = 2 * time.Second

var (
	ErrValidation         = errors.New("validation")
	ErrNotAuthenticated   = errors.New("login required to checkout")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrCheckoutInProgress = errors.New("checkout already processing")
	ErrCheckoutNotOpen    = errors.New("checkout form is not open")
)

type State int

const (
	Idle State = iota
	FormOpen
	Processing
	Confirmed
)

func (s State) String() string {
	switch s {
	case FormOpen:
		return "form_open"
	case Processing:
		return "processing"
	case Confirmed:
		return "confirmed"
	default:
		return "idle"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type Sessions interface {
	Current(ctx context.Context) (*models.Session, error)
}

type Indexer interface {
	IndexOrder(ctx context.Context, origin string, order models.Order) error
}

type Summary struct {
	Items        []models.CartItem `json:"items"`
	Total        decimal.Decimal   `json:"total"`
	DisplayTotal string            `json:"display_total"`
}

type Orchestrator struct {
	Sessions  Sessions
	Cart      *cart.Engine
	Orders    *OrderLog
	Delay     time.Duration
	Now       func() time.Time
	Publisher mykafka.Publisher
	Indexer   Indexer
	// Origin scopes indexed orders and keys published events.
	Origin    string

	mu    sync.Mutex
	state State
}

func New(sessions Sessions, c *cart.Engine, orders *OrderLog) *Orchestrator {
	return &Orchestrator{
		Sessions: sessions,
		Cart:     c,
		Orders:   orders,
		Delay:    DefaultDelay,
		Now:      time.Now,
	}
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) Initiate(ctx context.Context) (*Summary, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state == Processing {
		return nil, ErrCheckoutInProgress
	}
	sess, err := o.Sessions.Current(ctx)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNotAuthenticated
	}
	if o.Cart.Len() == 0 {
		return nil, ErrEmptyCart
	}

	o.state = FormOpen
	return &Summary{
		Items:        o.Cart.Items(),
		Total:        o.Cart.TotalPrice(),
		DisplayTotal: o.Cart.DisplayTotal(),
	}, nil
}

func (o *Orchestrator) Cancel() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch o.state {
	case Processing:
		return ErrCheckoutInProgress
	case FormOpen:
		o.state = Idle
	}
	return nil
}

// SubmitPayment blocks for the simulated processing delay. A second call
// while one is processing fails with ErrCheckoutInProgress.
func (o *Orchestrator) SubmitPayment(ctx context.Context, shipping models.ShippingInfo, payment models.PaymentInfo) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "checkout.submit_payment")

	o.mu.Lock()
	switch o.state {
	case Processing:
		o.mu.Unlock()
		return nil, ErrCheckoutInProgress
	case FormOpen:
	default:
		o.mu.Unlock()
		return nil, ErrCheckoutNotOpen
	}
	if err := validate(shipping, payment); err != nil {
		o.mu.Unlock()
		return nil, err
	}
	o.state = Processing
	o.mu.Unlock()

	if err := o.wait(ctx); err != nil {
		l.Warn("checkout_interrupted", "error", err)
		o.setState(FormOpen)
		return nil, err
	}

	order, err := o.confirm(ctx)
	if err != nil {
		l.Warn("checkout_error", "error", err)
		if errors.Is(err, ErrNotAuthenticated) || errors.Is(err, ErrEmptyCart) {
			o.setState(Idle)
		} else {
			o.setState(FormOpen)
		}
		return nil, err
	}
	o.setState(Confirmed)

	if err := o.Cart.Clear(ctx); err != nil {
		l.Error("checkout_cart_clear_error", "order_id", order.ID, "error", err)
		return &order, fmt.Errorf("order %d recorded, cart not cleared: %w", order.ID, err)
	}

	mykafka.Publish(ctx, o.Publisher, mykafka.TopicOrderEvents, o.Origin, mykafka.OrderEvent{
		Type:    "order_confirmed",
		OrderID: order.ID,
		UserID:  order.User.ID,
		Email:   order.User.Email,
		Items:   len(order.Items),
		Total:   order.Total.StringFixed(2),
		Date:    order.Date,
	})
	if o.Indexer != nil {
		if err := o.Indexer.IndexOrder(ctx, o.Origin, order); err != nil {
			l.Error("order_index_error", "order_id", order.ID, "error", err)
		}
	}

	l.Info("order confirmed", "order_id", order.ID, "total", order.Total.StringFixed(2))
	return &order, nil
}

func (o *Orchestrator) confirm(ctx context.Context) (models.Order, error) {
	sess, err := o.Sessions.Current(ctx)
	if err != nil {
		return models.Order{}, err
	}
	if sess == nil {
		return models.Order{}, ErrNotAuthenticated
	}
	if o.Cart.Len() == 0 {
		return models.Order{}, ErrEmptyCart
	}

	now := o.now()
	order := models.Order{
		ID:     now.UnixMilli(),
		User:   *sess,
		Items:  o.Cart.Items(),
		Total:  o.Cart.TotalPrice(),
		Date:   models.FormatTime(now),
		Status: models.OrderStatusConfirmed,
	}
	return o.Orders.Append(ctx, order)
}

func (o *Orchestrator) wait(ctx context.Context) error {
	if o.Delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(o.Delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

func (o *Orchestrator) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

func validate(shipping models.ShippingInfo, payment models.PaymentInfo) error {
	fields := []struct {
		name, value string
	}{
		{"address", shipping.Address},
		{"city", shipping.City},
		{"postal_code", shipping.PostalCode},
		{"card_number", payment.CardNumber},
		{"expiry", payment.Expiry},
		{"cvv", payment.CVV},
	}
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s required", ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

