package service

import (
	"context"
	"sync"
	"time"

	"github.com/Skotchmaster/storefront/internal/account"
	"github.com/Skotchmaster/storefront/internal/cart"
	"github.com/Skotchmaster/storefront/internal/checkout"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/Skotchmaster/storefront/internal/storage"
)

type Options struct {
	Publisher     mykafka.Publisher
	Indexer       checkout.Indexer
	CheckoutDelay time.Duration
}

// Storefront is everything one origin sees: its accounts, session, cart and
// checkout. Callers serialise access with Lock/Unlock.
type Storefront struct {
	Origin    string
	Accounts  *account.Directory
	Sessions  *session.Manager
	Cart      *cart.Engine
	Orders    *checkout.OrderLog
	Checkout  *checkout.Orchestrator
	publisher mykafka.Publisher

	mu sync.Mutex
}

type RegisterInput struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func Open(ctx context.Context, origin string, store storage.Store, opts Options) (*Storefront, error) {
	c, err := cart.Load(ctx, store, cart.WithPublisher(opts.Publisher, origin))
	if err != nil {
		return nil, err
	}

	sessions := session.NewManager(store)
	orders := checkout.NewOrderLog(store)

	co := checkout.New(sessions, c, orders)
	co.Delay = opts.CheckoutDelay
	co.Publisher = opts.Publisher
	co.Indexer = opts.Indexer
	co.Origin = origin

	return &Storefront{
		Origin:    origin,
		Accounts:  account.NewDirectory(store),
		Sessions:  sessions,
		Cart:      c,
		Orders:    orders,
		Checkout:  co,
		publisher: opts.Publisher,
	}, nil
}

func (s *Storefront) Lock()   { s.mu.Lock() }
func (s *Storefront) Unlock() { s.mu.Unlock() }

// Register creates the account and logs it in straight away.
func (s *Storefront) Register(ctx context.Context, in RegisterInput) (*models.Session, error) {
	user, err := s.Accounts.Register(ctx, in.Name, in.Email, in.Password, in.ConfirmPassword)
	if err != nil {
		return nil, err
	}
	if err := s.Sessions.Login(ctx, user); err != nil {
		return nil, err
	}
	s.publishUser(ctx, "user_registered", user.ID, user.Email)

	sess := user.Session()
	return &sess, nil
}

func (s *Storefront) Login(ctx context.Context, email, password string) (*models.Session, error) {
	l := logging.FromContext(ctx).With("svc", "storefront.login")

	user, err := s.Accounts.FindByCredentials(ctx, email, password)
	if err != nil {
		l.Warn("login failed", "error", err)
		return nil, err
	}
	if err := s.Sessions.Login(ctx, user); err != nil {
		return nil, err
	}
	s.publishUser(ctx, "user_logged_in", user.ID, user.Email)

	sess := user.Session()
	return &sess, nil
}

// Logout also closes an open checkout form.
func (s *Storefront) Logout(ctx context.Context) error {
	cur, err := s.Sessions.Current(ctx)
	if err != nil {
		return err
	}
	if err := s.Checkout.Cancel(); err != nil {
		return err
	}
	if err := s.Sessions.Logout(ctx); err != nil {
		return err
	}
	if cur != nil {
		s.publishUser(ctx, "user_logged_out", cur.ID, cur.Email)
	}
	return nil
}

func (s *Storefront) CurrentSession(ctx context.Context) (*models.Session, error) {
	cur, err := s.Sessions.Current(ctx)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, checkout.ErrNotAuthenticated
	}
	return cur, nil
}

// OrderHistory lists the logged orders of the current user.
func (s *Storefront) OrderHistory(ctx context.Context) ([]models.Order, error) {
	cur, err := s.CurrentSession(ctx)
	if err != nil {
		return nil, err
	}
	return s.Orders.ForUser(ctx, cur.Email)
}

func (s *Storefront) publishUser(ctx context.Context, event string, id int64, email string) {
	mykafka.Publish(ctx, s.publisher, mykafka.TopicUserEvents, s.Origin, mykafka.UserEvent{
		Type:   event,
		Origin: s.Origin,
		UserID: id,
		Email:  email,
	})
}
