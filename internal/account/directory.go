package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Skotchmaster/storefront/internal/hash"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/storage"
)

const MinPasswordLength = 6

var (
	ErrValidation         = errors.New("validation")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type Directory struct {
	Store storage.Store
	Now   func() time.Time
}

func NewDirectory(store storage.Store) *Directory {
	return &Directory{Store: store, Now: time.Now}
}

func (d *Directory) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

func (d *Directory) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if _, err := storage.LoadJSON(ctx, d.Store, storage.KeyUsers, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (d *Directory) Register(ctx context.Context, name, email, password, confirm string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "account.register")

	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" {
		return nil, fmt.Errorf("name and email required: %w", ErrValidation)
	}
	if password != confirm {
		return nil, ErrPasswordMismatch
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	users, err := d.List(ctx)
	if err != nil {
		l.Error("register_error", "status", 500, "error", err)
		return nil, err
	}

	var maxID int64
	for _, u := range users {
		if u.Email == email {
			l.Warn("register_error", "status", 409, "reason", "email taken")
			return nil, ErrEmailTaken
		}
		if u.ID > maxID {
			maxID = u.ID
		}
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	now := d.now()
	id := now.UnixMilli()
	if id <= maxID {
		id = maxID + 1
	}

	user := models.User{
		ID:        id,
		Name:      name,
		Email:     email,
		Password:  pwHash,
		CreatedAt: models.FormatTime(now),
	}
	users = append(users, user)
	if err := storage.SaveJSON(ctx, d.Store, storage.KeyUsers, users); err != nil {
		l.Error("register_error", "status", 500, "error", err)
		return nil, err
	}

	l.Info("user registered", "user_id", user.ID)
	return &user, nil
}

// FindByCredentials does not say which of email or password was wrong.
func (d *Directory) FindByCredentials(ctx context.Context, email, password string) (*models.User, error) {
	users, err := d.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Email == email && hash.CheckPassword(users[i].Password, password) {
			u := users[i]
			return &u, nil
		}
	}
	return nil, ErrInvalidCredentials
}
