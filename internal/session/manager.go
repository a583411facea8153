package session

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/storage"
)

// Manager tracks the single current user of an origin.
type Manager struct {
	Store storage.Store
}

func NewManager(store storage.Store) *Manager {
	return &Manager{Store: store}
}

func (m *Manager) Login(ctx context.Context, user *models.User) error {
	return storage.SaveJSON(ctx, m.Store, storage.KeyCurrentUser, user.Session())
}

func (m *Manager) Logout(ctx context.Context) error {
	return m.Store.Remove(ctx, storage.KeyCurrentUser)
}

// Current returns nil when there is no session or the record is unreadable.
func (m *Manager) Current(ctx context.Context) (*models.Session, error) {
	var s models.Session
	found, err := storage.LoadJSON(ctx, m.Store, storage.KeyCurrentUser, &s)
	if err != nil {
		return nil, err
	}
	if !found || (s.ID == 0 && s.Email == "") {
		return nil, nil
	}
	return &s, nil
}
