package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/Skotchmaster/storefront/internal/logging"
)

const (
	KeyUsers       = "users"
	KeyCurrentUser = "currentUser"
	KeyCart        = "cart"
	KeyOrders      = "orders"
)

// Store is an origin-scoped key-value store holding JSON text values.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Pinger is implemented by stores backed by a remote server.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ping checks the backend of s. Stores without a backend are always ready.
func Ping(ctx context.Context, s Store) error {
	if p, ok := s.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// LoadJSON decodes the value under key into dst, which must be a non-nil
// pointer. A missing key and a value that does not decode both report
// found=false with a nil error; dst is only written on a clean decode.
func LoadJSON(ctx context.Context, s Store, key string, dst any) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("storage get %q: %w", key, err)
	}
	if !ok || raw == "" {
		return false, nil
	}

	target := reflect.ValueOf(dst)
	if target.Kind() != reflect.Pointer || target.IsNil() {
		return false, fmt.Errorf("storage decode %q: destination must be a non-nil pointer", key)
	}
	fresh := reflect.New(target.Type().Elem())
	if err := json.Unmarshal([]byte(raw), fresh.Interface()); err != nil {
		logging.FromContext(ctx).Warn("storage_corrupt_record", "key", key, "error", err)
		return false, nil
	}
	target.Elem().Set(fresh.Elem())
	return true, nil
}

func SaveJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("storage encode %q: %w", key, err)
	}
	if err := s.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("storage set %q: %w", key, err)
	}
	return nil
}
