package storage

import "context"

type prefixed struct {
	base   Store
	prefix string
}

// Prefixed scopes every key of base under prefix, giving each origin its
// own users, session, cart and order log.
func Prefixed(base Store, prefix string) Store {
	return &prefixed{base: base, prefix: prefix + ":"}
}

func (p *prefixed) Get(ctx context.Context, key string) (string, bool, error) {
	return p.base.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key, value string) error {
	return p.base.Set(ctx, p.prefix+key, value)
}

func (p *prefixed) Remove(ctx context.Context, key string) error {
	return p.base.Remove(ctx, p.prefix+key)
}
