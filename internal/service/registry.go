package service

import (
	"context"
	"sync"
	"time"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/storage"
)

const (
	DefaultIdleTTL    = 30 * time.Minute
	DefaultMaxOrigins = 10000
)

// Registry opens one Storefront per origin over a shared base store. The
// cart of an origin is loaded the first time the origin is seen. Idle
// storefronts are dropped from memory; their persisted state stays in the
// store and is reloaded on the next request.
type Registry struct {
	Base    storage.Store
	Options Options
	// IdleTTL and MaxOrigins bound the in-memory cache. Zero disables the
	// respective limit.
	IdleTTL    time.Duration
	MaxOrigins int
	Now        func() time.Time

	mu     sync.Mutex
	fronts map[string]*entry
}

type entry struct {
	sf       *Storefront
	lastUsed time.Time
}

func NewRegistry(base storage.Store, opts Options) *Registry {
	return &Registry{
		Base:       base,
		Options:    opts,
		IdleTTL:    DefaultIdleTTL,
		MaxOrigins: DefaultMaxOrigins,
		Now:        time.Now,
		fronts:     map[string]*entry{},
	}
}

func OriginStore(base storage.Store, origin string) storage.Store {
	return storage.Prefixed(base, "origin:"+origin)
}

func (r *Registry) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

func (r *Registry) Get(ctx context.Context, origin string) (*Storefront, error) {
	r.mu.Lock()
	if e, ok := r.fronts[origin]; ok {
		e.lastUsed = r.now()
		r.mu.Unlock()
		return e.sf, nil
	}
	r.mu.Unlock()

	// store I/O happens outside the registry lock
	sf, err := Open(ctx, origin, OriginStore(r.Base, origin), r.Options)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fronts == nil {
		r.fronts = map[string]*entry{}
	}
	now := r.now()
	if e, ok := r.fronts[origin]; ok {
		e.lastUsed = now
		return e.sf, nil
	}
	if r.MaxOrigins > 0 && len(r.fronts) >= r.MaxOrigins {
		r.evictOldestLocked()
	}
	r.fronts[origin] = &entry{sf: sf, lastUsed: now}
	return sf, nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.fronts)
}

// Evict drops storefronts idle for longer than IdleTTL and returns how many
// were dropped. Storefronts currently locked by a request are kept.
func (r *Registry) Evict() int {
	if r.IdleTTL <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.IdleTTL)
	n := 0
	for origin, e := range r.fronts {
		if e.lastUsed.After(cutoff) {
			continue
		}
		if r.dropLocked(origin, e) {
			n++
		}
	}
	return n
}

// Run evicts idle storefronts every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := r.Evict(); n > 0 {
				logging.FromContext(ctx).Debug("registry_evicted", "count", n, "remaining", r.Len())
			}
		}
	}
}

func (r *Registry) evictOldestLocked() {
	var (
		oldest string
		found  *entry
	)
	for origin, e := range r.fronts {
		if found == nil || e.lastUsed.Before(found.lastUsed) {
			oldest, found = origin, e
		}
	}
	if found != nil {
		r.dropLocked(oldest, found)
	}
}

func (r *Registry) dropLocked(origin string, e *entry) bool {
	if !e.sf.mu.TryLock() {
		return false
	}
	delete(r.fronts, origin)
	e.sf.mu.Unlock()
	return true
}
