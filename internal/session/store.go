package session

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/xenking/tablebill/internal/domain/bill"
	"github.com/xenking/tablebill/internal/domain/menu"
)

// ErrNotFound is returned when no live session has the requested id.
var ErrNotFound = errors.New("session not found")

// DefaultTTL is the idle time after which a session is evicted.
const DefaultTTL = 4 * time.Hour

// StoreConfig configures a Store.
type StoreConfig struct {
	// Catalog is the menu every session orders from. Required.
	Catalog *menu.Catalog
	// Defaults are the settings a new session starts with.
	Defaults bill.Settings
	// TTL is how long an untouched session survives. Zero means DefaultTTL.
	TTL time.Duration
	// Notifier receives snapshots after mutations. Optional.
	Notifier Notifier
	// Meter records session metrics. Optional.
	Meter metric.Meter
}

// Store keeps sessions in memory, keyed by session id.
type Store struct {
	catalog  *menu.Catalog
	defaults bill.Settings
	ttl      time.Duration
	notifier Notifier
	metrics  *Metrics
	now      func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore creates an empty Store.
func NewStore(cfg StoreConfig) (*Store, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("catalog is required")
	}
	if err := cfg.Defaults.Validate(); err != nil {
		return nil, errors.Wrap(err, "default settings")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Notifier == nil {
		cfg.Notifier = nopNotifier{}
	}
	m, err := NewMetrics(cfg.Meter)
	if err != nil {
		return nil, errors.Wrap(err, "metrics")
	}
	return &Store{
		catalog:  cfg.Catalog,
		defaults: cfg.Defaults,
		ttl:      cfg.TTL,
		notifier: cfg.Notifier,
		metrics:  m,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}, nil
}

// Create starts a new session with the default settings.
func (st *Store) Create(ctx context.Context) *Session {
	s := newSession(uuid.New().String(), st.catalog, st.defaults, st.metrics, st.notifier, st.now())

	st.mu.Lock()
	st.sessions[s.id] = s
	st.mu.Unlock()

	st.metrics.sessionStarted(ctx)
	return s
}

// Get returns the session with the given id and marks it as used.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	s.touch(st.now())
	return s, nil
}

// Delete removes a session. Deleting an unknown id is a no-op.
func (st *Store) Delete(ctx context.Context, id string) {
	st.mu.Lock()
	_, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()

	if ok {
		st.metrics.sessionsEnded(ctx, 1)
	}
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Cleanup evicts sessions idle for at least the TTL and returns their count.
func (st *Store) Cleanup(ctx context.Context, now time.Time) int {
	st.mu.Lock()
	var evicted int
	for id, s := range st.sessions {
		if now.Sub(s.idleSince()) >= st.ttl {
			delete(st.sessions, id)
			evicted++
		}
	}
	st.mu.Unlock()

	if evicted > 0 {
		st.metrics.sessionsEnded(ctx, evicted)
	}
	return evicted
}

// RunJanitor evicts idle sessions every interval until ctx is cancelled.
func (st *Store) RunJanitor(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = st.ttl / 4
	}
	lg := zctx.From(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := st.Cleanup(ctx, st.now()); n > 0 {
				lg.Info("Evicted idle sessions", zap.Int("count", n), zap.Int("live", st.Len()))
			}
		}
	}
}
