// Package session hosts isolated bill-splitting sessions.
//
// Each session owns a ledger and bill settings guarded by its own mutex.
// Every mutating call returns a fresh Snapshot computed right after the
// change and forwards it to the configured Notifier.
package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/xenking/tablebill/internal/domain/bill"
	"github.com/xenking/tablebill/internal/domain/ledger"
	"github.com/xenking/tablebill/internal/domain/menu"
	"github.com/xenking/tablebill/internal/domain/order"
	"github.com/xenking/tablebill/internal/receipt"
)

// Snapshot is a consistent view of a session taken under its lock.
type Snapshot struct {
	SessionID       string
	Orders          []order.Order
	Summary         bill.Summary
	Settings        bill.Settings
	NextDefaultName string
	CustomerCount   int
}

// Notifier receives a snapshot after every mutation of a session.
// Notify is called with the session lock held and must not block.
type Notifier interface {
	Notify(snap Snapshot)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(snap Snapshot)

// Notify calls f(snap).
func (f NotifierFunc) Notify(snap Snapshot) { f(snap) }

type nopNotifier struct{}

func (nopNotifier) Notify(Snapshot) {}

// Session is one table's bill.
type Session struct {
	id       string
	catalog  *menu.Catalog
	metrics  *Metrics
	notifier Notifier
	lastSeen atomic.Int64

	mu       sync.Mutex
	ledger   *ledger.Ledger
	settings bill.Settings
}

func newSession(id string, catalog *menu.Catalog, settings bill.Settings, m *Metrics, n Notifier, now time.Time) *Session {
	s := &Session{
		id:       id,
		catalog:  catalog,
		metrics:  m,
		notifier: n,
		ledger:   ledger.New(),
		settings: settings,
	}
	s.touch(now)
	return s
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

func (s *Session) idleSince() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

// Submit builds an order from selections and appends it to the ledger.
// A blank name takes the ledger's next default name. On error the ledger is
// left unchanged.
func (s *Session) Submit(ctx context.Context, name string, selections map[string]int) (order.Order, Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := order.Build(name, selections, s.catalog, s.ledger.NextDefaultName())
	if err != nil {
		return order.Order{}, s.snapshotLocked(), err
	}
	s.ledger.Append(*o)
	s.metrics.orderCreated(ctx)

	return *o, s.publishLocked(), nil
}

// Remove deletes the order with the given id.
func (s *Session) Remove(ctx context.Context, orderID string) (order.Order, Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.ledger.Remove(orderID)
	if err != nil {
		return order.Order{}, s.snapshotLocked(), err
	}
	s.metrics.ordersRemoved(ctx, 1)

	return o, s.publishLocked(), nil
}

// RemoveAt deletes the order at the given position.
func (s *Session) RemoveAt(ctx context.Context, index int) (order.Order, Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.ledger.RemoveAt(index)
	if err != nil {
		return order.Order{}, s.snapshotLocked(), err
	}
	s.metrics.ordersRemoved(ctx, 1)

	return o, s.publishLocked(), nil
}

// RemoveMany deletes every order listed in ids and reports how many were
// removed. Unknown ids are ignored.
func (s *Session) RemoveMany(ctx context.Context, ids []string) (int, Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.ledger.RemoveMany(ids)
	if n == 0 {
		return 0, s.snapshotLocked()
	}
	s.metrics.ordersRemoved(ctx, n)

	return n, s.publishLocked()
}

// Reset clears the ledger and its customer counter. Settings are kept.
func (s *Session) Reset(ctx context.Context) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.ordersRemoved(ctx, s.ledger.Len())
	s.ledger.Reset()

	return s.publishLocked()
}

// UpdateSettings replaces the tax and tip rates after validating them.
func (s *Session) UpdateSettings(_ context.Context, settings bill.Settings) (Snapshot, error) {
	if err := settings.Validate(); err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings = settings
	return s.publishLocked(), nil
}

// Snapshot returns the current state of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshotLocked()
}

// OrderReceipt renders the receipt of a single order and returns it together
// with its download filename.
func (s *Session) OrderReceipt(ctx context.Context, orderID string, f *receipt.Formatter) (filename, body string, err error) {
	s.mu.Lock()
	o, err := s.ledger.Get(orderID)
	s.mu.Unlock()
	if err != nil {
		return "", "", err
	}

	s.metrics.receiptRendered(ctx, receiptKindOrder)
	return receipt.OrderFilename(o.Name), f.FormatOrder(o), nil
}

// FinalReceipt renders the final bill of the session.
func (s *Session) FinalReceipt(ctx context.Context, f *receipt.Formatter) (filename, body string) {
	snap := s.Snapshot()

	s.metrics.receiptRendered(ctx, receiptKindFinal)
	return receipt.FinalFilename, f.FormatFinal(snap.Orders, snap.Summary, snap.Settings)
}

func (s *Session) snapshotLocked() Snapshot {
	orders := s.ledger.Orders()
	return Snapshot{
		SessionID:       s.id,
		Orders:          orders,
		Summary:         bill.Aggregate(orders, s.settings),
		Settings:        s.settings,
		NextDefaultName: s.ledger.NextDefaultName(),
		CustomerCount:   s.ledger.CustomerCount(),
	}
}

func (s *Session) publishLocked() Snapshot {
	snap := s.snapshotLocked()
	s.notifier.Notify(snap)
	return snap
}
