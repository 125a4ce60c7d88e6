// Package ledger keeps the ordered list of customer orders for one session.
//
// A Ledger has a single owner and is not safe for concurrent use; callers
// serialize access (see internal/session).
package ledger

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/go-faster/errors"

	"github.com/xenking/tablebill/internal/domain/order"
)

// ErrOrderNotFound is returned when no order has the requested id.
var ErrOrderNotFound = errors.New("order not found")

// IndexOutOfRangeError indicates a positional removal outside [0, Len()).
type IndexOutOfRangeError struct {
	Index int
	Len   int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("order index %d out of range [0, %d)", e.Index, e.Len)
}

// Ledger is an ordered collection of orders plus a running customer counter.
// The counter only grows between resets, so default names stay distinct even
// after removals.
type Ledger struct {
	orders        []order.Order
	customerCount int
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{}
}

// Append adds o to the end of the ledger and bumps the customer counter.
func (l *Ledger) Append(o order.Order) {
	l.orders = append(l.orders, o)
	l.customerCount++
}

// RemoveAt deletes the order at index, keeping the rest in order.
func (l *Ledger) RemoveAt(index int) (order.Order, error) {
	if index < 0 || index >= len(l.orders) {
		return order.Order{}, &IndexOutOfRangeError{Index: index, Len: len(l.orders)}
	}
	removed := l.orders[index]
	l.orders = slices.Delete(l.orders, index, index+1)
	return removed, nil
}

// Remove deletes the order with the given id.
func (l *Ledger) Remove(id string) (order.Order, error) {
	i := l.indexOf(id)
	if i < 0 {
		return order.Order{}, ErrOrderNotFound
	}
	return l.RemoveAt(i)
}

// RemoveMany deletes every order whose id is in ids and returns how many were
// removed. Unknown ids are skipped.
func (l *Ledger) RemoveMany(ids []string) int {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	before := len(l.orders)
	l.orders = slices.DeleteFunc(l.orders, func(o order.Order) bool {
		_, ok := drop[o.ID]
		return ok
	})
	return before - len(l.orders)
}

// Reset clears all orders and the customer counter.
func (l *Ledger) Reset() {
	l.orders = nil
	l.customerCount = 0
}

// NextDefaultName returns the name offered to the next customer.
func (l *Ledger) NextDefaultName() string {
	return "Customer " + strconv.Itoa(l.customerCount+1)
}

// Orders returns a snapshot of the orders. Later ledger mutations do not
// affect the returned slice.
func (l *Ledger) Orders() []order.Order {
	return slices.Clone(l.orders)
}

// Get returns the order with the given id.
func (l *Ledger) Get(id string) (order.Order, error) {
	i := l.indexOf(id)
	if i < 0 {
		return order.Order{}, ErrOrderNotFound
	}
	return l.orders[i], nil
}

// Len returns the number of orders.
func (l *Ledger) Len() int {
	return len(l.orders)
}

// CustomerCount returns the number of orders appended since the last reset.
func (l *Ledger) CustomerCount() int {
	return l.customerCount
}

func (l *Ledger) indexOf(id string) int {
	return slices.IndexFunc(l.orders, func(o order.Order) bool {
		return o.ID == id
	})
}
