package ledger

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/tablebill/internal/domain/order"
)

func newOrder(id string) order.Order {
	return order.Order{ID: id, Name: "Customer " + id}
}

func ids(orders []order.Order) []string {
	out := make([]string, len(orders))
	for i, o := range orders {
		out[i] = o.ID
	}
	return out
}

func filled(n int) *Ledger {
	l := New()
	for i := range n {
		l.Append(newOrder(strconv.Itoa(i)))
	}
	return l
}

func TestAppend(t *testing.T) {
	l := New()
	assert.Equal(t, "Customer 1", l.NextDefaultName())

	l.Append(newOrder("a"))
	l.Append(newOrder("b"))

	assert.Equal(t, 2, l.Len())
	assert.Equal(t, 2, l.CustomerCount())
	assert.Equal(t, []string{"a", "b"}, ids(l.Orders()))
	assert.Equal(t, "Customer 3", l.NextDefaultName())
}

func TestNextDefaultName_ReadOnly(t *testing.T) {
	l := filled(1)
	assert.Equal(t, "Customer 2", l.NextDefaultName())
	assert.Equal(t, "Customer 2", l.NextDefaultName())
	assert.Equal(t, 1, l.CustomerCount())
}

func TestRemoveAt(t *testing.T) {
	l := filled(4)

	removed, err := l.RemoveAt(1)
	require.NoError(t, err)

	assert.Equal(t, "1", removed.ID)
	assert.Equal(t, 3, l.Len())
	assert.Equal(t, []string{"0", "2", "3"}, ids(l.Orders()))
	assert.Equal(t, 4, l.CustomerCount(), "removal must not touch the counter")
	assert.Equal(t, "Customer 5", l.NextDefaultName())
}

func TestRemoveAt_OutOfRange(t *testing.T) {
	for _, idx := range []int{-1, 3, 100} {
		t.Run(strconv.Itoa(idx), func(t *testing.T) {
			l := filled(3)

			_, err := l.RemoveAt(idx)

			var rangeErr *IndexOutOfRangeError
			require.ErrorAs(t, err, &rangeErr)
			assert.Equal(t, idx, rangeErr.Index)
			assert.Equal(t, 3, rangeErr.Len)
			assert.Equal(t, 3, l.Len())
		})
	}
}

func TestRemove(t *testing.T) {
	l := filled(3)

	removed, err := l.Remove("2")
	require.NoError(t, err)
	assert.Equal(t, "2", removed.ID)
	assert.Equal(t, []string{"0", "1"}, ids(l.Orders()))

	_, err = l.Remove("2")
	require.ErrorIs(t, err, ErrOrderNotFound)
}

func TestRemoveMany(t *testing.T) {
	l := filled(5)

	n := l.RemoveMany([]string{"1", "2", "missing", "4"})

	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"0", "3"}, ids(l.Orders()))
	assert.Equal(t, 5, l.CustomerCount())
}

func TestRemoveWhileIterating(t *testing.T) {
	l := filled(4)

	// Removing every order seen in a snapshot must visit each exactly once.
	var seen []string
	for _, o := range l.Orders() {
		seen = append(seen, o.ID)
		_, err := l.Remove(o.ID)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"0", "1", "2", "3"}, seen)
	assert.Zero(t, l.Len())
}

func TestOrders_Snapshot(t *testing.T) {
	l := filled(2)
	snap := l.Orders()

	l.Append(newOrder("x"))
	_, err := l.RemoveAt(0)
	require.NoError(t, err)

	assert.Equal(t, []string{"0", "1"}, ids(snap))
}

func TestGet(t *testing.T) {
	l := filled(2)

	o, err := l.Get("1")
	require.NoError(t, err)
	assert.Equal(t, "Customer 1", o.Name)

	_, err = l.Get("nope")
	require.ErrorIs(t, err, ErrOrderNotFound)
}

func TestReset(t *testing.T) {
	l := filled(5)

	l.Reset()

	assert.Zero(t, l.Len())
	assert.Zero(t, l.CustomerCount())
	assert.Empty(t, l.Orders())
	assert.Equal(t, "Customer 1", l.NextDefaultName())
}
