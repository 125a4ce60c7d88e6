package session

import (
	"context"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const (
	receiptKindOrder = "order"
	receiptKindFinal = "final"
)

// Metrics holds session instruments.
type Metrics struct {
	ordersCreatedCount metric.Int64Counter
	ordersRemovedCount metric.Int64Counter
	receiptsCount      metric.Int64Counter
	activeSessions     metric.Int64UpDownCounter
}

// NewMetrics registers session instruments on meter. A nil meter disables
// recording.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter("tablebill/session")
	}

	var (
		m   Metrics
		err error
	)
	if m.ordersCreatedCount, err = meter.Int64Counter("tablebill.orders.created",
		metric.WithDescription("Orders appended to a session ledger"),
	); err != nil {
		return nil, errors.Wrap(err, "orders created counter")
	}
	if m.ordersRemovedCount, err = meter.Int64Counter("tablebill.orders.removed",
		metric.WithDescription("Orders removed from a session ledger, including resets"),
	); err != nil {
		return nil, errors.Wrap(err, "orders removed counter")
	}
	if m.receiptsCount, err = meter.Int64Counter("tablebill.receipts.rendered",
		metric.WithDescription("Receipts rendered"),
	); err != nil {
		return nil, errors.Wrap(err, "receipts counter")
	}
	if m.activeSessions, err = meter.Int64UpDownCounter("tablebill.sessions.active",
		metric.WithDescription("Sessions held in memory"),
	); err != nil {
		return nil, errors.Wrap(err, "active sessions counter")
	}
	return &m, nil
}

func (m *Metrics) orderCreated(ctx context.Context) {
	m.ordersCreatedCount.Add(ctx, 1)
}

func (m *Metrics) ordersRemoved(ctx context.Context, n int) {
	if n > 0 {
		m.ordersRemovedCount.Add(ctx, int64(n))
	}
}

func (m *Metrics) receiptRendered(ctx context.Context, kind string) {
	m.receiptsCount.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func (m *Metrics) sessionStarted(ctx context.Context) {
	m.activeSessions.Add(ctx, 1)
}

func (m *Metrics) sessionsEnded(ctx context.Context, n int) {
	m.activeSessions.Add(ctx, -int64(n))
}
