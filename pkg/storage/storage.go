package storage

import (
	"context"
	"time"
)

const (
	ActionCreated      = "CREATED"
	ActionCancelled    = "CANCELLED"
	ActionCancelFailed = "CANCEL_FAILED"
)

// Journal keeps a trail of order placements and cancellations made through a
// connector. It is write-mostly; connectors never read it back.
type Journal interface {
	AddOrderEvent(ctx context.Context, event OrderEvent) error
	OrderEvents(ctx context.Context, marketID string) ([]OrderEvent, error)
}

type OrderEvent struct {
	ID            int64
	Exchange      string
	MarketID      string
	OrderID       string
	ClientOrderID string
	Action        string
	OrderType     string
	// Quantity and Price as sent to the venue
	Quantity  string
	Price     string
	Simulated bool
	CreatedAt time.Time
}
