package trading

// package trading holds the canonical model every connector translates into.
// Values here are snapshots: connectors build them per call and never keep them.

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderType string

const (
	OrderTypeBuy  OrderType = "BUY"
	OrderTypeSell OrderType = "SELL"
)

func (t OrderType) String() string {
	return string(t)
}

type MarketOrder struct {
	Type     OrderType
	Price    decimal.Decimal
	Quantity decimal.Decimal
	// Total is Price * Quantity
	Total decimal.Decimal
}

func NewMarketOrder(orderType OrderType, price, quantity decimal.Decimal) MarketOrder {
	return MarketOrder{
		Type:     orderType,
		Price:    price,
		Quantity: quantity,
		Total:    price.Mul(quantity),
	}
}

type MarketOrderBook struct {
	MarketID   string
	SellOrders []MarketOrder
	BuyOrders  []MarketOrder
}

type OpenOrder struct {
	ID        string
	CreatedAt time.Time
	MarketID  string
	Type      OrderType
	Price     decimal.Decimal
	// Quantity is the outstanding part: OriginalQuantity minus what was executed
	Quantity         decimal.Decimal
	OriginalQuantity decimal.Decimal
	// Total is Price * Quantity
	Total decimal.Decimal
}

func NewOpenOrder(id string, createdAt time.Time, marketID string, orderType OrderType,
	price, originalQuantity, executedQuantity decimal.Decimal) OpenOrder {
	outstanding := originalQuantity.Sub(executedQuantity)

	return OpenOrder{
		ID:               id,
		CreatedAt:        createdAt,
		MarketID:         marketID,
		Type:             orderType,
		Price:            price,
		Quantity:         outstanding,
		OriginalQuantity: originalQuantity,
		Total:            price.Mul(outstanding),
	}
}

// BalanceInfo keeps balances per asset. An empty OnHold map means the venue
// does not report reserved funds, it does not mean nothing is reserved.
type BalanceInfo struct {
	Available map[string]decimal.Decimal
	OnHold    map[string]decimal.Decimal
}

func NewBalanceInfo(available, onHold map[string]decimal.Decimal) BalanceInfo {
	if available == nil {
		available = make(map[string]decimal.Decimal)
	}
	if onHold == nil {
		onHold = make(map[string]decimal.Decimal)
	}

	return BalanceInfo{
		Available: available,
		OnHold:    onHold,
	}
}
