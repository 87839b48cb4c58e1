package connector

import (
	"context"

	"github.com/shopspring/decimal"

	"exadapter/pkg/config"
	"exadapter/pkg/trading"
)

// Connector is the contract strategy code trades through, whatever the venue.
// Market ids are case insensitive, connectors upper-case them before any venue call.
// Every error returned is a *trading.Error.
type Connector interface {
	// Init replaces all the connector settings, callers must not use the connector meanwhile.
	Init(cfg *config.ExchangeConfig) error
	ImplName() string

	MarketOrders(ctx context.Context, marketID string) (trading.MarketOrderBook, error)
	YourOpenOrders(ctx context.Context, marketID string) ([]trading.OpenOrder, error)
	CreateOrder(ctx context.Context, marketID string, orderType trading.OrderType, quantity, price decimal.Decimal) (string, error)
	// CancelOrder reports failures as false, it is up to the caller to retry.
	CancelOrder(ctx context.Context, orderID, marketID string) bool
	LatestMarketPrice(ctx context.Context, marketID string) (decimal.Decimal, error)
	BalanceInfo(ctx context.Context) (trading.BalanceInfo, error)

	// fees are fractions, 0.001 means 0.1%
	PercentageOfBuyOrderTakenForExchangeFee(ctx context.Context, marketID string) (decimal.Decimal, error)
	PercentageOfSellOrderTakenForExchangeFee(ctx context.Context, marketID string) (decimal.Decimal, error)
}
