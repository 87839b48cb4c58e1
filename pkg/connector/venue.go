package connector

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/adshao/go-binance/v2"
)

// Venue is the narrow set of calls the Binance connector needs. Responses keep
// the go-binance shapes, translation to the trading model happens in the connector.
type Venue interface {
	OrderBook(ctx context.Context, symbol string, limit int) (*binance.DepthResponse, error)
	OpenOrders(ctx context.Context, symbol string) ([]*binance.Order, error)
	NewOrder(ctx context.Context, req NewOrderRequest) (*binance.CreateOrderResponse, error)
	CancelOrder(ctx context.Context, symbol string, orderID int64) error
	PriceStatistics(ctx context.Context, symbol string) (*binance.PriceChangeStats, error)
	Account(ctx context.Context) (*binance.Account, error)
}

type NewOrderRequest struct {
	Symbol        string
	Side          binance.SideType
	Type          binance.OrderType
	TimeInForce   binance.TimeInForceType
	Quantity      string
	Price         string
	ClientOrderID string
}

type binanceVenue struct {
	client *binance.Client
}

func newBinanceVenue(apiKey, secretKey, baseURL string, timeout time.Duration) *binanceVenue {
	client := binance.NewClient(apiKey, secretKey)
	client.HTTPClient = &http.Client{Timeout: timeout}
	if baseURL != "" {
		client.BaseURL = baseURL
	}

	return &binanceVenue{
		client: client,
	}
}

func (v *binanceVenue) OrderBook(ctx context.Context, symbol string, limit int) (*binance.DepthResponse, error) {
	return v.client.NewDepthService().Symbol(symbol).Limit(limit).Do(ctx)
}

func (v *binanceVenue) OpenOrders(ctx context.Context, symbol string) ([]*binance.Order, error) {
	return v.client.NewListOpenOrdersService().Symbol(symbol).Do(ctx)
}

func (v *binanceVenue) NewOrder(ctx context.Context, req NewOrderRequest) (*binance.CreateOrderResponse, error) {
	s := v.client.NewCreateOrderService().
		Symbol(req.Symbol).
		Side(req.Side).
		Type(req.Type).
		TimeInForce(req.TimeInForce).
		Quantity(req.Quantity).
		Price(req.Price)
	if req.ClientOrderID != "" {
		s = s.NewClientOrderID(req.ClientOrderID)
	}

	return s.Do(ctx)
}

func (v *binanceVenue) CancelOrder(ctx context.Context, symbol string, orderID int64) error {
	_, err := v.client.NewCancelOrderService().Symbol(symbol).OrderID(orderID).Do(ctx)
	return err
}

func (v *binanceVenue) PriceStatistics(ctx context.Context, symbol string) (*binance.PriceChangeStats, error) {
	stats, err := v.client.NewListPriceChangeStatsService().Symbol(symbol).Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(stats) == 0 || stats[0] == nil {
		return nil, fmt.Errorf("no 24hr price statistics for symbol: %s", symbol)
	}

	return stats[0], nil
}

func (v *binanceVenue) Account(ctx context.Context) (*binance.Account, error) {
	return v.client.NewGetAccountService().Do(ctx)
}
