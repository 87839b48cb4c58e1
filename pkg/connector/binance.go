package connector

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"exadapter/pkg/config"
	"exadapter/pkg/storage"
	"exadapter/pkg/trading"
	"exadapter/pkg/utils/metrics/exporter"
)

const (
	exchangeName   = "binance"
	implName       = "Binance API v3"
	orderBookDepth = 100

	keyPropertyName          = "key"
	secretPropertyName       = "secret"
	simulateModePropertyName = "simulate-mode"
	buyFeePropertyName       = "buy-fee"
	sellFeePropertyName      = "sell-fee"
	baseURLPropertyName      = "base-url"
)

var (
	metricVenueCallLatency = exporter.GetHistogram("venue_call_latency_ms", "venue call latency, retries included", []string{"exchange", "op"})
	metricTradingErrors    = exporter.GetCounter("trading_errors_total", "classified connector errors", []string{"exchange", "op", "kind"})
	metricSimulatedOrders  = exporter.GetCounter("simulated_orders_total", "orders answered locally in simulate mode", []string{"exchange", "market"})
)

type BinanceConfig struct {
	Exchange *config.ExchangeConfig
	// Venue replaces the go-binance client, nil builds one from the authentication items
	Venue   Venue
	Journal storage.Journal
}

// Binance fees are static for the connector lifetime: Binance fees are tiered
// by volume, the configured values are an approximation of what is charged.
type Binance struct {
	logger      logrus.FieldLogger
	customVenue Venue
	journal     storage.Journal

	// set by Init only
	venue        Venue
	network      network
	simulateMode bool
	buyFee       decimal.Decimal
	sellFee      decimal.Decimal

	// next simulated order id, never reset
	simulatedOrderID atomic.Uint64
}

func NewBinance(cfg *BinanceConfig, logger logrus.FieldLogger) (*Binance, error) {
	b := &Binance{
		logger:      logger.WithField("module", "connector").WithField("exchange", exchangeName),
		customVenue: cfg.Venue,
		journal:     cfg.Journal,
	}

	if err := b.Init(cfg.Exchange); err != nil {
		return nil, err
	}

	return b, nil
}

func (b *Binance) Init(cfg *config.ExchangeConfig) error {
	if cfg == nil {
		return trading.ConfigurationError("exchange config is required", nil)
	}
	b.logger.WithField("name", cfg.Name).Info("about to initialise connector")

	key, err := requiredItem(cfg, keyPropertyName)
	if err != nil {
		return err
	}
	secret, err := requiredItem(cfg, secretPropertyName)
	if err != nil {
		return err
	}

	simulateMode := true
	if v, ok := cfg.AuthenticationItem(simulateModePropertyName); ok && v != "" {
		simulateMode, err = strconv.ParseBool(v)
		if err != nil {
			return trading.ConfigurationError(fmt.Sprintf("could not parse %s: %q", simulateModePropertyName, v), err)
		}
	}

	nw, err := networkFrom(cfg.Network)
	if err != nil {
		return trading.ConfigurationError("invalid network-config", err)
	}

	buyFee, err := optionalFee(cfg, buyFeePropertyName)
	if err != nil {
		return err
	}
	sellFee, err := optionalFee(cfg, sellFeePropertyName)
	if err != nil {
		return err
	}

	venue := b.customVenue
	if venue == nil {
		baseURL, _ := cfg.OptionalItem(baseURLPropertyName)
		venue = newBinanceVenue(key, secret, baseURL, nw.timeout)
	}

	b.venue = venue
	b.network = nw
	b.simulateMode = simulateMode
	b.buyFee = buyFee
	b.sellFee = sellFee

	b.logger.
		WithField("simulatemode", simulateMode).
		WithField("buyfee", buyFee.String()).
		WithField("sellfee", sellFee.String()).
		WithField("timeout", nw.timeout.String()).
		WithField("retries", nw.retries).
		Info("connector initialised")

	return nil
}

func requiredItem(cfg *config.ExchangeConfig, name string) (string, error) {
	v, ok := cfg.AuthenticationItem(name)
	if !ok || v == "" {
		return "", trading.ConfigurationError(fmt.Sprintf("authentication-config %s is required", name), nil)
	}

	return v, nil
}

func optionalFee(cfg *config.ExchangeConfig, name string) (decimal.Decimal, error) {
	v, ok := cfg.OptionalItem(name)
	if !ok || v == "" {
		return decimal.Zero, nil
	}

	fee, err := feeFraction(v)
	if err != nil {
		return decimal.Zero, trading.ConfigurationError(fmt.Sprintf("invalid %s", name), err)
	}

	return fee, nil
}

func (b *Binance) ImplName() string {
	return implName
}

func (b *Binance) MarketOrders(ctx context.Context, marketID string) (trading.MarketOrderBook, error) {
	symbol := strings.ToUpper(marketID)

	var book trading.MarketOrderBook
	err := b.call(ctx, "getMarketOrders", symbol, true, func(ctx context.Context) error {
		depth, err := b.venue.OrderBook(ctx, symbol, orderBookDepth)
		if err != nil {
			return err
		}

		book, err = marketOrderBookFrom(marketID, depth)
		return err
	})
	if err != nil {
		return trading.MarketOrderBook{}, err
	}

	return book, nil
}

func (b *Binance) YourOpenOrders(ctx context.Context, marketID string) ([]trading.OpenOrder, error) {
	symbol := strings.ToUpper(marketID)

	var orders []trading.OpenOrder
	err := b.call(ctx, "getYourOpenOrders", symbol, true, func(ctx context.Context) error {
		res, err := b.venue.OpenOrders(ctx, symbol)
		if err != nil {
			return err
		}

		orders, err = openOrdersFrom(res)
		return err
	})
	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (b *Binance) CreateOrder(ctx context.Context, marketID string, orderType trading.OrderType,
	quantity, price decimal.Decimal) (string, error) {
	const op = "createOrder"
	symbol := strings.ToUpper(marketID)
	simulateMode := b.simulateMode

	side, err := sideTypeFrom(orderType)
	if err != nil {
		return "", b.fail(op, symbol, err)
	}

	// Binance rejects more than 8 decimals
	strQuantity := formatDecimal(quantity)
	strPrice := formatDecimal(price)
	if !quantity.Round(venuePrecision).IsPositive() || !price.Round(venuePrecision).IsPositive() {
		return "", b.fail(op, symbol, trading.InvalidArgument("quantity: %s and price: %s must be greater than 0", strQuantity, strPrice))
	}

	logger := b.logger.
		WithField("op", op).
		WithField("market", symbol).
		WithField("ordertype", orderType.String()).
		WithField("quantity", strQuantity).
		WithField("price", strPrice)

	event := storage.OrderEvent{
		MarketID:  symbol,
		Action:    storage.ActionCreated,
		OrderType: orderType.String(),
		Quantity:  strQuantity,
		Price:     strPrice,
		Simulated: simulateMode,
	}

	if simulateMode {
		orderID := strconv.FormatUint(b.simulatedOrderID.Add(1)-1, 10)
		metricSimulatedOrders.With(prometheus.Labels{"exchange": exchangeName, "market": symbol}).Inc()
		logger.WithField("orderid", orderID).Info("simulate mode, order not sent to exchange")

		event.OrderID = orderID
		b.journalOrder(ctx, event)

		return orderID, nil
	}

	req := NewOrderRequest{
		Symbol:        symbol,
		Side:          side,
		Type:          binance.OrderTypeLimit,
		TimeInForce:   binance.TimeInForceTypeGTC,
		Quantity:      strQuantity,
		Price:         strPrice,
		ClientOrderID: uuid.NewString(),
	}

	var orderID string
	err = b.call(ctx, op, symbol, false, func(ctx context.Context) error {
		resp, err := b.venue.NewOrder(ctx, req)
		if err != nil {
			return err
		}
		if resp == nil {
			return errors.New("empty create order response")
		}

		orderID = strconv.FormatInt(resp.OrderID, 10)
		return nil
	})
	if err != nil {
		return "", err
	}

	logger.WithField("orderid", orderID).WithField("clientorderid", req.ClientOrderID).Info("order created")

	event.OrderID = orderID
	event.ClientOrderID = req.ClientOrderID
	b.journalOrder(ctx, event)

	return orderID, nil
}

func (b *Binance) CancelOrder(ctx context.Context, orderID, marketID string) bool {
	const op = "cancelOrder"
	symbol := strings.ToUpper(marketID)
	logger := b.logger.WithField("op", op).WithField("market", symbol).WithField("orderid", orderID)

	event := storage.OrderEvent{
		MarketID: symbol,
		OrderID:  orderID,
		Action:   storage.ActionCancelled,
	}

	id, err := strconv.ParseInt(strings.TrimSpace(orderID), 10, 64)
	if err != nil {
		logger.WithError(err).Error("failed to cancel order on exchange, invalid order id")
		event.Action = storage.ActionCancelFailed
		b.journalOrder(ctx, event)
		return false
	}

	// a retried cancel could hit an order the first attempt already removed
	err = b.call(ctx, op, symbol, false, func(ctx context.Context) error {
		return b.venue.CancelOrder(ctx, symbol, id)
	})
	if err != nil {
		logger.WithError(err).Error("failed to cancel order on exchange")
		event.Action = storage.ActionCancelFailed
		b.journalOrder(ctx, event)
		return false
	}

	logger.Debug("order cancelled")
	b.journalOrder(ctx, event)

	return true
}

func (b *Binance) LatestMarketPrice(ctx context.Context, marketID string) (decimal.Decimal, error) {
	symbol := strings.ToUpper(marketID)

	var price decimal.Decimal
	err := b.call(ctx, "getLatestMarketPrice", symbol, true, func(ctx context.Context) error {
		stats, err := b.venue.PriceStatistics(ctx, symbol)
		if err != nil {
			return err
		}
		if stats == nil {
			return fmt.Errorf("empty 24hr price statistics for symbol: %s", symbol)
		}

		price, err = parseDecimal("lastPrice", stats.LastPrice)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}

	return price, nil
}

func (b *Binance) BalanceInfo(ctx context.Context) (trading.BalanceInfo, error) {
	var info trading.BalanceInfo
	err := b.call(ctx, "getBalanceInfo", "", true, func(ctx context.Context) error {
		account, err := b.venue.Account(ctx)
		if err != nil {
			return err
		}
		if account == nil {
			return errors.New("empty account response")
		}

		info, err = balanceInfoFrom(account.Balances)
		return err
	})
	if err != nil {
		return trading.BalanceInfo{}, err
	}

	return info, nil
}

func (b *Binance) PercentageOfBuyOrderTakenForExchangeFee(_ context.Context, _ string) (decimal.Decimal, error) {
	return b.buyFee, nil
}

func (b *Binance) PercentageOfSellOrderTakenForExchangeFee(_ context.Context, _ string) (decimal.Decimal, error) {
	return b.sellFee, nil
}

// call runs one venue interaction and classifies whatever went wrong.
func (b *Binance) call(ctx context.Context, op, symbol string, idempotent bool, fn func(ctx context.Context) error) error {
	if b.venue == nil {
		return b.fail(op, symbol, errors.New("connector not initialised"))
	}

	time0 := time.Now()
	err := b.network.do(ctx, idempotent, fn)
	metricVenueCallLatency.
		With(prometheus.Labels{"exchange": exchangeName, "op": op}).
		Observe(float64(time.Since(time0).Milliseconds()))

	if err == nil {
		return nil
	}

	return b.fail(op, symbol, err)
}

func (b *Binance) fail(op, symbol string, err error) *trading.Error {
	tErr := b.network.classifier.classify(op, err)
	metricTradingErrors.With(prometheus.Labels{"exchange": exchangeName, "op": op, "kind": tErr.Kind.String()}).Inc()

	logger := b.logger.WithField("op", op).WithError(err)
	if symbol != "" {
		logger = logger.WithField("market", symbol)
	}

	if tErr.Kind == trading.KindUnexpected {
		logger.Error(unexpectedErrorMsg)
	} else {
		logger.Warn(networkErrorMsg)
	}

	return tErr
}

func (b *Binance) journalOrder(ctx context.Context, event storage.OrderEvent) {
	if b.journal == nil {
		return
	}

	event.Exchange = exchangeName
	event.CreatedAt = time.Now().UTC()
	if err := b.journal.AddOrderEvent(ctx, event); err != nil {
		b.logger.WithError(err).WithField("event", fmt.Sprintf("%+v", event)).Warn("could not journal order event")
	}
}
