package connector

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"

	"exadapter/pkg/trading"
)

// translators from venue shaped values to the trading model, no side effects

func marketOrderFromLevel(orderType trading.OrderType, price, quantity string) (trading.MarketOrder, error) {
	p, err := parseDecimal("price", price)
	if err != nil {
		return trading.MarketOrder{}, err
	}

	q, err := parseDecimal("quantity", quantity)
	if err != nil {
		return trading.MarketOrder{}, err
	}

	return trading.NewMarketOrder(orderType, p, q), nil
}

func marketOrdersFromAsks(asks []binance.Ask) ([]trading.MarketOrder, error) {
	orders := make([]trading.MarketOrder, 0, len(asks))
	for _, a := range asks {
		o, err := marketOrderFromLevel(trading.OrderTypeSell, a.Price, a.Quantity)
		if err != nil {
			return nil, fmt.Errorf("ask level: %w", err)
		}
		orders = append(orders, o)
	}

	return orders, nil
}

func marketOrdersFromBids(bids []binance.Bid) ([]trading.MarketOrder, error) {
	orders := make([]trading.MarketOrder, 0, len(bids))
	for _, b := range bids {
		o, err := marketOrderFromLevel(trading.OrderTypeBuy, b.Price, b.Quantity)
		if err != nil {
			return nil, fmt.Errorf("bid level: %w", err)
		}
		orders = append(orders, o)
	}

	return orders, nil
}

func marketOrderBookFrom(marketID string, depth *binance.DepthResponse) (trading.MarketOrderBook, error) {
	if depth == nil {
		return trading.MarketOrderBook{}, fmt.Errorf("empty order book response for market: %s", marketID)
	}

	sells, err := marketOrdersFromAsks(depth.Asks)
	if err != nil {
		return trading.MarketOrderBook{}, err
	}

	buys, err := marketOrdersFromBids(depth.Bids)
	if err != nil {
		return trading.MarketOrderBook{}, err
	}

	return trading.MarketOrderBook{
		MarketID:   marketID,
		SellOrders: sells,
		BuyOrders:  buys,
	}, nil
}

func openOrderFrom(o *binance.Order) (trading.OpenOrder, error) {
	if o == nil {
		return trading.OpenOrder{}, errors.New("nil order")
	}

	orderType, err := orderTypeFrom(o.Side)
	if err != nil {
		return trading.OpenOrder{}, err
	}

	price, err := parseDecimal("price", o.Price)
	if err != nil {
		return trading.OpenOrder{}, err
	}

	origQty, err := parseDecimal("origQty", o.OrigQuantity)
	if err != nil {
		return trading.OpenOrder{}, err
	}

	executedQty, err := parseDecimal("executedQty", o.ExecutedQuantity)
	if err != nil {
		return trading.OpenOrder{}, err
	}

	return trading.NewOpenOrder(
		strconv.FormatInt(o.OrderID, 10),
		time.UnixMilli(o.Time),
		o.Symbol,
		orderType,
		price,
		origQty,
		executedQty,
	), nil
}

// openOrdersFrom skips orders the venue already reports as filled.
func openOrdersFrom(orders []*binance.Order) ([]trading.OpenOrder, error) {
	res := make([]trading.OpenOrder, 0, len(orders))
	for _, o := range orders {
		if o == nil || o.Status == binance.OrderStatusTypeFilled {
			continue
		}

		oo, err := openOrderFrom(o)
		if err != nil {
			return nil, fmt.Errorf("order %d: %w", o.OrderID, err)
		}
		res = append(res, oo)
	}

	return res, nil
}

func balanceValueFrom(b binance.Balance) (decimal.Decimal, error) {
	free, err := parseDecimal("free", b.Free)
	if err != nil {
		return decimal.Zero, err
	}

	locked, err := parseDecimal("locked", b.Locked)
	if err != nil {
		return decimal.Zero, err
	}

	return free.Add(locked), nil
}

// balanceInfoFrom fills only the available side, Binance does not expose
// on hold balances separately from locked ones.
func balanceInfoFrom(balances []binance.Balance) (trading.BalanceInfo, error) {
	available := make(map[string]decimal.Decimal, len(balances))
	for _, b := range balances {
		if _, ok := available[b.Asset]; ok {
			return trading.BalanceInfo{}, fmt.Errorf("duplicate balance for asset: %s", b.Asset)
		}

		v, err := balanceValueFrom(b)
		if err != nil {
			return trading.BalanceInfo{}, fmt.Errorf("asset %s: %w", b.Asset, err)
		}
		available[b.Asset] = v
	}

	return trading.NewBalanceInfo(available, nil), nil
}
