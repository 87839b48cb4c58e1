package connector

import (
	"testing"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exadapter/pkg/trading"
)

func TestMarketOrderBookFrom(t *testing.T) {
	depth := &binance.DepthResponse{
		Bids: []binance.Bid{
			{Price: "100.5", Quantity: "2"},
			{Price: "100.0", Quantity: "1"},
		},
		Asks: []binance.Ask{
			{Price: "101", Quantity: "0.5"},
		},
	}

	book, err := marketOrderBookFrom("btcusdt", depth)
	require.NoError(t, err)

	assert.Equal(t, "btcusdt", book.MarketID)

	// buy side comes from bids
	require.Len(t, book.BuyOrders, 2)
	assert.Equal(t, trading.OrderTypeBuy, book.BuyOrders[0].Type)
	assert.True(t, book.BuyOrders[0].Price.Equal(mustDecimal(t, "100.5")))
	assert.True(t, book.BuyOrders[0].Total.Equal(mustDecimal(t, "201")))

	require.Len(t, book.SellOrders, 1)
	assert.Equal(t, trading.OrderTypeSell, book.SellOrders[0].Type)
	assert.True(t, book.SellOrders[0].Total.Equal(mustDecimal(t, "50.5")))
}

func TestMarketOrderBookFrom_Errors(t *testing.T) {
	_, err := marketOrderBookFrom("BTCUSDT", nil)
	assert.Error(t, err)

	_, err = marketOrderBookFrom("BTCUSDT", &binance.DepthResponse{
		Bids: []binance.Bid{{Price: "abc", Quantity: "1"}},
	})
	assert.Error(t, err)
}

func TestMarketOrderBookFrom_Empty(t *testing.T) {
	book, err := marketOrderBookFrom("BTCUSDT", &binance.DepthResponse{})
	require.NoError(t, err)
	assert.Empty(t, book.BuyOrders)
	assert.Empty(t, book.SellOrders)
}

func TestOpenOrdersFrom(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	orders := []*binance.Order{
		{
			Symbol:           "BTCUSDT",
			OrderID:          42,
			Price:            "100",
			OrigQuantity:     "10",
			ExecutedQuantity: "3",
			Status:           binance.OrderStatusTypePartiallyFilled,
			Side:             binance.SideTypeSell,
			Time:             created.UnixMilli(),
		},
		{
			Symbol:           "BTCUSDT",
			OrderID:          43,
			Price:            "100",
			OrigQuantity:     "1",
			ExecutedQuantity: "1",
			Status:           binance.OrderStatusTypeFilled,
			Side:             binance.SideTypeBuy,
		},
		nil,
	}

	res, err := openOrdersFrom(orders)
	require.NoError(t, err)
	require.Len(t, res, 1)

	o := res[0]
	assert.Equal(t, "42", o.ID)
	assert.Equal(t, "BTCUSDT", o.MarketID)
	assert.Equal(t, trading.OrderTypeSell, o.Type)
	assert.True(t, o.CreatedAt.Equal(created))
	assert.True(t, o.Quantity.Equal(mustDecimal(t, "7")))
	assert.True(t, o.OriginalQuantity.Equal(mustDecimal(t, "10")))
	assert.True(t, o.Total.Equal(mustDecimal(t, "700")))
}

func TestOpenOrdersFrom_InvalidSide(t *testing.T) {
	_, err := openOrdersFrom([]*binance.Order{{
		OrderID:          1,
		Price:            "1",
		OrigQuantity:     "1",
		ExecutedQuantity: "0",
		Status:           binance.OrderStatusTypeNew,
		Side:             binance.SideType("BOTH"),
	}})
	assert.ErrorIs(t, err, trading.ErrInvalidArgument)
}

func TestBalanceInfoFrom(t *testing.T) {
	info, err := balanceInfoFrom([]binance.Balance{
		{Asset: "BTC", Free: "1.5", Locked: "0.5"},
		{Asset: "USDT", Free: "0", Locked: "0"},
	})
	require.NoError(t, err)

	assert.Len(t, info.Available, 2)
	assert.True(t, info.Available["BTC"].Equal(mustDecimal(t, "2")))
	assert.True(t, info.Available["USDT"].IsZero())
	assert.NotNil(t, info.OnHold)
	assert.Empty(t, info.OnHold)
}

func TestBalanceInfoFrom_Empty(t *testing.T) {
	info, err := balanceInfoFrom(nil)
	require.NoError(t, err)
	assert.NotNil(t, info.Available)
	assert.Empty(t, info.Available)
	assert.NotNil(t, info.OnHold)
}

func TestBalanceInfoFrom_Errors(t *testing.T) {
	_, err := balanceInfoFrom([]binance.Balance{
		{Asset: "BTC", Free: "1", Locked: "0"},
		{Asset: "BTC", Free: "2", Locked: "0"},
	})
	assert.Error(t, err)

	_, err = balanceInfoFrom([]binance.Balance{{Asset: "BTC", Free: "1", Locked: ""}})
	assert.Error(t, err)
}
