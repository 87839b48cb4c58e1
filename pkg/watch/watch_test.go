package watch

import (
	"io"
	"testing"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exadapter/pkg/config"
	"exadapter/pkg/connector"
)

func newTestConnector(t *testing.T) (*connector.Binance, *connector.FakeVenue) {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	venue := connector.NewFakeVenue(&connector.FakeVenueConfig{Interval: time.Second}, logger)
	venue.SetLastPrice("BTCUSDT", "100.5")
	venue.SetOrderBook("BTCUSDT", &binance.DepthResponse{
		Bids: []binance.Bid{{Price: "99", Quantity: "1"}, {Price: "100", Quantity: "1"}},
		Asks: []binance.Ask{{Price: "101", Quantity: "1"}, {Price: "102", Quantity: "1"}},
	})
	venue.AddOrder(&binance.Order{
		Symbol:           "BTCUSDT",
		OrderID:          1,
		Price:            "90",
		OrigQuantity:     "1",
		ExecutedQuantity: "0",
		Status:           binance.OrderStatusTypeNew,
		Side:             binance.SideTypeBuy,
	})
	venue.SetBalances(binance.Balance{Asset: "BTC", Free: "1", Locked: "0"})

	c, err := connector.NewBinance(&connector.BinanceConfig{
		Exchange: &config.ExchangeConfig{
			Name:           "binance",
			Authentication: map[string]string{"key": "key", "secret": "secret"},
		},
		Venue: venue,
	}, logger)
	require.NoError(t, err)

	return c, venue
}

func testLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return logger
}

func TestWatch_Run(t *testing.T) {
	c, _ := newTestConnector(t)
	w := New(&ConfigWatch{Interval: time.Second, Markets: []string{"btcusdt", "ETHUSDT"}}, c, testLogger())

	w.run()

	snapshots := w.Snapshots()
	require.Len(t, snapshots, 1)

	s, ok := snapshots["btcusdt"]
	require.True(t, ok)
	assert.Equal(t, "100.5", s.LastPrice.String())
	assert.Equal(t, "100", s.BestBid.String())
	assert.Equal(t, "101", s.BestAsk.String())
	assert.Equal(t, 1, s.OpenOrders)
	assert.False(t, s.TakenAt.IsZero())
}

func TestWatch_StartStop(t *testing.T) {
	c, venue := newTestConnector(t)
	w := New(&ConfigWatch{Interval: minInterval, Markets: []string{"BTCUSDT"}}, c, testLogger())

	require.NoError(t, w.Start())
	assert.Eventually(t, func() bool {
		_, ok := w.Snapshots()["BTCUSDT"]
		return ok
	}, time.Second, 10*time.Millisecond)
	w.Stop()

	var accountCalls int
	for _, call := range venue.Calls() {
		if call.Method == "Account" {
			accountCalls++
		}
	}
	assert.GreaterOrEqual(t, accountCalls, 1)
}

func TestWatch_Validate(t *testing.T) {
	c, _ := newTestConnector(t)

	tests := []struct {
		name string
		cfg  ConfigWatch
	}{
		{name: "interval", cfg: ConfigWatch{Interval: time.Millisecond, Markets: []string{"BTCUSDT"}}},
		{name: "no markets", cfg: ConfigWatch{Interval: time.Second}},
		{name: "blank market", cfg: ConfigWatch{Interval: time.Second, Markets: []string{" "}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			assert.Error(t, New(&cfg, c, testLogger()).Start())
		})
	}
}
