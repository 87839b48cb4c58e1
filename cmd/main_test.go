package main

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exadapter/pkg/config"
	"exadapter/pkg/connector"
	"exadapter/pkg/storage"
)

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, (&Config{}).validate())
	assert.NoError(t, (&Config{MetricsPort: "9100"}).validate())
	assert.Error(t, (&Config{MetricsPort: "metrics"}).validate())
	assert.Error(t, (&Config{MetricsPort: "70000"}).validate())
}

func TestFakeVenue_Seeded(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	b, err := connector.NewBinance(&connector.BinanceConfig{
		Exchange: &config.ExchangeConfig{
			Name:           "binance",
			Authentication: map[string]string{"key": "key", "secret": "secret"},
		},
		Venue: fakeVenue(logger),
	}, logger)
	require.NoError(t, err)

	ctx := context.Background()

	price, err := b.LatestMarketPrice(ctx, "btcusdt")
	require.NoError(t, err)
	assert.Equal(t, "43250.12", price.String())

	book, err := b.MarketOrders(ctx, "BTCUSDT")
	require.NoError(t, err)
	assert.Len(t, book.BuyOrders, 2)
	assert.Len(t, book.SellOrders, 2)

	info, err := b.BalanceInfo(ctx)
	require.NoError(t, err)
	assert.Len(t, info.Available, 2)
}

func TestPersistentJournal(t *testing.T) {
	_, err := persistentJournal(storage.NewMemory())
	assert.Error(t, err)

	_, err = persistentJournal(nil)
	assert.Error(t, err)

	j, err := persistentJournal(&storage.Mysql{})
	require.NoError(t, err)
	assert.NotNil(t, j)
}
