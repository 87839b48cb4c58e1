package watch

// package watch is responsible for:
// - polling the read operations of a connector for a set of markets
// - keeping the last snapshot per market and logging it
// - exporting the last price as a gauge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"exadapter/pkg/connector"
	"exadapter/pkg/utils/metrics/exporter"
)

const minInterval = 100 * time.Millisecond

var (
	metricLastPrice  = exporter.GetGauge("watched_last_price", "last traded price of watched markets", []string{"market"})
	metricOpenOrders = exporter.GetGauge("watched_open_orders", "open orders on watched markets", []string{"market"})
)

type ConfigWatch struct {
	Interval time.Duration
	Markets  []string
}

type Snapshot struct {
	MarketID  string
	LastPrice decimal.Decimal
	// BestBid and BestAsk are zero when the book side is empty
	BestBid    decimal.Decimal
	BestAsk    decimal.Decimal
	OpenOrders int
	TakenAt    time.Time
}

type Watch struct {
	ctx        context.Context
	cancelFunc func()
	logger     logrus.FieldLogger
	connector  connector.Connector
	interval   time.Duration
	markets    []string
	doneSig    chan struct{}
	m          sync.Mutex
	snapshots  map[string]Snapshot
}

func New(cfg *ConfigWatch, c connector.Connector, logger logrus.FieldLogger) *Watch {
	watchCtx, cancel := context.WithCancel(context.Background())

	return &Watch{
		ctx:        watchCtx,
		cancelFunc: cancel,
		logger:     logger.WithField("module", "watch"),
		connector:  c,
		interval:   cfg.Interval,
		markets:    cfg.Markets,
		doneSig:    make(chan struct{}),
		snapshots:  make(map[string]Snapshot),
	}
}

func (w *Watch) validate() error {
	if w.interval < minInterval {
		return fmt.Errorf("[CONFIG] interval should be at least %s", minInterval)
	}

	if len(w.markets) == 0 {
		return errors.New("[CONFIG] at least one market should be watched")
	}

	for _, m := range w.markets {
		if strings.TrimSpace(m) == "" {
			return errors.New("[CONFIG] market can not be empty")
		}
	}

	return nil
}

func (w *Watch) Start() error {
	if err := w.validate(); err != nil {
		return err
	}

	go func() {
		for {
			select {
			case <-w.ctx.Done():
				w.doneSig <- struct{}{}
				return
			default:
				w.run()
				select {
				case <-w.ctx.Done():
				case <-time.After(w.interval):
				}
			}
		}
	}()

	w.logger.WithField("markets", strings.Join(w.markets, ",")).Infof("watch starts with success, connector: %s", w.connector.ImplName())

	return nil
}

func (w *Watch) Stop() {
	w.logger.Info("watch stopping ...")
	w.cancelFunc()

	<-w.doneSig
	w.logger.Info("watch stops with success")
}

// Snapshots returns a copy of the last snapshot taken per market.
func (w *Watch) Snapshots() map[string]Snapshot {
	w.m.Lock()
	defer w.m.Unlock()

	res := make(map[string]Snapshot, len(w.snapshots))
	for k, v := range w.snapshots {
		res[k] = v
	}

	return res
}

func (w *Watch) run() {
	for _, market := range w.markets {
		s, err := w.snapshot(w.ctx, market)
		if err != nil {
			w.logger.WithError(err).WithField("market", market).Warn("could not take market snapshot")
			continue
		}

		w.m.Lock()
		w.snapshots[market] = s
		w.m.Unlock()

		price, _ := s.LastPrice.Float64()
		metricLastPrice.With(prometheus.Labels{"market": market}).Set(price)
		metricOpenOrders.With(prometheus.Labels{"market": market}).Set(float64(s.OpenOrders))

		w.logger.
			WithField("market", market).
			WithField("lastprice", s.LastPrice.String()).
			WithField("bestbid", s.BestBid.String()).
			WithField("bestask", s.BestAsk.String()).
			WithField("openorders", s.OpenOrders).
			Info("market snapshot")
	}

	balances, err := w.connector.BalanceInfo(w.ctx)
	if err != nil {
		w.logger.WithError(err).Warn("could not get balance info")
		return
	}
	for asset, v := range balances.Available {
		if v.IsZero() {
			continue
		}
		w.logger.WithField("asset", asset).WithField("available", v.String()).Debug("balance")
	}
}

func (w *Watch) snapshot(ctx context.Context, market string) (Snapshot, error) {
	price, err := w.connector.LatestMarketPrice(ctx, market)
	if err != nil {
		return Snapshot{}, err
	}

	book, err := w.connector.MarketOrders(ctx, market)
	if err != nil {
		return Snapshot{}, err
	}

	orders, err := w.connector.YourOpenOrders(ctx, market)
	if err != nil {
		return Snapshot{}, err
	}

	s := Snapshot{
		MarketID:   market,
		LastPrice:  price,
		OpenOrders: len(orders),
		TakenAt:    time.Now().UTC(),
	}

	// venue books are sorted best first, do not rely on it
	for i, o := range book.BuyOrders {
		if i == 0 || o.Price.GreaterThan(s.BestBid) {
			s.BestBid = o.Price
		}
	}
	for i, o := range book.SellOrders {
		if i == 0 || o.Price.LessThan(s.BestAsk) {
			s.BestAsk = o.Price
		}
	}

	return s, nil
}
