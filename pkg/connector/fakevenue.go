package connector

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"github.com/sirupsen/logrus"
)

const defaultFakeFillInterval = time.Second

type FakeVenueConfig struct {
	// Interval between random fills, used only after Start. Not positive
	// means defaultFakeFillInterval.
	Interval time.Duration
}

// FakeCall is one recorded venue call.
type FakeCall struct {
	Method string
	Symbol string
	Limit  int
}

type fakeFailure struct {
	err error
	// remaining < 0 fails forever
	remaining int
}

// FakeVenue is an in-memory Venue. Orders placed on it rest until Start'ed
// fills them at random or they are cancelled. Filled orders stay listed.
type FakeVenue struct {
	ctx        context.Context
	cancelFunc func()
	logger     logrus.FieldLogger
	interval   time.Duration
	doneSig    chan struct{}
	m          sync.Mutex
	books      map[string]*binance.DepthResponse
	orders     map[string][]*binance.Order
	prices     map[string]string
	balances   []binance.Balance
	lastID     int64
	calls      []FakeCall
	failures   map[string]*fakeFailure
}

func NewFakeVenue(cfg *FakeVenueConfig, logger logrus.FieldLogger) *FakeVenue {
	venueCtx, cancel := context.WithCancel(context.Background())

	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultFakeFillInterval
	}

	return &FakeVenue{
		ctx:        venueCtx,
		cancelFunc: cancel,
		logger:     logger.WithField("module", "fakevenue"),
		interval:   interval,
		doneSig:    make(chan struct{}),
		books:      make(map[string]*binance.DepthResponse),
		orders:     make(map[string][]*binance.Order),
		prices:     make(map[string]string),
		failures:   make(map[string]*fakeFailure),
	}
}

func (f *FakeVenue) Start() {
	go func() {
		for {
			select {
			case <-f.ctx.Done():
				f.doneSig <- struct{}{}
				return
			default:
				f.run()
				select {
				case <-f.ctx.Done():
				case <-time.After(f.interval):
				}
			}
		}
	}()

	f.logger.Info("fake venue successful start")
}

func (f *FakeVenue) Stop() {
	f.cancelFunc()
	f.logger.Info("fake venue stopping ...")

	<-f.doneSig
	f.logger.Info("fake venue successful stop")
}

func (f *FakeVenue) SetOrderBook(symbol string, depth *binance.DepthResponse) {
	f.m.Lock()
	defer f.m.Unlock()

	f.books[symbol] = depth
}

func (f *FakeVenue) SetLastPrice(symbol, price string) {
	f.m.Lock()
	defer f.m.Unlock()

	f.prices[symbol] = price
}

func (f *FakeVenue) SetBalances(balances ...binance.Balance) {
	f.m.Lock()
	defer f.m.Unlock()

	f.balances = append([]binance.Balance(nil), balances...)
}

// AddOrder stores o as is, OrderID included.
func (f *FakeVenue) AddOrder(o *binance.Order) {
	f.m.Lock()
	defer f.m.Unlock()

	if o.OrderID > f.lastID {
		f.lastID = o.OrderID
	}
	f.orders[o.Symbol] = append(f.orders[o.Symbol], o)
}

// Fail makes the next times calls of method return err, times < 0 means always.
func (f *FakeVenue) Fail(method string, err error, times int) {
	f.m.Lock()
	defer f.m.Unlock()

	f.failures[method] = &fakeFailure{err: err, remaining: times}
}

func (f *FakeVenue) Calls() []FakeCall {
	f.m.Lock()
	defer f.m.Unlock()

	return append([]FakeCall(nil), f.calls...)
}

func (f *FakeVenue) Orders(symbol string) []binance.Order {
	f.m.Lock()
	defer f.m.Unlock()

	res := make([]binance.Order, 0, len(f.orders[symbol]))
	for _, o := range f.orders[symbol] {
		res = append(res, *o)
	}

	return res
}

// record must be called with f.m held.
func (f *FakeVenue) record(method, symbol string, limit int) error {
	f.calls = append(f.calls, FakeCall{Method: method, Symbol: symbol, Limit: limit})

	fail, ok := f.failures[method]
	if !ok || fail.remaining == 0 {
		return nil
	}
	if fail.remaining > 0 {
		fail.remaining--
	}

	return fail.err
}

func (f *FakeVenue) OrderBook(_ context.Context, symbol string, limit int) (*binance.DepthResponse, error) {
	f.m.Lock()
	defer f.m.Unlock()

	if err := f.record("OrderBook", symbol, limit); err != nil {
		return nil, err
	}

	book, ok := f.books[symbol]
	if !ok {
		return &binance.DepthResponse{}, nil
	}

	res := *book
	if limit > 0 && len(res.Asks) > limit {
		res.Asks = res.Asks[:limit]
	}
	if limit > 0 && len(res.Bids) > limit {
		res.Bids = res.Bids[:limit]
	}

	return &res, nil
}

func (f *FakeVenue) OpenOrders(_ context.Context, symbol string) ([]*binance.Order, error) {
	f.m.Lock()
	defer f.m.Unlock()

	if err := f.record("OpenOrders", symbol, 0); err != nil {
		return nil, err
	}

	res := make([]*binance.Order, 0, len(f.orders[symbol]))
	for _, o := range f.orders[symbol] {
		cp := *o
		res = append(res, &cp)
	}

	return res, nil
}

func (f *FakeVenue) NewOrder(_ context.Context, req NewOrderRequest) (*binance.CreateOrderResponse, error) {
	f.m.Lock()
	defer f.m.Unlock()

	if err := f.record("NewOrder", req.Symbol, 0); err != nil {
		return nil, err
	}

	f.lastID++
	now := time.Now().UnixMilli()
	o := &binance.Order{
		Symbol:           req.Symbol,
		OrderID:          f.lastID,
		ClientOrderID:    req.ClientOrderID,
		Price:            req.Price,
		OrigQuantity:     req.Quantity,
		ExecutedQuantity: "0",
		Status:           binance.OrderStatusTypeNew,
		TimeInForce:      req.TimeInForce,
		Type:             req.Type,
		Side:             req.Side,
		Time:             now,
		UpdateTime:       now,
	}
	f.orders[req.Symbol] = append(f.orders[req.Symbol], o)

	return &binance.CreateOrderResponse{
		Symbol:           o.Symbol,
		OrderID:          o.OrderID,
		ClientOrderID:    o.ClientOrderID,
		TransactTime:     now,
		Price:            o.Price,
		OrigQuantity:     o.OrigQuantity,
		ExecutedQuantity: o.ExecutedQuantity,
		Status:           o.Status,
		Type:             o.Type,
		Side:             o.Side,
	}, nil
}

func (f *FakeVenue) CancelOrder(_ context.Context, symbol string, orderID int64) error {
	f.m.Lock()
	defer f.m.Unlock()

	if err := f.record("CancelOrder", symbol, 0); err != nil {
		return err
	}

	for idx, o := range f.orders[symbol] {
		if o.OrderID != orderID || o.Status == binance.OrderStatusTypeFilled {
			continue
		}
		f.orders[symbol] = append(f.orders[symbol][:idx], f.orders[symbol][idx+1:]...)
		return nil
	}

	return &common.APIError{Code: -2011, Message: "Unknown order sent."}
}

func (f *FakeVenue) PriceStatistics(_ context.Context, symbol string) (*binance.PriceChangeStats, error) {
	f.m.Lock()
	defer f.m.Unlock()

	if err := f.record("PriceStatistics", symbol, 0); err != nil {
		return nil, err
	}

	price, ok := f.prices[symbol]
	if !ok {
		return nil, &common.APIError{Code: -1121, Message: "Invalid symbol."}
	}

	return &binance.PriceChangeStats{Symbol: symbol, LastPrice: price}, nil
}

func (f *FakeVenue) Account(_ context.Context) (*binance.Account, error) {
	f.m.Lock()
	defer f.m.Unlock()

	if err := f.record("Account", "", 0); err != nil {
		return nil, err
	}

	return &binance.Account{
		Balances: append([]binance.Balance(nil), f.balances...),
	}, nil
}

func (f *FakeVenue) run() {
	f.m.Lock()
	defer f.m.Unlock()

	// random orders executed
	for symbol := range f.orders {
		for _, o := range f.orders[symbol] {
			if o.Status != binance.OrderStatusTypeNew {
				continue
			}
			if rand.Intn(100000)%2 == 0 {
				o.Status = binance.OrderStatusTypeFilled
				o.ExecutedQuantity = o.OrigQuantity
				o.UpdateTime = time.Now().UnixMilli()
			}
		}
	}
}
