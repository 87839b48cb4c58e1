package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"exadapter/pkg/storage"
	"exadapter/pkg/trading"
	"exadapter/pkg/watch"
)

var marketFlag = &cli.StringFlag{
	Name:     "market",
	Aliases:  []string{"m"},
	Usage:    "market id, e.g. BTCUSDT",
	Required: true,
}

func commands(logger *logrus.Logger) []*cli.Command {
	return []*cli.Command{
		{
			Name:   "book",
			Usage:  "print the market order book",
			Flags:  []cli.Flag{marketFlag},
			Action: withSession(logger, bookAction),
		},
		{
			Name:   "orders",
			Usage:  "print your open orders",
			Flags:  []cli.Flag{marketFlag},
			Action: withSession(logger, ordersAction),
		},
		{
			Name:  "create",
			Usage: "place a limit order",
			Flags: []cli.Flag{
				marketFlag,
				&cli.StringFlag{Name: "type", Usage: "BUY or SELL", Required: true},
				&cli.StringFlag{Name: "quantity", Required: true},
				&cli.StringFlag{Name: "price", Required: true},
			},
			Action: withSession(logger, createAction),
		},
		{
			Name:  "cancel",
			Usage: "cancel an order",
			Flags: []cli.Flag{
				marketFlag,
				&cli.StringFlag{Name: "id", Usage: "order id", Required: true},
			},
			Action: withSession(logger, cancelAction),
		},
		{
			Name:   "price",
			Usage:  "print the last traded price",
			Flags:  []cli.Flag{marketFlag},
			Action: withSession(logger, priceAction),
		},
		{
			Name:   "balance",
			Usage:  "print the wallet balances",
			Action: withSession(logger, balanceAction),
		},
		{
			Name:   "fees",
			Usage:  "print buy and sell fees as fractions",
			Flags:  []cli.Flag{marketFlag},
			Action: withSession(logger, feesAction),
		},
		{
			Name:   "journal",
			Usage:  "print the order events recorded for a market, needs the mysql journal",
			Flags:  []cli.Flag{marketFlag},
			Action: withSession(logger, journalAction),
		},
		{
			Name:  "watch",
			Usage: "poll markets until interrupted",
			Flags: []cli.Flag{
				&cli.StringSliceFlag{Name: "market", Aliases: []string{"m"}, Required: true},
				&cli.DurationFlag{Name: "interval", Value: 5 * time.Second},
			},
			Action: withSession(logger, watchAction(logger)),
		},
	}
}

type action func(c *cli.Context, s *session) error

func withSession(logger *logrus.Logger, fn action) cli.ActionFunc {
	return func(c *cli.Context) error {
		s, err := newSession(c, logger)
		if err != nil {
			return err
		}
		defer s.close()

		return fn(c, s)
	}
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(os.Stdout, string(out))
	return err
}

func bookAction(c *cli.Context, s *session) error {
	book, err := s.connector.MarketOrders(c.Context, c.String("market"))
	if err != nil {
		return err
	}

	return printJSON(book)
}

func ordersAction(c *cli.Context, s *session) error {
	orders, err := s.connector.YourOpenOrders(c.Context, c.String("market"))
	if err != nil {
		return err
	}

	return printJSON(orders)
}

func createAction(c *cli.Context, s *session) error {
	quantity, err := decimal.NewFromString(c.String("quantity"))
	if err != nil {
		return fmt.Errorf("could not parse quantity: %w", err)
	}

	price, err := decimal.NewFromString(c.String("price"))
	if err != nil {
		return fmt.Errorf("could not parse price: %w", err)
	}

	orderType := trading.OrderType(strings.ToUpper(c.String("type")))
	id, err := s.connector.CreateOrder(c.Context, c.String("market"), orderType, quantity, price)
	if err != nil {
		return err
	}

	return printJSON(map[string]string{"orderId": id})
}

func cancelAction(c *cli.Context, s *session) error {
	if !s.connector.CancelOrder(c.Context, c.String("id"), c.String("market")) {
		return errors.New("order was not cancelled")
	}

	return printJSON(map[string]bool{"cancelled": true})
}

func priceAction(c *cli.Context, s *session) error {
	price, err := s.connector.LatestMarketPrice(c.Context, c.String("market"))
	if err != nil {
		return err
	}

	return printJSON(map[string]decimal.Decimal{"lastPrice": price})
}

func balanceAction(c *cli.Context, s *session) error {
	info, err := s.connector.BalanceInfo(c.Context)
	if err != nil {
		return err
	}

	return printJSON(info)
}

func feesAction(c *cli.Context, s *session) error {
	buy, err := s.connector.PercentageOfBuyOrderTakenForExchangeFee(c.Context, c.String("market"))
	if err != nil {
		return err
	}

	sell, err := s.connector.PercentageOfSellOrderTakenForExchangeFee(c.Context, c.String("market"))
	if err != nil {
		return err
	}

	return printJSON(map[string]decimal.Decimal{"buy": buy, "sell": sell})
}

// persistentJournal rejects the in-memory journal: it starts empty on every
// command, so reading it back can never show anything.
func persistentJournal(j storage.Journal) (storage.Journal, error) {
	if _, ok := j.(*storage.Memory); ok || j == nil {
		return nil, errors.New("[CONFIG] journal command needs STORAGE_CONNECTION_STRING, the in-memory journal is empty on each run")
	}

	return j, nil
}

func journalAction(c *cli.Context, s *session) error {
	journal, err := persistentJournal(s.journal)
	if err != nil {
		return err
	}

	events, err := journal.OrderEvents(c.Context, strings.ToUpper(c.String("market")))
	if err != nil {
		return err
	}

	return printJSON(events)
}

func watchAction(logger *logrus.Logger) action {
	return func(c *cli.Context, s *session) error {
		w := watch.New(&watch.ConfigWatch{
			Interval: c.Duration("interval"),
			Markets:  c.StringSlice("market"),
		}, s.connector, logger)

		if err := w.Start(); err != nil {
			return err
		}

		logger.Info("successful start, press Ctrl + C to graceful shutdown")
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, syscall.SIGINT, syscall.SIGTERM)
		<-sigint

		w.Stop()

		return nil
	}
}
