package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"exadapter/pkg/config"
	"exadapter/pkg/connector"
	"exadapter/pkg/storage"
	"exadapter/pkg/utils/metrics/exporter"
)

type Config struct {
	MetricsPort             string `env:"METRICS_PORT" env-default:""`
	StorageConnectionString string `env:"STORAGE_CONNECTION_STRING" env-default:""`
}

func (c *Config) validate() error {
	if c.MetricsPort != "" {
		port, err := strconv.Atoi(c.MetricsPort)
		if err != nil || port < 1 || port > 65535 {
			return errors.New("[CONFIG] MetricsPort should be a valid port number")
		}
	}

	return nil
}

func main() {
	logger := logger()

	app := &cli.App{
		Name:  "exadapter",
		Usage: "trade on Binance through the exchange adapter",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "exchange yaml config, environment variables are used when empty",
				EnvVars: []string{"EXCHANGE_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "dotenv file loaded before reading the environment",
				Value: ".env",
			},
			&cli.BoolFlag{
				Name:  "fake",
				Usage: "use an in-memory venue instead of Binance",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			if err := godotenv.Load(c.String("env-file")); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("could not load env file: %s, err: %w", c.String("env-file"), err)
			}

			level, err := logrus.ParseLevel(c.String("log-level"))
			if err != nil {
				return err
			}
			logger.SetLevel(level)

			return nil
		},
		Commands: commands(logger),
	}

	if err := app.Run(os.Args); err != nil {
		logger.WithError(err).Fatal("command failed")
	}
}

// session holds what every command needs, built from flags and environment.
type session struct {
	connector connector.Connector
	journal   storage.Journal
	cancel    func()
	closers   []func() error
}

func newSession(c *cli.Context, logger *logrus.Logger) (*session, error) {
	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("can not read env vars, err: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	exchangeCfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &session{cancel: cancel}

	if cfg.MetricsPort != "" {
		go func() {
			if err := exporter.Serve(ctx, cfg.MetricsPort); err != nil {
				logger.WithError(err).Error("metrics server stopped")
			}
		}()
	}

	if cfg.StorageConnectionString != "" {
		sql, err := storage.NewMysql(cfg.StorageConnectionString)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("could not open order journal, err: %w", err)
		}
		s.journal = sql
		s.closers = append(s.closers, sql.Close)
	} else {
		s.journal = storage.NewMemory()
	}

	var venue connector.Venue
	if c.Bool("fake") {
		fake := fakeVenue(logger)
		fake.Start()
		s.closers = append(s.closers, func() error {
			fake.Stop()
			return nil
		})
		venue = fake
	}

	b, err := connector.NewBinance(&connector.BinanceConfig{
		Exchange: exchangeCfg,
		Venue:    venue,
		Journal:  s.journal,
	}, logger)
	if err != nil {
		s.close()
		return nil, err
	}
	s.connector = b

	return s, nil
}

func (s *session) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		_ = s.closers[i]()
	}
	s.cancel()
}

// fakeVenue is seeded with a BTCUSDT market so every command has data.
func fakeVenue(logger *logrus.Logger) *connector.FakeVenue {
	venue := connector.NewFakeVenue(&connector.FakeVenueConfig{Interval: 5 * time.Second}, logger)

	venue.SetLastPrice("BTCUSDT", "43250.12")
	venue.SetOrderBook("BTCUSDT", &binance.DepthResponse{
		Bids: []binance.Bid{
			{Price: "43250.00", Quantity: "0.512"},
			{Price: "43249.50", Quantity: "1.200"},
		},
		Asks: []binance.Ask{
			{Price: "43250.50", Quantity: "0.300"},
			{Price: "43251.00", Quantity: "2.000"},
		},
	})
	venue.SetBalances(
		binance.Balance{Asset: "BTC", Free: "0.5", Locked: "0"},
		binance.Balance{Asset: "USDT", Free: "10000", Locked: "0"},
	)

	return venue
}

type UTCFormatter struct {
	logrus.Formatter
}

func (u UTCFormatter) Format(e *logrus.Entry) ([]byte, error) {
	e.Time = e.Time.UTC()
	return u.Formatter.Format(e)
}

func logger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(
		UTCFormatter{
			&logrus.TextFormatter{
				TimestampFormat: time.RFC3339,
				FullTimestamp:   true,
				DisableColors:   false,
				DisableSorting:  false,
			},
		},
	)

	return logger
}
