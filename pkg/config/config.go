package config

// package config describes how an exchange is configured and loads it from a
// yaml file and/or the environment. It only checks the shape of the values,
// each connector parses the items it needs.

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

type ExchangeConfig struct {
	Name           string            `yaml:"name" env:"EXCHANGE_NAME" env-default:"binance"`
	Authentication map[string]string `yaml:"authentication-config" env:"EXCHANGE_AUTHENTICATION"`
	Network        NetworkConfig     `yaml:"network-config"`
	Optional       map[string]string `yaml:"other-config" env:"EXCHANGE_OTHER"`
}

type NetworkConfig struct {
	// ConnectionTimeout in seconds, 0 lets the connector pick its default
	ConnectionTimeout     int      `yaml:"connection-timeout" env:"EXCHANGE_CONNECTION_TIMEOUT"`
	Retries               int      `yaml:"retries" env:"EXCHANGE_RETRIES"`
	NonFatalErrorMessages []string `yaml:"non-fatal-error-messages" env:"EXCHANGE_NON_FATAL_ERROR_MESSAGES" env-separator:"|"`
}

// Load reads path when given, environment variables always override it.
func Load(path string) (*ExchangeConfig, error) {
	cfg := &ExchangeConfig{}

	var err error
	if path == "" {
		err = cleanenv.ReadEnv(cfg)
	} else {
		err = cleanenv.ReadConfig(path, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("could not read exchange config, err: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *ExchangeConfig) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("[CONFIG] exchange name can not be empty")
	}

	if len(c.Authentication) == 0 {
		return errors.New("[CONFIG] authentication-config can not be empty")
	}

	if c.Network.ConnectionTimeout < 0 {
		return errors.New("[CONFIG] connection-timeout can not be less than 0")
	}

	if c.Network.Retries < 0 {
		return errors.New("[CONFIG] retries can not be less than 0")
	}

	return nil
}

// AuthenticationItem returns the trimmed value and whether it was set at all.
func (c *ExchangeConfig) AuthenticationItem(name string) (string, bool) {
	return item(c.Authentication, name)
}

func (c *ExchangeConfig) OptionalItem(name string) (string, bool) {
	return item(c.Optional, name)
}

func item(section map[string]string, name string) (string, bool) {
	if section == nil {
		return "", false
	}
	v, ok := section[name]
	if !ok {
		return "", false
	}

	return strings.TrimSpace(v), true
}
