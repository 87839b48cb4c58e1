package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYaml = `
name: binance
authentication-config:
  key: my-key
  secret: my-secret
  simulate-mode: "false"
network-config:
  connection-timeout: 15
  retries: 2
  non-fatal-error-messages:
    - Connection reset
    - Too many requests
other-config:
  buy-fee: "0.1"
  sell-fee: " 0.2 "
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "exchange.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadYaml(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYaml))
	require.NoError(t, err)

	assert.Equal(t, "binance", cfg.Name)
	assert.Equal(t, 15, cfg.Network.ConnectionTimeout)
	assert.Equal(t, 2, cfg.Network.Retries)
	assert.Equal(t, []string{"Connection reset", "Too many requests"}, cfg.Network.NonFatalErrorMessages)

	key, ok := cfg.AuthenticationItem("key")
	assert.True(t, ok)
	assert.Equal(t, "my-key", key)

	fee, ok := cfg.OptionalItem("sell-fee")
	assert.True(t, ok)
	assert.Equal(t, "0.2", fee)

	_, ok = cfg.OptionalItem("base-url")
	assert.False(t, ok)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  ExchangeConfig
		ok   bool
	}{
		{
			name: "valid",
			cfg:  ExchangeConfig{Name: "binance", Authentication: map[string]string{"key": "k"}},
			ok:   true,
		},
		{
			name: "empty name",
			cfg:  ExchangeConfig{Name: " ", Authentication: map[string]string{"key": "k"}},
		},
		{
			name: "no authentication",
			cfg:  ExchangeConfig{Name: "binance"},
		},
		{
			name: "negative timeout",
			cfg: ExchangeConfig{
				Name:           "binance",
				Authentication: map[string]string{"key": "k"},
				Network:        NetworkConfig{ConnectionTimeout: -1},
			},
		},
		{
			name: "negative retries",
			cfg: ExchangeConfig{
				Name:           "binance",
				Authentication: map[string]string{"key": "k"},
				Network:        NetworkConfig{Retries: -1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "[CONFIG]")
		})
	}
}

func TestItemOnNilSection(t *testing.T) {
	cfg := ExchangeConfig{}
	_, ok := cfg.OptionalItem("buy-fee")
	assert.False(t, ok)
}
