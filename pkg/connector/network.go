package connector

import (
	"context"
	"fmt"
	"time"

	"exadapter/pkg/config"
)

const (
	defaultConnectionTimeout = 30 * time.Second
	defaultRetryDelay        = 250 * time.Millisecond
)

// network holds the settings shared by every venue call: timeout, retries of
// idempotent calls and the messages that mark a fault as transient.
type network struct {
	timeout    time.Duration
	retries    int
	retryDelay time.Duration
	classifier classifier
}

func networkFrom(cfg config.NetworkConfig) (network, error) {
	if cfg.ConnectionTimeout < 0 {
		return network{}, fmt.Errorf("connection-timeout can not be less than 0, got: %d", cfg.ConnectionTimeout)
	}
	if cfg.Retries < 0 {
		return network{}, fmt.Errorf("retries can not be less than 0, got: %d", cfg.Retries)
	}

	timeout := defaultConnectionTimeout
	if cfg.ConnectionTimeout > 0 {
		timeout = time.Duration(cfg.ConnectionTimeout) * time.Second
	}

	return network{
		timeout:    timeout,
		retries:    cfg.Retries,
		retryDelay: defaultRetryDelay,
		classifier: classifier{nonFatalMessages: cfg.NonFatalErrorMessages},
	}, nil
}

// do runs fn under the configured timeout. Idempotent calls are attempted
// again while the fault is transient, others run exactly once.
func (n network) do(ctx context.Context, idempotent bool, fn func(ctx context.Context) error) error {
	attempts := 1
	if idempotent {
		attempts += n.retries
	}

	var err error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return err
			case <-time.After(n.retryDelay):
			}
		}

		err = n.once(ctx, fn)
		if err == nil || !n.classifier.isTransient(err) || ctx.Err() != nil {
			return err
		}
	}

	return err
}

func (n network) once(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	callCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recovered from panic in venue call: %v", r)
		}
	}()

	return fn(callCtx)
}
