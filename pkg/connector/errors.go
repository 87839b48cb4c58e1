package connector

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"strings"

	"github.com/adshao/go-binance/v2/common"

	"exadapter/pkg/trading"
)

const (
	networkErrorMsg    = "Failed to connect to Exchange due to unexpected IO error."
	unexpectedErrorMsg = "Unexpected error has occurred in Binance Exchange Adapter."
)

type classifier struct {
	nonFatalMessages []string
}

// classify turns any fault raised around a venue call into a *trading.Error.
// Errors already classified are returned as they are.
func (c classifier) classify(op string, err error) *trading.Error {
	var tErr *trading.Error
	if errors.As(err, &tErr) {
		return tErr
	}

	if c.isNetwork(err) {
		return &trading.Error{Kind: trading.KindNetwork, Op: op, Msg: networkErrorMsg, Err: err}
	}

	return &trading.Error{Kind: trading.KindUnexpected, Op: op, Msg: unexpectedErrorMsg, Err: err}
}

// isNetwork: the venue answered with an error, answered garbage, or could not
// be reached.
func (c classifier) isNetwork(err error) bool {
	if isAPIError(err) {
		return true
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return true
	}

	return c.isTransient(err)
}

// isTransient is the subset of network faults safe to retry on idempotent calls:
// the request never got a venue answer.
func (c classifier) isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	msg := err.Error()
	for _, m := range c.nonFatalMessages {
		if m != "" && strings.Contains(msg, m) {
			return true
		}
	}

	return false
}

func isAPIError(err error) bool {
	var apiErr *common.APIError
	return errors.As(err, &apiErr)
}
