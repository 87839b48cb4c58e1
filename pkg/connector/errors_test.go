package connector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/adshao/go-binance/v2/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exadapter/pkg/trading"
)

func TestClassifier_Classify(t *testing.T) {
	var v map[string]interface{}
	jsonErr := json.Unmarshal([]byte("{"), &v)
	require.Error(t, jsonErr)

	c := classifier{nonFatalMessages: []string{"503 Service Unavailable"}}

	tests := []struct {
		name string
		err  error
		want trading.Kind
	}{
		{name: "api error", err: &common.APIError{Code: -1013, Message: "Filter failure: LOT_SIZE"}, want: trading.KindNetwork},
		{name: "wrapped api error", err: fmt.Errorf("call: %w", &common.APIError{Code: -1003}), want: trading.KindNetwork},
		{name: "bad json", err: jsonErr, want: trading.KindNetwork},
		{name: "deadline", err: context.DeadlineExceeded, want: trading.KindNetwork},
		{name: "net error", err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, want: trading.KindNetwork},
		{name: "non fatal message", err: errors.New("<html>503 Service Unavailable</html>"), want: trading.KindNetwork},
		{name: "anything else", err: errors.New("boom"), want: trading.KindUnexpected},
		{name: "invalid argument", err: trading.InvalidArgument("bad side"), want: trading.KindUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tErr := c.classify("op", tt.err)
			assert.Equal(t, tt.want, tErr.Kind)
			assert.Equal(t, "op", tErr.Op)
			assert.ErrorIs(t, tErr, tt.err)
		})
	}
}

func TestClassifier_ClassifyKeepsTradingErrors(t *testing.T) {
	orig := trading.ConfigurationError("missing key", nil)

	got := classifier{}.classify("op", orig)
	assert.Same(t, orig, got)
}

func TestClassifier_Messages(t *testing.T) {
	c := classifier{}

	assert.Equal(t, networkErrorMsg, c.classify("op", context.DeadlineExceeded).Msg)
	assert.Equal(t, unexpectedErrorMsg, c.classify("op", errors.New("boom")).Msg)
}

func TestClassifier_IsTransient(t *testing.T) {
	c := classifier{nonFatalMessages: []string{"", "Connection reset"}}

	assert.True(t, c.isTransient(context.DeadlineExceeded))
	assert.True(t, c.isTransient(errors.New("read: Connection reset by peer")))
	assert.False(t, c.isTransient(&common.APIError{Code: -2010, Message: "Account has insufficient balance"}))
	assert.False(t, c.isTransient(errors.New("boom")))
}
