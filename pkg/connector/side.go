package connector

import (
	"github.com/adshao/go-binance/v2"

	"exadapter/pkg/trading"
)

func sideTypeFrom(orderType trading.OrderType) (binance.SideType, error) {
	switch orderType {
	case trading.OrderTypeBuy:
		return binance.SideTypeBuy, nil
	case trading.OrderTypeSell:
		return binance.SideTypeSell, nil
	default:
		return "", trading.InvalidArgument("invalid order type: %q - can only be %s or %s",
			string(orderType), trading.OrderTypeBuy, trading.OrderTypeSell)
	}
}

func orderTypeFrom(side binance.SideType) (trading.OrderType, error) {
	switch side {
	case binance.SideTypeBuy:
		return trading.OrderTypeBuy, nil
	case binance.SideTypeSell:
		return trading.OrderTypeSell, nil
	default:
		return "", trading.InvalidArgument("invalid order side: %q - can only be %s or %s",
			string(side), binance.SideTypeBuy, binance.SideTypeSell)
	}
}
