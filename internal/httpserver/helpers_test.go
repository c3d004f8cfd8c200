package httpserver

import (
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/essencia/shop-api/internal/transport"
)

func uintString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func mustDec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func placeReq(productID, qty uint) transport.PlaceOrderRequest {
	return transport.PlaceOrderRequest{
		ShippingAddress: "1 Main St",
		Email:           "buyer@test.local",
		Items:           []transport.PlaceOrderItem{{ProductID: productID, Quantity: qty}},
	}
}
