package calldata

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestEncodeScan(t *testing.T) {
	var (
		action = 3
		user   = "9bd7acb9-7626-4d0c-8212-1ff94f4bbb3d"
		amount = decimal.RequireFromString("123.45678901234567")
	)

	body, err := Encode(action, user, amount)
	require.NoError(t, err)

	var (
		daction int
		duser   string
		damount decimal.Decimal
	)

	require.NoError(t, Scan(body, &daction, &duser, &damount))
	require.Equal(t, action, daction)
	require.Equal(t, user, duser)
	require.True(t, amount.Equal(damount))
}

func TestScanPartial(t *testing.T) {
	body, err := Encode(7, "tail")
	require.NoError(t, err)

	var head int
	require.NoError(t, Scan(body, &head))
	require.Equal(t, 7, head)
}
