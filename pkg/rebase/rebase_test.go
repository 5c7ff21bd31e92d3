package rebase

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"singular/pkg/number"
)

func d(v string) decimal.Decimal {
	return number.Decimal(v)
}

func TestToBaseBootstrap(t *testing.T) {
	r := New()
	require.True(t, r.ToBase(d("100"), false).Equal(d("100")))
	require.True(t, r.ToElastic(d("100"), true).Equal(d("100")))
}

func TestRoundingNeverCreatesValue(t *testing.T) {
	cases := []struct {
		elastic, base, amount string
	}{
		{"1000", "500", "3"},
		{"1000", "333", "7"},
		{"123456.789", "98765.4321", "42.5"},
		{"7", "3", "1"},
	}

	for _, c := range cases {
		r := Rebase{Elastic: d(c.elastic), Base: d(c.base)}
		amount := d(c.amount)

		down := r.ToBase(amount, false)
		require.True(t, r.ToElastic(down, true).LessThanOrEqual(amount),
			"round trip down/up must never exceed the input")

		up := r.ToBase(amount, true)
		require.True(t, r.ToElastic(up, false).GreaterThanOrEqual(amount),
			"round trip up/down must never fall below the input")

		require.True(t, down.LessThanOrEqual(up))
	}
}

func TestAddSub(t *testing.T) {
	r := New()
	r, base := r.Add(d("100"), true)
	require.True(t, base.Equal(d("100")))
	require.True(t, r.Elastic.Equal(d("100")))
	require.True(t, r.Base.Equal(d("100")))

	// interest doubles the elastic side, parts stay put
	r = r.AddElastic(d("100"))
	require.True(t, r.Elastic.Equal(d("200")))
	require.True(t, r.Base.Equal(d("100")))

	// a new entrant now pays 2 elastic per base
	r, base = r.Add(d("50"), true)
	require.True(t, base.Equal(d("25")))

	r, amount, err := r.Sub(d("25"), false)
	require.NoError(t, err)
	require.True(t, amount.Equal(d("50")))
	require.True(t, r.Base.Equal(d("100")))
}

func TestSubNegative(t *testing.T) {
	r := Rebase{Elastic: d("10"), Base: d("10")}
	_, _, err := r.Sub(d("11"), false)
	require.ErrorIs(t, err, ErrNegative)

	_, err = r.SubPair(d("11"), d("5"))
	require.ErrorIs(t, err, ErrNegative)

	// rebase unchanged on failure
	require.True(t, r.Elastic.Equal(d("10")))
	require.True(t, r.Base.Equal(d("10")))
}

func TestPairMutationsMoveTogether(t *testing.T) {
	r := Rebase{Elastic: d("300"), Base: d("100")}
	r = r.AddPair(d("30"), d("10"))
	require.True(t, r.Elastic.Equal(d("330")))
	require.True(t, r.Base.Equal(d("110")))

	r, err := r.SubPair(d("30"), d("10"))
	require.NoError(t, err)
	require.True(t, r.Elastic.Equal(d("300")))
	require.True(t, r.Base.Equal(d("100")))
}
