package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMustRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NotPanics(t, func() { MustRegister(reg) })

	OrdersPlacedTotal.WithLabelValues("success").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "pizzeria_orders_placed_total")
}

func TestResult(t *testing.T) {
	assert.Equal(t, "success", Result(nil))
	assert.Equal(t, "failure", Result(errors.New("x")))
}

func TestCounterIncrements(t *testing.T) {
	before := testutil.ToFloat64(TokensIssuedTotal.WithLabelValues("completion"))
	TokensIssuedTotal.WithLabelValues("completion").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(TokensIssuedTotal.WithLabelValues("completion")))
}
