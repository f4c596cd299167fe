package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserveResult(t *testing.T) {
	m := New()
	m.ObserveResult("swap", 0, "", nil)
	m.ObserveResult("swap", 6002, "SlippageTooHigh", errors.New("x"))
	m.ObserveResult("swap", 0, "", errors.New("db down"))

	require.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("swap", "ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("swap", "rejected")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("swap", "error")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Rejections.WithLabelValues("6002", "SlippageTooHigh")))
}

func TestObservePool(t *testing.T) {
	m := New()
	m.ObservePool("p", 10, 20, 14)
	require.Equal(t, 20.0, testutil.ToFloat64(m.PoolReserves.WithLabelValues("p", "b")))
	require.Equal(t, 14.0, testutil.ToFloat64(m.PoolLpSupply.WithLabelValues("p")))

	families, err := m.Registry.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
}
