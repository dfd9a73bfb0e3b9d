package metrics_test

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coinflip-ladder-backend/internal/metrics"
)

func TestRegisterActiveSessions(t *testing.T) {
	sessions := 3
	require.NoError(t, metrics.RegisterActiveSessions(func() int { return sessions }))

	n, err := testutil.GatherAndCount(prometheus.DefaultGatherer, "coinflip_active_ladder_sessions")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	err = metrics.RegisterActiveSessions(func() int { return 0 })
	var already prometheus.AlreadyRegisteredError
	assert.True(t, errors.As(err, &already))
}

func TestRoundsCounter(t *testing.T) {
	before := testutil.ToFloat64(metrics.RoundsTotal.WithLabelValues("cash_out", "paid"))
	metrics.RoundsTotal.WithLabelValues("cash_out", "paid").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.RoundsTotal.WithLabelValues("cash_out", "paid")))
}
