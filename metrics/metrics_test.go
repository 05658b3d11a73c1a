package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/filmforum/filmapi"
)

func TestCollector_ObserveRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.ObserveRequest(filmapi.OpSearch, filmapi.OutcomeOK, 10*time.Millisecond)
	c.ObserveRequest(filmapi.OpSearch, filmapi.OutcomeDegraded, 5*time.Millisecond)
	c.ObserveRequest(filmapi.OpSearch, filmapi.OutcomeOK, 7*time.Millisecond)
	c.ObserveRequest(filmapi.OpLogin, filmapi.OutcomeCredentialsError, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.requests.WithLabelValues("search", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.requests.WithLabelValues("search", "degraded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.requests.WithLabelValues("login", "credentials_error")))
	assert.Equal(t, 2, testutil.CollectAndCount(c.duration))
}

func TestCollector_Summary(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.ObserveRequest(filmapi.OpRegister, filmapi.OutcomeEmailExists, 0)
	c.ObserveRequest(filmapi.OpLogin, filmapi.OutcomeOK, 0)
	c.ObserveRequest(filmapi.OpLogin, filmapi.OutcomeOK, 0)

	assert.Equal(t, []Sample{
		{Operation: "login", Outcome: "ok", Count: 2},
		{Operation: "register", Outcome: "email_exists", Count: 1},
	}, c.Summary())
}

func TestCollector_SeparateRegistries(t *testing.T) {
	require.NotPanics(t, func() {
		NewCollector(prometheus.NewRegistry())
		NewCollector(prometheus.NewRegistry())
	})
}
