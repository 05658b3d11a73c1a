// Package metrics records film API client calls as Prometheus metrics.
//
// A Collector implements filmapi.Observer, so it can be passed straight to
// filmapi.WithObserver. Each collector registers its metrics with the
// registerer it is given, which lets tests and short-lived commands use a
// private registry.
package metrics

import (
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"

	"github.com/s0up4200/filmforum/filmapi"
)

const namespace = "filmforum"

// Collector counts client calls by operation and outcome
type Collector struct {
	// requests counts calls.
	// Labels:
	//   - operation: search, list_films, get_film, login, register
	//   - outcome: ok, empty, degraded, connection_error, credentials_error, email_exists, username_exists
	requests *prometheus.CounterVec

	// duration measures the time spent per call, including body reads.
	// Label:
	//   - operation
	duration *prometheus.HistogramVec
}

// NewCollector creates a Collector and registers its metrics with reg
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "client",
				Name:      "requests_total",
				Help:      "Total number of film API calls, by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "client",
				Name:      "request_duration_seconds",
				Help:      "Duration of film API calls.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// ObserveRequest implements filmapi.Observer
func (c *Collector) ObserveRequest(op filmapi.Operation, outcome filmapi.Outcome, elapsed time.Duration) {
	c.requests.WithLabelValues(string(op), string(outcome)).Inc()
	c.duration.WithLabelValues(string(op)).Observe(elapsed.Seconds())
}

// Sample is one counter value of the summary
type Sample struct {
	Operation string
	Outcome   string
	Count     int
}

// Summary returns the recorded call counts sorted by operation and outcome
func (c *Collector) Summary() []Sample {
	ch := make(chan prometheus.Metric, 64)
	go func() {
		c.requests.Collect(ch)
		close(ch)
	}()

	var samples []Sample
	for m := range ch {
		var pb dto.Metric
		if err := m.Write(&pb); err != nil {
			continue
		}
		s := Sample{Count: int(pb.GetCounter().GetValue())}
		for _, lp := range pb.GetLabel() {
			switch lp.GetName() {
			case "operation":
				s.Operation = lp.GetValue()
			case "outcome":
				s.Outcome = lp.GetValue()
			}
		}
		samples = append(samples, s)
	}

	sort.Slice(samples, func(i, j int) bool {
		if samples[i].Operation == samples[j].Operation {
			return samples[i].Outcome < samples[j].Outcome
		}
		return samples[i].Operation < samples[j].Operation
	})
	return samples
}
