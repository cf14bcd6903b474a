package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// city pipeline.
type Metrics struct {
	RecordsFetched  prometheus.Counter
	RecordsAccepted prometheus.Counter
	RecordsRejected prometheus.Counter

	PageRequests        *prometheus.CounterVec // labels: cache={hit,miss}
	UpstreamFetchErrors prometheus.Counter
	UpstreamDuration    prometheus.Histogram

	// Description enrichment metrics.
	DescribeRequests *prometheus.CounterVec // labels: outcome={success,empty,not_found,error}
	DescribeCache    *prometheus.CounterVec // labels: result={hit,miss}
	DescribeDuration prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RecordsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "city_air",
			Name:      "records_fetched_total",
			Help:      "Total raw records fetched from the pollution source.",
		}),
		RecordsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "city_air",
			Name:      "records_accepted_total",
			Help:      "Total raw records that passed classification.",
		}),
		RecordsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "city_air",
			Name:      "records_rejected_total",
			Help:      "Total raw records dropped by classification.",
		}),
		PageRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "city_air",
			Name:      "page_requests_total",
			Help:      "Page requests by cache result.",
		}, []string{"cache"}),
		UpstreamFetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "city_air",
			Name:      "upstream_fetch_errors_total",
			Help:      "Failed fetches against the pollution source.",
		}),
		UpstreamDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "city_air",
			Name:      "upstream_fetch_duration_seconds",
			Help:      "Pollution source fetch duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		DescribeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "city_air",
			Name:      "describe_requests_total",
			Help:      "Description lookups dispatched to the summary API by outcome.",
		}, []string{"outcome"}),
		DescribeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "city_air",
			Name:      "describe_cache_total",
			Help:      "Description cache lookups by result.",
		}, []string{"result"}),
		DescribeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "city_air",
			Name:      "describe_api_duration_seconds",
			Help:      "Summary API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}

	prometheus.MustRegister(
		m.RecordsFetched,
		m.RecordsAccepted,
		m.RecordsRejected,
		m.PageRequests,
		m.UpstreamFetchErrors,
		m.UpstreamDuration,
		m.DescribeRequests,
		m.DescribeCache,
		m.DescribeDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RecordsFetched:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "city_air", Name: "records_fetched_total"}),
		RecordsAccepted:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "city_air", Name: "records_accepted_total"}),
		RecordsRejected:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "city_air", Name: "records_rejected_total"}),
		PageRequests:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "city_air", Name: "page_requests_total"}, []string{"cache"}),
		UpstreamFetchErrors: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "city_air", Name: "upstream_fetch_errors_total"}),
		UpstreamDuration:    prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "city_air", Name: "upstream_fetch_duration_seconds"}),
		DescribeRequests:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "city_air", Name: "describe_requests_total"}, []string{"outcome"}),
		DescribeCache:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "city_air", Name: "describe_cache_total"}, []string{"result"}),
		DescribeDuration:    prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "city_air", Name: "describe_api_duration_seconds"}),
	}
}
