package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var HistogramBuckets = []float64{
	// fast responses (0 - 500ms)
	25, 50, 75, 100, 150, 200, 300, 400, 500,

	// medium responses (500ms - 2s)
	750, 1000, 1250, 1500, 1750, 2000,

	// slow responses (2s - 15s); gateway round-trips land here under load
	2500, 3000, 4000, 5000, 7500, 10000, 15000,

	// extended range up to the gateway timeout ceiling
	20000, 30000, 45000, 60000,
}

// Metric is a definition for the name, description, type, ID, and
// prometheus.Collector type (i.e. CounterVec, Summary, etc) of each metric
type Metric struct {
	MetricCollector prometheus.Collector
	ID              string
	Name            string
	Description     string
	Type            string
	Args            []string
}

// NewMetric associates prometheus.Collector based on Metric.Type
func NewMetric(m *Metric, subsystem string) prometheus.Collector {
	var metric prometheus.Collector
	switch m.Type {
	case "counter_vec":
		metric = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Subsystem: subsystem,
				Name:      m.Name,
				Help:      m.Description,
			},
			m.Args,
		)
	case "counter":
		metric = prometheus.NewCounter(
			prometheus.CounterOpts{
				Subsystem: subsystem,
				Name:      m.Name,
				Help:      m.Description,
			},
		)
	case "gauge_vec":
		metric = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Subsystem: subsystem,
				Name:      m.Name,
				Help:      m.Description,
			},
			m.Args,
		)
	case "gauge":
		metric = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Subsystem: subsystem,
				Name:      m.Name,
				Help:      m.Description,
			},
		)
	case "histogram_vec":
		metric = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Subsystem: subsystem,
				Name:      m.Name,
				Help:      m.Description,
			},
			m.Args,
		)
	case "histogram":
		metric = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Subsystem: subsystem,
				Name:      m.Name,
				Help:      m.Description,
				Buckets:   HistogramBuckets,
			},
		)
	case "summary_vec":
		metric = prometheus.NewSummaryVec(
			prometheus.SummaryOpts{
				Subsystem: subsystem,
				Name:      m.Name,
				Help:      m.Description,
			},
			m.Args,
		)
	case "summary":
		metric = prometheus.NewSummary(
			prometheus.SummaryOpts{
				Subsystem: subsystem,
				Name:      m.Name,
				Help:      m.Description,
			},
		)
	}
	return metric
}

const (
	RefererKey = "X-Referer"
)

// Domain counters for the payment confirmation workflow. Registered once at
// package init; services increment them directly.
var (
	CheckoutSessionsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: "payments",
			Name:      "checkout_sessions_total",
			Help:      "Checkout sessions requested, partitioned by plan and result.",
		},
		[]string{"plan", "result"},
	)

	IPNCallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: "payments",
			Name:      "ipn_callbacks_total",
			Help:      "IPN callbacks received, partitioned by terminal outcome.",
		},
		[]string{"outcome"},
	)

	EntitlementWriteFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Subsystem: "payments",
			Name:      "entitlement_write_failures_total",
			Help:      "Validated payments whose entitlement write failed; each one needs manual reconciliation.",
		},
	)

	UnknownPlanValues = prometheus.NewCounter(
		prometheus.CounterOpts{
			Subsystem: "payments",
			Name:      "unknown_plan_total",
			Help:      "Validated callbacks carrying a plan identifier outside the configured set.",
		},
	)
)

func init() {
	prometheus.MustRegister(CheckoutSessionsCreated, IPNCallbacks, EntitlementWriteFailures, UnknownPlanValues)
}
