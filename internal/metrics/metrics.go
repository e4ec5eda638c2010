package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels shared by the account flows.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Recorder is what services and middleware report to.
type Recorder interface {
	RecordSignup(outcome string)
	RecordLogin(outcome string)
	RecordTokenIssued(kind string)
	RecordTokenConsumed(kind, outcome string)
	RecordEmail(kind, outcome string)
	RecordHTTPRequest(method, route string, status int, duration time.Duration)
}

type Collector struct {
	signups        *prometheus.CounterVec
	logins         *prometheus.CounterVec
	tokensIssued   *prometheus.CounterVec
	tokensConsumed *prometheus.CounterVec
	emails         *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpLatency    *prometheus.HistogramVec
}

// NewCollector creates the collectors and registers them on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		signups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "accountflow_signups_total",
			Help: "Signup attempts by outcome.",
		}, []string{"outcome"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "accountflow_logins_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		tokensIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "accountflow_tokens_issued_total",
			Help: "Single-use tokens issued by kind.",
		}, []string{"kind"}),
		tokensConsumed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "accountflow_tokens_consumed_total",
			Help: "Single-use token redemption attempts by kind and outcome.",
		}, []string{"kind", "outcome"}),
		emails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "accountflow_emails_total",
			Help: "Notification emails by kind and delivery outcome.",
		}, []string{"kind", "outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "accountflow_http_requests_total",
			Help: "HTTP responses by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "accountflow_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		c.signups,
		c.logins,
		c.tokensIssued,
		c.tokensConsumed,
		c.emails,
		c.httpRequests,
		c.httpLatency,
	)
	return c
}

func (c *Collector) RecordSignup(outcome string) {
	c.signups.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordLogin(outcome string) {
	c.logins.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordTokenIssued(kind string) {
	c.tokensIssued.WithLabelValues(kind).Inc()
}

func (c *Collector) RecordTokenConsumed(kind, outcome string) {
	c.tokensConsumed.WithLabelValues(kind, outcome).Inc()
}

func (c *Collector) RecordEmail(kind, outcome string) {
	c.emails.WithLabelValues(kind, outcome).Inc()
}

func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Noop discards everything.
type Noop struct{}

func (Noop) RecordSignup(string)                                  {}
func (Noop) RecordLogin(string)                                   {}
func (Noop) RecordTokenIssued(string)                             {}
func (Noop) RecordTokenConsumed(string, string)                   {}
func (Noop) RecordEmail(string, string)                           {}
func (Noop) RecordHTTPRequest(string, string, int, time.Duration) {}
