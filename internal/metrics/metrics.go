package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the sign-in bridge.
// Tracks Portal round trips and the outcome of every authorization request.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	PortalRequests        *prometheus.CounterVec
	PortalRequestDuration *prometheus.HistogramVec
	AuthorizationOutcomes *prometheus.CounterVec
	ProxyRequests         *prometheus.CounterVec
}

// New creates a new Metrics instance with every collector registered on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PortalRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "signin_bridge_portal_requests_total",
			Help: "Total number of requests sent to the Portal, by endpoint and status",
		}, []string{"endpoint", "status"}),
		PortalRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "signin_bridge_portal_request_duration_seconds",
			Help:    "Duration of Portal requests (authorization critical path)",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		AuthorizationOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "signin_bridge_authorization_outcomes_total",
			Help: "Total number of authorization requests by endpoint, final stage and error code",
		}, []string{"endpoint", "stage", "code"}),
		ProxyRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "signin_bridge_proxy_requests_total",
			Help: "Total number of OIDC requests forwarded to the Portal, by route and status",
		}, []string{"route", "status"}),
	}
}

// ObservePortalRequest records a Portal round trip. status is 0 when no response was received.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObservePortalRequest(endpoint string, status int, start time.Time) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.PortalRequests.WithLabelValues(endpoint, label).Inc()
	m.PortalRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

// IncrementAuthorizationOutcome records where a request ended. code is empty on success.
func (m *Metrics) IncrementAuthorizationOutcome(endpoint, stage, code string) {
	if m == nil {
		return
	}
	m.AuthorizationOutcomes.WithLabelValues(endpoint, stage, code).Inc()
}

// IncrementProxyRequest records a forwarded OIDC request.
func (m *Metrics) IncrementProxyRequest(route string, status int) {
	if m == nil {
		return
	}
	m.ProxyRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}
