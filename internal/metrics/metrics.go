// Package metrics holds the Prometheus collectors for the session lifecycle
// and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics is safe to use through a nil pointer; every method is then a no-op.
type Metrics struct {
	reg *prometheus.Registry

	LoginAttempts     *prometheus.CounterVec
	RefreshAttempts   *prometheus.CounterVec
	Logouts           prometheus.Counter
	Registrations     *prometheus.CounterVec
	PasswordChanges   *prometheus.CounterVec
	RateLimitRejected prometheus.Counter
	LedgerPurged      prometheus.Counter
	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
}

// New registers all collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		LoginAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "finance_auth_login_attempts_total",
			Help: "Total number of login attempts by result",
		}, []string{"result"}),
		RefreshAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "finance_auth_refresh_attempts_total",
			Help: "Total number of access token refreshes by result",
		}, []string{"result"}),
		Logouts: f.NewCounter(prometheus.CounterOpts{
			Name: "finance_auth_logouts_total",
			Help: "Total number of logouts",
		}),
		Registrations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "finance_users_registrations_total",
			Help: "Total number of registration attempts by result",
		}, []string{"result"}),
		PasswordChanges: f.NewCounterVec(prometheus.CounterOpts{
			Name: "finance_users_password_changes_total",
			Help: "Total number of password change attempts by result",
		}, []string{"result"}),
		RateLimitRejected: f.NewCounter(prometheus.CounterOpts{
			Name: "finance_ratelimit_rejected_total",
			Help: "Total number of requests rejected by the rate limiter",
		}),
		LedgerPurged: f.NewCounter(prometheus.CounterOpts{
			Name: "finance_auth_ledger_purged_total",
			Help: "Total number of expired refresh tokens removed from the ledger",
		}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "finance_http_requests_total",
			Help: "Total number of HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "finance_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func result(ok bool) string {
	if ok {
		return ResultSuccess
	}
	return ResultFailure
}

func (m *Metrics) Login(ok bool) {
	if m == nil {
		return
	}
	m.LoginAttempts.WithLabelValues(result(ok)).Inc()
}

func (m *Metrics) Refresh(ok bool) {
	if m == nil {
		return
	}
	m.RefreshAttempts.WithLabelValues(result(ok)).Inc()
}

func (m *Metrics) Logout() {
	if m == nil {
		return
	}
	m.Logouts.Inc()
}

func (m *Metrics) Registration(ok bool) {
	if m == nil {
		return
	}
	m.Registrations.WithLabelValues(result(ok)).Inc()
}

func (m *Metrics) PasswordChange(ok bool) {
	if m == nil {
		return
	}
	m.PasswordChanges.WithLabelValues(result(ok)).Inc()
}

func (m *Metrics) RateLimited() {
	if m == nil {
		return
	}
	m.RateLimitRejected.Inc()
}

func (m *Metrics) Purged(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.LedgerPurged.Add(float64(n))
}

// ObserveHTTP records one finished request.  route is the registered path
// pattern, not the raw URL, to keep label cardinality bounded.
func (m *Metrics) ObserveHTTP(method, route string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(seconds)
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
