package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the bridge's collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	executions   *prometheus.CounterVec
	stateReports prometheus.Counter
	reportedIDs  prometheus.Counter
	requestSyncs prometheus.Counter
	sendFailures *prometheus.CounterVec
	accessories  prometheus.Gauge
	httpRequests *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		executions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gsh_executions_total",
			Help: "Executed commands by device type and result status.",
		}, []string{"device_type", "status"}),
		stateReports: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gsh_state_reports_total",
			Help: "Report-state messages sent.",
		}),
		reportedIDs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gsh_state_report_devices_total",
			Help: "Device entries carried by report-state messages.",
		}),
		requestSyncs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gsh_request_syncs_total",
			Help: "Request-sync messages sent.",
		}),
		sendFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gsh_transport_failures_total",
			Help: "Outgoing messages the transport failed to deliver, by message type.",
		}, []string{"type"}),
		accessories: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gsh_accessories",
			Help: "Services currently exposed to the cloud.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gsh_http_requests_total",
			Help: "Status server requests by route, method and status.",
		}, []string{"route", "method", "status"}),
	}
	m.registry.MustRegister(
		m.executions,
		m.stateReports,
		m.reportedIDs,
		m.requestSyncs,
		m.sendFailures,
		m.accessories,
		m.httpRequests,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveExecution(deviceType, status string) {
	if m == nil {
		return
	}
	m.executions.WithLabelValues(deviceType, status).Inc()
}

func (m *Metrics) ObserveStateReport(devices int) {
	if m == nil {
		return
	}
	m.stateReports.Inc()
	m.reportedIDs.Add(float64(devices))
}

func (m *Metrics) ObserveRequestSync() {
	if m == nil {
		return
	}
	m.requestSyncs.Inc()
}

func (m *Metrics) ObserveSendFailure(messageType string) {
	if m == nil {
		return
	}
	m.sendFailures.WithLabelValues(messageType).Inc()
}

func (m *Metrics) SetAccessories(n int) {
	if m == nil {
		return
	}
	m.accessories.Set(float64(n))
}

func (m *Metrics) ObserveHTTPRequest(route, method, status string) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, status).Inc()
}
