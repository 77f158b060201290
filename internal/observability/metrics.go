package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce        sync.Once
	requestsTotal       *prometheus.CounterVec
	latencySeconds      *prometheus.HistogramVec
	errorsTotal         *prometheus.CounterVec
	reminderScansTotal  prometheus.Counter
	remindersSentTotal  prometheus.Counter
	reminderSendFailure prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used by the CRM API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		latencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "crm_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		errorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		reminderScansTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crm_reminder_scans_total",
			Help: "Total number of follow-up reminder scan ticks executed.",
		})

		remindersSentTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crm_reminders_sent_total",
			Help: "Total number of follow-up reminder emails sent.",
		})

		reminderSendFailure = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crm_reminder_send_failures_total",
			Help: "Total number of follow-up reminder emails that failed to send.",
		})

		prometheus.MustRegister(requestsTotal, latencySeconds, errorsTotal,
			reminderScansTotal, remindersSentTotal, reminderSendFailure)
	})
}

// Requests exposes the counter for API requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// Latency exposes the latency histogram for API requests.
func Latency() *prometheus.HistogramVec {
	RegisterMetrics()
	return latencySeconds
}

// Errors exposes the counter for API error responses.
func Errors() *prometheus.CounterVec {
	RegisterMetrics()
	return errorsTotal
}

// ReminderScans exposes the counter for reminder scan ticks.
func ReminderScans() prometheus.Counter {
	RegisterMetrics()
	return reminderScansTotal
}

// RemindersSent exposes the counter for dispatched reminder emails.
func RemindersSent() prometheus.Counter {
	RegisterMetrics()
	return remindersSentTotal
}

// ReminderSendFailures exposes the counter for failed reminder emails.
func ReminderSendFailures() prometheus.Counter {
	RegisterMetrics()
	return reminderSendFailure
}
