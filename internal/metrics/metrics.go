package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "school_portal_http_requests_total",
			Help: "Total number of HTTP requests handled by the portal",
		},
		[]string{"method", "route", "status"},
	)

	RequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "school_portal_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	PaymentsRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "school_portal_payments_recorded_total",
			Help: "Payments applied to the ledger, by method",
		},
		[]string{"method"},
	)

	InstallmentsMarkedOverdue = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "school_portal_installments_marked_overdue_total",
			Help: "Installments flipped from Pending to Overdue by the sweep",
		},
	)

	PlansCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "school_portal_student_payment_plans_completed_total",
			Help: "Student payment plans that reached Completed",
		},
	)

	RemindersSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "school_portal_payment_reminders_sent_total",
			Help: "Payment reminder notifications created, by type",
		},
		[]string{"type"},
	)

	AccessDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "school_portal_access_decisions_total",
			Help: "Student access checks, by policy and outcome",
		},
		[]string{"policy", "allowed"},
	)
)

// MustRegister registers every collector with reg. The collectors work
// unregistered, so tests never need to call it.
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(
		RequestCounter,
		RequestLatency,
		PaymentsRecorded,
		InstallmentsMarkedOverdue,
		PlansCompleted,
		RemindersSent,
		AccessDecisions,
	)
}
