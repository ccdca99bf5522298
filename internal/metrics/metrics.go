package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pagewatch_checks_total",
			Help: "Monitor checks executed, labelled by resulting status.",
		},
		[]string{"status"},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pagewatch_notifications_total",
			Help: "Notification channel attempts, labelled by channel and outcome.",
		},
		[]string{"channel", "outcome"},
	)

	RateLimitDenials = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pagewatch_sms_rate_limit_denials_total",
			Help: "SMS sends denied by the rate limiter, labelled by constraint.",
		},
		[]string{"constraint"},
	)

	// AuditWriteFailures makes dropped notification-record inserts
	// observable instead of silently swallowed.
	AuditWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pagewatch_notification_audit_write_failures_total",
			Help: "Notification audit rows that could not be persisted.",
		},
	)

	CheckDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pagewatch_check_duration_seconds",
			Help:    "End-to-end duration of monitor checks.",
			Buckets: prometheus.DefBuckets,
		},
	)
)
