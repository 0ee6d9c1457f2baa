package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "careerboost_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "careerboost_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	PaymentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "careerboost_payments_total",
			Help: "Total number of recorded payment attempts",
		},
		[]string{"gateway", "status"},
	)

	SubscriptionsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "careerboost_subscriptions_created_total",
			Help: "Total number of subscriptions created",
		},
		[]string{"plan"},
	)

	SubscriptionRenewalsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "careerboost_subscription_renewals_total",
			Help: "Total number of subscription renewals",
		},
	)

	SubscriptionCancellationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "careerboost_subscription_cancellations_total",
			Help: "Total number of subscription cancellations",
		},
	)

	SubscriptionsExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "careerboost_subscriptions_expired_total",
			Help: "Total number of subscriptions expired by the sweep",
		},
	)

	WebhookReplaysTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "careerboost_webhook_replays_total",
			Help: "Total number of duplicate webhook deliveries ignored",
		},
	)

	FeatureChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "careerboost_feature_checks_total",
			Help: "Total number of feature entitlement checks",
		},
		[]string{"feature", "allowed"},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "careerboost_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "careerboost_email_queue_length",
			Help: "Current length of email queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordPayment(gateway, status string) {
	PaymentsTotal.WithLabelValues(gateway, status).Inc()
}

func RecordSubscription(plan string) {
	SubscriptionsCreatedTotal.WithLabelValues(plan).Inc()
}

func RecordRenewal() {
	SubscriptionRenewalsTotal.Inc()
}

func RecordCancellation() {
	SubscriptionCancellationsTotal.Inc()
}

func RecordExpired(n int) {
	SubscriptionsExpiredTotal.Add(float64(n))
}

func RecordWebhookReplay() {
	WebhookReplaysTotal.Inc()
}

func RecordFeatureCheck(feature string, allowed bool) {
	v := "false"
	if allowed {
		v = "true"
	}
	FeatureChecksTotal.WithLabelValues(feature, v).Inc()
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}
