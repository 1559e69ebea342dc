package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eduledger_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eduledger_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	CodeRedemptionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eduledger_code_redemptions_total",
			Help: "Total number of redeemed codes",
		},
		[]string{"kind"},
	)

	CodesIssuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eduledger_codes_issued_total",
			Help: "Total number of issued codes",
		},
		[]string{"kind"},
	)

	PurchasesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eduledger_purchases_total",
			Help: "Total number of settled purchases",
		},
		[]string{"type"},
	)

	PointsSpentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eduledger_points_spent_total",
			Help: "Total number of points debited by purchases",
		},
		[]string{"type"},
	)

	AttendanceSettlementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eduledger_attendance_settlements_total",
			Help: "Total number of recorded attendances",
		},
		[]string{"payment_type"},
	)

	AttendanceRevenueTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eduledger_attendance_revenue_total",
			Help: "Total amount charged for attendance",
		},
		[]string{"payment_type"},
	)

	TransactionsAbortedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eduledger_transactions_aborted_total",
			Help: "Total number of operations rejected because of a concurrent conflicting write",
		},
		[]string{"operation"},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eduledger_notifications_total",
			Help: "Total number of delivered or failed notifications",
		},
		[]string{"type", "status"},
	)

	NotificationQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "eduledger_notification_queue_length",
			Help: "Current length of the notification queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordCodesIssued(kind string, count int) {
	CodesIssuedTotal.WithLabelValues(kind).Add(float64(count))
}

func RecordRedemption(kind string) {
	CodeRedemptionsTotal.WithLabelValues(kind).Inc()
}

func RecordPurchase(purchaseType string, points int64) {
	PurchasesTotal.WithLabelValues(purchaseType).Inc()
	PointsSpentTotal.WithLabelValues(purchaseType).Add(float64(points))
}

func RecordSettlement(paymentType string, amount int64) {
	AttendanceSettlementsTotal.WithLabelValues(paymentType).Inc()
	AttendanceRevenueTotal.WithLabelValues(paymentType).Add(float64(amount))
}

func RecordAborted(operation string) {
	TransactionsAbortedTotal.WithLabelValues(operation).Inc()
}

func RecordNotification(notificationType, status string) {
	NotificationsTotal.WithLabelValues(notificationType, status).Inc()
}
