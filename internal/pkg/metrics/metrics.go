package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LatencyBucket = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "notigate_latency_bucket",
		Help:    "Request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	EmailsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notigate_emails_total",
		Help: "The total number of e-mail dispatch attempts",
	}, []string{"task", "result"})

	AuditRecordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notigate_audit_records_total",
		Help: "Audit records by delivery outcome (sent/dropped/failed)",
	}, []string{"result"})

	AuditQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "notigate_audit_queue_depth",
		Help: "Audit records currently waiting in the emit queue",
	})
)
