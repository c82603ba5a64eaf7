package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP 指标
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

// 文档处理指标
var (
	DocumentsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "documents_processed_total",
			Help: "Documents moved to a terminal processing status",
		},
		[]string{"status"},
	)

	// StatusPollTicksTotal 客户端状态轮询次数，按观察到的状态分类
	StatusPollTicksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "document_status_poll_ticks_total",
			Help: "Status poll fetches issued by the client watcher",
		},
		[]string{"status"},
	)
)

// 社区指标
var (
	ReactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "community_reactions_total",
			Help: "Reaction mutations accepted by the server",
		},
		[]string{"target_type", "kind"},
	)

	CommentsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "community_comments_created_total",
			Help: "Comments and replies created",
		},
		[]string{"level"},
	)
)
