package monitor

import "github.com/prometheus/client_golang/prometheus"

var (
	// HTTPRequests API 请求
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "radar_http_requests_total",
			Help: "Total number of API requests by route and status.",
		},
		[]string{"route", "method", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "radar_http_request_duration_seconds",
			Help:    "Time taken to serve an API request.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
		},
		[]string{"route"},
	)

	// ExchangeRequests 上游请求，source 区分 live / synthetic
	ExchangeRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "radar_exchange_requests_total",
			Help: "Total number of exchange requests by kind and data source.",
		},
		[]string{"kind", "source"},
	)

	// JobRuns 定时任务
	JobRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "radar_job_runs_total",
			Help: "Total number of scheduled job executions.",
		},
		[]string{"job", "status"},
	)
	JobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "radar_job_duration_seconds",
			Help:    "Time taken by each scheduled job execution.",
			Buckets: []float64{0.1, 0.5, 1.0, 5.0, 10.0, 30.0, 60.0, 300.0},
		},
		[]string{"job"},
	)

	NewTokensDiscovered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "radar_new_tokens_discovered_total",
			Help: "Total number of newly discovered tokens.",
		},
	)

	// AsyncWriterMessagesDropped AsyncWriter 指标
	AsyncWriterMessagesDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "async_writer_messages_dropped_total",
			Help: "Total number of messages dropped due to full queue.",
		},
		[]string{"writer_id"},
	)
	AsyncWriterBatchSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "async_writer_batch_size",
			Help:    "Number of items in each batch submitted to the writer.",
			Buckets: []float64{1, 5, 10, 50, 100, 500},
		},
		[]string{"writer_id"},
	)
	AsyncWriterFlushDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "async_writer_flush_duration_seconds",
			Help:    "Time taken to flush a batch.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.2, 0.5, 1.0, 2.0, 5.0},
		},
		[]string{"writer_id"},
	)
	AsyncWriterItemsWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "async_writer_items_written_total",
			Help: "Total number of items successfully written by the async writer.",
		},
		[]string{"writer_id"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequests,
		HTTPDuration,
		ExchangeRequests,
		JobRuns,
		JobDuration,
		NewTokensDiscovered,

		// async 写入指标
		AsyncWriterMessagesDropped,
		AsyncWriterBatchSize,
		AsyncWriterFlushDuration,
		AsyncWriterItemsWritten,
	)
}
