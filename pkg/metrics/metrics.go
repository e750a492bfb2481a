package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	NotificationMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_messages_total",
			Help: "Total number of filing events processed by the notification relay (count)",
		},
		[]string{"status"},
	)

	NotificationProcessingDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notification_processing_duration_ms",
			Help:    "Processing duration of one filing event in milliseconds",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
		[]string{"status"},
	)

	DescriptionLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "description_lookups_total",
			Help: "Total number of filing description resolutions (count)",
		},
		[]string{"result"},
	)

	DescriptionDictionarySize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "description_dictionary_size",
			Help: "Number of entries in the loaded filing description dictionary (count)",
		},
	)

	CompanyLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "company_lookups_total",
			Help: "Total number of company detail lookups (count)",
		},
		[]string{"result"},
	)

	CompanyLookupDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "company_lookup_duration_ms",
			Help:    "Duration of company detail lookups in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
	)

	DispatchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_requests_total",
			Help: "Total number of outbound message-send requests (count)",
		},
		[]string{"status"},
	)

	DispatchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dispatch_duration_ms",
			Help:    "Duration of outbound message-send requests in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
	)

	RetryAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retry_attempts_total",
			Help: "Total number of messages routed to the retry topic (count)",
		},
		[]string{"service", "topic"},
	)

	DLQMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dlq_messages_total",
			Help: "Total number of messages sent to the error topic (count)",
		},
		[]string{"service", "topic", "reason"},
	)

	KafkaMessagesReadTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_read_total",
			Help: "Total number of messages read from Kafka (count)",
		},
		[]string{"service", "topic"},
	)

	KafkaMessagesWrittenTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_written_total",
			Help: "Total number of messages written to Kafka (count)",
		},
		[]string{"service", "topic"},
	)

	KafkaMessageSizeBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kafka_message_size_bytes",
			Help:    "Size of Kafka messages in bytes",
			Buckets: []float64{100, 500, 1000, 5000, 10000, 50000, 100000, 500000},
		},
		[]string{"service", "topic", "direction"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open) (state code)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker (count)",
		},
		[]string{"name", "state"},
	)

	CircuitBreakerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of failures through circuit breaker (count)",
		},
		[]string{"name"},
	)

	RateLimitRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_requests_total",
			Help: "Total number of outbound calls passed through a rate limiter (count)",
		},
		[]string{"name", "result"},
	)

	RateLimitWaitDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rate_limit_wait_duration_ms",
			Help:    "Time outbound calls spent waiting on a rate limiter in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		},
		[]string{"name"},
	)

	CacheRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_requests_total",
			Help: "Total number of company cache reads (count)",
		},
		[]string{"result"},
	)

	DatabaseQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "database_queries_total",
			Help: "Total number of database queries (count)",
		},
		[]string{"database", "operation", "status"},
	)

	DatabaseQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "database_query_duration_ms",
			Help:    "Duration of database queries in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
		[]string{"database", "operation"},
	)
)

func RegisterNotificationMetrics() {
	prometheus.MustRegister(NotificationMessagesTotal)
	prometheus.MustRegister(NotificationProcessingDuration)
	prometheus.MustRegister(DescriptionLookupsTotal)
	prometheus.MustRegister(DescriptionDictionarySize)
	prometheus.MustRegister(CompanyLookupsTotal)
	prometheus.MustRegister(CompanyLookupDuration)
	prometheus.MustRegister(DispatchRequestsTotal)
	prometheus.MustRegister(DispatchDuration)
	prometheus.MustRegister(CacheRequestsTotal)
	prometheus.MustRegister(RateLimitRequestsTotal)
	prometheus.MustRegister(RateLimitWaitDuration)
	prometheus.MustRegister(DatabaseQueriesTotal)
	prometheus.MustRegister(DatabaseQueryDuration)
}

func RegisterBrokerMetrics() {
	prometheus.MustRegister(RetryAttemptsTotal)
	prometheus.MustRegister(DLQMessagesTotal)
	prometheus.MustRegister(KafkaMessagesReadTotal)
	prometheus.MustRegister(KafkaMessagesWrittenTotal)
	prometheus.MustRegister(KafkaMessageSizeBytes)
}

func RegisterCircuitBreakerMetrics() {
	prometheus.MustRegister(CircuitBreakerState)
	prometheus.MustRegister(CircuitBreakerRequests)
	prometheus.MustRegister(CircuitBreakerFailures)
}

func ObserveNotificationDuration(duration time.Duration, status string) {
	NotificationProcessingDuration.WithLabelValues(status).Observe(float64(duration.Milliseconds()))
}

func IncNotificationMessages(status string) {
	NotificationMessagesTotal.WithLabelValues(status).Inc()
}

func IncDescriptionLookup(result string) {
	DescriptionLookupsTotal.WithLabelValues(result).Inc()
}

func SetDescriptionDictionarySize(size int) {
	DescriptionDictionarySize.Set(float64(size))
}

func IncCompanyLookup(result string) {
	CompanyLookupsTotal.WithLabelValues(result).Inc()
}

func ObserveCompanyLookupDuration(duration time.Duration) {
	CompanyLookupDuration.Observe(float64(duration.Milliseconds()))
}

func IncDispatchRequest(status string) {
	DispatchRequestsTotal.WithLabelValues(status).Inc()
}

func ObserveDispatchDuration(duration time.Duration) {
	DispatchDuration.Observe(float64(duration.Milliseconds()))
}

func IncCacheRequest(result string) {
	CacheRequestsTotal.WithLabelValues(result).Inc()
}

func IncKafkaMessagesRead(service, topic string) {
	KafkaMessagesReadTotal.WithLabelValues(service, topic).Inc()
}

func IncKafkaMessagesWritten(service, topic string) {
	KafkaMessagesWrittenTotal.WithLabelValues(service, topic).Inc()
}

func ObserveKafkaMessageSize(service, topic, direction string, sizeBytes int) {
	KafkaMessageSizeBytes.WithLabelValues(service, topic, direction).Observe(float64(sizeBytes))
}

func IncDatabaseQuery(database, operation, status string) {
	DatabaseQueriesTotal.WithLabelValues(database, operation, status).Inc()
}

func ObserveDatabaseQueryDuration(database, operation string, duration time.Duration) {
	DatabaseQueryDuration.WithLabelValues(database, operation).Observe(float64(duration.Milliseconds()))
}
