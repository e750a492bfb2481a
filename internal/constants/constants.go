package constants

import "time"

const (
	ServiceName = "notification-relay"
)

// Outbound message identity.
const (
	AppID              = "monitor-notification-matcher.filing"
	MessageTypeMonitor = "monitor_email"
	SenderAddress      = "Companies House <noreply@companieshouse.gov.uk>"
)

const (
	LegacyDescriptionKey   = "legacy"
	LegacyDescriptionValue = "description"
)

const (
	KafkaBatchTimeout = 10 * time.Millisecond
	KafkaWriteTimeout = 10 * time.Second
	KafkaFetchBackoff = time.Second
)

const (
	DefaultInputTopic       = "filing-history-notification"
	DefaultRetryTopicSuffix = "-retry"
	DefaultErrorTopicSuffix = "-error"
	DefaultMaxAttempts      = 4
	DefaultBackoffDelay     = 15 * time.Second
	DefaultConcurrency      = 1
)

// Kafka header names.
const (
	HeaderRequestID    = "x-request-id"
	HeaderRetryAttempt = "retry-attempt"
	HeaderErrorReason  = "error-reason"
	HeaderErrorContext = "error-context"
	HeaderErrorCode    = "error-code"
	HeaderSourceTopic  = "source-topic"
)

const (
	DefaultHTTPTimeout = 10 * time.Second
)

const (
	HTTPStatusOKMin = 200
	HTTPStatusOKMax = 300
)

const (
	CacheKeyPrefixCompany = "company:"
	DefaultTTLSeconds     = 300
)

const (
	DefaultMongoDBName       = "monitor_notification"
	DefaultMatchesCollection = "matches"
)

const (
	DefaultDescriptionsPath = "api-enumerations/filing_history_descriptions.yml"
)

const (
	ShutdownTimeout = 5 * time.Second
)

// Processing outcomes used as metric labels.
const (
	StatusSent              = "sent"
	StatusNoCompanyNumber   = "no_company_number"
	StatusCompanyNotFound   = "company_not_found"
	StatusFailed            = "failed"
	StatusDescriptionFound  = "found"
	StatusDescriptionLegacy = "legacy"
	StatusDescriptionMissed = "not_found"
)
