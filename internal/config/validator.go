package config

import (
	"fmt"
	"net/url"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

func ValidateStatic(cfg *Config) error {
	var errors []error

	if err := validateServer(cfg.Server); err != nil {
		errors = append(errors, err)
	}

	if err := validateBroker(cfg.Broker); err != nil {
		errors = append(errors, err)
	}

	if err := validateDatabase(cfg.Database); err != nil {
		errors = append(errors, err)
	}

	if err := validateAPI("company_api", cfg.CompanyAPI); err != nil {
		errors = append(errors, err)
	}

	if err := validateAPI("dispatch_api", cfg.DispatchAPI); err != nil {
		errors = append(errors, err)
	}

	if strings.TrimSpace(cfg.Descriptions.Path) == "" {
		errors = append(errors, &ValidationError{
			Field:   "descriptions.path",
			Message: "description dictionary path is required",
		})
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errors)
	}

	return nil
}

func validateServer(cfg ServerConfig) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	return nil
}

func validateBroker(cfg BrokerConfig) error {
	switch cfg.Type {
	case "kafka":
		return validateKafka(cfg.Kafka)
	case "":
		return &ValidationError{
			Field:   "broker.type",
			Message: "broker type is required",
		}
	default:
		return &ValidationError{
			Field:   "broker.type",
			Message: fmt.Sprintf("unknown broker type: %s (supported: kafka)", cfg.Type),
		}
	}
}

func validateKafka(cfg KafkaConfig) error {
	if len(cfg.Brokers) == 0 {
		return &ValidationError{
			Field:   "broker.kafka.brokers",
			Message: "at least one Kafka broker is required",
		}
	}

	for i, broker := range cfg.Brokers {
		if broker == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("broker.kafka.brokers[%d]", i),
				Message: "broker address cannot be empty",
			}
		}
	}

	if cfg.GroupID == "" {
		return &ValidationError{
			Field:   "broker.kafka.group_id",
			Message: "Kafka consumer group ID is required",
		}
	}

	if cfg.InputTopic == "" {
		return &ValidationError{
			Field:   "broker.kafka.input_topic",
			Message: "input topic is required",
		}
	}

	if cfg.RetryTopicSuffix == "" || cfg.ErrorTopicSuffix == "" {
		return &ValidationError{
			Field:   "broker.kafka.retry_topic_suffix",
			Message: "retry and error topic suffixes are required",
		}
	}

	if cfg.RetryTopicSuffix == cfg.ErrorTopicSuffix {
		return &ValidationError{
			Field:   "broker.kafka.error_topic_suffix",
			Message: "error topic suffix must differ from retry topic suffix",
		}
	}

	if cfg.Concurrency < 1 {
		return &ValidationError{
			Field:   "broker.kafka.concurrency",
			Message: "concurrency must be at least 1",
		}
	}

	if cfg.Retry.MaxAttempts < 1 {
		return &ValidationError{
			Field:   "broker.kafka.retry.max_attempts",
			Message: "max_attempts must be at least 1",
		}
	}

	if cfg.Retry.BackoffDelay < 0 {
		return &ValidationError{
			Field:   "broker.kafka.retry.backoff_delay",
			Message: "backoff_delay must be non-negative",
		}
	}

	return nil
}

func validateDatabase(cfg DatabaseConfig) error {
	if cfg.Redis.Host != "" || cfg.Redis.Port > 0 {
		if err := validateRedis(cfg.Redis); err != nil {
			return err
		}
	}

	return validateMongoDB(cfg.MongoDB)
}

func validateRedis(cfg RedisConfig) error {
	if cfg.Host == "" {
		return &ValidationError{
			Field:   "database.redis.host",
			Message: "Redis host is required",
		}
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "database.redis.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	if cfg.TTLSeconds < 0 {
		return &ValidationError{
			Field:   "database.redis.ttl_seconds",
			Message: "TTL must be non-negative",
		}
	}

	return nil
}

func validateMongoDB(cfg MongoDBConfig) error {
	if cfg.URI == "" {
		return &ValidationError{
			Field:   "database.mongodb.uri",
			Message: "MongoDB URI is required",
		}
	}

	if !strings.HasPrefix(cfg.URI, "mongodb://") && !strings.HasPrefix(cfg.URI, "mongodb+srv://") {
		return &ValidationError{
			Field:   "database.mongodb.uri",
			Message: "MongoDB URI must start with mongodb:// or mongodb+srv://",
		}
	}

	if cfg.Database == "" {
		return &ValidationError{
			Field:   "database.mongodb.database",
			Message: "MongoDB database name is required",
		}
	}

	if cfg.Collection == "" {
		return &ValidationError{
			Field:   "database.mongodb.collection",
			Message: "MongoDB collection name is required",
		}
	}

	return nil
}

func validateAPI(field string, cfg APIConfig) error {
	if cfg.BaseURL == "" {
		return &ValidationError{
			Field:   field + ".base_url",
			Message: "base URL is required",
		}
	}

	u, err := url.Parse(cfg.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &ValidationError{
			Field:   field + ".base_url",
			Message: fmt.Sprintf("invalid base URL: %s", cfg.BaseURL),
		}
	}

	if cfg.Timeout < 0 {
		return &ValidationError{
			Field:   field + ".timeout",
			Message: "timeout must be non-negative",
		}
	}

	if cfg.RateLimit.RPS > 0 && cfg.RateLimit.Burst < 0 {
		return &ValidationError{
			Field:   field + ".rate_limit.burst",
			Message: "burst must be non-negative",
		}
	}

	return nil
}
