package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"relay/internal/constants"
)

func LoadConfig(configFile string) (*Config, error) {
	viper.Reset()

	viper.SetConfigType("yaml")
	viper.SetConfigFile(configFile)

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()
	bindEnvVariables()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(&cfg)

	if err := ValidateStatic(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("broker.type", "kafka")
	viper.SetDefault("broker.kafka.input_topic", constants.DefaultInputTopic)
	viper.SetDefault("broker.kafka.retry_topic_suffix", constants.DefaultRetryTopicSuffix)
	viper.SetDefault("broker.kafka.error_topic_suffix", constants.DefaultErrorTopicSuffix)
	viper.SetDefault("broker.kafka.concurrency", constants.DefaultConcurrency)
	viper.SetDefault("broker.kafka.retry.max_attempts", constants.DefaultMaxAttempts)
	viper.SetDefault("broker.kafka.retry.backoff_delay", constants.DefaultBackoffDelay)
	viper.SetDefault("database.mongodb.database", constants.DefaultMongoDBName)
	viper.SetDefault("database.mongodb.collection", constants.DefaultMatchesCollection)
	viper.SetDefault("database.redis.ttl_seconds", constants.DefaultTTLSeconds)
	viper.SetDefault("company_api.timeout", constants.DefaultHTTPTimeout)
	viper.SetDefault("dispatch_api.timeout", constants.DefaultHTTPTimeout)
	viper.SetDefault("company_api.rate_limit.rps", 0)
	viper.SetDefault("dispatch_api.rate_limit.rps", 0)
	viper.SetDefault("descriptions.path", constants.DefaultDescriptionsPath)
}

func bindEnvVariables() {
	viper.BindEnv("broker.kafka.brokers", "BROKER_KAFKA_BROKERS")
	viper.BindEnv("broker.kafka.group_id", "BROKER_KAFKA_GROUP_ID")
	viper.BindEnv("broker.kafka.input_topic", "BROKER_KAFKA_INPUT_TOPIC")
	viper.BindEnv("broker.kafka.concurrency", "BROKER_KAFKA_CONCURRENCY")
	viper.BindEnv("broker.kafka.retry.max_attempts", "BROKER_KAFKA_RETRY_MAX_ATTEMPTS")
	viper.BindEnv("broker.kafka.retry.backoff_delay", "BROKER_KAFKA_RETRY_BACKOFF_DELAY")

	viper.BindEnv("database.redis.host", "DATABASE_REDIS_HOST")
	viper.BindEnv("database.redis.port", "DATABASE_REDIS_PORT")
	viper.BindEnv("database.redis.password", "DATABASE_REDIS_PASSWORD")
	viper.BindEnv("database.redis.db", "DATABASE_REDIS_DB")

	viper.BindEnv("database.mongodb.uri", "DATABASE_MONGODB_URI")
	viper.BindEnv("database.mongodb.database", "DATABASE_MONGODB_DATABASE")
	viper.BindEnv("database.mongodb.collection", "DATABASE_MONGODB_COLLECTION")

	viper.BindEnv("company_api.base_url", "COMPANY_API_BASE_URL")
	viper.BindEnv("company_api.api_key", "COMPANY_API_API_KEY")
	viper.BindEnv("dispatch_api.base_url", "DISPATCH_API_BASE_URL")
	viper.BindEnv("dispatch_api.api_key", "DISPATCH_API_API_KEY")

	viper.BindEnv("links.chs_url", "LINKS_CHS_URL")
	viper.BindEnv("links.monitor_url", "LINKS_MONITOR_URL")
	viper.BindEnv("descriptions.path", "DESCRIPTIONS_PATH")

	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("logging.level", "LOGGING_LEVEL")

	viper.BindEnv("tracing.otlp.endpoint", "TRACING_OTLP_ENDPOINT")
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
}

// applyEnvOverrides handles values viper cannot split on its own.
func applyEnvOverrides(cfg *Config) {
	if brokersEnv := viper.GetString("BROKER_KAFKA_BROKERS"); brokersEnv != "" {
		brokers := strings.Split(brokersEnv, ",")
		for i := range brokers {
			brokers[i] = strings.TrimSpace(brokers[i])
		}
		if len(brokers) > 0 && brokers[0] != "" {
			cfg.Broker.Kafka.Brokers = brokers
		}
	}
}
