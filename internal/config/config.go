package config

import (
	"time"
)

type Config struct {
	Server         ServerConfig
	Database       DatabaseConfig
	Broker         BrokerConfig
	Logging        LoggingConfig
	CompanyAPI     APIConfig            `mapstructure:"company_api"`
	DispatchAPI    APIConfig            `mapstructure:"dispatch_api"`
	Links          LinksConfig          `mapstructure:"links"`
	Descriptions   DescriptionConfig    `mapstructure:"descriptions"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	Tracing        TracingConfig
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type DatabaseConfig struct {
	Redis         RedisConfig
	MongoDB       MongoDBConfig
	RunMigrations bool `mapstructure:"run_migrations"`
}

type RedisConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	TTLSeconds int    `mapstructure:"ttl_seconds"`
}

type MongoDBConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

type BrokerConfig struct {
	Type  string      `mapstructure:"type"`
	Kafka KafkaConfig `mapstructure:"kafka"`
}

type KafkaConfig struct {
	Brokers          []string    `mapstructure:"brokers"`
	GroupID          string      `mapstructure:"group_id"`
	InputTopic       string      `mapstructure:"input_topic"`
	RetryTopicSuffix string      `mapstructure:"retry_topic_suffix"`
	ErrorTopicSuffix string      `mapstructure:"error_topic_suffix"`
	Concurrency      int         `mapstructure:"concurrency"`
	Retry            RetryConfig `mapstructure:"retry"`
}

// RetryTopic is where retryable failures are redelivered from.
func (c KafkaConfig) RetryTopic() string {
	return c.InputTopic + c.RetryTopicSuffix
}

// ErrorTopic receives non-retryable failures and exhausted retries.
func (c KafkaConfig) ErrorTopic() string {
	return c.InputTopic + c.ErrorTopicSuffix
}

type RetryConfig struct {
	MaxAttempts  int           `mapstructure:"max_attempts"`
	BackoffDelay time.Duration `mapstructure:"backoff_delay"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type APIConfig struct {
	BaseURL   string          `mapstructure:"base_url"`
	APIKey    string          `mapstructure:"api_key"`
	Timeout   time.Duration   `mapstructure:"timeout"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig caps outbound calls; RPS <= 0 disables the limit.
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type LinksConfig struct {
	ChsURL     string `mapstructure:"chs_url"`
	MonitorURL string `mapstructure:"monitor_url"`
}

type DescriptionConfig struct {
	Path string `mapstructure:"path"`
}

type CircuitBreakerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
	MinRequests  uint32        `mapstructure:"min_requests"`
}

type TracingConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	ServiceName string        `mapstructure:"service_name"`
	OTLP        OTLPConfig    `mapstructure:"otlp"`
	Sampler     SamplerConfig `mapstructure:"sampler"`
}

type OTLPConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Insecure bool   `mapstructure:"insecure"`
}

type SamplerConfig struct {
	Type  string  `mapstructure:"type"`
	Param float64 `mapstructure:"param"`
}

func Load(configFile string) (*Config, error) {
	return LoadConfig(configFile)
}
