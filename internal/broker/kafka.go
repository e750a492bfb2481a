package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"golang.org/x/sync/errgroup"

	"relay/internal/config"
	"relay/internal/constants"
	"relay/internal/logger"
	"relay/pkg/errors"
	"relay/pkg/logging"
	"relay/pkg/metrics"
	"relay/pkg/models"
	"relay/pkg/retry"
	"relay/pkg/tracing"
)

type KafkaProducer struct {
	writer      *kafka.Writer
	logger      logger.Logger
	serviceName string
}

func NewKafkaProducer(cfg config.KafkaConfig, log logger.Logger) *KafkaProducer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           constants.KafkaBatchTimeout,
		WriteTimeout:           constants.KafkaWriteTimeout,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		Async:                  false,
	}
	return &KafkaProducer{writer: w, logger: log, serviceName: constants.ServiceName}
}

// Publish writes one message, retrying transient write failures.
func (p *KafkaProducer) Publish(ctx context.Context, topic string, key, value []byte, headers []kafka.Header) error {
	headers = tracing.InjectTraceContext(ctx, headers)

	msg := kafka.Message{
		Topic:   topic,
		Key:     key,
		Value:   value,
		Headers: headers,
		Time:    time.Now(),
	}

	err := retry.RetryWithCallback(ctx, retry.DefaultPolicy(), func() error {
		return p.writer.WriteMessages(ctx, msg)
	}, func(attempt int, err error, nextDelay time.Duration) {
		p.logger.WarnwCtx(ctx, "Retrying kafka write",
			"attempt", attempt,
			"next_delay", nextDelay,
			"error", err,
			"topic", topic,
		)
	})
	if err != nil {
		return fmt.Errorf("failed to write kafka message: %w", err)
	}

	metrics.IncKafkaMessagesWritten(p.serviceName, topic)
	metrics.ObserveKafkaMessageSize(p.serviceName, topic, "out", len(value))
	return nil
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

// KafkaConsumer reads the input topic and its retry topic with
// cfg.Concurrency readers each. Failed messages are forwarded to the retry
// or error topic before their offset is committed.
type KafkaConsumer struct {
	cfg         config.KafkaConfig
	producer    Producer
	logger      logger.Logger
	serviceName string
	now         func() time.Time

	mu      sync.Mutex
	readers []messageReader
}

func NewKafkaConsumer(cfg config.KafkaConfig, producer Producer, log logger.Logger) *KafkaConsumer {
	return &KafkaConsumer{
		cfg:         cfg,
		producer:    producer,
		logger:      log,
		serviceName: "unknown",
		now:         time.Now,
	}
}

func (c *KafkaConsumer) SetServiceName(name string) {
	c.serviceName = name
}

func (c *KafkaConsumer) Consume(ctx context.Context, handler HandlerFunc) error {
	concurrency := c.cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, topic := range []string{c.cfg.InputTopic, c.cfg.RetryTopic()} {
		c.logger.Infow("Creating Kafka readers",
			"topic", topic,
			"brokers", c.cfg.Brokers,
			"group_id", c.cfg.GroupID,
			"concurrency", concurrency,
			"service_name", c.serviceName,
		)
		for i := 0; i < concurrency; i++ {
			reader := c.newReader(topic)
			g.Go(func() error {
				return c.run(gctx, reader, topic, handler)
			})
		}
	}

	return g.Wait()
}

func (c *KafkaConsumer) newReader(topic string) messageReader {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  c.cfg.Brokers,
		GroupID:  c.cfg.GroupID,
		Topic:    topic,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})

	c.mu.Lock()
	c.readers = append(c.readers, reader)
	c.mu.Unlock()

	return reader
}

func (c *KafkaConsumer) run(ctx context.Context, reader messageReader, topic string, handler HandlerFunc) error {
	consumeCtx := logging.WithTopic(logging.WithServiceName(ctx, c.serviceName), topic)
	c.logger.InfowCtx(consumeCtx, "Started consuming")

	for {
		m, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.InfowCtx(consumeCtx, "Stopped consuming", "reason", "context canceled")
				return nil
			}
			c.logger.ErrorwCtx(consumeCtx, "Error fetching kafka message", "error", err)
			if waitErr := retry.Wait(ctx, retry.FixedBackoff(constants.KafkaFetchBackoff)); waitErr != nil {
				return nil
			}
			continue
		}

		metrics.IncKafkaMessagesRead(c.serviceName, topic)
		metrics.ObserveKafkaMessageSize(c.serviceName, topic, "in", len(m.Value))

		if topic == c.cfg.RetryTopic() {
			if err := c.waitForBackoff(ctx, m); err != nil {
				return nil
			}
		}

		if err := c.handleMessage(consumeCtx, m, handler); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		if err := reader.CommitMessages(ctx, m); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.ErrorwCtx(consumeCtx, "Failed to commit message",
				"error", err,
				"partition", m.Partition,
				"offset", m.Offset,
			)
		}
	}
}

// waitForBackoff delays a retry-topic message until the configured backoff
// has elapsed since it was written.
func (c *KafkaConsumer) waitForBackoff(ctx context.Context, m kafka.Message) error {
	if m.Time.IsZero() {
		return retry.Wait(ctx, retry.FixedBackoff(c.cfg.Retry.BackoffDelay))
	}
	remaining := m.Time.Add(c.cfg.Retry.BackoffDelay).Sub(c.now())
	if remaining <= 0 {
		return ctx.Err()
	}
	return retry.Wait(ctx, retry.FixedBackoff(remaining))
}

// handleMessage runs handler on m and forwards failures. It only returns an
// error when the message could not be forwarded and must not be committed.
func (c *KafkaConsumer) handleMessage(ctx context.Context, m kafka.Message, handler HandlerFunc) error {
	headers := append([]kafka.Header(nil), m.Headers...)

	requestID := tracing.HeaderValue(headers, constants.HeaderRequestID)
	if requestID == "" {
		requestID = uuid.NewString()
		headers = tracing.SetHeader(headers, constants.HeaderRequestID, requestID)
	}
	attempt := attemptFromHeader(tracing.HeaderValue(headers, constants.HeaderRetryAttempt))

	msgCtx, span := tracing.StartSpanFromKafkaMessage(ctx, "kafka.consume", headers)
	defer span.End()

	msgCtx = logging.WithRequestID(msgCtx, requestID)
	msgCtx = logging.WithMessageID(msgCtx, fmt.Sprintf("%s/%d/%d", m.Topic, m.Partition, m.Offset))
	if traceID := span.SpanContext().TraceID(); traceID.IsValid() {
		msgCtx = logging.WithTraceID(msgCtx, traceID.String())
	}

	var envelope models.Envelope
	if err := json.Unmarshal(m.Value, &envelope); err != nil {
		c.logger.ErrorwCtx(msgCtx, "Failed to unmarshal message", "error", err)
		err = errors.NonRetryable(errors.ErrMalformedPayload, "envelope", err)
		return c.forward(msgCtx, m, headers, Decide(c.cfg, attempt, err), err)
	}

	err := c.invoke(msgCtx, envelope, handler)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}

	decision := Decide(c.cfg, attempt, err)
	if decision.Route == RouteCommit {
		return nil
	}

	tracing.RecordError(span, err)
	c.logger.ErrorwCtx(msgCtx, "Failed to process message",
		"error", err,
		"attempt", attempt,
		"max_attempts", c.cfg.Retry.MaxAttempts,
		"route", decision.Route.String(),
	)
	return c.forward(msgCtx, m, headers, decision, err)
}

func (c *KafkaConsumer) invoke(ctx context.Context, envelope models.Envelope, handler HandlerFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.RecoverPanic(r)
			c.logger.ErrorwCtx(ctx, "Panic recovered during message processing", "error", err)
		}
	}()
	return handler(ctx, envelope)
}

func (c *KafkaConsumer) forward(ctx context.Context, m kafka.Message, headers []kafka.Header, decision Decision, cause error) error {
	switch decision.Route {
	case RouteRetry:
		headers = tracing.SetHeader(headers, constants.HeaderRetryAttempt, strconv.Itoa(decision.NextAttempt))
		metrics.RetryAttemptsTotal.WithLabelValues(c.serviceName, m.Topic).Inc()
	case RouteError:
		headers = tracing.SetHeader(headers, constants.HeaderErrorReason, cause.Error())
		headers = tracing.SetHeader(headers, constants.HeaderErrorContext, errors.ContextOf(cause))
		headers = tracing.SetHeader(headers, constants.HeaderErrorCode, errors.CodeOf(cause))
		headers = tracing.SetHeader(headers, constants.HeaderSourceTopic, m.Topic)
	default:
		return nil
	}

	if err := c.producer.Publish(ctx, decision.Topic, m.Key, m.Value, headers); err != nil {
		c.logger.ErrorwCtx(ctx, "Failed to forward message",
			"error", err,
			"target_topic", decision.Topic,
		)
		return fmt.Errorf("failed to forward message to %s: %w", decision.Topic, err)
	}

	if decision.Route == RouteError {
		metrics.DLQMessagesTotal.WithLabelValues(c.serviceName, m.Topic, decision.Reason).Inc()
	}
	c.logger.InfowCtx(ctx, "Message forwarded",
		"target_topic", decision.Topic,
		"reason", decision.Reason,
	)
	return nil
}

func (c *KafkaConsumer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	for _, reader := range c.readers {
		if closeErr := reader.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	c.readers = nil
	return err
}
