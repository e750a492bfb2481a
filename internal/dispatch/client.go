package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"relay/internal/config"
	"relay/internal/constants"
	"relay/pkg/circuitbreaker"
	"relay/pkg/errors"
	"relay/pkg/logging"
	"relay/pkg/metrics"
	"relay/pkg/models"
	"relay/pkg/ratelimit"
)

const dispatchContext = "message-send"

// Dispatcher hands an outbound message to the downstream delivery service.
type Dispatcher interface {
	Send(ctx context.Context, msg models.OutboundMessage) error
}

// Client posts outbound messages to the message-send endpoint. Every failure
// is reported as non-retryable. A nil breaker config disables circuit
// breaking.
type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
	cb      *circuitbreaker.Wrapper
	limiter *ratelimit.Limiter
}

func NewClient(cfg config.APIConfig, cbConfig *circuitbreaker.Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultHTTPTimeout
	}
	c := &Client{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		limiter: ratelimit.New("dispatch-api", cfg.RateLimit),
	}
	if cbConfig != nil {
		c.cb = circuitbreaker.NewWrapper(*cbConfig)
	}
	return c
}

func (c *Client) Send(ctx context.Context, msg models.OutboundMessage) error {
	start := time.Now()
	defer func() {
		metrics.ObserveDispatchDuration(time.Since(start))
	}()

	body, err := json.Marshal(msg)
	if err != nil {
		metrics.IncDispatchRequest("error")
		return errors.NonRetryable(errors.ErrSerialization, dispatchContext, err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		metrics.IncDispatchRequest("error")
		return errors.NonRetryable(errors.ErrDispatch, dispatchContext, fmt.Errorf("rate limit wait: %w", err))
	}

	if c.cb != nil {
		_, err = c.cb.ExecuteWithContext(ctx, func() (interface{}, error) {
			return nil, c.post(ctx, body)
		})
		c.cb.RecordRequest(err == nil)
	} else {
		err = c.post(ctx, body)
	}

	if err != nil {
		metrics.IncDispatchRequest("error")
		if circuitbreaker.IsRejection(err) {
			err = fmt.Errorf("circuit breaker %s rejected request: %w", c.cb.Name(), err)
		}
		return errors.NonRetryable(errors.ErrDispatch, dispatchContext, err)
	}

	metrics.IncDispatchRequest("sent")
	return nil
}

func (c *Client) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/message-send", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", c.apiKey)
	}
	if requestID := logging.GetRequestID(ctx); requestID != "" {
		req.Header.Set("X-Request-Id", requestID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("api request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < constants.HTTPStatusOKMin || resp.StatusCode >= constants.HTTPStatusOKMax {
		return fmt.Errorf("api returned status: %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) State() string {
	if c.cb == nil {
		return "disabled"
	}
	return c.cb.State().String()
}
