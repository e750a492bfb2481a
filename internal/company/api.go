package company

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"relay/internal/config"
	"relay/internal/constants"
	"relay/pkg/errors"
	"relay/pkg/logging"
	"relay/pkg/metrics"
	"relay/pkg/models"
	"relay/pkg/ratelimit"
)

type APIClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
	limiter *ratelimit.Limiter
}

func NewAPIClient(cfg config.APIConfig) *APIClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultHTTPTimeout
	}
	return &APIClient{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		limiter: ratelimit.New("company-api", cfg.RateLimit),
	}
}

func (c *APIClient) GetCompanyDetails(ctx context.Context, companyNumber string) (models.CompanyDetails, bool, error) {
	start := time.Now()
	defer func() {
		metrics.ObserveCompanyLookupDuration(time.Since(start))
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		return models.CompanyDetails{}, false, errors.Retryable(errors.ErrRemoteUnavailable, lookupContext,
			fmt.Errorf("rate limit wait: %w", err))
	}

	endpoint := fmt.Sprintf("%s/company/%s/company-detail", c.baseURL, url.PathEscape(companyNumber))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.CompanyDetails{}, false, errors.NonRetryable(errors.ErrInternal, lookupContext,
			fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", c.apiKey)
	}
	if requestID := logging.GetRequestID(ctx); requestID != "" {
		req.Header.Set("X-Request-Id", requestID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.IncCompanyLookup("error")
		return models.CompanyDetails{}, false, errors.Retryable(errors.ErrRemoteUnavailable, lookupContext,
			fmt.Errorf("api request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		metrics.IncCompanyLookup("not_found")
		return models.CompanyDetails{}, false, nil
	}

	if resp.StatusCode < constants.HTTPStatusOKMin || resp.StatusCode >= constants.HTTPStatusOKMax {
		metrics.IncCompanyLookup("error")
		return models.CompanyDetails{}, false, classifyStatus(resp.StatusCode)
	}

	var details models.CompanyDetails
	if err := json.NewDecoder(resp.Body).Decode(&details); err != nil {
		metrics.IncCompanyLookup("error")
		return models.CompanyDetails{}, false, errors.NonRetryable(errors.ErrRemoteRejected, lookupContext,
			fmt.Errorf("failed to decode response: %w", err))
	}
	if details.CompanyNumber == "" {
		details.CompanyNumber = companyNumber
	}

	metrics.IncCompanyLookup("found")
	return details, true, nil
}

// classifyStatus maps a non-2xx, non-404 response to a non-retryable error.
// Server errors and throttling keep the ErrRemoteUnavailable code so the
// circuit breaker still counts them.
func classifyStatus(status int) error {
	cause := fmt.Errorf("api returned status: %d", status)
	if status >= http.StatusInternalServerError || status == http.StatusTooManyRequests {
		return errors.NonRetryable(errors.ErrRemoteUnavailable, lookupContext, cause)
	}
	return errors.NonRetryable(errors.ErrRemoteRejected, lookupContext, cause)
}
