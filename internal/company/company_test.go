package company

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relay/internal/config"
	"relay/pkg/circuitbreaker"
	"relay/pkg/errors"
	"relay/pkg/logging"
	"relay/pkg/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *APIClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewAPIClient(config.APIConfig{BaseURL: server.URL + "/", APIKey: "api-key", Timeout: time.Second})
}

func TestAPIClient_Found(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/company/00006400/company-detail", r.URL.Path)
		assert.Equal(t, "api-key", r.Header.Get("Authorization"))
		assert.Equal(t, "req-123", r.Header.Get("X-Request-Id"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"company_number":"00006400","company_name":"THE GIRLS DAY SCHOOL TRUST","company_status":"active"}`))
	})

	ctx := logging.WithRequestID(context.Background(), "req-123")
	details, found, err := client.GetCompanyDetails(ctx, "00006400")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, models.CompanyDetails{
		CompanyNumber: "00006400",
		CompanyName:   "THE GIRLS DAY SCHOOL TRUST",
		CompanyStatus: "active",
	}, details)
}

func TestAPIClient_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, found, err := client.GetCompanyDetails(context.Background(), "99999999")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAPIClient_ErrorClassification(t *testing.T) {
	tests := []struct {
		status int
		code   string
	}{
		{http.StatusBadRequest, errors.ErrRemoteRejected.Code},
		{http.StatusUnauthorized, errors.ErrRemoteRejected.Code},
		{http.StatusForbidden, errors.ErrRemoteRejected.Code},
		{http.StatusTooManyRequests, errors.ErrRemoteUnavailable.Code},
		{http.StatusInternalServerError, errors.ErrRemoteUnavailable.Code},
		{http.StatusServiceUnavailable, errors.ErrRemoteUnavailable.Code},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			_, found, err := client.GetCompanyDetails(context.Background(), "00006400")
			require.Error(t, err)
			assert.False(t, found)
			assert.True(t, errors.IsNonRetryable(err))
			assert.Equal(t, tt.code, errors.CodeOf(err))
			assert.Equal(t, "company-lookup", errors.ContextOf(err))
		})
	}
}

func TestAPIClient_MalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	})

	_, _, err := client.GetCompanyDetails(context.Background(), "00006400")
	require.Error(t, err)
	assert.True(t, errors.IsNonRetryable(err))
}

func TestAPIClient_TransportFailureIsRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewAPIClient(config.APIConfig{BaseURL: server.URL, Timeout: time.Second})
	_, _, err := client.GetCompanyDetails(context.Background(), "00006400")
	require.Error(t, err)
	assert.True(t, errors.IsRetryable(err))
}

type stubLookup struct {
	calls   atomic.Int32
	details models.CompanyDetails
	found   bool
	err     error
}

func (s *stubLookup) GetCompanyDetails(ctx context.Context, companyNumber string) (models.CompanyDetails, bool, error) {
	s.calls.Add(1)
	return s.details, s.found, s.err
}

func breakerConfig(name string) circuitbreaker.Config {
	cfg := circuitbreaker.DefaultConfig(name)
	cfg.Timeout = time.Minute
	return cfg
}

func TestCircuitBreakerLookup_OpensOnTransientFailures(t *testing.T) {
	stub := &stubLookup{err: errors.Retryable(errors.ErrRemoteUnavailable, lookupContext, assert.AnError)}
	lookup := NewCircuitBreakerLookup(stub, breakerConfig("company-transient"))

	for i := 0; i < 3; i++ {
		_, _, err := lookup.GetCompanyDetails(context.Background(), "00006400")
		require.Error(t, err)
	}
	assert.Equal(t, "open", lookup.State())

	_, _, err := lookup.GetCompanyDetails(context.Background(), "00006400")
	require.Error(t, err)
	assert.True(t, errors.IsRetryable(err))
	assert.Equal(t, int32(3), stub.calls.Load())
}

func TestCircuitBreakerLookup_OpensOnServerErrors(t *testing.T) {
	stub := &stubLookup{err: errors.NonRetryable(errors.ErrRemoteUnavailable, lookupContext, assert.AnError)}
	lookup := NewCircuitBreakerLookup(stub, breakerConfig("company-5xx"))

	for i := 0; i < 3; i++ {
		_, _, err := lookup.GetCompanyDetails(context.Background(), "00006400")
		require.Error(t, err)
		assert.True(t, errors.IsNonRetryable(err))
	}
	assert.Equal(t, "open", lookup.State())
}

func TestCircuitBreakerLookup_IgnoresRejections(t *testing.T) {
	stub := &stubLookup{err: errors.NonRetryable(errors.ErrRemoteRejected, lookupContext, assert.AnError)}
	lookup := NewCircuitBreakerLookup(stub, breakerConfig("company-rejected"))

	for i := 0; i < 5; i++ {
		_, _, err := lookup.GetCompanyDetails(context.Background(), "00006400")
		require.Error(t, err)
		assert.True(t, errors.IsNonRetryable(err))
	}
	assert.Equal(t, "closed", lookup.State())
	assert.Equal(t, int32(5), stub.calls.Load())
}

func TestCircuitBreakerLookup_PassesThroughResult(t *testing.T) {
	stub := &stubLookup{details: models.CompanyDetails{CompanyNumber: "1", CompanyName: "ACME"}, found: true}
	lookup := NewCircuitBreakerLookup(stub, breakerConfig("company-ok"))

	details, found, err := lookup.GetCompanyDetails(context.Background(), "1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "ACME", details.CompanyName)

	stub.found = false
	_, found, err = lookup.GetCompanyDetails(context.Background(), "1")
	require.NoError(t, err)
	assert.False(t, found)
}
